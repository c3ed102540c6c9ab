package stategraph

// CompiledGraph is an immutable, executable graph.
// It is created by calling Compile() on a Graph builder.
//
// CompiledGraph is thread-safe and can be used concurrently for multiple
// Run() calls; each run owns its own state and nothing is shared between
// concurrent runs. The graph structure cannot be modified after
// compilation.
type CompiledGraph[S any] struct {
	schema      *Schema[S]
	nodes       map[string]NodeFunc[S]
	edges       map[string][]string
	conditional map[string]conditionalEdge[S]
	entryPoint  string

	// Pre-computed for introspection.
	predecessors  map[string][]string
	isConditional map[string]bool
}

// EntryPoint returns the entry node ID.
func (cg *CompiledGraph[S]) EntryPoint() string {
	return cg.entryPoint
}

// NodeIDs returns all node identifiers in the graph.
// The order is not guaranteed.
func (cg *CompiledGraph[S]) NodeIDs() []string {
	ids := make([]string, 0, len(cg.nodes))
	for id := range cg.nodes {
		ids = append(ids, id)
	}
	return ids
}

// HasNode checks if a node exists in the graph.
func (cg *CompiledGraph[S]) HasNode(id string) bool {
	_, exists := cg.nodes[id]
	return exists
}

// Successors returns the targets of the node's plain edges, END included.
// Targets of conditional edges are runtime-determined and not included.
func (cg *CompiledGraph[S]) Successors(id string) []string {
	if id == END {
		return nil
	}
	return cg.edges[id]
}

// Predecessors returns the node IDs with plain edges into the given node.
func (cg *CompiledGraph[S]) Predecessors(id string) []string {
	return cg.predecessors[id]
}

// IsConditional returns true if the node has a conditional edge.
func (cg *CompiledGraph[S]) IsConditional(id string) bool {
	return cg.isConditional[id]
}

// RouteLabels returns the labels of the node's route map in no particular
// order, or nil when the node has no conditional edge or its router
// returns node IDs directly.
func (cg *CompiledGraph[S]) RouteLabels(id string) []string {
	cond, exists := cg.conditional[id]
	if !exists || cond.routes == nil {
		return nil
	}
	labels := make([]string, 0, len(cond.routes))
	for label := range cond.routes {
		labels = append(labels, label)
	}
	return labels
}

// getNode returns the node function for the given ID.
func (cg *CompiledGraph[S]) getNode(id string) (NodeFunc[S], bool) {
	fn, exists := cg.nodes[id]
	return fn, exists
}

// getConditional returns the conditional edge for the given node.
func (cg *CompiledGraph[S]) getConditional(id string) (conditionalEdge[S], bool) {
	cond, exists := cg.conditional[id]
	return cond, exists
}

// applyUpdate folds a node's partial update into the state through the
// schema; without a schema the update replaces the whole state.
func (cg *CompiledGraph[S]) applyUpdate(dst *S, delta S) {
	if cg.schema == nil {
		*dst = delta
		return
	}
	cg.schema.merge(dst, delta)
}
