package stategraph

import (
	"errors"
	"fmt"
	"log/slog"
)

// Compile validates the graph and creates an executable CompiledGraph.
// Returns an error if validation fails. Multiple errors are joined.
//
// Validation checks (in order):
//  1. Errors recorded during building (duplicate nodes)
//  2. Entry point must be set and reference an existing node
//  3. All edge sources must reference existing nodes
//  4. All edge targets must reference existing nodes or END
//  5. All route map targets must reference existing nodes or END
//  6. An edge path must exist from the entry to END
//
// The path check is best-effort: a conditional edge is assumed able to
// reach END, since its router may return END at runtime. Cycles are
// permitted and are not an error.
//
// Unreachable nodes are logged as warnings but do not fail compilation.
func (g *Graph[S]) Compile() (*CompiledGraph[S], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	errs := append([]error(nil), g.buildErrs...)

	// Entry point.
	if g.entryPoint == "" {
		errs = append(errs, ErrNoEntryPoint)
	} else if _, exists := g.nodes[g.entryPoint]; !exists {
		errs = append(errs, fmt.Errorf("%w: %s", ErrEntryNotFound, g.entryPoint))
	}

	// Plain edge endpoints, both sides eager.
	for from, targets := range g.edges {
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: edge source %q", ErrUnknownNode, from))
		}
		for _, to := range targets {
			if to != END {
				if _, exists := g.nodes[to]; !exists {
					errs = append(errs, fmt.Errorf("%w: edge target %q", ErrUnknownNode, to))
				}
			}
		}
	}

	// Conditional edge sources and route map targets.
	for from, cond := range g.conditional {
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: conditional edge source %q", ErrUnknownNode, from))
		}
		for label, to := range cond.routes {
			if to != END {
				if _, exists := g.nodes[to]; !exists {
					errs = append(errs, fmt.Errorf("%w: route %q -> %q from %q", ErrUnknownNode, label, to, from))
				}
			}
		}
	}

	// Path from entry to END.
	if g.entryPoint != "" {
		if _, exists := g.nodes[g.entryPoint]; exists {
			if !g.hasPathToEnd() {
				errs = append(errs, ErrDisconnected)
			}
		}
	}

	g.warnUnreachableNodes()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return g.buildCompiledGraph(), nil
}

// hasPathToEnd checks whether END is reachable from the entry point using
// reverse reachability. A node with a conditional edge is assumed to
// potentially reach END because its router may return END.
func (g *Graph[S]) hasPathToEnd() bool {
	canReachEnd := make(map[string]bool)
	canReachEnd[END] = true

	changed := true
	for changed {
		changed = false

		for from, targets := range g.edges {
			if canReachEnd[from] {
				continue
			}
			for _, to := range targets {
				if canReachEnd[to] {
					canReachEnd[from] = true
					changed = true
					break
				}
			}
		}

		for from := range g.conditional {
			if !canReachEnd[from] {
				canReachEnd[from] = true
				changed = true
			}
		}
	}

	return canReachEnd[g.entryPoint]
}

// warnUnreachableNodes logs warnings for nodes not reachable from entry.
func (g *Graph[S]) warnUnreachableNodes() {
	if g.entryPoint == "" {
		return
	}

	reachable := g.findReachableNodes()

	for nodeID := range g.nodes {
		if !reachable[nodeID] {
			slog.Warn("node is unreachable from entry", "node_id", nodeID)
		}
	}
}

// findReachableNodes returns the set of nodes reachable from the entry.
// Route map targets are followed; an unmapped router (labels used as node
// IDs directly) could return any node, so all nodes are treated as
// reachable from it.
func (g *Graph[S]) findReachableNodes() map[string]bool {
	reachable := make(map[string]bool)

	if g.entryPoint == "" {
		return reachable
	}

	queue := []string{g.entryPoint}
	reachable[g.entryPoint] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, target := range g.edges[current] {
			if target != END && !reachable[target] {
				reachable[target] = true
				queue = append(queue, target)
			}
		}

		if cond, hasConditional := g.conditional[current]; hasConditional {
			if cond.routes != nil {
				for _, target := range cond.routes {
					if target != END && !reachable[target] {
						reachable[target] = true
						queue = append(queue, target)
					}
				}
				continue
			}
			for nodeID := range g.nodes {
				if !reachable[nodeID] {
					reachable[nodeID] = true
					queue = append(queue, nodeID)
				}
			}
		}
	}

	return reachable
}

// buildCompiledGraph creates the immutable CompiledGraph from the builder state.
func (g *Graph[S]) buildCompiledGraph() *CompiledGraph[S] {
	nodes := make(map[string]NodeFunc[S], len(g.nodes))
	for id, fn := range g.nodes {
		nodes[id] = fn
	}

	edges := make(map[string][]string, len(g.edges))
	for from, targets := range g.edges {
		edges[from] = make([]string, len(targets))
		copy(edges[from], targets)
	}

	conditional := make(map[string]conditionalEdge[S], len(g.conditional))
	for from, cond := range g.conditional {
		copied := conditionalEdge[S]{router: cond.router}
		if cond.routes != nil {
			copied.routes = make(map[string]string, len(cond.routes))
			for label, to := range cond.routes {
				copied.routes[label] = to
			}
		}
		conditional[from] = copied
	}

	predecessors := make(map[string][]string)
	for from, targets := range edges {
		for _, to := range targets {
			if to != END {
				predecessors[to] = append(predecessors[to], from)
			}
		}
	}

	isConditional := make(map[string]bool, len(conditional))
	for from := range conditional {
		isConditional[from] = true
	}

	return &CompiledGraph[S]{
		schema:        g.schema,
		nodes:         nodes,
		edges:         edges,
		conditional:   conditional,
		entryPoint:    g.entryPoint,
		predecessors:  predecessors,
		isConditional: isConditional,
	}
}
