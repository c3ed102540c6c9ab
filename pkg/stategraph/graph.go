package stategraph

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a mutable builder for creating execution graphs.
// Use NewGraph to create one, then chain AddNode, AddEdge,
// AddConditionalEdge, and SetEntry calls to define the workflow.
//
// Graph is NOT thread-safe during building. Construct it from a single
// goroutine, then call Compile() to create an immutable CompiledGraph
// that can be shared freely.
//
// Misuse that no input data can cause (empty IDs, nil functions, reserved
// names) panics immediately. Structural problems that depend on the shape
// of the graph (duplicate nodes, edges from unknown nodes, unreachable
// END) are recorded and reported together by Compile().
//
// Example:
//
//	graph := stategraph.NewGraph[MyState]().
//	    AddNode("fetch", fetchNode).
//	    AddNode("process", processNode).
//	    AddEdge("fetch", "process").
//	    AddEdge("process", stategraph.END).
//	    SetEntry("fetch")
//
//	compiled, err := graph.Compile()
type Graph[S any] struct {
	mu          sync.RWMutex
	schema      *Schema[S]
	nodes       map[string]NodeFunc[S]
	edges       map[string][]string
	conditional map[string]conditionalEdge[S]
	entryPoint  string
	buildErrs   []error
}

// conditionalEdge pairs a router with its optional label translation map.
type conditionalEdge[S any] struct {
	router RouterFunc[S]
	routes map[string]string
}

// NewGraph creates a new graph builder for state type S.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:       make(map[string]NodeFunc[S]),
		edges:       make(map[string][]string),
		conditional: make(map[string]conditionalEdge[S]),
	}
}

// WithSchema attaches the per-field merge schema. Without one, node
// return values replace the whole state and fan-out seeds replace the
// branch's whole starting state.
func (g *Graph[S]) WithSchema(schema *Schema[S]) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.schema = schema
	return g
}

// AddNode adds a named node to the graph.
// Returns the graph for method chaining.
//
// Panics if:
//   - id is empty
//   - id is the reserved word "END" or "__end__" (case-insensitive)
//   - id contains whitespace (space, tab, newline)
//   - fn is nil
//
// A duplicate id is recorded as a build error and reported by Compile().
func (g *Graph[S]) AddNode(id string, fn NodeFunc[S]) *Graph[S] {
	if id == "" {
		panic("stategraph: node ID cannot be empty")
	}

	idLower := strings.ToLower(id)
	if idLower == "end" || idLower == "__end__" {
		panic("stategraph: node ID cannot be reserved word 'END'")
	}

	if strings.ContainsAny(id, " \t\n\r") {
		panic("stategraph: node ID cannot contain whitespace")
	}

	if fn == nil {
		panic("stategraph: node function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		g.buildErrs = append(g.buildErrs, fmt.Errorf("%w: %s", ErrDuplicateNode, id))
		return g
	}

	g.nodes[id] = fn
	return g
}

// AddEdge adds an unconditional edge from one node to another.
// The target can be a node ID or stategraph.END. All unconditional edges
// from a node fire together, producing a static fan-out when there is
// more than one.
// Returns the graph for method chaining.
//
// Edges may be added before their endpoints exist; all endpoints are
// validated eagerly at Compile() time.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdge adds a conditional edge where a RouterFunc chooses
// the next step(s) at runtime based on state.
// Returns the graph for method chaining.
//
// routes translates the router's labels to node IDs (or END); pass nil
// when the router returns node IDs directly. With a route map, a label
// missing from the map is a RouterError at runtime.
//
// A node can have either plain edges or a conditional edge, not both.
// If both are present the conditional edge takes precedence.
//
// Panics if router is nil.
func (g *Graph[S]) AddConditionalEdge(from string, router RouterFunc[S], routes map[string]string) *Graph[S] {
	if router == nil {
		panic("stategraph: router function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.conditional[from] = conditionalEdge[S]{router: router, routes: routes}
	return g
}

// SetEntry designates the entry point node.
// This must be called before Compile().
// Returns the graph for method chaining.
func (g *Graph[S]) SetEntry(id string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entryPoint = id
	return g
}
