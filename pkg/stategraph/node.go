package stategraph

// END is the terminal marker.
// Use it as an edge target or router label to indicate the run should finish.
const END = "__end__"

// NodeFunc is the signature for all node functions.
// A node receives the execution context and a snapshot of the current state,
// and returns a partial update and any error.
//
// When the graph has a Schema, the returned value is a delta: only the
// fields the node changed should be set, and they are merged into the
// shared state according to each field's declared policy. Without a
// Schema the returned value replaces the whole state.
//
// Example:
//
//	func generate(ctx stategraph.Context, s Story) (Story, error) {
//	    return Story{Draft: "once upon a time"}, nil
//	}
type NodeFunc[S any] func(ctx Context, state S) (S, error)

// RouterFunc decides where execution goes after a node with a conditional
// edge. Routers must be pure: deterministic for identical state, no state
// mutation, no side effects beyond choosing the next step(s).
//
// The returned Decision is either a single label (translated through the
// edge's route map when one was registered) or a fan-out of parallel
// branches.
type RouterFunc[S any] func(ctx Context, state S) Decision[S]

// Decision is the result of a router: either a single next step or a
// fan-out into parallel branches. Construct with Goto, Halt, or FanOut.
type Decision[S any] struct {
	label  string
	sends  []Send[S]
	fanOut bool
}

// Goto routes to a single label. The label is translated through the
// conditional edge's route map when one was registered; otherwise it must
// be a node ID or END.
func Goto[S any](label string) Decision[S] {
	return Decision[S]{label: label}
}

// Halt routes to the terminal marker, finishing this path of the run.
func Halt[S any]() Decision[S] {
	return Decision[S]{label: END}
}

// FanOut spawns one parallel branch per Send. Each branch starts from the
// current state with the Send's seed merged in, executes concurrently with
// its siblings, and rejoins at the next merge point.
func FanOut[S any](sends ...Send[S]) Decision[S] {
	return Decision[S]{sends: sends, fanOut: true}
}

// Send names a branch entry node and the seed delta merged into that
// branch's starting state.
type Send[S any] struct {
	// Node is the branch entry node ID.
	Node string

	// Seed is a partial update merged into the branch's starting state
	// using the graph's Schema (whole-state replace without one).
	Seed S
}

// IsFanOut reports whether the decision spawns parallel branches.
func (d Decision[S]) IsFanOut() bool {
	return d.fanOut
}

// Label returns the single-next label. Only meaningful when IsFanOut is false.
func (d Decision[S]) Label() string {
	return d.label
}

// Sends returns the fan-out branches. Only meaningful when IsFanOut is true.
func (d Decision[S]) Sends() []Send[S] {
	return d.sends
}
