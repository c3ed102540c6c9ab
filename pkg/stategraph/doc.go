/*
Package stategraph provides graph-based orchestration for LLM workflows.

# Overview

stategraph is a Go library for building and executing directed graphs
where nodes perform work and edges define flow. It's designed for
orchestrating LLM-powered workflow patterns: prompt chains, parallel
fan-out, routing, orchestrator/worker, evaluator loops, and tool-calling
agents.

The library is inspired by LangGraph but built for Go with:
  - Type-safe generics for state management
  - Per-field merge policies for concurrent partial updates
  - Compile-time validation of graph structure
  - Dynamic fan-out with deterministic, spawn-ordered merging
  - OpenTelemetry integration for observability

# Basic Usage

Create a graph with nodes and edges, then compile and run:

	type State struct {
	    Input  string
	    Output string
	}

	func process(ctx stategraph.Context, s State) (State, error) {
	    s.Output = "Processed: " + s.Input
	    return s, nil
	}

	func main() {
	    graph := stategraph.NewGraph[State]().
	        AddNode("process", process).
	        AddEdge("process", stategraph.END).
	        SetEntry("process")

	    compiled, err := graph.Compile()
	    if err != nil {
	        log.Fatal(err)
	    }

	    ctx := stategraph.NewContext(context.Background())
	    result, err := compiled.Run(ctx, State{Input: "hello"})
	    if err != nil {
	        log.Fatal(err)
	    }
	    fmt.Println(result.Output) // "Processed: hello"
	}

# State Schema

By default a node's return value replaces the whole state. Register a
Schema to merge per field instead, which is what makes concurrent
branches safe to combine:

	type State struct {
	    Topic   string
	    Results []string
	}

	schema := stategraph.NewSchema[State]()
	stategraph.Replace(schema, "topic", func(s *State) *string { return &s.Topic })
	stategraph.Append(schema, "results", func(s *State) *[]string { return &s.Results })

	graph := stategraph.NewGraph[State]().WithSchema(schema)

Replace fields take the branch's value when it differs from the zero
value; Append fields concatenate each branch's new elements. When
several branches of one superstep update the same field, updates apply
in spawn order, so results are deterministic regardless of which branch
finishes first.

# Execution Model

Run proceeds in supersteps. All nodes on the current frontier execute
concurrently against the same state snapshot; their partial updates then
merge in spawn order; the merged state drives edge resolution for the
next frontier. The run completes when the frontier is empty.

Giving one node several plain outgoing edges is the static form of
fan-out: all targets execute in the next superstep.

# Conditional Branching

Use conditional edges for decision points. The router returns a
Decision: a label, END, or a fan-out:

	graph.AddConditionalEdge("review", func(ctx stategraph.Context, s State) stategraph.Decision[State] {
	    if s.Approved {
	        return stategraph.Goto[State]("publish")
	    }
	    return stategraph.Goto[State]("revise")
	}, nil)

With a route map, routers return domain labels instead of node IDs:

	graph.AddConditionalEdge("route", router, map[string]string{
	    "story": "writeStory",
	    "joke":  "writeJoke",
	    "done":  stategraph.END,
	})

A label missing from the map is a RouterError at runtime.

# Dynamic Fan-Out

Routers can spawn a runtime-determined set of branches with FanOut.
Each Send names a target node and a seed, a partial state merged into
that branch's starting snapshot:

	graph.AddConditionalEdge("plan", func(ctx stategraph.Context, s State) stategraph.Decision[State] {
	    sends := make([]stategraph.Send[State], 0, len(s.Sections))
	    for _, sec := range s.Sections {
	        sends = append(sends, stategraph.Send[State]{
	            Node: "worker",
	            Seed: State{Section: sec},
	        })
	    }
	    return stategraph.FanOut(sends...)
	}, nil)

Branch outputs merge in Send order. If a branch fails, the run fails,
in-flight siblings are cancelled, and no branch output is merged.

# Loops

Create loops by having conditional edges that return to earlier nodes:

	graph := stategraph.NewGraph[DraftState]().
	    AddNode("generate", generate).
	    AddNode("evaluate", evaluate).
	    AddEdge("generate", "evaluate").
	    AddConditionalEdge("evaluate", func(ctx stategraph.Context, s DraftState) stategraph.Decision[DraftState] {
	        if s.Accepted {
	            return stategraph.Halt[DraftState]()
	        }
	        return stategraph.Goto[DraftState]("generate")
	    }, nil).
	    SetEntry("generate")

Loops are protected by a superstep limit (default 1000) to prevent
infinite loops. Configure with WithMaxSupersteps.

# LLM Integration

Nodes reach the configured LLM client through the Context:

	func generate(ctx stategraph.Context, s State) (State, error) {
	    resp, err := ctx.LLM().Complete(ctx, llm.CompletionRequest{
	        Messages: []llm.Message{llm.NewUserMessage(s.Topic)},
	    })
	    if err != nil {
	        return s, err
	    }
	    s.Draft = resp.Content
	    return s, nil
	}

	client := llm.NewClaudeCLI()
	ctx := stategraph.NewContext(context.Background(), stategraph.WithLLM(client))

# Observability

Enable logging, metrics, and tracing:

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	result, err := compiled.Run(ctx, state,
	    stategraph.WithObservabilityLogger(logger),
	    stategraph.WithMetrics(true),
	    stategraph.WithTracing(true),
	    stategraph.WithRunID("run-123"))

Logs include structured fields: run_id, node_id, duration_ms, attempt.
OpenTelemetry metrics: stategraph.node.executions, stategraph.node.latency_ms, etc.
OpenTelemetry tracing: stategraph.run > stategraph.node.{id} spans.

A journal store records the execution trail of each run for inspection:

	store, _ := journal.NewSQLiteStore("./runs.db")
	defer store.Close()

	result, err := compiled.Run(ctx, state, stategraph.WithJournal(store))

The journal is write-only during execution; it is never read back to
resume a run.

# Error Handling

Errors include context about which node failed:

	result, err := compiled.Run(ctx, state)
	var nodeErr *stategraph.NodeError
	if errors.As(err, &nodeErr) {
	    log.Printf("Node %s failed: %v", nodeErr.NodeID, nodeErr.Err)
	}

	var routerErr *stategraph.RouterError
	if errors.As(err, &routerErr) {
	    log.Printf("Router after %s returned bad label %q", routerErr.FromNode, routerErr.Label)
	}

Panics in nodes are recovered and converted to PanicError with stack
trace. Branch failures wrap the underlying error in a BranchError that
records the spawn index.

# Thread Safety

  - Graph[S] is NOT safe for concurrent use during construction
  - CompiledGraph[S] IS safe for concurrent use (immutable)
  - Context IS safe for concurrent use
  - journal.Store implementations are safe for concurrent use

# Subpackages

  - llm: LLM client interface, Claude CLI client, structured output, tools
  - journal: Run journal storage (memory, SQLite)
  - observability: Logging, metrics, and tracing helpers
  - config: YAML/JSON configuration loading
  - errors: Error categories and retry policies
  - template: Prompt template expansion
  - registry: Generic keyed registry
*/
package stategraph
