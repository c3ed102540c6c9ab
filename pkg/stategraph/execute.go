package stategraph

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	xerrors "github.com/randalmurphal/stategraph/pkg/stategraph/errors"
	"github.com/randalmurphal/stategraph/pkg/stategraph/journal"
	"github.com/randalmurphal/stategraph/pkg/stategraph/observability"
	"go.opentelemetry.io/otel/trace"
)

// task is one pending node execution on the frontier.
// seed is non-nil for fan-out branches: a partial update merged into the
// branch's starting snapshot. from records the spawning node.
type task[S any] struct {
	node string
	seed *S
	from string
}

// taskResult is the outcome of one executed task.
type taskResult[S any] struct {
	task     task[S]
	delta    S
	duration time.Duration
	err      error
}

// Run executes the graph with the given initial state.
// Returns the final state and any error encountered.
//
// On success, returns the state after the frontier collapsed to END.
// On error, returns the state as of the last completed superstep (useful
// for debugging); no output from a failed superstep is merged.
//
// Execution proceeds in supersteps:
//  1. Every frontier task executes against the same state snapshot,
//     concurrently when the frontier has more than one member.
//  2. All partial updates merge into the state in spawn order through the
//     graph's Schema, regardless of completion order.
//  3. Outgoing edges of each executed node are resolved against the
//     post-merge state to build the next frontier. Plain targets are
//     deduplicated; fan-out Sends each become their own branch; END
//     produces nothing.
//
// The run finishes when the frontier is empty. A node or router error
// aborts the run immediately; sibling branches in flight are cancelled
// best-effort and their output is discarded.
func (cg *CompiledGraph[S]) Run(ctx Context, state S, opts ...RunOption) (result S, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
		cfg.runID = runID
	}

	startTime := time.Now()

	observability.LogRunStart(cfg.logger, runID)

	var execCtx context.Context = ctx
	var runSpan trace.Span
	if cfg.tracingEnabled {
		execCtx, runSpan = cfg.spans.StartRunSpan(ctx, "stategraph", runID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	var nodeCount int
	result, nodeCount, runErr = cg.runSupersteps(execCtx, ctx, state, &cfg)

	duration := time.Since(startTime)
	durationMs := float64(duration.Milliseconds())

	cfg.metrics.RecordGraphRun(ctx, runErr == nil, duration)

	if runErr != nil {
		observability.LogRunError(cfg.logger, runID, runErr, durationMs, failedNode(runErr))
	} else {
		observability.LogRunComplete(cfg.logger, runID, durationMs, nodeCount)
	}

	return result, runErr
}

// isCancellation reports whether a task error is a cancellation induced
// by a failing sibling or a cancelled run context, rather than a root
// failure of its own.
func isCancellation(err error) bool {
	var ce *CancellationError
	if errors.As(err, &ce) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// failedNode extracts the node a run error is attributed to, for logging.
func failedNode(err error) string {
	switch e := err.(type) {
	case *NodeError:
		return e.NodeID
	case *RouterError:
		return e.FromNode
	case *BranchError:
		return e.Branch
	case *CancellationError:
		return e.NodeID
	}
	return ""
}

// runSupersteps drives the frontier loop to completion.
// tracingCtx carries span context; fgCtx is the stategraph Context.
// Returns the final state, the count of successful node executions, and
// any error.
func (cg *CompiledGraph[S]) runSupersteps(tracingCtx context.Context, fgCtx Context, state S, cfg *runConfig) (S, int, error) {
	frontier := []task[S]{{node: cg.entryPoint}}
	steps := 0
	nodeCount := 0

	for len(frontier) > 0 {
		steps++
		if steps > cfg.maxSupersteps {
			return state, nodeCount, &MaxSuperstepsError{
				Max:      cfg.maxSupersteps,
				Frontier: taskNodes(frontier),
				State:    state,
			}
		}

		// Check for cancellation between supersteps.
		select {
		case <-fgCtx.Done():
			return state, nodeCount, &CancellationError{
				NodeID: frontier[0].node,
				State:  state,
				Cause:  fgCtx.Err(),
			}
		default:
		}

		results := cg.executeFrontier(tracingCtx, fgCtx, frontier, state, cfg)

		cg.journalResults(cfg, steps, results)

		// Surface the earliest-spawned root failure; nothing from a failed
		// superstep is merged. A failing branch cancels its siblings, so
		// cancellations only count when no sibling holds a real error.
		failed := -1
		for i, r := range results {
			if r.err == nil {
				nodeCount++
				continue
			}
			if isCancellation(r.err) {
				if failed == -1 {
					failed = i
				}
				continue
			}
			failed = i
			break
		}
		if failed >= 0 {
			r := results[failed]
			if r.task.seed != nil {
				return state, nodeCount, &BranchError{
					FromNode: r.task.from,
					Branch:   r.task.node,
					Index:    failed,
					Err:      r.err,
				}
			}
			return state, nodeCount, r.err
		}

		// Merge all partial updates in spawn order.
		for _, r := range results {
			cg.applyUpdate(&state, r.delta)
		}

		// Build the next frontier from the post-merge state.
		next := make([]task[S], 0, len(results))
		seen := make(map[string]bool)
		for _, r := range results {
			targets, err := cg.resolveNext(fgCtx, state, r.task.node)
			if err != nil {
				return state, nodeCount, err
			}
			for _, t := range targets {
				if t.node == END {
					continue
				}
				if t.seed == nil {
					if seen[t.node] {
						continue
					}
					seen[t.node] = true
				}
				next = append(next, t)
			}
		}
		frontier = next
	}

	return state, nodeCount, nil
}

// journalResults appends one journal entry per executed task.
// Journal failures are logged, never fatal.
func (cg *CompiledGraph[S]) journalResults(cfg *runConfig, superstep int, results []taskResult[S]) {
	if cfg.journal == nil {
		return
	}
	for _, r := range results {
		cfg.sequence++
		entry := journal.Entry{
			RunID:     cfg.runID,
			Seq:       cfg.sequence,
			Superstep: superstep,
			NodeID:    r.task.node,
			Duration:  r.duration,
			Timestamp: time.Now().UTC(),
		}
		if r.err != nil {
			entry.Error = r.err.Error()
		}
		if err := cfg.journal.Append(entry); err != nil {
			observability.LogJournalError(cfg.logger, r.task.node, err)
		}
	}
}

// resolveNext resolves the outgoing edges of an executed node into the
// tasks it contributes to the next frontier.
// A conditional edge takes precedence over plain edges; plain edges all
// fire.
func (cg *CompiledGraph[S]) resolveNext(ctx Context, state S, nodeID string) ([]task[S], error) {
	if cond, exists := cg.getConditional(nodeID); exists {
		routerCtx := ctx
		if ec, ok := ctx.(*executionContext); ok {
			routerCtx = ec.withNodeID(nodeID, ec.attempt)
		}

		decision := cond.router(routerCtx, state)

		if decision.IsFanOut() {
			sends := decision.Sends()
			tasks := make([]task[S], 0, len(sends))
			for _, send := range sends {
				if _, exists := cg.getNode(send.Node); !exists {
					return nil, &RouterError{
						FromNode: nodeID,
						Label:    send.Node,
						Err:      ErrRouteTargetNotFound,
					}
				}
				seed := send.Seed
				tasks = append(tasks, task[S]{node: send.Node, seed: &seed, from: nodeID})
			}
			return tasks, nil
		}

		label := decision.Label()
		if label == "" {
			return nil, &RouterError{FromNode: nodeID, Label: label, Err: ErrEmptyRouteLabel}
		}

		target := label
		if cond.routes != nil {
			mapped, ok := cond.routes[label]
			if !ok {
				return nil, &RouterError{FromNode: nodeID, Label: label, Err: ErrUnmappedRouteLabel}
			}
			target = mapped
		}

		if target != END {
			if _, exists := cg.getNode(target); !exists {
				return nil, &RouterError{FromNode: nodeID, Label: label, Err: ErrRouteTargetNotFound}
			}
		}

		return []task[S]{{node: target, from: nodeID}}, nil
	}

	edges := cg.edges[nodeID]
	if len(edges) == 0 {
		// Compile() guarantees a path to END, but a node may still lack
		// outgoing edges when another path carried the reachability check.
		return nil, &NodeError{
			NodeID: nodeID,
			Op:     "routing",
			Err:    fmt.Errorf("no outgoing edge from node %s", nodeID),
		}
	}

	tasks := make([]task[S], 0, len(edges))
	for _, target := range edges {
		tasks = append(tasks, task[S]{node: target, from: nodeID})
	}
	return tasks, nil
}

// executeNode runs one node with the configured retry policy.
// Without a policy the node gets a single attempt.
func (cg *CompiledGraph[S]) executeNode(ctx Context, nodeID string, state S, cfg *runConfig) (S, error) {
	rc := cfg.retryFor(nodeID)
	if rc == nil {
		return cg.attemptNode(ctx, nodeID, state, 1)
	}

	attempt := 0
	res := xerrors.WithRetryContext(ctx, *rc, func(_ context.Context) (S, error) {
		attempt++
		return cg.attemptNode(ctx, nodeID, state, attempt)
	})
	return res.Value, res.Err
}

// attemptNode executes a single node attempt with panic recovery.
func (cg *CompiledGraph[S]) attemptNode(ctx Context, nodeID string, state S, attempt int) (result S, err error) {
	fn, exists := cg.getNode(nodeID)
	if !exists {
		// Unreachable after a successful Compile().
		return state, &NodeError{
			NodeID: nodeID,
			Op:     "lookup",
			Err:    fmt.Errorf("node not found: %s", nodeID),
		}
	}

	nodeCtx := ctx
	if ec, ok := ctx.(*executionContext); ok {
		nodeCtx = ec.withNodeID(nodeID, attempt)
	}

	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	result, err = fn(nodeCtx, state)
	if err != nil {
		return result, &NodeError{
			NodeID: nodeID,
			Op:     "execute",
			Err:    err,
		}
	}

	return result, nil
}

// taskNodes returns the node IDs of a frontier, for error reporting.
func taskNodes[S any](frontier []task[S]) []string {
	nodes := make([]string, len(frontier))
	for i, t := range frontier {
		nodes[i] = t.node
	}
	return nodes
}
