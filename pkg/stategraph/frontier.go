package stategraph

import (
	"context"
	"sync"
	"time"

	"github.com/randalmurphal/stategraph/pkg/stategraph/observability"
)

// executeFrontier runs every task of the current frontier against the
// same state snapshot and returns one result per task, in spawn order.
//
// A single-task frontier executes inline. Larger frontiers execute
// concurrently, one goroutine per task, sharing a cancellable context:
// the first failure cancels the siblings still in flight. Results keep
// spawn order regardless of completion order.
func (cg *CompiledGraph[S]) executeFrontier(tracingCtx context.Context, fgCtx Context, frontier []task[S], state S, cfg *runConfig) []taskResult[S] {
	if len(frontier) == 1 {
		return []taskResult[S]{cg.executeTask(tracingCtx, fgCtx, frontier[0], state, cfg)}
	}

	observability.LogFanOut(cfg.logger, cfg.runID, frontier[0].from, len(frontier))
	cfg.metrics.RecordFanOut(tracingCtx, frontier[0].from, len(frontier))

	branchCtx, cancel := context.WithCancelCause(fgCtx)
	defer cancel(nil)

	scoped := fgCtx
	if ec, ok := fgCtx.(*executionContext); ok {
		scoped = ec.withBase(branchCtx)
	}

	results := make([]taskResult[S], len(frontier))
	var wg sync.WaitGroup

	for i, t := range frontier {
		wg.Add(1)
		go func(i int, t task[S]) {
			defer wg.Done()
			results[i] = cg.executeTask(tracingCtx, scoped, t, state, cfg)
			if results[i].err != nil {
				cancel(results[i].err)
			}
		}(i, t)
	}

	wg.Wait()
	return results
}

// executeTask runs one node against its input snapshot and records the
// outcome through the configured observability hooks.
// A fan-out seed is merged into the snapshot before the node runs.
func (cg *CompiledGraph[S]) executeTask(tracingCtx context.Context, fgCtx Context, t task[S], state S, cfg *runConfig) taskResult[S] {
	// A cancelled sibling means this branch's output would be discarded
	// anyway; skip the work.
	select {
	case <-fgCtx.Done():
		return taskResult[S]{
			task: t,
			err: &CancellationError{
				NodeID: t.node,
				State:  state,
				Cause:  context.Cause(fgCtx),
			},
		}
	default:
	}

	input := state
	if t.seed != nil {
		cg.applyUpdate(&input, *t.seed)
	}

	observability.LogNodeStart(cfg.logger, cfg.runID, t.node)

	var result taskResult[S]
	result.task = t

	nodeStart := time.Now()

	if cfg.tracingEnabled {
		_, span := cfg.spans.StartNodeSpan(tracingCtx, t.node)
		result.delta, result.err = cg.executeNode(fgCtx, t.node, input, cfg)
		cfg.spans.EndSpanWithError(span, result.err)
	} else {
		result.delta, result.err = cg.executeNode(fgCtx, t.node, input, cfg)
	}

	result.duration = time.Since(nodeStart)
	durationMs := float64(result.duration.Milliseconds())

	cfg.metrics.RecordNodeExecution(tracingCtx, t.node, result.err == nil, result.duration)

	if result.err != nil {
		observability.LogNodeError(cfg.logger, cfg.runID, t.node, result.err, durationMs)
	} else {
		observability.LogNodeComplete(cfg.logger, cfg.runID, t.node, durationMs)
	}

	return result
}
