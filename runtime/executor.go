package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/hinoue/batchflow/types"
	"github.com/hinoue/batchflow/utils"
)

const defaultNodeConcurrency = 64

var (
	_ types.Context = &runContext{}
)

// runContext is the types.Context handed to every node unit.
type runContext struct {
	context.Context

	runID string
}

func (c *runContext) GetRunID() string {
	return c.runID
}

// executor drives a planned workflow to completion: batches strictly in
// sequence, nodes within a batch concurrently on a bounded worker pool.
type executor struct {
	concurrency int
	trace       *traceRecorder
}

func newExecutor(concurrency int, trace *traceRecorder) *executor {
	if concurrency <= 0 {
		concurrency = defaultNodeConcurrency
	}
	return &executor{concurrency: concurrency, trace: trace}
}

// Execute plans and runs the whole workflow. The returned error is
// non-nil only for configuration errors raised by planning; node
// failures are reported through the Result.
func (w *Workflow) Execute(ctx context.Context, initial types.Data) (*types.Result, error) {
	return newExecutor(defaultNodeConcurrency, nil).execute(ctx, w, "", initial)
}

type nodeOutcome struct {
	node   *types.Node
	result any
	err    error
}

func (e *executor) execute(ctx context.Context, wf *Workflow, runID string, initial types.Data) (*types.Result, error) {
	batches, err := wf.ComputeBatches()
	if err != nil {
		return nil, errors.Trace(err)
	}

	log.Infof("workflow %s: executing %d nodes in %d batches", wf.name, wf.NodeCount(), len(batches))

	fc := &runContext{Context: ctx, runID: runID}
	// fresh context per run; the caller's map is never touched
	data := types.Data(utils.CloneMap(map[string]any(initial)))

	wp := workerpool.New(e.concurrency)
	defer wp.StopWait()

	result := &types.Result{Errors: []string{}}
	start := time.Now()

	for batchIdx, batch := range batches {
		// the join below never starts batch i+1 before every node in
		// batch i settled; a cancelled context is the one early exit
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("batch %d failed: %s", batchIdx+1, err.Error()))
			log.Errorf("workflow %s: batch %d/%d aborted: %v", wf.name, batchIdx+1, len(batches), err)
			break
		}

		log.Debugf("workflow %s: batch %d/%d, %d nodes", wf.name, batchIdx+1, len(batches), len(batch))
		outcomes := e.executeBatch(fc, wp, wf, batch, data)

		// single write-back point: node units only ever read the shared
		// context, the executor mutates it here between batches
		for _, outcome := range outcomes {
			if outcome.err != nil {
				data.Set(outcome.node.ID, types.ErrorSentinel(outcome.err))
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: %s", outcome.node.ID, outcome.err.Error()))
				continue
			}
			data.Set(outcome.node.ID, outcome.result)
		}
	}

	result.TotalDuration = time.Since(start)
	result.Results = data

	for _, id := range wf.order {
		switch wf.nodes[id].Status {
		case types.Completed:
			result.NodesCompleted++
		case types.Failed:
			result.NodesFailed++
		}
	}
	result.Success = result.NodesFailed == 0

	log.Infof("workflow %s: done in %.2fms, completed=%d failed=%d",
		wf.name, result.TotalDurationMS(), result.NodesCompleted, result.NodesFailed)

	e.trace.recordRun(ctx, wf, result)
	return result, nil
}

// executeBatch launches every node of the batch on the pool and waits
// for all of them to settle. Node errors are captured into the outcome,
// never propagated, so a single failure aborts nothing.
func (e *executor) executeBatch(fc *runContext, wp *workerpool.WorkerPool, wf *Workflow, batch []string, data types.Data) []nodeOutcome {
	outcomes := make([]nodeOutcome, len(batch))
	wg := &sync.WaitGroup{}
	for i, id := range batch {
		node := wf.nodes[id]
		outcomes[i].node = node

		i := i
		wg.Add(1)
		wp.Submit(func() {
			defer wg.Done()

			outcomes[i].result, outcomes[i].err = e.executeNode(fc, node, data)
		})
	}
	// the join: no node of the next batch starts before every node of
	// this batch settled, success or failure
	wg.Wait()

	return outcomes
}

func (e *executor) executeNode(fc *runContext, node *types.Node, input types.Data) (any, error) {
	log.Debugf("executing node %s (%s)", node.ID, node.Name)
	node.Status = types.Running
	node.StartTime = time.Now()

	result, err := runUnit(fc, node, input)
	node.EndTime = time.Now()

	if err != nil {
		node.Error = err.Error()
		node.Status = types.Failed
		log.Errorf("node %s failed: %v", node.ID, err)
	} else {
		node.Result = result
		node.Status = types.Completed
		if d, ok := node.DurationMS(); ok {
			log.Debugf("node %s completed in %.2fms", node.ID, d)
		}
	}

	e.trace.recordNode(fc, node)
	return result, err
}

// runUnit invokes the node's unit, converting a panic into a captured
// error so one crashing node cannot take down its batch.
func runUnit(fc types.Context, node *types.Node, input types.Data) (result any, retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = errors.Errorf("panic on %s: %v", node.ID, r)
		}
	}()
	return node.Unit(fc, input)
}
