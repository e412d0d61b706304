package runtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/hinoue/batchflow/store"
	"github.com/hinoue/batchflow/types"
	"github.com/hinoue/batchflow/utils"
)

// Engine is the process-wide workflow registry. It owns the trace store
// and the execution options; there is no global state, callers construct
// one at startup and pass it around.
type Engine struct {
	store store.Store
	opts  *types.EngineOptions

	mu        sync.Mutex
	workflows map[string]*Workflow
}

func NewEngine(s store.Store, opts *types.EngineOptions) *Engine {
	return &Engine{
		store:     s,
		opts:      opts,
		workflows: make(map[string]*Workflow),
	}
}

// RegisterWorkflow builds a named workflow through the given handler.
// Registering the same name twice is rejected.
func (e *Engine) RegisterWorkflow(name string, build func(*Workflow) error) error {
	wf := NewWorkflow(name)
	if err := build(wf); err != nil {
		return errors.Trace(err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.workflows[name]; exists {
		return errors.AlreadyExistsf("workflow: %s", name)
	}
	e.workflows[name] = wf
	return nil
}

func (e *Engine) GetWorkflow(name string) (*Workflow, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wf, exists := e.workflows[name]
	return wf, exists
}

func (e *Engine) ListWorkflowNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.workflows))
	for name := range e.workflows {
		names = append(names, name)
	}
	return names
}

// Run executes a registered workflow, persisting per-node trace records
// and a run summary under the run ID. An empty runID gets a generated
// one. Node failures are reported through the Result, never as an error;
// the returned error covers unknown workflows, duplicate run IDs and
// configuration errors from planning.
func (e *Engine) Run(ctx context.Context, workflowName, runID string, params types.Data) (*types.Result, error) {
	wf, exists := e.GetWorkflow(workflowName)
	if !exists {
		return nil, errors.NotFoundf("workflow: %s", workflowName)
	}

	if runID == "" {
		runID = uuid.NewString()
		log.Infof("workflow %s: generated run id %s", workflowName, runID)
	}
	if existing, err := e.store.Get(ctx, RunPath, runID); err != nil {
		return nil, errors.Annotatef(err, "check run id %s", runID)
	} else if existing != nil {
		return nil, errors.AlreadyExistsf("run id: %s", runID)
	}

	tr := newTraceRecorder(e.store, workflowName, runID)
	ex := newExecutor(e.opts.MaxNodeConcurrency, tr)

	result, err := ex.execute(ctx, wf, runID, params)
	return result, errors.Trace(err)
}

// GetRunSummary loads the persisted summary of a finished run.
func (e *Engine) GetRunSummary(ctx context.Context, runID string) (*RunSummary, error) {
	b, err := e.store.Get(ctx, RunPath, runID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if b == nil {
		return nil, errors.NotFoundf("run id: %s", runID)
	}
	summary := &RunSummary{}
	if err := utils.Unserialize(b, summary); err != nil {
		return nil, errors.Trace(err)
	}
	return summary, nil
}

func (e *Engine) loadRecords(ctx context.Context, runID string) (map[string]*types.NodeSnapshot, error) {
	records := make(map[string]*types.NodeSnapshot)
	recordPath := recordSavePath(runID)
	err := e.store.List(ctx, recordPath, func(node string) bool {
		b, err := e.store.Get(ctx, recordPath, node)
		if err != nil {
			log.Errorf("load %s %s from store failed: %v", recordPath, node, err)
			return true
		}
		record := &types.NodeSnapshot{}
		if err := utils.Unserialize(b, record); err != nil {
			log.Errorf("unserialize %s %s from store:%s failed: %v", recordPath, node, string(b), err)
			return true
		}
		records[node] = record
		return true
	})
	return records, errors.Trace(err)
}

// RenderWorkflow returns the DOT rendering of a registered workflow.
func (e *Engine) RenderWorkflow(name string) (string, error) {
	wf, exists := e.GetWorkflow(name)
	if !exists {
		return "", errors.NotFoundf("workflow: %s", name)
	}
	return newDAGRenderer().generateDOT(wf, nil)
}

// RenderRun returns the DOT rendering of a finished run, with nodes
// colored by their recorded status.
func (e *Engine) RenderRun(ctx context.Context, runID string) (string, error) {
	summary, err := e.GetRunSummary(ctx, runID)
	if err != nil {
		return "", errors.Trace(err)
	}
	wf, exists := e.GetWorkflow(summary.Workflow)
	if !exists {
		return "", errors.NotFoundf("workflow: %s", summary.Workflow)
	}
	records, err := e.loadRecords(ctx, runID)
	if err != nil {
		return "", errors.Trace(err)
	}
	return newDAGRenderer().generateDOT(wf, records)
}
