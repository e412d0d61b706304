package runtime

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hinoue/batchflow/store"
	"github.com/hinoue/batchflow/types"
	"github.com/hinoue/batchflow/utils"
)

const (
	RunPath    = "/run/"
	RecordPath = "/record/"
)

func recordSavePath(runID string) string {
	return RecordPath + runID
}

// RunSummary is the persisted projection of one execution run.
type RunSummary struct {
	Workflow        string    `json:"workflow"`
	RunID           string    `json:"run_id"`
	Success         bool      `json:"success"`
	TotalDurationMS float64   `json:"total_duration_ms"`
	NodesCompleted  int       `json:"nodes_completed"`
	NodesFailed     int       `json:"nodes_failed"`
	Errors          []string  `json:"errors,omitempty"`
	StartTime       time.Time `json:"start_time"`
}

// traceRecorder persists per-node snapshots and the run summary as the
// executor progresses. Persistence is best effort: failures are logged
// and never surface into the execution result. A nil recorder is valid
// and records nothing.
type traceRecorder struct {
	store store.Store

	workflow  string
	runID     string
	startTime time.Time
}

func newTraceRecorder(s store.Store, workflow, runID string) *traceRecorder {
	return &traceRecorder{
		store:     s,
		workflow:  workflow,
		runID:     runID,
		startTime: time.Now(),
	}
}

func (t *traceRecorder) recordNode(ctx context.Context, node *types.Node) {
	if t == nil {
		return
	}
	b, err := utils.Serialize(node.Snapshot())
	if err != nil {
		log.Errorf("%s failed to serialize record for %s: %v", t.runID, node.ID, err)
		return
	}
	if err := t.store.Set(ctx, recordSavePath(t.runID), node.ID, b); err != nil {
		log.Errorf("%s failed to save record for %s: %v", t.runID, node.ID, err)
	}
}

func (t *traceRecorder) recordRun(ctx context.Context, wf *Workflow, result *types.Result) {
	if t == nil {
		return
	}
	summary := &RunSummary{
		Workflow:        wf.Name(),
		RunID:           t.runID,
		Success:         result.Success,
		TotalDurationMS: result.TotalDurationMS(),
		NodesCompleted:  result.NodesCompleted,
		NodesFailed:     result.NodesFailed,
		Errors:          result.Errors,
		StartTime:       t.startTime,
	}
	b, err := utils.Serialize(summary)
	if err != nil {
		log.Errorf("%s failed to serialize run summary: %v", t.runID, err)
		return
	}
	if err := t.store.Set(ctx, RunPath, t.runID, b); err != nil {
		log.Errorf("%s failed to save run summary: %v", t.runID, err)
	}
}
