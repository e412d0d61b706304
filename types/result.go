package types

import "time"

// Result is the aggregate outcome of one workflow execution. Execute
// always returns it for node-level failures; callers inspect Success
// and Errors to detect partial failure.
type Result struct {
	// Success is true iff no node failed and no batch halted early.
	Success bool

	TotalDuration time.Duration

	NodesCompleted int
	NodesFailed    int

	// Results is the final context snapshot: one entry per settled node
	// ID (failed nodes hold the error sentinel) plus the seed values.
	Results Data

	// Errors holds one "<node_id>: <message>" string per failed node, in
	// batch order, plus a trailing "batch N failed: ..." entry when a
	// run halted early.
	Errors []string
}

// TotalDurationMS reports the run duration in milliseconds.
func (r *Result) TotalDurationMS() float64 {
	return float64(r.TotalDuration) / float64(time.Millisecond)
}
