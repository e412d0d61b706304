package types

import (
	"time"
)

// UnitHandler is the executable unit of a node. It receives the shared
// context holding the seed values and every earlier batch's results, and
// returns this node's result. Units must not mutate the context; the
// executor performs the single write-back after the batch settles.
type UnitHandler func(ctx Context, input Data) (any, error)

// Node is a single task in a workflow graph. ID is unique within the
// graph and immutable once added; Status, Result, Error and the
// timestamps are written only by the executor.
type Node struct {
	ID   string
	Name string

	Stage Stage
	Unit  UnitHandler

	// Dependencies lists node IDs that must settle in strictly earlier
	// batches before this node may start.
	Dependencies []string
	// ParallelGroup is a free-text label surfaced in visualization only.
	ParallelGroup string

	Status Status
	Result any
	Error  string

	StartTime time.Time
	EndTime   time.Time
}

// DurationMS reports the wall-clock execution time in milliseconds, and
// false until the node has both started and settled.
func (n *Node) DurationMS() (float64, bool) {
	if n.StartTime.IsZero() || n.EndTime.IsZero() {
		return 0, false
	}
	return float64(n.EndTime.Sub(n.StartTime)) / float64(time.Millisecond), true
}

// NodeSnapshot is the serializable projection of a node.
type NodeSnapshot struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Stage         string   `json:"stage"`
	Status        string   `json:"status"`
	Dependencies  []string `json:"dependencies"`
	ParallelGroup string   `json:"parallel_group,omitempty"`
	DurationMS    *float64 `json:"duration_ms,omitempty"`
	Error         string   `json:"error,omitempty"`
}

func (n *Node) Snapshot() *NodeSnapshot {
	s := &NodeSnapshot{
		ID:            n.ID,
		Name:          n.Name,
		Stage:         n.Stage.String(),
		Status:        n.Status.String(),
		Dependencies:  n.Dependencies,
		ParallelGroup: n.ParallelGroup,
		Error:         n.Error,
	}
	if d, ok := n.DurationMS(); ok {
		s.DurationMS = &d
	}
	return s
}
