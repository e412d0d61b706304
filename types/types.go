package types

import (
	"context"
)

type Status int32

const (
	Pending   Status = 0
	Running   Status = 1
	Completed Status = 2
	Failed    Status = 3
	// Skipped is reserved for conditional execution; the executor never
	// assigns it and always attempts every node.
	Skipped Status = 4
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// Stage tags a node with its workflow lifecycle phase. Stages are
// descriptive only and never affect scheduling.
type Stage int32

const (
	StageRequirement    Stage = 1
	StageDesign         Stage = 2
	StageImplementation Stage = 3
	StageTesting        Stage = 4
	StageDeployment     Stage = 5
)

func (s Stage) String() string {
	switch s {
	case StageRequirement:
		return "requirement_analysis"
	case StageDesign:
		return "design"
	case StageImplementation:
		return "implementation"
	case StageTesting:
		return "testing"
	case StageDeployment:
		return "deployment"
	}
	return "unknown"
}

// Stages lists every stage in lifecycle order.
func Stages() []Stage {
	return []Stage{StageRequirement, StageDesign, StageImplementation, StageTesting, StageDeployment}
}

// Statuses lists every node status.
func Statuses() []Status {
	return []Status{Pending, Running, Completed, Failed, Skipped}
}

type Context interface {
	context.Context

	GetRunID() string
}
