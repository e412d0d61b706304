package types

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
)

var (
	_ error = &CircularDependencyError{}
	_ error = &DanglingDependencyError{}
)

// CircularDependencyError is the fatal configuration error raised by the
// batch planner when the dependency relation has no topological order.
// Remaining holds the node IDs stuck on the cycle (or downstream of it).
type CircularDependencyError struct {
	Remaining []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected, unresolved nodes: %s",
		strings.Join(e.Remaining, ", "))
}

// DanglingDependencyError is raised by the batch planner when a node
// declares a dependency on an ID that was never added to the graph.
type DanglingDependencyError struct {
	NodeID       string
	DependencyID string
}

func (e *DanglingDependencyError) Error() string {
	return fmt.Sprintf("node %s depends on unknown node %s", e.NodeID, e.DependencyID)
}

func IsCircularDependency(err error) bool {
	_, ok := errors.Cause(err).(*CircularDependencyError)
	return ok
}

func IsDanglingDependency(err error) bool {
	_, ok := errors.Cause(err).(*DanglingDependencyError)
	return ok
}
