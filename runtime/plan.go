package runtime

import (
	"github.com/juju/errors"

	"github.com/hinoue/batchflow/types"
)

// ComputeBatches partitions the nodes into ordered batches with Kahn's
// algorithm. Every node lands in exactly one batch, strictly after all
// of its dependencies, and each batch is the maximal ready set at that
// point, so the plan has the minimum number of batches.
//
// Planning fails with DanglingDependencyError when a node depends on an
// ID that was never added, and with CircularDependencyError when no
// topological order exists. Both are detected here, before any node
// runs. The plan is cached until the next AddNode.
func (w *Workflow) ComputeBatches() ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.computeBatchesLocked()
}

func (w *Workflow) computeBatchesLocked() ([][]string, error) {
	if w.plan != nil {
		return w.plan, nil
	}

	inDegree := make(map[string]int, len(w.nodes))
	adjacency := make(map[string][]string, len(w.nodes))
	for _, id := range w.order {
		inDegree[id] = 0
	}
	for _, id := range w.order {
		for _, dep := range w.nodes[id].Dependencies {
			if _, exists := w.nodes[dep]; !exists {
				return nil, errors.Trace(&types.DanglingDependencyError{
					NodeID:       id,
					DependencyID: dep,
				})
			}
			adjacency[dep] = append(adjacency[dep], id)
			inDegree[id]++
		}
	}

	batches := make([][]string, 0)
	remaining := make(map[string]bool, len(w.nodes))
	for _, id := range w.order {
		remaining[id] = true
	}

	for len(remaining) > 0 {
		// collect every node whose dependencies all settled in earlier
		// batches, in insertion order
		ready := make([]string, 0)
		for _, id := range w.order {
			if remaining[id] && inDegree[id] == 0 {
				ready = append(ready, id)
			}
		}

		if len(ready) == 0 {
			stuck := make([]string, 0, len(remaining))
			for _, id := range w.order {
				if remaining[id] {
					stuck = append(stuck, id)
				}
			}
			return nil, errors.Trace(&types.CircularDependencyError{Remaining: stuck})
		}

		batches = append(batches, ready)
		for _, id := range ready {
			delete(remaining, id)
			for _, neighbor := range adjacency[id] {
				inDegree[neighbor]--
			}
		}
	}

	w.plan = batches
	return batches, nil
}
