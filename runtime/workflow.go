package runtime

import (
	"fmt"
	"strings"
	"sync"

	"github.com/juju/errors"

	"github.com/hinoue/batchflow/types"
	"github.com/hinoue/batchflow/utils"
)

// Workflow is a registry of named nodes forming a dependency DAG. Nodes
// are added once and never removed; the batch plan is derived from the
// dependency relation and cached until the next AddNode.
type Workflow struct {
	name string

	mu    sync.Mutex
	nodes map[string]*types.Node
	// order keeps node insertion order so planning is deterministic.
	order []string

	plan [][]string
}

func NewWorkflow(name string) *Workflow {
	return &Workflow{
		name:  name,
		nodes: make(map[string]*types.Node),
	}
}

func (w *Workflow) Name() string {
	return w.name
}

// AddNode registers a new node. Dependency IDs are not validated here;
// a dangling ID fails loudly at planning time. Re-adding an existing ID
// is rejected.
func (w *Workflow) AddNode(id, name string, stage types.Stage, unit types.UnitHandler,
	dependencies []string, parallelGroup string) (*types.Node, error) {
	if id == "" {
		return nil, errors.BadRequestf("node id is empty")
	}
	if unit == nil {
		return nil, errors.BadRequestf("node %s unit is nil", id)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.nodes[id]; exists {
		return nil, errors.AlreadyExistsf("node: %s", id)
	}

	node := &types.Node{
		ID:            id,
		Name:          name,
		Stage:         stage,
		Unit:          unit,
		Dependencies:  utils.UniqueSlice(append([]string{}, dependencies...)),
		ParallelGroup: parallelGroup,
		Status:        types.Pending,
	}
	w.nodes[id] = node
	w.order = append(w.order, id)
	w.plan = nil
	return node, nil
}

// Node looks up a node by ID.
func (w *Workflow) Node(id string) (*types.Node, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	node, exists := w.nodes[id]
	return node, exists
}

// NodeCount returns the number of registered nodes.
func (w *Workflow) NodeCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.nodes)
}

// Subtask describes one child of a WBS decomposition. An empty
// dependency entry resolves to the parent task itself.
type Subtask struct {
	ID           string
	Name         string
	Unit         types.UnitHandler
	Dependencies []string
}

// AddSubtasks registers work-breakdown children of a parent task. Each
// child is stored under "<parent>.<id>" and its dependencies are
// rewritten into the same namespace.
func (w *Workflow) AddSubtasks(parent string, stage types.Stage, subtasks []Subtask) ([]*types.Node, error) {
	nodes := make([]*types.Node, 0, len(subtasks))
	for _, st := range subtasks {
		deps := make([]string, 0, len(st.Dependencies))
		for _, dep := range st.Dependencies {
			if dep == "" {
				deps = append(deps, parent)
				continue
			}
			deps = append(deps, parent+"."+dep)
		}

		node, err := w.AddNode(parent+"."+st.ID, st.Name, stage, st.Unit, deps, "")
		if err != nil {
			return nil, errors.Trace(err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// VisualizeDAG renders a stage-grouped listing of the workflow.
func (w *Workflow) VisualizeDAG() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Workflow: %s\n", w.name)
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	for _, stage := range types.Stages() {
		header := false
		for _, id := range w.order {
			node := w.nodes[id]
			if node.Stage != stage {
				continue
			}
			if !header {
				fmt.Fprintf(sb, "\n%s:\n", strings.ToUpper(stage.String()))
				header = true
			}
			parallel := ""
			if node.ParallelGroup != "" {
				parallel = fmt.Sprintf(" [Parallel: %s]", node.ParallelGroup)
			}
			deps := "None"
			if len(node.Dependencies) > 0 {
				deps = strings.Join(node.Dependencies, ", ")
			}
			fmt.Fprintf(sb, "  - %s (%s)%s\n", node.ID, node.Name, parallel)
			fmt.Fprintf(sb, "    Dependencies: %s\n", deps)
		}
	}
	return sb.String()
}

// Summary reports execution statistics for the workflow's current state.
type Summary struct {
	WorkflowName          string         `json:"workflow_name"`
	TotalNodes            int            `json:"total_nodes"`
	Batches               int            `json:"batches"`
	NodesByStatus         map[string]int `json:"nodes_by_status"`
	NodesByStage          map[string]int `json:"nodes_by_stage"`
	AverageNodeDurationMS float64        `json:"average_node_duration_ms"`
}

func (w *Workflow) Summary() *Summary {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := &Summary{
		WorkflowName:  w.name,
		TotalNodes:    len(w.nodes),
		Batches:       len(w.plan),
		NodesByStatus: make(map[string]int),
		NodesByStage:  make(map[string]int),
	}
	for _, status := range types.Statuses() {
		s.NodesByStatus[status.String()] = 0
	}
	for _, stage := range types.Stages() {
		s.NodesByStage[stage.String()] = 0
	}

	totalMS := 0.0
	measured := 0
	for _, node := range w.nodes {
		s.NodesByStatus[node.Status.String()]++
		s.NodesByStage[node.Stage.String()]++
		if d, ok := node.DurationMS(); ok {
			totalMS += d
			measured++
		}
	}
	if measured > 0 {
		s.AverageNodeDurationMS = totalMS / float64(measured)
	}
	return s
}
