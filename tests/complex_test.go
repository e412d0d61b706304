package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hinoue/batchflow"
	"github.com/hinoue/batchflow/runtime"
	"github.com/hinoue/batchflow/types"
)

func dumbUnit(ctx types.Context, input types.Data) (any, error) {
	return "ok", nil
}

func failingUnit(ctx types.Context, input types.Data) (any, error) {
	return nil, fmt.Errorf("flaky downstream")
}

type releaseFlow struct {
	t *testing.T
}

// a release pipeline wide enough to exercise multi-node batches and a
// WBS decomposition of the build step
func (d *releaseFlow) build(wf *runtime.Workflow) error {
	add := func(id string, stage types.Stage, unit types.UnitHandler, deps ...string) {
		_, err := wf.AddNode(id, id, stage, unit, deps, "")
		assert.Nil(d.t, err)
	}

	add("spec", types.StageRequirement, dumbUnit)
	add("design", types.StageDesign, dumbUnit, "spec")
	add("build", types.StageImplementation, dumbUnit, "design")

	_, err := wf.AddSubtasks("build", types.StageImplementation, []runtime.Subtask{
		{ID: "backend", Name: "Build Backend", Unit: dumbUnit, Dependencies: []string{""}},
		{ID: "frontend", Name: "Build Frontend", Unit: dumbUnit, Dependencies: []string{""}},
		{ID: "docs", Name: "Build Docs", Unit: failingUnit, Dependencies: []string{""}},
	})
	assert.Nil(d.t, err)

	add("test", types.StageTesting, dumbUnit, "build.backend", "build.frontend")
	add("deploy", types.StageDeployment, dumbUnit, "test", "build.docs")
	return nil
}

func TestReleasePipeline(t *testing.T) {
	engine, err := batchflow.NewEngine(types.EnableMemStore(), types.SetMaxNodeConcurrency(8))
	assert.Nil(t, err)

	flow := &releaseFlow{t: t}
	assert.Nil(t, engine.RegisterWorkflow("release", flow.build))

	wf, exists := engine.GetWorkflow("release")
	assert.True(t, exists)

	batches, err := wf.ComputeBatches()
	assert.Nil(t, err)
	assert.Equal(t, [][]string{
		{"spec"},
		{"design"},
		{"build"},
		{"build.backend", "build.frontend", "build.docs"},
		{"test"},
		{"deploy"},
	}, batches)

	result, err := engine.Run(context.Background(), "release", "release-42", types.Data{})
	assert.Nil(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 7, result.NodesCompleted)
	assert.Equal(t, 1, result.NodesFailed)
	assert.Equal(t, []string{"build.docs: flaky downstream"}, result.Errors)

	// deploy still ran, observing the sentinel for build.docs
	deploy, exists := result.Results.Get("deploy")
	assert.True(t, exists)
	assert.Equal(t, "ok", deploy)
	_, failed := result.Results.GetError("build.docs")
	assert.True(t, failed)

	summary, err := engine.GetRunSummary(context.Background(), "release-42")
	assert.Nil(t, err)
	assert.False(t, summary.Success)
	assert.Equal(t, 1, summary.NodesFailed)

	dot, err := engine.RenderRun(context.Background(), "release-42")
	assert.Nil(t, err)
	assert.Contains(t, dot, "color=\"red\"")
	assert.Contains(t, dot, "color=\"green\"")
	fmt.Printf("DOT:\n%s\n", dot)

	view := wf.VisualizeDAG()
	assert.Contains(t, view, "REQUIREMENT_ANALYSIS:")
	assert.Contains(t, view, "Dependencies: design")
}
