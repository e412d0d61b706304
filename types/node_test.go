package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hinoue/batchflow/utils"
)

func TestNodeDuration(t *testing.T) {
	node := &Node{ID: "n1", Name: "Node One", Stage: StageTesting}

	_, ok := node.DurationMS()
	assert.False(t, ok)

	node.StartTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	_, ok = node.DurationMS()
	assert.False(t, ok)

	node.EndTime = node.StartTime.Add(1500 * time.Millisecond)
	d, ok := node.DurationMS()
	assert.True(t, ok)
	assert.Equal(t, 1500.0, d)
}

func TestNodeSnapshotRoundTrip(t *testing.T) {
	node := &Node{
		ID:            "n1",
		Name:          "Node One",
		Stage:         StageImplementation,
		Status:        Completed,
		Dependencies:  []string{"n0"},
		ParallelGroup: "g1",
		StartTime:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2024, 3, 1, 10, 0, 0, 250_000_000, time.UTC),
	}

	b, err := utils.Serialize(node.Snapshot())
	assert.Nil(t, err)

	restored := &NodeSnapshot{}
	assert.Nil(t, utils.Unserialize(b, restored))

	assert.Equal(t, "n1", restored.ID)
	assert.Equal(t, "implementation", restored.Stage)
	assert.Equal(t, "completed", restored.Status)
	assert.Equal(t, []string{"n0"}, restored.Dependencies)
	assert.Equal(t, "g1", restored.ParallelGroup)
	assert.NotNil(t, restored.DurationMS)
	assert.Equal(t, 250.0, *restored.DurationMS)
	assert.Equal(t, "", restored.Error)
}

func TestNodeSnapshotPending(t *testing.T) {
	node := &Node{ID: "n1", Name: "Node One", Stage: StageDesign}

	b, err := utils.Serialize(node.Snapshot())
	assert.Nil(t, err)

	restored := &NodeSnapshot{}
	assert.Nil(t, utils.Unserialize(b, restored))

	assert.Equal(t, "pending", restored.Status)
	// duration is omitted until the node has settled
	assert.Nil(t, restored.DurationMS)
}

func TestStatusAndStageStrings(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "skipped", Skipped.String())

	assert.Equal(t, "requirement_analysis", StageRequirement.String())
	assert.Equal(t, "deployment", StageDeployment.String())
	assert.Len(t, Stages(), 5)
	assert.Len(t, Statuses(), 5)
}
