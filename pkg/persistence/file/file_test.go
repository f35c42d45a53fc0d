package file_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
	"github.com/cascadehq/cascade/pkg/persistence/file"
	"github.com/cascadehq/cascade/pkg/testutil"
)

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence("file://" + t.TempDir())
	assert.NoError(t, store.HealthCheck(context.Background()))
	assert.NoError(t, store.Close(context.Background()))

	missing := file.NewPersistence("/nonexistent/cascade-test-root")
	assert.Error(t, missing.HealthCheck(context.Background()))
}

func TestWorkflowRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := file.NewPersistence(t.TempDir()).WorkflowRepository()

	def := testutil.CreateTestWorkflow(
		[]*models.NodeDefinition{testutil.CreateTestNode("a")},
		nil,
	)

	require.NoError(t, repo.SaveWorkflow(ctx, def))

	loaded, err := repo.WorkflowByID(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, def.Name, loaded.Name)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, "a", loaded.Nodes[0].ID)

	// Saving again overwrites in place.
	def.Name = "Renamed Workflow"
	require.NoError(t, repo.SaveWorkflow(ctx, def))

	loaded, err = repo.WorkflowByID(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Workflow", loaded.Name)

	all, err := repo.Workflows(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.DeleteWorkflow(ctx, def.ID))

	_, err = repo.WorkflowByID(ctx, def.ID)
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = repo.DeleteWorkflow(ctx, def.ID)
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestExecutionRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := file.NewPersistence(t.TempDir()).ExecutionRepository()

	first := models.NewExecution("wf-orders", map[string]any{"seed": float64(1)})
	require.NoError(t, repo.CreateExecution(ctx, first))

	// Ensure a distinct StartedAt so the listing order is deterministic.
	second := models.NewExecution("wf-orders", nil)
	second.StartedAt = first.StartedAt.Add(time.Second)
	require.NoError(t, repo.CreateExecution(ctx, second))

	other := models.NewExecution("wf-other", nil)
	require.NoError(t, repo.CreateExecution(ctx, other))

	first.Finish(models.ExecutionStatusSuccess, map[string]any{"done": true}, "")
	require.NoError(t, repo.UpdateExecution(ctx, first))

	loaded, err := repo.ExecutionByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, loaded.Status)
	require.NotNil(t, loaded.FinishedAt)
	assert.Equal(t, map[string]any{"seed": float64(1)}, loaded.InputData)

	listed, err := repo.ExecutionsByWorkflow(ctx, "wf-orders")
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Newest first.
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)

	_, err = repo.ExecutionByID(ctx, "exec-missing")
	require.Error(t, err)
	assert.True(t, persistence.IsExecutionNotFound(err))
}

func TestNodeExecutionRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := file.NewPersistence(t.TempDir()).ExecutionRepository()

	execution := models.NewExecution("wf-orders", nil)
	require.NoError(t, repo.CreateExecution(ctx, execution))

	first := models.NewNodeExecution(execution.ID, "entry")
	require.NoError(t, repo.CreateNodeExecution(ctx, first))

	second := models.NewNodeExecution(execution.ID, "enrich")
	second.StartedAt = first.StartedAt.Add(time.Second)
	require.NoError(t, repo.CreateNodeExecution(ctx, second))

	first.Finish(models.ExecutionStatusSuccess, map[string]any{"out": "x"}, "")
	require.NoError(t, repo.UpdateNodeExecution(ctx, first))

	records, err := repo.NodeExecutionsByExecution(ctx, execution.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Oldest first, matching dispatch order.
	assert.Equal(t, "entry", records[0].NodeID)
	assert.Equal(t, "enrich", records[1].NodeID)
	assert.Equal(t, models.ExecutionStatusSuccess, records[0].Status)

	empty, err := repo.NodeExecutionsByExecution(ctx, "exec-missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
