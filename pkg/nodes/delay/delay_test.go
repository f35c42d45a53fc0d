package delay_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/nodes/delay"
)

func TestValidateParameters(t *testing.T) {
	t.Parallel()

	node := delay.NewNode()

	assert.NoError(t, node.ValidateParameters(map[string]any{"duration_seconds": float64(0.5)}))
	assert.NoError(t, node.ValidateParameters(map[string]any{"duration_seconds": 2}))
	assert.Error(t, node.ValidateParameters(map[string]any{"duration_seconds": float64(0)}))
	assert.Error(t, node.ValidateParameters(map[string]any{"duration_seconds": "soon"}))
	assert.Error(t, node.ValidateParameters(map[string]any{}))
}

func TestExecutePassesInputThrough(t *testing.T) {
	t.Parallel()

	node := delay.NewNode()
	execCtx := &models.ExecutionContext{
		Inputs: map[string]map[string]any{
			"upstream": {"value": "kept"},
		},
	}

	started := time.Now()

	output, err := node.Execute(context.Background(), execCtx, map[string]any{
		"duration_seconds": float64(0.05),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(started), 50*time.Millisecond)
	assert.Equal(t, map[string]any{"value": "kept"}, output.Data)
}

func TestExecuteCancelledMidSleep(t *testing.T) {
	t.Parallel()

	node := delay.NewNode()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	started := time.Now()

	_, err := node.Execute(ctx, &models.ExecutionContext{}, map[string]any{
		"duration_seconds": float64(10),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 5*time.Second)
}
