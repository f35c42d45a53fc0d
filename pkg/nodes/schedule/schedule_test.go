package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/nodes/schedule"
)

func TestValidateParameters(t *testing.T) {
	t.Parallel()

	node := schedule.NewNode()

	assert.NoError(t, node.ValidateParameters(map[string]any{"cron": "*/5 * * * *"}))
	assert.NoError(t, node.ValidateParameters(map[string]any{"cron": "@hourly"}))
	assert.Error(t, node.ValidateParameters(map[string]any{}))
	assert.Error(t, node.ValidateParameters(map[string]any{"cron": ""}))
	assert.Error(t, node.ValidateParameters(map[string]any{"cron": "every tuesday"}))
}

func TestExecuteReturnsUpcomingFireTimes(t *testing.T) {
	t.Parallel()

	node := schedule.NewNode()

	output, err := node.Execute(context.Background(), &models.ExecutionContext{}, map[string]any{
		"cron":  "0 * * * *",
		"count": float64(3),
	})
	require.NoError(t, err)

	assert.Equal(t, "0 * * * *", output.Data["cron"])

	next, ok := output.Data["next"].([]any)
	require.True(t, ok)
	require.Len(t, next, 3)

	previous := time.Now().UTC()

	for _, raw := range next {
		fireTime, err := time.Parse(time.RFC3339, raw.(string))
		require.NoError(t, err)
		assert.True(t, fireTime.After(previous))
		assert.Equal(t, 0, fireTime.Minute())
		previous = fireTime
	}

	seconds, ok := output.Data["seconds_until"].(int64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, seconds, int64(0))
	assert.LessOrEqual(t, seconds, int64(3600))
}

func TestExecuteCapsRequestedCount(t *testing.T) {
	t.Parallel()

	node := schedule.NewNode()

	output, err := node.Execute(context.Background(), &models.ExecutionContext{}, map[string]any{
		"cron":  "* * * * *",
		"count": float64(500),
	})
	require.NoError(t, err)

	next, ok := output.Data["next"].([]any)
	require.True(t, ok)
	assert.Len(t, next, 50)
}
