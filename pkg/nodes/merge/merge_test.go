package merge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/nodes/merge"
)

func TestValidateParameters(t *testing.T) {
	t.Parallel()

	node := merge.NewNode()

	assert.NoError(t, node.ValidateParameters(map[string]any{}))
	assert.NoError(t, node.ValidateParameters(map[string]any{"strategy": "shallow"}))
	assert.NoError(t, node.ValidateParameters(map[string]any{"strategy": "nested"}))
	assert.Error(t, node.ValidateParameters(map[string]any{"strategy": "deep"}))
}

func TestExecuteShallow(t *testing.T) {
	t.Parallel()

	node := merge.NewNode()
	execCtx := &models.ExecutionContext{
		Inputs: map[string]map[string]any{
			"b_prices": {"total": float64(10), "currency": "EUR"},
			"a_items":  {"total": float64(99), "count": float64(3)},
		},
	}

	output, err := node.Execute(context.Background(), execCtx, map[string]any{})
	require.NoError(t, err)

	// Keys merge in sorted label order, so b_prices overrides a_items.
	assert.Equal(t, map[string]any{
		"total":    float64(10),
		"currency": "EUR",
		"count":    float64(3),
	}, output.Data)
}

func TestExecuteNested(t *testing.T) {
	t.Parallel()

	node := merge.NewNode()
	execCtx := &models.ExecutionContext{
		Inputs: map[string]map[string]any{
			"items":  {"count": float64(3)},
			"prices": {"total": float64(10)},
		},
	}

	output, err := node.Execute(context.Background(), execCtx, map[string]any{"strategy": "nested"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"items":  map[string]any{"count": float64(3)},
		"prices": map[string]any{"total": float64(10)},
	}, output.Data)
}
