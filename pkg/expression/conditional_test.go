package expression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/expression"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		left     any
		operator string
		right    any
		want     bool
	}{
		{name: "eq numbers across types", left: float64(5), operator: "eq", right: 5, want: true},
		{name: "eq strings", left: "active", operator: "eq", right: "active", want: true},
		{name: "ne mismatch", left: "active", operator: "ne", right: "paused", want: true},
		{name: "gt true", left: float64(10), operator: "gt", right: float64(3), want: true},
		{name: "gt equal is false", left: float64(3), operator: "gt", right: float64(3), want: false},
		{name: "lt true", left: 2, operator: "lt", right: int64(4), want: true},
		{name: "gte boundary", left: float64(3), operator: "gte", right: 3, want: true},
		{name: "lte boundary", left: float64(3), operator: "lte", right: 3, want: true},
		{name: "contains substring", left: "workflow engine", operator: "contains", right: "flow", want: true},
		{name: "contains missing", left: "workflow", operator: "contains", right: "queue", want: false},
		{name: "eq number vs string is false", left: float64(5), operator: "eq", right: "5", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := expression.Compare(tt.left, tt.operator, tt.right)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareTypeMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		left     any
		operator string
		right    any
	}{
		{name: "gt on string left", left: "abc", operator: "gt", right: float64(1)},
		{name: "lt on string right", left: float64(1), operator: "lt", right: "abc"},
		{name: "gte on nil", left: nil, operator: "gte", right: float64(1)},
		{name: "contains on number", left: float64(12), operator: "contains", right: "1"},
		{name: "contains non-string needle", left: "abc", operator: "contains", right: float64(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := expression.Compare(tt.left, tt.operator, tt.right)
			require.Error(t, err)
			assert.ErrorIs(t, err, expression.ErrTypeMismatch)
		})
	}
}

func TestValidOperator(t *testing.T) {
	t.Parallel()

	for _, op := range []string{"eq", "ne", "gt", "lt", "gte", "lte", "contains"} {
		assert.True(t, expression.ValidOperator(op), op)
	}

	assert.False(t, expression.ValidOperator("between"))
	assert.False(t, expression.ValidOperator(""))
}
