package registry_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/registry"
)

func newRegistry() *registry.Registry {
	reg := registry.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
	registry.RegisterDefaultNodes(reg)

	return reg
}

func TestRegisterDefaultNodes(t *testing.T) {
	t.Parallel()

	reg := newRegistry()

	for _, nodeType := range []string{
		"start", "conditional", "transform", "set_variable",
		"http_request", "log", "delay", "merge", "schedule",
	} {
		assert.True(t, reg.HasNode(nodeType), "expected %q to be registered", nodeType)
	}

	assert.False(t, reg.HasNode("teleport"))
	assert.Len(t, reg.NodeTypes(), 9)
}

func TestCreateNode(t *testing.T) {
	t.Parallel()

	reg := newRegistry()

	node, err := reg.CreateNode("conditional")
	require.NoError(t, err)
	assert.Equal(t, "conditional", node.Type())

	_, err = reg.CreateNode("teleport")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestValidateParameters(t *testing.T) {
	t.Parallel()

	reg := newRegistry()

	tests := []struct {
		name     string
		nodeType string
		params   map[string]any
		wantErr  string
	}{
		{
			name:     "valid conditional",
			nodeType: "conditional",
			params: map[string]any{
				"field":    "value",
				"operator": "gt",
				"value":    float64(5),
			},
		},
		{
			name:     "operator outside the enum",
			nodeType: "conditional",
			params: map[string]any{
				"field":    "a",
				"operator": "almost_equals",
				"value":    "b",
			},
			wantErr: "invalid parameters",
		},
		{
			name:     "missing required field",
			nodeType: "conditional",
			params: map[string]any{
				"operator": "eq",
				"value":    "b",
			},
			wantErr: "invalid parameters",
		},
		{
			name:     "nil params checked against required",
			nodeType: "conditional",
			params:   nil,
			wantErr:  "invalid parameters",
		},
		{
			name:     "unknown node type",
			nodeType: "teleport",
			params:   map[string]any{},
			wantErr:  "not registered",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			err := reg.ValidateParameters(test.nodeType, test.params)
			if test.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.wantErr)
			}
		})
	}
}
