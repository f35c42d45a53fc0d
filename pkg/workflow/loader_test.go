package workflow_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/engine"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/registry"
	"github.com/cascadehq/cascade/pkg/testutil"
	"github.com/cascadehq/cascade/pkg/workflow"
)

const workflowYAML = `
name: Order Pipeline
execution_mode: parallel
timeout_seconds: 60
nodes:
  - id: entry
    node_type: start
  - id: enrich
    node_type: transform
    timeout_seconds: 10
    parameters:
      mapping:
        order_id: "{{input.order_id}}"
edges:
  - from: entry
    to: enrich
`

const workflowJSON = `{
  "id": "wf-orders",
  "name": "Order Pipeline",
  "nodes": [
    {"id": "entry", "node_type": "start"},
    {"id": "enrich", "node_type": "transform", "parameters": {"mapping": {"ok": true}}}
  ],
  "edges": [{"from": "entry", "to": "enrich"}]
}`

func newLoader() *workflow.Loader {
	reg := registry.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
	registry.RegisterDefaultNodes(reg)

	return workflow.NewLoader(reg)
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	def, err := newLoader().ParseYAML([]byte(workflowYAML))
	require.NoError(t, err)

	assert.Equal(t, "Order Pipeline", def.Name)
	assert.Equal(t, models.ExecutionModeParallel, def.Mode())
	assert.Equal(t, uint64(60), def.TimeoutSeconds)
	require.Len(t, def.Nodes, 2)
	assert.Equal(t, uint64(10), def.Nodes[1].TimeoutSeconds)

	// Defaults fill in what the document omitted.
	assert.NotEmpty(t, def.ID)
	assert.Equal(t, "entry", def.Nodes[0].Name)
	assert.NotNil(t, def.Nodes[0].Parameters)
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	def, err := newLoader().ParseJSON([]byte(workflowJSON))
	require.NoError(t, err)

	assert.Equal(t, "wf-orders", def.ID)
	assert.Equal(t, models.ExecutionModeSequential, def.Mode())
	require.Len(t, def.Edges, 1)
	assert.Equal(t, "entry", def.Edges[0].From)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "orders.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(workflowYAML), 0o600))

	def, err := newLoader().LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "Order Pipeline", def.Name)

	tomlPath := filepath.Join(dir, "orders.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("name = 'nope'"), 0o600))

	_, err = newLoader().LoadFile(tomlPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported workflow file extension")

	_, err = newLoader().LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		def     *models.WorkflowDefinition
		wantErr string
	}{
		{
			name: "name too short",
			def: testutil.CreateTestWorkflow(
				[]*models.NodeDefinition{testutil.CreateTestNode("a")},
				nil,
				func(w *models.WorkflowDefinition) { w.Name = "ab" },
			),
			wantErr: "workflow definition invalid",
		},
		{
			name: "no nodes",
			def: testutil.CreateTestWorkflow(nil, nil,
				func(w *models.WorkflowDefinition) { w.Name = "Empty" },
			),
			wantErr: "workflow definition invalid",
		},
		{
			name: "unregistered node type",
			def: testutil.CreateTestWorkflow(
				[]*models.NodeDefinition{
					testutil.CreateTestNode("a", testutil.WithType("teleport")),
				},
				nil,
			),
			wantErr: "unregistered type",
		},
		{
			name: "unknown execution mode",
			def: testutil.CreateTestWorkflow(
				[]*models.NodeDefinition{testutil.CreateTestNode("a")},
				nil,
				func(w *models.WorkflowDefinition) { w.ExecutionMode = "turbo" },
			),
			wantErr: "workflow definition invalid",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := newLoader().Validate(test.def)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.wantErr)
		})
	}
}

func TestValidateRunsGraphValidation(t *testing.T) {
	t.Parallel()

	def := testutil.CreateTestWorkflow(
		[]*models.NodeDefinition{
			testutil.CreateTestNode("a"),
			testutil.CreateTestNode("b"),
		},
		[]*models.EdgeDefinition{
			testutil.Edge("a", "b"),
			testutil.Edge("b", "a"),
		},
	)

	_, err := newLoader().Validate(def)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrCycle)
}
