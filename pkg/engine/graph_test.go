package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/engine"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/testutil"
)

func TestValidateWorkflow(t *testing.T) {
	t.Parallel()

	t.Run("valid diamond", func(t *testing.T) {
		t.Parallel()

		def := testutil.CreateTestWorkflow(
			[]*models.NodeDefinition{
				testutil.CreateTestNode("a"),
				testutil.CreateTestNode("b"),
				testutil.CreateTestNode("c"),
				testutil.CreateTestNode("d"),
			},
			[]*models.EdgeDefinition{
				testutil.Edge("a", "b"),
				testutil.Edge("a", "c"),
				testutil.Edge("b", "d"),
				testutil.Edge("c", "d"),
			},
		)

		graph, err := engine.ValidateWorkflow(def)
		require.NoError(t, err)
		assert.True(t, graph.Terminal("d"))
		assert.False(t, graph.Terminal("a"))
		assert.Len(t, graph.Incoming("d"), 2)
		assert.Len(t, graph.Outgoing("a"), 2)
	})

	t.Run("duplicate node id", func(t *testing.T) {
		t.Parallel()

		def := testutil.CreateTestWorkflow(
			[]*models.NodeDefinition{
				testutil.CreateTestNode("a"),
				testutil.CreateTestNode("a"),
			},
			nil,
		)

		_, err := engine.ValidateWorkflow(def)
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrDuplicateNodeID)
		assert.True(t, engine.IsValidationError(err))
	})

	t.Run("edge references unknown node", func(t *testing.T) {
		t.Parallel()

		def := testutil.CreateTestWorkflow(
			[]*models.NodeDefinition{testutil.CreateTestNode("a")},
			[]*models.EdgeDefinition{testutil.Edge("a", "ghost")},
		)

		_, err := engine.ValidateWorkflow(def)
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrUnknownEdgeNode)
	})

	t.Run("self loop", func(t *testing.T) {
		t.Parallel()

		def := testutil.CreateTestWorkflow(
			[]*models.NodeDefinition{testutil.CreateTestNode("a")},
			[]*models.EdgeDefinition{testutil.Edge("a", "a")},
		)

		_, err := engine.ValidateWorkflow(def)
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrSelfLoop)
	})

	t.Run("cycle", func(t *testing.T) {
		t.Parallel()

		def := testutil.CreateTestWorkflow(
			[]*models.NodeDefinition{
				testutil.CreateTestNode("a"),
				testutil.CreateTestNode("b"),
				testutil.CreateTestNode("c"),
			},
			[]*models.EdgeDefinition{
				testutil.Edge("a", "b"),
				testutil.Edge("b", "c"),
				testutil.Edge("c", "b"),
			},
		)

		_, err := engine.ValidateWorkflow(def)
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrCycle)
	})

	t.Run("no nodes", func(t *testing.T) {
		t.Parallel()

		def := testutil.CreateTestWorkflow(nil, nil)

		_, err := engine.ValidateWorkflow(def)
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrNoEntryNode)
	})
}
