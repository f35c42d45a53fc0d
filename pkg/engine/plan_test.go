package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/engine"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/testutil"
)

func planFor(t *testing.T, nodes []*models.NodeDefinition, edges []*models.EdgeDefinition) *engine.ExecutionPlan {
	t.Helper()

	graph, err := engine.ValidateWorkflow(testutil.CreateTestWorkflow(nodes, edges))
	require.NoError(t, err)

	return graph.Plan()
}

func TestPlanLevels(t *testing.T) {
	t.Parallel()

	t.Run("diamond", func(t *testing.T) {
		t.Parallel()

		plan := planFor(t,
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

		assert.Equal(t, [][]string{{"a"}, {"b", "c"}, {"d"}}, plan.Levels)
		assert.Equal(t, []string{"a", "b", "c", "d"}, plan.Order)
	})

	t.Run("level is one past deepest predecessor", func(t *testing.T) {
		t.Parallel()

		// e depends on both a (level 0) and d (level 2), so e sits at level 3
		// even though one of its predecessors is an entry node.
		plan := planFor(t,
			[]*models.NodeDefinition{
				testutil.CreateTestNode("a"),
				testutil.CreateTestNode("c"),
				testutil.CreateTestNode("d"),
				testutil.CreateTestNode("e"),
			},
			[]*models.EdgeDefinition{
				testutil.Edge("a", "c"),
				testutil.Edge("c", "d"),
				testutil.Edge("a", "e"),
				testutil.Edge("d", "e"),
			},
		)

		assert.Equal(t, 0, plan.Level("a"))
		assert.Equal(t, 1, plan.Level("c"))
		assert.Equal(t, 2, plan.Level("d"))
		assert.Equal(t, 3, plan.Level("e"))
	})

	t.Run("independent roots share level zero", func(t *testing.T) {
		t.Parallel()

		plan := planFor(t,
			[]*models.NodeDefinition{
				testutil.CreateTestNode("x"),
				testutil.CreateTestNode("y"),
				testutil.CreateTestNode("z"),
			},
			nil,
		)

		assert.Equal(t, [][]string{{"x", "y", "z"}}, plan.Levels)
	})

	t.Run("definition order breaks ties inside a level", func(t *testing.T) {
		t.Parallel()

		// b2 is defined before b1, so it comes first within their level even
		// though edges were declared the other way around.
		plan := planFor(t,
			[]*models.NodeDefinition{
				testutil.CreateTestNode("root"),
				testutil.CreateTestNode("b2"),
				testutil.CreateTestNode("b1"),
			},
			[]*models.EdgeDefinition{
				testutil.Edge("root", "b1"),
				testutil.Edge("root", "b2"),
			},
		)

		assert.Equal(t, [][]string{{"root"}, {"b2", "b1"}}, plan.Levels)
		assert.Equal(t, []string{"root", "b2", "b1"}, plan.Order)
	})

	t.Run("order is a linear extension of the dependency order", func(t *testing.T) {
		t.Parallel()

		plan := planFor(t,
			[]*models.NodeDefinition{
				testutil.CreateTestNode("a"),
				testutil.CreateTestNode("b"),
				testutil.CreateTestNode("c"),
				testutil.CreateTestNode("d"),
			},
			[]*models.EdgeDefinition{
				testutil.Edge("a", "c"),
				testutil.Edge("b", "d"),
				testutil.Edge("c", "d"),
			},
		)

		position := make(map[string]int, len(plan.Order))
		for i, id := range plan.Order {
			position[id] = i
		}

		assert.Less(t, position["a"], position["c"])
		assert.Less(t, position["c"], position["d"])
		assert.Less(t, position["b"], position["d"])
	})
}
