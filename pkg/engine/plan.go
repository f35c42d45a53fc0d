package engine

import (
	"github.com/cascadehq/cascade/pkg/models"
)

// ExecutionPlan is the scheduler's output: dependency levels for parallel
// execution and the flattened total order for sequential execution.
//
// Level k contains every node whose longest dependency chain has k
// predecessors, so a node's level is strictly greater than all of its
// predecessors' and minimally so. Parallel execution runs one level at a
// time with a barrier between levels; sequential execution concatenates the
// levels, keeping the original definition order inside each level as the
// deterministic tie-break.
type ExecutionPlan struct {
	Levels [][]string
	Order  []string

	levelOf map[string]int
}

// Level returns the dependency level a node was assigned.
func (p *ExecutionPlan) Level(nodeID string) int {
	return p.levelOf[nodeID]
}

// buildPlan assigns levels with Kahn's algorithm. A cycle exists iff the
// algorithm cannot consume every node.
func buildPlan(
	def *models.WorkflowDefinition,
	incoming map[string][]*models.EdgeDefinition,
	outgoing map[string][]*models.EdgeDefinition,
) (*ExecutionPlan, error) {
	inDegree := make(map[string]int, len(def.Nodes))
	for _, node := range def.Nodes {
		inDegree[node.ID] = len(incoming[node.ID])
	}

	plan := &ExecutionPlan{
		Order:   make([]string, 0, len(def.Nodes)),
		levelOf: make(map[string]int, len(def.Nodes)),
	}

	// Walking def.Nodes in definition order when collecting each level keeps
	// the intra-level order deterministic.
	current := make([]string, 0)

	for _, node := range def.Nodes {
		if inDegree[node.ID] == 0 {
			current = append(current, node.ID)
		}
	}

	consumed := 0

	for level := 0; len(current) > 0; level++ {
		plan.Levels = append(plan.Levels, current)

		ready := make(map[string]bool)

		for _, nodeID := range current {
			plan.levelOf[nodeID] = level
			plan.Order = append(plan.Order, nodeID)
			consumed++

			for _, edge := range outgoing[nodeID] {
				inDegree[edge.To]--
				if inDegree[edge.To] == 0 {
					ready[edge.To] = true
				}
			}
		}

		next := make([]string, 0, len(ready))

		for _, node := range def.Nodes {
			if ready[node.ID] {
				next = append(next, node.ID)
			}
		}

		current = next
	}

	if consumed != len(def.Nodes) {
		return nil, &ValidationError{Err: ErrCycle}
	}

	return plan, nil
}
