package engine

import (
	"github.com/cascadehq/cascade/pkg/models"
)

// Graph is a validated in-memory workflow graph with precomputed adjacency.
// Construction succeeds only when every structural invariant holds, so the
// engine never re-checks them at dispatch time.
type Graph struct {
	def      *models.WorkflowDefinition
	nodes    map[string]*models.NodeDefinition
	incoming map[string][]*models.EdgeDefinition
	outgoing map[string][]*models.EdgeDefinition
	plan     *ExecutionPlan
}

// ValidateWorkflow checks a definition's structural invariants and returns
// the validated graph. Checks run in order: node id uniqueness, edge
// endpoint resolution, self-loop/cycle detection via Kahn's algorithm, and
// entry node existence. Validation is all-or-nothing.
func ValidateWorkflow(def *models.WorkflowDefinition) (*Graph, error) {
	graph := &Graph{
		def:      def,
		nodes:    make(map[string]*models.NodeDefinition, len(def.Nodes)),
		incoming: make(map[string][]*models.EdgeDefinition),
		outgoing: make(map[string][]*models.EdgeDefinition),
	}

	for _, node := range def.Nodes {
		if _, exists := graph.nodes[node.ID]; exists {
			return nil, &ValidationError{Err: ErrDuplicateNodeID, NodeID: node.ID}
		}

		graph.nodes[node.ID] = node
	}

	for _, edge := range def.Edges {
		if _, ok := graph.nodes[edge.From]; !ok {
			return nil, &ValidationError{Err: ErrUnknownEdgeNode, From: edge.From, To: edge.To}
		}

		if _, ok := graph.nodes[edge.To]; !ok {
			return nil, &ValidationError{Err: ErrUnknownEdgeNode, From: edge.From, To: edge.To}
		}

		if edge.From == edge.To {
			return nil, &ValidationError{Err: ErrSelfLoop, From: edge.From, To: edge.To}
		}

		graph.outgoing[edge.From] = append(graph.outgoing[edge.From], edge)
		graph.incoming[edge.To] = append(graph.incoming[edge.To], edge)
	}

	plan, err := buildPlan(def, graph.incoming, graph.outgoing)
	if err != nil {
		return nil, err
	}

	graph.plan = plan

	if len(plan.Levels) == 0 || len(plan.Levels[0]) == 0 {
		return nil, &ValidationError{Err: ErrNoEntryNode}
	}

	return graph, nil
}

// Definition returns the validated workflow definition.
func (g *Graph) Definition() *models.WorkflowDefinition {
	return g.def
}

// Plan returns the precomputed execution plan.
func (g *Graph) Plan() *ExecutionPlan {
	return g.plan
}

// Node returns the definition for a node id.
func (g *Graph) Node(id string) *models.NodeDefinition {
	return g.nodes[id]
}

// Incoming returns the inbound edges of a node.
func (g *Graph) Incoming(id string) []*models.EdgeDefinition {
	return g.incoming[id]
}

// Outgoing returns the outbound edges of a node.
func (g *Graph) Outgoing(id string) []*models.EdgeDefinition {
	return g.outgoing[id]
}

// Terminal reports whether a node has no outgoing edges.
func (g *Graph) Terminal(id string) bool {
	return len(g.outgoing[id]) == 0
}
