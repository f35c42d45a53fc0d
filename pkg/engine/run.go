package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/cascadehq/cascade/pkg/expression"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/telemetry"
	"github.com/cascadehq/cascade/pkg/variables"
)

// run is the per-execution state. Output and skip maps are shared across
// the goroutines of a parallel level and guarded by mu.
type run struct {
	engine    *Engine
	graph     *Graph
	execution *models.Execution
	logger    *slog.Logger
	variables *variables.Store

	mu      sync.Mutex
	outputs map[string]*models.NodeOutput
	skipped map[string]bool
}

// dispatch runs one node end to end: inbound edge matching, parameter
// rendering and validation, bounded execution and output recording. A nil
// return either means the node completed or was skipped because none of its
// inbound edges matched the labels its predecessors produced.
func (r *run) dispatch(ctx context.Context, nodeID string) error {
	node := r.graph.Node(nodeID)

	inputs, matched := r.collectInputs(nodeID)
	if !matched {
		r.markSkipped(nodeID)
		r.logger.DebugContext(ctx, "skipping node, no inbound edge matched",
			"node_id", nodeID)

		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, r.engine.tracer, "node.execute",
		attribute.String(telemetry.NodeIDKey, nodeID),
		attribute.String(telemetry.NodeTypeKey, node.Type),
	)
	defer span.End()

	execCtx := &models.ExecutionContext{
		ExecutionID: r.execution.ID,
		WorkflowID:  r.execution.WorkflowID,
		NodeID:      nodeID,
		Input:       r.execution.InputData,
		Inputs:      inputs,
		NodeResults: r.nodeResults(),
		Variables:   r.variables,
	}

	record := models.NewNodeExecution(r.execution.ID, nodeID)
	record.InputData = execCtx.PrimaryInput()

	r.engine.persistNodeExecution(ctx, record, true)
	r.engine.sink.Emit(ctx, r.execution.ID, newNodeStartedEvent(r.execution, node))

	output, err := r.executeNode(ctx, node, execCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			record.Finish(models.ExecutionStatusCancelled, nil, err.Error())
			r.engine.persistNodeExecution(ctx, record, false)

			return err
		}

		failure := asNodeFailure(nodeID, err)

		record.Finish(models.ExecutionStatusFailed, nil, failure.Message)
		r.engine.persistNodeExecution(ctx, record, false)

		telemetry.SetError(span, failure)
		r.logger.ErrorContext(ctx, "node execution failed",
			"node_id", nodeID, "node_type", node.Type,
			"timeout", IsTimeout(failure), "error", failure.Message)
		r.engine.sink.Emit(ctx, r.execution.ID,
			newNodeFailedEvent(r.execution, node, record, failure))

		return failure
	}

	r.storeOutput(nodeID, output)

	record.Finish(models.ExecutionStatusSuccess, output.Data, "")
	r.engine.persistNodeExecution(ctx, record, false)

	span.SetAttributes(attribute.String(telemetry.OutputLabelKey, output.OutputLabel()))
	r.logger.DebugContext(ctx, "node execution completed",
		"node_id", nodeID, "node_type", node.Type,
		"output_label", output.OutputLabel())
	r.engine.sink.Emit(ctx, r.execution.ID,
		newNodeCompletedEvent(r.execution, node, record, output))

	return nil
}

// executeNode renders and validates parameters, then runs the capability
// bounded by the node's effective deadline.
func (r *run) executeNode(ctx context.Context, node *models.NodeDefinition, execCtx *models.ExecutionContext) (*models.NodeOutput, error) {
	params, err := expression.RenderParameters(node.Parameters, execCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParameterRejected, err)
	}

	if err := r.engine.registry.ValidateParameters(node.Type, params); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParameterRejected, err)
	}

	capability, err := r.engine.registry.CreateNode(node.Type)
	if err != nil {
		return nil, err
	}

	if err := capability.ValidateParameters(params); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParameterRejected, err)
	}

	timeout := r.engine.nodeDeadline(r.graph.Definition(), node)

	nodeCtx := ctx
	cancel := context.CancelFunc(func() {})

	if timeout > 0 {
		nodeCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	type result struct {
		output *models.NodeOutput
		err    error
	}

	// Buffered so a node that ignores cancellation can still finish its send
	// and let the goroutine exit after the deadline fired.
	done := make(chan result, 1)

	go func() {
		output, err := capability.Execute(nodeCtx, execCtx, params)
		done <- result{output: output, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}

		if res.output == nil {
			return nil, errors.New("node returned no output")
		}

		if !res.output.Success {
			message := res.output.Error
			if message == "" {
				message = "node reported failure"
			}

			return nil, errors.New(message)
		}

		return res.output, nil
	case <-nodeCtx.Done():
		if timeout > 0 && errors.Is(nodeCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrNodeTimeout, timeout)
		}

		return nil, nodeCtx.Err()
	}
}

// collectInputs gathers the outputs of matched inbound edges keyed by the
// edge's target label. The second return is false when the node has inbound
// edges but none matched, which skips the node; skipping cascades, because a
// skipped predecessor matches no edge either.
func (r *run) collectInputs(nodeID string) (map[string]map[string]any, bool) {
	edges := r.graph.Incoming(nodeID)
	if len(edges) == 0 {
		return nil, true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inputs := make(map[string]map[string]any)
	matched := false

	for _, edge := range edges {
		if r.skipped[edge.From] {
			continue
		}

		output, ok := r.outputs[edge.From]
		if !ok {
			continue
		}

		if edge.SourceLabel() != models.DefaultOutputLabel &&
			edge.SourceLabel() != output.OutputLabel() {
			continue
		}

		matched = true
		inputs[edge.TargetLabel()] = output.Data
	}

	if !matched {
		return nil, false
	}

	return inputs, true
}

func (r *run) markSkipped(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.skipped[nodeID] = true
}

func (r *run) storeOutput(nodeID string, output *models.NodeOutput) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outputs[nodeID] = output
}

// nodeResults snapshots every completed node's output data for template
// references.
func (r *run) nodeResults() map[string]map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := make(map[string]map[string]any, len(r.outputs))
	for nodeID, output := range r.outputs {
		results[nodeID] = output.Data
	}

	return results
}

// terminalOutputs assembles the execution's output data from the outputs of
// terminal nodes that actually ran.
func (r *run) terminalOutputs() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	assembled := make(map[string]any)

	for nodeID, output := range r.outputs {
		if r.graph.Terminal(nodeID) {
			assembled[nodeID] = output.Data
		}
	}

	return assembled
}

// asNodeFailure wraps a dispatch error into the NodeFailure recorded on the
// execution.
func asNodeFailure(nodeID string, err error) *NodeFailure {
	var failure *NodeFailure
	if errors.As(err, &failure) {
		return failure
	}

	return &NodeFailure{NodeID: nodeID, Message: err.Error(), Err: err}
}
