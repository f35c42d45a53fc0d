package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/cascadehq/cascade/pkg/events"
	"github.com/cascadehq/cascade/pkg/models"
)

func baseEvent(eventType events.EventType, execution *models.Execution) events.BaseEvent {
	return events.BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		WorkflowID:  execution.WorkflowID,
		ExecutionID: execution.ID,
	}
}

func executionDuration(execution *models.Execution) time.Duration {
	if execution.FinishedAt == nil {
		return time.Since(execution.StartedAt)
	}

	return execution.FinishedAt.Sub(execution.StartedAt)
}

func nodeDurationMs(record *models.NodeExecution) int64 {
	if record.FinishedAt == nil {
		return time.Since(record.StartedAt).Milliseconds()
	}

	return record.FinishedAt.Sub(record.StartedAt).Milliseconds()
}

func newExecutionStartedEvent(execution *models.Execution, def *models.WorkflowDefinition) events.ExecutionStarted {
	return events.ExecutionStarted{
		BaseEvent: baseEvent(events.ExecutionStartedEvent, execution),
		Mode:      def.Mode(),
		InputData: execution.InputData,
	}
}

func newExecutionCompletedEvent(execution *models.Execution) events.ExecutionCompleted {
	return events.ExecutionCompleted{
		BaseEvent:  baseEvent(events.ExecutionCompletedEvent, execution),
		OutputData: execution.OutputData,
		Duration:   executionDuration(execution),
	}
}

func newExecutionFailedEvent(execution *models.Execution, nodeID string) events.ExecutionFailed {
	return events.ExecutionFailed{
		BaseEvent: baseEvent(events.ExecutionFailedEvent, execution),
		NodeID:    nodeID,
		Error:     execution.Error,
		Duration:  executionDuration(execution),
	}
}

func newExecutionCancelledEvent(execution *models.Execution) events.ExecutionCancelled {
	return events.ExecutionCancelled{
		BaseEvent: baseEvent(events.ExecutionCancelledEvent, execution),
		Duration:  executionDuration(execution),
	}
}

func newNodeStartedEvent(execution *models.Execution, node *models.NodeDefinition) events.NodeStarted {
	return events.NodeStarted{
		BaseEvent: baseEvent(events.NodeStartedEvent, execution),
		NodeID:    node.ID,
		NodeType:  node.Type,
	}
}

func newNodeCompletedEvent(execution *models.Execution, node *models.NodeDefinition, record *models.NodeExecution, output *models.NodeOutput) events.NodeCompleted {
	return events.NodeCompleted{
		BaseEvent:   baseEvent(events.NodeCompletedEvent, execution),
		NodeID:      node.ID,
		NodeType:    node.Type,
		OutputLabel: output.OutputLabel(),
		OutputData:  output.Data,
		DurationMs:  nodeDurationMs(record),
	}
}

func newNodeFailedEvent(execution *models.Execution, node *models.NodeDefinition, record *models.NodeExecution, failure *NodeFailure) events.NodeFailed {
	return events.NodeFailed{
		BaseEvent:  baseEvent(events.NodeFailedEvent, execution),
		NodeID:     node.ID,
		NodeType:   node.Type,
		Error:      failure.Message,
		Timeout:    IsTimeout(failure),
		DurationMs: nodeDurationMs(record),
	}
}
