package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

// ExecutionRepository stores execution and node execution records with
// per-workflow and per-execution index sets.
type ExecutionRepository struct {
	client *goredis.Client
}

func NewExecutionRepository(client *goredis.Client) *ExecutionRepository {
	return &ExecutionRepository{client: client}
}

func (er *ExecutionRepository) CreateExecution(ctx context.Context, execution *models.Execution) error {
	return er.writeExecution(ctx, execution, "create")
}

func (er *ExecutionRepository) UpdateExecution(ctx context.Context, execution *models.Execution) error {
	return er.writeExecution(ctx, execution, "update")
}

func (er *ExecutionRepository) writeExecution(ctx context.Context, execution *models.Execution, op string) error {
	data, err := json.Marshal(execution)
	if err != nil {
		return &persistence.ExecutionError{Op: op, ID: execution.ID, Err: err}
	}

	pipe := er.client.TxPipeline()
	pipe.Set(ctx, executionKeyPrefix+execution.ID, data, 0)
	pipe.SAdd(ctx, fmt.Sprintf(workflowExecIndexFmt, execution.WorkflowID), execution.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return &persistence.ExecutionError{Op: op, ID: execution.ID, Err: err}
	}

	return nil
}

func (er *ExecutionRepository) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	data, err := er.client.Get(ctx, executionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, &persistence.ExecutionError{
				Op:  "get",
				ID:  id,
				Err: persistence.ErrExecutionNotFound,
			}
		}

		return nil, &persistence.ExecutionError{Op: "get", ID: id, Err: err}
	}

	var execution models.Execution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, &persistence.ExecutionError{Op: "get", ID: id, Err: err}
	}

	return &execution, nil
}

func (er *ExecutionRepository) ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	ids, err := er.client.SMembers(ctx, fmt.Sprintf(workflowExecIndexFmt, workflowID)).Result()
	if err != nil {
		return nil, &persistence.ExecutionError{Op: "list", Err: err}
	}

	executions := make([]*models.Execution, 0, len(ids))

	for _, id := range ids {
		execution, err := er.ExecutionByID(ctx, id)
		if err != nil {
			if persistence.IsExecutionNotFound(err) {
				continue
			}

			return nil, err
		}

		executions = append(executions, execution)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	return executions, nil
}

func (er *ExecutionRepository) CreateNodeExecution(ctx context.Context, record *models.NodeExecution) error {
	return er.writeNodeExecution(ctx, record, "create_node")
}

func (er *ExecutionRepository) UpdateNodeExecution(ctx context.Context, record *models.NodeExecution) error {
	return er.writeNodeExecution(ctx, record, "update_node")
}

func (er *ExecutionRepository) writeNodeExecution(ctx context.Context, record *models.NodeExecution, op string) error {
	data, err := json.Marshal(record)
	if err != nil {
		return &persistence.ExecutionError{Op: op, ID: record.ID, Err: err}
	}

	pipe := er.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(nodeExecutionKeyFmt, record.ExecutionID, record.ID), data, 0)
	pipe.SAdd(ctx, fmt.Sprintf(nodeExecutionIndexFmt, record.ExecutionID), record.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return &persistence.ExecutionError{Op: op, ID: record.ID, Err: err}
	}

	return nil
}

func (er *ExecutionRepository) NodeExecutionsByExecution(ctx context.Context, executionID string) ([]*models.NodeExecution, error) {
	ids, err := er.client.SMembers(ctx, fmt.Sprintf(nodeExecutionIndexFmt, executionID)).Result()
	if err != nil {
		return nil, &persistence.ExecutionError{Op: "list_nodes", ID: executionID, Err: err}
	}

	records := make([]*models.NodeExecution, 0, len(ids))

	for _, id := range ids {
		data, err := er.client.Get(ctx, fmt.Sprintf(nodeExecutionKeyFmt, executionID, id)).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}

			return nil, &persistence.ExecutionError{Op: "list_nodes", ID: executionID, Err: err}
		}

		var record models.NodeExecution
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, &persistence.ExecutionError{Op: "list_nodes", ID: executionID, Err: err}
		}

		records = append(records, &record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})

	return records, nil
}
