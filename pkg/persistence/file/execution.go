package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

// ExecutionRepository stores execution records as
// <root>/executions/<id>.json and node execution records as
// <root>/executions/<execution_id>/nodes/<id>.json.
type ExecutionRepository struct {
	root string

	mu sync.Mutex
}

func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

func (er *ExecutionRepository) dir() string {
	return filepath.Join(er.root, "executions")
}

func (er *ExecutionRepository) executionPath(id string) string {
	return filepath.Join(er.dir(), id+".json")
}

func (er *ExecutionRepository) nodesDir(executionID string) string {
	return filepath.Join(er.dir(), executionID, "nodes")
}

func (er *ExecutionRepository) CreateExecution(ctx context.Context, execution *models.Execution) error {
	return er.writeExecution(ctx, execution, "create")
}

func (er *ExecutionRepository) UpdateExecution(ctx context.Context, execution *models.Execution) error {
	return er.writeExecution(ctx, execution, "update")
}

func (er *ExecutionRepository) writeExecution(_ context.Context, execution *models.Execution, op string) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	if err := os.MkdirAll(er.dir(), 0o755); err != nil {
		return &persistence.ExecutionError{Op: op, ID: execution.ID, Err: err}
	}

	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return &persistence.ExecutionError{Op: op, ID: execution.ID, Err: err}
	}

	if err := os.WriteFile(er.executionPath(execution.ID), data, 0o644); err != nil {
		return &persistence.ExecutionError{Op: op, ID: execution.ID, Err: err}
	}

	return nil
}

func (er *ExecutionRepository) ExecutionByID(_ context.Context, id string) (*models.Execution, error) {
	data, err := os.ReadFile(er.executionPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
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
	entries, err := fs.Glob(os.DirFS(er.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("list execution files: %w", err)
	}

	executions := make([]*models.Execution, 0)

	for _, entry := range entries {
		id := entry[:len(entry)-len(".json")]

		execution, err := er.ExecutionByID(ctx, id)
		if err != nil {
			if persistence.IsExecutionNotFound(err) {
				continue
			}

			return nil, err
		}

		if execution.WorkflowID == workflowID {
			executions = append(executions, execution)
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	return executions, nil
}

func (er *ExecutionRepository) CreateNodeExecution(ctx context.Context, nodeExecution *models.NodeExecution) error {
	return er.writeNodeExecution(ctx, nodeExecution, "create")
}

func (er *ExecutionRepository) UpdateNodeExecution(ctx context.Context, nodeExecution *models.NodeExecution) error {
	return er.writeNodeExecution(ctx, nodeExecution, "update")
}

func (er *ExecutionRepository) writeNodeExecution(_ context.Context, record *models.NodeExecution, op string) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	dir := er.nodesDir(record.ExecutionID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &persistence.ExecutionError{Op: op, ID: record.ID, Err: err}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return &persistence.ExecutionError{Op: op, ID: record.ID, Err: err}
	}

	if err := os.WriteFile(filepath.Join(dir, record.ID+".json"), data, 0o644); err != nil {
		return &persistence.ExecutionError{Op: op, ID: record.ID, Err: err}
	}

	return nil
}

func (er *ExecutionRepository) NodeExecutionsByExecution(_ context.Context, executionID string) ([]*models.NodeExecution, error) {
	dir := er.nodesDir(executionID)

	entries, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("list node execution files: %w", err)
	}

	records := make([]*models.NodeExecution, 0, len(entries))

	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(dir, entry))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return nil, fmt.Errorf("read node execution file: %w", err)
		}

		var record models.NodeExecution
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("decode node execution file %s: %w", entry, err)
		}

		records = append(records, &record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})

	return records, nil
}
