package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

// WorkflowRepository stores each workflow definition as
// <root>/workflows/<id>.json. A mutex serializes writers so concurrent
// saves cannot interleave partial files.
type WorkflowRepository struct {
	root string

	mu sync.Mutex
}

func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) dir() string {
	return filepath.Join(wr.root, "workflows")
}

func (wr *WorkflowRepository) path(id string) string {
	return filepath.Join(wr.dir(), id+".json")
}

func (wr *WorkflowRepository) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	entries, err := fs.Glob(os.DirFS(wr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("list workflow files: %w", err)
	}

	workflows := make([]*models.WorkflowDefinition, 0, len(entries))

	for _, entry := range entries {
		id := entry[:len(entry)-len(".json")]

		workflow, err := wr.WorkflowByID(ctx, id)
		if err != nil {
			if persistence.IsWorkflowNotFound(err) {
				continue
			}

			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (wr *WorkflowRepository) WorkflowByID(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	data, err := os.ReadFile(wr.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &persistence.WorkflowError{
				Op:  "get",
				ID:  id,
				Err: persistence.ErrWorkflowNotFound,
			}
		}

		return nil, &persistence.WorkflowError{Op: "get", ID: id, Err: err}
	}

	var workflow models.WorkflowDefinition
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, &persistence.WorkflowError{Op: "get", ID: id, Err: err}
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) SaveWorkflow(_ context.Context, workflow *models.WorkflowDefinition) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if err := os.MkdirAll(wr.dir(), 0o755); err != nil {
		return &persistence.WorkflowError{Op: "save", ID: workflow.ID, Err: err}
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return &persistence.WorkflowError{Op: "save", ID: workflow.ID, Err: err}
	}

	if err := os.WriteFile(wr.path(workflow.ID), data, 0o644); err != nil {
		return &persistence.WorkflowError{Op: "save", ID: workflow.ID, Err: err}
	}

	return nil
}

func (wr *WorkflowRepository) DeleteWorkflow(_ context.Context, id string) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if err := os.Remove(wr.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &persistence.WorkflowError{
				Op:  "delete",
				ID:  id,
				Err: persistence.ErrWorkflowNotFound,
			}
		}

		return &persistence.WorkflowError{Op: "delete", ID: id, Err: err}
	}

	return nil
}
