package redis

import (
	"context"
	"encoding/json"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

// WorkflowRepository stores each definition under its own key and tracks
// ids in an index set.
type WorkflowRepository struct {
	client *goredis.Client
}

func NewWorkflowRepository(client *goredis.Client) *WorkflowRepository {
	return &WorkflowRepository{client: client}
}

func (wr *WorkflowRepository) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	ids, err := wr.client.SMembers(ctx, workflowIndexKey).Result()
	if err != nil {
		return nil, &persistence.WorkflowError{Op: "list", Err: err}
	}

	workflows := make([]*models.WorkflowDefinition, 0, len(ids))

	for _, id := range ids {
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

func (wr *WorkflowRepository) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	data, err := wr.client.Get(ctx, workflowKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
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

func (wr *WorkflowRepository) SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return &persistence.WorkflowError{Op: "save", ID: workflow.ID, Err: err}
	}

	pipe := wr.client.TxPipeline()
	pipe.Set(ctx, workflowKeyPrefix+workflow.ID, data, 0)
	pipe.SAdd(ctx, workflowIndexKey, workflow.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return &persistence.WorkflowError{Op: "save", ID: workflow.ID, Err: err}
	}

	return nil
}

func (wr *WorkflowRepository) DeleteWorkflow(ctx context.Context, id string) error {
	removed, err := wr.client.Del(ctx, workflowKeyPrefix+id).Result()
	if err != nil {
		return &persistence.WorkflowError{Op: "delete", ID: id, Err: err}
	}

	if removed == 0 {
		return &persistence.WorkflowError{
			Op:  "delete",
			ID:  id,
			Err: persistence.ErrWorkflowNotFound,
		}
	}

	if err := wr.client.SRem(ctx, workflowIndexKey, id).Err(); err != nil {
		return &persistence.WorkflowError{Op: "delete", ID: id, Err: err}
	}

	return nil
}
