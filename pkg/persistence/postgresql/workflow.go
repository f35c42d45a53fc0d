package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

// WorkflowRepository stores workflow definitions with nodes and edges as
// JSONB columns.
type WorkflowRepository struct {
	db *sql.DB
}

func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func (wr *WorkflowRepository) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	rows, err := wr.db.QueryContext(ctx, `
		SELECT id, name, description, execution_mode, timeout_seconds, nodes, edges
		FROM workflows
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, &persistence.WorkflowError{Op: "list", Err: err}
	}
	defer rows.Close()

	workflows := make([]*models.WorkflowDefinition, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, &persistence.WorkflowError{Op: "list", Err: err}
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, &persistence.WorkflowError{Op: "list", Err: err}
	}

	return workflows, nil
}

func (wr *WorkflowRepository) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	row := wr.db.QueryRowContext(ctx, `
		SELECT id, name, description, execution_mode, timeout_seconds, nodes, edges
		FROM workflows
		WHERE id = $1
	`, id)

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &persistence.WorkflowError{
				Op:  "get",
				ID:  id,
				Err: persistence.ErrWorkflowNotFound,
			}
		}

		return nil, &persistence.WorkflowError{Op: "get", ID: id, Err: err}
	}

	return workflow, nil
}

func (wr *WorkflowRepository) SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error {
	nodes, err := json.Marshal(workflow.Nodes)
	if err != nil {
		return &persistence.WorkflowError{Op: "save", ID: workflow.ID, Err: err}
	}

	edges, err := json.Marshal(workflow.Edges)
	if err != nil {
		return &persistence.WorkflowError{Op: "save", ID: workflow.ID, Err: err}
	}

	_, err = wr.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, description, execution_mode, timeout_seconds, nodes, edges)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			execution_mode = EXCLUDED.execution_mode,
			timeout_seconds = EXCLUDED.timeout_seconds,
			nodes = EXCLUDED.nodes,
			edges = EXCLUDED.edges,
			updated_at = NOW()
	`, workflow.ID, workflow.Name, workflow.Description,
		string(workflow.Mode()), workflow.TimeoutSeconds, nodes, edges)
	if err != nil {
		return &persistence.WorkflowError{Op: "save", ID: workflow.ID, Err: err}
	}

	return nil
}

func (wr *WorkflowRepository) DeleteWorkflow(ctx context.Context, id string) error {
	result, err := wr.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return &persistence.WorkflowError{Op: "delete", ID: id, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &persistence.WorkflowError{Op: "delete", ID: id, Err: err}
	}

	if affected == 0 {
		return &persistence.WorkflowError{
			Op:  "delete",
			ID:  id,
			Err: persistence.ErrWorkflowNotFound,
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.WorkflowDefinition, error) {
	var (
		workflow models.WorkflowDefinition
		mode     string
		nodes    []byte
		edges    []byte
	)

	err := row.Scan(&workflow.ID, &workflow.Name, &workflow.Description,
		&mode, &workflow.TimeoutSeconds, &nodes, &edges)
	if err != nil {
		return nil, err
	}

	workflow.ExecutionMode = models.ExecutionMode(mode)

	if err := json.Unmarshal(nodes, &workflow.Nodes); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(edges, &workflow.Edges); err != nil {
		return nil, err
	}

	return &workflow, nil
}
