package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
)

// ExecutionRepository stores execution and node execution records. Input and
// output payloads are JSONB.
type ExecutionRepository struct {
	db *sql.DB
}

func NewExecutionRepository(db *sql.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

func (er *ExecutionRepository) CreateExecution(ctx context.Context, execution *models.Execution) error {
	input, output, err := encodePayloads(execution.InputData, execution.OutputData)
	if err != nil {
		return &persistence.ExecutionError{Op: "create", ID: execution.ID, Err: err}
	}

	_, err = er.db.ExecContext(ctx, `
		INSERT INTO executions (id, workflow_id, status, started_at, finished_at, input_data, output_data, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, execution.ID, execution.WorkflowID, string(execution.Status),
		execution.StartedAt, execution.FinishedAt, input, output, execution.Error)
	if err != nil {
		return &persistence.ExecutionError{Op: "create", ID: execution.ID, Err: err}
	}

	return nil
}

func (er *ExecutionRepository) UpdateExecution(ctx context.Context, execution *models.Execution) error {
	input, output, err := encodePayloads(execution.InputData, execution.OutputData)
	if err != nil {
		return &persistence.ExecutionError{Op: "update", ID: execution.ID, Err: err}
	}

	result, err := er.db.ExecContext(ctx, `
		UPDATE executions
		SET status = $2, finished_at = $3, input_data = $4, output_data = $5, error = $6
		WHERE id = $1
	`, execution.ID, string(execution.Status), execution.FinishedAt, input, output, execution.Error)
	if err != nil {
		return &persistence.ExecutionError{Op: "update", ID: execution.ID, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &persistence.ExecutionError{Op: "update", ID: execution.ID, Err: err}
	}

	if affected == 0 {
		return &persistence.ExecutionError{
			Op:  "update",
			ID:  execution.ID,
			Err: persistence.ErrExecutionNotFound,
		}
	}

	return nil
}

func (er *ExecutionRepository) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	row := er.db.QueryRowContext(ctx, `
		SELECT id, workflow_id, status, started_at, finished_at, input_data, output_data, error
		FROM executions
		WHERE id = $1
	`, id)

	execution, err := scanExecution(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &persistence.ExecutionError{
				Op:  "get",
				ID:  id,
				Err: persistence.ErrExecutionNotFound,
			}
		}

		return nil, &persistence.ExecutionError{Op: "get", ID: id, Err: err}
	}

	return execution, nil
}

func (er *ExecutionRepository) ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	rows, err := er.db.QueryContext(ctx, `
		SELECT id, workflow_id, status, started_at, finished_at, input_data, output_data, error
		FROM executions
		WHERE workflow_id = $1
		ORDER BY started_at DESC
	`, workflowID)
	if err != nil {
		return nil, &persistence.ExecutionError{Op: "list", Err: err}
	}
	defer rows.Close()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, &persistence.ExecutionError{Op: "list", Err: err}
		}

		executions = append(executions, execution)
	}

	if err := rows.Err(); err != nil {
		return nil, &persistence.ExecutionError{Op: "list", Err: err}
	}

	return executions, nil
}

func (er *ExecutionRepository) CreateNodeExecution(ctx context.Context, record *models.NodeExecution) error {
	input, output, err := encodePayloads(record.InputData, record.OutputData)
	if err != nil {
		return &persistence.ExecutionError{Op: "create_node", ID: record.ID, Err: err}
	}

	_, err = er.db.ExecContext(ctx, `
		INSERT INTO node_executions (id, execution_id, node_id, status, started_at, finished_at, input_data, output_data, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, record.ID, record.ExecutionID, record.NodeID, string(record.Status),
		record.StartedAt, record.FinishedAt, input, output, record.Error)
	if err != nil {
		return &persistence.ExecutionError{Op: "create_node", ID: record.ID, Err: err}
	}

	return nil
}

func (er *ExecutionRepository) UpdateNodeExecution(ctx context.Context, record *models.NodeExecution) error {
	input, output, err := encodePayloads(record.InputData, record.OutputData)
	if err != nil {
		return &persistence.ExecutionError{Op: "update_node", ID: record.ID, Err: err}
	}

	result, err := er.db.ExecContext(ctx, `
		UPDATE node_executions
		SET status = $2, finished_at = $3, input_data = $4, output_data = $5, error = $6
		WHERE id = $1
	`, record.ID, string(record.Status), record.FinishedAt, input, output, record.Error)
	if err != nil {
		return &persistence.ExecutionError{Op: "update_node", ID: record.ID, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &persistence.ExecutionError{Op: "update_node", ID: record.ID, Err: err}
	}

	if affected == 0 {
		return &persistence.ExecutionError{
			Op:  "update_node",
			ID:  record.ID,
			Err: persistence.ErrNodeExecutionNotFound,
		}
	}

	return nil
}

func (er *ExecutionRepository) NodeExecutionsByExecution(ctx context.Context, executionID string) ([]*models.NodeExecution, error) {
	rows, err := er.db.QueryContext(ctx, `
		SELECT id, execution_id, node_id, status, started_at, finished_at, input_data, output_data, error
		FROM node_executions
		WHERE execution_id = $1
		ORDER BY started_at ASC
	`, executionID)
	if err != nil {
		return nil, &persistence.ExecutionError{Op: "list_nodes", ID: executionID, Err: err}
	}
	defer rows.Close()

	records := make([]*models.NodeExecution, 0)

	for rows.Next() {
		var (
			record   models.NodeExecution
			status   string
			finished sql.NullTime
			input    []byte
			output   []byte
		)

		err := rows.Scan(&record.ID, &record.ExecutionID, &record.NodeID, &status,
			&record.StartedAt, &finished, &input, &output, &record.Error)
		if err != nil {
			return nil, &persistence.ExecutionError{Op: "list_nodes", ID: executionID, Err: err}
		}

		record.Status = models.ExecutionStatus(status)
		record.FinishedAt = nullTime(finished)

		if err := decodePayloads(input, output, &record.InputData, &record.OutputData); err != nil {
			return nil, &persistence.ExecutionError{Op: "list_nodes", ID: executionID, Err: err}
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, &persistence.ExecutionError{Op: "list_nodes", ID: executionID, Err: err}
	}

	return records, nil
}

func scanExecution(row rowScanner) (*models.Execution, error) {
	var (
		execution models.Execution
		status    string
		finished  sql.NullTime
		input     []byte
		output    []byte
	)

	err := row.Scan(&execution.ID, &execution.WorkflowID, &status,
		&execution.StartedAt, &finished, &input, &output, &execution.Error)
	if err != nil {
		return nil, err
	}

	execution.Status = models.ExecutionStatus(status)
	execution.FinishedAt = nullTime(finished)

	if err := decodePayloads(input, output, &execution.InputData, &execution.OutputData); err != nil {
		return nil, err
	}

	return &execution, nil
}

func encodePayloads(input, output map[string]any) ([]byte, []byte, error) {
	encodedInput, err := encodePayload(input)
	if err != nil {
		return nil, nil, err
	}

	encodedOutput, err := encodePayload(output)
	if err != nil {
		return nil, nil, err
	}

	return encodedInput, encodedOutput, nil
}

func encodePayload(payload map[string]any) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}

	return json.Marshal(payload)
}

func decodePayloads(input, output []byte, inputDest, outputDest *map[string]any) error {
	if len(input) > 0 {
		if err := json.Unmarshal(input, inputDest); err != nil {
			return err
		}
	}

	if len(output) > 0 {
		if err := json.Unmarshal(output, outputDest); err != nil {
			return err
		}
	}

	return nil
}

func nullTime(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}

	t := value.Time

	return &t
}
