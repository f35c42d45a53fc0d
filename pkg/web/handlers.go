// Package web provides the REST API for workflow management and execution.
package web

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/cascadehq/cascade/pkg/authz"
	"github.com/cascadehq/cascade/pkg/engine"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
	"github.com/cascadehq/cascade/pkg/registry"
	"github.com/cascadehq/cascade/pkg/workflow"
)

// SubjectHeader carries the acting subject for permission checks.
const SubjectHeader = "X-Cascade-Subject"

type APIHandlers struct {
	logger   *slog.Logger
	engine   *engine.Engine
	store    persistence.Persistence
	loader   *workflow.Loader
	registry *registry.Registry
}

func NewAPIHandlers(
	logger *slog.Logger,
	eng *engine.Engine,
	store persistence.Persistence,
	reg *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		engine:   eng,
		store:    store,
		loader:   workflow.NewLoader(reg),
		registry: reg,
	}
}

// StartExecutionRequest is the body accepted when starting an execution.
type StartExecutionRequest struct {
	Input map[string]any `json:"input"`
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.store.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}

func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"node_types": h.registry.NodeTypes()})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.store.WorkflowRepository().Workflows(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "workflow id is required")
	}

	def, err := h.store.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var def models.WorkflowDefinition
	if err := c.Bind().JSON(&def); err != nil {
		return badRequest(c, "invalid workflow document: "+err.Error())
	}

	validated, err := h.loader.Validate(&def)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.store.WorkflowRepository().SaveWorkflow(c.Context(), validated); err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(validated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "workflow id is required")
	}

	if err := h.store.WorkflowRepository().DeleteWorkflow(c.Context(), id); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// StartExecution validates and runs the workflow synchronously, returning
// the terminal execution record.
func (h *APIHandlers) StartExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "workflow id is required")
	}

	def, err := h.store.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleError(c, err)
	}

	var req StartExecutionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "invalid execution request: "+err.Error())
		}
	}

	ctx := c.Context()
	if subject := c.Get(SubjectHeader); subject != "" {
		ctx = authz.WithSubject(ctx, subject)
	}

	execution, err := h.engine.Run(ctx, def, req.Input)
	if err != nil {
		if errors.Is(err, engine.ErrNotPermitted) {
			return forbidden(c, err.Error())
		}

		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(execution)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "execution id is required")
	}

	execution, err := h.store.ExecutionRepository().ExecutionByID(c.Context(), id)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	workflowID := c.Params("id")
	if workflowID == "" {
		return badRequest(c, "workflow id is required")
	}

	executions, err := h.store.ExecutionRepository().ExecutionsByWorkflow(c.Context(), workflowID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions})
}

func (h *APIHandlers) GetNodeExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "execution id is required")
	}

	records, err := h.store.ExecutionRepository().NodeExecutionsByExecution(c.Context(), id)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"node_executions": records})
}

// CancelExecution aborts an in-flight execution.
func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "execution id is required")
	}

	if !h.engine.Cancel(id) {
		return notFound(c, "no running execution with this id")
	}

	return c.JSON(fiber.Map{"status": "cancelling", "execution_id": id})
}
