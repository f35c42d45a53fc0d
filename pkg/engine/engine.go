package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/cascadehq/cascade/pkg/audit"
	"github.com/cascadehq/cascade/pkg/authz"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/persistence"
	"github.com/cascadehq/cascade/pkg/registry"
	"github.com/cascadehq/cascade/pkg/telemetry"
	"github.com/cascadehq/cascade/pkg/variables"
)

// ErrNotPermitted is returned when the configured authorizer denies an
// execution before it starts.
var ErrNotPermitted = errors.New("subject not permitted to execute workflow")

const tracerName = "cascade.engine"

// Engine executes validated workflow graphs. It exclusively owns the
// lifecycle of Execution and NodeExecution records for a run; node code
// never mutates them directly.
type Engine struct {
	logger     *slog.Logger
	registry   *registry.Registry
	store      persistence.Persistence
	sink       audit.Sink
	authorizer authz.Authorizer
	tracer     trace.Tracer

	mu      sync.Mutex
	running map[string]*runHandle
}

type runHandle struct {
	cancel    context.CancelFunc
	cancelled bool
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithPersistence wires an execution/workflow store. Lifecycle writes are
// fire-and-forget: failures are logged and never abort execution logic.
func WithPersistence(store persistence.Persistence) Option {
	return func(e *Engine) { e.store = store }
}

// WithAuditSink wires a lifecycle event sink.
func WithAuditSink(sink audit.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithAuthorizer wires a permission check consulted before each run.
func WithAuthorizer(authorizer authz.Authorizer) Option {
	return func(e *Engine) { e.authorizer = authorizer }
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// NewEngine creates an engine backed by the given node registry.
func NewEngine(logger *slog.Logger, reg *registry.Registry, opts ...Option) *Engine {
	engine := &Engine{
		logger:   logger.With("module", "engine"),
		registry: reg,
		sink:     audit.NoopSink{},
		tracer:   otel.Tracer(tracerName),
		running:  make(map[string]*runHandle),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Run validates and executes a workflow against the given input, returning
// the terminal execution record. Validation failures are returned before
// any execution record is created. A node failure or timeout fails the
// execution; the error carried by the record names the first failing node.
func (e *Engine) Run(ctx context.Context, def *models.WorkflowDefinition, input map[string]any) (*models.Execution, error) {
	graph, err := ValidateWorkflow(def)
	if err != nil {
		return nil, err
	}

	if e.authorizer != nil {
		subject, _ := authz.SubjectFromContext(ctx)
		if !e.authorizer.Allow(ctx, subject, def.ID, authz.ActionExecuteWorkflow) {
			return nil, fmt.Errorf("%w: workflow %s", ErrNotPermitted, def.ID)
		}
	}

	execution := models.NewExecution(def.ID, input)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	handle := &runHandle{cancel: cancel}

	e.mu.Lock()
	e.running[execution.ID] = handle
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.running, execution.ID)
		e.mu.Unlock()
	}()

	logger := e.logger.With(
		"workflow_id", def.ID,
		"execution_id", execution.ID,
		"mode", string(def.Mode()),
	)
	logger.InfoContext(ctx, "starting workflow execution")

	runCtx, span := telemetry.StartSpan(runCtx, e.tracer, "workflow.execute",
		attribute.String(telemetry.WorkflowIDKey, def.ID),
		attribute.String(telemetry.WorkflowNameKey, def.Name),
		attribute.String(telemetry.ExecutionIDKey, execution.ID),
		attribute.String("cascade.execution.mode", string(def.Mode())),
	)
	defer span.End()

	e.persistExecution(ctx, execution, true)
	e.sink.Emit(ctx, execution.ID, newExecutionStartedEvent(execution, def))

	run := &run{
		engine:    e,
		graph:     graph,
		execution: execution,
		logger:    logger,
		outputs:   make(map[string]*models.NodeOutput),
		skipped:   make(map[string]bool),
		variables: variables.NewStore(),
	}

	var runErr error

	switch def.Mode() {
	case models.ExecutionModeParallel:
		runErr = run.runParallel(runCtx)
	case models.ExecutionModeSequential:
		runErr = run.runSequential(runCtx)
	default:
		runErr = run.runSequential(runCtx)
	}

	e.finalize(ctx, span, run, handle, runErr)
	e.persistExecution(ctx, execution, false)

	return execution, nil
}

// Cancel aborts a running execution by id. Returns false when no execution
// with the id is running.
func (e *Engine) Cancel(executionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	handle, ok := e.running[executionID]
	if !ok {
		return false
	}

	handle.cancelled = true
	handle.cancel()

	return true
}

// finalize moves the execution into its terminal state and emits the
// matching lifecycle event.
func (e *Engine) finalize(ctx context.Context, span trace.Span, run *run, handle *runHandle, runErr error) {
	execution := run.execution

	// Cancel flips the flag under e.mu from another goroutine.
	e.mu.Lock()
	cancelled := handle.cancelled
	e.mu.Unlock()

	switch {
	case runErr == nil:
		execution.Finish(models.ExecutionStatusSuccess, run.terminalOutputs(), "")
		run.logger.InfoContext(ctx, "workflow execution completed")
		e.sink.Emit(ctx, execution.ID, newExecutionCompletedEvent(execution))
	case cancelled || errors.Is(runErr, context.Canceled):
		execution.Finish(models.ExecutionStatusCancelled, nil, runErr.Error())
		run.logger.InfoContext(ctx, "workflow execution cancelled")
		span.SetAttributes(attribute.Bool("cascade.execution.cancelled", true))
		e.sink.Emit(ctx, execution.ID, newExecutionCancelledEvent(execution))
	default:
		execution.Finish(models.ExecutionStatusFailed, nil, runErr.Error())
		run.logger.ErrorContext(ctx, "workflow execution failed", "error", runErr)
		telemetry.SetError(span, runErr)

		var failure *NodeFailure

		nodeID := ""
		if errors.As(runErr, &failure) {
			nodeID = failure.NodeID
		}

		e.sink.Emit(ctx, execution.ID, newExecutionFailedEvent(execution, nodeID))
	}
}

// persistExecution records an execution transition, logging (not
// propagating) storage failures.
func (e *Engine) persistExecution(ctx context.Context, execution *models.Execution, create bool) {
	if e.store == nil {
		return
	}

	var err error
	if create {
		err = e.store.ExecutionRepository().CreateExecution(ctx, execution)
	} else {
		err = e.store.ExecutionRepository().UpdateExecution(ctx, execution)
	}

	if err != nil {
		e.logger.WarnContext(ctx, "failed to persist execution record",
			"execution_id", execution.ID, "error", err)
	}
}

// persistNodeExecution records a node execution transition, logging (not
// propagating) storage failures.
func (e *Engine) persistNodeExecution(ctx context.Context, record *models.NodeExecution, create bool) {
	if e.store == nil {
		return
	}

	var err error
	if create {
		err = e.store.ExecutionRepository().CreateNodeExecution(ctx, record)
	} else {
		err = e.store.ExecutionRepository().UpdateNodeExecution(ctx, record)
	}

	if err != nil {
		e.logger.WarnContext(ctx, "failed to persist node execution record",
			"execution_id", record.ExecutionID, "node_id", record.NodeID, "error", err)
	}
}

func (e *Engine) nodeDeadline(def *models.WorkflowDefinition, node *models.NodeDefinition) time.Duration {
	return time.Duration(def.NodeTimeout(node)) * time.Second
}

func (r *run) runSequential(ctx context.Context) error {
	for _, nodeID := range r.graph.Plan().Order {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.dispatch(ctx, nodeID); err != nil {
			// Not-yet-dispatched nodes stay pending and never run.
			return err
		}
	}

	return nil
}

func (r *run) runParallel(ctx context.Context) error {
	for levelNum, level := range r.graph.Plan().Levels {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.logger.DebugContext(ctx, "dispatching level",
			"level", levelNum, "nodes", len(level))

		// errgroup cancels levelCtx on the first failure, which cancels the
		// in-flight siblings of the level (fail-fast). The Wait call is the
		// barrier: no level k+1 node starts before level k fully settles.
		group, levelCtx := errgroup.WithContext(ctx)

		for _, nodeID := range level {
			group.Go(func() error {
				return r.dispatch(levelCtx, nodeID)
			})
		}

		if err := group.Wait(); err != nil {
			return err
		}
	}

	return nil
}
