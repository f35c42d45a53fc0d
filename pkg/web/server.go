package web

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/cascadehq/cascade/pkg/engine"
	"github.com/cascadehq/cascade/pkg/persistence"
	"github.com/cascadehq/cascade/pkg/registry"
)

// API owns the fiber application serving the workflow REST surface.
type API struct {
	logger   *slog.Logger
	engine   *engine.Engine
	store    persistence.Persistence
	registry *registry.Registry
}

func NewAPI(
	logger *slog.Logger,
	eng *engine.Engine,
	store persistence.Persistence,
	reg *registry.Registry,
) *API {
	return &API{
		logger:   logger,
		engine:   eng,
		store:    store,
		registry: reg,
	}
}

// App builds the fiber application with all routes registered.
func (a *API) App() *fiber.App {
	handlers := NewAPIHandlers(a.logger, a.engine, a.store, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Cascade API")
	})

	app.Get("/health", handlers.HealthCheck)
	app.Get("/node-types", handlers.GetNodeTypes)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/executions", handlers.StartExecution)
	w.Get("/:id/executions", handlers.GetExecutions)

	e := app.Group("/executions")
	e.Get("/:id", handlers.GetExecution)
	e.Get("/:id/nodes", handlers.GetNodeExecutions)
	e.Post("/:id/cancel", handlers.CancelExecution)

	return app
}

// Start runs the server on the given port.
func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
