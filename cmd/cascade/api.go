package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"github.com/cascadehq/cascade/pkg/cmd"
	"github.com/cascadehq/cascade/pkg/engine"
	"github.com/cascadehq/cascade/pkg/eventbus"
	"github.com/cascadehq/cascade/pkg/log"
	"github.com/cascadehq/cascade/pkg/telemetry"
	"github.com/cascadehq/cascade/pkg/web"
)

const defaultPort = 9091

// APICommand serves the workflow REST API.
func APICommand() *cli.Command {
	return &cli.Command{
		Name:    "api",
		Usage:   "Start the workflow API server",
		Aliases: []string{"serve"},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka broker list",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing export",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("api")

			logger.InfoContext(ctx, "initializing cascade api")

			reg := cmd.NewRegistry(logger)

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "failed to close persistence", "error", err)
				}
			}()

			bus, err := cmd.NewEventBus(
				command.String("event-bus"),
				command.String("kafka-brokers"),
				logger,
			)
			if err != nil {
				return err
			}

			defer func() {
				if err := bus.Close(); err != nil {
					logger.ErrorContext(ctx, "failed to close event bus", "error", err)
				}
			}()

			opts := []engine.Option{
				engine.WithPersistence(store),
				engine.WithAuditSink(eventbus.NewSink(bus, logger)),
			}

			if command.Bool("tracing") {
				tracer, err := telemetry.NewTracer(ctx, "cascade-api")
				if err != nil {
					return err
				}

				opts = append(opts, engine.WithTracer(tracer))
			}

			eng := engine.NewEngine(logger, reg, opts...)

			return web.NewAPI(logger, eng, store, reg).Start(command.Int("port"))
		},
	}
}
