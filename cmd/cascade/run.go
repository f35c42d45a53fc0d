package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/cascadehq/cascade/pkg/audit"
	"github.com/cascadehq/cascade/pkg/cmd"
	"github.com/cascadehq/cascade/pkg/engine"
	"github.com/cascadehq/cascade/pkg/log"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/workflow"
)

// RunCommand executes one workflow file locally and prints the terminal
// execution record as JSON.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Execute a workflow file against an input",
		ArgsUsage: "<workflow-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Workflow input as a JSON object",
				Value:   "{}",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Override the execution mode (sequential, parallel)",
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Optional database URL to record execution provenance",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("cli")

			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("usage: cascade run <workflow-file>")
			}

			var input map[string]any
			if err := json.Unmarshal([]byte(command.String("input")), &input); err != nil {
				return fmt.Errorf("parse input json: %w", err)
			}

			reg := cmd.NewRegistry(logger)

			def, err := workflow.NewLoader(reg).LoadFile(path)
			if err != nil {
				return err
			}

			switch mode := command.String("mode"); mode {
			case "":
			case "sequential":
				def.ExecutionMode = models.ExecutionModeSequential
			case "parallel":
				def.ExecutionMode = models.ExecutionModeParallel
			default:
				return fmt.Errorf("unknown execution mode %q", mode)
			}

			opts := []engine.Option{
				engine.WithAuditSink(audit.LogSink{Logger: logger}),
			}

			if databaseURL := command.String("database-url"); databaseURL != "" {
				store, err := cmd.NewPersistence(ctx, logger, databaseURL)
				if err != nil {
					return err
				}

				defer func() {
					if err := store.Close(ctx); err != nil {
						logger.ErrorContext(ctx, "failed to close persistence", "error", err)
					}
				}()

				opts = append(opts, engine.WithPersistence(store))
			}

			execution, err := engine.NewEngine(logger, reg, opts...).Run(ctx, def, input)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(execution, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, string(encoded))

			if execution.Status != models.ExecutionStatusSuccess {
				return fmt.Errorf("execution finished with status %s", execution.Status)
			}

			return nil
		},
	}
}
