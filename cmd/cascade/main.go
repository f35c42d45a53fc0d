// Package main provides the cascade CLI: run and validate workflows locally
// or serve the REST API.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/cascadehq/cascade/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "cascade",
		Usage:                 "Execute and manage DAG workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			RunCommand(),
			ValidateCommand(),
			APICommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("cli").Error("command failed", "error", err)
		os.Exit(1)
	}
}
