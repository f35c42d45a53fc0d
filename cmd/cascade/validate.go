package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/cascadehq/cascade/pkg/cmd"
	"github.com/cascadehq/cascade/pkg/log"
	"github.com/cascadehq/cascade/pkg/workflow"
)

// ValidateCommand checks workflow files without executing them.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Validate workflow files without running them",
		ArgsUsage: "<workflow-file> [workflow-file...]",
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("cli")

			paths := command.Args().Slice()
			if len(paths) == 0 {
				return fmt.Errorf("usage: cascade validate <workflow-file> [workflow-file...]")
			}

			loader := workflow.NewLoader(cmd.NewRegistry(logger))
			failed := false

			for _, path := range paths {
				def, err := loader.LoadFile(path)
				if err != nil {
					failed = true

					fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", path, err)

					continue
				}

				fmt.Fprintf(os.Stdout, "OK %s (%s, %d nodes, %d edges)\n",
					path, def.ID, len(def.Nodes), len(def.Edges))
			}

			if failed {
				return fmt.Errorf("one or more workflow files are invalid")
			}

			return nil
		},
	}
}
