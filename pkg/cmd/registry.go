package cmd

import (
	"log/slog"

	"github.com/cascadehq/cascade/pkg/registry"
)

// NewRegistry builds a registry with every built-in node type installed.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)
	registry.RegisterDefaultNodes(reg)

	return reg
}
