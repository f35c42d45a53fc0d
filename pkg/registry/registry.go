// Package registry maps node type identifiers to capability factories.
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/cascadehq/cascade/pkg/protocol"
)

// Registry holds the node factories available to the engine. It is built
// once at startup and treated as immutable during execution.
type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.NodeFactory
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]protocol.NodeFactory),
	}
}

// RegisterNode registers a node factory under its type id. Registering the
// same id twice replaces the earlier factory.
func (r *Registry) RegisterNode(factory protocol.NodeFactory) {
	r.factories[factory.ID()] = factory
}

// CreateNode creates a node instance for the given type.
func (r *Registry) CreateNode(nodeType string) (protocol.Node, error) {
	factory, ok := r.factories[nodeType]
	if !ok {
		return nil, fmt.Errorf("node type %q not registered", nodeType)
	}

	return factory.Create(), nil
}

// HasNode reports whether a node type is registered.
func (r *Registry) HasNode(nodeType string) bool {
	_, ok := r.factories[nodeType]

	return ok
}

// NodeTypes returns all registered node type ids.
func (r *Registry) NodeTypes() []string {
	types := make([]string, 0, len(r.factories))
	for nodeType := range r.factories {
		types = append(types, nodeType)
	}

	return types
}

// ValidateParameters checks a parameter map against the node type's JSON
// schema. Types without a schema accept any parameters.
func (r *Registry) ValidateParameters(nodeType string, params map[string]any) error {
	factory, ok := r.factories[nodeType]
	if !ok {
		return fmt.Errorf("node type %q not registered", nodeType)
	}

	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	if params == nil {
		params = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(params)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("schema validation for %q: %w", nodeType, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("invalid parameters for %q: %s", nodeType, strings.Join(details, "; "))
	}

	return nil
}
