package expression

import (
	"fmt"
	"strings"

	"github.com/cascadehq/cascade/pkg/models"
)

const (
	placeholderOpen  = "{{"
	placeholderClose = "}}"
	inputNamespace   = "input"
	variablePrefix   = "$"
)

// Render resolves every {{...}} placeholder inside value against the
// execution context, recursing through maps and slices. Non-string leaves
// pass through unchanged. An unresolvable placeholder fails the whole
// rendering; there is no silent empty-string substitution.
//
// Placeholder forms:
//
//	{{input.<path>}}    original workflow input
//	{{<node_id>.<path>}} a completed upstream node's output
//	{{$<name>}}         variable store lookup
func Render(value any, ctx *models.ExecutionContext) (any, error) {
	switch typed := value.(type) {
	case string:
		return renderString(typed, ctx)
	case map[string]any:
		rendered := make(map[string]any, len(typed))

		for key, item := range typed {
			result, err := Render(item, ctx)
			if err != nil {
				return nil, err
			}

			rendered[key] = result
		}

		return rendered, nil
	case []any:
		rendered := make([]any, len(typed))

		for i, item := range typed {
			result, err := Render(item, ctx)
			if err != nil {
				return nil, err
			}

			rendered[i] = result
		}

		return rendered, nil
	default:
		return value, nil
	}
}

// RenderParameters renders a node's whole parameter map.
func RenderParameters(params map[string]any, ctx *models.ExecutionContext) (map[string]any, error) {
	rendered, err := Render(params, ctx)
	if err != nil {
		return nil, err
	}

	if rendered == nil {
		return map[string]any{}, nil
	}

	return rendered.(map[string]any), nil
}

// HasPlaceholder reports whether a string contains template syntax.
func HasPlaceholder(s string) bool {
	open := strings.Index(s, placeholderOpen)

	return open != -1 && strings.Contains(s[open:], placeholderClose)
}

// renderString interpolates placeholders inside one string. A string that is
// exactly one placeholder resolves to the referenced value with its original
// type; placeholders embedded in larger strings are stringified.
func renderString(s string, ctx *models.ExecutionContext) (any, error) {
	if !HasPlaceholder(s) {
		return s, nil
	}

	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, placeholderOpen) && strings.HasSuffix(trimmed, placeholderClose) {
		inner := strings.TrimSpace(trimmed[len(placeholderOpen) : len(trimmed)-len(placeholderClose)])
		if !strings.Contains(inner, placeholderOpen) && !strings.Contains(inner, placeholderClose) {
			return resolveReference(inner, ctx)
		}
	}

	var builder strings.Builder

	rest := s

	for {
		open := strings.Index(rest, placeholderOpen)
		if open == -1 {
			builder.WriteString(rest)

			break
		}

		closing := strings.Index(rest[open:], placeholderClose)
		if closing == -1 {
			builder.WriteString(rest)

			break
		}

		builder.WriteString(rest[:open])

		reference := strings.TrimSpace(rest[open+len(placeholderOpen) : open+closing])

		value, err := resolveReference(reference, ctx)
		if err != nil {
			return nil, err
		}

		builder.WriteString(stringify(value))

		rest = rest[open+closing+len(placeholderClose):]
	}

	return builder.String(), nil
}

// resolveReference resolves the inside of a single placeholder.
func resolveReference(reference string, ctx *models.ExecutionContext) (any, error) {
	if reference == "" {
		return nil, fmt.Errorf("%w: empty placeholder", ErrUnresolved)
	}

	if strings.HasPrefix(reference, variablePrefix) {
		name := reference[len(variablePrefix):]

		value, ok := ctx.Variables.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: variable %q not set", ErrUnresolved, name)
		}

		return value, nil
	}

	namespace, path, _ := strings.Cut(reference, ".")

	if namespace == inputNamespace {
		return ResolvePath(anyMap(ctx.Input), path)
	}

	result, ok := ctx.NodeResults[namespace]
	if !ok {
		return nil, fmt.Errorf("%w: no completed node or namespace %q", ErrUnresolved, namespace)
	}

	if path == "" {
		return anyMap(result), nil
	}

	return ResolvePath(anyMap(result), path)
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", value)
}

func anyMap(m map[string]any) any {
	if m == nil {
		return map[string]any{}
	}

	return m
}
