// Package expression resolves dotted/indexed paths and mustache-style
// templates against execution data.
package expression

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors surfaced as node failures during parameter binding.
var (
	// ErrUnresolved indicates a path segment or placeholder did not resolve.
	ErrUnresolved = errors.New("expression unresolved")

	// ErrTypeMismatch indicates a value had the wrong type for an operation.
	ErrTypeMismatch = errors.New("expression type mismatch")
)

// ResolvePath resolves a dotted/indexed path like "body.users[0].name"
// against a data value. Array indices must be non-negative integers; a
// missing key or out-of-range index fails with ErrUnresolved.
func ResolvePath(data any, path string) (any, error) {
	current := data

	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			continue
		}

		key, indices, err := parseSegment(segment)
		if err != nil {
			return nil, err
		}

		if key != "" {
			object, ok := current.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %q is not an object at %q", ErrUnresolved, path, key)
			}

			current, ok = object[key]
			if !ok {
				return nil, fmt.Errorf("%w: field %q not found in %q", ErrUnresolved, key, path)
			}
		}

		for _, index := range indices {
			array, ok := current.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: %q is not an array at %q", ErrUnresolved, path, key)
			}

			if index >= len(array) {
				return nil, fmt.Errorf("%w: index %d out of range in %q", ErrUnresolved, index, path)
			}

			current = array[index]
		}
	}

	return current, nil
}

// parseSegment splits a path segment like `users[0][1]` into its key and
// index chain. A segment may also be pure indices when it follows another
// index access.
func parseSegment(segment string) (string, []int, error) {
	open := strings.IndexByte(segment, '[')
	if open == -1 {
		return segment, nil, nil
	}

	key := segment[:open]
	rest := segment[open:]

	var indices []int

	for rest != "" {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("%w: malformed index in segment %q", ErrUnresolved, segment)
		}

		closing := strings.IndexByte(rest, ']')
		if closing == -1 {
			return "", nil, fmt.Errorf("%w: unterminated index in segment %q", ErrUnresolved, segment)
		}

		index, err := strconv.Atoi(rest[1:closing])
		if err != nil || index < 0 {
			return "", nil, fmt.Errorf("%w: invalid array index %q in segment %q", ErrUnresolved, rest[1:closing], segment)
		}

		indices = append(indices, index)
		rest = rest[closing+1:]
	}

	return key, indices, nil
}
