package expression

import (
	"fmt"
	"reflect"
	"strings"
)

// Comparison operators supported by Compare.
const (
	OperatorEq       = "eq"
	OperatorNe       = "ne"
	OperatorGt       = "gt"
	OperatorLt       = "lt"
	OperatorGte      = "gte"
	OperatorLte      = "lte"
	OperatorContains = "contains"
)

// ValidOperator reports whether op is a supported comparison operator.
func ValidOperator(op string) bool {
	switch op {
	case OperatorEq, OperatorNe, OperatorGt, OperatorLt, OperatorGte, OperatorLte, OperatorContains:
		return true
	default:
		return false
	}
}

// Compare applies a comparison operator to a resolved field value and a
// literal. Numeric operators require both operands to be numeric and
// contains requires both to be strings; violations fail with
// ErrTypeMismatch rather than silently comparing as false.
func Compare(fieldValue any, operator string, expected any) (bool, error) {
	switch operator {
	case OperatorEq:
		return looseEqual(fieldValue, expected), nil
	case OperatorNe:
		return !looseEqual(fieldValue, expected), nil
	case OperatorGt, OperatorLt, OperatorGte, OperatorLte:
		left, lok := asNumber(fieldValue)
		right, rok := asNumber(expected)

		if !lok || !rok {
			return false, fmt.Errorf("%w: operator %q requires numeric operands, got %T and %T",
				ErrTypeMismatch, operator, fieldValue, expected)
		}

		switch operator {
		case OperatorGt:
			return left > right, nil
		case OperatorLt:
			return left < right, nil
		case OperatorGte:
			return left >= right, nil
		default:
			return left <= right, nil
		}
	case OperatorContains:
		haystack, hok := fieldValue.(string)
		needle, nok := expected.(string)

		if !hok || !nok {
			return false, fmt.Errorf("%w: operator %q requires string operands, got %T and %T",
				ErrTypeMismatch, operator, fieldValue, expected)
		}

		return strings.Contains(haystack, needle), nil
	default:
		return false, fmt.Errorf("%w: unknown operator %q", ErrUnresolved, operator)
	}
}

// looseEqual compares two JSON values, treating all numeric representations
// as float64 the way encoding/json does.
func looseEqual(a, b any) bool {
	if left, ok := asNumber(a); ok {
		if right, rok := asNumber(b); rok {
			return left == right
		}

		return false
	}

	return reflect.DeepEqual(a, b)
}

func asNumber(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	default:
		return 0, false
	}
}
