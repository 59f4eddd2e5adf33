// comply/pkg/expr/eval.go

package expr

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrBadComparison is returned when an ordering operator is applied to
// values that cannot be ordered (nil, mixed string/number, lists).
var ErrBadComparison = errors.New("incomparable values")

// Evaluate parses and evaluates an expression against a flat context.
// Identifiers missing from the context resolve to nil. The result is a
// boolean for comparisons, or the deciding operand value for and/or chains.
func Evaluate(expression string, ctx map[string]interface{}) (interface{}, error) {
	node, err := Parse(expression)
	if err != nil {
		return nil, err
	}
	return node.eval(ctx)
}

func (n *literalNode) eval(_ map[string]interface{}) (interface{}, error) {
	return n.value, nil
}

func (n *identNode) eval(ctx map[string]interface{}) (interface{}, error) {
	// Absent identifiers are a data condition, not an error.
	return ctx[n.name], nil
}

func (n *boolNode) eval(ctx map[string]interface{}) (interface{}, error) {
	left, err := n.operands[0].eval(ctx)
	if err != nil {
		return nil, err
	}
	for _, operand := range n.operands[1:] {
		right, err := operand.eval(ctx)
		if err != nil {
			return nil, err
		}
		if n.op == "and" {
			if Truthy(left) {
				left = right
			}
		} else {
			if !Truthy(left) {
				left = right
			}
		}
	}
	return left, nil
}

func (n *compareNode) eval(ctx map[string]interface{}) (interface{}, error) {
	left, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	for i, op := range n.ops {
		right, err := n.comparators[i].eval(ctx)
		if err != nil {
			return nil, err
		}
		ok, err := compare(op, left, right)
		if err != nil {
			return nil, err
		}
		// Every link of a chained comparison must hold.
		if !ok {
			return false, nil
		}
		left = right
	}
	return true, nil
}

func compare(op string, left, right interface{}) (bool, error) {
	switch op {
	case "==":
		return equal(left, right), nil
	case "!=":
		return !equal(left, right), nil
	}

	if lf, lok := toFloat(left); lok {
		if rf, rok := toFloat(right); rok {
			switch op {
			case "<":
				return lf < rf, nil
			case "<=":
				return lf <= rf, nil
			case ">":
				return lf > rf, nil
			case ">=":
				return lf >= rf, nil
			}
		}
	}
	if ls, lok := left.(string); lok {
		if rs, rok := right.(string); rok {
			switch op {
			case "<":
				return ls < rs, nil
			case "<=":
				return ls <= rs, nil
			case ">":
				return ls > rs, nil
			case ">=":
				return ls >= rs, nil
			}
		}
	}
	return false, fmt.Errorf("%w: cannot order %T and %T", ErrBadComparison, left, right)
}

// equal compares numerics by value across widths; everything else falls back
// to deep equality. Mismatched types are unequal, never an error.
func equal(left, right interface{}) bool {
	if lf, lok := toFloat(left); lok {
		if rf, rok := toFloat(right); rok {
			return lf == rf
		}
		return false
	}
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	return reflect.DeepEqual(left, right)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case bool:
		// Booleans order and compare as 0/1, matching the source rulesets.
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Truthy reports whether a value counts as true: nil, false, zero and empty
// strings/collections are false, everything else is true.
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
		return true
	}
}
