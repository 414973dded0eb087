package extensibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/comalice/fsmx"
)

// ErrBadExpression is returned for condition text that does not parse.
var ErrBadExpression = errors.New("malformed condition expression")

// Expression is a parsed "key op value" comparison against a blackboard entry.
type Expression struct {
	Key   string
	Op    string
	Value string
}

var operators = map[string]bool{
	"==": true, "!=": true,
	"<": true, "<=": true,
	">": true, ">=": true,
}

// ParseExpression parses text such as "temp > 30" or "door == open".
func ParseExpression(text string) (Expression, error) {
	parts := strings.Fields(text)
	if len(parts) != 3 {
		return Expression{}, fmt.Errorf("%w: %q: want \"key op value\"", ErrBadExpression, text)
	}
	if !operators[parts[1]] {
		return Expression{}, fmt.Errorf("%w: %q: unknown operator %q", ErrBadExpression, text, parts[1])
	}
	e := Expression{Key: parts[0], Op: parts[1], Value: parts[2]}
	if e.ordered() {
		if _, err := strconv.ParseFloat(e.Value, 64); err != nil {
			return Expression{}, fmt.Errorf("%w: %q: %s needs a number", ErrBadExpression, text, e.Op)
		}
	}
	return e, nil
}

func (e Expression) String() string {
	return e.Key + " " + e.Op + " " + e.Value
}

func (e Expression) ordered() bool {
	return e.Op != "==" && e.Op != "!="
}

// Eval compares the blackboard entry with the expression's literal. A missing key
// never satisfies the expression, not even with !=.
func (e Expression) Eval(board *fsmx.Blackboard) bool {
	v, ok := board.Lookup(e.Key)
	if !ok {
		return false
	}
	switch e.Op {
	case "==":
		return equalLiteral(v, e.Value)
	case "!=":
		return !equalLiteral(v, e.Value)
	}
	f, ok := toFloat(v)
	if !ok {
		return false
	}
	lit, _ := strconv.ParseFloat(e.Value, 64)
	switch e.Op {
	case "<":
		return f < lit
	case "<=":
		return f <= lit
	case ">":
		return f > lit
	case ">=":
		return f >= lit
	}
	return false
}

// Condition binds the expression to a blackboard.
func (e Expression) Condition(board *fsmx.Blackboard) fsmx.Condition {
	return func() bool { return e.Eval(board) }
}

func equalLiteral(v any, lit string) bool {
	switch lit {
	case "true":
		return v == true
	case "false":
		return v == false
	case "nil":
		return v == nil
	}
	if want, err := strconv.ParseFloat(lit, 64); err == nil {
		if f, ok := toFloat(v); ok {
			return f == want
		}
	}
	if s, ok := v.(string); ok {
		return s == lit
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

// parseLiteral turns action arguments into blackboard values.
func parseLiteral(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
