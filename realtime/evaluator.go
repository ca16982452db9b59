package realtime

import (
	"fmt"
	"strconv"

	"github.com/viant/sqlparser/expr"
	"github.com/viant/sqlparser/node"
)

// evaluator resolves literals and placeholders, "?" placeholders consume arguments in order
type evaluator struct {
	args     []interface{}
	argIndex int
}

func (e *evaluator) evaluateExpr(n node.Node) (interface{}, error) {
	switch v := n.(type) {
	case *expr.Literal:
		return parseLiteralValue(v)
	case *expr.Placeholder:
		if v.Name == "?" {
			if e.argIndex >= len(e.args) {
				return nil, fmt.Errorf("not enough arguments")
			}
			value := e.args[e.argIndex]
			e.argIndex++
			return value, nil
		}
		if len(v.Name) > 1 && v.Name[0] == '$' {
			index, err := strconv.Atoi(v.Name[1:])
			if err != nil || index < 1 || index > len(e.args) {
				return nil, fmt.Errorf("invalid placeholder '%s'", v.Name)
			}
			return e.args[index-1], nil
		}
		return nil, fmt.Errorf("invalid placeholder '%s'", v.Name)
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", n)
	}
}

func parseLiteralValue(lit *expr.Literal) (interface{}, error) {
	switch lit.Kind {
	case "string":
		text := lit.Value
		if len(text) >= 2 && (text[0] == '\'' || text[0] == '"') && text[len(text)-1] == text[0] {
			text = text[1 : len(text)-1]
		}
		return text, nil
	case "int":
		return strconv.ParseInt(lit.Value, 10, 64)
	case "numeric", "float":
		return strconv.ParseFloat(lit.Value, 64)
	case "bool":
		return strconv.ParseBool(lit.Value)
	case "null":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported literal kind: %s", lit.Kind)
	}
}
