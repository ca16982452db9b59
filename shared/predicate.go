package shared

import (
	"strings"

	"github.com/viant/sqlparser/expr"
	"github.com/viant/sqlparser/node"
	"github.com/viant/sqlparser/query"
)

// IsFalsePredicate returns true for literal comparisons that never hold, like 1 = 0, and conjunctions containing one
func IsFalsePredicate(n node.Node) bool {
	binary, ok := n.(*expr.Binary)
	if !ok {
		return false
	}
	if strings.EqualFold(binary.Op, "AND") {
		return IsFalsePredicate(binary.X) || IsFalsePredicate(binary.Y)
	}
	left, ok := binary.X.(*expr.Literal)
	if !ok {
		return false
	}
	right, ok := binary.Y.(*expr.Literal)
	if !ok {
		return false
	}
	switch binary.Op {
	case "=":
		return left.Value != right.Value
	case "!=", "<>":
		return left.Value == right.Value
	}
	return false
}

// IsDryRun returns true if the WHERE clause can never match, such statements only describe their source
func IsDryRun(selectStmt *query.Select) bool {
	if selectStmt.Qualify == nil || selectStmt.Qualify.X == nil {
		return false
	}
	return IsFalsePredicate(selectStmt.Qualify.X)
}
