package shared

import (
	"fmt"

	"github.com/viant/sqlparser"
	"github.com/viant/sqlparser/expr"
	"github.com/viant/sqlparser/query"
)

// FlattenInnerQuery lifts source, WHERE, ORDER BY and LIMIT of "SELECT ... FROM (SELECT ...)" into the outer query.
// Projections are dropped since compiled queries return whole children. It returns the inner source name.
func FlattenInnerQuery(outer *query.Select, rawExpr *expr.Raw) (string, error) {
	inner, ok := rawExpr.X.(*query.Select)
	if !ok {
		return "", fmt.Errorf("unsupported FROM expression: %s", sqlparser.Stringify(rawExpr))
	}
	source := sqlparser.Stringify(inner.From.X)
	if nested, ok := inner.From.X.(*expr.Raw); ok {
		var err error
		if source, err = FlattenInnerQuery(inner, nested); err != nil {
			return "", err
		}
	}
	if outer.Qualify == nil || outer.Qualify.X == nil {
		outer.Qualify = inner.Qualify
	} else if inner.Qualify != nil && inner.Qualify.X != nil {
		return "", fmt.Errorf("WHERE clause in both outer and inner query: %s", sqlparser.Stringify(outer))
	}
	if len(outer.OrderBy) == 0 {
		outer.OrderBy = inner.OrderBy
	}
	if outer.Limit == nil {
		outer.Limit = inner.Limit
	}
	return source, nil
}
