package realtime

import (
	"fmt"
	"strings"

	"github.com/viant/firebridge/shared"
	"github.com/viant/sqlparser"
	"github.com/viant/sqlparser/expr"
	"github.com/viant/sqlparser/node"
	"github.com/viant/sqlparser/query"
)

// Compiled represents a SELECT compiled into a location path and query descriptor entries
type Compiled struct {
	Path   string
	Ops    [][]interface{}
	DryRun bool
}

// compiler collects constraints of the single column a realtime query can filter on
type compiler struct {
	column   string
	start    interface{}
	end      interface{}
	equal    interface{}
	hasStart bool
	hasEnd   bool
	hasEqual bool
	limit    int
	fromLast bool
}

// CompileSQL compiles "SELECT ... FROM path [WHERE col op value [AND ...]] [ORDER BY col [DESC]] [LIMIT n]".
// Path segments can be separated with dots, all conditions have to use the same column.
func CompileSQL(SQL string, args ...interface{}) (*Compiled, error) {
	if sqlparser.ParseKind(SQL) != sqlparser.KindSelect {
		return nil, fmt.Errorf("only SELECT statements can be compiled: %v", SQL)
	}
	selectStmt, err := sqlparser.ParseQuery(SQL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse select statement: %w", err)
	}
	table := sqlparser.Stringify(selectStmt.From.X)
	if rawExpr, ok := selectStmt.From.X.(*expr.Raw); ok {
		if table, err = shared.FlattenInnerQuery(selectStmt, rawExpr); err != nil {
			return nil, err
		}
	}
	ret := &Compiled{Path: locationPath(table), Ops: [][]interface{}{}}
	if shared.IsDryRun(selectStmt) {
		ret.DryRun = true
		return ret, nil
	}
	c := &compiler{}
	eval := &evaluator{args: args}
	if selectStmt.Qualify != nil && selectStmt.Qualify.X != nil {
		if err = c.where(selectStmt.Qualify.X, eval); err != nil {
			return nil, err
		}
	}
	if err = c.orderBy(selectStmt); err != nil {
		return nil, err
	}
	if err = c.applyLimit(selectStmt, eval); err != nil {
		return nil, err
	}
	if ret.Ops, err = c.ops(); err != nil {
		return nil, err
	}
	return ret, nil
}

func locationPath(table string) string {
	table = strings.Trim(table, "`\"' ")
	return shared.JoinPath(strings.ReplaceAll(table, ".", "/"))
}

func (c *compiler) where(n node.Node, eval *evaluator) error {
	binary, ok := n.(*expr.Binary)
	if !ok {
		return fmt.Errorf("unsupported WHERE clause: %v", sqlparser.Stringify(n))
	}
	switch strings.ToUpper(binary.Op) {
	case "AND":
		if err := c.where(binary.X, eval); err != nil {
			return err
		}
		return c.where(binary.Y, eval)
	case "OR":
		return fmt.Errorf("OR is not supported in WHERE clause")
	}
	colName, ok := binary.X.(*expr.Ident)
	if !ok {
		return fmt.Errorf("invalid column name in WHERE clause")
	}
	if err := c.use(colName.Name); err != nil {
		return err
	}
	value, err := eval.evaluateExpr(binary.Y)
	if err != nil {
		return fmt.Errorf("could not resolve value in WHERE clause: %v", err)
	}
	switch binary.Op {
	case "=":
		if c.hasEqual || c.hasStart || c.hasEnd {
			return fmt.Errorf("conflicting conditions on %v", colName.Name)
		}
		c.equal, c.hasEqual = value, true
	case ">", ">=":
		if c.hasEqual || c.hasStart {
			return fmt.Errorf("conflicting lower bound on %v", colName.Name)
		}
		c.start, c.hasStart = value, true
	case "<", "<=":
		if c.hasEqual || c.hasEnd {
			return fmt.Errorf("conflicting upper bound on %v", colName.Name)
		}
		c.end, c.hasEnd = value, true
	default:
		return fmt.Errorf("unsupported operator in WHERE clause: %s", binary.Op)
	}
	return nil
}

func (c *compiler) use(column string) error {
	if c.column != "" && c.column != column {
		return fmt.Errorf("only one column can be queried, but had %v and %v", c.column, column)
	}
	c.column = column
	return nil
}

func (c *compiler) orderBy(selectStmt *query.Select) error {
	if len(selectStmt.OrderBy) == 0 {
		return nil
	}
	if len(selectStmt.OrderBy) > 1 {
		return fmt.Errorf("only one ORDER BY column is supported")
	}
	item := selectStmt.OrderBy[0]
	colName, ok := item.Expr.(*expr.Ident)
	if !ok {
		return fmt.Errorf("unsupported ORDER BY expression")
	}
	c.fromLast = strings.EqualFold(item.Direction, "DESC")
	return c.use(colName.Name)
}

func (c *compiler) applyLimit(selectStmt *query.Select, eval *evaluator) error {
	if selectStmt.Offset != nil {
		return fmt.Errorf("OFFSET is not supported in Firebase Realtime Database queries")
	}
	if selectStmt.Limit == nil {
		return nil
	}
	value, err := eval.evaluateExpr(selectStmt.Limit)
	if err != nil {
		return fmt.Errorf("failed to parse LIMIT value: %v", err)
	}
	number, err := shared.ValueOf(value)
	if err != nil || number.Kind() != shared.KindNumber || number.Number() < 1 || number.Number() != float64(int(number.Number())) {
		return fmt.Errorf("LIMIT value is not a positive integer: %v", value)
	}
	c.limit = int(number.Number())
	return nil
}

// ops encodes constraints as query descriptor entries
func (c *compiler) ops() ([][]interface{}, error) {
	var ret [][]interface{}
	switch {
	case c.column != "":
		ret = append(ret, []interface{}{"orderByChild", c.column})
	case c.limit > 0:
		ret = append(ret, []interface{}{"orderByKey"})
	}
	bounds := []struct {
		name  string
		value interface{}
		ok    bool
	}{
		{"equalTo", c.equal, c.hasEqual},
		{"startAt", c.start, c.hasStart},
		{"endAt", c.end, c.hasEnd},
	}
	for _, bound := range bounds {
		if !bound.ok {
			continue
		}
		value, err := shared.ValueOf(bound.value)
		if err != nil {
			return nil, err
		}
		ret = append(ret, []interface{}{bound.name, value.Interface()})
	}
	if c.limit > 0 {
		name := "limitToFirst"
		if c.fromLast {
			name = "limitToLast"
		}
		ret = append(ret, []interface{}{name, c.limit})
	}
	if ret == nil {
		ret = [][]interface{}{}
	}
	return ret, nil
}
