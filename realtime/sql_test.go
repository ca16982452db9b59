package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileSQL(t *testing.T) {
	var testCases = []struct {
		description string
		SQL         string
		args        []interface{}
		expect      *Compiled
		hasError    bool
	}{
		{
			description: "range with placeholder and limit",
			SQL:         "SELECT * FROM users WHERE age >= ? LIMIT 5",
			args:        []interface{}{18},
			expect: &Compiled{Path: "users", Ops: [][]interface{}{
				{"orderByChild", "age"},
				{"startAt", float64(18)},
				{"limitToFirst", 5},
			}},
		},
		{
			description: "equality literal",
			SQL:         "SELECT * FROM users WHERE name = 'ann'",
			expect: &Compiled{Path: "users", Ops: [][]interface{}{
				{"orderByChild", "name"},
				{"equalTo", "ann"},
			}},
		},
		{
			description: "closed range",
			SQL:         "SELECT * FROM scores WHERE points >= 10 AND points <= 20",
			expect: &Compiled{Path: "scores", Ops: [][]interface{}{
				{"orderByChild", "points"},
				{"startAt", float64(10)},
				{"endAt", float64(20)},
			}},
		},
		{
			description: "descending order with limit",
			SQL:         "SELECT * FROM scores ORDER BY points DESC LIMIT 3",
			expect: &Compiled{Path: "scores", Ops: [][]interface{}{
				{"orderByChild", "points"},
				{"limitToLast", 3},
			}},
		},
		{
			description: "limit only",
			SQL:         "SELECT * FROM users LIMIT 2",
			expect: &Compiled{Path: "users", Ops: [][]interface{}{
				{"orderByKey"},
				{"limitToFirst", 2},
			}},
		},
		{
			description: "plain location",
			SQL:         "SELECT * FROM users",
			expect:      &Compiled{Path: "users", Ops: [][]interface{}{}},
		},
		{
			description: "dry run",
			SQL:         "SELECT * FROM users WHERE 1 = 0",
			expect:      &Compiled{Path: "users", Ops: [][]interface{}{}, DryRun: true},
		},
		{description: "delete", SQL: "DELETE FROM users", hasError: true},
		{description: "offset", SQL: "SELECT * FROM users LIMIT 2 OFFSET 1", hasError: true},
		{description: "two columns", SQL: "SELECT * FROM users WHERE age > 1 AND name = 'x'", hasError: true},
		{description: "missing argument", SQL: "SELECT * FROM users WHERE age > ?", hasError: true},
		{description: "or", SQL: "SELECT * FROM users WHERE age > 1 OR age < 0", hasError: true},
	}
	for _, testCase := range testCases {
		actual, err := CompileSQL(testCase.SQL, testCase.args...)
		if testCase.hasError {
			assert.Error(t, err, testCase.description)
			continue
		}
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}
