package sdk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

func keysOf(entries []sdk.Entry) []string {
	var result []string
	for _, entry := range entries {
		result = append(result, entry.Key)
	}
	return result
}

func TestQuerySpec_Apply(t *testing.T) {
	numbers := shared.MustValueOf([]interface{}{1, 2, 3, 4, 5, 6})
	people := shared.MustValueOf(map[string]interface{}{
		"ann":  map[string]interface{}{"age": 31},
		"bob":  map[string]interface{}{"age": 25},
		"cid":  map[string]interface{}{"age": 40},
		"dave": map[string]interface{}{"name": "no age"},
	})
	var testCases = []struct {
		description string
		spec        sdk.QuerySpec
		node        shared.Value
		expect      []string
	}{
		{description: "default", spec: sdk.QuerySpec{}, node: numbers, expect: []string{"0", "1", "2", "3", "4", "5"}},
		{description: "limitToFirst", spec: sdk.QuerySpec{}.WithLimit(2, false), node: numbers, expect: []string{"0", "1"}},
		{description: "limitToLast", spec: sdk.QuerySpec{}.WithLimit(2, true), node: numbers, expect: []string{"4", "5"}},
		{description: "orderByValue startAt", spec: sdk.QuerySpec{}.WithOrder(sdk.OrderByValue, "").WithStart(sdk.BoundOf(shared.NewNumber(3))), node: numbers, expect: []string{"2", "3", "4", "5"}},
		{description: "orderByValue endAt", spec: sdk.QuerySpec{}.WithOrder(sdk.OrderByValue, "").WithEnd(sdk.BoundOf(shared.NewNumber(3))), node: numbers, expect: []string{"0", "1", "2"}},
		{description: "orderByValue equalTo", spec: sdk.QuerySpec{}.WithOrder(sdk.OrderByValue, "").WithEqual(sdk.BoundOf(shared.NewNumber(4))), node: numbers, expect: []string{"3"}},
		{description: "orderByChild", spec: sdk.QuerySpec{}.WithOrder(sdk.OrderByChild, "age"), node: people, expect: []string{"dave", "bob", "ann", "cid"}},
		{description: "orderByChild startAt limit", spec: sdk.QuerySpec{}.WithOrder(sdk.OrderByChild, "age").WithStart(sdk.BoundOf(shared.NewNumber(26))).WithLimit(1, false), node: people, expect: []string{"ann"}},
		{description: "orderByKey range", spec: sdk.QuerySpec{}.WithOrder(sdk.OrderByKey, "").WithStart(sdk.BoundOf(shared.NewString("b"))).WithEnd(sdk.BoundOf(shared.NewString("c~"))), node: people, expect: []string{"bob", "cid"}},
		{description: "bound key", spec: sdk.QuerySpec{}.WithOrder(sdk.OrderByValue, "").WithStart(sdk.BoundOf(shared.NewNumber(3), "3")), node: numbers, expect: []string{"3", "4", "5"}},
	}
	for _, testCase := range testCases {
		require.NoError(t, testCase.spec.Err(), testCase.description)
		assert.Equal(t, testCase.expect, keysOf(testCase.spec.Apply(testCase.node)), testCase.description)
	}
}

func TestQuerySpec_Validation(t *testing.T) {
	var testCases = []struct {
		description string
		spec        sdk.QuerySpec
	}{
		{description: "double order", spec: sdk.QuerySpec{}.WithOrder(sdk.OrderByKey, "").WithOrder(sdk.OrderByValue, "")},
		{description: "double start", spec: sdk.QuerySpec{}.WithStart(sdk.BoundOf(shared.NewNumber(1))).WithStart(sdk.BoundOf(shared.NewNumber(2)))},
		{description: "equal after end", spec: sdk.QuerySpec{}.WithEnd(sdk.BoundOf(shared.NewNumber(1))).WithEqual(sdk.BoundOf(shared.NewNumber(2)))},
		{description: "zero limit", spec: sdk.QuerySpec{}.WithLimit(0, false)},
		{description: "double limit", spec: sdk.QuerySpec{}.WithLimit(1, false).WithLimit(1, true)},
		{description: "key order number bound", spec: sdk.QuerySpec{}.WithOrder(sdk.OrderByKey, "").WithStart(sdk.BoundOf(shared.NewNumber(1)))},
		{description: "bound after key order", spec: sdk.QuerySpec{}.WithStart(sdk.BoundOf(shared.NewNumber(1))).WithOrder(sdk.OrderByKey, "")},
		{description: "composite bound", spec: sdk.QuerySpec{}.WithStart(sdk.BoundOf(shared.NewList()))},
		{description: "invalid child path", spec: sdk.QuerySpec{}.WithOrder(sdk.OrderByChild, "a.b")},
	}
	for _, testCase := range testCases {
		err := testCase.spec.Err()
		require.Error(t, err, testCase.description)
		var queryErr *sdk.QueryError
		assert.ErrorAs(t, err, &queryErr, testCase.description)
	}
}
