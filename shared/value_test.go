package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueOf_RoundTrip(t *testing.T) {
	var testCases = []struct {
		description string
		input       interface{}
	}{
		{description: "null", input: nil},
		{description: "bool", input: true},
		{description: "number", input: 3.25},
		{description: "string", input: "hello"},
		{description: "list", input: []interface{}{1.0, "a", false, nil}},
		{description: "nested", input: map[string]interface{}{
			"a": map[string]interface{}{"b": []interface{}{map[string]interface{}{"c": "d"}, 2.0}},
			"e": nil,
			"f": true,
		}},
	}
	for _, testCase := range testCases {
		value, err := ValueOf(testCase.input)
		require.NoError(t, err, testCase.description)
		assert.EqualValues(t, testCase.input, value.Interface(), testCase.description)
	}
}

func TestValueOf_Widening(t *testing.T) {
	value, err := ValueOf(map[string]interface{}{"i": int64(42), "u": uint8(7), "j": json.Number("12")})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"i": 42.0, "u": 7.0, "j": 12.0}, value.Interface())
}

func TestValueOf_Unsupported(t *testing.T) {
	_, err := ValueOf(map[string]interface{}{"a": []interface{}{1, struct{}{}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedValue)
	assert.Contains(t, err.Error(), "/a/1")

	_, err = ValueOf(make(chan int))
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestValue_JSON(t *testing.T) {
	value := MustValueOf(map[string]interface{}{"b": 1, "a": []interface{}{"x", nil}})
	data, err := json.Marshal(value)
	require.NoError(t, err)
	assert.Equal(t, `{"a":["x",null],"b":1}`, string(data))

	var decoded Value
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, value.Equal(decoded))
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, MustValueOf([]interface{}{1, "a"}).Equal(MustValueOf([]interface{}{1.0, "a"})))
	assert.False(t, MustValueOf(map[string]interface{}{"a": 1}).Equal(MustValueOf(map[string]interface{}{"a": "1"})))
	assert.False(t, Null().Equal(NewBool(false)))
}
