package bridge

import (
	"math"

	"github.com/viant/firebridge/shared"
)

// Args represents positional call arguments in host representation
type Args []interface{}

// Len returns number of arguments
func (a Args) Len() int {
	return len(a)
}

// At returns argument or nil when missing
func (a Args) At(i int) interface{} {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// String returns required string argument
func (a Args) String(i int) (string, error) {
	value, ok := a.At(i).(string)
	if !ok {
		return "", InvalidArguments("argument %v: expected string, but had %T", i, a.At(i))
	}
	return value, nil
}

// OptionalString returns string argument, missing or null yields empty string
func (a Args) OptionalString(i int) (string, error) {
	if a.At(i) == nil {
		return "", nil
	}
	return a.String(i)
}

// Bool returns required bool argument
func (a Args) Bool(i int) (bool, error) {
	value, ok := a.At(i).(bool)
	if !ok {
		return false, InvalidArguments("argument %v: expected bool, but had %T", i, a.At(i))
	}
	return value, nil
}

// OptionalBool returns bool argument, missing or null yields false
func (a Args) OptionalBool(i int) (bool, error) {
	if a.At(i) == nil {
		return false, nil
	}
	return a.Bool(i)
}

// Int returns required integral number argument
func (a Args) Int(i int) (int, error) {
	value, err := shared.ValueOf(a.At(i))
	if err != nil || value.Kind() != shared.KindNumber || value.Number() != math.Trunc(value.Number()) {
		return 0, InvalidArguments("argument %v: expected integer, but had %v", i, a.At(i))
	}
	return int(value.Number()), nil
}

// List returns required list argument
func (a Args) List(i int) ([]interface{}, error) {
	value, ok := a.At(i).([]interface{})
	if !ok {
		return nil, InvalidArguments("argument %v: expected list, but had %T", i, a.At(i))
	}
	return value, nil
}

// OptionalList returns list argument, missing or null yields nil
func (a Args) OptionalList(i int) ([]interface{}, error) {
	if a.At(i) == nil {
		return nil, nil
	}
	return a.List(i)
}

// Map returns required map argument
func (a Args) Map(i int) (map[string]interface{}, error) {
	value, ok := a.At(i).(map[string]interface{})
	if !ok {
		return nil, InvalidArguments("argument %v: expected map, but had %T", i, a.At(i))
	}
	return value, nil
}

// Value returns argument as Value
func (a Args) Value(i int) (shared.Value, error) {
	value, err := shared.ValueOf(a.At(i))
	if err != nil {
		return shared.Null(), InvalidArguments("argument %v: %v", i, err)
	}
	return value, nil
}

// Boxed returns the single element of a one element list argument
func (a Args) Boxed(i int) (shared.Value, error) {
	list, err := a.List(i)
	if err != nil {
		return shared.Null(), err
	}
	if len(list) != 1 {
		return shared.Null(), InvalidArguments("argument %v: expected one element list, but had %v elements", i, len(list))
	}
	return Args(list).Value(0)
}
