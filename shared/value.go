package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// ErrUnsupportedValue is returned when a value (at any depth) has no Value representation.
var ErrUnsupportedValue = errors.New("shared: unsupported value")

// Kind represents a value kind
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged union over the values exchanged between the host and the database
type Value struct {
	kind   Kind
	flag   bool
	number float64
	text   string
	list   []Value
	fields map[string]Value
}

// Null returns null value
func Null() Value { return Value{} }

// NewBool returns bool value
func NewBool(v bool) Value { return Value{kind: KindBool, flag: v} }

// NewNumber returns number value
func NewNumber(v float64) Value { return Value{kind: KindNumber, number: v} }

// NewString returns string value
func NewString(v string) Value { return Value{kind: KindString, text: v} }

// NewList returns list value
func NewList(items ...Value) Value {
	return Value{kind: KindList, list: append([]Value{}, items...)}
}

// NewMap returns map value
func NewMap(fields map[string]Value) Value {
	result := Value{kind: KindMap, fields: make(map[string]Value, len(fields))}
	for k, v := range fields {
		result.fields[k] = v
	}
	return result
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Bool() bool { return v.flag }
func (v Value) Number() float64 { return v.number }
func (v Value) Text() string { return v.text }
func (v Value) Items() []Value { return v.list }
func (v Value) Fields() map[string]Value { return v.fields }

// IsComposite returns true for list and map values
func (v Value) IsComposite() bool {
	return v.kind == KindList || v.kind == KindMap
}

// Len returns number of list items or map fields
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.fields)
	}
	return 0
}

// Keys returns sorted map keys
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Field returns map field
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMap {
		return Null(), false
	}
	ret, ok := v.fields[key]
	return ret, ok
}

// Equal returns true if both values are deeply equal
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.flag == other.flag
	case KindNumber:
		return v.number == other.number
	case KindString:
		return v.text == other.text
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for k, item := range v.fields {
			candidate, ok := other.fields[k]
			if !ok || !item.Equal(candidate) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface returns plain Go representation: nil, bool, float64, string, []interface{} or map[string]interface{}
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.flag
	case KindNumber:
		return v.number
	case KindString:
		return v.text
	case KindList:
		result := make([]interface{}, len(v.list))
		for i, item := range v.list {
			result[i] = item.Interface()
		}
		return result
	case KindMap:
		result := make(map[string]interface{}, len(v.fields))
		for k, item := range v.fields {
			result[k] = item.Interface()
		}
		return result
	}
	return nil
}

// MarshalJSON marshals value, map keys are emitted in sorted order
func (v Value) MarshalJSON() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := v.encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.flag))
	case KindNumber:
		if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
			return fmt.Errorf("%w: non finite number", ErrUnsupportedValue)
		}
		buf.WriteString(strconv.FormatFloat(v.number, 'g', -1, 64))
	case KindString:
		data, err := json.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(k)
			buf.Write(key)
			buf.WriteByte(':')
			if err := v.fields[k].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON unmarshal JSON into value
func (v *Value) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	decoded, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// ValueOf converts a host or database value into Value, integers are widened to float64
func ValueOf(source interface{}) (Value, error) {
	return valueOf(source, "")
}

// MustValueOf converts value or panics, intended for literals
func MustValueOf(source interface{}) Value {
	ret, err := ValueOf(source)
	if err != nil {
		panic(err)
	}
	return ret
}

func valueOf(source interface{}, path string) (Value, error) {
	switch actual := source.(type) {
	case nil:
		return Null(), nil
	case Value:
		return actual, nil
	case *Value:
		if actual == nil {
			return Null(), nil
		}
		return *actual, nil
	case bool:
		return NewBool(actual), nil
	case string:
		return NewString(actual), nil
	case float64:
		return NewNumber(actual), nil
	case float32:
		return NewNumber(float64(actual)), nil
	case int:
		return NewNumber(float64(actual)), nil
	case int8:
		return NewNumber(float64(actual)), nil
	case int16:
		return NewNumber(float64(actual)), nil
	case int32:
		return NewNumber(float64(actual)), nil
	case int64:
		return NewNumber(float64(actual)), nil
	case uint:
		return NewNumber(float64(actual)), nil
	case uint8:
		return NewNumber(float64(actual)), nil
	case uint16:
		return NewNumber(float64(actual)), nil
	case uint32:
		return NewNumber(float64(actual)), nil
	case uint64:
		return NewNumber(float64(actual)), nil
	case json.Number:
		f, err := actual.Float64()
		if err != nil {
			return Null(), fmt.Errorf("%w: %v at %q", ErrUnsupportedValue, actual, path)
		}
		return NewNumber(f), nil
	case []interface{}:
		items := make([]Value, len(actual))
		for i, item := range actual {
			converted, err := valueOf(item, path+"/"+strconv.Itoa(i))
			if err != nil {
				return Null(), err
			}
			items[i] = converted
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]interface{}:
		fields := make(map[string]Value, len(actual))
		for k, item := range actual {
			converted, err := valueOf(item, path+"/"+k)
			if err != nil {
				return Null(), err
			}
			fields[k] = converted
		}
		return Value{kind: KindMap, fields: fields}, nil
	}
	return reflectValueOf(reflect.ValueOf(source), path)
}

func reflectValueOf(rValue reflect.Value, path string) (Value, error) {
	switch rValue.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rValue.IsNil() {
			return Null(), nil
		}
		return valueOf(rValue.Elem().Interface(), path)
	case reflect.Slice, reflect.Array:
		items := make([]Value, rValue.Len())
		for i := 0; i < rValue.Len(); i++ {
			converted, err := valueOf(rValue.Index(i).Interface(), path+"/"+strconv.Itoa(i))
			if err != nil {
				return Null(), err
			}
			items[i] = converted
		}
		return Value{kind: KindList, list: items}, nil
	case reflect.Map:
		if rValue.Type().Key().Kind() != reflect.String {
			break
		}
		fields := make(map[string]Value, rValue.Len())
		iter := rValue.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			converted, err := valueOf(iter.Value().Interface(), path+"/"+key)
			if err != nil {
				return Null(), err
			}
			fields[key] = converted
		}
		return Value{kind: KindMap, fields: fields}, nil
	}
	if !rValue.IsValid() {
		return Null(), nil
	}
	if path == "" {
		path = "/"
	}
	return Null(), fmt.Errorf("%w: %s at %q", ErrUnsupportedValue, rValue.Type(), path)
}
