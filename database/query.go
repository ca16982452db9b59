package database

import (
	"math"

	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

// Op represents a single query builder operation
type Op interface {
	Name() string
	apply(query sdk.Query) sdk.Query
}

type (
	OrderByChild struct {
		Path string
	}
	OrderByKey      struct{}
	OrderByValue    struct{}
	OrderByPriority struct{}

	// Bound represents start, end or equality bound operation argument
	Bound struct {
		Value shared.Value
		Key   *string
	}
	StartAt struct{ Bound }
	EndAt   struct{ Bound }
	EqualTo struct{ Bound }

	LimitToFirst struct {
		Limit int
	}
	LimitToLast struct {
		Limit int
	}
)

func (o OrderByChild) Name() string    { return "orderByChild" }
func (o OrderByKey) Name() string      { return "orderByKey" }
func (o OrderByValue) Name() string    { return "orderByValue" }
func (o OrderByPriority) Name() string { return "orderByPriority" }
func (o StartAt) Name() string         { return "startAt" }
func (o EndAt) Name() string           { return "endAt" }
func (o EqualTo) Name() string         { return "equalTo" }
func (o LimitToFirst) Name() string    { return "limitToFirst" }
func (o LimitToLast) Name() string     { return "limitToLast" }

func (o OrderByChild) apply(query sdk.Query) sdk.Query    { return query.OrderByChild(o.Path) }
func (o OrderByKey) apply(query sdk.Query) sdk.Query      { return query.OrderByKey() }
func (o OrderByValue) apply(query sdk.Query) sdk.Query    { return query.OrderByValue() }
func (o OrderByPriority) apply(query sdk.Query) sdk.Query { return query.OrderByPriority() }
func (o StartAt) apply(query sdk.Query) sdk.Query         { return query.StartAt(o.Value, o.keys()...) }
func (o EndAt) apply(query sdk.Query) sdk.Query           { return query.EndAt(o.Value, o.keys()...) }
func (o EqualTo) apply(query sdk.Query) sdk.Query         { return query.EqualTo(o.Value, o.keys()...) }
func (o LimitToFirst) apply(query sdk.Query) sdk.Query    { return query.LimitToFirst(o.Limit) }
func (o LimitToLast) apply(query sdk.Query) sdk.Query     { return query.LimitToLast(o.Limit) }

func (b Bound) keys() []string {
	if b.Key == nil {
		return nil
	}
	return []string{*b.Key}
}

type decoder func(name string, args []interface{}) (Op, error)

var decoders = map[string]decoder{
	"orderByChild": func(name string, args []interface{}) (Op, error) {
		if err := expectArity(name, args, 1, 1); err != nil {
			return nil, err
		}
		path, ok := args[0].(string)
		if !ok || path == "" {
			return nil, bridge.InvalidQueryParameters("%v: expected non empty string path, but had %v", name, args[0])
		}
		return OrderByChild{Path: path}, nil
	},
	"orderByKey": func(name string, args []interface{}) (Op, error) {
		return OrderByKey{}, expectArity(name, args, 0, 0)
	},
	"orderByValue": func(name string, args []interface{}) (Op, error) {
		return OrderByValue{}, expectArity(name, args, 0, 0)
	},
	"orderByPriority": func(name string, args []interface{}) (Op, error) {
		return OrderByPriority{}, expectArity(name, args, 0, 0)
	},
	"startAt": func(name string, args []interface{}) (Op, error) {
		bound, err := decodeBound(name, args)
		return StartAt{bound}, err
	},
	"endAt": func(name string, args []interface{}) (Op, error) {
		bound, err := decodeBound(name, args)
		return EndAt{bound}, err
	},
	"equalTo": func(name string, args []interface{}) (Op, error) {
		bound, err := decodeBound(name, args)
		return EqualTo{bound}, err
	},
	"limitToFirst": func(name string, args []interface{}) (Op, error) {
		limit, err := decodeLimit(name, args)
		return LimitToFirst{Limit: limit}, err
	},
	"limitToLast": func(name string, args []interface{}) (Op, error) {
		limit, err := decodeLimit(name, args)
		return LimitToLast{Limit: limit}, err
	},
}

// DecodeQuery decodes query descriptor: a list of entries, each a list holding operation name followed by its arguments
func DecodeQuery(descriptor []interface{}) ([]Op, error) {
	var result []Op
	for i, raw := range descriptor {
		entry, ok := raw.([]interface{})
		if !ok || len(entry) == 0 {
			return nil, bridge.InvalidQueryParameters("query entry %v: expected [operation, ...arguments], but had %v", i, raw)
		}
		name, ok := entry[0].(string)
		if !ok {
			return nil, bridge.InvalidQuery(stringify(entry[0]))
		}
		decode, ok := decoders[name]
		if !ok {
			return nil, bridge.InvalidQuery(name)
		}
		op, err := decode(name, entry[1:])
		if err != nil {
			return nil, err
		}
		result = append(result, op)
	}
	return result, nil
}

// Apply applies operations to reference in order
func Apply(ref sdk.Reference, ops []Op) (sdk.Query, error) {
	var query sdk.Query = ref
	for _, op := range ops {
		query = op.apply(query)
	}
	if err := query.Spec().Err(); err != nil {
		return nil, err
	}
	return query, nil
}

// Encode returns descriptor entry of operation
func Encode(op Op) []interface{} {
	result := []interface{}{op.Name()}
	switch actual := op.(type) {
	case OrderByChild:
		result = append(result, actual.Path)
	case StartAt:
		result = append(result, actual.encode()...)
	case EndAt:
		result = append(result, actual.encode()...)
	case EqualTo:
		result = append(result, actual.encode()...)
	case LimitToFirst:
		result = append(result, actual.Limit)
	case LimitToLast:
		result = append(result, actual.Limit)
	}
	return result
}

func (b Bound) encode() []interface{} {
	result := []interface{}{b.Value.Interface()}
	if b.Key != nil {
		result = append(result, *b.Key)
	}
	return result
}

func expectArity(name string, args []interface{}, min, max int) error {
	if len(args) < min || len(args) > max {
		if min == max {
			return bridge.InvalidQueryParameters("%v: expected %v argument(s), but had %v", name, min, len(args))
		}
		return bridge.InvalidQueryParameters("%v: expected %v to %v arguments, but had %v", name, min, max, len(args))
	}
	return nil
}

func decodeBound(name string, args []interface{}) (Bound, error) {
	if err := expectArity(name, args, 1, 2); err != nil {
		return Bound{}, err
	}
	value, err := shared.ValueOf(args[0])
	if err != nil || value.IsComposite() {
		return Bound{}, bridge.InvalidQueryParameters("%v: expected boolean, number, string or null value, but had %v", name, args[0])
	}
	ret := Bound{Value: value}
	if len(args) == 2 && args[1] != nil {
		key, ok := args[1].(string)
		if !ok {
			return Bound{}, bridge.InvalidQueryParameters("%v: expected string key, but had %v", name, args[1])
		}
		ret.Key = &key
	}
	return ret, nil
}

func decodeLimit(name string, args []interface{}) (int, error) {
	if err := expectArity(name, args, 1, 1); err != nil {
		return 0, err
	}
	value, err := shared.ValueOf(args[0])
	if err != nil || value.Kind() != shared.KindNumber {
		return 0, bridge.InvalidQueryParameters("%v: expected number, but had %v", name, args[0])
	}
	limit := value.Number()
	if limit != math.Trunc(limit) || limit < 1 || limit > math.MaxInt32 {
		return 0, bridge.InvalidQueryParameters("%v: expected positive integer, but had %v", name, args[0])
	}
	return int(limit), nil
}

func stringify(value interface{}) string {
	if text, ok := value.(string); ok {
		return text
	}
	encoded, err := shared.ValueOf(value)
	if err != nil {
		return "?"
	}
	data, err := encoded.MarshalJSON()
	if err != nil {
		return "?"
	}
	return string(data)
}
