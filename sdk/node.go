package sdk

import (
	"sort"
	"strconv"

	"github.com/viant/firebridge/shared"
)

const (
	valueKey    = ".value"
	priorityKey = ".priority"
)

// Nodes are held in export format: a primitive with priority is {".value": v, ".priority": p},
// an object with priority carries a ".priority" field.

// WithPriority returns node carrying priority
func WithPriority(value, priority shared.Value) shared.Value {
	if priority.IsNull() || value.IsNull() {
		return value
	}
	if value.Kind() == shared.KindMap {
		fields := value.Fields()
		updated := make(map[string]shared.Value, len(fields)+1)
		for k, v := range fields {
			updated[k] = v
		}
		updated[priorityKey] = priority
		return shared.NewMap(updated)
	}
	return shared.NewMap(map[string]shared.Value{valueKey: value, priorityKey: priority})
}

// PriorityOf returns node priority
func PriorityOf(node shared.Value) shared.Value {
	if priority, ok := node.Field(priorityKey); ok {
		return priority
	}
	return shared.Null()
}

// PlainValue strips priorities from node
func PlainValue(node shared.Value) shared.Value {
	switch node.Kind() {
	case shared.KindMap:
		if value, ok := node.Field(valueKey); ok {
			return value
		}
		fields := map[string]shared.Value{}
		for k, v := range node.Fields() {
			if k == priorityKey {
				continue
			}
			plain := PlainValue(v)
			if plain.IsNull() {
				continue
			}
			fields[k] = plain
		}
		if len(fields) == 0 {
			return shared.Null()
		}
		return shared.NewMap(fields)
	case shared.KindList:
		items := node.Items()
		plain := make([]shared.Value, len(items))
		for i, item := range items {
			plain[i] = PlainValue(item)
		}
		return shared.NewList(plain...)
	}
	return node
}

// Entry represents a keyed child node
type Entry struct {
	Key  string
	Node shared.Value
}

// ChildEntries returns node children sorted by key
func ChildEntries(node shared.Value) []Entry {
	var result []Entry
	switch node.Kind() {
	case shared.KindMap:
		if _, ok := node.Field(valueKey); ok {
			return nil
		}
		for k, v := range node.Fields() {
			if k == priorityKey || v.IsNull() {
				continue
			}
			result = append(result, Entry{Key: k, Node: v})
		}
	case shared.KindList:
		for i, v := range node.Items() {
			if v.IsNull() {
				continue
			}
			result = append(result, Entry{Key: strconv.Itoa(i), Node: v})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return shared.CompareKeys(result[i].Key, result[j].Key) < 0
	})
	return result
}

// FromEntries builds node from entries, priority is kept when not null
func FromEntries(entries []Entry, priority shared.Value) shared.Value {
	if len(entries) == 0 {
		return shared.Null()
	}
	fields := make(map[string]shared.Value, len(entries)+1)
	for _, entry := range entries {
		fields[entry.Key] = entry.Node
	}
	if !priority.IsNull() {
		fields[priorityKey] = priority
	}
	return shared.NewMap(fields)
}

// WithoutPriority removes top level priority from node
func WithoutPriority(node shared.Value) shared.Value {
	if node.Kind() != shared.KindMap {
		return node
	}
	if value, ok := node.Field(valueKey); ok {
		return value
	}
	if _, ok := node.Field(priorityKey); !ok {
		return node
	}
	fields := map[string]shared.Value{}
	for k, v := range node.Fields() {
		if k != priorityKey {
			fields[k] = v
		}
	}
	return shared.NewMap(fields)
}
