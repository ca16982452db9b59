package sdk

import (
	"github.com/viant/firebridge/shared"
)

// Snapshot represents an immutable view of a location at a point in time
type Snapshot struct {
	ref  Reference
	node shared.Value
	spec QuerySpec
}

// NewSnapshot creates snapshot, node is held in export format and children follow spec order
func NewSnapshot(ref Reference, node shared.Value, spec QuerySpec) *Snapshot {
	return &Snapshot{ref: ref, node: node, spec: spec}
}

// Ref returns snapshot location
func (s *Snapshot) Ref() Reference {
	return s.ref
}

// Key returns location key, empty for the root
func (s *Snapshot) Key() string {
	return s.ref.Key()
}

// Exists returns true if snapshot holds data
func (s *Snapshot) Exists() bool {
	return !s.Value().IsNull()
}

// Value returns data without priorities
func (s *Snapshot) Value() shared.Value {
	return PlainValue(s.node)
}

// ExportValue returns data with priorities
func (s *Snapshot) ExportValue() shared.Value {
	return s.node
}

// Priority returns location priority
func (s *Snapshot) Priority() shared.Value {
	return PriorityOf(s.node)
}

// Child returns snapshot of a relative path
func (s *Snapshot) Child(path string) *Snapshot {
	return NewSnapshot(s.ref.Child(path), shared.GetPath(s.node, path), QuerySpec{})
}

// HasChild returns true if relative path holds data
func (s *Snapshot) HasChild(path string) bool {
	return s.Child(path).Exists()
}

// ChildrenCount returns number of direct children
func (s *Snapshot) ChildrenCount() int {
	return len(ChildEntries(s.node))
}

// HasChildren returns true if snapshot has any children
func (s *Snapshot) HasChildren() bool {
	return s.ChildrenCount() > 0
}

// Children returns direct children in query order
func (s *Snapshot) Children() []*Snapshot {
	entries := ChildEntries(s.node)
	s.spec.Sort(entries)
	result := make([]*Snapshot, len(entries))
	for i, entry := range entries {
		result[i] = NewSnapshot(s.ref.Child(entry.Key), entry.Node, QuerySpec{})
	}
	return result
}
