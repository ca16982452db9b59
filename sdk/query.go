package sdk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/viant/firebridge/shared"
)

// OrderBy represents query ordering
type OrderBy int

const (
	OrderByDefault OrderBy = iota
	OrderByKey
	OrderByValue
	OrderByChild
	OrderByPriority
)

func (o OrderBy) String() string {
	switch o {
	case OrderByKey:
		return "orderByKey"
	case OrderByValue:
		return "orderByValue"
	case OrderByChild:
		return "orderByChild"
	case OrderByPriority:
		return "orderByPriority"
	}
	return "default"
}

// Bound represents query start or end bound, Key narrows entries sharing the bound value
type Bound struct {
	Value  shared.Value
	Key    string
	HasKey bool
}

// QuerySpec represents query constraints, builder methods return modified copies and record the first violation
type QuerySpec struct {
	Order     OrderBy
	ChildPath string
	Start     *Bound
	End       *Bound
	Limit     int
	FromLast  bool
	err       error
}

// Err returns construction error
func (s QuerySpec) Err() error {
	return s.err
}

// IsDefault returns true if spec has no constraints
func (s QuerySpec) IsDefault() bool {
	return s.Order == OrderByDefault && s.Start == nil && s.End == nil && s.Limit == 0
}

// HasLimit returns true if limit was set
func (s QuerySpec) HasLimit() bool {
	return s.Limit > 0
}

// IsEqual returns true if start and end bounds were set by equalTo
func (s QuerySpec) IsEqual() bool {
	return s.Start != nil && s.End != nil && s.Start == s.End
}

// Filtered returns true if the spec constrains which children are returned
func (s QuerySpec) Filtered() bool {
	return s.Start != nil || s.End != nil || s.Limit > 0
}

// Invalid returns spec recording a violation detected by an adapter, the first violation wins
func (s QuerySpec) Invalid(format string, args ...interface{}) QuerySpec {
	return s.fail(format, args...)
}

func (s QuerySpec) fail(format string, args ...interface{}) QuerySpec {
	if s.err == nil {
		s.err = &QueryError{Message: fmt.Sprintf(format, args...)}
	}
	return s
}

// WithOrder sets ordering
func (s QuerySpec) WithOrder(order OrderBy, childPath string) QuerySpec {
	if s.Order != OrderByDefault {
		return s.fail("%v: order was already set to %v", order, s.Order)
	}
	if order == OrderByChild {
		if childPath == "" || strings.ContainsAny(childPath, ".#$[]") {
			return s.fail("orderByChild: invalid path %q", childPath)
		}
		s.ChildPath = shared.JoinPath(childPath)
	}
	s.Order = order
	return s.check()
}

// WithStart sets start bound
func (s QuerySpec) WithStart(bound Bound) QuerySpec {
	if s.Start != nil {
		return s.fail("startAt: start was already set")
	}
	s.Start = &bound
	return s.check()
}

// WithEnd sets end bound
func (s QuerySpec) WithEnd(bound Bound) QuerySpec {
	if s.End != nil {
		return s.fail("endAt: end was already set")
	}
	s.End = &bound
	return s.check()
}

// WithEqual sets both bounds
func (s QuerySpec) WithEqual(bound Bound) QuerySpec {
	if s.Start != nil || s.End != nil {
		return s.fail("equalTo: start or end was already set")
	}
	s.Start = &bound
	s.End = s.Start
	return s.check()
}

// WithLimit sets limit
func (s QuerySpec) WithLimit(limit int, fromLast bool) QuerySpec {
	name := "limitToFirst"
	if fromLast {
		name = "limitToLast"
	}
	if s.Limit > 0 {
		return s.fail("%v: limit was already set", name)
	}
	if limit <= 0 {
		return s.fail("%v: limit must be positive, but had %v", name, limit)
	}
	s.Limit = limit
	s.FromLast = fromLast
	return s.check()
}

func (s QuerySpec) check() QuerySpec {
	for _, bound := range []*Bound{s.Start, s.End} {
		if bound == nil {
			continue
		}
		if bound.Value.IsComposite() {
			return s.fail("bound value must be a primitive, but had %v", bound.Value.Kind())
		}
		switch s.Order {
		case OrderByKey:
			if bound.Value.Kind() != shared.KindString {
				return s.fail("orderByKey: bound value must be a string, but had %v", bound.Value.Kind())
			}
			if bound.HasKey {
				return s.fail("orderByKey: bound key is not allowed")
			}
		case OrderByPriority:
			if bound.Value.Kind() == shared.KindBool {
				return s.fail("orderByPriority: bound value must be null, number or string")
			}
		}
	}
	return s
}

func (s QuerySpec) sortValue(entry Entry) shared.Value {
	switch s.Order {
	case OrderByValue:
		return PlainValue(entry.Node)
	case OrderByChild:
		return PlainValue(shared.GetPath(entry.Node, s.ChildPath))
	case OrderByPriority:
		return PriorityOf(entry.Node)
	case OrderByKey:
		return shared.NewString(entry.Key)
	}
	return shared.Null()
}

// compare orders entries according to the spec, ties are broken by key
func (s QuerySpec) compare(a, b Entry) int {
	if s.Order == OrderByKey || s.Order == OrderByDefault {
		return shared.CompareKeys(a.Key, b.Key)
	}
	if ret := shared.Compare(s.sortValue(a), s.sortValue(b)); ret != 0 {
		return ret
	}
	return shared.CompareKeys(a.Key, b.Key)
}

func (s QuerySpec) compareBound(entry Entry, bound *Bound) int {
	if s.Order == OrderByKey || s.Order == OrderByDefault {
		return shared.CompareKeys(entry.Key, bound.Value.Text())
	}
	if ret := shared.Compare(s.sortValue(entry), bound.Value); ret != 0 {
		return ret
	}
	if !bound.HasKey {
		return 0
	}
	return shared.CompareKeys(entry.Key, bound.Key)
}

// Sort sorts entries in query order
func (s QuerySpec) Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return s.compare(entries[i], entries[j]) < 0
	})
}

// Apply returns entries of node matching the spec, in query order
func (s QuerySpec) Apply(node shared.Value) []Entry {
	entries := ChildEntries(node)
	s.Sort(entries)
	if !s.Filtered() {
		return entries
	}
	var result []Entry
	for _, entry := range entries {
		if s.Start != nil && s.compareBound(entry, s.Start) < 0 {
			continue
		}
		if s.End != nil && s.compareBound(entry, s.End) > 0 {
			continue
		}
		result = append(result, entry)
	}
	if s.Limit > 0 && len(result) > s.Limit {
		if s.FromLast {
			result = result[len(result)-s.Limit:]
		} else {
			result = result[:s.Limit]
		}
	}
	return result
}

// Filter returns node restricted to the children matching the spec
func (s QuerySpec) Filter(node shared.Value) shared.Value {
	if !s.Filtered() {
		return node
	}
	return FromEntries(s.Apply(node), shared.Null())
}
