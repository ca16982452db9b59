package sdk

import "github.com/viant/firebridge/shared"

// Diff returns events of the requested kind between two snapshots of the same query, prev is nil for the initial load
func Diff(kind EventKind, prev, next *Snapshot) []Event {
	if kind == EventValue {
		if prev != nil && prev.ExportValue().Equal(next.ExportValue()) {
			return nil
		}
		return []Event{{Kind: EventValue, Snapshot: next}}
	}
	var prevChildren []*Snapshot
	if prev != nil {
		prevChildren = prev.Children()
	}
	nextChildren := next.Children()
	prevIndex := indexByKey(prevChildren)
	nextIndex := indexByKey(nextChildren)

	var events []Event
	switch kind {
	case EventChildRemoved:
		for _, child := range prevChildren {
			if _, ok := nextIndex[child.Key()]; !ok {
				events = append(events, Event{Kind: kind, Snapshot: child})
			}
		}
	case EventChildAdded:
		for i, child := range nextChildren {
			if _, ok := prevIndex[child.Key()]; !ok {
				events = append(events, Event{Kind: kind, Snapshot: child, PrevKey: prevKey(nextChildren, i)})
			}
		}
	case EventChildChanged:
		for i, child := range nextChildren {
			j, ok := prevIndex[child.Key()]
			if ok && !prevChildren[j].ExportValue().Equal(child.ExportValue()) {
				events = append(events, Event{Kind: kind, Snapshot: child, PrevKey: prevKey(nextChildren, i)})
			}
		}
	case EventChildMoved:
		prevCommon := common(prevChildren, nextIndex)
		nextCommon := common(nextChildren, prevIndex)
		prevPredecessor := map[string]string{}
		for i, child := range prevCommon {
			prevPredecessor[child.Key()] = prevKey(prevCommon, i)
		}
		for i, child := range nextCommon {
			changed := !prevChildren[prevIndex[child.Key()]].ExportValue().Equal(child.ExportValue())
			if changed && prevPredecessor[child.Key()] != prevKey(nextCommon, i) {
				events = append(events, Event{Kind: kind, Snapshot: child, PrevKey: prevKey(nextChildren, nextIndex[child.Key()])})
			}
		}
	}
	return events
}

// Empty returns a snapshot without data
func Empty(ref Reference, spec QuerySpec) *Snapshot {
	return NewSnapshot(ref, shared.Null(), spec)
}

func indexByKey(children []*Snapshot) map[string]int {
	result := make(map[string]int, len(children))
	for i, child := range children {
		result[child.Key()] = i
	}
	return result
}

func common(children []*Snapshot, other map[string]int) []*Snapshot {
	var result []*Snapshot
	for _, child := range children {
		if _, ok := other[child.Key()]; ok {
			result = append(result, child)
		}
	}
	return result
}

func prevKey(children []*Snapshot, index int) string {
	if index <= 0 {
		return ""
	}
	return children[index-1].Key()
}
