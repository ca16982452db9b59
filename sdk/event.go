package sdk

import "fmt"

// EventKind represents database event kind
type EventKind string

const (
	EventValue        EventKind = "value"
	EventChildAdded   EventKind = "child_added"
	EventChildChanged EventKind = "child_changed"
	EventChildRemoved EventKind = "child_removed"
	EventChildMoved   EventKind = "child_moved"
)

// ParseEventKind parses event kind
func ParseEventKind(name string) (EventKind, error) {
	switch kind := EventKind(name); kind {
	case EventValue, EventChildAdded, EventChildChanged, EventChildRemoved, EventChildMoved:
		return kind, nil
	}
	return "", fmt.Errorf("unknown event type %v", name)
}

// IsChild returns true for child level events
func (k EventKind) IsChild() bool {
	return k != EventValue
}

// Event represents a database notification
type Event struct {
	Kind     EventKind
	Snapshot *Snapshot
	PrevKey  string
}

// Handler receives notifications for a single registration, OnCancel is called at most once and ends the registration
type Handler struct {
	OnEvent  func(event Event)
	OnCancel func(err error)
}

// Registration represents a live listener
type Registration interface {
	Remove()
}

// RegistrationFunc adapts a function to Registration
type RegistrationFunc func()

// Remove removes registration
func (f RegistrationFunc) Remove() {
	f()
}
