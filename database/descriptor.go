package database

import (
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

// Ref describes a reference to the scripting layer, Key is null for the root
type Ref struct {
	Key         interface{} `json:"key"`
	LocationURL string      `json:"locationUrl"`
}

// Snapshot describes a cached snapshot
type Snapshot struct {
	Ref           *Ref        `json:"ref"`
	ChildrenCount int         `json:"childrenCount"`
	HasChildren   bool        `json:"hasChildren"`
	Exists        bool        `json:"exists"`
	UUID          string      `json:"uuid"`
	Priority      interface{} `json:"priority"`
}

// Notification represents payload of a subscription event
type Notification struct {
	Handle           string             `json:"handle"`
	EventType        string             `json:"eventType"`
	Snapshot         *Snapshot          `json:"snapshot,omitempty"`
	PreviousChildKey interface{}        `json:"previousChildKey,omitempty"`
	Error            *NotificationError `json:"error,omitempty"`
}

// NotificationError represents a listener cancellation
type NotificationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Compiled represents SQL compiled into a query descriptor
type Compiled struct {
	Path   string        `json:"path"`
	Query  []interface{} `json:"query"`
	DryRun bool          `json:"dryRun"`
}

func describeRef(ref sdk.Reference) *Ref {
	if ref == nil {
		return nil
	}
	ret := &Ref{LocationURL: ref.URL()}
	if ref.Parent() != nil {
		ret.Key = ref.Key()
	}
	return ret
}

func describeSnapshot(snapshot *sdk.Snapshot, handle string) *Snapshot {
	return &Snapshot{
		Ref:           describeRef(snapshot.Ref()),
		ChildrenCount: snapshot.ChildrenCount(),
		HasChildren:   snapshot.HasChildren(),
		Exists:        snapshot.Exists(),
		UUID:          handle,
		Priority:      describePriority(snapshot.Priority()),
	}
}

func describePriority(priority shared.Value) interface{} {
	switch priority.Kind() {
	case shared.KindString, shared.KindNumber:
		return priority.Interface()
	}
	return nil
}
