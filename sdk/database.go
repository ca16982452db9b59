// Package sdk defines the realtime database and authentication surface bridged to the scripting layer.
package sdk

import (
	"context"

	"github.com/viant/firebridge/shared"
)

// Database represents a realtime database instance of one app
type Database interface {
	// URL returns database root URL
	URL() string
	Root() Reference
	Reference(path string) Reference
	// ReferenceFromURL returns reference for an absolute location URL within this database
	ReferenceFromURL(URL string) (Reference, error)
	GoOnline()
	GoOffline()
	// SetPersistenceEnabled has to be called before the database is used
	SetPersistenceEnabled(enabled bool) error
	Close() error
}

// Query represents an ordered, bounded view of a location
type Query interface {
	Ref() Reference
	Spec() QuerySpec
	OrderByChild(path string) Query
	OrderByKey() Query
	OrderByValue() Query
	OrderByPriority() Query
	StartAt(value shared.Value, key ...string) Query
	EndAt(value shared.Value, key ...string) Query
	EqualTo(value shared.Value, key ...string) Query
	LimitToFirst(limit int) Query
	LimitToLast(limit int) Query
	// Observe registers a listener, each call creates a distinct registration.
	// Handlers run on vendor goroutines, never from within Observe itself.
	Observe(kind EventKind, handler Handler) Registration
	Get(ctx context.Context) (*Snapshot, error)
}

// Reference represents a database location
type Reference interface {
	Query
	Key() string
	Path() string
	URL() string
	Child(path string) Reference
	// Parent returns nil for the root
	Parent() Reference
	Root() Reference
	// Push returns a child reference with a generated chronological key, no data is written
	Push() Reference
	Set(ctx context.Context, value shared.Value) error
	SetWithPriority(ctx context.Context, value, priority shared.Value) error
	SetPriority(ctx context.Context, priority shared.Value) error
	Update(ctx context.Context, values map[string]shared.Value) error
	Remove(ctx context.Context) error
}

// BoundOf builds a bound from query builder arguments
func BoundOf(value shared.Value, key ...string) Bound {
	bound := Bound{Value: value}
	if len(key) > 0 {
		bound.Key = key[0]
		bound.HasKey = true
	}
	return bound
}
