// Package sdktest provides in-memory implementations of the sdk surface.
package sdktest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

// Database is an in-memory realtime database, listeners are notified asynchronously after every write
type Database struct {
	url         string
	mu          sync.Mutex
	root        shared.Value
	seq         int
	listeners   map[int]*listener
	denied      []string
	online      bool
	used        bool
	persistence bool
	closed      bool
	pushIDs     *sdk.PushIDs
}

type listener struct {
	query   *query
	kind    sdk.EventKind
	handler sdk.Handler
	last    *sdk.Snapshot
	box     *mailbox
}

// NewDatabase creates database
func NewDatabase(URL string) *Database {
	return &Database{
		url:       strings.TrimRight(URL, "/"),
		listeners: map[int]*listener{},
		online:    true,
		pushIDs:   sdk.NewPushIDs(),
	}
}

func (d *Database) URL() string { return d.url }

func (d *Database) Root() sdk.Reference { return d.ref("") }

func (d *Database) Reference(path string) sdk.Reference { return d.ref(path) }

func (d *Database) ReferenceFromURL(URL string) (sdk.Reference, error) {
	path, err := sdk.LocationPath(d.url, URL)
	if err != nil {
		return nil, err
	}
	return d.ref(path), nil
}

func (d *Database) GoOnline() {
	d.mu.Lock()
	d.online = true
	d.mu.Unlock()
}

func (d *Database) GoOffline() {
	d.mu.Lock()
	d.online = false
	d.mu.Unlock()
}

// Online returns connectivity state
func (d *Database) Online() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.online
}

func (d *Database) SetPersistenceEnabled(enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.used {
		return fmt.Errorf("persistence has to be configured before the database is used")
	}
	d.persistence = enabled
	return nil
}

// PersistenceEnabled returns persistence flag
func (d *Database) PersistenceEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.persistence
}

func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for id, l := range d.listeners {
		l.box.close()
		delete(d.listeners, id)
	}
	return nil
}

// Deny makes path and its descendants fail with permission denied
func (d *Database) Deny(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denied = append(d.denied, shared.JoinPath(path))
}

// Data returns database content in export format
func (d *Database) Data() shared.Value {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.root
}

// Listeners returns number of live listeners
func (d *Database) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

func (d *Database) ref(path string) *reference {
	return &reference{query: &query{db: d, path: shared.JoinPath(path)}}
}

func (d *Database) isDenied(path string) bool {
	for _, denied := range d.denied {
		if denied == "" || path == denied || strings.HasPrefix(path, denied+"/") {
			return true
		}
	}
	return false
}

func (d *Database) permissionDenied(path string) error {
	return &sdk.DatabaseError{Code: sdk.DatabasePermissionDenied, Message: "permission denied", Details: "/" + path}
}

func (d *Database) snapshot(q *query) *sdk.Snapshot {
	node := shared.GetPath(d.root, q.path)
	node = q.spec.Filter(node)
	return sdk.NewSnapshot(d.ref(q.path), node, q.spec)
}

func (d *Database) write(path string, fn func(root shared.Value) shared.Value) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return sdk.NewDatabaseError(sdk.DatabaseDisconnected, "database was closed")
	}
	d.used = true
	if d.isDenied(path) {
		return d.permissionDenied(path)
	}
	d.root = fn(d.root)
	d.dispatch()
	return nil
}

// dispatch has to be called with lock held
func (d *Database) dispatch() {
	for _, l := range d.listeners {
		next := d.snapshot(l.query)
		events := sdk.Diff(l.kind, l.last, next)
		l.last = next
		for _, event := range events {
			event := event
			handler := l.handler
			l.box.push(func() { handler.OnEvent(event) })
		}
	}
}

func (d *Database) observe(q *query, kind sdk.EventKind, handler sdk.Handler) sdk.Registration {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.used = true
	box := newMailbox()
	var cancelErr error
	switch {
	case q.spec.Err() != nil:
		cancelErr = q.spec.Err()
	case d.isDenied(q.path):
		cancelErr = d.permissionDenied(q.path)
	case d.closed:
		cancelErr = sdk.NewDatabaseError(sdk.DatabaseDisconnected, "database was closed")
	}
	if cancelErr != nil {
		box.push(func() {
			if handler.OnCancel != nil {
				handler.OnCancel(cancelErr)
			}
			box.close()
		})
		return sdk.RegistrationFunc(box.close)
	}
	d.seq++
	id := d.seq
	l := &listener{query: q, kind: kind, handler: handler, box: box}
	d.listeners[id] = l
	l.last = d.snapshot(q)
	for _, event := range sdk.Diff(kind, nil, l.last) {
		event := event
		box.push(func() { handler.OnEvent(event) })
	}
	return sdk.RegistrationFunc(func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
		box.close()
	})
}

func (d *Database) get(q *query) (*sdk.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.used = true
	if err := q.spec.Err(); err != nil {
		return nil, err
	}
	if d.isDenied(q.path) {
		return nil, d.permissionDenied(q.path)
	}
	return d.snapshot(q), nil
}

type query struct {
	db   *Database
	path string
	spec sdk.QuerySpec
}

func (q *query) with(spec sdk.QuerySpec) sdk.Query {
	return &query{db: q.db, path: q.path, spec: spec}
}

func (q *query) Ref() sdk.Reference { return q.db.ref(q.path) }
func (q *query) Spec() sdk.QuerySpec { return q.spec }
func (q *query) OrderByChild(path string) sdk.Query { return q.with(q.spec.WithOrder(sdk.OrderByChild, path)) }
func (q *query) OrderByKey() sdk.Query { return q.with(q.spec.WithOrder(sdk.OrderByKey, "")) }
func (q *query) OrderByValue() sdk.Query { return q.with(q.spec.WithOrder(sdk.OrderByValue, "")) }
func (q *query) OrderByPriority() sdk.Query { return q.with(q.spec.WithOrder(sdk.OrderByPriority, "")) }

func (q *query) StartAt(value shared.Value, key ...string) sdk.Query {
	return q.with(q.spec.WithStart(sdk.BoundOf(value, key...)))
}

func (q *query) EndAt(value shared.Value, key ...string) sdk.Query {
	return q.with(q.spec.WithEnd(sdk.BoundOf(value, key...)))
}

func (q *query) EqualTo(value shared.Value, key ...string) sdk.Query {
	return q.with(q.spec.WithEqual(sdk.BoundOf(value, key...)))
}

func (q *query) LimitToFirst(limit int) sdk.Query { return q.with(q.spec.WithLimit(limit, false)) }
func (q *query) LimitToLast(limit int) sdk.Query { return q.with(q.spec.WithLimit(limit, true)) }

func (q *query) Observe(kind sdk.EventKind, handler sdk.Handler) sdk.Registration {
	return q.db.observe(q, kind, handler)
}

func (q *query) Get(ctx context.Context) (*sdk.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return q.db.get(q)
}

type reference struct {
	*query
}

func (r *reference) Key() string {
	_, key, _ := shared.ParentPath(r.path)
	return key
}

func (r *reference) Path() string { return r.path }

func (r *reference) URL() string { return sdk.LocationURL(r.db.url, r.path) }

func (r *reference) Child(path string) sdk.Reference {
	return r.db.ref(shared.JoinPath(r.path, path))
}

func (r *reference) Parent() sdk.Reference {
	parent, _, ok := shared.ParentPath(r.path)
	if !ok {
		return nil
	}
	return r.db.ref(parent)
}

func (r *reference) Root() sdk.Reference { return r.db.ref("") }

func (r *reference) Push() sdk.Reference {
	return r.Child(r.db.pushIDs.Next())
}

func (r *reference) Set(ctx context.Context, value shared.Value) error {
	return r.db.write(r.path, func(root shared.Value) shared.Value {
		return shared.SetPath(root, r.path, value)
	})
}

func (r *reference) SetWithPriority(ctx context.Context, value, priority shared.Value) error {
	return r.db.write(r.path, func(root shared.Value) shared.Value {
		return shared.SetPath(root, r.path, sdk.WithPriority(value, priority))
	})
}

func (r *reference) SetPriority(ctx context.Context, priority shared.Value) error {
	return r.db.write(r.path, func(root shared.Value) shared.Value {
		node := shared.GetPath(root, r.path)
		if node.IsNull() {
			return root
		}
		return shared.SetPath(root, r.path, sdk.WithPriority(sdk.WithoutPriority(node), priority))
	})
}

func (r *reference) Update(ctx context.Context, values map[string]shared.Value) error {
	return r.db.write(r.path, func(root shared.Value) shared.Value {
		for key, value := range values {
			root = shared.SetPath(root, shared.JoinPath(r.path, key), value)
		}
		return root
	})
}

func (r *reference) Remove(ctx context.Context) error {
	return r.db.write(r.path, func(root shared.Value) shared.Value {
		return shared.SetPath(root, r.path, shared.Null())
	})
}
