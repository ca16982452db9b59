package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
	"google.golang.org/api/option"
)

type events struct {
	mu        sync.Mutex
	items     []sdk.Event
	cancelled error
}

func (e *events) handler() sdk.Handler {
	return sdk.Handler{
		OnEvent: func(event sdk.Event) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.items = append(e.items, event)
		},
		OnCancel: func(err error) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.cancelled = err
		},
	}
}

func (e *events) len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

func (e *events) last() sdk.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.items[len(e.items)-1]
}

func (e *events) err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelled
}

func connect(t *testing.T) (*Database, *restServer) {
	server := newRESTServer()
	t.Cleanup(server.Close)
	cfg := &shared.Config{DatabaseURL: "https://demo.firebaseio.com", ProjectID: "demo", PollInterval: 20 * time.Millisecond}
	cfg.Init()
	db, err := Connect(context.Background(), cfg, option.WithHTTPClient(server.client()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, server
}

func TestDatabase_Writes(t *testing.T) {
	ctx := context.Background()
	db, server := connect(t)
	users := db.Reference("users")

	require.NoError(t, users.Child("ann").Set(ctx, shared.MustValueOf(map[string]interface{}{"age": 30})))
	assert.Equal(t, shared.MustValueOf(map[string]interface{}{"age": 30}), server.get("users/ann"))

	require.NoError(t, users.Child("ann").Update(ctx, map[string]shared.Value{"name": shared.NewString("Ann")}))
	assert.Equal(t, shared.NewString("Ann"), server.get("users/ann/name"))

	require.NoError(t, users.Child("ann").SetPriority(ctx, shared.NewNumber(1)))
	assert.Equal(t, shared.NewNumber(1), server.get("users/ann/.priority"))

	require.NoError(t, users.Child("bob").SetWithPriority(ctx, shared.NewString("x"), shared.NewString("p")))
	assert.Equal(t, shared.MustValueOf(map[string]interface{}{".value": "x", ".priority": "p"}), server.get("users/bob"))

	require.NoError(t, users.Child("bob").Remove(ctx))
	assert.True(t, server.get("users/bob").IsNull())

	snapshot, err := users.Child("ann").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ann", snapshot.Key())
	assert.Equal(t, shared.NewString("Ann"), snapshot.Child("name").Value())
}

func TestDatabase_References(t *testing.T) {
	db, _ := connect(t)
	ref := db.Reference("/users/ann/")
	assert.Equal(t, "users/ann", ref.Path())
	assert.Equal(t, "https://demo.firebaseio.com/users/ann", ref.URL())
	assert.Equal(t, "users", ref.Parent().Key())
	assert.Nil(t, db.Root().Parent())
	assert.Equal(t, "", ref.Root().Key())

	pushed := ref.Push()
	assert.Equal(t, "users/ann", pushed.Parent().Path())
	assert.Len(t, pushed.Key(), 20)

	fromURL, err := db.ReferenceFromURL("https://demo.firebaseio.com/a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", fromURL.Path())
	_, err = db.ReferenceFromURL("https://other.firebaseio.com/a")
	assert.Error(t, err)
}

func TestDatabase_Query(t *testing.T) {
	ctx := context.Background()
	db, server := connect(t)
	server.put("users", map[string]interface{}{
		"a": map[string]interface{}{"age": 10},
		"b": map[string]interface{}{"age": 20},
		"c": map[string]interface{}{"age": 30},
	})
	var testCases = []struct {
		description string
		query       sdk.Query
		expect      []string
	}{
		{description: "start and limit", query: db.Reference("users").OrderByChild("age").StartAt(shared.NewNumber(15)).LimitToFirst(1), expect: []string{"b"}},
		{description: "end", query: db.Reference("users").OrderByChild("age").EndAt(shared.NewNumber(20)), expect: []string{"a", "b"}},
		{description: "equal", query: db.Reference("users").OrderByChild("age").EqualTo(shared.NewNumber(30)), expect: []string{"c"}},
		{description: "last by key", query: db.Reference("users").LimitToLast(2), expect: []string{"b", "c"}},
		{description: "bound with key", query: db.Reference("users").OrderByChild("age").StartAt(shared.NewNumber(10), "b"), expect: []string{"b", "c"}},
	}
	for _, testCase := range testCases {
		snapshot, err := testCase.query.Get(ctx)
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		var keys []string
		for _, child := range snapshot.Children() {
			keys = append(keys, child.Key())
		}
		assert.Equal(t, testCase.expect, keys, testCase.description)
	}

	priority := db.Reference("users").OrderByPriority()
	var queryErr *sdk.QueryError
	assert.ErrorAs(t, priority.Spec().Err(), &queryErr)
	_, err := priority.Get(ctx)
	assert.ErrorAs(t, err, &queryErr)
}

func TestDatabase_Observe(t *testing.T) {
	ctx := context.Background()
	db, _ := connect(t)
	ref := db.Reference("messages")
	values := &events{}
	children := &events{}
	valueRegistration := ref.Observe(sdk.EventValue, values.handler())
	childRegistration := ref.OrderByKey().Observe(sdk.EventChildAdded, children.handler())

	require.Eventually(t, func() bool { return values.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, values.last().Snapshot.Exists())

	require.NoError(t, ref.Child("m1").Set(ctx, shared.NewString("hello")))
	require.Eventually(t, func() bool { return values.len() == 2 && children.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, shared.MustValueOf(map[string]interface{}{"m1": "hello"}), values.last().Snapshot.Value())
	assert.Equal(t, "m1", children.last().Snapshot.Key())

	valueRegistration.Remove()
	childRegistration.Remove()
	require.NoError(t, ref.Child("m2").Set(ctx, shared.NewString("again")))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, values.len())
	assert.Equal(t, 1, children.len())
	assert.Nil(t, values.err())
}

func TestDatabase_PermissionDenied(t *testing.T) {
	ctx := context.Background()
	db, server := connect(t)
	server.deny("secret")

	_, err := db.Reference("secret/a").Get(ctx)
	assert.True(t, sdk.IsPermissionDenied(err), err)
	err = db.Reference("secret").Set(ctx, shared.NewBool(true))
	assert.True(t, sdk.IsPermissionDenied(err), err)

	listener := &events{}
	db.Reference("secret").Observe(sdk.EventValue, listener.handler())
	require.Eventually(t, func() bool { return listener.err() != nil }, time.Second, 5*time.Millisecond)
	assert.True(t, sdk.IsPermissionDenied(listener.err()))
	assert.Equal(t, 0, listener.len())
}

func TestDatabase_Offline(t *testing.T) {
	ctx := context.Background()
	db, server := connect(t)
	require.NoError(t, db.SetPersistenceEnabled(true))
	server.put("config", map[string]interface{}{"mode": "dark", "size": 3})

	_, err := db.Reference("config").Get(ctx)
	require.NoError(t, err)
	assert.Error(t, db.SetPersistenceEnabled(false))

	db.GoOffline()
	snapshot, err := db.Reference("config/mode").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, shared.NewString("dark"), snapshot.Value())

	_, err = db.Reference("other").Get(ctx)
	var dbErr *sdk.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, sdk.DatabaseDisconnected, dbErr.Code)

	err = db.Reference("config/mode").Set(ctx, shared.NewString("light"))
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, sdk.DatabaseDisconnected, dbErr.Code)

	db.GoOnline()
	require.NoError(t, db.Reference("config/mode").Set(ctx, shared.NewString("light")))
	assert.Equal(t, shared.NewString("light"), server.get("config/mode"))
}
