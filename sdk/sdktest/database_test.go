package sdktest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

func collect(q sdk.Query, kind sdk.EventKind) (chan sdk.Event, chan error, sdk.Registration) {
	events := make(chan sdk.Event, 64)
	cancels := make(chan error, 1)
	reg := q.Observe(kind, sdk.Handler{
		OnEvent:  func(event sdk.Event) { events <- event },
		OnCancel: func(err error) { cancels <- err },
	})
	return events, cancels, reg
}

func next(t *testing.T, events chan sdk.Event) sdk.Event {
	select {
	case event := <-events:
		return event
	case <-time.After(time.Second):
		require.FailNow(t, "timeout waiting for event")
	}
	return sdk.Event{}
}

func TestDatabase_ValueListener(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase("https://test.firebaseio.com")
	ref := db.Reference("greeting")
	require.NoError(t, ref.Set(ctx, shared.NewString("hello")))

	events, _, reg := collect(ref, sdk.EventValue)
	assert.Equal(t, "hello", next(t, events).Snapshot.Value().Interface())

	require.NoError(t, ref.Set(ctx, shared.NewString("world")))
	assert.Equal(t, "world", next(t, events).Snapshot.Value().Interface())

	reg.Remove()
	assert.Equal(t, 0, db.Listeners())
	require.NoError(t, ref.Set(ctx, shared.NewString("again")))
	select {
	case event := <-events:
		assert.Failf(t, "unexpected event", "%v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDatabase_Queries(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase("https://test.firebaseio.com")
	ref := db.Reference("numbers")
	require.NoError(t, ref.Set(ctx, shared.MustValueOf([]interface{}{1, 2, 3, 4, 5, 6})))

	var testCases = []struct {
		description string
		query       sdk.Query
		expect      []string
	}{
		{description: "limitToFirst", query: ref.LimitToFirst(2), expect: []string{"0", "1"}},
		{description: "limitToLast", query: ref.LimitToLast(2), expect: []string{"4", "5"}},
		{description: "startAt", query: ref.OrderByValue().StartAt(shared.NewNumber(5)), expect: []string{"4", "5"}},
		{description: "endAt", query: ref.OrderByValue().EndAt(shared.NewNumber(2)), expect: []string{"0", "1"}},
	}
	for _, testCase := range testCases {
		snapshot, err := testCase.query.Get(ctx)
		require.NoError(t, err, testCase.description)
		var keys []string
		for _, child := range snapshot.Children() {
			keys = append(keys, child.Key())
		}
		assert.Equal(t, testCase.expect, keys, testCase.description)
	}
}

func TestDatabase_ChildEvents(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase("https://test.firebaseio.com")
	ref := db.Reference("list")
	added, _, reg := collect(ref, sdk.EventChildAdded)
	defer reg.Remove()
	removed, _, reg2 := collect(ref, sdk.EventChildRemoved)
	defer reg2.Remove()

	pushed := ref.Push()
	require.NoError(t, pushed.Set(ctx, shared.NewString("first")))
	event := next(t, added)
	assert.Equal(t, pushed.Key(), event.Snapshot.Key())
	assert.Equal(t, "first", event.Snapshot.Value().Interface())

	require.NoError(t, pushed.Remove(ctx))
	assert.Equal(t, pushed.Key(), next(t, removed).Snapshot.Key())
}

func TestDatabase_PermissionDenied(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase("https://test.firebaseio.com")
	db.Deny("secret")
	_, cancels, _ := collect(db.Reference("secret/doc"), sdk.EventValue)
	select {
	case err := <-cancels:
		assert.True(t, sdk.IsPermissionDenied(err))
	case <-time.After(time.Second):
		require.FailNow(t, "timeout")
	}
	err := db.Reference("secret").Set(ctx, shared.NewBool(true))
	assert.True(t, sdk.IsPermissionDenied(err))
	assert.NoError(t, db.Reference("public").Set(ctx, shared.NewBool(true)))
}

func TestDatabase_Priority(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase("https://test.firebaseio.com")
	ref := db.Reference("item")
	require.NoError(t, ref.SetWithPriority(ctx, shared.NewString("v"), shared.NewNumber(2)))
	snapshot, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, snapshot.Priority().Interface())
	assert.Equal(t, "v", snapshot.Value().Interface())

	require.NoError(t, ref.SetPriority(ctx, shared.NewString("p")))
	snapshot, err = ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p", snapshot.Priority().Interface())
	assert.Equal(t, map[string]interface{}{".value": "v", ".priority": "p"}, snapshot.ExportValue().Interface())
}

func TestDatabase_Navigation(t *testing.T) {
	db := NewDatabase("https://test.firebaseio.com/")
	ref := db.Reference("a/b")
	assert.Equal(t, "b", ref.Key())
	assert.Equal(t, "a", ref.Parent().Key())
	assert.Nil(t, ref.Parent().Parent().Parent())
	assert.Equal(t, "https://test.firebaseio.com", ref.Root().URL())
	assert.Equal(t, "https://test.firebaseio.com/a/b/c", ref.Child("c").URL())
	fromURL, err := db.ReferenceFromURL("https://test.firebaseio.com/x/y")
	require.NoError(t, err)
	assert.Equal(t, "x/y", fromURL.Path())
	_, err = db.ReferenceFromURL("https://other.firebaseio.com/x")
	assert.Error(t, err)
}

func TestDatabase_Persistence(t *testing.T) {
	db := NewDatabase("https://test.firebaseio.com")
	require.NoError(t, db.SetPersistenceEnabled(true))
	assert.True(t, db.PersistenceEnabled())
	_, err := db.Root().Get(context.Background())
	require.NoError(t, err)
	assert.Error(t, db.SetPersistenceEnabled(false))
}
