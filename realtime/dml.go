package realtime

import (
	"context"

	"firebase.google.com/go/db"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

const priorityKey = ".priority"

type reference struct {
	*query
}

func (r *reference) Key() string {
	_, key, _ := shared.ParentPath(r.path)
	return key
}

func (r *reference) Path() string { return r.path }

func (r *reference) URL() string { return sdk.LocationURL(r.db.URL(), r.path) }

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

// Push generates the key locally, nothing is written
func (r *reference) Push() sdk.Reference {
	return r.Child(r.db.pushIDs.Next())
}

func (r *reference) Set(ctx context.Context, value shared.Value) error {
	return r.write(ctx, func(ref *db.Ref) error {
		return ref.Set(ctx, value.Interface())
	})
}

// SetWithPriority writes the ".value"/".priority" envelope
func (r *reference) SetWithPriority(ctx context.Context, value, priority shared.Value) error {
	return r.write(ctx, func(ref *db.Ref) error {
		return ref.Set(ctx, sdk.WithPriority(value, priority).Interface())
	})
}

func (r *reference) SetPriority(ctx context.Context, priority shared.Value) error {
	return r.write(ctx, func(ref *db.Ref) error {
		return ref.Update(ctx, map[string]interface{}{priorityKey: priority.Interface()})
	})
}

func (r *reference) Update(ctx context.Context, values map[string]shared.Value) error {
	update := make(map[string]interface{}, len(values))
	for key, value := range values {
		update[key] = value.Interface()
	}
	return r.write(ctx, func(ref *db.Ref) error {
		return ref.Update(ctx, update)
	})
}

func (r *reference) Remove(ctx context.Context) error {
	return r.write(ctx, func(ref *db.Ref) error {
		return ref.Delete(ctx)
	})
}

// write fails with disconnected while offline, successful writes make watchers poll right away
func (r *reference) write(ctx context.Context, fn func(ref *db.Ref) error) error {
	online, err := r.db.touch()
	if err != nil {
		return err
	}
	if !online {
		return sdk.NewDatabaseError(sdk.DatabaseDisconnected, "the write was canceled because the client is offline")
	}
	if err := fn(r.db.client.NewRef(r.path)); err != nil {
		r.db.logger.Debug().Err(err).Str("path", r.path).Msg("write failed")
		return databaseError(err)
	}
	r.db.poke()
	return nil
}
