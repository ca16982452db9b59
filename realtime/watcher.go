package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

// watcher polls one registration and turns observed changes into events
type watcher struct {
	db      *Database
	query   *query
	kind    sdk.EventKind
	handler sdk.Handler
	ctx     context.Context
	cancel  context.CancelFunc
	poke    chan struct{}
	logger  zerolog.Logger
	last    *sdk.Snapshot
	etag    string
}

func (d *Database) observe(q *query, kind sdk.EventKind, handler sdk.Handler) sdk.Registration {
	ctx, cancel := context.WithCancel(context.Background())
	w := &watcher{
		db:      d,
		query:   q,
		kind:    kind,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
		poke:    make(chan struct{}, 1),
		logger:  d.logger.With().Str("path", q.path).Str("event", string(kind)).Logger(),
	}
	d.mu.Lock()
	d.used = true
	closed := d.closed
	if !closed {
		d.watchers[w] = true
	}
	d.mu.Unlock()
	if closed {
		go w.fail(sdk.NewDatabaseError(sdk.DatabaseDisconnected, "database was closed"))
	} else {
		go w.run()
	}
	return sdk.RegistrationFunc(w.remove)
}

// remove stops polling without waiting for an in-flight poll
func (w *watcher) remove() {
	w.cancel()
	w.db.mu.Lock()
	delete(w.db.watchers, w)
	w.db.mu.Unlock()
}

func (w *watcher) run() {
	if err := w.query.spec.Err(); err != nil {
		w.fail(err)
		return
	}
	interval := w.db.cfg.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if resume := w.db.waitOnline(); resume != nil {
			select {
			case <-w.ctx.Done():
				return
			case <-resume:
			}
		}
		if err := w.poll(); err != nil {
			if w.ctx.Err() != nil {
				return
			}
			if terminal(err) {
				w.fail(err)
				return
			}
			w.logger.Warn().Err(err).Msg("poll failed")
		}
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
		case <-w.poke:
		}
	}
}

func (w *watcher) poll() error {
	node, changed, err := w.fetch()
	if err != nil || !changed {
		return err
	}
	next := sdk.NewSnapshot(w.query.Ref(), node, w.query.spec)
	events := sdk.Diff(w.kind, w.last, next)
	w.last = next
	for _, event := range events {
		if w.ctx.Err() != nil {
			return nil
		}
		w.handler.OnEvent(event)
	}
	return nil
}

// fetch uses ETags for plain locations, queries are re-read and diffed
func (w *watcher) fetch() (shared.Value, bool, error) {
	if !w.query.spec.IsDefault() {
		node, err := w.query.fetch(w.ctx)
		return node, err == nil, err
	}
	ref := w.db.client.NewRef(w.query.path)
	var raw interface{}
	if w.etag == "" {
		etag, err := ref.GetWithETag(w.ctx, &raw)
		if err != nil {
			return shared.Null(), false, databaseError(err)
		}
		w.etag = etag
	} else {
		changed, etag, err := ref.GetIfChanged(w.ctx, w.etag, &raw)
		if err != nil {
			return shared.Null(), false, databaseError(err)
		}
		if !changed {
			return shared.Null(), false, nil
		}
		w.etag = etag
	}
	node, err := shared.ValueOf(raw)
	if err != nil {
		return shared.Null(), false, err
	}
	w.db.remember(w.query.path, node)
	return node, true, nil
}

// fail delivers the cancel notification unless the registration was removed
func (w *watcher) fail(err error) {
	if w.ctx.Err() != nil {
		return
	}
	w.remove()
	w.logger.Warn().Err(err).Msg("listener cancelled")
	if w.handler.OnCancel != nil {
		w.handler.OnCancel(err)
	}
}

// terminal errors end the registration
func terminal(err error) bool {
	var queryErr *sdk.QueryError
	return sdk.IsPermissionDenied(err) || errors.As(err, &queryErr)
}
