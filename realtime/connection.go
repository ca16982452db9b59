// Package realtime implements the database surface on top of the Firebase Admin SDK REST client.
package realtime

import (
	"context"
	"fmt"
	"strings"
	"sync"

	fb "firebase.google.com/go"
	"firebase.google.com/go/db"
	"github.com/rs/zerolog"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
	"google.golang.org/api/option"
)

// Database represents a realtime database instance of one app
type Database struct {
	cfg         *shared.Config
	client      *db.Client
	logger      zerolog.Logger
	pushIDs     *sdk.PushIDs
	mu          sync.Mutex
	online      bool
	resume      chan struct{}
	used        bool
	persistence bool
	closed      bool
	cache       map[string]shared.Value
	watchers    map[*watcher]bool
}

// Connect initializes firebase app and database client, logger is taken from ctx
func Connect(ctx context.Context, cfg *shared.Config, opts ...option.ClientOption) (*Database, error) {
	conf := &fb.Config{
		DatabaseURL:   cfg.DatabaseURL,
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}
	app, err := fb.NewApp(ctx, conf, append(cfg.Options(), opts...)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.DatabaseWithURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("error initializing database client: %w", err)
	}
	logger := zerolog.Ctx(ctx).With().Str("component", "realtime").Str("app", cfg.App).Logger()
	return newDatabase(cfg, client, logger), nil
}

func newDatabase(cfg *shared.Config, client *db.Client, logger zerolog.Logger) *Database {
	return &Database{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		pushIDs:  sdk.NewPushIDs(),
		online:   true,
		cache:    map[string]shared.Value{},
		watchers: map[*watcher]bool{},
	}
}

func (d *Database) URL() string { return strings.TrimRight(d.cfg.DatabaseURL, "/") }

func (d *Database) Root() sdk.Reference { return d.ref("") }

func (d *Database) Reference(path string) sdk.Reference { return d.ref(path) }

func (d *Database) ReferenceFromURL(URL string) (sdk.Reference, error) {
	path, err := sdk.LocationPath(d.URL(), URL)
	if err != nil {
		return nil, err
	}
	return d.ref(path), nil
}

func (d *Database) ref(path string) *reference {
	return &reference{query: &query{db: d, path: shared.JoinPath(path)}}
}

// GoOnline resumes pollers and writes
func (d *Database) GoOnline() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.online {
		return
	}
	d.online = true
	close(d.resume)
	d.resume = nil
	d.logger.Debug().Msg("online")
}

// GoOffline pauses pollers, writes fail with disconnected until GoOnline
func (d *Database) GoOffline() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.online {
		return
	}
	d.online = false
	d.resume = make(chan struct{})
	d.logger.Debug().Msg("offline")
}

// waitOnline returns nil when online, otherwise a channel closed once back online
func (d *Database) waitOnline() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.online {
		return nil
	}
	return d.resume
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

// Close stops all pollers, no cancel notification is delivered
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for w := range d.watchers {
		w.cancel()
		delete(d.watchers, w)
	}
	return nil
}

// touch marks database as used and returns connectivity state
func (d *Database) touch() (online bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.used = true
	if d.closed {
		return false, sdk.NewDatabaseError(sdk.DatabaseDisconnected, "database was closed")
	}
	return d.online, nil
}

// remember keeps last known location value while persistence is enabled
func (d *Database) remember(path string, node shared.Value) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.persistence {
		return
	}
	for candidate := range d.cache {
		if path == "" || strings.HasPrefix(candidate, path+"/") {
			delete(d.cache, candidate)
		}
	}
	d.cache[path] = node
}

// cached returns last known value of path or of its closest cached ancestor
func (d *Database) cached(path string) (shared.Value, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.persistence {
		return shared.Null(), false
	}
	candidate, relative := path, ""
	for {
		if node, ok := d.cache[candidate]; ok {
			return shared.GetPath(node, relative), true
		}
		parent, key, ok := shared.ParentPath(candidate)
		if !ok {
			return shared.Null(), false
		}
		candidate, relative = parent, shared.JoinPath(key, relative)
	}
}

// poke makes every watcher poll right away
func (d *Database) poke() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for w := range d.watchers {
		select {
		case w.poke <- struct{}{}:
		default:
		}
	}
}
