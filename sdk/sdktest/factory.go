package sdktest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

// Factory creates in-memory databases (one per database URL) and auth instances (one per app)
type Factory struct {
	mu        sync.Mutex
	databases map[string]*Database
	auths     map[string]*Auth
}

// NewFactory creates factory
func NewFactory() *Factory {
	return &Factory{databases: map[string]*Database{}, auths: map[string]*Auth{}}
}

// Database returns database for config
func (f *Factory) Database(ctx context.Context, cfg *shared.Config) (sdk.Database, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("databaseURL was empty")
	}
	return f.MemoryDatabase(cfg.DatabaseURL), nil
}

// Auth returns auth for config
func (f *Factory) Auth(ctx context.Context, cfg *shared.Config) (sdk.Auth, error) {
	return f.MemoryAuth(cfg.App), nil
}

// MemoryDatabase returns in-memory database for URL
func (f *Factory) MemoryDatabase(URL string) *Database {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimRight(URL, "/")
	db, ok := f.databases[key]
	if !ok {
		db = NewDatabase(key)
		f.databases[key] = db
	}
	return db
}

// MemoryAuth returns in-memory auth for app
func (f *Factory) MemoryAuth(app string) *Auth {
	f.mu.Lock()
	defer f.mu.Unlock()
	auth, ok := f.auths[app]
	if !ok {
		auth = NewAuth()
		f.auths[app] = auth
	}
	return auth
}
