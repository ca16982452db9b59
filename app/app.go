package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

// Factory creates vendor instances for an app config
type Factory interface {
	Database(ctx context.Context, cfg *shared.Config) (sdk.Database, error)
	Auth(ctx context.Context, cfg *shared.Config) (sdk.Auth, error)
}

// App represents an initialised app, database and auth instances are created on first use
type App struct {
	name     string
	options  *Options
	config   *shared.Config
	factory  Factory
	mu       sync.Mutex
	database sdk.Database
	auth     sdk.Auth
}

// Name returns app name
func (a *App) Name() string {
	return a.name
}

// Options returns app options
func (a *App) Options() *Options {
	return a.options
}

// Config returns app config
func (a *App) Config() *shared.Config {
	return a.config
}

// Database returns app database
func (a *App) Database(ctx context.Context) (sdk.Database, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.database != nil {
		return a.database, nil
	}
	if a.config.DatabaseURL == "" {
		return nil, fmt.Errorf("app %v has no databaseURL", a.name)
	}
	database, err := a.factory.Database(ctx, a.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database of app %v: %w", a.name, err)
	}
	a.database = database
	return database, nil
}

// Auth returns app auth
func (a *App) Auth(ctx context.Context) (sdk.Auth, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.auth != nil {
		return a.auth, nil
	}
	auth, err := a.factory.Auth(ctx, a.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth of app %v: %w", a.name, err)
	}
	a.auth = auth
	return auth, nil
}

// Owns returns true if location URL belongs to app database
func (a *App) Owns(locationURL string) bool {
	root := strings.TrimRight(a.config.DatabaseURL, "/")
	if root == "" {
		return false
	}
	return locationURL == root || strings.HasPrefix(locationURL, root+"/")
}

// Map returns host representation
func (a *App) Map() map[string]interface{} {
	return map[string]interface{}{
		"name":    a.name,
		"options": a.options.Map(),
	}
}

func (a *App) close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.database == nil {
		return nil
	}
	err := a.database.Close()
	a.database = nil
	return err
}
