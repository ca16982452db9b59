// Package app manages the process wide set of initialised apps.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/shared"
)

// Registry holds initialised apps and the configs apps are initialised from
type Registry struct {
	factory    Factory
	logger     zerolog.Logger
	mu         sync.RWMutex
	configured map[string]*shared.Config
	apps       map[string]*App
}

// NewRegistry creates registry
func NewRegistry(factory Factory, logger zerolog.Logger) *Registry {
	return &Registry{
		factory:    factory,
		logger:     logger.With().Str("component", "app").Logger(),
		configured: map[string]*shared.Config{},
		apps:       map[string]*App{},
	}
}

// Configure registers the config used when app name is initialised
func (r *Registry) Configure(name string, cfg *shared.Config) {
	if name == "" {
		name = shared.DefaultApp
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configured[name] = cfg
}

// Initialize returns the app with name, creating it from its configured config overlaid with options
func (r *Registry) Initialize(ctx context.Context, name string, options *Options) (*App, error) {
	if name == "" {
		name = shared.DefaultApp
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.apps[name]; ok {
		return existing, nil
	}
	cfg := &shared.Config{}
	if configured, ok := r.configured[name]; ok {
		cfg = configured.Clone()
	} else if options == nil {
		return nil, bridge.AppInitializeFailure(fmt.Errorf("app %v was not configured", name))
	}
	if options != nil {
		options.Apply(cfg)
	}
	cfg.App = name
	cfg.Init()
	ret := &App{name: name, options: OptionsFromConfig(cfg), config: cfg, factory: r.factory}
	if options != nil {
		ret.options.ClientID = options.ClientID
		ret.options.BundleID = options.BundleID
	}
	r.apps[name] = ret
	r.logger.Debug().Str("app", name).Str("databaseURL", cfg.DatabaseURL).Msg("app initialized")
	return ret, nil
}

// Get returns app by name, empty name means the default app
func (r *Registry) Get(name string) (*App, error) {
	if name == "" {
		name = shared.DefaultApp
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret, ok := r.apps[name]
	if !ok {
		return nil, bridge.AppNotFound(name)
	}
	return ret, nil
}

// Default returns the default app
func (r *Registry) Default() (*App, error) {
	return r.Get(shared.DefaultApp)
}

// ForURL returns the app owning location URL, empty URL resolves to the default app
func (r *Registry) ForURL(locationURL string) (*App, error) {
	if locationURL == "" {
		return r.Default()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *App
	for _, candidate := range r.apps {
		if !candidate.Owns(locationURL) {
			continue
		}
		if best == nil || preferred(candidate, best) {
			best = candidate
		}
	}
	if best == nil {
		return nil, bridge.AppNotFound(locationURL)
	}
	return best, nil
}

// preferred orders apps sharing a database: the longest database URL wins, then the default app, then the lowest name
func preferred(candidate, current *App) bool {
	if len(candidate.config.DatabaseURL) != len(current.config.DatabaseURL) {
		return len(candidate.config.DatabaseURL) > len(current.config.DatabaseURL)
	}
	if (candidate.name == shared.DefaultApp) != (current.name == shared.DefaultApp) {
		return candidate.name == shared.DefaultApp
	}
	return candidate.name < current.name
}

// Apps returns apps sorted by name
func (r *Registry) Apps() []*App {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*App, 0, len(r.apps))
	for _, item := range r.apps {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].name < result[j].name
	})
	return result
}

// Delete removes app and closes its database
func (r *Registry) Delete(name string) error {
	if name == "" {
		name = shared.DefaultApp
	}
	r.mu.Lock()
	ret, ok := r.apps[name]
	delete(r.apps, name)
	r.mu.Unlock()
	if !ok {
		return bridge.AppNotFound(name)
	}
	r.logger.Debug().Str("app", name).Msg("app deleted")
	return ret.close()
}

// Close closes every app database
func (r *Registry) Close() error {
	var firstErr error
	for _, item := range r.Apps() {
		if err := item.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
