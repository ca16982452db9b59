package app

import (
	"context"

	"github.com/viant/firebridge/bridge"
)

// ModuleName is the name app operations are exposed under
const ModuleName = "FirebaseBridgeApp"

// Module exposes app operations
type Module struct {
	registry *Registry
}

// NewModule creates module
func NewModule(registry *Registry) *Module {
	return &Module{registry: registry}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Methods() map[string]bridge.Method {
	return map[string]bridge.Method{
		"initializeApp":        m.initializeApp,
		"initializeDefaultApp": m.initializeDefaultApp,
		"apps":                 m.apps,
		"deleteApp":            m.deleteApp,
	}
}

// Invalidate keeps apps alive, they are shared across sessions
func (m *Module) Invalidate() {}

func (m *Module) initializeApp(ctx context.Context, args bridge.Args) (interface{}, error) {
	source, err := args.Map(0)
	if err != nil {
		return nil, err
	}
	options, err := OptionsFromMap(source)
	if err != nil {
		return nil, bridge.InvalidArguments("%v", err)
	}
	name, err := args.OptionalString(1)
	if err != nil {
		return nil, err
	}
	app, err := m.registry.Initialize(ctx, name, options)
	if err != nil {
		return nil, err
	}
	return app.Map(), nil
}

func (m *Module) initializeDefaultApp(ctx context.Context, args bridge.Args) (interface{}, error) {
	app, err := m.registry.Initialize(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	return app.Map(), nil
}

func (m *Module) apps(ctx context.Context, args bridge.Args) (interface{}, error) {
	apps := m.registry.Apps()
	result := make([]interface{}, 0, len(apps))
	for _, app := range apps {
		result = append(result, app.Map())
	}
	return result, nil
}

func (m *Module) deleteApp(ctx context.Context, args bridge.Args) (interface{}, error) {
	name, err := args.OptionalString(0)
	if err != nil {
		return nil, err
	}
	return nil, m.registry.Delete(name)
}
