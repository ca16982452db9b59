// Package database exposes realtime database references, queries, subscriptions and snapshots to the scripting layer.
package database

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/viant/firebridge/app"
	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/realtime"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

// ModuleName is the name database operations are exposed under
const ModuleName = "FirebaseBridgeDatabase"

// Module exposes database operations of one session
type Module struct {
	registry  *app.Registry
	emitter   bridge.Emitter
	logger    zerolog.Logger
	snapshots *bridge.Store[*sdk.Snapshot]
	listeners *bridge.Store[*subscription]
}

// New creates module emitting notifications to session
func New(registry *app.Registry, session *bridge.Session) *Module {
	metrics := session.Metrics()
	ret := &Module{
		registry: registry,
		emitter:  session,
		logger:   session.Logger().With().Str("component", "database").Logger(),
	}
	if metrics != nil {
		ret.snapshots = bridge.NewStore[*sdk.Snapshot](metrics.Handle(bridge.HandleSnapshot))
		ret.listeners = bridge.NewStore[*subscription](metrics.Handle(bridge.HandleListener))
	} else {
		ret.snapshots = bridge.NewStore[*sdk.Snapshot](nil)
		ret.listeners = bridge.NewStore[*subscription](nil)
	}
	return ret
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Methods() map[string]bridge.Method {
	return map[string]bridge.Method{
		"child":                 m.child,
		"push":                  m.push,
		"parent":                m.parent,
		"root":                  m.root,
		"refFromURL":            m.refFromURL,
		"setValue":              m.setValue,
		"setValueWithPriority":  m.setValueWithPriority,
		"setPriority":           m.setPriority,
		"removeValue":           m.removeValue,
		"update":                m.update,
		"goOnline":              m.goOnline,
		"goOffline":             m.goOffline,
		"setPersistenceEnabled": m.setPersistenceEnabled,
		"on":                    m.on,
		"once":                  m.once,
		"off":                   m.off,
		"get":                   m.get,
		"snapshotValue":         m.snapshotValue,
		"snapshotExportValue":   m.snapshotExportValue,
		"snapshotChild":         m.snapshotChild,
		"snapshotChildren":      m.snapshotChildren,
		"snapshotHasChild":      m.snapshotHasChild,
		"snapshotKey":           m.snapshotKey,
		"releaseSnapshot":       m.releaseSnapshot,
		"compileQuery":          m.compileQuery,
	}
}

// Invalidate detaches every listener of the session and drops cached snapshots
func (m *Module) Invalidate() {
	subscriptions := m.listeners.Drain()
	for _, sub := range subscriptions {
		if registration := sub.cancel(); registration != nil {
			registration.Remove()
		}
	}
	released := m.snapshots.Drain()
	m.logger.Debug().Int("listeners", len(subscriptions)).Int("snapshots", len(released)).Msg("invalidated")
}

func (m *Module) database(ctx context.Context, appName, locationURL string) (sdk.Database, error) {
	var target *app.App
	var err error
	if appName != "" {
		target, err = m.registry.Get(appName)
	} else {
		target, err = m.registry.ForURL(locationURL)
	}
	if err != nil {
		return nil, err
	}
	return target.Database(ctx)
}

// reference resolves (appName, locationUrl) arguments, empty location means the database root
func (m *Module) reference(ctx context.Context, args bridge.Args) (sdk.Reference, error) {
	appName, err := args.OptionalString(0)
	if err != nil {
		return nil, err
	}
	locationURL, err := args.OptionalString(1)
	if err != nil {
		return nil, err
	}
	db, err := m.database(ctx, appName, locationURL)
	if err != nil {
		return nil, err
	}
	if locationURL == "" {
		return db.Root(), nil
	}
	ref, err := db.ReferenceFromURL(locationURL)
	if err != nil {
		return nil, bridge.InvalidArguments("invalid location %v: %v", locationURL, err)
	}
	return ref, nil
}

// query resolves reference and applies query descriptor held by argument i
func (m *Module) query(ctx context.Context, args bridge.Args, i int) (sdk.Query, error) {
	ref, err := m.reference(ctx, args)
	if err != nil {
		return nil, err
	}
	descriptor, err := args.OptionalList(i)
	if err != nil {
		return nil, bridge.InvalidQueryParameters("query descriptor: expected list, but had %T", args.At(i))
	}
	ops, err := DecodeQuery(descriptor)
	if err != nil {
		return nil, err
	}
	return Apply(ref, ops)
}

func (m *Module) child(ctx context.Context, args bridge.Args) (interface{}, error) {
	ref, err := m.reference(ctx, args)
	if err != nil {
		return nil, err
	}
	path, err := args.String(2)
	if err != nil {
		return nil, err
	}
	return describeRef(ref.Child(path)), nil
}

func (m *Module) push(ctx context.Context, args bridge.Args) (interface{}, error) {
	ref, err := m.reference(ctx, args)
	if err != nil {
		return nil, err
	}
	return describeRef(ref.Push()), nil
}

func (m *Module) parent(ctx context.Context, args bridge.Args) (interface{}, error) {
	ref, err := m.reference(ctx, args)
	if err != nil {
		return nil, err
	}
	parent := ref.Parent()
	if parent == nil {
		return nil, nil
	}
	return describeRef(parent), nil
}

func (m *Module) root(ctx context.Context, args bridge.Args) (interface{}, error) {
	ref, err := m.reference(ctx, args)
	if err != nil {
		return nil, err
	}
	return describeRef(ref.Root()), nil
}

func (m *Module) refFromURL(ctx context.Context, args bridge.Args) (interface{}, error) {
	ref, err := m.reference(ctx, args)
	if err != nil {
		return nil, err
	}
	return describeRef(ref), nil
}

func (m *Module) setValue(ctx context.Context, args bridge.Args) (interface{}, error) {
	ref, err := m.reference(ctx, args)
	if err != nil {
		return nil, err
	}
	value, err := args.Boxed(2)
	if err != nil {
		return nil, err
	}
	return nil, ref.Set(ctx, value)
}

func (m *Module) setValueWithPriority(ctx context.Context, args bridge.Args) (interface{}, error) {
	ref, err := m.reference(ctx, args)
	if err != nil {
		return nil, err
	}
	value, err := args.Boxed(2)
	if err != nil {
		return nil, err
	}
	priority, err := priorityArg(args, 3)
	if err != nil {
		return nil, err
	}
	return nil, ref.SetWithPriority(ctx, value, priority)
}

func (m *Module) setPriority(ctx context.Context, args bridge.Args) (interface{}, error) {
	ref, err := m.reference(ctx, args)
	if err != nil {
		return nil, err
	}
	priority, err := priorityArg(args, 2)
	if err != nil {
		return nil, err
	}
	return nil, ref.SetPriority(ctx, priority)
}

func priorityArg(args bridge.Args, i int) (shared.Value, error) {
	priority, err := args.Boxed(i)
	if err != nil {
		return shared.Null(), err
	}
	switch priority.Kind() {
	case shared.KindNull, shared.KindNumber, shared.KindString:
		return priority, nil
	}
	return shared.Null(), bridge.InvalidArguments("argument %v: priority has to be a number, string or null, but had %v", i, priority.Kind())
}

func (m *Module) removeValue(ctx context.Context, args bridge.Args) (interface{}, error) {
	ref, err := m.reference(ctx, args)
	if err != nil {
		return nil, err
	}
	return nil, ref.Remove(ctx)
}

func (m *Module) update(ctx context.Context, args bridge.Args) (interface{}, error) {
	ref, err := m.reference(ctx, args)
	if err != nil {
		return nil, err
	}
	source, err := args.Map(2)
	if err != nil {
		return nil, err
	}
	values := make(map[string]shared.Value, len(source))
	for key, item := range source {
		value, err := shared.ValueOf(item)
		if err != nil {
			return nil, bridge.InvalidArguments("update %v: %v", key, err)
		}
		values[key] = value
	}
	return nil, ref.Update(ctx, values)
}

func (m *Module) connectivity(ctx context.Context, args bridge.Args) (sdk.Database, error) {
	appName, err := args.OptionalString(0)
	if err != nil {
		return nil, err
	}
	return m.database(ctx, appName, "")
}

func (m *Module) goOnline(ctx context.Context, args bridge.Args) (interface{}, error) {
	db, err := m.connectivity(ctx, args)
	if err != nil {
		return nil, err
	}
	db.GoOnline()
	return nil, nil
}

func (m *Module) goOffline(ctx context.Context, args bridge.Args) (interface{}, error) {
	db, err := m.connectivity(ctx, args)
	if err != nil {
		return nil, err
	}
	db.GoOffline()
	return nil, nil
}

func (m *Module) setPersistenceEnabled(ctx context.Context, args bridge.Args) (interface{}, error) {
	db, err := m.connectivity(ctx, args)
	if err != nil {
		return nil, err
	}
	enabled, err := args.Bool(1)
	if err != nil {
		return nil, err
	}
	return nil, db.SetPersistenceEnabled(enabled)
}

func (m *Module) get(ctx context.Context, args bridge.Args) (interface{}, error) {
	query, err := m.query(ctx, args, 2)
	if err != nil {
		return nil, err
	}
	snapshot, err := query.Get(ctx)
	if err != nil {
		return nil, err
	}
	return m.cache(snapshot), nil
}

func (m *Module) compileQuery(ctx context.Context, args bridge.Args) (interface{}, error) {
	SQL, err := args.String(0)
	if err != nil {
		return nil, err
	}
	params, err := args.OptionalList(1)
	if err != nil {
		return nil, err
	}
	compiled, err := realtime.CompileSQL(SQL, params...)
	if err != nil {
		return nil, bridge.InvalidArguments("%v", err)
	}
	ret := &Compiled{Path: compiled.Path, DryRun: compiled.DryRun, Query: []interface{}{}}
	for _, op := range compiled.Ops {
		ret.Query = append(ret.Query, op)
	}
	return ret, nil
}
