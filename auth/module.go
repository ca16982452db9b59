// Package auth exposes authentication, current user and identity provider operations to the scripting layer.
package auth

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/viant/firebridge/app"
	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/sdk"
)

const (
	// ModuleName is the name auth operations are exposed under
	ModuleName = "FirebaseBridgeAuth"
	// StateEvent is emitted on every auth state change of a listened app
	StateEvent = "authStateDidChange"
)

// Module exposes auth operations of one session
type Module struct {
	registry    *app.Registry
	credentials *CredentialCache
	emitter     bridge.Emitter
	logger      zerolog.Logger
	mu          sync.Mutex
	listeners   map[string]sdk.Registration
	gauge       prometheus.Gauge
}

// New creates module emitting auth state changes to session
func New(registry *app.Registry, credentials *CredentialCache, session *bridge.Session) *Module {
	ret := &Module{
		registry:    registry,
		credentials: credentials,
		emitter:     session,
		logger:      session.Logger().With().Str("component", "auth").Logger(),
		listeners:   map[string]sdk.Registration{},
		gauge:       session.Metrics().Handle(bridge.HandleAuthMonitor),
	}
	return ret
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Methods() map[string]bridge.Method {
	return map[string]bridge.Method{
		"currentUser":                      m.currentUser,
		"addAuthStateDidChangeListener":    m.addAuthStateDidChangeListener,
		"removeAuthStateDidChangeListener": m.removeAuthStateDidChangeListener,
		"signInWithEmail":                  m.signInWithEmail,
		"signInAnonymously":                m.signInAnonymously,
		"createUserWithEmail":              m.createUserWithEmail,
		"signInWithCredential":             m.signInWithCredential,
		"signInWithCustomToken":            m.signInWithCustomToken,
		"sendPasswordResetEmail":           m.sendPasswordResetEmail,
		"fetchProvidersForEmail":           m.fetchProvidersForEmail,
		"signOut":                          m.signOut,
	}
}

// Invalidate removes every auth state listener registered by the session
func (m *Module) Invalidate() {
	m.mu.Lock()
	listeners := m.listeners
	m.listeners = map[string]sdk.Registration{}
	m.mu.Unlock()
	for _, registration := range listeners {
		registration.Remove()
		if m.gauge != nil {
			m.gauge.Dec()
		}
	}
	m.logger.Debug().Int("listeners", len(listeners)).Msg("invalidated")
}

// instance resolves the app name held by the first argument
func instance(ctx context.Context, registry *app.Registry, args bridge.Args) (string, sdk.Auth, error) {
	appName, err := args.OptionalString(0)
	if err != nil {
		return "", nil, err
	}
	target, err := registry.Get(appName)
	if err != nil {
		return "", nil, err
	}
	auth, err := target.Auth(ctx)
	if err != nil {
		return "", nil, err
	}
	return target.Name(), auth, nil
}

func signedIn(user *sdk.User, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return describeUser(user), nil
}

func (m *Module) currentUser(ctx context.Context, args bridge.Args) (interface{}, error) {
	_, auth, err := instance(ctx, m.registry, args)
	if err != nil {
		return nil, err
	}
	if user := auth.CurrentUser(); user != nil {
		return describeUser(user), nil
	}
	return nil, nil
}

// addAuthStateDidChangeListener registers one listener per app, the current state is emitted right away
func (m *Module) addAuthStateDidChangeListener(ctx context.Context, args bridge.Args) (interface{}, error) {
	appName, auth, err := instance(ctx, m.registry, args)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listeners[appName]; ok {
		return nil, nil
	}
	m.listeners[appName] = auth.AddStateListener(func(user *sdk.User) {
		state := &AuthState{App: appName, User: false}
		if user != nil {
			state.User = describeUser(user)
		}
		m.emitter.Emit(StateEvent, state)
	})
	if m.gauge != nil {
		m.gauge.Inc()
	}
	return nil, nil
}

func (m *Module) removeAuthStateDidChangeListener(ctx context.Context, args bridge.Args) (interface{}, error) {
	appName, err := args.OptionalString(0)
	if err != nil {
		return nil, err
	}
	target, err := m.registry.Get(appName)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	registration, ok := m.listeners[target.Name()]
	delete(m.listeners, target.Name())
	m.mu.Unlock()
	if ok {
		registration.Remove()
		if m.gauge != nil {
			m.gauge.Dec()
		}
	}
	return nil, nil
}

func (m *Module) signInWithEmail(ctx context.Context, args bridge.Args) (interface{}, error) {
	_, auth, err := instance(ctx, m.registry, args)
	if err != nil {
		return nil, err
	}
	email, err := args.String(1)
	if err != nil {
		return nil, err
	}
	password, err := args.String(2)
	if err != nil {
		return nil, err
	}
	return signedIn(auth.SignInWithEmail(ctx, email, password))
}

func (m *Module) signInAnonymously(ctx context.Context, args bridge.Args) (interface{}, error) {
	_, auth, err := instance(ctx, m.registry, args)
	if err != nil {
		return nil, err
	}
	return signedIn(auth.SignInAnonymously(ctx))
}

func (m *Module) createUserWithEmail(ctx context.Context, args bridge.Args) (interface{}, error) {
	_, auth, err := instance(ctx, m.registry, args)
	if err != nil {
		return nil, err
	}
	email, err := args.String(1)
	if err != nil {
		return nil, err
	}
	password, err := args.String(2)
	if err != nil {
		return nil, err
	}
	return signedIn(auth.CreateUserWithEmail(ctx, email, password))
}

func (m *Module) signInWithCredential(ctx context.Context, args bridge.Args) (interface{}, error) {
	_, auth, err := instance(ctx, m.registry, args)
	if err != nil {
		return nil, err
	}
	credential, err := m.credential(args, 1)
	if err != nil {
		return nil, err
	}
	return signedIn(auth.SignInWithCredential(ctx, credential))
}

func (m *Module) credential(args bridge.Args, i int) (*sdk.Credential, error) {
	handle, err := args.String(i)
	if err != nil {
		return nil, err
	}
	return m.credentials.Get(handle)
}

func (m *Module) signInWithCustomToken(ctx context.Context, args bridge.Args) (interface{}, error) {
	_, auth, err := instance(ctx, m.registry, args)
	if err != nil {
		return nil, err
	}
	token, err := args.String(1)
	if err != nil {
		return nil, err
	}
	return signedIn(auth.SignInWithCustomToken(ctx, token))
}

func (m *Module) sendPasswordResetEmail(ctx context.Context, args bridge.Args) (interface{}, error) {
	_, auth, err := instance(ctx, m.registry, args)
	if err != nil {
		return nil, err
	}
	email, err := args.String(1)
	if err != nil {
		return nil, err
	}
	return nil, auth.SendPasswordResetEmail(ctx, email)
}

func (m *Module) fetchProvidersForEmail(ctx context.Context, args bridge.Args) (interface{}, error) {
	_, auth, err := instance(ctx, m.registry, args)
	if err != nil {
		return nil, err
	}
	email, err := args.String(1)
	if err != nil {
		return nil, err
	}
	providers, err := auth.FetchProvidersForEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	result := make([]interface{}, len(providers))
	for i, provider := range providers {
		result[i] = provider
	}
	return result, nil
}

func (m *Module) signOut(ctx context.Context, args bridge.Args) (interface{}, error) {
	_, auth, err := instance(ctx, m.registry, args)
	if err != nil {
		return nil, err
	}
	return nil, auth.SignOut()
}
