// Package modules installs every bridged module into a session.
package modules

import (
	"github.com/viant/firebridge/app"
	"github.com/viant/firebridge/auth"
	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/database"
)

// Shared represents process wide state shared by all sessions
type Shared struct {
	Registry    *app.Registry
	Credentials *auth.CredentialCache
}

// NewShared creates shared state, credentials are gauged with metrics when provided
func NewShared(registry *app.Registry, metrics *bridge.Metrics) *Shared {
	return &Shared{
		Registry:    registry,
		Credentials: auth.NewCredentialCache(metrics.Handle(bridge.HandleCredential)),
	}
}

// Install registers app, database, auth, user and provider modules with session
func Install(session *bridge.Session, shared *Shared) {
	session.Register(
		app.NewModule(shared.Registry),
		database.New(shared.Registry, session),
		auth.New(shared.Registry, shared.Credentials, session),
		auth.NewUserModule(shared.Registry, shared.Credentials),
	)
	for _, provider := range auth.Providers(shared.Credentials) {
		session.Register(provider)
	}
}
