package modules

import (
	"context"

	"github.com/viant/firebridge/identity"
	"github.com/viant/firebridge/realtime"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

// Firebase creates vendor instances talking to Firebase: realtime database over REST and identity toolkit auth
type Firebase struct{}

// NewFirebase creates factory
func NewFirebase() *Firebase {
	return &Firebase{}
}

func (f *Firebase) Database(ctx context.Context, cfg *shared.Config) (sdk.Database, error) {
	return realtime.Connect(ctx, cfg)
}

func (f *Firebase) Auth(ctx context.Context, cfg *shared.Config) (sdk.Auth, error) {
	return identity.New(ctx, cfg, nil)
}
