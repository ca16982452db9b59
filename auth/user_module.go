package auth

import (
	"context"

	"github.com/viant/firebridge/app"
	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/sdk"
)

// UserModuleName is the name current user operations are exposed under
const UserModuleName = "FirebaseBridgeUser"

// UserModule exposes operations on the current user of an app
type UserModule struct {
	registry    *app.Registry
	credentials *CredentialCache
}

// NewUserModule creates user module
func NewUserModule(registry *app.Registry, credentials *CredentialCache) *UserModule {
	return &UserModule{registry: registry, credentials: credentials}
}

func (m *UserModule) Name() string { return UserModuleName }

func (m *UserModule) Methods() map[string]bridge.Method {
	return map[string]bridge.Method{
		"sendEmailVerification": m.sendEmailVerification,
		"delete":                m.delete,
		"getToken":              m.getToken,
		"link":                  m.link,
		"reauthenticate":        m.reauthenticate,
		"reload":                m.reload,
		"unlink":                m.unlink,
		"updateEmail":           m.updateEmail,
		"updatePassword":        m.updatePassword,
		"updateProfile":         m.updateProfile,
	}
}

func (m *UserModule) Invalidate() {}

// current resolves app auth and fails when nobody is signed in
func (m *UserModule) current(ctx context.Context, args bridge.Args) (sdk.Auth, error) {
	_, auth, err := instance(ctx, m.registry, args)
	if err != nil {
		return nil, err
	}
	if auth.CurrentUser() == nil {
		return nil, bridge.UserNotLoggedIn()
	}
	return auth, nil
}

func (m *UserModule) sendEmailVerification(ctx context.Context, args bridge.Args) (interface{}, error) {
	auth, err := m.current(ctx, args)
	if err != nil {
		return nil, err
	}
	return nil, auth.SendEmailVerification(ctx)
}

func (m *UserModule) delete(ctx context.Context, args bridge.Args) (interface{}, error) {
	auth, err := m.current(ctx, args)
	if err != nil {
		return nil, err
	}
	return nil, auth.DeleteUser(ctx)
}

func (m *UserModule) getToken(ctx context.Context, args bridge.Args) (interface{}, error) {
	auth, err := m.current(ctx, args)
	if err != nil {
		return nil, err
	}
	force, err := args.OptionalBool(1)
	if err != nil {
		return nil, err
	}
	return auth.Token(ctx, force)
}

func (m *UserModule) link(ctx context.Context, args bridge.Args) (interface{}, error) {
	auth, err := m.current(ctx, args)
	if err != nil {
		return nil, err
	}
	credential, err := m.credential(args, 1)
	if err != nil {
		return nil, err
	}
	return signedIn(auth.Link(ctx, credential))
}

func (m *UserModule) credential(args bridge.Args, i int) (*sdk.Credential, error) {
	handle, err := args.String(i)
	if err != nil {
		return nil, err
	}
	return m.credentials.Get(handle)
}

func (m *UserModule) reauthenticate(ctx context.Context, args bridge.Args) (interface{}, error) {
	auth, err := m.current(ctx, args)
	if err != nil {
		return nil, err
	}
	credential, err := m.credential(args, 1)
	if err != nil {
		return nil, err
	}
	return nil, auth.Reauthenticate(ctx, credential)
}

func (m *UserModule) reload(ctx context.Context, args bridge.Args) (interface{}, error) {
	auth, err := m.current(ctx, args)
	if err != nil {
		return nil, err
	}
	return signedIn(auth.Reload(ctx))
}

func (m *UserModule) unlink(ctx context.Context, args bridge.Args) (interface{}, error) {
	auth, err := m.current(ctx, args)
	if err != nil {
		return nil, err
	}
	providerID, err := args.String(1)
	if err != nil {
		return nil, err
	}
	return signedIn(auth.Unlink(ctx, providerID))
}

func (m *UserModule) updateEmail(ctx context.Context, args bridge.Args) (interface{}, error) {
	auth, err := m.current(ctx, args)
	if err != nil {
		return nil, err
	}
	email, err := args.String(1)
	if err != nil {
		return nil, err
	}
	return nil, auth.UpdateEmail(ctx, email)
}

func (m *UserModule) updatePassword(ctx context.Context, args bridge.Args) (interface{}, error) {
	auth, err := m.current(ctx, args)
	if err != nil {
		return nil, err
	}
	password, err := args.String(1)
	if err != nil {
		return nil, err
	}
	return nil, auth.UpdatePassword(ctx, password)
}

// updateProfile takes a one element list holding {displayName, photoURL}
func (m *UserModule) updateProfile(ctx context.Context, args bridge.Args) (interface{}, error) {
	auth, err := m.current(ctx, args)
	if err != nil {
		return nil, err
	}
	boxed, err := args.List(1)
	if err != nil {
		return nil, err
	}
	if len(boxed) != 1 {
		return nil, bridge.InvalidArguments("profile: expected one element list, but had %v elements", len(boxed))
	}
	data, err := bridge.Args(boxed).Map(0)
	if err != nil {
		return nil, err
	}
	profile := sdk.Profile{}
	if profile.DisplayName, err = optionalText(data, "displayName"); err != nil {
		return nil, err
	}
	if profile.PhotoURL, err = optionalText(data, "photoURL"); err != nil {
		return nil, err
	}
	return nil, auth.UpdateProfile(ctx, profile)
}

// optionalText returns nil for a missing key, a null value clears the attribute
func optionalText(data map[string]interface{}, key string) (*string, error) {
	raw, ok := data[key]
	if !ok {
		return nil, nil
	}
	if raw == nil {
		empty := ""
		return &empty, nil
	}
	text, ok := raw.(string)
	if !ok {
		return nil, bridge.InvalidArguments("profile %v: expected string, but had %T", key, raw)
	}
	return &text, nil
}
