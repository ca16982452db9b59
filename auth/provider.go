package auth

import (
	"context"

	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/sdk"
)

// CredentialHandle describes a cached credential
type CredentialHandle struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

// Provider exposes a credential factory of one identity provider
type Provider struct {
	name     string
	provider string
	build    func(args bridge.Args) (*sdk.Credential, error)
	cache    *CredentialCache
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Methods() map[string]bridge.Method {
	return map[string]bridge.Method{
		"credential": p.credential,
	}
}

// Invalidate keeps credentials, they outlive sessions
func (p *Provider) Invalidate() {}

func (p *Provider) credential(ctx context.Context, args bridge.Args) (interface{}, error) {
	credential, err := p.build(args)
	if err != nil {
		return nil, err
	}
	credential.Provider = p.provider
	return &CredentialHandle{ID: p.cache.Add(credential), Provider: p.provider}, nil
}

// Providers creates provider modules sharing cache
func Providers(cache *CredentialCache) []*Provider {
	return []*Provider{
		{name: "FirebaseBridgeGithubAuthProvider", provider: sdk.ProviderGithub, cache: cache, build: accessToken},
		{name: "FirebaseBridgeFacebookAuthProvider", provider: sdk.ProviderFacebook, cache: cache, build: accessToken},
		{name: "FirebaseBridgeGoogleAuthProvider", provider: sdk.ProviderGoogle, cache: cache, build: func(args bridge.Args) (*sdk.Credential, error) {
			idToken, err := args.OptionalString(0)
			if err != nil {
				return nil, err
			}
			token, err := args.OptionalString(1)
			if err != nil {
				return nil, err
			}
			if idToken == "" && token == "" {
				return nil, bridge.InvalidArguments("expected idToken or accessToken")
			}
			return &sdk.Credential{IDToken: idToken, AccessToken: token}, nil
		}},
		{name: "FirebaseBridgeTwitterAuthProvider", provider: sdk.ProviderTwitter, cache: cache, build: func(args bridge.Args) (*sdk.Credential, error) {
			token, err := args.String(0)
			if err != nil {
				return nil, err
			}
			secret, err := args.String(1)
			if err != nil {
				return nil, err
			}
			return &sdk.Credential{AccessToken: token, Secret: secret}, nil
		}},
		{name: "FirebaseBridgeEmailAuthProvider", provider: sdk.ProviderPassword, cache: cache, build: func(args bridge.Args) (*sdk.Credential, error) {
			email, err := args.String(0)
			if err != nil {
				return nil, err
			}
			password, err := args.String(1)
			if err != nil {
				return nil, err
			}
			return &sdk.Credential{Email: email, Password: password}, nil
		}},
	}
}

func accessToken(args bridge.Args) (*sdk.Credential, error) {
	token, err := args.String(0)
	if err != nil {
		return nil, err
	}
	return &sdk.Credential{AccessToken: token}, nil
}
