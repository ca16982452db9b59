// Package identity implements authentication on top of the Identity Toolkit REST API.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
	"golang.org/x/oauth2"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

const (
	defaultTokenURL = "https://securetoken.googleapis.com/v1/token"
	// continueURI is required by the API for flows that never redirect
	continueURI = "http://localhost"
)

// Auth represents authentication instance of one app
type Auth struct {
	service    *identitytoolkit.Service
	apiKey     string
	tokenURL   string
	httpClient *http.Client
	logger     zerolog.Logger
	mu         sync.Mutex
	current    *session
	listeners  sdk.StateListeners
}

// session represents signed in user with its tokens, the id token is held as the access token
type session struct {
	user  *sdk.User
	token *oauth2.Token
}

// Option represents auth option
type Option func(a *Auth)

// WithTokenURL overrides secure token endpoint
func WithTokenURL(URL string) Option {
	return func(a *Auth) {
		a.tokenURL = URL
	}
}

// WithHTTPClient sets client used for token refresh
func WithHTTPClient(client *http.Client) Option {
	return func(a *Auth) {
		a.httpClient = client
	}
}

// New creates auth for app config, logger is taken from ctx
func New(ctx context.Context, cfg *shared.Config, clientOptions []option.ClientOption, opts ...Option) (*Auth, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("apiKey was empty")
	}
	serviceOptions := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.UserAgent != "" {
		serviceOptions = append(serviceOptions, option.WithUserAgent(cfg.UserAgent))
	}
	serviceOptions = append(serviceOptions, clientOptions...)
	service, err := identitytoolkit.NewService(ctx, serviceOptions...)
	if err != nil {
		return nil, fmt.Errorf("error initializing identity toolkit: %w", err)
	}
	ret := &Auth{
		service:    service,
		apiKey:     cfg.APIKey,
		tokenURL:   defaultTokenURL,
		httpClient: http.DefaultClient,
		logger:     zerolog.Ctx(ctx).With().Str("component", "identity").Str("app", cfg.App).Logger(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}

func (a *Auth) relyingparty() *identitytoolkit.RelyingpartyService {
	return a.service.Relyingparty
}

func (a *Auth) CurrentUser() *sdk.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	user := *a.current.user
	return &user
}

func (a *Auth) AddStateListener(listener sdk.StateListener) sdk.Registration {
	return a.listeners.Add(listener, a.CurrentUser())
}

// signedIn loads the account behind idToken and makes it the current user
func (a *Auth) signedIn(ctx context.Context, idToken, refreshToken string, expiresIn int64) (*sdk.User, error) {
	token := newToken(idToken, refreshToken, expiresIn)
	user, err := a.lookup(ctx, idToken)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.current = &session{user: user, token: token}
	a.mu.Unlock()
	a.logger.Debug().Str("uid", user.UID).Msg("signed in")
	a.listeners.Notify(user)
	ret := *user
	return &ret, nil
}

func newToken(idToken, refreshToken string, expiresIn int64) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  idToken,
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
}

// lookup returns account of idToken
func (a *Auth) lookup(ctx context.Context, idToken string) (*sdk.User, error) {
	resp, err := a.relyingparty().GetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		IdToken: idToken,
	}).Context(ctx).Do()
	if err != nil {
		return nil, authError(err)
	}
	if len(resp.Users) == 0 {
		return nil, sdk.NewAuthError(sdk.AuthUserNotFound, "There is no user record corresponding to this identifier.")
	}
	return userOf(resp.Users[0]), nil
}

func userOf(info *identitytoolkit.UserInfo) *sdk.User {
	ret := &sdk.User{
		UID:           info.LocalId,
		Email:         info.Email,
		DisplayName:   info.DisplayName,
		PhotoURL:      info.PhotoUrl,
		EmailVerified: info.EmailVerified,
		ProviderID:    sdk.ProviderFirebase,
	}
	for _, provider := range info.ProviderUserInfo {
		ret.Providers = append(ret.Providers, provider.ProviderId)
	}
	ret.IsAnonymous = len(ret.Providers) == 0 && ret.Email == ""
	return ret
}

func (a *Auth) SignInWithEmail(ctx context.Context, email, password string) (*sdk.User, error) {
	resp, err := a.relyingparty().VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, authError(err)
	}
	return a.signedIn(ctx, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
}

func (a *Auth) SignInAnonymously(ctx context.Context) (*sdk.User, error) {
	resp, err := a.relyingparty().SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{}).Context(ctx).Do()
	if err != nil {
		return nil, authError(err)
	}
	return a.signedIn(ctx, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
}

func (a *Auth) CreateUserWithEmail(ctx context.Context, email, password string) (*sdk.User, error) {
	resp, err := a.relyingparty().SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, authError(err)
	}
	return a.signedIn(ctx, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
}

func (a *Auth) SignInWithCredential(ctx context.Context, credential *sdk.Credential) (*sdk.User, error) {
	if credential != nil && credential.Provider == sdk.ProviderPassword {
		return a.SignInWithEmail(ctx, credential.Email, credential.Password)
	}
	resp, err := a.assert(ctx, credential, "")
	if err != nil {
		return nil, err
	}
	return a.signedIn(ctx, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
}

// assert exchanges identity provider credential, a non empty idToken links it to that user
func (a *Auth) assert(ctx context.Context, credential *sdk.Credential, idToken string) (*identitytoolkit.VerifyAssertionResponse, error) {
	postBody, err := postBody(credential)
	if err != nil {
		return nil, err
	}
	resp, err := a.relyingparty().VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		IdToken:           idToken,
		PostBody:          postBody,
		RequestUri:        continueURI,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, authError(err)
	}
	return resp, nil
}

func (a *Auth) SignInWithCustomToken(ctx context.Context, token string) (*sdk.User, error) {
	resp, err := a.relyingparty().VerifyCustomToken(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyCustomTokenRequest{
		Token:             token,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, authError(err)
	}
	return a.signedIn(ctx, resp.IdToken, resp.RefreshToken, resp.ExpiresIn)
}

func (a *Auth) SendPasswordResetEmail(ctx context.Context, email string) error {
	_, err := a.relyingparty().GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	return authError(err)
}

func (a *Auth) FetchProvidersForEmail(ctx context.Context, email string) ([]string, error) {
	resp, err := a.relyingparty().CreateAuthUri(&identitytoolkit.IdentitytoolkitRelyingpartyCreateAuthUriRequest{
		Identifier:  email,
		ContinueUri: continueURI,
	}).Context(ctx).Do()
	if err != nil {
		return nil, authError(err)
	}
	if resp.AllProviders == nil {
		return []string{}, nil
	}
	return resp.AllProviders, nil
}

func (a *Auth) SignOut() error {
	a.mu.Lock()
	changed := a.current != nil
	a.current = nil
	a.mu.Unlock()
	if changed {
		a.listeners.Notify(nil)
	}
	return nil
}
