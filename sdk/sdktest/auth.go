package sdktest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/viant/firebridge/sdk"
)

const minPasswordLength = 6

type account struct {
	user      sdk.User
	password  string
	disabled  bool
	providers map[string]string
}

// Auth is an in-memory authentication backend
type Auth struct {
	mu                 sync.Mutex
	accounts           map[string]*account
	customTokens       map[string]string
	current            *account
	listeners          sdk.StateListeners
	requireRecentLogin bool
	tokens             int
	sent               []string
}

// NewAuth creates auth
func NewAuth() *Auth {
	return &Auth{accounts: map[string]*account{}, customTokens: map[string]string{}}
}

// AddUser registers email account
func (a *Auth) AddUser(email, password string) *sdk.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc := a.newAccount()
	acc.user.Email = email
	acc.user.ProviderID = sdk.ProviderFirebase
	acc.password = password
	acc.providers[sdk.ProviderPassword] = email
	ret := a.userOf(acc)
	return ret
}

// Disable disables account with email
func (a *Auth) Disable(email string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if acc := a.byEmail(email); acc != nil {
		acc.disabled = true
	}
}

// AddCustomToken registers custom token for uid
func (a *Auth) AddCustomToken(token, uid string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.customTokens[token] = uid
}

// RequireRecentLogin makes sensitive operations fail until the user reauthenticates
func (a *Auth) RequireRecentLogin(required bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requireRecentLogin = required
}

// Sent returns emails sent so far, formatted as "<kind>:<email>"
func (a *Auth) Sent() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string{}, a.sent...)
}

// Listeners returns number of state listeners
func (a *Auth) Listeners() int {
	return a.listeners.Len()
}

func (a *Auth) CurrentUser() *sdk.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	return a.userOf(a.current)
}

func (a *Auth) AddStateListener(listener sdk.StateListener) sdk.Registration {
	return a.listeners.Add(listener, a.CurrentUser())
}

func (a *Auth) SignInWithEmail(ctx context.Context, email, password string) (*sdk.User, error) {
	return a.signIn(func() (*account, error) {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		acc := a.byEmail(email)
		if acc == nil {
			return nil, sdk.NewAuthError(sdk.AuthUserNotFound, "There is no user record corresponding to this identifier.")
		}
		if acc.password != password {
			return nil, sdk.NewAuthError(sdk.AuthWrongPassword, "The password is invalid or the user does not have a password.")
		}
		return acc, nil
	})
}

func (a *Auth) SignInAnonymously(ctx context.Context) (*sdk.User, error) {
	return a.signIn(func() (*account, error) {
		acc := a.newAccount()
		acc.user.IsAnonymous = true
		acc.user.ProviderID = sdk.ProviderFirebase
		return acc, nil
	})
}

func (a *Auth) CreateUserWithEmail(ctx context.Context, email, password string) (*sdk.User, error) {
	return a.signIn(func() (*account, error) {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if len(password) < minPasswordLength {
			return nil, sdk.NewAuthError(sdk.AuthWeakPassword, "The password must be 6 characters long or more.")
		}
		if a.byEmail(email) != nil {
			return nil, sdk.NewAuthError(sdk.AuthEmailAlreadyInUse, "The email address is already in use by another account.")
		}
		acc := a.newAccount()
		acc.user.Email = email
		acc.user.ProviderID = sdk.ProviderFirebase
		acc.password = password
		acc.providers[sdk.ProviderPassword] = email
		return acc, nil
	})
}

func (a *Auth) SignInWithCredential(ctx context.Context, credential *sdk.Credential) (*sdk.User, error) {
	return a.signIn(func() (*account, error) {
		return a.resolveCredential(credential, true)
	})
}

func (a *Auth) SignInWithCustomToken(ctx context.Context, token string) (*sdk.User, error) {
	return a.signIn(func() (*account, error) {
		uid, ok := a.customTokens[token]
		if !ok {
			return nil, sdk.NewAuthError(sdk.AuthInvalidCustomToken, "The custom token format is incorrect.")
		}
		acc, ok := a.accounts[uid]
		if !ok {
			acc = &account{user: sdk.User{UID: uid, ProviderID: sdk.ProviderFirebase}, providers: map[string]string{}}
			a.accounts[uid] = acc
		}
		return acc, nil
	})
}

func (a *Auth) SendPasswordResetEmail(ctx context.Context, email string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := validateEmail(email); err != nil {
		return err
	}
	if a.byEmail(email) == nil {
		return sdk.NewAuthError(sdk.AuthUserNotFound, "There is no user record corresponding to this identifier.")
	}
	a.sent = append(a.sent, "reset:"+email)
	return nil
}

func (a *Auth) FetchProvidersForEmail(ctx context.Context, email string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	acc := a.byEmail(email)
	if acc == nil {
		return []string{}, nil
	}
	return providersOf(acc), nil
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

func (a *Auth) SendEmailVerification(ctx context.Context) error {
	return a.withCurrent(false, func(acc *account) error {
		a.sent = append(a.sent, "verify:"+acc.user.Email)
		return nil
	})
}

func (a *Auth) DeleteUser(ctx context.Context) error {
	err := a.withCurrent(true, func(acc *account) error {
		delete(a.accounts, acc.user.UID)
		a.current = nil
		return nil
	})
	if err == nil {
		a.listeners.Notify(nil)
	}
	return err
}

func (a *Auth) Token(ctx context.Context, forceRefresh bool) (string, error) {
	var token string
	err := a.withCurrent(false, func(acc *account) error {
		if forceRefresh {
			a.tokens++
		}
		token = fmt.Sprintf("token-%v-%v", acc.user.UID, a.tokens)
		return nil
	})
	return token, err
}

func (a *Auth) Link(ctx context.Context, credential *sdk.Credential) (*sdk.User, error) {
	var user *sdk.User
	err := a.withCurrent(false, func(acc *account) error {
		if _, ok := acc.providers[credential.Provider]; ok {
			return sdk.NewAuthError(sdk.AuthProviderAlreadyLinked, "User has already been linked to the given provider.")
		}
		if other, _ := a.resolveCredential(credential, false); other != nil && other != acc {
			return sdk.NewAuthError(sdk.AuthCredentialAlreadyInUse, "This credential is already associated with a different user account.")
		}
		if credential.Provider == sdk.ProviderPassword {
			if len(credential.Password) < minPasswordLength {
				return sdk.NewAuthError(sdk.AuthWeakPassword, "The password must be 6 characters long or more.")
			}
			acc.user.Email = credential.Email
			acc.password = credential.Password
		}
		acc.providers[credential.Provider] = credentialID(credential)
		acc.user.IsAnonymous = false
		user = a.userOf(acc)
		return nil
	})
	return user, err
}

func (a *Auth) Reauthenticate(ctx context.Context, credential *sdk.Credential) error {
	return a.withCurrent(false, func(acc *account) error {
		other, err := a.resolveCredential(credential, false)
		if err != nil {
			return err
		}
		if other != acc {
			return sdk.NewAuthError("user-mismatch", "The supplied credentials do not correspond to the previously signed in user.")
		}
		a.requireRecentLogin = false
		return nil
	})
}

func (a *Auth) Reload(ctx context.Context) (*sdk.User, error) {
	var user *sdk.User
	err := a.withCurrent(false, func(acc *account) error {
		if acc.disabled {
			return sdk.NewAuthError(sdk.AuthUserDisabled, "The user account has been disabled by an administrator.")
		}
		user = a.userOf(acc)
		return nil
	})
	return user, err
}

func (a *Auth) Unlink(ctx context.Context, providerID string) (*sdk.User, error) {
	var user *sdk.User
	err := a.withCurrent(false, func(acc *account) error {
		if _, ok := acc.providers[providerID]; !ok {
			return sdk.NewAuthError(sdk.AuthNoSuchProvider, "User was not linked to an account with the given provider.")
		}
		delete(acc.providers, providerID)
		user = a.userOf(acc)
		return nil
	})
	return user, err
}

func (a *Auth) UpdateEmail(ctx context.Context, email string) error {
	return a.withCurrent(true, func(acc *account) error {
		if err := validateEmail(email); err != nil {
			return err
		}
		if other := a.byEmail(email); other != nil && other != acc {
			return sdk.NewAuthError(sdk.AuthEmailAlreadyInUse, "The email address is already in use by another account.")
		}
		acc.user.Email = email
		acc.user.EmailVerified = false
		return nil
	})
}

func (a *Auth) UpdatePassword(ctx context.Context, password string) error {
	return a.withCurrent(true, func(acc *account) error {
		if len(password) < minPasswordLength {
			return sdk.NewAuthError(sdk.AuthWeakPassword, "The password must be 6 characters long or more.")
		}
		acc.password = password
		return nil
	})
}

func (a *Auth) UpdateProfile(ctx context.Context, profile sdk.Profile) error {
	return a.withCurrent(false, func(acc *account) error {
		if profile.DisplayName != nil {
			acc.user.DisplayName = *profile.DisplayName
		}
		if profile.PhotoURL != nil {
			acc.user.PhotoURL = *profile.PhotoURL
		}
		return nil
	})
}

func (a *Auth) signIn(resolve func() (*account, error)) (*sdk.User, error) {
	a.mu.Lock()
	acc, err := resolve()
	if err == nil && acc.disabled {
		err = sdk.NewAuthError(sdk.AuthUserDisabled, "The user account has been disabled by an administrator.")
	}
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	a.current = acc
	user := a.userOf(acc)
	a.mu.Unlock()
	a.listeners.Notify(user)
	return user, nil
}

func (a *Auth) withCurrent(sensitive bool, fn func(acc *account) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return sdk.ErrNoCurrentUser
	}
	if sensitive && a.requireRecentLogin {
		return sdk.NewAuthError(sdk.AuthRequiresRecentLogin, "This operation is sensitive and requires recent authentication.")
	}
	return fn(a.current)
}

func (a *Auth) resolveCredential(credential *sdk.Credential, create bool) (*account, error) {
	if credential == nil {
		return nil, sdk.NewAuthError(sdk.AuthInvalidCredential, "The supplied auth credential is malformed.")
	}
	if credential.Provider == sdk.ProviderPassword {
		acc := a.byEmail(credential.Email)
		if acc == nil {
			return nil, sdk.NewAuthError(sdk.AuthUserNotFound, "There is no user record corresponding to this identifier.")
		}
		if acc.password != credential.Password {
			return nil, sdk.NewAuthError(sdk.AuthWrongPassword, "The password is invalid or the user does not have a password.")
		}
		return acc, nil
	}
	id := credentialID(credential)
	if id == "" {
		return nil, sdk.NewAuthError(sdk.AuthInvalidCredential, "The supplied auth credential is malformed.")
	}
	for _, acc := range a.accounts {
		if acc.providers[credential.Provider] == id {
			return acc, nil
		}
	}
	if !create {
		return nil, sdk.NewAuthError(sdk.AuthUserNotFound, "There is no user record corresponding to this identifier.")
	}
	acc := a.newAccount()
	acc.user.ProviderID = sdk.ProviderFirebase
	acc.providers[credential.Provider] = id
	return acc, nil
}

func (a *Auth) newAccount() *account {
	acc := &account{user: sdk.User{UID: strings.ReplaceAll(uuid.NewString(), "-", "")}, providers: map[string]string{}}
	a.accounts[acc.user.UID] = acc
	return acc
}

func (a *Auth) byEmail(email string) *account {
	for _, acc := range a.accounts {
		if acc.user.Email != "" && strings.EqualFold(acc.user.Email, email) {
			return acc
		}
	}
	return nil
}

func (a *Auth) userOf(acc *account) *sdk.User {
	user := acc.user
	user.Providers = providersOf(acc)
	return &user
}

func providersOf(acc *account) []string {
	result := make([]string, 0, len(acc.providers))
	for provider := range acc.providers {
		result = append(result, provider)
	}
	sort.Strings(result)
	return result
}

func credentialID(credential *sdk.Credential) string {
	switch {
	case credential.IDToken != "":
		return credential.IDToken
	case credential.AccessToken != "":
		return credential.AccessToken
	}
	return credential.Email
}

func validateEmail(email string) error {
	if at := strings.Index(email, "@"); at <= 0 || at == len(email)-1 {
		return sdk.NewAuthError(sdk.AuthInvalidEmail, "The email address is badly formatted.")
	}
	return nil
}
