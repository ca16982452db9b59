package sdk

import "context"

// Provider identifiers
const (
	ProviderPassword = "password"
	ProviderFirebase = "firebase"
	ProviderGithub   = "github.com"
	ProviderFacebook = "facebook.com"
	ProviderGoogle   = "google.com"
	ProviderTwitter  = "twitter.com"
)

// User represents signed in user
type User struct {
	UID           string
	Email         string
	DisplayName   string
	PhotoURL      string
	ProviderID    string
	IsAnonymous   bool
	EmailVerified bool
	Providers     []string
}

// Profile represents profile change, nil fields are left unchanged and empty strings clear the attribute
type Profile struct {
	DisplayName *string
	PhotoURL    *string
}

// Credential represents a sign in credential issued by an identity provider
type Credential struct {
	Provider    string
	Email       string
	Password    string
	IDToken     string
	AccessToken string
	Secret      string
}

// StateListener is notified with the current user (nil when signed out)
type StateListener func(user *User)

// Auth represents authentication instance of one app; user operations act on the current user
type Auth interface {
	CurrentUser() *User
	// AddStateListener registers listener, it is called with the current state right away
	AddStateListener(listener StateListener) Registration
	SignInWithEmail(ctx context.Context, email, password string) (*User, error)
	SignInAnonymously(ctx context.Context) (*User, error)
	CreateUserWithEmail(ctx context.Context, email, password string) (*User, error)
	SignInWithCredential(ctx context.Context, credential *Credential) (*User, error)
	SignInWithCustomToken(ctx context.Context, token string) (*User, error)
	SendPasswordResetEmail(ctx context.Context, email string) error
	FetchProvidersForEmail(ctx context.Context, email string) ([]string, error)
	SignOut() error

	SendEmailVerification(ctx context.Context) error
	DeleteUser(ctx context.Context) error
	Token(ctx context.Context, forceRefresh bool) (string, error)
	Link(ctx context.Context, credential *Credential) (*User, error)
	Reauthenticate(ctx context.Context, credential *Credential) error
	Reload(ctx context.Context) (*User, error)
	Unlink(ctx context.Context, providerID string) (*User, error)
	UpdateEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, password string) error
	UpdateProfile(ctx context.Context, profile Profile) error
}
