package shared

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/viant/scy"
	"google.golang.org/api/option"
)

const (
	endpoint        = "endpoint"
	userAgent       = "userAgent"
	apiKey          = "apiKey"
	app             = "app"
	credID          = "credID"
	credentialsJSON = "credJSON"
	credentialsKey  = "credKey"
	credentialsURL  = "credURL"
	quotaProject    = "quotaProject"
	scopes          = "scopes"
	projectID       = "projectID"
	googleAppID     = "googleAppID"
	gcmSenderID     = "gcmSenderID"
	storageBucket   = "storageBucket"
	pollInterval    = "pollInterval"
	databaseURL     = "databaseURL"

	// DefaultApp is the name of the default app
	DefaultApp = "__FIRAPP_DEFAULT"

	defaultPollInterval = 2 * time.Second
)

// Config represents firebase app config
type Config struct {
	DatabaseURL    string
	Values         url.Values
	Endpoint       string
	UserAgent      string
	APIKey         string
	App            string
	CredID         string
	CredentialJSON []byte
	CredentialsKey string
	CredentialsURL string
	QuotaProject   string
	Scopes         []string
	ProjectID      string
	GoogleAppID    string
	GCMSenderID    string
	StorageBucket  string
	PollInterval   time.Duration
}

// Clone returns config copy
func (c *Config) Clone() *Config {
	ret := *c
	ret.Values = url.Values{}
	for k, v := range c.Values {
		ret.Values[k] = append([]string{}, v...)
	}
	ret.Scopes = append([]string{}, c.Scopes...)
	ret.CredentialJSON = append([]byte{}, c.CredentialJSON...)
	return &ret
}

// Init applies defaults
func (c *Config) Init() {
	if c.App == "" {
		c.App = DefaultApp
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
}

func (c *Config) hasCredentials() bool {
	return len(c.CredentialJSON) > 0
}

// Options returns google api client options
func (c *Config) Options() []option.ClientOption {
	var opts []option.ClientOption
	if c.hasCredentials() {
		opts = append(opts, option.WithCredentialsJSON(c.CredentialJSON))
	} else if c.APIKey == "" {
		opts = append(opts, option.WithoutAuthentication())
	}
	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Endpoint))
	}
	if c.UserAgent != "" {
		opts = append(opts, option.WithUserAgent(c.UserAgent))
	}
	if c.QuotaProject != "" {
		opts = append(opts, option.WithQuotaProject(c.QuotaProject))
	}
	if len(c.Scopes) > 0 {
		opts = append(opts, option.WithScopes(c.Scopes...))
	}
	return opts
}

func (c *Config) initialiseSecrets(ctx context.Context) error {
	if len(c.CredentialJSON) > 0 {
		return nil
	}
	URL := c.CredentialsURL
	if URL == "" && c.CredID != "" {
		home, _ := os.UserHomeDir()
		URL = path.Join(home, ".secret", c.CredID+".json")
	}
	if URL == "" {
		return nil
	}
	resource := scy.NewResource(nil, URL, c.CredentialsKey)
	secret, err := scy.New().Load(ctx, resource)
	if err != nil {
		return fmt.Errorf("failed to load credentials %v: %w", URL, err)
	}
	c.CredentialJSON = []byte(secret.String())
	return nil
}
