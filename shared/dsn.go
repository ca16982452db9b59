package shared

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	firebaseScheme = "firebase"
)

// ParseDSN parses the DSN string to a Config
func ParseDSN(dsn string) (*Config, error) {
	return ParseDSNContext(context.Background(), dsn)
}

// ParseDSNContext parses the DSN string to a Config, credentials referenced by the DSN are loaded with ctx
func ParseDSNContext(ctx context.Context, dsn string) (*Config, error) {
	URL, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %v", err)
	}
	if URL.Scheme != firebaseScheme {
		return nil, fmt.Errorf("invalid DSN scheme, expected %v but got %v", firebaseScheme, URL.Scheme)
	}
	database := URL.Host
	cfg := &Config{
		Values: URL.Query(),
	}
	if database != "" {
		cfg.DatabaseURL = fmt.Sprintf("https://%s.firebaseio.com", database)
		cfg.ProjectID = database
	}
	if len(cfg.Values) > 0 {
		if _, ok := cfg.Values[databaseURL]; ok {
			cfg.DatabaseURL = strings.TrimRight(cfg.Values.Get(databaseURL), "/")
		}
		if _, ok := cfg.Values[endpoint]; ok {
			cfg.Endpoint = cfg.Values.Get(endpoint)
		}
		if _, ok := cfg.Values[userAgent]; ok {
			cfg.UserAgent = cfg.Values.Get(userAgent)
		}
		if _, ok := cfg.Values[apiKey]; ok {
			cfg.APIKey = cfg.Values.Get(apiKey)
		}
		if _, ok := cfg.Values[app]; ok {
			cfg.App = cfg.Values.Get(app)
		}
		if _, ok := cfg.Values[credID]; ok {
			cfg.CredID = cfg.Values.Get(credID)
		}
		if _, ok := cfg.Values[credentialsJSON]; ok {
			cfg.CredentialJSON = []byte(cfg.Values.Get(credentialsJSON))
		}
		if _, ok := cfg.Values[credentialsKey]; ok {
			cfg.CredentialsKey = cfg.Values.Get(credentialsKey)
		}
		if _, ok := cfg.Values[credentialsURL]; ok {
			cfg.CredentialsURL = cfg.Values.Get(credentialsURL)
		}
		if _, ok := cfg.Values[quotaProject]; ok {
			cfg.QuotaProject = cfg.Values.Get(quotaProject)
		}
		if _, ok := cfg.Values[scopes]; ok {
			cfg.Scopes = cfg.Values[scopes]
		}
		if _, ok := cfg.Values[projectID]; ok {
			cfg.ProjectID = cfg.Values.Get(projectID)
		}
		if _, ok := cfg.Values[googleAppID]; ok {
			cfg.GoogleAppID = cfg.Values.Get(googleAppID)
		}
		if _, ok := cfg.Values[gcmSenderID]; ok {
			cfg.GCMSenderID = cfg.Values.Get(gcmSenderID)
		}
		if _, ok := cfg.Values[storageBucket]; ok {
			cfg.StorageBucket = cfg.Values.Get(storageBucket)
		}
		if _, ok := cfg.Values[pollInterval]; ok {
			if cfg.PollInterval, err = time.ParseDuration(cfg.Values.Get(pollInterval)); err != nil {
				return nil, fmt.Errorf("invalid %v: %w", pollInterval, err)
			}
		}
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("invalid DSN: database was empty")
	}

	if cfg.CredentialsKey != "" {
		if URL, err := base64.RawURLEncoding.DecodeString(cfg.CredentialsKey); err == nil {
			cfg.CredentialsKey = string(URL)
		}
	}

	if err = cfg.initialiseSecrets(ctx); err != nil {
		return nil, err
	}
	cfg.Init()
	return cfg, nil
}
