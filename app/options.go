package app

import (
	"fmt"

	"github.com/viant/firebridge/shared"
)

// Options represents app options exchanged with the scripting layer
type Options struct {
	APIKey        string `json:"APIKey,omitempty"`
	DatabaseURL   string `json:"databaseURL,omitempty"`
	GCMSenderID   string `json:"GCMSenderID,omitempty"`
	GoogleAppID   string `json:"googleAppID,omitempty"`
	StorageBucket string `json:"storageBucket,omitempty"`
	ProjectID     string `json:"projectID,omitempty"`
	ClientID      string `json:"clientID,omitempty"`
	BundleID      string `json:"bundleID,omitempty"`
}

func (o *Options) fields() map[string]*string {
	return map[string]*string{
		"APIKey":        &o.APIKey,
		"databaseURL":   &o.DatabaseURL,
		"GCMSenderID":   &o.GCMSenderID,
		"googleAppID":   &o.GoogleAppID,
		"storageBucket": &o.StorageBucket,
		"projectID":     &o.ProjectID,
		"clientID":      &o.ClientID,
		"bundleID":      &o.BundleID,
	}
}

// OptionsFromMap reads options from host map, unknown keys are ignored
func OptionsFromMap(source map[string]interface{}) (*Options, error) {
	ret := &Options{}
	for key, field := range ret.fields() {
		raw, ok := source[key]
		if !ok || raw == nil {
			continue
		}
		text, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("option %v: expected string, but had %T", key, raw)
		}
		*field = text
	}
	return ret, nil
}

// Map returns host representation, empty options are reported as null
func (o *Options) Map() map[string]interface{} {
	result := map[string]interface{}{}
	for key, field := range o.fields() {
		if *field == "" {
			result[key] = nil
			continue
		}
		result[key] = *field
	}
	return result
}

// OptionsFromConfig returns options of config
func OptionsFromConfig(cfg *shared.Config) *Options {
	return &Options{
		APIKey:        cfg.APIKey,
		DatabaseURL:   cfg.DatabaseURL,
		GCMSenderID:   cfg.GCMSenderID,
		GoogleAppID:   cfg.GoogleAppID,
		StorageBucket: cfg.StorageBucket,
		ProjectID:     cfg.ProjectID,
	}
}

// Apply overlays non empty options on config
func (o *Options) Apply(cfg *shared.Config) {
	if o.APIKey != "" {
		cfg.APIKey = o.APIKey
	}
	if o.DatabaseURL != "" {
		cfg.DatabaseURL = o.DatabaseURL
	}
	if o.GCMSenderID != "" {
		cfg.GCMSenderID = o.GCMSenderID
	}
	if o.GoogleAppID != "" {
		cfg.GoogleAppID = o.GoogleAppID
	}
	if o.StorageBucket != "" {
		cfg.StorageBucket = o.StorageBucket
	}
	if o.ProjectID != "" {
		cfg.ProjectID = o.ProjectID
	}
}
