package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/firebridge/app"
	"github.com/viant/firebridge/sdk/sdktest"
	"github.com/viant/firebridge/shared"
)

const document = `
listen: ":9000"
logLevel: debug
pollInterval: 500ms
apps:
  - name: demo
    dsn: firebase://demo?apiKey=key1
  - name: fast
    dsn: firebase://fast?pollInterval=100ms
`

func TestLoad(t *testing.T) {
	location := filepath.Join(t.TempDir(), "firebridge.yaml")
	require.NoError(t, os.WriteFile(location, []byte(document), 0o644))

	t.Setenv("FIREBRIDGE_LISTEN", ":9100")
	t.Setenv("FIREBRIDGE_DSN", "firebase://main")
	cfg, err := Load(location)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Listen)
	assert.Equal(t, "/ws", cfg.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)
	assert.Equal(t, []App{
		{Name: "demo", DSN: "firebase://demo?apiKey=key1"},
		{Name: "fast", DSN: "firebase://fast?pollInterval=100ms"},
		{Name: shared.DefaultApp, DSN: "firebase://main"},
	}, cfg.Apps)

	registry := app.NewRegistry(sdktest.NewFactory(), zerolog.Nop())
	require.NoError(t, cfg.Configure(context.Background(), registry))
	demo, err := registry.Initialize(context.Background(), "demo", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://demo.firebaseio.com", demo.Config().DatabaseURL)
	assert.Equal(t, "key1", demo.Config().APIKey)
	assert.Equal(t, 500*time.Millisecond, demo.Config().PollInterval)
	fast, err := registry.Initialize(context.Background(), "fast", nil)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, fast.Config().PollInterval)
	_, err = registry.Default()
	assert.Error(t, err)
	defaultApp, err := registry.Initialize(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://main.firebaseio.com", defaultApp.Config().DatabaseURL)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "/ws", cfg.Path)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Apps)
}

func TestConfig_Validate(t *testing.T) {
	var testCases = []struct {
		description string
		config      Config
		expectErr   bool
	}{
		{description: "valid", config: Config{Apps: []App{{Name: "a", DSN: "firebase://a"}}}},
		{description: "log level", config: Config{LogLevel: "loud"}, expectErr: true},
		{description: "path", config: Config{Path: "ws"}, expectErr: true},
		{description: "empty dsn", config: Config{Apps: []App{{Name: "a"}}}, expectErr: true},
		{description: "duplicate", config: Config{Apps: []App{{DSN: "firebase://a"}, {DSN: "firebase://b"}}}, expectErr: true},
	}
	for _, testCase := range testCases {
		testCase.config.Init()
		err := testCase.config.Validate()
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	cfg := &Config{}
	env := map[string]string{"FIREBRIDGE_POLL_INTERVAL": "soon"}
	err := cfg.applyEnv(func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})
	assert.Error(t, err)
}
