package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/sdk/sdktest"
	"github.com/viant/firebridge/shared"
)

func TestModule(t *testing.T) {
	ctx := context.Background()
	module := NewModule(NewRegistry(sdktest.NewFactory(), zerolog.Nop()))
	methods := module.Methods()

	result, err := methods["initializeApp"](ctx, bridge.Args{map[string]interface{}{
		"APIKey":      "key",
		"databaseURL": "https://x.firebaseio.com",
		"unknown":     1,
	}, "x"})
	require.NoError(t, err)
	appMap := result.(map[string]interface{})
	assert.Equal(t, "x", appMap["name"])
	options := appMap["options"].(map[string]interface{})
	assert.Equal(t, "key", options["APIKey"])
	assert.Equal(t, "https://x.firebaseio.com", options["databaseURL"])
	assert.Nil(t, options["storageBucket"])

	_, err = methods["initializeApp"](ctx, bridge.Args{map[string]interface{}{"APIKey": 1}})
	assert.Equal(t, bridge.CodeInvalidArguments, bridge.Reject(err).Code)

	result, err = methods["initializeApp"](ctx, bridge.Args{map[string]interface{}{"databaseURL": "https://d.firebaseio.com"}, nil})
	require.NoError(t, err)
	assert.Equal(t, shared.DefaultApp, result.(map[string]interface{})["name"])

	result, err = methods["initializeDefaultApp"](ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, shared.DefaultApp, result.(map[string]interface{})["name"])

	result, err = methods["apps"](ctx, nil)
	require.NoError(t, err)
	assert.Len(t, result, 2)

	_, err = methods["deleteApp"](ctx, bridge.Args{"x"})
	require.NoError(t, err)
	result, err = methods["apps"](ctx, nil)
	require.NoError(t, err)
	assert.Len(t, result, 1)
}
