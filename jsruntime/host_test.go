package jsruntime

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/firebridge/app"
	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/modules"
	"github.com/viant/firebridge/sdk/sdktest"
)

const script = `
var bridge = NativeModules;
NativeAppEventEmitter.addListener("authStateDidChange", function (state) {
  report("state", state.user === false ? "signed out" : state.user.email);
});
var removed = NativeAppEventEmitter.addListener("authStateDidChange", function () {
  report("removed", true);
});
removed.remove();
bridge.FirebaseBridgeApp.initializeApp({databaseURL: "https://demo.firebaseio.com", projectID: "demo"}, "demo")
  .then(function (app) {
    report("app", app.name);
    return bridge.FirebaseBridgeDatabase.child("demo", "https://demo.firebaseio.com", "users/ann");
  })
  .then(function (ref) {
    report("child", ref.key);
    return bridge.FirebaseBridgeAuth.addAuthStateDidChangeListener("demo");
  })
  .then(function () {
    return bridge.FirebaseBridgeAuth.signInWithEmail("demo", "ann@example.com", "secret1");
  });
bridge.FirebaseBridgeApp.deleteApp("missing").catch(function (e) {
  report("error", e.code + ":" + (e instanceof Error));
});
`

func newHost() *Host {
	factory := sdktest.NewFactory()
	factory.MemoryAuth("demo").AddUser("ann@example.com", "secret1")
	shared := modules.NewShared(app.NewRegistry(factory, zerolog.Nop()), nil)
	return New(func(session *bridge.Session) {
		modules.Install(session, shared)
	})
}

func TestHost_Run(t *testing.T) {
	host := newHost()
	defer host.Close()
	reports := make(chan [2]interface{}, 16)
	host.Set("report", func(kind string, value interface{}) {
		reports <- [2]interface{}{kind, value}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- host.Run(ctx, script) }()

	actual := map[string][]string{}
	for count := 0; count < 5; count++ {
		select {
		case report := <-reports:
			kind := report[0].(string)
			actual[kind] = append(actual[kind], fmt.Sprint(report[1]))
		case <-ctx.Done():
			t.Fatalf("timed out, received: %v", actual)
		}
	}
	assert.Equal(t, map[string][]string{
		"app":   {"demo"},
		"child": {"ann"},
		"error": {"app_not_found:true"},
		"state": {"signed out", "ann@example.com"},
	}, actual)

	cancel()
	require.NoError(t, <-done)
	assert.Error(t, host.Run(context.Background(), ""))
}

func TestHost_RunScriptError(t *testing.T) {
	host := newHost()
	defer host.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := host.Run(ctx, "this is not javascript(")
	assert.Error(t, err)
}

func TestHost_Close(t *testing.T) {
	host := newHost()
	require.NoError(t, host.Close())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := host.Session().Call(ctx, app.ModuleName, "apps", nil).Wait(ctx)
	assert.Error(t, err)
}
