// Package jsruntime hosts bridged modules inside an embedded JavaScript runtime.
//
// Scripts see every registered module as NativeModules.<ModuleName>.<method>(...),
// each call returning a Promise, and subscribe to events with
// NativeAppEventEmitter.addListener(name, fn). Values cross into the runtime
// in their JSON form.
package jsruntime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/rs/zerolog"
	"github.com/viant/firebridge/bridge"
)

const (
	nativeModules = "NativeModules"
	eventEmitter  = "NativeAppEventEmitter"
)

// Host represents a scripting host: an event loop with one bridge session
type Host struct {
	loop      *eventloop.EventLoop
	session   *bridge.Session
	logger    zerolog.Logger
	mu        sync.Mutex
	running   bool
	ctx       context.Context
	globals   map[string]interface{}
	listeners map[string]map[int]goja.Callable
	seq       int
}

// New creates host, install registers modules with the host session
func New(install func(session *bridge.Session), opts ...bridge.Option) *Host {
	ret := &Host{
		loop:      eventloop.NewEventLoop(),
		globals:   map[string]interface{}{},
		listeners: map[string]map[int]goja.Callable{},
		ctx:       context.Background(),
	}
	ret.session = bridge.NewSession(bridge.EmitterFunc(ret.emit), opts...)
	ret.logger = ret.session.Logger().With().Str("component", "jsruntime").Logger()
	install(ret.session)
	return ret
}

// Session returns host session
func (h *Host) Session() *bridge.Session {
	return h.session
}

// Set exposes Go value as a global, it has to be called before Run
func (h *Host) Set(name string, value interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.globals[name] = value
}

// Run evaluates source and keeps the loop alive until ctx ends, only script evaluation errors are returned
func (h *Host) Run(ctx context.Context, source string) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return fmt.Errorf("host is already running")
	}
	h.running = true
	h.ctx = ctx
	globals := h.globals
	h.mu.Unlock()

	h.loop.Start()
	defer h.loop.Stop()
	evaluated := make(chan error, 1)
	h.loop.RunOnLoop(func(vm *goja.Runtime) {
		if err := h.install(vm, globals); err != nil {
			evaluated <- err
			return
		}
		_, err := vm.RunString(source)
		evaluated <- err
	})
	select {
	case <-ctx.Done():
		return nil
	case err := <-evaluated:
		if err != nil {
			return fmt.Errorf("failed to evaluate script: %w", err)
		}
	}
	<-ctx.Done()
	return nil
}

// Close invalidates the host session
func (h *Host) Close() error {
	h.session.Invalidate()
	return nil
}

func (h *Host) install(vm *goja.Runtime, globals map[string]interface{}) error {
	for name, value := range globals {
		if err := vm.Set(name, value); err != nil {
			return err
		}
	}
	modules := vm.NewObject()
	for moduleName, methods := range h.session.Modules() {
		module := vm.NewObject()
		for _, methodName := range methods {
			if err := module.Set(methodName, h.method(vm, moduleName, methodName)); err != nil {
				return err
			}
		}
		if err := modules.Set(moduleName, module); err != nil {
			return err
		}
	}
	if err := vm.Set(nativeModules, modules); err != nil {
		return err
	}
	emitter := vm.NewObject()
	if err := emitter.Set("addListener", h.addListener(vm)); err != nil {
		return err
	}
	return vm.Set(eventEmitter, emitter)
}

// method returns JS function calling module method, the result settles on the loop
func (h *Host) method(vm *goja.Runtime, moduleName, methodName string) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		args := make([]interface{}, len(call.Arguments))
		for i, arg := range call.Arguments {
			args[i] = arg.Export()
		}
		promise, resolve, reject := vm.NewPromise()
		pending := h.session.Call(h.ctx, moduleName, methodName, args)
		pending.Then(func(result interface{}, rejection *bridge.Rejection) {
			h.loop.RunOnLoop(func(vm *goja.Runtime) {
				if rejection != nil {
					reject(h.errorObject(vm, rejection))
					return
				}
				value, err := h.toValue(vm, result)
				if err != nil {
					reject(h.errorObject(vm, bridge.Reject(err)))
					return
				}
				resolve(value)
			})
		})
		return vm.ToValue(promise)
	}
}

func (h *Host) addListener(vm *goja.Runtime) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			panic(vm.NewTypeError("addListener: listener is not a function"))
		}
		h.seq++
		id := h.seq
		if h.listeners[name] == nil {
			h.listeners[name] = map[int]goja.Callable{}
		}
		h.listeners[name][id] = fn
		subscription := vm.NewObject()
		_ = subscription.Set("remove", func(goja.FunctionCall) goja.Value {
			delete(h.listeners[name], id)
			if len(h.listeners[name]) == 0 {
				delete(h.listeners, name)
			}
			return goja.Undefined()
		})
		return subscription
	}
}

// emit hands event over to the loop, listeners run on the loop goroutine
func (h *Host) emit(name string, payload interface{}) {
	h.loop.RunOnLoop(func(vm *goja.Runtime) {
		listeners := h.listeners[name]
		if len(listeners) == 0 {
			h.logger.Debug().Str("event", name).Msg("no listener")
			return
		}
		value, err := h.toValue(vm, payload)
		if err != nil {
			h.logger.Warn().Err(err).Str("event", name).Msg("failed to convert event payload")
			return
		}
		for _, listener := range listeners {
			if _, err := listener(goja.Undefined(), value); err != nil {
				h.logger.Warn().Err(err).Str("event", name).Msg("listener failed")
			}
		}
	})
}

// toValue converts Go value to its JSON shaped JS counterpart
func (h *Host) toValue(vm *goja.Runtime, value interface{}) (goja.Value, error) {
	if value == nil {
		return goja.Null(), nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var decoded interface{}
	if err = json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	return vm.ToValue(decoded), nil
}

// errorObject returns JS Error carrying rejection code
func (h *Host) errorObject(vm *goja.Runtime, rejection *bridge.Rejection) goja.Value {
	errorObject, err := vm.New(vm.Get("Error"), vm.ToValue(rejection.Message))
	if err != nil {
		return vm.ToValue(rejection)
	}
	_ = errorObject.Set("code", rejection.Code)
	return errorObject
}
