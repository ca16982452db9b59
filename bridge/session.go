// Package bridge exposes modules of named operations to a scripting layer through asynchronous calls and named events.
package bridge

import (
	"context"
	"fmt"
	"sort"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/rs/zerolog"
)

// Session represents one host context: a set of module instances and the event channel they emit to
type Session struct {
	id          string
	mu          sync.RWMutex
	modules     map[string]Module
	emitter     Emitter
	logger      zerolog.Logger
	metrics     *Metrics
	invalidated bool
}

// Option represents session option
type Option func(s *Session)

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics sets metrics
func WithMetrics(metrics *Metrics) Option {
	return func(s *Session) {
		s.metrics = metrics
	}
}

// NewSession creates session emitting events to emitter
func NewSession(emitter Emitter, opts ...Option) *Session {
	ret := &Session{
		id:      NewHandle(),
		modules: map[string]Module{},
		emitter: emitter,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.logger = ret.logger.With().Str("session", ret.id).Logger()
	if ret.metrics != nil {
		ret.metrics.Sessions.Inc()
	}
	return ret
}

// ID returns session ID
func (s *Session) ID() string {
	return s.id
}

// Logger returns session logger
func (s *Session) Logger() zerolog.Logger {
	return s.logger
}

// Metrics returns session metrics, nil when not configured
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// Register adds modules
func (s *Session) Register(modules ...Module) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, module := range modules {
		s.modules[module.Name()] = module
	}
}

// Modules returns registered module names with their sorted method names
func (s *Session) Modules() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string][]string, len(s.modules))
	for name, module := range s.modules {
		var methods []string
		for method := range module.Methods() {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		result[name] = methods
	}
	return result
}

// Emit delivers event unless the session was invalidated
func (s *Session) Emit(name string, payload interface{}) {
	s.mu.RLock()
	invalidated := s.invalidated
	s.mu.RUnlock()
	if invalidated {
		s.countEvent("dropped")
		s.logger.Debug().Str("event", name).Msg("dropping event of invalidated session")
		return
	}
	s.emitter.Emit(name, payload)
	s.countEvent("emitted")
}

func (s *Session) countEvent(outcome string) {
	if s.metrics != nil {
		s.metrics.Events.WithLabelValues(outcome).Inc()
	}
}

// Call invokes module method, it never blocks: the method runs on its own goroutine
func (s *Session) Call(ctx context.Context, moduleName, methodName string, args []interface{}) *Pending {
	pending := newPending()
	s.mu.RLock()
	module, ok := s.modules[moduleName]
	invalidated := s.invalidated
	s.mu.RUnlock()
	if invalidated {
		s.complete(pending, moduleName, methodName, nil, fmt.Errorf("session %v was invalidated", s.id))
		return pending
	}
	if !ok {
		s.complete(pending, moduleName, methodName, nil, bridgeError("Unknown module "+moduleName, goerrors.CategoryRouting, CodeUnknownModule))
		return pending
	}
	method, ok := module.Methods()[methodName]
	if !ok {
		s.complete(pending, moduleName, methodName, nil, bridgeError(fmt.Sprintf("Unknown method %v.%v", moduleName, methodName), goerrors.CategoryRouting, CodeUnknownMethod))
		return pending
	}
	go func() {
		var result interface{}
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v.%v panicked: %v", moduleName, methodName, r)
				s.logger.Error().Str("module", moduleName).Str("method", methodName).Interface("panic", r).Msg("method panicked")
			}
			s.complete(pending, moduleName, methodName, result, err)
		}()
		result, err = method(ctx, Args(args))
	}()
	return pending
}

func (s *Session) complete(pending *Pending, moduleName, methodName string, result interface{}, err error) {
	outcome := "resolved"
	if err != nil {
		outcome = "rejected"
		rejection := Reject(err)
		s.logger.Debug().Str("module", moduleName).Str("method", methodName).Str("code", rejection.Code).Msg(rejection.Message)
		pending.reject(rejection)
	} else {
		s.logger.Debug().Str("module", moduleName).Str("method", methodName).Msg("resolved")
		pending.resolve(result)
	}
	if s.metrics != nil {
		s.metrics.Calls.WithLabelValues(moduleName, methodName, outcome).Inc()
	}
}

// Invalidate tears down every module, later events are dropped and later calls rejected
func (s *Session) Invalidate() {
	s.mu.Lock()
	if s.invalidated {
		s.mu.Unlock()
		return
	}
	s.invalidated = true
	modules := make([]Module, 0, len(s.modules))
	for _, module := range s.modules {
		modules = append(modules, module)
	}
	s.mu.Unlock()
	for _, module := range modules {
		module.Invalidate()
	}
	if s.metrics != nil {
		s.metrics.Sessions.Dec()
	}
	s.logger.Debug().Int("modules", len(modules)).Msg("session invalidated")
}
