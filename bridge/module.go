package bridge

import "context"

// Method represents a module operation
type Method func(ctx context.Context, args Args) (interface{}, error)

// Module represents a named set of operations exposed to the scripting layer
type Module interface {
	Name() string
	Methods() map[string]Method
	// Invalidate releases everything the module holds for its session
	Invalidate()
}

// Emitter delivers named events to the scripting layer
type Emitter interface {
	Emit(name string, payload interface{})
}

// EmitterFunc adapts a function to Emitter
type EmitterFunc func(name string, payload interface{})

// Emit emits event
func (f EmitterFunc) Emit(name string, payload interface{}) {
	f(name, payload)
}
