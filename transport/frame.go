package transport

import (
	"encoding/json"

	"github.com/viant/firebridge/bridge"
)

// Frame types
const (
	FrameCall   = "call"
	FrameResult = "result"
	FrameError  = "error"
	FrameEvent  = "event"
)

// Frame represents a websocket message, ID is echoed back verbatim
type Frame struct {
	Type    string            `json:"type"`
	ID      json.RawMessage   `json:"id,omitempty"`
	Module  string            `json:"module,omitempty"`
	Method  string            `json:"method,omitempty"`
	Args    []interface{}     `json:"args,omitempty"`
	Result  interface{}       `json:"result,omitempty"`
	Error   *bridge.Rejection `json:"error,omitempty"`
	Event   string            `json:"event,omitempty"`
	Payload interface{}       `json:"payload,omitempty"`
}
