package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/chainbourne/chainrelay/code"
)

// Error is the JSON-RPC error object, and also satisfies the error
// interface so it can be threaded through Go error-handling directly.
type Error struct {
	Code    code.Code       `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string { return fmt.Sprintf("[%d] %s", e.Code, e.Message) }

// ErrCode satisfies code.ErrCoder so code.FromError can recover e's code.
func (e *Error) ErrCode() code.Code { return e.Code }

// WithData returns a copy of e whose Data field carries the JSON encoding of
// v. If v is nil or fails to marshal, e is returned unchanged.
func (e *Error) WithData(v any) *Error {
	if v == nil {
		return e
	}
	data, err := json.Marshal(v)
	if err != nil {
		return e
	}
	return &Error{Code: e.Code, Message: e.Message, Data: data}
}

// Errorf builds an *Error with a formatted message.
func Errorf(c code.Code, msg string, args ...any) *Error {
	return &Error{Code: c, Message: fmt.Sprintf(msg, args...)}
}

var (
	errInvalidRequest = &Error{Code: code.ParseError, Message: "invalid request value"}
	errEmptyBatch     = &Error{Code: code.InvalidRequest, Message: "empty request batch"}
)

// Output is a single JSON-RPC reply object: either a Result or an Error,
// never both, carrying the originating JsonRpcId verbatim.
type Output struct {
	id     json.RawMessage
	result json.RawMessage
	err    *Error
}

// NewResult constructs a successful Output for id.
func NewResult(id json.RawMessage, result json.RawMessage) *Output {
	return &Output{id: id, result: result}
}

// NewError constructs a failing Output for id.
func NewError(id json.RawMessage, err *Error) *Output {
	return &Output{id: id, err: err}
}

// ID returns the output's JSON-RPC id, verbatim.
func (o *Output) ID() json.RawMessage { return o.id }

// Err returns the output's error, or nil on success.
func (o *Output) Err() *Error { return o.err }

// MarshalJSON renders o as a JSON-RPC 2.0 response object.
func (o *Output) MarshalJSON() ([]byte, error) {
	type wire struct {
		Version string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  json.RawMessage `json:"result,omitempty"`
		Error   *Error          `json:"error,omitempty"`
	}
	id := o.id
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return json.Marshal(wire{Version: Version, ID: id, Result: o.result, Error: o.err})
}
