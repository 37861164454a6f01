// Package code defines the JSON-RPC error code taxonomy used throughout
// chainrelay, including the vendor codes the gateway adds for outbound bus
// failures that have no standard JSON-RPC equivalent.
package code

import (
	"context"
	"errors"
	"fmt"
)

// A Code is an error response code, that satisfies the error interface.
type Code int32

func (c Code) Error() string {
	if s, ok := stdError[c]; ok {
		return s
	}
	return fmt.Sprintf("error code %d", c)
}

// Pre-defined error codes, including the standard ones from the JSON-RPC
// specification and some specific to this implementation.
const (
	ParseError     Code = -32700 // Invalid JSON received by the server
	InvalidRequest Code = -32600 // The JSON sent is not a valid request object
	MethodNotFound Code = -32601 // The method does not exist or is unavailable
	InvalidParams  Code = -32602 // Invalid method parameters
	InternalError  Code = -32603 // Internal JSON-RPC error

	// The JSON-RPC 2.0 specification reserves the range -32000 to -32099 for
	// implementation-defined server errors, such as the following:

	NoError          Code = -32099 // Denotes a nil error
	SystemError      Code = -32098 // Errors from the operating environment
	Cancelled        Code = -32097 // Request cancelled
	DeadlineExceeded Code = -32096 // Request deadline exceeded

	// Vendor codes specific to the HTTP-to-bus gateway. These describe
	// failures of the outbound bus rather than of the RPC call itself, and
	// have no standard JSON-RPC equivalent.
	UpstreamUnavailable Code = -32001 // publish to the outbound bus failed
	UpstreamTimeout     Code = -32002 // no response arrived within the configured deadline
)

var stdError = map[Code]string{
	ParseError:     "parse error",
	InvalidRequest: "invalid request",
	MethodNotFound: "method not found",
	InvalidParams:  "invalid parameters",
	InternalError:  "internal error",

	NoError:          "no error (success)",
	SystemError:      "system error",
	Cancelled:        "request cancelled",
	DeadlineExceeded: "deadline exceeded",

	UpstreamUnavailable: "upstream unavailable",
	UpstreamTimeout:     "upstream timeout",
}

// Register adds a new Code value with the specified message string.  This
// function will panic if the proposed value is already registered.
func Register(value int32, message string) Code {
	code := Code(value)
	if s, ok := stdError[code]; ok {
		panic(fmt.Sprintf("code %d is already registered for %q", code, s))
	}
	stdError[code] = message
	return code
}

// An ErrCoder is a value that can report an error code, such as *Error in
// package rpc. FromError uses this interface to classify arbitrary errors.
type ErrCoder interface {
	ErrCode() Code
}

// FromError classifies an arbitrary error into a Code. A nil error maps to
// NoError; an error implementing ErrCoder reports its own code; a context
// cancellation or deadline error maps to the matching vendor code; anything
// else is SystemError.
func FromError(err error) Code {
	switch {
	case err == nil:
		return NoError
	case errors.Is(err, context.Canceled):
		return Cancelled
	case errors.Is(err, context.DeadlineExceeded):
		return DeadlineExceeded
	}
	var ec ErrCoder
	if errors.As(err, &ec) {
		return ec.ErrCode()
	}
	return SystemError
}
