package rpc

import (
	"encoding/json"

	"github.com/chainbourne/chainrelay/code"
)

// Element is one validated (or rejected) member of a parsed JSON-RPC
// request — a Single, or one position within a Batch.
type Element struct {
	// ID is the client-supplied request id, verbatim, or nil for a
	// notification.
	ID json.RawMessage

	// Method and Params are populated only when Err == nil.
	Method string
	Params json.RawMessage

	// BatchIndex is this element's position in its enclosing batch, or -1
	// for a Single request.
	BatchIndex int

	// Err is non-nil if this element failed to parse or validate. Method
	// resolution (unknown method → -32601) happens one layer up, in the
	// extractor, since it depends on the methods.Registry.
	Err *Error
}

// IsNotification reports whether this element requires no reply.
func (e *Element) IsNotification() bool { return len(e.ID) == 0 }

// Parsed is the result of parsing an HTTP request body as JSON-RPC.
type Parsed struct {
	Batch    bool
	Elements []*Element
}

// Parse decodes body as a single JSON-RPC request object or a batch array,
// validating protocol version, method name, and params shape for each
// element (spec.md §4.B). It returns an error only when the body is not
// intact JSON at all — not even a bare object or array — mirroring the
// teacher's jmessages.parseJSON split between "unreadable" and "invalid."
//
// An empty batch array is reported as a single invalid-request Element, per
// spec.md §4.B ("Batch is non-empty... A batch with zero elements is
// invalid input").
func Parse(body []byte) (*Parsed, error) {
	msgs, err := parse(body)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		// An empty batch array still renders as a single error object, not a
		// one-element array: Assemble's array branch only triggers when Batch
		// is true, and per spec.md §8 this edge case is reported the same way
		// the JSON-RPC 2.0 spec's own empty-array example reports it.
		return &Parsed{Batch: false, Elements: []*Element{{
			ID:  json.RawMessage("null"),
			Err: errEmptyBatch,
		}}}, nil
	}

	batch := msgs[0].batch
	out := &Parsed{Batch: batch, Elements: make([]*Element, len(msgs))}
	for i, m := range msgs {
		idx := -1
		if batch {
			idx = i
		}
		id := m.id
		if !m.hasID {
			id = nil
		}
		el := &Element{ID: id, BatchIndex: idx}
		if m.err != nil {
			el.Err = m.err
		} else {
			el.Method = m.method
			el.Params = m.params
		}
		out.Elements[i] = el
	}
	return out, nil
}

// MethodNotFound builds the Output for an element whose method has no
// registered handler. Per spec.md §4.B.1 this happens without ever
// publishing anything upstream.
func MethodNotFound(id json.RawMessage, method string) *Output {
	return NewError(id, Errorf(code.MethodNotFound, "method not found").WithData(method))
}
