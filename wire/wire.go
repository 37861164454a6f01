// Package wire defines the internal protocol-buffer-shaped messages that
// the gateway publishes to, and receives from, the outbound message bus.
//
// The JSON-RPC method catalog and the bus transport itself are out of scope
// for this package (see spec.md); what belongs here is the translation of an
// arbitrary JSON params/result value into a protobuf-typed payload, using the
// well-known structpb types so the envelope is genuinely protobuf-valued
// without requiring a bespoke generated schema for every RPC method.
package wire

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Request is the translated representation of one JSON-RPC call published on
// the outbound bus. CorrelationID is set by bus.Publisher.Publish when the
// request is published, and threads the eventual Response back to its PendingSlot.
type Request struct {
	CorrelationID string
	Method        string
	Params        *structpb.Value
}

// Response is the payload a bus consumer delivers back for a Request sharing
// its CorrelationID. Code is zero on success; a non-zero Code carries
// Message (and, typically, no Result).
type Response struct {
	CorrelationID string
	Code          int32
	Message       string
	Result        *structpb.Value
}

// NewParams converts a raw JSON params value (array, object, or absent) into
// its protobuf Value representation. A nil/empty raw message yields a nil
// Value, matching the "params omitted" case.
func NewParams(raw json.RawMessage) (*structpb.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("wire: decode params: %w", err)
	}
	return structpb.NewValue(v)
}

// ResultJSON renders r's Result back into a raw JSON value suitable for
// embedding in a JSON-RPC Output. A nil Result yields JSON null.
func (r *Response) ResultJSON() (json.RawMessage, error) {
	if r == nil || r.Result == nil {
		return json.RawMessage("null"), nil
	}
	bits, err := json.Marshal(r.Result.AsInterface())
	if err != nil {
		return nil, fmt.Errorf("wire: encode result: %w", err)
	}
	return bits, nil
}
