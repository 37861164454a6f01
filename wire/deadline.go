package wire

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// WithDeadline annotates params (a JSON object or array translated to a
// protobuf Value) in place with deadline, stored under the "__deadline" key,
// when hasDeadline is true, and returns params. This lets a bus consumer on the other side of the outbound channel
// observe the same deadline the timeout wrapper is enforcing locally,
// without the gateway itself depending on the consumer's clock.
//
// If params is nil or not an object, or hasDeadline is false, params is
// returned unchanged.
func WithDeadline(deadline time.Time, hasDeadline bool, params *structpb.Value) *structpb.Value {
	if !hasDeadline || params == nil {
		return params
	}
	obj, ok := params.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return params
	}
	fields := obj.StructValue.GetFields()
	if fields == nil {
		fields = make(map[string]*structpb.Value, 1)
		obj.StructValue.Fields = fields
	}
	fields["__deadline"] = structpb.NewStringValue(deadline.In(time.UTC).Format(time.RFC3339Nano))
	return params
}
