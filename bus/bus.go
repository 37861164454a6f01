// Package bus carries translated requests across the boundary to the node's
// message bus and back, implementing the Publisher (spec.md §4.C) and
// Timeout Wrapper (spec.md §4.D) components: install a correlation slot,
// publish the envelope, then await fulfilment or time out — with guaranteed
// slot cleanup on every exit path.
package bus

import (
	"context"

	"github.com/chainbourne/chainrelay/wire"
)

// Sender delivers one translated request to the node's message bus on the
// given topic. Implementations must be safe for concurrent use: the
// Publisher calls Send from multiple goroutines, one per batch element.
//
// Send should return promptly; it reports only whether the request was
// successfully hand off to the bus transport, not whether (or when) the
// node replies — that arrives asynchronously through the correlation table
// the caller installed the request's slot into.
type Sender interface {
	Send(ctx context.Context, topic string, req *wire.Request) error
}

// Job bundles one outgoing request with the bus topic it is addressed to.
// The Publisher builds one Job per accepted batch element.
type Job struct {
	Topic   string
	Request *wire.Request
}
