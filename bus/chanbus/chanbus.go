// Package chanbus adapts the bus.Sender contract onto a plain buffered Go
// channel, the way spec.md §6 describes the outbound transport ("pushes
// (topic, BusRequest) pairs into a channel supplied at startup") without
// naming a concrete message-bus client.
//
// It is grounded on the teacher's channel.Direct: a pair of connected,
// in-memory channels that pass buffers without encoding or framing. Here
// there is only one direction of interest (gateway → bus) plus a reply path
// back into the correlation table, so chanbus carries typed Envelope and
// wire.Response values directly instead of Direct's raw []byte buffers.
package chanbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainbourne/chainrelay/wire"
)

// Envelope is one outbound (topic, Request) pair, the in-memory analogue of
// what a real bus transport would serialize onto the wire.
type Envelope struct {
	Topic   string
	Request *wire.Request
}

// Bus is a buffered, in-memory bus.Sender. Send enqueues an Envelope for a
// consumer to read from Envelopes; it never blocks past the channel's
// buffer capacity, matching channel.Direct's copy-then-send discipline so a
// slow consumer cannot corrupt a Request still owned by its publisher.
type Bus struct {
	out chan Envelope
}

// New returns a Bus whose internal channel has the given buffer capacity.
// A capacity of 0 makes Send synchronous with a reader of Envelopes.
func New(capacity int) *Bus {
	return &Bus{out: make(chan Envelope, capacity)}
}

// Send implements bus.Sender by copying req and enqueuing it under topic.
// It returns an error if the bus has been closed, or if ctx is done before
// the envelope could be enqueued (a full, unconsumed buffer).
func (b *Bus) Send(ctx context.Context, topic string, req *wire.Request) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("chanbus: send on closed bus")
		}
	}()
	cp := *req
	select {
	case b.out <- Envelope{Topic: topic, Request: &cp}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("chanbus: send: %w", ctx.Err())
	}
}

// Envelopes returns the channel a consumer reads published Envelopes from.
func (b *Bus) Envelopes() <-chan Envelope { return b.out }

// Close stops accepting new sends. Subsequent calls to Send return an
// error instead of panicking on the closed channel.
func (b *Bus) Close() error {
	close(b.out)
	return nil
}
