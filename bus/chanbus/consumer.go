package chanbus

import (
	"context"

	"github.com/chainbourne/chainrelay/code"
	"github.com/chainbourne/chainrelay/corr"
	"github.com/chainbourne/chainrelay/wire"
)

// Handler computes the node's reply to one bus Envelope. It runs on the
// consumer's goroutine, once per Envelope, in the order Envelopes were
// received.
type Handler func(ctx context.Context, req *wire.Request) *wire.Response

// Consumer reads Envelopes from a Bus and resolves each one's correlation
// slot with the Handler's reply. This is the loop-back relay used by
// cmd/chainrelayd for local/dev runs and by the test suite — the in-memory
// analogue of the original's std::sync::mpsc relay thread; it is not a
// production bus consumer.
type Consumer struct {
	bus     *Bus
	table   *corr.Table
	handler Handler
}

// NewConsumer returns a Consumer that resolves correlation slots in table
// using handler for every Envelope read from bus.
func NewConsumer(bus *Bus, table *corr.Table, handler Handler) *Consumer {
	return &Consumer{bus: bus, table: table, handler: handler}
}

// Run reads Envelopes until bus's channel is closed or ctx is done,
// delivering each Handler result to its correlation slot. A response whose
// correlation id has no installed slot (already timed out, or cancelled) is
// silently discarded by deliver.
func (c *Consumer) Run(ctx context.Context) {
	for {
		select {
		case env, ok := <-c.bus.Envelopes():
			if !ok {
				return
			}
			resp := c.handler(ctx, env.Request)
			c.deliver(resp)
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) deliver(resp *wire.Response) {
	if resp == nil {
		return
	}
	slot := c.table.Take(resp.CorrelationID)
	if slot == nil {
		return // already resolved by timeout or cancellation
	}
	if resp.Code != 0 {
		slot.Deliver(corr.Delivery{Err: &replyError{code: resp.Code, message: resp.Message}})
		return
	}
	result, err := resp.ResultJSON()
	if err != nil {
		slot.Deliver(corr.Delivery{Err: err})
		return
	}
	slot.Deliver(corr.Delivery{Result: result})
}

// replyError wraps a non-zero wire.Response code/message as a Go error.
type replyError struct {
	code    int32
	message string
}

func (e *replyError) Error() string { return e.message }

// ErrCode satisfies code.ErrCoder, letting code.FromError recover the node's
// reported error code directly instead of falling back to SystemError.
func (e *replyError) ErrCode() code.Code { return code.Code(e.code) }
