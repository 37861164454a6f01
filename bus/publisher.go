package bus

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chainbourne/chainrelay/code"
	"github.com/chainbourne/chainrelay/corr"
)

// Outcome is the end state of one published Job: exactly one of Delivery or
// Err is meaningful, mirroring corr.Delivery's own result/error split.
type Outcome struct {
	Delivery corr.Delivery
	Err      *Error
}

// Error classifies a Publish/Await failure so the caller (the
// rpc/gateway layer) can render the right vendor JSON-RPC error without
// inspecting Go error strings.
type Error struct {
	Timeout bool // true if the node never replied before the deadline
	Cause   error
}

func (e *Error) Error() string {
	if e.Timeout {
		return "upstream timeout"
	}
	return "upstream unavailable: " + e.Cause.Error()
}

// ErrCode satisfies code.ErrCoder so code.FromError can classify e without
// inspecting its fields directly.
func (e *Error) ErrCode() code.Code {
	if e.Timeout {
		return code.UpstreamTimeout
	}
	return code.UpstreamUnavailable
}

// Publisher installs a correlation slot per Job and hands the translated
// request to a Sender. Each element of a batch is published independently:
// one element's publish failure does not block or fail its siblings,
// mirroring the teacher server's per-task dispatch in dispatch/invoke
// (server.go), generalized from handler invocation to bus publication.
type Publisher struct {
	sender Sender
	table  *corr.Table
}

// New returns a Publisher that installs slots into table and hands
// requests to sender.
func New(sender Sender, table *corr.Table) *Publisher {
	return &Publisher{sender: sender, table: table}
}

// Publish installs a slot for each Job, then attempts to send all of them
// concurrently via an errgroup.Group (the same fan-out-and-wait shape the
// teacher uses for concurrent notification handlers in dispatch). It
// returns one *corr.Slot per Job on success; if a Job's Send fails, its
// slot is taken back out of the table immediately and the returned slice
// holds nil at that position, with an "upstream unavailable" *Error
// recorded in failed.
func (p *Publisher) Publish(ctx context.Context, correlationIDs []string, jobs []Job) ([]*corr.Slot, []*Error) {
	slots := make([]*corr.Slot, len(jobs))
	failed := make([]*Error, len(jobs))

	var g errgroup.Group
	for i := range jobs {
		i := i
		slot := corr.NewSlot(correlationIDs[i], i)
		p.table.Install(correlationIDs[i], slot)
		slots[i] = slot

		g.Go(func() error {
			req := jobs[i].Request
			req.CorrelationID = correlationIDs[i]
			if err := p.sender.Send(ctx, jobs[i].Topic, req); err != nil {
				p.table.Drop(correlationIDs[i])
				slots[i] = nil
				failed[i] = &Error{Cause: err}
			}
			return nil
		})
	}
	// The errgroup here never returns a non-nil error: per-job failures are
	// recorded in failed rather than aborting siblings, so Wait always
	// succeeds and exists only to block until every Send has returned.
	_ = g.Wait()
	return slots, failed
}

// Await blocks until slot is fulfilled, ctx is done, or timeout elapses,
// whichever comes first. On every exit path the slot is removed from the
// table exactly once, satisfying the "at most one winner" cleanup guarantee
// (spec.md §5): a late bus reply arriving after Await has returned finds no
// slot installed (Table.Take returns nil) and is discarded by the consumer
// delivering it.
func Await(ctx context.Context, table *corr.Table, correlationID string, slot *corr.Slot, timeout time.Duration) corr.Delivery {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case d := <-slot.Chan():
		table.Drop(correlationID)
		return d
	case <-timer.C:
		table.Drop(correlationID)
		return corr.Delivery{Err: &Error{Timeout: true}}
	case <-ctx.Done():
		table.Drop(correlationID)
		return corr.Delivery{Err: &Error{Cause: ctx.Err()}}
	}
}

// AwaitAll runs Await over every slot concurrently, preserving each Job's
// original batch position in the returned slice, then reassembles the
// results back into the original element order (spec.md §4.D: "reorders
// fulfilled results back into original batch order").
func AwaitAll(ctx context.Context, table *corr.Table, correlationIDs []string, slots []*corr.Slot, timeout time.Duration) []corr.Delivery {
	out := make([]corr.Delivery, len(slots))
	var g errgroup.Group
	for i := range slots {
		i := i
		if slots[i] == nil {
			continue // already failed at publish time; caller fills this in
		}
		g.Go(func() error {
			out[i] = Await(ctx, table, correlationIDs[i], slots[i], timeout)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
