package chanbus

import (
	"context"
	"testing"
	"time"

	"github.com/chainbourne/chainrelay/corr"
	"github.com/chainbourne/chainrelay/wire"
)

func TestSendEnqueuesEnvelope(t *testing.T) {
	b := New(1)
	req := &wire.Request{CorrelationID: "id-1", Method: "peerCount"}
	if err := b.Send(context.Background(), "node.peer_count", req); err != nil {
		t.Fatalf("Send: %v", err)
	}
	env := <-b.Envelopes()
	if env.Topic != "node.peer_count" || env.Request.CorrelationID != "id-1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestSendCopiesRequest(t *testing.T) {
	b := New(1)
	req := &wire.Request{CorrelationID: "id-1"}
	if err := b.Send(context.Background(), "t", req); err != nil {
		t.Fatalf("Send: %v", err)
	}
	req.CorrelationID = "mutated"
	env := <-b.Envelopes()
	if env.Request.CorrelationID != "id-1" {
		t.Fatalf("CorrelationID = %q, want id-1 (Send must copy)", env.Request.CorrelationID)
	}
}

func TestSendContextCancelled(t *testing.T) {
	b := New(0) // unbuffered, no reader
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Send(ctx, "t", &wire.Request{}); err == nil {
		t.Fatalf("expected an error from a cancelled send")
	}
}

func TestConsumerDeliversSuccess(t *testing.T) {
	b := New(1)
	table := corr.New()
	slot := corr.NewSlot("id-1", -1)
	table.Install("id-1", slot)

	handler := func(ctx context.Context, req *wire.Request) *wire.Response {
		return &wire.Response{CorrelationID: req.CorrelationID}
	}
	c := NewConsumer(b, table, handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	if err := b.Send(ctx, "node.peer_count", &wire.Request{CorrelationID: "id-1"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case d := <-slot.Chan():
		if d.Err != nil {
			t.Fatalf("Err = %v, want nil", d.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestConsumerDiscardsUnknownCorrelation(t *testing.T) {
	b := New(1)
	table := corr.New()
	handler := func(ctx context.Context, req *wire.Request) *wire.Response {
		return &wire.Response{CorrelationID: req.CorrelationID}
	}
	c := NewConsumer(b, table, handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	if err := b.Send(ctx, "t", &wire.Request{CorrelationID: "ghost"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	// No installed slot for "ghost"; Run must not panic. Give it a moment to
	// process, then confirm the table is still empty.
	time.Sleep(10 * time.Millisecond)
	if table.Len() != 0 {
		t.Fatalf("table.Len() = %d, want 0", table.Len())
	}
}
