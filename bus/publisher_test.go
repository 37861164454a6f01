package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"

	"github.com/chainbourne/chainrelay/code"
	"github.com/chainbourne/chainrelay/corr"
	"github.com/chainbourne/chainrelay/wire"
)

// fakeSender lets the test decide, per topic, whether to fail the send.
type fakeSender struct {
	fail map[string]bool
}

func (f *fakeSender) Send(ctx context.Context, topic string, req *wire.Request) error {
	if f.fail[topic] {
		return errors.New("bus unreachable")
	}
	return nil
}

func jobsFor(topics ...string) []Job {
	jobs := make([]Job, len(topics))
	for i, t := range topics {
		jobs[i] = Job{Topic: t, Request: &wire.Request{Method: t}}
	}
	return jobs
}

func TestPublishFailureTakesBackSlot(t *testing.T) {
	table := corr.New()
	sender := &fakeSender{fail: map[string]bool{"bad": true}}
	pub := New(sender, table)

	ids := []string{"id-1"}
	slots, failed := pub.Publish(context.Background(), ids, jobsFor("bad"))

	if slots[0] != nil {
		t.Fatalf("slot should be nil after publish failure")
	}
	if failed[0] == nil || failed[0].ErrCode() != code.UpstreamUnavailable {
		t.Fatalf("failed[0] = %v, want UpstreamUnavailable", failed[0])
	}
	if table.Len() != 0 {
		t.Fatalf("table.Len() = %d, want 0 (slot must be taken back)", table.Len())
	}
}

func TestPublishSuccessInstallsSlot(t *testing.T) {
	table := corr.New()
	sender := &fakeSender{}
	pub := New(sender, table)

	slots, failed := pub.Publish(context.Background(), []string{"id-1"}, jobsFor("good"))
	if slots[0] == nil {
		t.Fatalf("expected an installed slot")
	}
	if failed[0] != nil {
		t.Fatalf("failed[0] = %v, want nil", failed[0])
	}
	if table.Len() != 1 {
		t.Fatalf("table.Len() = %d, want 1", table.Len())
	}
}

func TestAwaitFulfilment(t *testing.T) {
	table := corr.New()
	slot := corr.NewSlot("id-1", 0)
	table.Install("id-1", slot)

	go func() {
		time.Sleep(5 * time.Millisecond)
		slot.Deliver(corr.Delivery{Result: []byte(`"ok"`)})
	}()

	d := Await(context.Background(), table, "id-1", slot, time.Second)
	if d.Err != nil {
		t.Fatalf("Err = %v, want nil", d.Err)
	}
	if string(d.Result) != `"ok"` {
		t.Fatalf("Result = %s", d.Result)
	}
	if table.Len() != 0 {
		t.Fatalf("table.Len() = %d, want 0 after cleanup", table.Len())
	}
}

func TestAwaitTimeoutDropsSlot(t *testing.T) {
	defer leaktest.Check(t)()

	table := corr.New()
	slot := corr.NewSlot("id-1", 0)
	table.Install("id-1", slot)

	d := Await(context.Background(), table, "id-1", slot, 5*time.Millisecond)
	if d.Err == nil {
		t.Fatalf("expected a timeout error")
	}
	if code.FromError(d.Err) != code.UpstreamTimeout {
		t.Fatalf("FromError = %v, want UpstreamTimeout", code.FromError(d.Err))
	}
	if table.Len() != 0 {
		t.Fatalf("table.Len() = %d, want 0 after timeout cleanup", table.Len())
	}

	// A late delivery after the timeout must not panic or block.
	slot.Deliver(corr.Delivery{Result: []byte("late")})
}

func TestAwaitCancellationDropsSlot(t *testing.T) {
	defer leaktest.Check(t)()

	table := corr.New()
	slot := corr.NewSlot("id-1", 0)
	table.Install("id-1", slot)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := Await(ctx, table, "id-1", slot, time.Second)
	if d.Err == nil {
		t.Fatalf("expected a cancellation error")
	}
	if table.Len() != 0 {
		t.Fatalf("table.Len() = %d, want 0", table.Len())
	}
}

func TestAwaitAllPreservesBatchOrder(t *testing.T) {
	defer leaktest.Check(t)()

	table := corr.New()
	ids := []string{"id-0", "id-1", "id-2"}
	slots := make([]*corr.Slot, len(ids))
	for i, id := range ids {
		slots[i] = corr.NewSlot(id, i)
		table.Install(id, slots[i])
	}

	for i, slot := range slots {
		i, slot := i, slot
		go func() {
			time.Sleep(time.Duration(3-i) * time.Millisecond)
			slot.Deliver(corr.Delivery{Result: []byte(ids[i])})
		}()
	}

	deliveries := AwaitAll(context.Background(), table, ids, slots, time.Second)
	for i, d := range deliveries {
		if string(d.Result) != ids[i] {
			t.Errorf("deliveries[%d] = %s, want %s", i, d.Result, ids[i])
		}
	}
}
