package gateway

import (
	"context"
	"strconv"
	"time"

	"github.com/chainbourne/chainrelay/bus"
	"github.com/chainbourne/chainrelay/code"
	"github.com/chainbourne/chainrelay/corr"
	"github.com/chainbourne/chainrelay/internal/obslog"
	"github.com/chainbourne/chainrelay/rpc"
	"github.com/chainbourne/chainrelay/wire"
)

// process runs one parsed JSON-RPC request through method resolution,
// translation, publication, and await-or-timeout, then assembles the final
// reply bytes. It implements the Request Extractor (4.B) → Publisher (4.C)
// → Timeout Wrapper (4.D) → Response Assembler (4.E) chain end to end.
//
// The AccessLog summary is built separately, by accessLogInfo, so the caller
// can emit the log line before invoking process — see Server.serveRPC,
// which logs first and calls process second, per the "AccessLog is
// emitted... before any bus publish" invariant (spec.md §8).
// onInstall, if non-nil, is called synchronously, once Publish has
// returned, with the correlation id of each slot still installed in
// cfg.Table (slots whose send failed are already dropped). The HTTP boundary
// (Server.serveRPC) uses this to remember which slots a given request has
// live, so that a panic recovered above process can drop them rather than
// leaking them in the table forever.
func process(ctx context.Context, cfg *Config, parsed *rpc.Parsed, newID func() string, onInstall func(id string)) ([]byte, bool, error) {
	outputs := make([]*rpc.Output, 0, len(parsed.Elements))
	var toPublish []rpc.Element
	var jobs []bus.Job
	var ids []string
	var slotsOf []int // index into outputs reserved for each job, parallel to jobs

	appendOutput := func(o *rpc.Output) {
		outputs = append(outputs, o)
		if e := o.Err(); e != nil {
			cfg.Metrics.ObserveRPCError(strconv.Itoa(int(e.Code)))
		}
	}

	for _, el := range parsed.Elements {
		if el.Err != nil {
			if el.IsNotification() {
				continue
			}
			appendOutput(rpc.NewError(el.ID, el.Err))
			continue
		}

		desc, ok := cfg.Registry.Resolve(el.Method)
		if !ok {
			if el.IsNotification() {
				continue
			}
			appendOutput(rpc.MethodNotFound(el.ID, el.Method))
			continue
		}

		params, err := wire.NewParams(el.Params)
		if err != nil {
			if el.IsNotification() {
				continue
			}
			appendOutput(rpc.NewError(el.ID, rpc.Errorf(code.InvalidParams, "%v", err)))
			continue
		}

		req := &wire.Request{Method: el.Method, Params: params}
		if el.IsNotification() {
			// Fire-and-forget: no correlation slot, no reply expected.
			_ = cfg.Sender.Send(ctx, desc.Topic, req)
			continue
		}

		// Tell the bus consumer the same deadline the timeout wrapper will
		// enforce locally, so a slow handler on the other side can give up
		// without waiting on a reply nobody will collect.
		req.Params = wire.WithDeadline(time.Now().Add(cfg.PublishTimeout), cfg.PublishTimeout > 0, req.Params)

		outIdx := len(outputs)
		outputs = append(outputs, nil) // reserve this slot's position
		toPublish = append(toPublish, *el)
		jobs = append(jobs, bus.Job{Topic: desc.Topic, Request: req})
		ids = append(ids, newID())
		slotsOf = append(slotsOf, outIdx)
	}

	if len(jobs) > 0 {
		pub := bus.New(cfg.Sender, cfg.Table)
		slots, failed := pub.Publish(ctx, ids, jobs)
		cfg.Metrics.SetInFlight(cfg.Table.Len())

		// Elements whose publish failed outright are resolved immediately;
		// the rest await their bus reply concurrently, via AwaitAll, so one
		// slow sibling's timeout does not serialize behind another's.
		liveSlots := make([]*corr.Slot, len(slots))
		for i, slot := range slots {
			if slot == nil {
				o := rpc.NewError(toPublish[i].ID, vendorError(failed[i]))
				outputs[slotsOf[i]] = o
				cfg.Metrics.ObserveRPCError(strconv.Itoa(int(o.Err().Code)))
				continue
			}
			if onInstall != nil {
				onInstall(ids[i])
			}
			liveSlots[i] = slot
		}

		deliveries := bus.AwaitAll(ctx, cfg.Table, ids, liveSlots, cfg.PublishTimeout)
		cfg.Metrics.SetInFlight(cfg.Table.Len())
		for i, d := range deliveries {
			if liveSlots[i] == nil {
				continue // already resolved above as a publish failure
			}
			if d.Err != nil {
				o := rpc.NewError(toPublish[i].ID, vendorError(d.Err))
				outputs[slotsOf[i]] = o
				cfg.Metrics.ObserveRPCError(strconv.Itoa(int(o.Err().Code)))
				if code.FromError(d.Err) == code.UpstreamTimeout {
					cfg.Metrics.IncUpstreamTimeout()
				}
				continue
			}
			outputs[slotsOf[i]] = rpc.NewResult(toPublish[i].ID, d.Result)
		}
	}

	return rpc.Assemble(parsed.Batch, outputs)
}

// vendorError renders a bus-layer failure as an *rpc.Error carrying the
// matching vendor JSON-RPC code.
func vendorError(err error) *rpc.Error {
	c := code.FromError(err)
	return rpc.Errorf(c, "%v", err)
}

// accessLogInfo builds the obslog.RPCInfo summary for parsed, used by
// Server.serveRPC to emit the per-request log line before publication.
func accessLogInfo(parsed *rpc.Parsed) *obslog.RPCInfo {
	if parsed.Batch {
		return &obslog.RPCInfo{Batch: true, Count: len(parsed.Elements)}
	}
	if len(parsed.Elements) == 0 {
		return &obslog.RPCInfo{}
	}
	el := parsed.Elements[0]
	return &obslog.RPCInfo{ID: el.ID, Method: el.Method}
}
