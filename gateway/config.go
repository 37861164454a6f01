// Package gateway implements the HTTP front door (spec.md §4.F): routing,
// CORS preflight handling, access logging, and the pipeline that drives a
// parsed JSON-RPC request through the bus Publisher and back into an HTTP
// reply.
package gateway

import (
	"time"

	"github.com/chainbourne/chainrelay/bus"
	"github.com/chainbourne/chainrelay/corr"
	"github.com/chainbourne/chainrelay/internal/obslog"
	"github.com/chainbourne/chainrelay/internal/telemetry"
	"github.com/chainbourne/chainrelay/methods"
)

// Config carries everything a Server needs that isn't derivable from the
// request itself, adapted from the teacher's *ServerOptions builder
// pattern (opts.go) into a single plain struct: chainrelay has no
// equivalent notion of per-call option functions, only one shape of server.
type Config struct {
	// Sender publishes translated requests to the outbound bus.
	Sender bus.Sender

	// Table is the correlation table shared with Sender's consumer side.
	Table *corr.Table

	// Registry resolves JSON-RPC method names to bus topics.
	Registry *methods.Registry

	// PublishTimeout bounds how long the gateway waits for a bus reply
	// before reporting a vendor timeout error for that element.
	PublishTimeout time.Duration

	// AllowOrigin is echoed as the CORS allow-origin value. An empty string
	// disables setting the header.
	AllowOrigin string

	// MaxBodyBytes bounds the size of an accepted request body. Zero means
	// no limit beyond what net/http itself enforces.
	MaxBodyBytes int64

	// Log receives one AccessLog entry per request and any debug-level
	// pipeline messages. A nil Log uses obslog.NewNop().
	Log *obslog.Logger

	// Metrics receives Prometheus observations. A nil Metrics value is
	// valid and makes every observation a no-op.
	Metrics *telemetry.Metrics
}

func (c *Config) logger() *obslog.Logger {
	if c.Log == nil {
		return obslog.NewNop()
	}
	return c.Log
}
