// Package netutil builds the gateway's listening socket (spec.md §4.G):
// SO_REUSEADDR/SO_REUSEPORT so a rolling restart can rebind the port
// immediately, and HTTP/1.1 keep-alive left enabled — the Go equivalent of
// the original's hyper::Server::from_tcp(listener).http1_keepalive(true).
// The accept queue depth is left at net.ListenConfig's own default; see
// DESIGN.md for why this package does not also request a deeper backlog.
package netutil

import (
	"context"
	"net"
	"time"
)

// keepAlivePeriod mirrors the original's http1_keepalive(true): connections
// accepted by this listener send TCP keep-alive probes rather than going
// idle indefinitely.
const keepAlivePeriod = 3 * time.Minute

// Listen opens a TCP listener on addr with SO_REUSEADDR and (where the
// platform supports it) SO_REUSEPORT set via a net.ListenConfig.Control
// callback, and keep-alives enabled so persistent HTTP/1.1 connections are
// not torn down between requests.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control:   controlReusePort,
		KeepAlive: keepAlivePeriod,
	}
	return lc.Listen(ctx, "tcp", addr)
}
