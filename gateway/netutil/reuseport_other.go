//go:build !unix

package netutil

import "syscall"

// controlReusePort is a no-op on platforms without SO_REUSEPORT support
// (e.g. Windows); the listener still binds, just without address reuse.
func controlReusePort(network, address string, c syscall.RawConn) error {
	return nil
}
