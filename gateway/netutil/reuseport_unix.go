//go:build unix

package netutil

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlReusePort sets SO_REUSEADDR and, where the kernel supports it,
// SO_REUSEPORT on the listening socket before bind(2), letting a rolling
// restart rebind the address immediately and (on Linux) letting multiple
// processes share the port for load distribution.
func controlReusePort(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if sockErr != nil {
			return
		}
		// SO_REUSEPORT is not defined on every unix this build tag covers
		// (notably absent pre-3.9 Linux kernels and some BSDs); ignore an
		// unsupported-option failure rather than refusing to listen.
		if setErr := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); setErr != nil {
			sockErr = nil
		}
	})
	if err != nil {
		return err
	}
	return sockErr
}
