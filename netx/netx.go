// Package netx extends the functionality of the net package. It gives
// access to the descriptor underlying a connection without dup'ing it.
package netx

import (
	"errors"
	"syscall"
)

// ErrNotSyscallConn is returned when a connection does not expose its
// descriptor.
var ErrNotSyscallConn = errors.New("conn doesn't satisfy syscall.Conn")

// Control runs |f| with the descriptor of |c|. The descriptor is only valid
// while |f| runs and must not be closed or retained by it. Unlike
// TCPConn.File, Control does not dup the descriptor, so there is no second
// file to close.
func Control(c syscall.Conn, f func(fd int)) error {
	if c == nil {
		return ErrNotSyscallConn
	}
	raw, err := c.SyscallConn()
	if err != nil {
		return err
	}
	return raw.Control(func(fd uintptr) {
		// Note: casting to int is safe because a socket is int on Unix.
		f(int(fd))
	})
}
