// Package tcpinfox performs the kernel queries behind a socket snapshot. Each
// query is a single synchronous system call against a caller owned
// descriptor; nothing is retried, cached, dup'ed or closed.
package tcpinfox

import "errors"

// ErrNoSupport is returned on systems where the queries are not implemented.
var ErrNoSupport = errors.New("socket stats not supported on this platform")

// recordSlack is extra room given to the kernel beyond the expected record
// size, so that a longer record shows up as a size mismatch when decoding
// instead of being silently truncated.
const recordSlack = 64

// Querier is the set of kernel queries needed to build a snapshot.
type Querier interface {
	// Unreceived returns the number of bytes waiting in the receive buffer.
	Unreceived(fd int) (int, error)
	// Unsent returns the number of bytes still queued for sending.
	Unsent(fd int) (int, error)
	// ConnectionInfo returns the raw tcp_connection_info record.
	ConnectionInfo(fd int) ([]byte, error)
	// SocketFDInfo returns the raw socket_fdinfo record of |fd| in the
	// current process.
	SocketFDInfo(fd int) ([]byte, error)
}

// Kernel implements Querier with real system calls.
type Kernel struct{}

// Unreceived issues ioctl(FIONREAD) on |fd|.
func (Kernel) Unreceived(fd int) (int, error) {
	return unreceived(fd)
}

// Unsent issues getsockopt(SOL_SOCKET, SO_NWRITE) on |fd|.
func (Kernel) Unsent(fd int) (int, error) {
	return unsent(fd)
}

// ConnectionInfo issues getsockopt(IPPROTO_TCP, TCP_CONNECTION_INFO) on |fd|
// and returns the bytes written by the kernel.
func (Kernel) ConnectionInfo(fd int) ([]byte, error) {
	return connectionInfo(fd)
}

// SocketFDInfo issues proc_pidfdinfo(getpid(), fd, PROC_PIDFDSOCKETINFO) and
// returns the bytes written by the kernel.
func (Kernel) SocketFDInfo(fd int) ([]byte, error) {
	return socketFDInfo(fd)
}
