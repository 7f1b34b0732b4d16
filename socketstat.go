// Package socketstat takes point in time snapshots of the kernel's view of a
// TCP socket: buffer occupancy, congestion window, RTT, transfer counters and
// the protocol control block summary.
//
// A snapshot is built from four independent kernel queries. They are not
// atomic with respect to each other, so a snapshot of a busy connection may
// mix state from slightly different instants. If any query fails, no
// snapshot is returned.
//
// Only darwin is implemented. Elsewhere Get returns an error wrapping
// ErrNoSupport without issuing any system call.
package socketstat

import (
	"syscall"

	"github.com/m-lab/socketstat/metrics"
	"github.com/m-lab/socketstat/netx"
	"github.com/m-lab/socketstat/tcpinfox"
	"github.com/m-lab/socketstat/xnu"
)

// Errors that a failed snapshot may wrap. Failed system calls wrap the
// syscall.Errno they returned.
var (
	ErrNoSupport               = tcpinfox.ErrNoSupport
	ErrSizeMismatch            = xnu.ErrSizeMismatch
	ErrUnsupportedDiscriminant = xnu.ErrUnsupportedDiscriminant
)

// Stages of a snapshot, as reported in Error.Op.
const (
	OpPlatform       = "platform"
	OpControl        = "control"
	OpUnreceived     = "unreceived"
	OpUnsent         = "unsent"
	OpConnectionInfo = "connection_info"
	OpSocketInfo     = "socket_info"
)

// Error reports the stage that failed first and its cause.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "socketstat: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SocketStat is a snapshot of one TCP socket. It is a plain value: nothing
// in it refers back to the socket or the kernel.
type SocketStat struct {
	// Unreceived is the number of bytes waiting to be read.
	Unreceived int
	// Unsent is the number of bytes queued but not yet sent.
	Unsent int

	ConnectionInfo xnu.ConnectionInfo
	Socket         xnu.SocketInfo

	// TCP comes from the process file descriptor table. TCP.State is read
	// through another kernel path than ConnectionInfo.State and is reported
	// as is, even when the two disagree.
	TCP xnu.TCPSockInfo
}

// Get returns a snapshot of the socket |fd|. The descriptor is owned by the
// caller and must stay open for the duration of the call.
func Get(fd int) (*SocketStat, error) {
	return get(fd)
}

// GetConn returns a snapshot of the socket underlying |c|, typically a
// *net.TCPConn.
func GetConn(c syscall.Conn) (*SocketStat, error) {
	var (
		st  *SocketStat
		err error
	)
	cerr := netx.Control(c, func(fd int) {
		st, err = Get(fd)
	})
	if cerr != nil {
		return nil, &Error{Op: OpControl, Err: cerr}
	}
	return st, err
}

// assemble runs the queries in order and gives up at the first failure.
func assemble(q tcpinfox.Querier, fd int) (*SocketStat, error) {
	st, op, err := collect(q, fd)
	if err != nil {
		metrics.QueryErrors.WithLabelValues(op).Inc()
		return nil, &Error{Op: op, Err: err}
	}
	metrics.Snapshots.Inc()
	return st, nil
}

func collect(q tcpinfox.Querier, fd int) (*SocketStat, string, error) {
	unreceived, err := q.Unreceived(fd)
	if err != nil {
		return nil, OpUnreceived, err
	}
	unsent, err := q.Unsent(fd)
	if err != nil {
		return nil, OpUnsent, err
	}
	raw, err := q.ConnectionInfo(fd)
	if err != nil {
		return nil, OpConnectionInfo, err
	}
	ci, err := xnu.ParseConnectionInfo(raw)
	if err != nil {
		return nil, OpConnectionInfo, err
	}
	raw, err = q.SocketFDInfo(fd)
	if err != nil {
		return nil, OpSocketInfo, err
	}
	si, tcp, err := xnu.ParseSocketFDInfo(raw)
	if err != nil {
		return nil, OpSocketInfo, err
	}
	return &SocketStat{
		Unreceived:     unreceived,
		Unsent:         unsent,
		ConnectionInfo: *ci,
		Socket:         *si,
		TCP:            *tcp,
	}, "", nil
}
