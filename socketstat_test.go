package socketstat

import (
	"errors"
	"net"
	"syscall"
	"testing"

	"github.com/m-lab/go/rtx"
	"github.com/m-lab/socketstat/metrics"
	"github.com/m-lab/socketstat/xnu"
	"github.com/m-lab/socketstat/xnu/xnutest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeQuerier serves canned records and remembers which queries ran.
type fakeQuerier struct {
	unreceived, unsent int
	conninfo, sockinfo []byte
	fail               string
	calls              []string
}

var errFake = syscall.ENOTSOCK

func (f *fakeQuerier) call(op string) error {
	f.calls = append(f.calls, op)
	if f.fail == op {
		return errFake
	}
	return nil
}

func (f *fakeQuerier) Unreceived(int) (int, error) {
	return f.unreceived, f.call(OpUnreceived)
}

func (f *fakeQuerier) Unsent(int) (int, error) {
	return f.unsent, f.call(OpUnsent)
}

func (f *fakeQuerier) ConnectionInfo(int) ([]byte, error) {
	if err := f.call(OpConnectionInfo); err != nil {
		return nil, err
	}
	return f.conninfo, nil
}

func (f *fakeQuerier) SocketFDInfo(int) ([]byte, error) {
	if err := f.call(OpSocketInfo); err != nil {
		return nil, err
	}
	return f.sockinfo, nil
}

func newFake() *fakeQuerier {
	return &fakeQuerier{
		unreceived: 10,
		unsent:     20,
		conninfo:   xnutest.Established().Bytes(),
		sockinfo:   xnutest.TCPv4().Bytes(),
	}
}

func TestAssemble(t *testing.T) {
	before := testutil.ToFloat64(metrics.Snapshots)
	st, err := assemble(newFake(), 3)
	if err != nil {
		t.Fatalf("assemble() unexpected error = %v", err)
	}
	if st.Unreceived != 10 || st.Unsent != 20 {
		t.Errorf("queue sizes wrong; got %d/%d, want 10/20", st.Unreceived, st.Unsent)
	}
	if st.ConnectionInfo.State != xnu.StateEstablished || st.ConnectionInfo.SndCwnd != 4380 {
		t.Errorf("connection info wrong; got %+v", st.ConnectionInfo)
	}
	if st.Socket.Family != xnu.AFInet {
		t.Errorf("socket family wrong; got %d", st.Socket.Family)
	}
	if st.TCP.In.ForeignPort != 80 || st.TCP.MSS != 1368 {
		t.Errorf("tcp sockinfo wrong; got %+v", st.TCP)
	}
	if got := testutil.ToFloat64(metrics.Snapshots); got != before+1 {
		t.Errorf("Snapshots counter = %v, want %v", got, before+1)
	}
}

func TestAssembleStatesNotReconciled(t *testing.T) {
	f := newFake()
	ci := xnutest.Established()
	ci.State = uint8(xnu.StateCloseWait)
	f.conninfo = ci.Bytes()
	st, err := assemble(f, 3)
	rtx.Must(err, "assemble failed")
	if st.ConnectionInfo.State != xnu.StateCloseWait || st.TCP.State != xnu.StateEstablished {
		t.Errorf("states were altered; got %v and %v", st.ConnectionInfo.State, st.TCP.State)
	}
}

func TestAssembleFailFast(t *testing.T) {
	order := []string{OpUnreceived, OpUnsent, OpConnectionInfo, OpSocketInfo}
	for i, op := range order {
		t.Run(op, func(t *testing.T) {
			f := newFake()
			f.fail = op
			before := testutil.ToFloat64(metrics.QueryErrors.WithLabelValues(op))

			st, err := assemble(f, 3)
			if st != nil {
				t.Errorf("assemble() returned a partial snapshot: %+v", st)
			}
			var serr *Error
			if !errors.As(err, &serr) || serr.Op != op {
				t.Fatalf("assemble() error = %v, want *Error with Op %q", err, op)
			}
			if !errors.Is(err, errFake) {
				t.Errorf("assemble() error = %v does not wrap the errno", err)
			}
			var errno syscall.Errno
			if !errors.As(err, &errno) || errno != syscall.ENOTSOCK {
				t.Errorf("errno not preserved; got %v", errno)
			}
			if len(f.calls) != i+1 {
				t.Errorf("queries after the failure ran: %v", f.calls)
			}
			if got := testutil.ToFloat64(metrics.QueryErrors.WithLabelValues(op)); got != before+1 {
				t.Errorf("QueryErrors{op=%q} = %v, want %v", op, got, before+1)
			}
		})
	}
}

func TestAssembleDecodeFailures(t *testing.T) {
	udp := xnutest.TCPv4()
	udp.Kind = xnu.SockInfoIn
	v6 := xnutest.TCPv4()
	v6.Family = xnu.AFInet6

	tests := []struct {
		name   string
		modify func(f *fakeQuerier)
		op     string
		want   error
	}{
		{
			name:   "short-conninfo",
			modify: func(f *fakeQuerier) { f.conninfo = f.conninfo[:100] },
			op:     OpConnectionInfo,
			want:   ErrSizeMismatch,
		},
		{
			name:   "long-sockinfo",
			modify: func(f *fakeQuerier) { f.sockinfo = append(f.sockinfo, 0) },
			op:     OpSocketInfo,
			want:   ErrSizeMismatch,
		},
		{
			name:   "udp",
			modify: func(f *fakeQuerier) { f.sockinfo = udp.Bytes() },
			op:     OpSocketInfo,
			want:   ErrUnsupportedDiscriminant,
		},
		{
			name:   "ipv6",
			modify: func(f *fakeQuerier) { f.sockinfo = v6.Bytes() },
			op:     OpSocketInfo,
			want:   ErrUnsupportedDiscriminant,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake()
			tt.modify(f)
			st, err := assemble(f, 3)
			if st != nil {
				t.Errorf("assemble() returned a snapshot on decode failure")
			}
			var serr *Error
			if !errors.As(err, &serr) || serr.Op != tt.op || !errors.Is(err, tt.want) {
				t.Errorf("assemble() error = %v, want %v in %q", err, tt.want, tt.op)
			}
		})
	}
}

func TestGetConnClosed(t *testing.T) {
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	rtx.Must(err, "failed to listen during unit test")
	c, err := net.DialTCP("tcp", nil, ln.Addr().(*net.TCPAddr))
	rtx.Must(err, "failed to dial during unit test")
	ln.Close()
	c.Close()

	st, err := GetConn(c)
	var serr *Error
	if st != nil || !errors.As(err, &serr) || serr.Op != OpControl {
		t.Errorf("GetConn(closed) = %v, %v; want nil, control error", st, err)
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Op: OpUnsent, Err: syscall.EBADF}
	if got, want := err.Error(), "socketstat: unsent: "+syscall.EBADF.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
