package socketstat

import (
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/m-lab/go/rtx"
	"github.com/m-lab/socketstat/xnu"
)

// establish returns both ends of an established loopback connection.
func establish(t *testing.T) (*net.TCPConn, *net.TCPConn, func()) {
	ln, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	rtx.Must(err, "failed to listen during unit test")
	c, err := net.DialTCP("tcp4", nil, ln.Addr().(*net.TCPAddr))
	rtx.Must(err, "failed to dial during unit test")
	s, err := ln.AcceptTCP()
	rtx.Must(err, "failed to accept during unit test")
	return c, s, func() {
		c.Close()
		s.Close()
		ln.Close()
	}
}

func TestGetConnEstablished(t *testing.T) {
	c, s, done := establish(t)
	defer done()

	st, err := GetConn(c)
	if err != nil {
		t.Fatalf("GetConn() unexpected error = %v", err)
	}
	if got := st.ConnectionInfo.State.String(); got != "ESTABLISHED" {
		t.Errorf("connection state = %q, want ESTABLISHED", got)
	}
	if st.Unreceived < 0 || st.Unsent < 0 {
		t.Errorf("negative queue sizes %d/%d", st.Unreceived, st.Unsent)
	}
	if st.ConnectionInfo.SndCwnd == 0 || st.ConnectionInfo.MaxSeg == 0 {
		t.Errorf("cwnd/mss should be positive; got %d/%d", st.ConnectionInfo.SndCwnd, st.ConnectionInfo.MaxSeg)
	}
	if st.TCP.In.VFlag != xnu.IPv4 {
		t.Errorf("ip version = %v, want IPV4", st.TCP.In.VFlag)
	}
	local := c.LocalAddr().(*net.TCPAddr)
	remote := s.LocalAddr().(*net.TCPAddr)
	if int(st.TCP.In.LocalPort) != local.Port || int(st.TCP.In.ForeignPort) != remote.Port {
		t.Errorf("ports = %d->%d, want %d->%d",
			st.TCP.In.LocalPort, st.TCP.In.ForeignPort, local.Port, remote.Port)
	}
}

func TestGetConnUnreceived(t *testing.T) {
	c, s, done := establish(t)
	defer done()

	msg := []byte("hello, socket")
	_, err := s.Write(msg)
	rtx.Must(err, "failed to write")
	// Loopback delivery is asynchronous; poll briefly until the bytes show.
	var st *SocketStat
	for i := 0; i < 100; i++ {
		st, err = GetConn(c)
		rtx.Must(err, "GetConn failed")
		if st.Unreceived == len(msg) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if st.Unreceived != len(msg) {
		t.Errorf("Unreceived = %d, want %d", st.Unreceived, len(msg))
	}
}

func TestGetIdempotent(t *testing.T) {
	c, _, done := establish(t)
	defer done()

	a, err := GetConn(c)
	rtx.Must(err, "first GetConn failed")
	b, err := GetConn(c)
	rtx.Must(err, "second GetConn failed")
	if a.ConnectionInfo.State != b.ConnectionInfo.State || a.TCP.State != b.TCP.State {
		t.Errorf("state changed between snapshots: %v/%v vs %v/%v",
			a.ConnectionInfo.State, a.TCP.State, b.ConnectionInfo.State, b.TCP.State)
	}
	if a.TCP.In.LocalPort != b.TCP.In.LocalPort || a.TCP.In.ForeignPort != b.TCP.In.ForeignPort {
		t.Errorf("ports changed between snapshots")
	}
}

func TestGetInvalidDescriptor(t *testing.T) {
	st, err := Get(-1)
	if st != nil || err == nil {
		t.Fatalf("Get(-1) = %v, %v; want nil, error", st, err)
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		t.Errorf("Get(-1) error = %v, want a wrapped errno", err)
	}
}

func TestGetNotTCP(t *testing.T) {
	pc, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	rtx.Must(err, "failed to listen udp")
	defer pc.Close()

	st, err := GetConn(pc)
	if st != nil || err == nil {
		t.Errorf("GetConn(udp) = %v, %v; want nil, error", st, err)
	}
}
