// Package xnutest builds darwin kernel records byte by byte, so that the
// decoders and everything above them can be tested on any platform.
package xnutest

import (
	"encoding/binary"
	"net/netip"
)

var order = binary.NativeEndian

// ConnectionInfo describes the interesting fields of a tcp_connection_info.
type ConnectionInfo struct {
	State     uint8
	SndWscale uint8
	RcvWscale uint8
	Options   uint32
	MaxSeg    uint32
	SndCwnd   uint32
	SRTT      uint32
	TFO       uint32
	TxBytes   uint64
	RxBytes   uint64
}

// Bytes returns the 112 byte kernel record.
func (c ConnectionInfo) Bytes() []byte {
	b := make([]byte, 112)
	b[0] = c.State
	b[1] = c.SndWscale
	b[2] = c.RcvWscale
	order.PutUint32(b[4:], c.Options)
	order.PutUint32(b[16:], c.MaxSeg)
	order.PutUint32(b[24:], c.SndCwnd)
	order.PutUint32(b[44:], c.SRTT)
	order.PutUint32(b[52:], c.TFO)
	order.PutUint64(b[64:], c.TxBytes)
	order.PutUint64(b[88:], c.RxBytes)
	return b
}

// Established returns a plausible record for an established connection.
func Established() ConnectionInfo {
	return ConnectionInfo{
		State:     4,
		SndWscale: 8,
		RcvWscale: 6,
		Options:   7,
		MaxSeg:    1368,
		SndCwnd:   4380,
		SRTT:      79,
	}
}

// SocketFDInfo describes the interesting fields of a socket_fdinfo.
type SocketFDInfo struct {
	Family int32
	Kind   int32
	RcvCC  uint32
	SndCC  uint32

	VFlag       uint8
	ForeignPort uint16 // host order, stored in network order
	LocalPort   uint16 // host order, stored in network order
	ForeignAddr netip.Addr
	LocalAddr   netip.Addr
	TTL         uint8

	State int32
	Timer [4]int32
	MSS   int32
	TP    uint64
}

// Bytes returns the 792 byte kernel record.
func (s SocketFDInfo) Bytes() []byte {
	b := make([]byte, 792)
	order.PutUint32(b[184:], uint32(s.Family))
	order.PutUint32(b[208:], s.RcvCC)
	order.PutUint32(b[232:], s.SndCC)
	order.PutUint32(b[256:], uint32(s.Kind))

	p := b[264:]
	putPort(p[0:], s.ForeignPort)
	putPort(p[4:], s.LocalPort)
	p[24] = s.VFlag
	p[25] = s.TTL
	putAddr(p[32:48], s.ForeignAddr)
	putAddr(p[48:64], s.LocalAddr)
	order.PutUint32(p[80:], uint32(s.State))
	for i, t := range s.Timer {
		order.PutUint32(p[84+4*i:], uint32(t))
	}
	order.PutUint32(p[100:], uint32(s.MSS))
	order.PutUint64(p[112:], s.TP)
	return b
}

// TCPv4 returns a plausible record for an established IPv4 TCP socket.
func TCPv4() SocketFDInfo {
	return SocketFDInfo{
		Family:      2,
		Kind:        2,
		VFlag:       1,
		ForeignPort: 80,
		LocalPort:   52621,
		ForeignAddr: netip.MustParseAddr("93.184.216.34"),
		LocalAddr:   netip.MustParseAddr("192.168.1.10"),
		TTL:         64,
		State:       4,
		Timer:       [4]int32{0, 0, 7200079, 0},
		MSS:         1368,
		TP:          9662996336038732135,
	}
}

// putPort stores a port the way the kernel does: the network order u_short
// copied into the low 16 bits of a host int.
func putPort(b []byte, port uint16) {
	var n [2]byte
	binary.BigEndian.PutUint16(n[:], port)
	order.PutUint32(b, uint32(order.Uint16(n[:])))
}

func putAddr(b []byte, addr netip.Addr) {
	switch {
	case addr.Is4():
		a := addr.As4()
		copy(b[12:16], a[:])
	case addr.Is6():
		a := addr.As16()
		copy(b, a[:])
	}
}
