package xnu

import (
	"fmt"
	"net/netip"
)

// SizeofSocketFDInfo is sizeof(struct socket_fdinfo), i.e.
// PROC_PIDFDSOCKETINFO_SIZE.
const SizeofSocketFDInfo = 792

// NumTimers is TSI_T_NTIMERS, the length of tcp_sockinfo.tcpsi_timer.
const NumTimers = 4

// Offsets into struct socket_fdinfo. The proc_fileinfo header takes the
// first 24 bytes and socket_info follows it.
const (
	soiSo       = 160
	soiPCB      = 168
	soiType     = 176
	soiProtocol = 180
	soiFamily   = 184
	soiOptions  = 188
	soiLinger   = 190
	soiState    = 192
	soiQLen     = 194
	soiIncQLen  = 196
	soiQLimit   = 198
	soiTimeo    = 200
	soiError    = 202
	soiOOBMark  = 204
	soiRcv      = 208
	soiSnd      = 232
	soiKind     = 256
	soiProto    = 264
)

// Offsets into struct sockbuf_info, relative to its start.
const (
	sbiCC    = 0
	sbiHiwat = 4
	sbiMbcnt = 8
	sbiMbmax = 12
	sbiLowat = 16
	sbiFlags = 20
	sbiTimeo = 22
)

// Offsets into struct tcp_sockinfo (and its leading in_sockinfo), relative
// to the start of the soi_proto union.
const (
	insiFPort  = 0
	insiLPort  = 4
	insiGenCnt = 8
	insiFlags  = 16
	insiFlow   = 20
	insiVFlag  = 24
	insiIPTTL  = 25
	insiFAddr  = 32
	insiLAddr  = 48
	insiV4TOS  = 64
	insiV6Hlim = 68
	insiV6Ck   = 72
	insiV6If   = 76
	insiV6Hops = 78

	tcpsiState = 80
	tcpsiTimer = 84
	tcpsiMSS   = 100
	tcpsiFlags = 104
	tcpsiTP    = 112

	// i46a_addr4 sits after three u32 of padding in struct in4in6_addr.
	in4in6Addr4 = 12
)

// insi_vflag bits.
const (
	iniIPv4 = 0x1
	iniIPv6 = 0x2
)

// SockbufInfo is struct sockbuf_info, describing one socket buffer.
type SockbufInfo struct {
	CC    uint32 // bytes in buffer
	Hiwat uint32 // SO_RCVBUF or SO_SNDBUF
	Mbcnt uint32
	Mbmax uint32
	Lowat uint32
	Flags int16
	Timeo int16
}

// SocketInfo holds the protocol independent part of struct socket_info.
type SocketInfo struct {
	So       uint64 // opaque kernel handle, never dereferenced
	PCB      uint64 // opaque kernel handle, never dereferenced
	Type     int32
	Protocol int32
	Family   int32
	Options  int16
	Linger   int16
	State    int16
	QLen     int16
	IncQLen  int16
	QLimit   int16
	Timeo    int16
	Error    uint16
	OOBMark  uint32
	Rcv      SockbufInfo
	Snd      SockbufInfo
	Kind     int32
}

// InSockInfo is struct in_sockinfo. Ports are already in host order.
type InSockInfo struct {
	ForeignPort uint16
	LocalPort   uint16
	GenCnt      uint64
	Flags       uint32
	Flow        uint32
	VFlag       IPVersion
	TTL         uint8

	ForeignAddr netip.Addr
	LocalAddr   netip.Addr

	TOS       uint8 // insi_v4.in4_tos
	V6Hlim    uint8
	V6Cksum   int32
	V6IfIndex uint16
	V6Hops    int16
}

// TCPSockInfo is struct tcp_sockinfo. Its State comes from a different
// kernel path than ConnectionInfo.State and the two may disagree.
type TCPSockInfo struct {
	In    InSockInfo
	State State
	Timer [NumTimers]int32 // rexmt, persist, keep, 2msl
	MSS   int32
	Flags uint32
	TP    uint64 // opaque TCP control block handle, never dereferenced
}

// ParseSocketFDInfo decodes a socket_fdinfo record. The slice must hold
// exactly SizeofSocketFDInfo bytes. The soi_proto union is only read when the
// discriminant says it holds an IPv4 TCP socket; any other family or kind
// returns ErrUnsupportedDiscriminant.
func ParseSocketFDInfo(b []byte) (*SocketInfo, *TCPSockInfo, error) {
	if len(b) != SizeofSocketFDInfo {
		return nil, nil, fmt.Errorf("socket_fdinfo: %w: got %d bytes, want %d",
			ErrSizeMismatch, len(b), SizeofSocketFDInfo)
	}
	si := parseSocketInfo(b)
	if si.Family != AFInet || si.Kind != SockInfoTCP {
		return nil, nil, fmt.Errorf("socket_fdinfo: %w: family %d, kind %d",
			ErrUnsupportedDiscriminant, si.Family, si.Kind)
	}
	tcp := parseTCPSockInfo(b[soiProto:])
	return si, tcp, nil
}

func parseSocketInfo(b []byte) *SocketInfo {
	return &SocketInfo{
		So:       u64(b, soiSo),
		PCB:      u64(b, soiPCB),
		Type:     i32(b, soiType),
		Protocol: i32(b, soiProtocol),
		Family:   i32(b, soiFamily),
		Options:  i16(b, soiOptions),
		Linger:   i16(b, soiLinger),
		State:    i16(b, soiState),
		QLen:     i16(b, soiQLen),
		IncQLen:  i16(b, soiIncQLen),
		QLimit:   i16(b, soiQLimit),
		Timeo:    i16(b, soiTimeo),
		Error:    u16(b, soiError),
		OOBMark:  u32(b, soiOOBMark),
		Rcv:      parseSockbufInfo(b[soiRcv:]),
		Snd:      parseSockbufInfo(b[soiSnd:]),
		Kind:     i32(b, soiKind),
	}
}

func parseSockbufInfo(b []byte) SockbufInfo {
	return SockbufInfo{
		CC:    u32(b, sbiCC),
		Hiwat: u32(b, sbiHiwat),
		Mbcnt: u32(b, sbiMbcnt),
		Mbmax: u32(b, sbiMbmax),
		Lowat: u32(b, sbiLowat),
		Flags: i16(b, sbiFlags),
		Timeo: i16(b, sbiTimeo),
	}
}

// parseTCPSockInfo reads the pri_tcp member of the soi_proto union.
func parseTCPSockInfo(b []byte) *TCPSockInfo {
	vflag := b[insiVFlag]
	tcp := &TCPSockInfo{
		In: InSockInfo{
			ForeignPort: ntohs(i32(b, insiFPort)),
			LocalPort:   ntohs(i32(b, insiLPort)),
			GenCnt:      u64(b, insiGenCnt),
			Flags:       u32(b, insiFlags),
			Flow:        u32(b, insiFlow),
			VFlag:       IPVersion(vflag),
			TTL:         b[insiIPTTL],
			ForeignAddr: parseAddr(b[insiFAddr:insiFAddr+16], vflag),
			LocalAddr:   parseAddr(b[insiLAddr:insiLAddr+16], vflag),
			TOS:         b[insiV4TOS],
			V6Hlim:      b[insiV6Hlim],
			V6Cksum:     i32(b, insiV6Ck),
			V6IfIndex:   u16(b, insiV6If),
			V6Hops:      i16(b, insiV6Hops),
		},
		State: State(i32(b, tcpsiState)),
		MSS:   i32(b, tcpsiMSS),
		Flags: u32(b, tcpsiFlags),
		TP:    u64(b, tcpsiTP),
	}
	for i := range tcp.Timer {
		tcp.Timer[i] = i32(b, tcpsiTimer+4*i)
	}
	return tcp
}

// parseAddr decodes the 16 byte in_sockinfo address union. Addresses are
// stored in network order and are copied as is.
func parseAddr(b []byte, vflag uint8) netip.Addr {
	switch {
	case vflag&iniIPv4 != 0:
		return netip.AddrFrom4([4]byte(b[in4in6Addr4 : in4in6Addr4+4]))
	case vflag&iniIPv6 != 0:
		return netip.AddrFrom16([16]byte(b[:16]))
	default:
		return netip.Addr{}
	}
}
