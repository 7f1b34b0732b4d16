package socketstat

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/m-lab/socketstat/xnu"
)

// String renders the snapshot as indented "name: value" lines. Enumerated
// kernel codes are rendered by name; codes without a name render as
// "unknown" instead of their raw value.
func (s SocketStat) String() string {
	var b strings.Builder
	line(&b, 0, "unreceived", s.Unreceived)
	line(&b, 0, "unsent", s.Unsent)

	ci := &s.ConnectionInfo
	fmt.Fprintln(&b, "connection_info:")
	line(&b, 1, "state", ci.State)
	line(&b, 1, "snd_wscale", ci.SndWscale)
	line(&b, 1, "rcv_wscale", ci.RcvWscale)
	line(&b, 1, "options", ci.Options)
	line(&b, 1, "flags", ci.Flags)
	line(&b, 1, "rto", ci.RTO)
	line(&b, 1, "maxseg", ci.MaxSeg)
	line(&b, 1, "snd_ssthresh", ci.SndSSThresh)
	line(&b, 1, "snd_cwnd", ci.SndCwnd)
	line(&b, 1, "snd_wnd", ci.SndWnd)
	line(&b, 1, "snd_sbbytes", ci.SndSBBytes)
	line(&b, 1, "rcv_wnd", ci.RcvWnd)
	line(&b, 1, "rttcur", ci.RTTCur)
	line(&b, 1, "srtt", ci.SRTT)
	line(&b, 1, "rttvar", ci.RTTVar)
	line(&b, 1, "tfo", ci.TFO)
	line(&b, 1, "txpackets", ci.TxPackets)
	line(&b, 1, "txbytes", ci.TxBytes)
	line(&b, 1, "txretransmitbytes", ci.TxRetransmitBytes)
	line(&b, 1, "rxpackets", ci.RxPackets)
	line(&b, 1, "rxbytes", ci.RxBytes)
	line(&b, 1, "rxoutoforderbytes", ci.RxOutOfOrderBytes)
	line(&b, 1, "txretransmitpackets", ci.TxRetransmitPackets)

	si := &s.Socket
	fmt.Fprintln(&b, "socket_info:")
	line(&b, 1, "type", si.Type)
	line(&b, 1, "protocol", si.Protocol)
	line(&b, 1, "family", si.Family)
	line(&b, 1, "options", fmt.Sprintf("%#x", uint16(si.Options)))
	line(&b, 1, "linger", si.Linger)
	line(&b, 1, "state", fmt.Sprintf("%#x", uint16(si.State)))
	line(&b, 1, "qlen", si.QLen)
	line(&b, 1, "incqlen", si.IncQLen)
	line(&b, 1, "qlimit", si.QLimit)
	line(&b, 1, "timeo", si.Timeo)
	line(&b, 1, "error", si.Error)
	line(&b, 1, "oobmark", si.OOBMark)
	line(&b, 1, "rcv", sockbuf(si.Rcv))
	line(&b, 1, "snd", sockbuf(si.Snd))

	tcp := &s.TCP
	fmt.Fprintln(&b, "tcp_sockinfo:")
	line(&b, 1, "local", endpoint(tcp.In.LocalAddr, tcp.In.LocalPort))
	line(&b, 1, "foreign", endpoint(tcp.In.ForeignAddr, tcp.In.ForeignPort))
	line(&b, 1, "gencnt", tcp.In.GenCnt)
	line(&b, 1, "ip_flags", fmt.Sprintf("%#x", tcp.In.Flags))
	line(&b, 1, "flow", tcp.In.Flow)
	line(&b, 1, "ip_version", tcp.In.VFlag)
	line(&b, 1, "ttl", tcp.In.TTL)
	line(&b, 1, "tos", tcp.In.TOS)
	line(&b, 1, "state", tcp.State)
	line(&b, 1, "timer", fmt.Sprintf("rexmt=%d persist=%d keep=%d 2msl=%d",
		tcp.Timer[0], tcp.Timer[1], tcp.Timer[2], tcp.Timer[3]))
	line(&b, 1, "mss", tcp.MSS)
	line(&b, 1, "flags", fmt.Sprintf("%#x", tcp.Flags))
	line(&b, 1, "tp", fmt.Sprintf("%#x", tcp.TP))
	return b.String()
}

func line(b *strings.Builder, indent int, name string, v interface{}) {
	fmt.Fprintf(b, "%s%s: %v\n", strings.Repeat("  ", indent), name, v)
}

func sockbuf(sb xnu.SockbufInfo) string {
	return fmt.Sprintf("cc=%d hiwat=%d mbcnt=%d mbmax=%d lowat=%d flags=%#x timeo=%d",
		sb.CC, sb.Hiwat, sb.Mbcnt, sb.Mbmax, sb.Lowat, uint16(sb.Flags), sb.Timeo)
}

// endpoint renders an address and port, using "?" for an address the kernel
// did not tag with a known IP version.
func endpoint(addr netip.Addr, port uint16) string {
	if !addr.IsValid() {
		return fmt.Sprintf("?:%d", port)
	}
	return netip.AddrPortFrom(addr, port).String()
}
