package xnu

import (
	"fmt"
	"strings"
)

// Unknown is how any value outside of the documented range renders.
const Unknown = "unknown"

// State is a TCP FSM state, see bsd/netinet/tcp_fsm.h.
type State int32

// TCP states.
const (
	StateClosed State = iota
	StateListen
	StateSynSent
	StateSynReceived
	StateEstablished
	StateCloseWait
	StateFinWait1
	StateClosing
	StateLastAck
	StateFinWait2
	StateTimeWait
	StateReserved
)

var stateNames = [...]string{
	StateClosed:      "CLOSED",
	StateListen:      "LISTEN",
	StateSynSent:     "SYN_SENT",
	StateSynReceived: "SYN_RECEIVED",
	StateEstablished: "ESTABLISHED",
	StateCloseWait:   "CLOSE_WAIT",
	StateFinWait1:    "FIN_WAIT_1",
	StateClosing:     "CLOSING",
	StateLastAck:     "LAST_ACK",
	StateFinWait2:    "FIN_WAIT_2",
	StateTimeWait:    "TIME_WAIT",
	StateReserved:    "RESERVED",
}

// String returns the canonical state name, or Unknown.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return Unknown
	}
	return stateNames[s]
}

// IPVersion is the in_sockinfo insi_vflag value.
type IPVersion uint8

// IP versions.
const (
	IPv4 IPVersion = iniIPv4
	IPv6 IPVersion = iniIPv6
)

func (v IPVersion) String() string {
	switch v {
	case IPv4:
		return "IPV4"
	case IPv6:
		return "IPV6"
	default:
		return Unknown
	}
}

// Options is the tcpi_options bitmask of negotiated TCP options.
type Options uint32

// TCPCI_OPT_* bits.
const (
	OptTimestamps Options = 1 << iota
	OptSACK
	OptWScale
	OptECN
)

var optionNames = []string{"TIMESTAMPS", "SACK", "WSCALE", "ECN"}

func (o Options) String() string { return bitString(uint32(o), optionNames) }

// Flags is the tcpi_flags bitmask.
type Flags uint32

// TCPCI_FLAG_* bits.
const (
	FlagLossRecovery Flags = 1 << iota
	FlagReorderingDetected
)

var flagNames = []string{"LOSSRECOVERY", "REORDERING_DETECTED"}

func (f Flags) String() string { return bitString(uint32(f), flagNames) }

// TFO holds the TCP fast open bitfields of tcp_connection_info, lowest bit
// first.
type TFO uint32

var tfoNames = []string{
	"cookie_req",
	"cookie_rcv",
	"syn_loss",
	"syn_data_sent",
	"syn_data_acked",
	"syn_data_rcv",
	"cookie_req_rcv",
	"cookie_sent",
	"cookie_invalid",
	"cookie_wrong",
	"no_cookie_rcv",
	"heuristics_disable",
	"send_blackhole",
	"recv_blackhole",
	"onebyte_proxy",
}

func (t TFO) String() string { return bitString(uint32(t), tfoNames) }

// bitString joins the names of the set bits with '|'. Bits without a name
// are appended in hex, and zero renders as "0".
func bitString(v uint32, names []string) string {
	if v == 0 {
		return "0"
	}
	var parts []string
	for i, name := range names {
		if v&(1<<i) != 0 {
			parts = append(parts, name)
			v &^= 1 << i
		}
	}
	if v != 0 {
		parts = append(parts, fmt.Sprintf("%#x", v))
	}
	return strings.Join(parts, "|")
}
