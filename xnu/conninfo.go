package xnu

import "fmt"

// SizeofConnectionInfo is sizeof(struct tcp_connection_info).
const SizeofConnectionInfo = 112

// Offsets into struct tcp_connection_info.
const (
	ciState               = 0
	ciSndWscale           = 1
	ciRcvWscale           = 2
	ciOptions             = 4
	ciFlags               = 8
	ciRTO                 = 12
	ciMaxSeg              = 16
	ciSndSSThresh         = 20
	ciSndCwnd             = 24
	ciSndWnd              = 28
	ciSndSBBytes          = 32
	ciRcvWnd              = 36
	ciRTTCur              = 40
	ciSRTT                = 44
	ciRTTVar              = 48
	ciTFO                 = 52
	ciTxPackets           = 56
	ciTxBytes             = 64
	ciTxRetransmitBytes   = 72
	ciRxPackets           = 80
	ciRxBytes             = 88
	ciRxOutOfOrderBytes   = 96
	ciTxRetransmitPackets = 104
)

// ConnectionInfo is the decoded struct tcp_connection_info.
type ConnectionInfo struct {
	State     State
	SndWscale uint8 // window scale for the send window
	RcvWscale uint8 // window scale for the receive window
	Options   Options
	Flags     Flags

	RTO         uint32 // retransmit timeout, ms
	MaxSeg      uint32
	SndSSThresh uint32 // bytes
	SndCwnd     uint32 // bytes
	SndWnd      uint32 // bytes
	SndSBBytes  uint32 // send buffer bytes, including in-flight data
	RcvWnd      uint32 // bytes
	RTTCur      uint32 // ms
	SRTT        uint32 // ms
	RTTVar      uint32
	TFO         TFO

	TxPackets           uint64
	TxBytes             uint64
	TxRetransmitBytes   uint64
	RxPackets           uint64
	RxBytes             uint64
	RxOutOfOrderBytes   uint64
	TxRetransmitPackets uint64
}

// ParseConnectionInfo decodes a tcp_connection_info record. The slice must
// hold exactly SizeofConnectionInfo bytes, as reported by the kernel.
func ParseConnectionInfo(b []byte) (*ConnectionInfo, error) {
	if len(b) != SizeofConnectionInfo {
		return nil, fmt.Errorf("tcp_connection_info: %w: got %d bytes, want %d",
			ErrSizeMismatch, len(b), SizeofConnectionInfo)
	}
	return &ConnectionInfo{
		State:     State(b[ciState]),
		SndWscale: b[ciSndWscale],
		RcvWscale: b[ciRcvWscale],
		Options:   Options(u32(b, ciOptions)),
		Flags:     Flags(u32(b, ciFlags)),

		RTO:         u32(b, ciRTO),
		MaxSeg:      u32(b, ciMaxSeg),
		SndSSThresh: u32(b, ciSndSSThresh),
		SndCwnd:     u32(b, ciSndCwnd),
		SndWnd:      u32(b, ciSndWnd),
		SndSBBytes:  u32(b, ciSndSBBytes),
		RcvWnd:      u32(b, ciRcvWnd),
		RTTCur:      u32(b, ciRTTCur),
		SRTT:        u32(b, ciSRTT),
		RTTVar:      u32(b, ciRTTVar),
		TFO:         TFO(u32(b, ciTFO)),

		TxPackets:           u64(b, ciTxPackets),
		TxBytes:             u64(b, ciTxBytes),
		TxRetransmitBytes:   u64(b, ciTxRetransmitBytes),
		RxPackets:           u64(b, ciRxPackets),
		RxBytes:             u64(b, ciRxBytes),
		RxOutOfOrderBytes:   u64(b, ciRxOutOfOrderBytes),
		TxRetransmitPackets: u64(b, ciTxRetransmitPackets),
	}, nil
}
