// Package xnu decodes the fixed-layout TCP and socket records that the darwin
// kernel hands back from getsockopt(TCP_CONNECTION_INFO) and
// proc_pidfdinfo(PROC_PIDFDSOCKETINFO).
//
// The decoders work on plain byte slices so that they can be exercised on any
// platform. Records are read field by field at fixed offsets in host byte
// order; the raw buffer never escapes, callers only see copied-out values.
//
// Layouts follow bsd/netinet/tcp.h and bsd/sys/proc_info.h of the LP64 darwin
// kernel, see https://github.com/apple/darwin-xnu.
package xnu

import (
	"encoding/binary"
	"errors"
)

// ErrSizeMismatch is returned when the kernel reported a record whose size is
// not exactly the size of the layout we decode.
var ErrSizeMismatch = errors.New("record size mismatch")

// ErrUnsupportedDiscriminant is returned when the socket_info discriminant
// (address family, socket kind) selects a union member other than the IPv4
// TCP one.
var ErrUnsupportedDiscriminant = errors.New("unsupported socket family or kind")

// Address families as numbered by darwin's sys/socket.h.
const (
	AFInet  = 2
	AFInet6 = 30
)

// Socket kinds selecting the soi_proto union member.
const (
	SockInfoGeneric   = 0
	SockInfoIn        = 1
	SockInfoTCP       = 2
	SockInfoUn        = 3
	SockInfoNDRV      = 4
	SockInfoKernEvent = 5
	SockInfoKernCtl   = 6
	SockInfoVsock     = 7
)

// hostOrder is the byte order of integers as the kernel writes them.
var hostOrder = binary.NativeEndian

// ntohs converts a port stored in network byte order in the low 16 bits of
// a host integer into a host order port number.
func ntohs(v int32) uint16 {
	var b [2]byte
	hostOrder.PutUint16(b[:], uint16(v))
	return binary.BigEndian.Uint16(b[:])
}

func u16(b []byte, off int) uint16 { return hostOrder.Uint16(b[off:]) }
func i16(b []byte, off int) int16  { return int16(hostOrder.Uint16(b[off:])) }
func u32(b []byte, off int) uint32 { return hostOrder.Uint32(b[off:]) }
func i32(b []byte, off int) int32  { return int32(hostOrder.Uint32(b[off:])) }
func u64(b []byte, off int) uint64 { return hostOrder.Uint64(b[off:]) }
