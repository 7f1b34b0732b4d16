package tcpinfox

import (
	"unsafe"

	"github.com/m-lab/socketstat/xnu"
	"golang.org/x/sys/unix"
)

// From bsd/sys/proc_info.h. libproc's proc_pidfdinfo is a thin wrapper
// around the proc_info system call with these arguments.
const (
	procInfoCallPIDFDInfo = 3
	procPIDFDSocketInfo   = 3
)

// FIONREAD from sys/filio.h, _IOR('f', 127, int).
const fionread = 0x4004667f

func unreceived(fd int) (int, error) {
	return unix.IoctlGetInt(fd, fionread)
}

func unsent(fd int) (int, error) {
	return unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_NWRITE)
}

func connectionInfo(fd int) ([]byte, error) {
	buf := make([]byte, xnu.SizeofConnectionInfo+recordSlack)
	n := uint32(len(buf))
	_, _, errno := unix.Syscall6(
		unix.SYS_GETSOCKOPT,
		uintptr(fd),
		uintptr(unix.IPPROTO_TCP),
		uintptr(unix.TCP_CONNECTION_INFO),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&n)),
		0)
	if errno != 0 {
		return nil, errno
	}
	return buf[:n], nil
}

func socketFDInfo(fd int) ([]byte, error) {
	buf := make([]byte, xnu.SizeofSocketFDInfo+recordSlack)
	// getpid is read per call, never cached.
	n, _, errno := unix.Syscall6(
		unix.SYS_PROC_INFO,
		procInfoCallPIDFDInfo,
		uintptr(unix.Getpid()),
		procPIDFDSocketInfo,
		uintptr(fd),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)))
	if errno != 0 {
		return nil, errno
	}
	return buf[:n], nil
}
