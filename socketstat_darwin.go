package socketstat

import "github.com/m-lab/socketstat/tcpinfox"

func get(fd int) (*SocketStat, error) {
	return assemble(tcpinfox.Kernel{}, fd)
}
