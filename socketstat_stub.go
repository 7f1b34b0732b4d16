//go:build !darwin

package socketstat

func get(int) (*SocketStat, error) {
	return nil, &Error{Op: OpPlatform, Err: ErrNoSupport}
}
