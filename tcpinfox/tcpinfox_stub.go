//go:build !darwin

package tcpinfox

func unreceived(int) (int, error) {
	return 0, ErrNoSupport
}

func unsent(int) (int, error) {
	return 0, ErrNoSupport
}

func connectionInfo(int) ([]byte, error) {
	return nil, ErrNoSupport
}

func socketFDInfo(int) ([]byte, error) {
	return nil, ErrNoSupport
}
