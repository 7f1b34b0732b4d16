// socketstat connects to a TCP endpoint and prints a snapshot of the kernel's
// view of the connection.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/m-lab/socketstat"
	"github.com/m-lab/socketstat/logging"
	"github.com/m-lab/socketstat/platformx"
)

var (
	addr    = flag.String("addr", "", "TCP endpoint (host:port) to connect to")
	timeout = flag.Duration("timeout", 10*time.Second, "Timeout for establishing the connection")
)

// run dials |address|, takes one snapshot of the connection and writes it
// to |w|.
func run(address string, dialTimeout time.Duration, w io.Writer) error {
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return fmt.Errorf("not a TCP connection: %T", conn)
	}
	st, err := socketstat.GetConn(tc)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, st.String())
	return err
}

func main() {
	flag.Parse()
	platformx.WarnIfNotFullySupported()
	if *addr == "" {
		logging.Logger.Fatal("-addr is required")
	}
	if err := run(*addr, *timeout, os.Stdout); err != nil {
		logging.Logger.WithError(err).WithField("addr", *addr).Error("socket snapshot failed")
		os.Exit(1)
	}
}
