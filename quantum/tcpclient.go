package quantum

import (
	"errors"
	"net"
	"os"
	"time"
)

const dialTimeout = 3 * time.Second

// TCPClient provides a TCP/IP connection to a quantum sensor attached to a
// serial-to-network bridge like ser2net.
type TCPClient struct {
	addr string
	conn net.Conn
}

// NewTCPClient returns a new TCP/IP connection instance.
// addr has the form "host:port".
func NewTCPClient(addr string) (*TCPClient, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, err
	}
	return &TCPClient{addr: addr, conn: conn}, nil
}

// TCPDialer is a Dialer opening TCP/IP connections.
func TCPDialer(addr string) (Conn, error) {
	return NewTCPClient(addr)
}

// Read implements the Conn interface.
// A read deadline exceeded is reported as short read.
func (c *TCPClient) Read(p []byte) (n int, err error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return 0, err
	}
	n, err = c.conn.Read(p)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return n, nil
	}
	return n, err
}

// Write implements the Conn interface.
func (c *TCPClient) Write(p []byte) (n int, err error) {
	return c.conn.Write(p)
}

// Close implements the Conn interface.
func (c *TCPClient) Close() error {
	return c.conn.Close()
}
