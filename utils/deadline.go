// Copyright © NGRSoftlab 2020-2025

package utils

import (
	"net"
	"time"
)

// deadlineConn pushes the deadline of the wrapped connection forward before every
// Read and Write, so a peer that stops responding fails the call after timeout
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

// NewDeadlineConn bounds each Read and Write on conn by timeout. A non-positive
// timeout returns conn unchanged.
func NewDeadlineConn(conn net.Conn, timeout time.Duration) net.Conn {
	if conn == nil || timeout <= 0 {
		return conn
	}
	return &deadlineConn{Conn: conn, timeout: timeout}
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}
