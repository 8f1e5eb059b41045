// Copyright © NGRSoftlab 2020-2025

package ssh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	gossh "golang.org/x/crypto/ssh"

	"github.com/ngrsoftlab/ftppush/utils"
)

// Dial opens an SSH connection described by cfg and starts an SFTP session on it.
// The TCP dial is bounded by ctx and the timeout; every read and write after it
// waits at most the timeout.
func Dial(ctx context.Context, cfg *Config) (conn *Conn, err error) {
	defer utils.Recover("sftp dial", &err)

	sshCfg, err := cfg.ClientConfig()
	if err != nil {
		cfg.auth.close()
		return nil, fmt.Errorf("build client config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dialer := &net.Dialer{Timeout: cfg.timeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		cfg.auth.close()
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	// every later read and write, sftp init included, is bounded by the timeout
	netConn := utils.NewDeadlineConn(rawConn, cfg.timeout)

	c, chans, reqs, err := gossh.NewClientConn(netConn, addr, sshCfg)
	if err != nil {
		netConn.Close()
		cfg.auth.close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	client := gossh.NewClient(c, chans, reqs)

	sftpCli, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		cfg.auth.close()
		return nil, fmt.Errorf("sftp new client: %w", err)
	}

	conn = &Conn{cfg: cfg, sftp: sftpCli, ssh: client, stop: make(chan struct{})}
	go keepAlive(client, cfg.keepAliveInterval(), conn.stop)
	return conn, nil
}

// keepAlive sends keepalive@openssh.com every interval, so an idle session keeps
// refreshing its deadline. It stops on stop or on the first failed request.
func keepAlive(client *gossh.Client, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, _, err := client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
				return
			}
		}
	}
}

// closeAll stops the keepalive, closes the SFTP session, then the SSH connection, then the agent socket
func (c *Conn) closeAll() error {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	var errs []error
	if c.sftp != nil {
		if err := c.sftp.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sftp: %w", err))
		}
		c.sftp = nil
	}
	if c.ssh != nil {
		if err := c.ssh.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, fmt.Errorf("close ssh: %w", err))
		}
		c.ssh = nil
	}
	if c.cfg != nil && c.cfg.auth != nil {
		if err := c.cfg.auth.close(); err != nil {
			errs = append(errs, fmt.Errorf("close agent: %w", err))
		}
	}
	return errors.Join(errs...)
}
