// Copyright © NGRSoftlab 2020-2025

package ftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"path"
	"strconv"
	"strings"

	goftp "github.com/jlaffaye/ftp"

	"github.com/ngrsoftlab/ftppush"
	"github.com/ngrsoftlab/ftppush/utils"
)

// interface guard
var _ ftppush.Connection = (*Conn)(nil)

// serverConn is the subset of *ftp.ServerConn used by Conn
type serverConn interface {
	Login(user, password string) error
	CurrentDir() (string, error)
	ChangeDir(path string) error
	MakeDir(path string) error
	FileSize(path string) (int64, error)
	Stor(path string, r io.Reader) error
	Delete(path string) error
	Quit() error
}

// Conn is an ftppush.Connection over plain FTP
type Conn struct {
	cfg    *Config
	server serverConn
	mapper *utils.ReplyCodeMapper
	lost   error // set once the working directory could not be restored
}

// Dial connects and logs in to the server described by cfg.
// Control and data connections wait at most the timeout on every read and write.
func Dial(ctx context.Context, cfg *Config) (conn *Conn, err error) {
	defer utils.Recover("ftp dial", &err)

	dialer := &net.Dialer{Timeout: cfg.timeout}
	opts := []goftp.DialOption{
		goftp.DialWithContext(ctx),
		goftp.DialWithTimeout(cfg.timeout),
		goftp.DialWithDialFunc(func(network, address string) (net.Conn, error) {
			nc, err := dialer.DialContext(ctx, network, address)
			if err != nil {
				return nil, err
			}
			return utils.NewDeadlineConn(nc, cfg.timeout), nil
		}),
		goftp.DialWithDisabledEPSV(!cfg.epsv),
		goftp.DialWithDisabledUTF8(!cfg.utf8),
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	sc, err := goftp.Dial(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	if err := sc.Login(cfg.User, cfg.password); err != nil {
		_ = sc.Quit()
		return nil, newConn(cfg, sc).describe(fmt.Errorf("login as %s: %w", cfg.User, err))
	}

	return newConn(cfg, sc), nil
}

func newConn(cfg *Config, sc serverConn) *Conn {
	return &Conn{cfg: cfg, server: sc, mapper: utils.NewDefaultReplyCodeMapper()}
}

// Exists reports whether p is a directory (CWD succeeds) or a file (SIZE succeeds).
// The working directory is restored afterwards.
func (c *Conn) Exists(p string) (ok bool, err error) {
	defer utils.Recover("ftp exists", &err)

	if c.lost != nil {
		return false, c.lost
	}

	isDir, err := c.isDir(p)
	if err != nil {
		return false, err
	}
	if isDir {
		return true, nil
	}

	if _, err := c.server.FileSize(p); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, c.describe(fmt.Errorf("size %q: %w", p, err))
	}
	return true, nil
}

// MkdirAll creates p one component at a time, keeping a leading "/" when present
func (c *Conn) MkdirAll(p string) (err error) {
	defer utils.Recover("ftp mkdir", &err)

	if c.lost != nil {
		return c.lost
	}

	if p == "" {
		return nil
	}

	prefix := ""
	if strings.HasPrefix(p, "/") {
		prefix = "/"
	}

	current := prefix
	for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
		if part == "" || part == "." {
			continue
		}
		current = path.Join(current, part)

		isDir, err := c.isDir(current)
		if err != nil {
			return err
		}
		if isDir {
			continue
		}
		if err := c.server.MakeDir(current); err != nil {
			return c.describe(fmt.Errorf("mkdir %q: %w", current, err))
		}
	}
	return nil
}

// Upload stores content at remotePath with STOR
func (c *Conn) Upload(ctx context.Context, content *ftppush.FileContent, remotePath string, progress ftppush.ProgressFunc) (err error) {
	defer utils.Recover("ftp upload", &err)

	if c.lost != nil {
		return c.lost
	}

	reader, size, err := content.ReaderAndSize()
	if err != nil {
		return fmt.Errorf("ftp read source data: %w", err)
	}
	defer reader.Close()

	if err := c.server.Stor(remotePath, ftppush.NewProgressReader(ctx, reader, size, progress)); err != nil {
		return c.describe(fmt.Errorf("stor %q: %w", remotePath, err))
	}
	return nil
}

// Remove deletes the remote file p
func (c *Conn) Remove(p string) (err error) {
	defer utils.Recover("ftp remove", &err)

	if c.lost != nil {
		return c.lost
	}

	if err := c.server.Delete(p); err != nil {
		return c.describe(fmt.Errorf("delete %q: %w", p, err))
	}
	return nil
}

// Close sends QUIT and closes the control connection
func (c *Conn) Close() (err error) {
	defer utils.Recover("ftp close", &err)

	if c.server == nil {
		return utils.ErrConnectionNil
	}
	if err := c.server.Quit(); err != nil {
		return c.describe(fmt.Errorf("quit: %w", err))
	}
	return nil
}

// isDir changes into p and back. A 550 reply means "not a directory".
func (c *Conn) isDir(p string) (bool, error) {
	if p == "" {
		return false, nil
	}
	cwd, err := c.server.CurrentDir()
	if err != nil {
		return false, c.describe(fmt.Errorf("pwd: %w", err))
	}

	if err := c.server.ChangeDir(p); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, c.describe(fmt.Errorf("cwd %q: %w", p, err))
	}

	if err := c.server.ChangeDir(cwd); err != nil {
		// relative paths would now resolve against p, so the session is unusable
		c.lost = c.describe(fmt.Errorf("working directory lost, restore cwd %q: %w", cwd, err))
		return false, c.lost
	}
	return true, nil
}

// describe appends the meaning of an FTP reply code to err
func (c *Conn) describe(err error) error {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return fmt.Errorf("%w (%s)", err, c.mapper.Lookup(protoErr.Code))
	}
	return err
}

// isNotFound reports a permanent "file unavailable" reply
func isNotFound(err error) bool {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code == goftp.StatusFileUnavailable || protoErr.Code == goftp.StatusBadFileName
	}
	return false
}
