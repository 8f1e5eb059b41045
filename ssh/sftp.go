package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pkg/sftp"
	gossh "golang.org/x/crypto/ssh"

	"github.com/ngrsoftlab/ftppush"
	"github.com/ngrsoftlab/ftppush/utils"
)

// interface guard: ensure Conn satisfies ftppush.Connection
var _ ftppush.Connection = (*Conn)(nil)

// Conn is an ftppush.Connection over an SFTP session
type Conn struct {
	cfg  *Config
	sftp *sftp.Client
	ssh  *gossh.Client // nil when the session runs over a plain pipe
	stop chan struct{} // stops the keepalive goroutine
}

// NewConn wraps an established SFTP client, e.g. one created with sftp.NewClientPipe.
// Only options that affect the session itself (buffer size) make sense here.
func NewConn(client *sftp.Client, opts ...ConfigOption) (*Conn, error) {
	if client == nil {
		return nil, utils.ErrConnectionNil
	}
	cfg := &Config{timeout: defaultTimeout, bufferSize: defaultSFTPBufferSize, auth: &auth{}}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("config option failed: %w", err)
		}
	}
	return &Conn{cfg: cfg, sftp: client}, nil
}

// Exists stats p. A missing entry is not an error.
func (c *Conn) Exists(p string) (ok bool, err error) {
	defer utils.Recover("sftp stat", &err)
	if c.sftp == nil {
		return false, utils.ErrConnectionNil
	}

	if _, err := c.sftp.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("sftp stat %q: %w", p, err)
	}
	return true, nil
}

// MkdirAll creates p and its parents
func (c *Conn) MkdirAll(p string) (err error) {
	defer utils.Recover("sftp mkdir", &err)
	if c.sftp == nil {
		return utils.ErrConnectionNil
	}

	if err := c.sftp.MkdirAll(p); err != nil {
		return fmt.Errorf("sftp create dir %q: %w", p, err)
	}
	return nil
}

// Upload creates (or truncates) remotePath and copies content into it
func (c *Conn) Upload(ctx context.Context, content *ftppush.FileContent, remotePath string, progress ftppush.ProgressFunc) (err error) {
	defer utils.Recover("sftp upload", &err)
	if c.sftp == nil {
		return utils.ErrConnectionNil
	}

	reader, size, err := content.ReaderAndSize()
	if err != nil {
		return fmt.Errorf("sftp read source data: %w", err)
	}
	defer reader.Close()

	f, err := c.sftp.OpenFile(remotePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("sftp open file %q: %w", remotePath, err)
	}

	buf := make([]byte, c.cfg.bufferSize)
	if _, err := io.CopyBuffer(writerOnly{f}, ftppush.NewProgressReader(ctx, reader, size, progress), buf); err != nil {
		f.Close()
		return fmt.Errorf("sftp write remote data: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("sftp close remote file: %w", err)
	}
	return nil
}

// Remove deletes the remote file p
func (c *Conn) Remove(p string) (err error) {
	defer utils.Recover("sftp remove", &err)
	if c.sftp == nil {
		return utils.ErrConnectionNil
	}

	if err := c.sftp.Remove(p); err != nil {
		return fmt.Errorf("sftp remove %q: %w", p, err)
	}
	return nil
}

// Close ends the SFTP session and the SSH connection under it
func (c *Conn) Close() (err error) {
	defer utils.Recover("sftp close", &err)
	if c.sftp == nil && c.ssh == nil {
		return utils.ErrConnectionNil
	}
	return c.closeAll()
}

// writerOnly hides sftp.File's ReadFrom so CopyBuffer uses buf and the progress reader
type writerOnly struct{ io.Writer }
