// Copyright © NGRSoftlab 2020-2025

package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ngrsoftlab/ftppush"
	"github.com/ngrsoftlab/ftppush/utils"
)

// interface guard
var _ ftppush.Connection = (*Conn)(nil)

var errClosed = errors.New("local connection closed")

// Conn implements ftppush.Connection on a local directory tree, e.g. a mounted share.
// Remote paths are resolved under root with or without a leading "/".
type Conn struct {
	root   string
	cfg    *config
	closed bool
}

// NewConn opens a Conn rooted at root, which must be an existing directory
func NewConn(root string, opts ...Option) (*Conn, error) {
	if err := validateRoot(root); err != nil {
		return nil, err
	}
	return &Conn{root: root, cfg: newConfig(opts...)}, nil
}

// Dialer opens local Conns. Root defaults to the endpoint host.
type Dialer struct {
	Root string
	Opts []Option
}

// Dial implements ftppush.Dialer
func (d Dialer) Dial(ctx context.Context, ep ftppush.Endpoint) (ftppush.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := d.Root
	if root == "" {
		root = ep.Host
	}
	conn, err := NewConn(root, d.Opts...)
	if err != nil {
		return nil, utils.NewError(utils.ErrFtpConnect, "local dial", root, err)
	}
	return conn, nil
}

// Exists reports whether path exists under root
func (c *Conn) Exists(path string) (bool, error) {
	if c.closed {
		return false, errClosed
	}
	_, err := os.Stat(c.resolve(path))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// MkdirAll creates path and its parents under root
func (c *Conn) MkdirAll(path string) error {
	if c.closed {
		return errClosed
	}
	target := c.resolve(path)
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return fmt.Errorf("target dir %q is a file, expected directory", path)
	}
	if err := os.MkdirAll(target, c.cfg.folderMode); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}

// Upload writes content to remotePath. The parent directory must exist.
func (c *Conn) Upload(ctx context.Context, content *ftppush.FileContent, remotePath string, progress ftppush.ProgressFunc) error {
	if c.closed {
		return errClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	reader, size, err := content.ReaderAndSize()
	if err != nil {
		return err
	}
	defer reader.Close()

	outFile, err := os.OpenFile(c.resolve(remotePath), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, c.cfg.fileMode)
	if err != nil {
		return fmt.Errorf("create target file: %w", err)
	}

	if _, err := io.Copy(outFile, ftppush.NewProgressReader(ctx, reader, size, progress)); err != nil {
		outFile.Close()
		return fmt.Errorf("copy content: %w", err)
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close target file: %w", err)
	}
	return nil
}

// Remove deletes the file at path
func (c *Conn) Remove(path string) error {
	if c.closed {
		return errClosed
	}
	return os.Remove(c.resolve(path))
}

// Close marks the Conn closed. Closing twice is an error.
func (c *Conn) Close() error {
	if c.closed {
		return errClosed
	}
	c.closed = true
	return nil
}

// resolve maps a remote path below root, refusing to escape it
func (c *Conn) resolve(path string) string {
	clean := filepath.Clean("/" + strings.TrimPrefix(filepath.ToSlash(path), "/"))
	return filepath.Join(c.root, filepath.FromSlash(clean))
}
