// Copyright © NGRSoftlab 2020-2025

package ftppush

import (
	"context"
)

// Connection is a single-use session with a remote file store (FTP, SFTP or a
// local directory). It is owned by the operation that opened it and must be
// closed exactly once.
type Connection interface {
	// Exists reports whether a file or directory exists at path.
	Exists(path string) (bool, error)

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string) error

	// Upload copies content to remotePath, replacing any file already there.
	// progress may be nil.
	Upload(ctx context.Context, content *FileContent, remotePath string, progress ProgressFunc) error

	// Remove deletes the file at path.
	Remove(path string) error

	// Close ends the session.
	Close() error
}

// Dialer opens Connections. Implementations classify their failures with
// utils.ErrFtpConnect / utils.ErrSftpConnect (or a credential kind) and never
// return a non-nil Connection together with an error.
type Dialer interface {
	Dial(ctx context.Context, ep Endpoint) (Connection, error)
}

// DialerFunc adapts a function to Dialer
type DialerFunc func(ctx context.Context, ep Endpoint) (Connection, error)

// Dial calls f(ctx, ep)
func (f DialerFunc) Dial(ctx context.Context, ep Endpoint) (Connection, error) {
	return f(ctx, ep)
}
