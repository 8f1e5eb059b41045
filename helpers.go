// Copyright © NGRSoftlab 2020-2025

package ftppush

import (
	"context"
	"io"
	"strings"
)

const remoteSeparator = "/"

// JoinRemote builds the remote file path for name inside dir.
// Remote paths always use "/", an empty dir yields the bare name.
func JoinRemote(dir, name string) string {
	switch {
	case dir == "":
		return name
	case strings.HasSuffix(dir, remoteSeparator):
		return dir + name
	default:
		return dir + remoteSeparator + name
	}
}

// ToggleLeadingSeparator returns the other spelling of a remote path:
// "/foo" becomes "foo" and "foo" becomes "/foo"
func ToggleLeadingSeparator(p string) string {
	if strings.HasPrefix(p, remoteSeparator) {
		return p[len(remoteSeparator):]
	}
	return remoteSeparator + p
}

// ProgressReader wraps a source reader, stops on context cancellation and
// reports progress after every read
type ProgressReader struct {
	ctx      context.Context
	r        io.Reader
	total    int64
	written  int64
	progress ProgressFunc
}

// NewProgressReader wraps r. progress may be nil
func NewProgressReader(ctx context.Context, r io.Reader, total int64, progress ProgressFunc) *ProgressReader {
	return &ProgressReader{ctx: ctx, r: r, total: total, progress: progress}
}

func (p *ProgressReader) Read(buf []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(buf)
	if n > 0 {
		p.written += int64(n)
		if p.progress != nil {
			p.progress(p.written, p.total)
		}
	}
	return n, err
}

// Written returns the number of bytes read so far
func (p *ProgressReader) Written() int64 {
	return p.written
}
