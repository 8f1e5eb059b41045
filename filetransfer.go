// Copyright © NGRSoftlab 2020-2025

package ftppush

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// ProgressFunc is called after every copied chunk with the bytes written so far
// and the total size of the source (0 when unknown)
type ProgressFunc func(written, total int64)

// Request describes one local file to push. It is built once per file from the
// process configuration and never mutated afterwards.
type Request struct {
	SourcePath     string   // local file; relative paths are resolved under SourceBasePath
	SourceBasePath string   // optional base directory for relative SourcePath
	Endpoint       Endpoint // remote host, credentials and transport selection
	RemoteDir      string   // remote directory, may be empty

	DeleteLocalAfterUpload   bool // remove the local file once the upload succeeded
	RemoveExistingRemoteFile bool // remove a remote file of the same name before transfer
	CreateRemoteDirIfMissing bool // create RemoteDir when neither path form exists

	Progress ProgressFunc // optional
}

// Validate checks that the request has all required fields
func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("transfer request empty")
	}
	if r.SourcePath == "" {
		return fmt.Errorf("source path required")
	}
	return r.Endpoint.Validate()
}

// FileContent holds the source of file data for transfer.
// Only one of Data, SourcePath, or Reader should be set
type FileContent struct {
	Reader     io.Reader // stream to read file data from
	Data       []byte    // in-memory file data
	SourcePath string    // path to the file on disk
}

// ReaderAndSize yields an io.ReadCloser and its length based on which
// content field is set: Data, SourcePath, or Reader
func (t *FileContent) ReaderAndSize() (io.ReadCloser, int64, error) {
	switch {
	case t == nil:
		return nil, 0, fmt.Errorf("no file content provided")
	case len(t.Data) > 0:
		return io.NopCloser(bytes.NewReader(t.Data)), int64(len(t.Data)), nil
	case t.SourcePath != "":
		f, err := os.Open(t.SourcePath)
		if err != nil {
			return nil, 0, fmt.Errorf("open source file: %w", err)
		}
		info, err := f.Stat()
		if err != nil {
			if err := f.Close(); err != nil {
				return nil, 0, fmt.Errorf("close source file: %w", err)
			}
			return nil, 0, fmt.Errorf("stat source file: %w", err)
		}
		if info.IsDir() {
			f.Close()
			return nil, 0, fmt.Errorf("source %q is a directory", t.SourcePath)
		}
		return f, info.Size(), nil
	case t.Reader != nil:
		if s, ok := t.Reader.(io.Seeker); ok {
			cur, err := s.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, 0, fmt.Errorf("seek current source: %w", err)
			}
			end, err := s.Seek(0, io.SeekEnd)
			if err != nil {
				return nil, 0, fmt.Errorf("seek end source: %w", err)
			}
			_, err = s.Seek(cur, io.SeekStart)
			return io.NopCloser(t.Reader), end - cur, err
		}
		return io.NopCloser(t.Reader), 0, nil
	default:
		return nil, 0, fmt.Errorf("no file content provided")
	}
}
