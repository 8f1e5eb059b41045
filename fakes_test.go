// Copyright © NGRSoftlab 2020-2025

package ftppush_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ngrsoftlab/ftppush"
)

// fakeConn is an in-memory remote that treats "uploads" and "/uploads" as
// different paths, like the hosts the reconciler has to cope with
type fakeConn struct {
	dirs  map[string]bool
	files map[string][]byte

	existsErr  map[string]error
	mkdirErr   map[string]error
	removeErr  error
	uploadErr  error
	closeErr   error
	closePanic bool

	mkdirCalls  []string
	uploadCalls int
	removeCalls int
	closeCalls  int
}

func newFakeConn(dirs ...string) *fakeConn {
	c := &fakeConn{
		dirs:      map[string]bool{},
		files:     map[string][]byte{},
		existsErr: map[string]error{},
		mkdirErr:  map[string]error{},
	}
	for _, d := range dirs {
		c.dirs[d] = true
	}
	return c
}

func (c *fakeConn) Exists(p string) (bool, error) {
	if err := c.existsErr[p]; err != nil {
		return false, err
	}
	_, isFile := c.files[p]
	return c.dirs[p] || isFile, nil
}

func (c *fakeConn) MkdirAll(p string) error {
	c.mkdirCalls = append(c.mkdirCalls, p)
	if err := c.mkdirErr[p]; err != nil {
		return err
	}
	c.dirs[p] = true
	return nil
}

func (c *fakeConn) Upload(ctx context.Context, content *ftppush.FileContent, remotePath string, progress ftppush.ProgressFunc) error {
	c.uploadCalls++
	if c.uploadErr != nil {
		return c.uploadErr
	}
	r, size, err := content.ReaderAndSize()
	if err != nil {
		return err
	}
	defer r.Close()
	data, err := io.ReadAll(ftppush.NewProgressReader(ctx, r, size, progress))
	if err != nil {
		return err
	}
	c.files[remotePath] = data
	return nil
}

func (c *fakeConn) Remove(p string) error {
	c.removeCalls++
	if c.removeErr != nil {
		return c.removeErr
	}
	if _, ok := c.files[p]; !ok {
		return os.ErrNotExist
	}
	delete(c.files, p)
	return nil
}

func (c *fakeConn) Close() error {
	c.closeCalls++
	if c.closePanic {
		panic("close on torn-down session")
	}
	return c.closeErr
}

// fakeDialer hands out one connection and counts dials
type fakeDialer struct {
	conn  ftppush.Connection
	err   error
	calls int
}

func (d *fakeDialer) Dial(ctx context.Context, ep ftppush.Endpoint) (ftppush.Connection, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

var errBoom = errors.New("boom")

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.DebugLevel)
	return log
}

// writeSource creates a local file with data and returns its path
func writeSource(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return p
}

func testEndpoint() ftppush.Endpoint {
	return ftppush.Endpoint{Host: "ftp.example.org", User: "pusher", Password: "pw"}
}
