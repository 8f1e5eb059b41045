// Copyright © NGRSoftlab 2020-2025

package local

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ngrsoftlab/ftppush"
)

func TestNewConn(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name    string
		root    string
		wantErr string
	}{
		{"empty", "", "root directory required"},
		{"missing", filepath.Join(tmpDir, "nope"), "does not exist"},
		{"file", file, "is not a directory"},
		{"valid", tmpDir, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConn(tc.root)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !bytes.Contains([]byte(err.Error()), []byte(tc.wantErr)) {
				t.Fatalf("err = %v; want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestConn_MkdirAllAndExists(t *testing.T) {
	root := t.TempDir()
	conn, err := NewConn(root)
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}

	for _, p := range []string{"/uploads/daily", "uploads/daily"} {
		ok, err := conn.Exists(p)
		if err != nil || ok {
			t.Fatalf("Exists(%q) before mkdir = %v, %v; want false, nil", p, ok, err)
		}
	}

	if err := conn.MkdirAll("/uploads/daily"); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for _, p := range []string{"/uploads/daily", "uploads/daily", "uploads"} {
		ok, err := conn.Exists(p)
		if err != nil || !ok {
			t.Errorf("Exists(%q) = %v, %v; want true, nil", p, ok, err)
		}
	}
	if info, err := os.Stat(filepath.Join(root, "uploads", "daily")); err != nil || !info.IsDir() {
		t.Errorf("directory not created under root: %v", err)
	}
}

func TestConn_ResolveStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	conn, err := NewConn(root)
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	got := conn.resolve("../../etc/passwd")
	want := filepath.Join(root, "etc", "passwd")
	if got != want {
		t.Errorf("resolve = %q; want %q", got, want)
	}
}

func TestConn_Upload(t *testing.T) {
	root := t.TempDir()
	data := []byte("hello")

	tests := []struct {
		name     string
		content  *ftppush.FileContent
		ctx      context.Context
		target   string
		wantErr  string
		wantData []byte
	}{
		{
			name:    "nil_content",
			content: nil,
			ctx:     context.Background(),
			target:  "/out.txt",
			wantErr: "no file content provided",
		},
		{
			name:    "ctx_canceled",
			content: &ftppush.FileContent{Data: data},
			ctx:     func() context.Context { c, cancel := context.WithCancel(context.Background()); cancel(); return c }(),
			target:  "/out.txt",
			wantErr: context.Canceled.Error(),
		},
		{
			name:    "missing_parent",
			content: &ftppush.FileContent{Data: data},
			ctx:     context.Background(),
			target:  "/no/such/dir/out.txt",
			wantErr: "create target file",
		},
		{
			name:     "success",
			content:  &ftppush.FileContent{Data: data},
			ctx:      context.Background(),
			target:   "/out.txt",
			wantData: data,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn, err := NewConn(root)
			if err != nil {
				t.Fatalf("NewConn: %v", err)
			}
			var reported int64
			err = conn.Upload(tc.ctx, tc.content, tc.target, func(written, total int64) { reported = written })
			if tc.wantErr != "" {
				if err == nil || !bytes.Contains([]byte(err.Error()), []byte(tc.wantErr)) {
					t.Fatalf("err = %v; want containing %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			got, err := os.ReadFile(filepath.Join(root, "out.txt"))
			if err != nil {
				t.Fatalf("read file error %v", err)
			}
			if !bytes.Equal(got, tc.wantData) {
				t.Errorf("data = %q; want %q", got, tc.wantData)
			}
			if reported != int64(len(tc.wantData)) {
				t.Errorf("progress = %d; want %d", reported, len(tc.wantData))
			}
		})
	}
}

func TestConn_RemoveAndClose(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	conn, err := NewConn(root)
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}

	if err := conn.Remove("a.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if ok, _ := conn.Exists("/a.txt"); ok {
		t.Errorf("file still exists after Remove")
	}
	if err := conn.Remove("a.txt"); !os.IsNotExist(err) {
		t.Errorf("second Remove err = %v; want not-exist", err)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := conn.Close(); err == nil {
		t.Errorf("second Close err = nil; want error")
	}
	if _, err := conn.Exists("/"); err == nil {
		t.Errorf("Exists after Close err = nil; want error")
	}
}

func TestDialer_Dial(t *testing.T) {
	root := t.TempDir()

	conn, err := Dialer{}.Dial(context.Background(), ftppush.Endpoint{Host: root, User: "u"})
	if err != nil {
		t.Fatalf("Dial with host root: %v", err)
	}
	conn.Close()

	if _, err := (Dialer{Root: filepath.Join(root, "missing")}).Dial(context.Background(), ftppush.Endpoint{}); err == nil {
		t.Errorf("Dial with missing root err = nil; want error")
	}
}
