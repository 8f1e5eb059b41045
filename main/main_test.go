package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngrsoftlab/ftppush/config"
	"github.com/ngrsoftlab/ftppush/local"
	"github.com/ngrsoftlab/ftppush/secret"
	"github.com/ngrsoftlab/ftppush/utils"
)

type memStore map[string]string

func (m memStore) Set(service, account, s string) error {
	m[service+"/"+account] = s
	return nil
}

func (m memStore) Delete(service, account string) error {
	if _, ok := m[service+"/"+account]; !ok {
		return secret.ErrNotFound
	}
	delete(m, service+"/"+account)
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "ftppush.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
remote:
  host: ftp.example.org
  user: pusher
  timeout: 20
transfer:
  source_files: [a.csv]
  remote_dir: from-file
  delete_local: true
`), 0o600))

	f := &pushFlags{}
	cmd := newPushCmd(f)
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", cfgPath,
		"--remote-dir", "/from-flag",
		"--ssh",
		"--create-remote-dir=false",
	}))

	cfg, err := loadConfig(cmd, f, []string{"x.csv", "y.csv"})
	require.NoError(t, err)

	assert.Equal(t, "ftp.example.org", cfg.Remote.Host)
	assert.Equal(t, 20, cfg.Remote.TimeoutSeconds)
	assert.True(t, cfg.Remote.UseSSH)
	assert.Equal(t, "/from-flag", cfg.Transfer.RemoteDir)
	assert.False(t, cfg.Transfer.CreateRemoteDir)
	assert.True(t, cfg.Transfer.DeleteLocal)
	assert.True(t, cfg.Log.Redact)
	assert.Equal(t, []string{"x.csv", "y.csv"}, cfg.Transfer.SourceFiles)
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	f := &pushFlags{}
	cmd := newPushCmd(f)
	require.NoError(t, cmd.ParseFlags([]string{"--host", "h", "-u", "u", "--no-redact"}))

	cfg, err := loadConfig(cmd, f, []string{"a.csv"})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTimeoutSeconds, cfg.Remote.TimeoutSeconds)
	assert.True(t, cfg.Transfer.CreateRemoteDir)
	assert.False(t, cfg.Log.Redact)
}

func TestLoadConfig_Invalid(t *testing.T) {
	f := &pushFlags{}
	cmd := newPushCmd(f)
	require.NoError(t, cmd.ParseFlags([]string{"--user", "u"}))

	_, err := loadConfig(cmd, f, []string{"a"})
	assert.ErrorContains(t, err, "remote host required")
}

func TestPush_LocalMirror(t *testing.T) {
	src := t.TempDir()
	share := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.csv"), []byte("a"), 0o644))

	cfg := config.Default()
	cfg.Remote.Host = share
	cfg.Remote.Local = true
	cfg.Transfer.SourceDir = src
	cfg.Transfer.SourceFiles = []string{"a.csv", "missing.csv"}
	cfg.Transfer.RemoteDir = "/uploads"
	require.NoError(t, cfg.Validate())

	log := quietLogger()
	dialer := newDialer(cfg, log)
	require.IsType(t, local.Dialer{}, dialer)

	err := push(context.Background(), cfg, dialer, log)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrSourceFileNotFound)
	assert.Contains(t, err.Error(), "1 of 2 files failed")

	got, err := os.ReadFile(filepath.Join(share, "uploads", "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))
}

func TestPush_ProgressPerFile(t *testing.T) {
	src := t.TempDir()
	share := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.csv"), []byte("aaaa"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.csv"), []byte("bb"), 0o644))

	cfg := config.Default()
	cfg.Remote.Host = share
	cfg.Remote.Local = true
	cfg.Transfer.SourceDir = src
	cfg.Transfer.SourceFiles = []string{"a.csv", "b.csv"}
	require.NoError(t, cfg.Validate())

	log := logrus.New()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	require.NoError(t, push(context.Background(), cfg, newDialer(cfg, log), log))

	// both files finish in one read; each still reports its own completion
	for _, name := range []string{"a.csv", "b.csv"} {
		found := false
		for _, line := range strings.Split(buf.String(), "\n") {
			if strings.Contains(line, "transferred") && strings.Contains(line, name) {
				found = true
			}
		}
		assert.True(t, found, "no progress line for %s in:\n%s", name, buf.String())
	}
}

func TestSecretSet(t *testing.T) {
	store := memStore{}
	cmd := newSecretSetCmd(store)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader("s3cr3t\n"))
	cmd.SetArgs([]string{"--host", "ftp.example.org", "--user", "pusher"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "s3cr3t", store["ftp.example.org/pusher"])
	assert.Contains(t, out.String(), "pusher@ftp.example.org")
}

func TestSecretSet_Empty(t *testing.T) {
	cmd := newSecretSetCmd(memStore{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetArgs([]string{"--host", "h", "--user", "u"})

	assert.ErrorContains(t, cmd.Execute(), "empty password")
}

func TestSecretSet_MissingFlags(t *testing.T) {
	cmd := newSecretSetCmd(memStore{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--host", "h"})

	assert.ErrorContains(t, cmd.Execute(), "user")
}

func TestSecretDelete(t *testing.T) {
	store := memStore{"h/u": "pw"}

	cmd := newSecretDeleteCmd(store)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--host", "h", "--user", "u"})
	require.NoError(t, cmd.Execute())
	assert.Empty(t, store)

	cmd = newSecretDeleteCmd(store)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--host", "h", "--user", "u"})
	assert.ErrorContains(t, cmd.Execute(), "no password stored for u@h")
}

func TestVersion(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "ftppush dev")
}

func TestProgressLogger(t *testing.T) {
	log := logrus.New()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	progress := progressLogger(log)
	for w := int64(1); w <= 100; w++ {
		progress(w, 100)
	}
	progress(10, 0)

	assert.Equal(t, 5, strings.Count(buf.String(), "transferred"))
}
