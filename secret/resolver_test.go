// Copyright © NGRSoftlab 2020-2025

package secret_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngrsoftlab/ftppush/secret"
	"github.com/ngrsoftlab/ftppush/utils"
)

type countingStore struct {
	calls int
	store secret.Store
}

func (c *countingStore) Get(service, account string) (string, error) {
	c.calls++
	return c.store.Get(service, account)
}

func newLogger() (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func TestResolver_Resolve(t *testing.T) {
	stored := secret.Map{"ftp.example.org": {"pusher": "s3cr3t"}}
	boom := errors.New("dbus unavailable")

	tests := []struct {
		name      string
		store     secret.Store
		explicit  string
		host      string
		user      string
		want      string
		wantKind  error
		wantCalls int
	}{
		{"explicit_skips_store", stored, "given", "ftp.example.org", "pusher", "given", nil, 0},
		{"stored", stored, "", "ftp.example.org", "pusher", "s3cr3t", nil, 1},
		{"other_user", stored, "", "ftp.example.org", "admin", "", utils.ErrCredentialNotFound, 1},
		{"other_host", stored, "", "sftp.example.org", "pusher", "", utils.ErrCredentialNotFound, 1},
		{"store_error", secret.StoreFunc(func(string, string) (string, error) { return "", boom }), "", "h", "u", "", utils.ErrCredentialStore, 1},
		{"store_panic", secret.StoreFunc(func(string, string) (string, error) { panic("keyring") }), "", "h", "u", "", utils.ErrCredentialStore, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, _ := newLogger()
			store := &countingStore{store: tc.store}
			got, err := secret.NewResolver(store, log).Resolve(tc.explicit, tc.host, tc.user)

			assert.Equal(t, tc.wantCalls, store.calls)
			switch {
			case tc.wantKind != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.wantKind)
				assert.Equal(t, tc.wantKind, utils.KindOf(err))
				assert.Empty(t, got)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestResolver_StoreErrorKeepsCause(t *testing.T) {
	boom := errors.New("dbus unavailable")
	log, _ := newLogger()
	_, err := secret.NewResolver(secret.StoreFunc(func(string, string) (string, error) { return "", boom }), log).
		Resolve("", "h", "u")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, utils.ErrCredentialStore, utils.KindOf(err))
}

func TestResolver_StorePanicIsStoreError(t *testing.T) {
	log, buf := newLogger()
	_, err := secret.NewResolver(secret.StoreFunc(func(string, string) (string, error) { panic("keyring") }), log).
		Resolve("", "h", "u")
	require.Error(t, err)
	assert.Equal(t, utils.ErrCredentialStore, utils.KindOf(err))
	assert.Contains(t, err.Error(), "recovering from panic")
	assert.Contains(t, buf.String(), "level=error")
}

func TestResolver_NilStore(t *testing.T) {
	log, _ := newLogger()
	_, err := secret.NewResolver(nil, log).Resolve("", "h", "u")
	assert.ErrorIs(t, err, utils.ErrCredentialStore)
}

func TestResolver_Redaction(t *testing.T) {
	stored := secret.Map{"h": {"u": "s3cr3t"}}

	log, buf := newLogger()
	_, err := secret.NewResolver(stored, log).Resolve("", "h", "u")
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "s3cr3t")
	assert.Contains(t, buf.String(), "password retrieved")

	log, buf = newLogger()
	_, err = secret.NewResolver(stored, log, secret.WithRedaction(false)).Resolve("", "h", "u")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "s3cr3t")
}
