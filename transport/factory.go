// Copyright © NGRSoftlab 2020-2025

package transport

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ngrsoftlab/ftppush"
	"github.com/ngrsoftlab/ftppush/ftp"
	"github.com/ngrsoftlab/ftppush/ssh"
	"github.com/ngrsoftlab/ftppush/utils"
)

// interface guard: ensure Factory satisfies ftppush.Dialer
var _ ftppush.Dialer = (*Factory)(nil)

// CredentialResolver finds the password for a (host, user) pair
type CredentialResolver interface {
	Resolve(explicit, host, user string) (string, error)
}

type (
	ftpDialFunc  func(ctx context.Context, cfg *ftp.Config) (ftppush.Connection, error)
	sftpDialFunc func(ctx context.Context, cfg *ssh.Config) (ftppush.Connection, error)
)

// Option configures a Factory
type Option func(*Factory)

// WithLogger sets the logger for connect failures
func WithLogger(log logrus.FieldLogger) Option {
	return func(f *Factory) {
		if log != nil {
			f.log = log
		}
	}
}

// WithSSHOptions adds options (key, agent, known_hosts, buffer size) to every SFTP dial
func WithSSHOptions(opts ...ssh.ConfigOption) Option {
	return func(f *Factory) { f.sshOpts = append(f.sshOpts, opts...) }
}

// WithFTPOptions adds options (EPSV, UTF8) to every FTP dial
func WithFTPOptions(opts ...ftp.ConfigOption) Option {
	return func(f *Factory) { f.ftpOpts = append(f.ftpOpts, opts...) }
}

// Factory opens FTP or SFTP connections, resolving the password first
type Factory struct {
	credentials CredentialResolver
	log         logrus.FieldLogger
	sshOpts     []ssh.ConfigOption
	ftpOpts     []ftp.ConfigOption

	dialFTP  ftpDialFunc
	dialSFTP sftpDialFunc
}

// NewFactory creates a Factory resolving passwords through credentials
func NewFactory(credentials CredentialResolver, opts ...Option) *Factory {
	f := &Factory{
		credentials: credentials,
		log:         logrus.StandardLogger(),
		dialFTP:     dialFTP,
		dialSFTP:    dialSFTP,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dial opens a connection to ep. The password is resolved before any network
// call, so a missing credential never reaches the server. On failure the
// connection is nil and the error is classified.
func (f *Factory) Dial(ctx context.Context, ep ftppush.Endpoint) (ftppush.Connection, error) {
	kind := utils.ErrFtpConnect
	if ep.Secure {
		kind = utils.ErrSftpConnect
	}
	target := fmt.Sprintf("%s://%s@%s:%d", ep.Protocol(), ep.User, ep.Host, ep.PortOrDefault())
	log := f.log.WithFields(logrus.Fields{"protocol": ep.Protocol(), "host": ep.Host})

	if err := ep.Validate(); err != nil {
		err = utils.NewError(kind, "connect", target, err)
		log.Error(err)
		return nil, err
	}

	password := ep.Password
	if f.credentials != nil {
		var err error
		if password, err = f.credentials.Resolve(ep.Password, ep.Host, ep.User); err != nil {
			return nil, err
		}
	}

	var (
		conn ftppush.Connection
		err  error
	)
	if ep.Secure {
		conn, err = f.openSFTP(ctx, ep, password)
	} else {
		conn, err = f.openFTP(ctx, ep, password)
	}
	if err != nil {
		err = utils.NewError(kind, "connect", target, err)
		log.Error(err)
		return nil, err
	}

	log.Debugf("connected to %s", target)
	return conn, nil
}

func (f *Factory) openFTP(ctx context.Context, ep ftppush.Endpoint, password string) (ftppush.Connection, error) {
	opts := append([]ftp.ConfigOption{
		ftp.WithPassword(password),
		ftp.WithTimeout(ep.TimeoutOrDefault()),
	}, f.ftpOpts...)

	cfg, err := ftp.NewConfig(ep.User, ep.Host, ep.PortOrDefault(), opts...)
	if err != nil {
		return nil, err
	}
	return f.dialFTP(ctx, cfg)
}

func (f *Factory) openSFTP(ctx context.Context, ep ftppush.Endpoint, password string) (ftppush.Connection, error) {
	opts := []ssh.ConfigOption{ssh.WithTimeout(ep.TimeoutOrDefault())}
	if password != "" {
		opts = append(opts, ssh.WithPasswordAuth(password))
	}
	opts = append(opts, f.sshOpts...)

	cfg, err := ssh.NewConfig(ep.User, ep.Host, ep.PortOrDefault(), opts...)
	if err != nil {
		return nil, err
	}
	return f.dialSFTP(ctx, cfg)
}

// the backends return typed pointers; keep a failed dial from becoming a non-nil interface
func dialFTP(ctx context.Context, cfg *ftp.Config) (ftppush.Connection, error) {
	conn, err := ftp.Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func dialSFTP(ctx context.Context, cfg *ssh.Config) (ftppush.Connection, error) {
	conn, err := ssh.Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
