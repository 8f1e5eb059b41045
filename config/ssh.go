package config

import (
	"github.com/ngrsoftlab/ftppush/ftp"
	"github.com/ngrsoftlab/ftppush/ssh"
	"github.com/ngrsoftlab/ftppush/utils"
)

// SSHConfig holds SFTP settings on top of password auth
type SSHConfig struct {
	KeyPath    string `yaml:"key_path"`    // optional private key file
	Passphrase string `yaml:"passphrase"`  // optional, for an encrypted key
	KnownHosts string `yaml:"known_hosts"` // optional; host keys are not checked without it
	Agent      bool   `yaml:"agent"`       // use the agent at SSH_AUTH_SOCK
	BufferSize int    `yaml:"buffer_size"` // upload copy buffer, 0 keeps the default
}

// FTPConfig holds plain FTP tweaks
type FTPConfig struct {
	EPSV        bool `yaml:"epsv"`         // EPSV instead of PASV
	DisableUTF8 bool `yaml:"disable_utf8"` // skip OPTS UTF8
}

// SSHOptions converts the ssh section into options for every SFTP dial
func (c *Config) SSHOptions() []ssh.ConfigOption {
	var opts []ssh.ConfigOption
	if c.SSH.Agent {
		opts = append(opts, ssh.WithAgentAuth())
	}
	if c.SSH.KeyPath != "" {
		opts = append(opts, ssh.WithPrivateKeyPathAuth(utils.ExpandPath(c.SSH.KeyPath, ""), c.SSH.Passphrase))
	}
	if c.SSH.KnownHosts != "" {
		opts = append(opts, ssh.WithKnownHosts(utils.ExpandPath(c.SSH.KnownHosts, "")))
	}
	if c.SSH.BufferSize > 0 {
		opts = append(opts, ssh.WithSFTPBufferSize(c.SSH.BufferSize))
	}
	return opts
}

// FTPOptions converts the ftp section into options for every FTP dial
func (c *Config) FTPOptions() []ftp.ConfigOption {
	var opts []ftp.ConfigOption
	if c.FTP.EPSV {
		opts = append(opts, ftp.WithEPSV())
	}
	if c.FTP.DisableUTF8 {
		opts = append(opts, ftp.WithoutUTF8())
	}
	return opts
}
