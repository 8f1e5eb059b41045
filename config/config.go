package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	DefaultTimeoutSeconds = 15
	DefaultLogLevel       = "debug"
)

// Config is the process configuration. It is assembled once (defaults, file,
// flags), validated, and only read afterwards.
type Config struct {
	Remote   RemoteConfig   `yaml:"remote"`
	Transfer TransferConfig `yaml:"transfer"`
	SSH      SSHConfig      `yaml:"ssh"`
	FTP      FTPConfig      `yaml:"ftp"`
	Log      LogConfig      `yaml:"log"`
}

// RemoteConfig identifies the remote host and how to reach it
type RemoteConfig struct {
	Host           string `yaml:"host"`     // *host name, or the mirror directory when Local is set
	Port           int    `yaml:"port"`     // 0 means 21 for FTP, 22 for SFTP
	User           string `yaml:"user"`     // *remote user
	Password       string `yaml:"password"` // optional, looked up in the OS keyring when empty
	TimeoutSeconds int    `yaml:"timeout"`  // bound for every network call
	UseSSH         bool   `yaml:"use_ssh"`  // SFTP instead of FTP
	Local          bool   `yaml:"local"`    // copy into the directory named by Host instead of dialing
}

// TransferConfig lists what to push and what to do around each upload
type TransferConfig struct {
	SourceFiles     []string `yaml:"source_files"`
	SourceDir       string   `yaml:"source_dir"` // base for relative source files
	RemoteDir       string   `yaml:"remote_dir"`
	CreateRemoteDir bool     `yaml:"create_remote_dir"`
	DeleteLocal     bool     `yaml:"delete_local"`
	RemoveExisting  bool     `yaml:"remove_existing"`
}

// LogConfig controls logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Redact bool   `yaml:"redact"` // mask secrets in log lines
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Remote: RemoteConfig{
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Transfer: TransferConfig{
			CreateRemoteDir: true,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Redact: true,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that required fields are set and values are in range
func (c *Config) Validate() error {
	var errs []error

	if c.Remote.Host == "" {
		errs = append(errs, errors.New("remote host required"))
	}
	if c.Remote.User == "" && !c.Remote.Local {
		errs = append(errs, errors.New("remote user required"))
	}
	if c.Remote.Port < 0 || c.Remote.Port > 65535 {
		errs = append(errs, fmt.Errorf("remote port %d out of range", c.Remote.Port))
	}
	if c.Remote.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("timeout must be >0"))
	}
	if c.Remote.Local && c.Remote.UseSSH {
		errs = append(errs, errors.New("local and use_ssh are mutually exclusive"))
	}
	if len(c.Transfer.SourceFiles) == 0 {
		errs = append(errs, errors.New("at least one source file required"))
	}
	for i, f := range c.Transfer.SourceFiles {
		if f == "" {
			errs = append(errs, fmt.Errorf("source file #%d is empty", i+1))
		}
	}
	if c.SSH.BufferSize < 0 {
		errs = append(errs, errors.New("ssh buffer size must be >=0"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Timeout returns the configured timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}
