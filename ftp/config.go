package ftp

import (
	"fmt"
	"time"
)

const defaultTimeout = 15 * time.Second

// ConfigOption configures a Config
type ConfigOption func(*Config) error

// Config contains settings for an FTP connection
type Config struct {
	Host     string // *host name or ip
	Port     int    // *port
	User     string // *username
	password string
	timeout  time.Duration // dial and per-command timeout
	epsv     bool          // use EPSV instead of PASV
	utf8     bool          // negotiate UTF8 with the server
}

// NewConfig creates a config with defaults and applies opts
func NewConfig(user, host string, port int, opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		Host:    host,
		Port:    port,
		User:    user,
		timeout: defaultTimeout,
		utf8:    true,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("config option failed: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// WithPassword sets the login password
func WithPassword(password string) ConfigOption {
	return func(cfg *Config) error {
		cfg.password = password
		return nil
	}
}

// WithTimeout bounds the dial and every later read or write
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(cfg *Config) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be >0")
		}
		cfg.timeout = timeout
		return nil
	}
}

// WithEPSV switches passive mode to EPSV
func WithEPSV() ConfigOption {
	return func(cfg *Config) error {
		cfg.epsv = true
		return nil
	}
}

// WithoutUTF8 skips the OPTS UTF8 negotiation some old servers reject
func WithoutUTF8() ConfigOption {
	return func(cfg *Config) error {
		cfg.utf8 = false
		return nil
	}
}

func (c *Config) validate() error {
	if len(c.User) == 0 {
		return fmt.Errorf("user required")
	}
	if len(c.Host) == 0 {
		return fmt.Errorf("host required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}
