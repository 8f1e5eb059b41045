package ftppush

import (
	"errors"
	"time"
)

const (
	DefaultTimeout  = 15 * time.Second
	DefaultFTPPort  = 21
	DefaultSFTPPort = 22
)

// Endpoint identifies the remote side of a transfer
type Endpoint struct {
	Host     string        // *remote host, also the secret store service name
	Port     int           // optional, defaults by transport
	User     string        // *remote user, also the secret store account
	Password string        // optional, looked up in the secret store when empty
	Timeout  time.Duration // bound for every blocking network call
	Secure   bool          // SFTP when true, plain FTP otherwise
}

// Protocol names the transport selected by Secure
func (e Endpoint) Protocol() string {
	if e.Secure {
		return "sftp"
	}
	return "ftp"
}

// PortOrDefault returns Port, or the well-known port of the transport
func (e Endpoint) PortOrDefault() int {
	if e.Port > 0 {
		return e.Port
	}
	if e.Secure {
		return DefaultSFTPPort
	}
	return DefaultFTPPort
}

// TimeoutOrDefault returns Timeout, or DefaultTimeout when unset
func (e Endpoint) TimeoutOrDefault() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return DefaultTimeout
}

// Validate ensures the endpoint has all required fields
func (e Endpoint) Validate() error {
	if e.Host == "" {
		return errors.New("host must be provided")
	}
	if e.User == "" {
		return errors.New("user must be provided")
	}
	if e.Port < 0 || e.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if e.Timeout < 0 {
		return errors.New("timeout must be >= 0")
	}
	return nil
}
