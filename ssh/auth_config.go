package ssh

import (
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// auth holds the private key, password, and agent flags for authentication
type auth struct {
	password   string // optional password
	keyPath    string // optional path to private key file
	keyBytes   []byte // optional data of private key file
	passphrase string // optional, if private key is encrypted
	useAgent   bool   // optional

	agentConn io.Closer // open agent socket, closed with the connection
}

// withPassword configures password-based auth
func (a *auth) withPassword(password string) error {
	if len(password) == 0 {
		return fmt.Errorf("password empty")
	}
	a.password = password
	return nil
}

// withPrivateKeyPath configures file-based key authentication
func (a *auth) withPrivateKeyPath(path, passphrase string) error {
	if len(path) == 0 {
		return fmt.Errorf("private key path empty")
	}
	a.keyPath = path
	a.passphrase = passphrase
	return nil
}

// withPrivateKeyBytes configures in-memory key authentication
func (a *auth) withPrivateKeyBytes(privateKey []byte, passphrase string) error {
	if len(privateKey) == 0 {
		return fmt.Errorf("private key bytes empty")
	}
	a.keyBytes = privateKey
	a.passphrase = passphrase
	return nil
}

// withAgent adds SSH agent auth. (Unix systems only)
func (a *auth) withAgent() error {
	a.useAgent = true
	return nil
}

// buildAgentAuth dials the SSH agent and returns its ssh.AuthMethod (Unix systems only)
func (a *auth) buildAgentAuth() (ssh.AuthMethod, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, fmt.Errorf("dial agent: SSH_AUTH_SOCK not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("dial agent: %w", err)
	}
	a.agentConn = conn
	ag := agent.NewClient(conn)
	return ssh.PublicKeysCallback(ag.Signers), nil
}

// close releases the agent socket, if any
func (a *auth) close() error {
	if a.agentConn == nil {
		return nil
	}
	err := a.agentConn.Close()
	a.agentConn = nil
	return err
}

// authMethods returns a slice of ssh.AuthMethod in the order:
// agent → private key (file or bytes) → password.
// Returns an error if none succeed
func (a *auth) authMethods() ([]ssh.AuthMethod, error) {
	methods := make([]ssh.AuthMethod, 0, 4)
	var errs []string

	if a.useAgent {
		if m, err := a.buildAgentAuth(); err != nil {
			errs = append(errs, fmt.Sprintf("agent: %v", err))
		} else {
			methods = append(methods, m)
		}
	}

	if a.keyPath != "" {
		if signer, err := a.signerFromFile(); err != nil {
			errs = append(errs, fmt.Sprintf("read key file: %v", err))
		} else {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	if len(a.keyBytes) > 0 {
		if signer, err := parseSigner(a.keyBytes, a.passphrase); err != nil {
			errs = append(errs, fmt.Sprintf("read key bytes: %v", err))
		} else {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	if a.password != "" {
		// keyboard-interactive first: PAM-only servers reject plain password auth
		methods = append(methods,
			ssh.KeyboardInteractive(a.answerAll),
			ssh.Password(a.password),
		)
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no valid auth methods available: %s", strings.Join(errs, "; "))
	}

	return methods, nil
}

// answerAll replies with the password to every keyboard-interactive question
func (a *auth) answerAll(user, instruction string, questions []string, echos []bool) ([]string, error) {
	answers := make([]string, len(questions))
	for i := range questions {
		answers[i] = a.password
	}
	return answers, nil
}

func (a *auth) signerFromFile() (ssh.Signer, error) {
	keyData, err := os.ReadFile(a.keyPath)
	if err != nil {
		return nil, err
	}
	return parseSigner(keyData, a.passphrase)
}

// parseSigner parses PEM private key, decrypting with passphrase if any.
func parseSigner(data []byte, passphrase string) (ssh.Signer, error) {
	if len(passphrase) > 0 {
		signer, err := ssh.ParsePrivateKeyWithPassphrase(data, []byte(passphrase))
		if err != nil && strings.Contains(err.Error(), "key is not password protected") {
			return ssh.ParsePrivateKey(data)
		}
		return signer, err
	}
	return ssh.ParsePrivateKey(data)
}
