// Copyright © NGRSoftlab 2020-2025

package secret

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned by a Store that holds no secret for the pair
var ErrNotFound = errors.New("secret not found")

// Store looks up a secret by service and account. The service is the remote
// host, the account is the remote user.
type Store interface {
	Get(service, account string) (string, error)
}

// StoreFunc adapts a plain function to Store
type StoreFunc func(service, account string) (string, error)

func (f StoreFunc) Get(service, account string) (string, error) {
	return f(service, account)
}

// Keyring is a Store backed by the OS credential vault
// (Secret Service on Linux, Keychain on macOS, Credential Manager on Windows)
type Keyring struct{}

// Get returns the stored secret, or ErrNotFound when the vault has none
func (Keyring) Get(service, account string) (string, error) {
	s, err := keyring.Get(service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return s, err
}

// Set stores or replaces the secret for the pair
func (Keyring) Set(service, account, secret string) error {
	return keyring.Set(service, account, secret)
}

// Delete removes the secret for the pair. A missing entry yields ErrNotFound.
func (Keyring) Delete(service, account string) error {
	err := keyring.Delete(service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Map is an in-memory Store, keyed by service then account
type Map map[string]map[string]string

func (m Map) Get(service, account string) (string, error) {
	if s, ok := m[service][account]; ok {
		return s, nil
	}
	return "", ErrNotFound
}
