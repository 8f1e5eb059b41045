// Copyright © NGRSoftlab 2020-2025

package secret

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ngrsoftlab/ftppush/utils"
)

const redacted = "******"

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithRedaction sets whether the resolved secret is masked in the log
func WithRedaction(redact bool) ResolverOption {
	return func(r *Resolver) { r.redact = redact }
}

// Resolver finds the password for a (host, user) pair
type Resolver struct {
	store  Store
	log    logrus.FieldLogger
	redact bool
}

// NewResolver creates a Resolver over store. Secrets are redacted unless an option says otherwise.
func NewResolver(store Store, log logrus.FieldLogger, opts ...ResolverOption) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Resolver{store: store, log: log, redact: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns explicit when it is set, without touching the store.
// Otherwise the store is asked for (host, user).
func (r *Resolver) Resolve(explicit, host, user string) (secret string, err error) {
	if explicit != "" {
		return explicit, nil
	}

	log := r.log.WithFields(logrus.Fields{"host": host, "user": user})
	if r.store == nil {
		err := utils.NewError(utils.ErrCredentialStore, "resolve credential", "no secret store configured", nil)
		log.Error(err)
		return "", err
	}

	// a panicking store is still a store failure
	defer func() {
		if err != nil && utils.KindOf(err) == nil {
			err = utils.Classify(utils.ErrCredentialStore, "resolve credential", err)
			secret = ""
			log.Error(err)
		}
	}()
	defer utils.Recover("resolve credential", &err)

	secret, err = r.store.Get(host, user)
	switch {
	case errors.Is(err, ErrNotFound):
		err = utils.NewError(utils.ErrCredentialNotFound, "resolve credential",
			fmt.Sprintf("no password stored for user %q on %q", user, host), nil)
		log.Error(err)
		return "", err
	case err != nil:
		err = utils.NewError(utils.ErrCredentialStore, "resolve credential",
			fmt.Sprintf("lookup of user %q on %q", user, host), err)
		log.Error(err)
		return "", err
	}

	log.Infof("password retrieved: %s", r.display(secret))
	return secret, nil
}

func (r *Resolver) display(secret string) string {
	if r.redact {
		return redacted
	}
	return strings.TrimSpace(secret)
}
