// Copyright © NGRSoftlab 2020-2025

package ftppush

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ngrsoftlab/ftppush/utils"
)

// Reconciler decides which spelling of a remote directory is valid on a host:
// the configured one or the one with its leading "/" toggled. Hosts and
// backends disagree on whether "uploads" and "/uploads" name the same place.
type Reconciler struct {
	log logrus.FieldLogger
}

// NewReconciler creates a Reconciler logging to log
func NewReconciler(log logrus.FieldLogger) *Reconciler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{log: log}
}

// Reconcile returns the form of dir that exists on conn, creating it when
// create is set and neither form exists. An empty dir means the session's
// default directory and is returned as is.
//
// Missing or uncreatable directories are not retried here: the error says so
// and the next invocation of the tool tries again.
func (r *Reconciler) Reconcile(conn Connection, dir string, create bool) (string, error) {
	if conn == nil {
		return "", utils.ErrConnectionNil
	}
	log := r.log.WithField("remote_dir", dir)

	if dir == "" {
		log.Info("no remote directory configured, using the session default directory")
		return "", nil
	}

	if r.exists(conn, dir, "original") {
		log.Infof("remote path (original) %q does exist", dir)
		return dir, nil
	}
	log.Warnf("remote path (original) %q does NOT exist", dir)

	toggled := ToggleLeadingSeparator(dir)
	if r.exists(conn, toggled, "modified") {
		log.Infof("remote path (modified) %q does exist", toggled)
		return toggled, nil
	}
	log.Warnf("remote path (modified) %q does NOT exist", toggled)

	if !create {
		err := utils.NewError(utils.ErrRemoteDirectoryMissing, "reconcile",
			fmt.Sprintf("original %q and modified %q do not exist", dir, toggled), nil)
		log.Error(err)
		log.Error("remote path existence will be checked again on the next run")
		return "", err
	}

	lastErr := conn.MkdirAll(dir)
	if lastErr == nil {
		log.Infof("remote path (original) %q was created", dir)
		return dir, nil
	}
	log.WithError(lastErr).Warnf("remote path (original) %q was NOT created", dir)

	lastErr = conn.MkdirAll(toggled)
	if lastErr == nil {
		log.Infof("remote path (modified) %q was created", toggled)
		return toggled, nil
	}
	log.WithError(lastErr).Warnf("remote path (modified) %q was NOT created", toggled)

	err := utils.NewError(utils.ErrRemoteDirectoryCreateFailed, "reconcile",
		fmt.Sprintf("original %q and modified %q were not created", dir, toggled), lastErr)
	log.Error(err)
	log.Error("remote path creation will be retried on the next run")
	return "", err
}

// exists checks one path form. A failed check counts as "does not exist".
func (r *Reconciler) exists(conn Connection, p, form string) bool {
	ok, err := conn.Exists(p)
	if err != nil {
		r.log.WithError(err).WithField("form", form).Warnf("existence check of %q failed", p)
		return false
	}
	return ok
}
