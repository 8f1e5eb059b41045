// Copyright © NGRSoftlab 2020-2025

package ftppush

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ngrsoftlab/ftppush/utils"
)

// UploaderOption configures an Uploader
type UploaderOption func(*Uploader)

// WithLogger sets the logger used by the Uploader and its Reconciler
func WithLogger(log logrus.FieldLogger) UploaderOption {
	return func(u *Uploader) {
		if log != nil {
			u.log = log
		}
	}
}

// WithLocalRemover replaces os.Remove for deleting uploaded source files
func WithLocalRemover(remove func(path string) error) UploaderOption {
	return func(u *Uploader) {
		if remove != nil {
			u.removeLocal = remove
		}
	}
}

// Uploader pushes one local file per call over a fresh Connection
type Uploader struct {
	dialer      Dialer
	reconciler  *Reconciler
	log         logrus.FieldLogger
	removeLocal func(path string) error
}

// NewUploader creates an Uploader opening its connections with dialer
func NewUploader(dialer Dialer, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		dialer:      dialer,
		log:         logrus.StandardLogger(),
		removeLocal: os.Remove,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.reconciler = NewReconciler(u.log)
	return u
}

// Upload pushes req.SourcePath into the reconciled remote directory.
//
// Steps short-circuit on the first failure, except that an opened connection
// is always closed. The returned error is the earliest one, in the order:
// source missing, connect, reconcile, remove existing, transfer, local delete, close.
func (u *Uploader) Upload(ctx context.Context, req Request) (err error) {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	source := utils.ExpandPath(req.SourcePath, req.SourceBasePath)
	log := u.log.WithFields(logrus.Fields{
		"source":   source,
		"protocol": req.Endpoint.Protocol(),
		"host":     req.Endpoint.Host,
	})

	if !regularFileExists(source) {
		err := utils.NewError(utils.ErrSourceFileNotFound, "upload", fmt.Sprintf("%q", source), nil)
		log.Error(err)
		return err
	}

	conn, err := u.dial(ctx, req.Endpoint)
	if err != nil {
		log.WithError(err).Error("connection FAILED")
		return err
	}
	defer func() {
		if closeErr := CloseConnection(conn, log); err == nil {
			err = closeErr
		}
	}()

	dir, err := u.reconciler.Reconcile(conn, req.RemoteDir, req.CreateRemoteDirIfMissing)
	if err != nil {
		return err
	}

	remotePath := JoinRemote(dir, filepath.Base(source))
	log = log.WithField("remote_path", remotePath)

	if req.RemoveExistingRemoteFile {
		if err := u.removeExisting(conn, remotePath, log); err != nil {
			return err
		}
	}

	if err := u.transfer(ctx, conn, source, remotePath, req.Progress); err != nil {
		log.WithError(err).Errorf("UPLOAD failure of local file %q to remote path %q", source, remotePath)
		return err
	}
	log.Infof("UPLOAD success of local file %q to remote path %q", source, remotePath)

	if req.DeleteLocalAfterUpload {
		if err := u.deleteLocal(source, log); err != nil {
			return err
		}
		log.Infof("DELETE of file %q succeeded after upload to %q", source, remotePath)
	}

	return nil
}

// dial opens a connection. Every failure, a panicking dialer included, leaves
// with the connect kind of the endpoint's protocol.
func (u *Uploader) dial(ctx context.Context, ep Endpoint) (conn Connection, err error) {
	defer func() {
		if err == nil {
			return
		}
		kind := utils.ErrFtpConnect
		if ep.Secure {
			kind = utils.ErrSftpConnect
		}
		conn, err = nil, utils.Classify(kind, "connect", err)
	}()
	defer utils.Recover("dial", &err)

	if u.dialer == nil {
		return nil, errors.New("dialer is nil")
	}
	conn, err = u.dialer.Dial(ctx, ep)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, utils.ErrConnectionNil
	}
	return conn, nil
}

// removeExisting deletes a remote file already at remotePath. A failed check is
// treated as "no file" so the transfer overwrites it.
func (u *Uploader) removeExisting(conn Connection, remotePath string, log logrus.FieldLogger) (err error) {
	defer utils.Recover("remove existing", &err)

	exists, checkErr := conn.Exists(remotePath)
	if checkErr != nil {
		log.WithError(checkErr).Warnf("existence check of remote file %q failed", remotePath)
		return nil
	}
	if !exists {
		return nil
	}

	if err := conn.Remove(remotePath); err != nil {
		err = utils.NewError(utils.ErrRemoteFileRemoveFailed, "remove existing", fmt.Sprintf("%q", remotePath), err)
		log.WithError(err).Errorf("REMOVE failure of existing file %q", remotePath)
		return err
	}
	log.Infof("REMOVE success of existing file %q", remotePath)
	return nil
}

func (u *Uploader) transfer(ctx context.Context, conn Connection, source, remotePath string, progress ProgressFunc) (err error) {
	defer func() {
		if err != nil {
			err = utils.NewError(utils.ErrUploadTransferFailed, "upload",
				fmt.Sprintf("%q -> %q", source, remotePath), err)
		}
	}()
	defer utils.Recover("upload", &err)

	return conn.Upload(ctx, &FileContent{SourcePath: source}, remotePath, progress)
}

// deleteLocal removes the uploaded source. A file that vanished meanwhile only warns.
func (u *Uploader) deleteLocal(source string, log logrus.FieldLogger) error {
	err := u.removeLocal(source)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrNotExist):
		log.Warnf("file %q NOT deleted as it does NOT seem to exist", source)
		return nil
	default:
		err = utils.NewError(utils.ErrLocalDeleteFailed, "delete local", fmt.Sprintf("%q", source), err)
		log.WithError(err).Errorf("DELETE of file %q FAILED after upload", source)
		return err
	}
}

func regularFileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
