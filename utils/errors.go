// Copyright © NGRSoftlab 2020-2025

package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure reported by ftppush wraps exactly one of them,
// so callers can branch with errors.Is(err, utils.ErrRemoteDirectoryMissing).
var (
	ErrCredentialNotFound          = errors.New("credential not found")
	ErrCredentialStore             = errors.New("credential store error")
	ErrFtpConnect                  = errors.New("ftp connect failed")
	ErrSftpConnect                 = errors.New("sftp connect failed")
	ErrSourceFileNotFound          = errors.New("source file not found")
	ErrRemoteDirectoryMissing      = errors.New("remote directory missing")
	ErrRemoteDirectoryCreateFailed = errors.New("remote directory create failed")
	ErrRemoteFileRemoveFailed      = errors.New("remote file remove failed")
	ErrUploadTransferFailed        = errors.New("upload transfer failed")
	ErrLocalDeleteFailed           = errors.New("local delete failed")
	ErrConnectionCloseFailed       = errors.New("connection close failed")

	ErrConnectionNil = errors.New("connection is nil")
)

var kinds = []error{
	ErrCredentialNotFound,
	ErrCredentialStore,
	ErrFtpConnect,
	ErrSftpConnect,
	ErrSourceFileNotFound,
	ErrRemoteDirectoryMissing,
	ErrRemoteDirectoryCreateFailed,
	ErrRemoteFileRemoveFailed,
	ErrUploadTransferFailed,
	ErrLocalDeleteFailed,
	ErrConnectionCloseFailed,
}

// Error is a classified failure: Kind is one of the Err* sentinels above,
// Err is the underlying library error (may be nil).
type Error struct {
	Kind   error
	Op     string // operation that failed, e.g. "reconcile"
	Detail string // free-form context: paths, path forms, hosts
	Err    error
}

// NewError builds a classified error
func NewError(kind error, op, detail string, err error) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying library error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error kind
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// KindOf returns the kind of the outermost classified error in err's chain, or nil
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Classify wraps err into kind unless it already carries a kind
func Classify(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != nil {
		return err
	}
	return NewError(kind, op, "", err)
}

// ReplyCodeMapper translates FTP reply codes into human-readable messages
type ReplyCodeMapper struct {
	codes map[int]string
}

// NewDefaultReplyCodeMapper returns a ReplyCodeMapper initialized with the RFC 959 / RFC 2228 negative replies
func NewDefaultReplyCodeMapper() *ReplyCodeMapper {
	return &ReplyCodeMapper{codes: map[int]string{
		421: "service not available, closing control connection",
		425: "can't open data connection",
		426: "connection closed; transfer aborted",
		430: "invalid username or password",
		434: "requested host unavailable",
		450: "requested file action not taken (file unavailable)",
		451: "requested action aborted: local error in processing",
		452: "requested action not taken: insufficient storage space",

		500: "syntax error, command unrecognized",
		501: "syntax error in parameters or arguments",
		502: "command not implemented",
		503: "bad sequence of commands",
		504: "command not implemented for that parameter",
		530: "not logged in",
		532: "need account for storing files",
		534: "request denied for policy reasons",
		550: "requested action not taken (file unavailable or no access)",
		551: "requested action aborted: page type unknown",
		552: "requested file action aborted: exceeded storage allocation",
		553: "requested action not taken: file name not allowed",
	}}
}

// Lookup returns a descriptive message for the given reply code.
// Unknown 4xx codes are transient, unknown 5xx codes are permanent.
func (m *ReplyCodeMapper) Lookup(code int) string {
	if msg, ok := m.codes[code]; ok {
		return msg
	}
	switch code / 100 {
	case 4:
		return fmt.Sprintf("transient negative completion %d", code)
	case 5:
		return fmt.Sprintf("permanent negative completion %d", code)
	}
	return fmt.Sprintf("reply %d", code)
}
