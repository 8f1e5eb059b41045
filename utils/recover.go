package utils

import (
	"fmt"
	"runtime/debug"
)

// Recover converts a panic into an error stored in *err.
// It must be deferred directly: defer utils.Recover("sftp stat", &err)
func Recover(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: recovering from panic: %v\n%s", op, r, debug.Stack())
	}
}
