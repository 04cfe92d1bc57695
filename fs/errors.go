package fs

import (
	"os"
	"syscall"

	. "github.com/warpfork/go-errcat"
)

type ErrorCategory string

const (
	ErrBadPath       = ErrorCategory("fs-bad-path")       // A path was unparseable as the kind of path required.
	ErrNotExists     = ErrorCategory("fs-not-exists")     // The path does not exist.
	ErrAlreadyExists = ErrorCategory("fs-already-exists") // The path exists and an exclusive operation was requested.
	ErrNotDir        = ErrorCategory("fs-not-dir")        // Some component of the path is not a directory.
	ErrIsDir         = ErrorCategory("fs-is-dir")         // A file was expected but the path is a directory.
	ErrPermission    = ErrorCategory("fs-permission")     // The OS refused the operation.
	ErrReadOnly      = ErrorCategory("fs-read-only")      // The filesystem refuses mutations.
	ErrIOUnknown     = ErrorCategory("fs-io-unknown")     // Catchall
)

/*
	Attempt to normalize an error from the os (or billy) layer into an
	errcat error with one of the fs categories.

	Errors that already have a category pass through unchanged.
*/
func NormalizeIOError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(Error); ok {
		return err
	}
	switch {
	case os.IsNotExist(err):
		return Errorf(ErrNotExists, "%s", err)
	case os.IsExist(err):
		return Errorf(ErrAlreadyExists, "%s", err)
	case os.IsPermission(err):
		return Errorf(ErrPermission, "%s", err)
	}
	if pe, ok := err.(*os.PathError); ok {
		switch pe.Err {
		case syscall.ENOTDIR:
			return Errorf(ErrNotDir, "%s", err)
		case syscall.EISDIR:
			return Errorf(ErrIsDir, "%s", err)
		}
	}
	return Errorf(ErrIOUnknown, "%s", err)
}
