package fs

import (
	"io"
	"os"
)

/*
	Interface for the primitive functions we expect to be able to perform
	on a filesystem.

	This is deliberately narrow: materializing checked-out files needs to
	create, delete, and look for files, and nothing else.
	All paths are AbsolutePath.  Composite operations (like placing a file
	with all its parent dirs) live in the `fsOp` package.

	Errors returned are errcat errors with an `fs.ErrorCategory`.
*/
type FS interface {
	OpenFile(path AbsolutePath, flag int, perms Perms) (File, error)
	MkdirAll(path AbsolutePath, perms Perms) error
	Remove(path AbsolutePath) error
	Exists(path AbsolutePath) (bool, error)
}

type File interface {
	io.Reader
	io.Writer
	io.Closer
}

type Perms uint16

func (p Perms) OS() os.FileMode {
	return os.FileMode(p & 0777)
}
