package fsOp

import (
	"io"
	"os"

	. "github.com/warpfork/go-errcat"

	"github.com/Avishs-nd/MuskCult/fs"
)

/*
	Places a file on the filesystem, creating parent dirs as needed.

	If `exclusive` is true, the file must not already exist, and an
	`fs.ErrAlreadyExists` error is returned if it does; this is how callers
	who generated a fresh name make sure it really was fresh.
	Otherwise an existing file is truncated and overwritten.

	The body is copied in full before this returns.  If the copy fails
	part-way, the partially written file is removed again (best-effort)
	so that no truncated content is left lying around under the name.
*/
func PlaceFile(afs fs.FS, path fs.AbsolutePath, body io.Reader, perms fs.Perms, exclusive bool) error {
	if err := afs.MkdirAll(path.Dir(), 0755); err != nil {
		return err
	}
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if exclusive {
		flag |= os.O_EXCL
	}
	file, err := afs.OpenFile(path, flag, perms)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		afs.Remove(path)
		return fs.NormalizeIOError(err)
	}
	if err := file.Close(); err != nil {
		afs.Remove(path)
		return fs.NormalizeIOError(err)
	}
	return nil
}

/*
	Removes a file if it is present.

	Returns true if there was a file to remove.
	A path that's already gone is not an error: the caller wanted it gone
	and gone it is.
*/
func RemoveFile(afs fs.FS, path fs.AbsolutePath) (removed bool, err error) {
	err = afs.Remove(path)
	switch Category(err) {
	case nil:
		return true, nil
	case fs.ErrNotExists:
		return false, nil
	default:
		return false, err
	}
}
