/*
	Adapts any go-billy filesystem to the narrow `fs.FS` interface.

	Both the host filesystem (`fs/osfs`) and the in-memory one (`fs/memfs`)
	are built on this, so they share every behavior except where the bytes go.
*/
package billyfs

import (
	"os"
	"sync"

	. "github.com/warpfork/go-errcat"
	"gopkg.in/src-d/go-billy.v4"

	"github.com/Avishs-nd/MuskCult/fs"
)

var _ fs.FS = &billyFS{}

func New(bfs billy.Filesystem) fs.FS {
	return &billyFS{bfs: bfs}
}

type billyFS struct {
	bfs billy.Filesystem
	mu  sync.Mutex // held across check-and-create for exclusive opens.
}

func (afs *billyFS) OpenFile(path fs.AbsolutePath, flag int, perms fs.Perms) (fs.File, error) {
	if flag&os.O_EXCL != 0 {
		afs.mu.Lock()
		defer afs.mu.Unlock()
		switch _, err := afs.bfs.Lstat(path.String()); {
		case err == nil:
			return nil, Errorf(fs.ErrAlreadyExists, "%s already exists", path)
		case !os.IsNotExist(err):
			return nil, fs.NormalizeIOError(err)
		}
	}
	f, err := afs.bfs.OpenFile(path.String(), flag, perms.OS())
	if err != nil {
		return nil, fs.NormalizeIOError(err)
	}
	return f, nil
}

func (afs *billyFS) MkdirAll(path fs.AbsolutePath, perms fs.Perms) error {
	return fs.NormalizeIOError(afs.bfs.MkdirAll(path.String(), perms.OS()))
}

func (afs *billyFS) Remove(path fs.AbsolutePath) error {
	return fs.NormalizeIOError(afs.bfs.Remove(path.String()))
}

func (afs *billyFS) Exists(path fs.AbsolutePath) (bool, error) {
	_, err := afs.bfs.Stat(path.String())
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fs.NormalizeIOError(err)
	}
}
