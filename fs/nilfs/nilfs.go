/*
	A filesystem that refuses every mutation and contains nothing.

	Useful for exercising the write-failure paths of anything that
	materializes files.
*/
package nilFS

import (
	. "github.com/warpfork/go-errcat"

	"github.com/Avishs-nd/MuskCult/fs"
)

func New() fs.FS {
	return &nilFS{}
}

type nilFS struct{}

func (afs *nilFS) OpenFile(path fs.AbsolutePath, flag int, perms fs.Perms) (fs.File, error) {
	return nil, Errorf(fs.ErrReadOnly, "nilfs: cannot open %s", path)
}

func (afs *nilFS) MkdirAll(path fs.AbsolutePath, perms fs.Perms) error {
	return Errorf(fs.ErrReadOnly, "nilfs: cannot mkdir %s", path)
}

func (afs *nilFS) Remove(path fs.AbsolutePath) error {
	return Errorf(fs.ErrNotExists, "nilfs: %s does not exist", path)
}

func (afs *nilFS) Exists(path fs.AbsolutePath) (bool, error) {
	return false, nil
}
