/*
	A filesystem that lives entirely in memory.

	Handy for tests, and for callers who only ever want loaded units
	and have no use for the backing files being on a real disk.
*/
package memfs

import (
	srcd_memfs "gopkg.in/src-d/go-billy.v4/memfs"

	"github.com/Avishs-nd/MuskCult/fs"
	"github.com/Avishs-nd/MuskCult/fs/billyfs"
)

func New() fs.FS {
	return billyfs.New(srcd_memfs.New())
}
