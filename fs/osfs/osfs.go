package osfs

import (
	srcd_osfs "gopkg.in/src-d/go-billy.v4/osfs"

	"github.com/Avishs-nd/MuskCult/fs"
	"github.com/Avishs-nd/MuskCult/fs/billyfs"
)

// The host filesystem.  Paths are used as given (billy is rooted at "/").
func New() fs.FS {
	return billyfs.New(srcd_osfs.New("/"))
}
