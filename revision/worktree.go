package revision

import (
	"fmt"

	. "github.com/warpfork/go-errcat"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/fs"
	"github.com/Avishs-nd/MuskCult/fs/osfs"
	"github.com/Avishs-nd/MuskCult/fsOp"
)

/*
	The revision that stands for the working tree as it is on disk,
	uncommitted edits and all.  It only means anything to ReadWorking;
	Resolve treats it like any other name.
*/
const WorkingTree = api.RevisionID("worktree")

/*
	Worktree is implemented by Repositories that have a working tree
	checked out somewhere on the host.
*/
type Worktree interface {
	WorktreeRoot() (fs.AbsolutePath, error)
}

/*
	Read the content of the file at relPath as it is in the working tree
	right now, and return where it was read from too.

	May return errors of category:

	  - `api.ErrUsage` -- if the path is no good, or the repository has no working tree
	  - `api.ErrPathNotFound` -- if there's no regular file at the path
	  - `api.ErrBackendUnavailable` -- if the file can't be read
*/
func ReadWorking(repo Repository, relPath string) (_ fs.AbsolutePath, body []byte, err error) {
	defer RequireErrorHasCategory(&err, api.ErrorCategory(""))

	path, err := CleanPath(relPath)
	if err != nil {
		return fs.AbsolutePath{}, nil, err
	}
	wt, ok := repo.(Worktree)
	if !ok {
		return fs.AbsolutePath{}, nil, Errorf(api.ErrUsage, "repository %s has no working tree", repo.Location())
	}
	root, err := wt.WorktreeRoot()
	if err != nil {
		return fs.AbsolutePath{}, nil, err
	}
	full := root.Join(path)
	body, err = fsOp.ReadFile(osfs.New(), full)
	switch Category(err) {
	case nil:
		return full, body, nil
	case fs.ErrNotExists, fs.ErrIsDir, fs.ErrNotDir:
		return full, nil, ErrorDetailed(api.ErrPathNotFound, fmt.Sprintf("no file at %s in the working tree", relPath), map[string]string{
			"path":     relPath,
			"location": root.String(),
		})
	default:
		return full, nil, ErrorDetailed(api.ErrBackendUnavailable, fmt.Sprintf("cannot read %s in the working tree: %s", relPath, err), map[string]string{
			"path":     relPath,
			"location": root.String(),
			"cause":    err.Error(),
		})
	}
}
