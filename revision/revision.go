/*
	The revision package is the read-only interface to version control.

	A Repository resolves revision identifiers into Snapshots;
	a Snapshot reads the exact bytes of a file as it was at that revision.
	Nothing here ever writes to a repository.

	The `revision/git` package is the adapter onto real git repositories.
*/
package revision

import (
	. "github.com/warpfork/go-errcat"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/fs"
)

/*
	Repository is a handle to a version-controlled tree at some location.

	Implementations must be safe to call from multiple goroutines,
	and must return errors with an `api.ErrorCategory`:

	  - `api.ErrRevisionNotFound` -- if the revision does not resolve
	  - `api.ErrBackendUnavailable` -- for any lower-level failure
*/
type Repository interface {
	Location() string
	Resolve(rev api.RevisionID) (Snapshot, error)
}

/*
	Snapshot is one resolved revision of a Repository.

	ReadFile returns the content of a regular file at the path, with no
	transformation of any kind.  May return errors of category:

	  - `api.ErrPathNotFound` -- if there's no regular file at the path
	  - `api.ErrBackendUnavailable` -- for any lower-level failure
*/
type Snapshot interface {
	Revision() api.RevisionID // the revision as it was asked for.
	Hash() string             // the revision as it resolved.
	ReadFile(path fs.RelPath) ([]byte, error)
}

// Opens a Repository at a location.  Failure is `api.ErrBackendUnavailable`.
type Opener func(location string) (Repository, error)

/*
	Read the content of the file at relPath as it was at the revision.

	This is the one-stop convenience over Resolve and ReadFile.
*/
func Read(repo Repository, rev api.RevisionID, relPath string) (body []byte, err error) {
	defer RequireErrorHasCategory(&err, api.ErrorCategory(""))

	path, err := CleanPath(relPath)
	if err != nil {
		return nil, err
	}
	snap, err := repo.Resolve(rev)
	if err != nil {
		return nil, err
	}
	return snap.ReadFile(path)
}

/*
	Normalizes a path in a repository tree.

	Paths are slash-separated and relative to the repository root;
	a leading "./" and redundant elements are fine and cleaned away.
	Absolute paths, paths that climb out of the tree, and the root itself
	are all `api.ErrUsage`.
*/
func CleanPath(relPath string) (fs.RelPath, error) {
	path, err := fs.ParseRelPath(relPath)
	if err != nil {
		return fs.RelPath{}, Errorf(api.ErrUsage, "invalid path %q: %s", relPath, err)
	}
	if path.Escapes() {
		return fs.RelPath{}, Errorf(api.ErrUsage, "invalid path %q: must not leave the repository", relPath)
	}
	if path == (fs.RelPath{}) {
		return fs.RelPath{}, Errorf(api.ErrUsage, "invalid path %q: names the repository root, not a file", relPath)
	}
	return path, nil
}
