/*
	The git revision backend reads historical file content out of local
	git repositories.

	It never writes: no checkout, no index changes, no refs.  Content
	comes straight out of the object store, so the working tree (and
	whatever uncommitted state it is in) is left completely alone.

	Revisions may be given as full commit hashes, abbreviated ones (at
	least four hex characters, and unambiguous), or anything that git's
	revision syntax resolves: branch and tag names, "HEAD", "HEAD~2", etc.

	This backend does not require a git binary on the path.
*/
package git

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	. "github.com/warpfork/go-errcat"
	srcd_git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/filemode"
	"gopkg.in/src-d/go-git.v4/plumbing/object"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/fs"
	"github.com/Avishs-nd/MuskCult/revision"
)

var (
	_ revision.Repository = &Repository{}
	_ revision.Snapshot   = &snapshot{}
	_ revision.Worktree   = &Repository{}
	_ revision.Opener     = Opener
)

// Shortest abbreviation that we'll try to expand, same as git's.
const minAbbrev = 4

/*
	A local git repository opened for reading.

	The go-git object store isn't safe for concurrent access, so every
	read through a Repository (and its Snapshots) takes the same lock.
	One Repository can therefore be shared freely.
*/
type Repository struct {
	// user's location retained for messages
	location string
	// Absolute path that we actually opened
	sanitizedLocation string

	mu   sync.Mutex
	repo *srcd_git.Repository
}

/*
	Opens the git repository at the location.

	The location may be the root of a working tree, any directory inside one,
	a "file://" URL of either, or a bare repository.

	May return errors of category:

	  - `api.ErrUsage` -- for locations that aren't local paths
	  - `api.ErrBackendUnavailable` -- if there's no repository there, or it can't be read
*/
func Open(location string) (*Repository, error) {
	sanitizedLocation, err := SanitizeLocation(location)
	if err != nil {
		return nil, err
	}
	repo, err := srcd_git.PlainOpenWithOptions(sanitizedLocation, &srcd_git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err == srcd_git.ErrRepositoryNotExists {
		return nil, ErrorDetailed(api.ErrBackendUnavailable, "repository does not exist", map[string]string{
			"cause":    err.Error(),
			"location": sanitizedLocation,
		})
	} else if err != nil {
		return nil, ErrorDetailed(api.ErrBackendUnavailable, "repository unreadable", map[string]string{
			"cause":    err.Error(),
			"location": sanitizedLocation,
		})
	}
	return &Repository{
		location:          location,
		sanitizedLocation: sanitizedLocation,
		repo:              repo,
	}, nil
}

// Open, as a revision.Opener.
func Opener(location string) (revision.Repository, error) {
	repo, err := Open(location)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *Repository) Location() string {
	return r.sanitizedLocation
}

/*
	Returns the root of the repository's working tree, which is not
	necessarily the location it was opened at.
	Bare repositories have none, which is an `api.ErrUsage`.
*/
func (r *Repository) WorktreeRoot() (fs.AbsolutePath, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wt, err := r.repo.Worktree()
	if err == srcd_git.ErrIsBareRepository {
		return fs.AbsolutePath{}, Errorf(api.ErrUsage, "repository %s is bare and has no working tree", r.sanitizedLocation)
	} else if err != nil {
		return fs.AbsolutePath{}, Errorf(api.ErrBackendUnavailable, "cannot find the working tree of %s: %s", r.sanitizedLocation, err)
	}
	root, err := fs.ParseAbsolutePath(wt.Filesystem.Root())
	if err != nil {
		return fs.AbsolutePath{}, Errorf(api.ErrBackendUnavailable, "working tree of %s is at an odd path: %s", r.sanitizedLocation, err)
	}
	return root, nil
}

/*
	Returns the full hash of the commit HEAD points at.
*/
func (r *Repository) Head() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, err := r.repo.Head()
	if err == plumbing.ErrReferenceNotFound {
		return "", Errorf(api.ErrRevisionNotFound, "repository %s has no HEAD commit", r.sanitizedLocation)
	} else if err != nil {
		return "", Errorf(api.ErrBackendUnavailable, "cannot read HEAD of %s: %s", r.sanitizedLocation, err)
	}
	return ref.Hash().String(), nil
}

func (r *Repository) Resolve(rev api.RevisionID) (revision.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	commit, err := r.resolveCommit(rev)
	if err != nil {
		return nil, err
	}
	return &snapshot{r, rev, commit}, nil
}

func (r *Repository) resolveCommit(rev api.RevisionID) (*object.Commit, error) {
	if strings.TrimSpace(string(rev)) == "" {
		return nil, Errorf(api.ErrRevisionNotFound, "empty revision")
	}
	// Full hashes are looked up directly.  No ref can shadow them.
	if hash, err := StringToHash(string(rev)); err == nil {
		commit, err := r.repo.CommitObject(hash)
		switch {
		case err == nil:
			return commit, nil
		case err == plumbing.ErrObjectNotFound:
			return nil, r.errRevisionNotFound(rev, err)
		default:
			return nil, r.errBackendUnavailable(rev, err)
		}
	}
	// Everything else goes through revision parsing.
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		if isIOError(err) {
			return nil, r.errBackendUnavailable(rev, err)
		}
		// It might still be an abbreviated hash, which resolution doesn't understand.
		if isAbbrevHash(string(rev)) {
			return r.resolveAbbrev(rev)
		}
		return nil, r.errRevisionNotFound(rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	switch {
	case err == nil:
		return commit, nil
	case err == plumbing.ErrObjectNotFound:
		return nil, r.errRevisionNotFound(rev, err)
	default:
		return nil, r.errBackendUnavailable(rev, err)
	}
}

/*
	Expands an abbreviated commit hash by scanning every commit object.

	This is linear in the size of the repository, but is only reached
	after normal resolution already failed.
*/
func (r *Repository) resolveAbbrev(rev api.RevisionID) (*object.Commit, error) {
	prefix := strings.ToLower(string(rev))
	iter, err := r.repo.CommitObjects()
	if err != nil {
		return nil, r.errBackendUnavailable(rev, err)
	}
	defer iter.Close()
	var matches []*object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if strings.HasPrefix(c.Hash.String(), prefix) {
			matches = append(matches, c)
		}
		return nil
	})
	if err != nil {
		return nil, r.errBackendUnavailable(rev, err)
	}
	switch len(matches) {
	case 0:
		return nil, r.errRevisionNotFound(rev, plumbing.ErrObjectNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, ErrorDetailed(api.ErrRevisionNotFound, "revision "+string(rev)+" is ambiguous", map[string]string{
			"revision": string(rev),
			"location": r.sanitizedLocation,
			"cause":    "matches more than one commit",
		})
	}
}

func (r *Repository) errRevisionNotFound(rev api.RevisionID, cause error) error {
	return ErrorDetailed(api.ErrRevisionNotFound, "revision "+string(rev)+" not found", map[string]string{
		"revision": string(rev),
		"location": r.sanitizedLocation,
		"cause":    cause.Error(),
	})
}

func (r *Repository) errBackendUnavailable(rev api.RevisionID, cause error) error {
	return ErrorDetailed(api.ErrBackendUnavailable, "error reading repository: "+cause.Error(), map[string]string{
		"revision": string(rev),
		"location": r.sanitizedLocation,
		"cause":    cause.Error(),
	})
}

type snapshot struct {
	repo   *Repository
	rev    api.RevisionID
	commit *object.Commit
}

func (s *snapshot) Revision() api.RevisionID { return s.rev }
func (s *snapshot) Hash() string             { return s.commit.Hash.String() }

func (s *snapshot) ReadFile(path fs.RelPath) ([]byte, error) {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	tree, err := s.commit.Tree()
	if err != nil {
		return nil, s.errBackendUnavailable(path, err)
	}
	entry, err := tree.FindEntry(path.Bare())
	switch err {
	case nil:
		// pass
	case object.ErrEntryNotFound, object.ErrDirectoryNotFound, object.ErrFileNotFound:
		return nil, s.errPathNotFound(path, "no such file")
	default:
		return nil, s.errBackendUnavailable(path, err)
	}
	switch entry.Mode {
	case filemode.Regular, filemode.Executable, filemode.Deprecated:
		// pass
	case filemode.Dir:
		return nil, s.errPathNotFound(path, "is a directory, not a regular file")
	case filemode.Symlink:
		return nil, s.errPathNotFound(path, "is a symlink, not a regular file")
	case filemode.Submodule:
		return nil, s.errPathNotFound(path, "is a submodule, not a regular file")
	default:
		return nil, s.errPathNotFound(path, "is not a regular file")
	}
	tf, err := tree.TreeEntryFile(entry)
	if err != nil {
		return nil, s.errBackendUnavailable(path, err)
	}
	reader, err := tf.Blob.Reader()
	if err != nil {
		return nil, s.errBackendUnavailable(path, err)
	}
	defer reader.Close()
	body, err := ioutil.ReadAll(reader)
	if err != nil {
		return nil, s.errBackendUnavailable(path, err)
	}
	return body, nil
}

func (s *snapshot) errPathNotFound(path fs.RelPath, why string) error {
	return ErrorDetailed(api.ErrPathNotFound, "path "+path.Bare()+" at revision "+string(s.rev)+": "+why, map[string]string{
		"revision": string(s.rev),
		"commit":   s.commit.Hash.String(),
		"path":     path.Bare(),
		"location": s.repo.sanitizedLocation,
	})
}

func (s *snapshot) errBackendUnavailable(path fs.RelPath, cause error) error {
	return ErrorDetailed(api.ErrBackendUnavailable, "error reading "+path.Bare()+" at revision "+string(s.rev)+": "+cause.Error(), map[string]string{
		"revision": string(s.rev),
		"commit":   s.commit.Hash.String(),
		"path":     path.Bare(),
		"location": s.repo.sanitizedLocation,
		"cause":    cause.Error(),
	})
}

/*
	Normalizes a repository location to an absolute local path.

	"file://" prefixes are stripped; other URL schemes are rejected,
	because remote repositories would have to be cloned before they
	could be read, and that's not a thing this backend does.
*/
func SanitizeLocation(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", Errorf(api.ErrUsage, "empty repository location")
	}
	if HasFoldedPrefix(location, "file://") {
		if len(location) <= 7 {
			return "", Errorf(api.ErrUsage, "empty repository location")
		}
		location = location[7:]
	} else if strings.Contains(location, "://") {
		return "", Errorf(api.ErrUsage, "repository location %q is not a local path", location)
	}
	if !filepath.IsAbs(location) {
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", Errorf(api.ErrUsage, "failed handling local path")
		}
		location = abs
	}
	return filepath.Clean(location), nil
}

/*
	Combination of strings.EqualFold and strings.HasPrefix
*/
func HasFoldedPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

/*
	Transform a revision string to a git hash, if it is a full one.
	Performs some basic checks on inputs.
*/
func StringToHash(hash string) (plumbing.Hash, error) {
	if err := mustBeFullHash(hash); err != nil {
		return plumbing.Hash{}, err
	}
	return plumbing.NewHash(hash), nil
}

/*
	A git hash must be exactly 40 hex characters
*/
func mustBeFullHash(hash string) error {
	if len(hash) != 40 {
		return Errorf(api.ErrUsage, "git commit hashes are 40 characters")
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return Errorf(api.ErrUsage, "git commit hashes are hex strings")
	}
	return nil
}

func isAbbrevHash(s string) bool {
	if len(s) < minAbbrev || len(s) >= 40 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// True if the error came from the OS rather than from git's own logic.
func isIOError(err error) bool {
	switch err.(type) {
	case *os.PathError, *os.LinkError, *os.SyscallError:
		return true
	}
	return false
}
