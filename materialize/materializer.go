/*
	The materializer turns (revision, path) pairs into artifacts:
	files on a filesystem, and units loaded into a namespace.

	It doesn't track what it creates; that's the session's job.
	Each method returns the artifact it made -- or on some failures, the
	part of it that was made -- and the caller decides its lifetime.
*/
package materialize

import (
	"bytes"
	"fmt"

	. "github.com/warpfork/go-errcat"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/fs"
	"github.com/Avishs-nd/MuskCult/fsOp"
	"github.com/Avishs-nd/MuskCult/loader"
	"github.com/Avishs-nd/MuskCult/log"
	"github.com/Avishs-nd/MuskCult/namer"
	"github.com/Avishs-nd/MuskCult/revision"
)

const filePerms = fs.Perms(0644)

type Materializer struct {
	FS         fs.FS
	Namespace  loader.Namespace
	Namer      namer.Namer
	ScratchDir fs.AbsolutePath // where files without an explicit destination go.
	Monitor    api.Monitor
}

/*
	Writes the content of relPath at rev into a file.

	If dest is empty, the file goes into the scratch dir under a freshly
	generated name; the name is claimed exclusively, so it is never a file
	anyone else made.  Otherwise dest is used as given (made absolute),
	and an existing file there is overwritten.

	Errors are those of `revision.Read`, or `api.ErrWriteFailed`.
	No file is left behind on error.
*/
func (m Materializer) ToFile(repo revision.Repository, rev api.RevisionID, relPath string, dest string, seq uint64) (_ api.FileArtifact, err error) {
	defer RequireErrorHasCategory(&err, api.ErrorCategory(""))

	body, err := revision.Read(repo, rev, relPath)
	if err != nil {
		log.ReadFailed(m.Monitor, err, rev, relPath)
		return api.FileArtifact{}, err
	}
	_, art, err := m.place(rev, relPath, body, dest, seq)
	return art, err
}

/*
	Writes the content of relPath at rev into a scratch file, then loads
	that file as a unit named after baseName.

	When the load itself fails, the error is `api.ErrLoadFailed`, and the
	returned UnitArtifact has an empty UnitName but a populated File:
	the backing file was written and the caller still owns its cleanup.
	Whatever the namespace may have registered under the unit name is
	rolled back before returning.
*/
func (m Materializer) ToLoadedUnit(repo revision.Repository, rev api.RevisionID, relPath string, baseName string, seq uint64) (_ api.UnitArtifact, _ loader.Unit, err error) {
	defer RequireErrorHasCategory(&err, api.ErrorCategory(""))

	body, err := revision.Read(repo, rev, relPath)
	if err != nil {
		log.ReadFailed(m.Monitor, err, rev, relPath)
		return api.UnitArtifact{}, nil, err
	}
	token, file, err := m.place(rev, relPath, body, "", seq)
	if err != nil {
		return api.UnitArtifact{}, nil, err
	}
	unit, art, err := m.load(rev, relPath, file, namer.UnitName(baseName, token), body)
	return art, unit, err
}

/*
	Loads the file at relPath as it is in the repository's working tree,
	as a unit named after baseName.  Nothing is written anywhere: the unit's
	origin is the working tree file itself, which is never the caller's to
	clean up, so only the unit is returned as an artifact.

	Errors are those of `revision.ReadWorking`, or `api.ErrLoadFailed`.
	No unit is left registered on error.
*/
func (m Materializer) ToWorkingUnit(repo revision.Repository, relPath string, baseName string, seq uint64) (_ api.UnitArtifact, _ loader.Unit, err error) {
	defer RequireErrorHasCategory(&err, api.ErrorCategory(""))

	path, body, err := revision.ReadWorking(repo, relPath)
	if err != nil {
		log.ReadFailed(m.Monitor, err, revision.WorkingTree, relPath)
		return api.UnitArtifact{}, nil, err
	}
	file := api.FileArtifact{
		Path:     path.String(),
		Revision: revision.WorkingTree,
		Source:   relPath,
		Seq:      seq,
	}
	unitName := namer.UnitName(baseName, m.Namer.Next(revision.WorkingTree, seq))
	unit, art, err := m.load(revision.WorkingTree, relPath, file, unitName, body)
	if err != nil {
		return api.UnitArtifact{}, nil, err
	}
	return art, unit, nil
}

// Registers body as unitName, rolling back any partial registration on failure.
func (m Materializer) load(rev api.RevisionID, relPath string, file api.FileArtifact, unitName string, body []byte) (loader.Unit, api.UnitArtifact, error) {
	art := api.UnitArtifact{File: file, Seq: file.Seq}
	unit, err := m.Namespace.RegisterAndExecute(unitName, file.Path, body)
	if err != nil {
		if m.Namespace.Has(unitName) {
			if err2 := m.Namespace.Unregister(unitName); err2 != nil {
				log.ReleaseFailed(m.Monitor, err2, api.UnitArtifact{UnitName: unitName, File: file, Seq: file.Seq})
			}
		}
		log.LoadFailed(m.Monitor, err, unitName, file.Path)
		if Category(err) != api.ErrLoadFailed {
			err = ErrorDetailed(api.ErrLoadFailed, fmt.Sprintf("loading %s at revision %s failed: %s", relPath, rev, err), map[string]string{
				"revision": string(rev),
				"path":     relPath,
				"unit":     unitName,
				"cause":    err.Error(),
			})
		}
		return nil, art, err
	}
	art.UnitName = unitName
	log.UnitLoaded(m.Monitor, art)
	return unit, art, nil
}

// Writes body to dest, or to a fresh scratch name if dest is empty.  Returns the token used for the name, if any.
func (m Materializer) place(rev api.RevisionID, relPath string, body []byte, dest string, seq uint64) (token string, art api.FileArtifact, err error) {
	var path fs.AbsolutePath
	exclusive := dest == ""
	if exclusive {
		token = m.Namer.Next(rev, seq)
		path = m.ScratchDir.Join(fs.MustRelPath(namer.FileName(relPath, token)))
	} else {
		path, err = fs.ParseAbsolutePath(dest)
		if err != nil {
			err = Errorf(api.ErrWriteFailed, "invalid destination %q: %s", dest, err)
			log.WriteFailed(m.Monitor, err, dest)
			return "", api.FileArtifact{}, err
		}
	}
	if err := fsOp.PlaceFile(m.FS, path, bytes.NewReader(body), filePerms, exclusive); err != nil {
		err = ErrorDetailed(api.ErrWriteFailed, fmt.Sprintf("writing %s at revision %s to %s failed: %s", relPath, rev, path, err), map[string]string{
			"revision": string(rev),
			"path":     path.String(),
			"cause":    err.Error(),
		})
		log.WriteFailed(m.Monitor, err, path.String())
		return "", api.FileArtifact{}, err
	}
	art = api.FileArtifact{
		Path:     path.String(),
		Revision: rev,
		Source:   relPath,
		Seq:      seq,
	}
	log.ArtifactCreated(m.Monitor, art)
	return token, art, nil
}
