package api

/*
	This file is the vocabulary shared by every layer:
	revision identifiers and the artifacts a session materializes.
*/

import (
	"fmt"
)

/*
	A RevisionID names a snapshot of a repository.

	It is opaque to everything except the revision backend that resolves it:
	a full commit hash, an abbreviated one, a branch or tag name, or a
	revision expression like "HEAD~2" are all acceptable values.
*/
type RevisionID string

func (r RevisionID) String() string { return string(r) }

/*
	Short returns at most n leading characters of the revision, which is
	the conventional way of printing a commit hash for humans.
*/
func (r RevisionID) Short(n int) string {
	if n <= 0 || len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}

/*
	Artifact is a tracked, cleanup-eligible byproduct of materialization.

	It is a closed union: the only members are FileArtifact and UnitArtifact.
*/
type Artifact interface {
	_artifact()

	// The identifier of this artifact: an absolute path for files,
	// a unit name for loaded units.  Unique for the process lifetime.
	ID() string

	// Logical creation order within the owning session.
	Order() uint64
}

var (
	_ Artifact = FileArtifact{}
	_ Artifact = UnitArtifact{}
)

// A file written to disk with the content of Source at Revision.
type FileArtifact struct {
	Path     string     `refmt:"path"`
	Revision RevisionID `refmt:"revision"`
	Source   string     `refmt:"source"` // path of the file inside the repository.
	Seq      uint64     `refmt:"seq"`
}

func (FileArtifact) _artifact()       {}
func (a FileArtifact) ID() string     { return a.Path }
func (a FileArtifact) Order() uint64  { return a.Seq }
func (a FileArtifact) String() string { return fmt.Sprintf("file %q (%s@%s)", a.Path, a.Source, a.Revision) }

/*
	A unit registered in a loader namespace.

	File describes the backing file the unit source was materialized into;
	a UnitArtifact with an empty UnitName is a load that never completed,
	and only its File is meaningful.
*/
type UnitArtifact struct {
	UnitName string       `refmt:"unit"`
	File     FileArtifact `refmt:"file"`
	Seq      uint64       `refmt:"seq"`
}

func (UnitArtifact) _artifact()      {}
func (a UnitArtifact) ID() string    { return a.UnitName }
func (a UnitArtifact) Order() uint64 { return a.Seq }
func (a UnitArtifact) String() string {
	return fmt.Sprintf("unit %q (%s@%s)", a.UnitName, a.File.Source, a.File.Revision)
}
