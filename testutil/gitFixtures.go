package testutil

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	srcd_git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/object"

	"github.com/Avishs-nd/MuskCult/fs"
)

/*
	A real git repository on disk, built up commit by commit for tests.

	All the methods panic on error; inside a goconvey block that reports
	the failure the same way a failed assertion would.
*/
type FixtureRepo struct {
	Path fs.AbsolutePath
	repo *srcd_git.Repository
	when time.Time
}

// Initializes an empty non-bare repository at the path.
func NewFixtureRepo(path fs.AbsolutePath) *FixtureRepo {
	repo, err := srcd_git.PlainInit(path.String(), false)
	if err != nil {
		panic(err)
	}
	return &FixtureRepo{
		Path: path,
		repo: repo,
		when: time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

/*
	Writes the files into the working tree and commits them, returning
	the full hash of the new commit.
	Keys are slash-separated paths relative to the repository root.
*/
func (r *FixtureRepo) Commit(msg string, files map[string]string) string {
	wt, err := r.repo.Worktree()
	if err != nil {
		panic(err)
	}
	for name, body := range files {
		r.WriteWorking(name, body)
		if _, err := wt.Add(name); err != nil {
			panic(err)
		}
	}
	return r.commit(wt, msg)
}

// Removes the files from the working tree and commits their deletion.
func (r *FixtureRepo) Delete(msg string, names ...string) string {
	wt, err := r.repo.Worktree()
	if err != nil {
		panic(err)
	}
	for _, name := range names {
		if _, err := wt.Remove(name); err != nil {
			panic(err)
		}
	}
	return r.commit(wt, msg)
}

// Points a lightweight tag at the commit.
func (r *FixtureRepo) Tag(name string, hash string) {
	ref := plumbing.NewHashReference(plumbing.ReferenceName("refs/tags/"+name), plumbing.NewHash(hash))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		panic(err)
	}
}

// Writes a file into the working tree without committing it.
func (r *FixtureRepo) WriteWorking(name string, body string) fs.AbsolutePath {
	path := r.Path.Join(fs.MustRelPath(name))
	if err := os.MkdirAll(filepath.Dir(path.String()), 0755); err != nil {
		panic(err)
	}
	if err := ioutil.WriteFile(path.String(), []byte(body), 0644); err != nil {
		panic(err)
	}
	return path
}

func (r *FixtureRepo) commit(wt *srcd_git.Worktree, msg string) string {
	r.when = r.when.Add(time.Minute)
	sig := &object.Signature{Name: "fixture", Email: "fixture@example.com", When: r.when}
	hash, err := wt.Commit(msg, &srcd_git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		panic(err)
	}
	return hash.String()
}
