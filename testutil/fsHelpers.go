package testutil

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Avishs-nd/MuskCult/fs"
)

/*
	Runs the func with a fresh temp dir, and removes it again afterward.

	The path given to the func has symlinks resolved, so it compares equal
	to anything the code under test computes from it.
*/
func WithTmpdir(fn func(tmpDir fs.AbsolutePath)) {
	tmpBase := filepath.Join(os.TempDir(), "muskcult-test")
	err := os.MkdirAll(tmpBase, os.FileMode(0777)|os.ModeSticky)
	if err != nil {
		panic(err)
	}
	tmpdir, err := ioutil.TempDir(tmpBase, "")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpdir)
	tmpdir, err = filepath.EvalSymlinks(tmpdir)
	if err != nil {
		panic(err)
	}
	fn(fs.MustAbsolutePath(tmpdir))
}

func ShouldExist(path fs.AbsolutePath) {
	_, err := os.Stat(path.String())
	convey.So(err, convey.ShouldBeNil)
}

func ShouldNotExist(path fs.AbsolutePath) {
	_, err := os.Stat(path.String())
	convey.So(os.IsNotExist(err), convey.ShouldBeTrue)
}

/*
	Lists every regular file under the dir, relative to it.
	A dir that doesn't exist has no files.
*/
func Ls(dir fs.AbsolutePath) []string {
	var files []string
	filepath.Walk(dir.String(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.Mode().IsRegular() {
			rel, _ := filepath.Rel(dir.String(), path)
			files = append(files, rel)
		}
		return nil
	})
	return files
}
