package fsOp

import (
	"bytes"
	"io/ioutil"
	"os"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/warpfork/go-errcat"

	"github.com/Avishs-nd/MuskCult/fs"
	"github.com/Avishs-nd/MuskCult/fs/memfs"
	"github.com/Avishs-nd/MuskCult/fs/nilfs"
	"github.com/Avishs-nd/MuskCult/fs/osfs"
	"github.com/Avishs-nd/MuskCult/testutil"
)

func TestPlaceFile(t *testing.T) {
	Convey("PlaceFile suite:", t, func() {
		testutil.WithTmpdir(func(tmpDir fs.AbsolutePath) {
			afs := osfs.New()
			Convey("Placing a file should work", func() {
				path := tmpDir.Join(fs.MustRelPath("thing"))
				err := PlaceFile(afs, path, bytes.NewBufferString("abc\n"), 0644, true)
				So(err, ShouldBeNil)
				bs, err := ioutil.ReadFile(path.String())
				So(err, ShouldBeNil)
				So(string(bs), ShouldResemble, "abc\n")
			})
			Convey("Placing a file missing parent dirs should create them", func() {
				path := tmpDir.Join(fs.MustRelPath("deeper/and/deeper/thing"))
				err := PlaceFile(afs, path, bytes.NewBufferString("abc\n"), 0644, true)
				So(err, ShouldBeNil)
				bs, err := ioutil.ReadFile(path.String())
				So(err, ShouldBeNil)
				So(string(bs), ShouldResemble, "abc\n")
			})
			Convey("Binary content should be placed byte for byte", func() {
				body := []byte{0, 1, 2, '\r', '\n', 0xff, 0xfe}
				path := tmpDir.Join(fs.MustRelPath("bin"))
				So(PlaceFile(afs, path, bytes.NewReader(body), 0644, true), ShouldBeNil)
				bs, err := ReadFile(afs, path)
				So(err, ShouldBeNil)
				So(bs, ShouldResemble, body)
			})
			Convey("Given an existing file", func() {
				path := tmpDir.Join(fs.MustRelPath("thing"))
				So(ioutil.WriteFile(path.String(), []byte("a longer original body\n"), 0644), ShouldBeNil)
				Convey("exclusive placement should refuse it", func() {
					err := PlaceFile(afs, path, bytes.NewBufferString("new\n"), 0644, true)
					So(errcat.Category(err), ShouldEqual, fs.ErrAlreadyExists)
					bs, _ := ioutil.ReadFile(path.String())
					So(string(bs), ShouldResemble, "a longer original body\n")
				})
				Convey("non-exclusive placement should overwrite it entirely", func() {
					err := PlaceFile(afs, path, bytes.NewBufferString("new\n"), 0644, false)
					So(err, ShouldBeNil)
					bs, _ := ioutil.ReadFile(path.String())
					So(string(bs), ShouldResemble, "new\n")
				})
			})
			Convey("Placing where a parent is a file should fail", func() {
				blocker := tmpDir.Join(fs.MustRelPath("blocker"))
				So(ioutil.WriteFile(blocker.String(), nil, 0644), ShouldBeNil)
				err := PlaceFile(afs, blocker.Join(fs.MustRelPath("thing")), bytes.NewBufferString("abc\n"), 0644, true)
				So(err, ShouldNotBeNil)
			})
		})
		Convey("Placing into memory should work the same", func() {
			afs := memfs.New()
			path := fs.MustAbsolutePath("/scratch/a/thing")
			So(PlaceFile(afs, path, bytes.NewBufferString("abc\n"), 0644, true), ShouldBeNil)
			bs, err := ReadFile(afs, path)
			So(err, ShouldBeNil)
			So(string(bs), ShouldResemble, "abc\n")
			err = PlaceFile(afs, path, bytes.NewBufferString("clobbered\n"), 0644, true)
			So(errcat.Category(err), ShouldEqual, fs.ErrAlreadyExists)
			bs, err = ReadFile(afs, path)
			So(err, ShouldBeNil)
			So(string(bs), ShouldResemble, "abc\n")
		})
		Convey("Racing exclusive placements into memory should have one winner", func() {
			afs := memfs.New()
			path := fs.MustAbsolutePath("/scratch/contended")
			errs := make(chan error, 16)
			var wg sync.WaitGroup
			for i := 0; i < cap(errs); i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs <- PlaceFile(afs, path, bytes.NewBufferString("abc\n"), 0644, true)
				}()
			}
			wg.Wait()
			close(errs)
			var won, refused int
			for err := range errs {
				switch errcat.Category(err) {
				case nil:
					won++
				case fs.ErrAlreadyExists:
					refused++
				}
			}
			So(won, ShouldEqual, 1)
			So(refused, ShouldEqual, cap(errs)-1)
		})
		Convey("Placing into a read-only filesystem should be refused", func() {
			err := PlaceFile(nilFS.New(), fs.MustAbsolutePath("/x"), bytes.NewBufferString("abc\n"), 0644, true)
			So(errcat.Category(err), ShouldEqual, fs.ErrReadOnly)
		})
	})
}

func TestRemoveFile(t *testing.T) {
	Convey("RemoveFile suite:", t, func() {
		testutil.WithTmpdir(func(tmpDir fs.AbsolutePath) {
			afs := osfs.New()
			path := tmpDir.Join(fs.MustRelPath("thing"))
			Convey("Removing a present file reports that it was removed", func() {
				So(ioutil.WriteFile(path.String(), []byte("x"), 0644), ShouldBeNil)
				removed, err := RemoveFile(afs, path)
				So(err, ShouldBeNil)
				So(removed, ShouldBeTrue)
				_, err = os.Stat(path.String())
				So(os.IsNotExist(err), ShouldBeTrue)
				Convey("and removing it again is fine, but removes nothing", func() {
					removed, err := RemoveFile(afs, path)
					So(err, ShouldBeNil)
					So(removed, ShouldBeFalse)
				})
			})
			Convey("Exists agrees", func() {
				exists, err := afs.Exists(path)
				So(err, ShouldBeNil)
				So(exists, ShouldBeFalse)
				So(ioutil.WriteFile(path.String(), []byte("x"), 0644), ShouldBeNil)
				exists, err = afs.Exists(path)
				So(err, ShouldBeNil)
				So(exists, ShouldBeTrue)
			})
		})
	})
}
