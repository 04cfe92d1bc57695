package main

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/fs"
	"github.com/Avishs-nd/MuskCult/loader"
	"github.com/Avishs-nd/MuskCult/testutil"
)

func run(args ...string) (api.ExitCode, string, string) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	stdin := &bytes.Buffer{}
	exitCode := Main(context.Background(), append([]string{"muskcult"}, args...), stdin, stdout, stderr)
	return exitCode, stdout.String(), stderr.String()
}

// Runs fn with a fixture repository, and config isolated into a tmpdir.
func withFixture(fn func(repo string, r1, r2 string, scratch fs.AbsolutePath)) {
	testutil.WithTmpdir(func(tmpDir fs.AbsolutePath) {
		for _, key := range []string{"MUSKCULT_BASE", "MUSKCULT_CONFIG", "MUSKCULT_SCRATCH"} {
			if old, had := os.LookupEnv(key); had {
				defer os.Setenv(key, old)
			} else {
				defer os.Unsetenv(key)
			}
			os.Unsetenv(key)
		}
		os.Setenv("MUSKCULT_BASE", tmpDir.String())

		fixture := testutil.NewFixtureRepo(tmpDir.Join(fs.MustRelPath("repo")))
		r1 := fixture.Commit("v1", map[string]string{
			"compute.star": "def add(x):\n    return x + 5\n\ndef tags(name):\n    return {\"name\": name, \"n\": [1, 2]}\n",
		})
		r2 := fixture.Commit("v2", map[string]string{
			"compute.star": "def add(x):\n    return x + 10\n",
		})
		fn(fixture.Path.String(), r1, r2, tmpDir.Join(fs.MustRelPath("scratch")))
	})
}

func TestWithoutArgs(t *testing.T) {
	Convey("muskcult: usage printed to stderr", t, testutil.Requires(testutil.RequiresEnvBlank("MUSKCULT_CONFIG"), func() {
		exitCode, stdout, stderr := run()
		t.Log(stdout)
		t.Log(stderr)
		So(stdout, ShouldBeBlank)
		So(stderr, ShouldNotBeBlank)
		firstLine := strings.SplitN(stderr, "\n", 2)[0]
		So(firstLine, ShouldContainSubstring, "usage: muskcult [<flags>] <command> [<args> ...]")
		So(strings.SplitN(stderr, "\n", 2)[1], ShouldNotContainSubstring, "usage: muskcult [<flags>] <command> [<args> ...]")
		So(exitCode, ShouldEqual, api.ExitUsage)
	}))
}

func TestCommands(t *testing.T) {
	Convey("muskcult commands:", t, func() {
		withFixture(func(repo string, r1, r2 string, scratch fs.AbsolutePath) {
			Convey("show prints the file at the revision", func() {
				exitCode, stdout, _ := run("show", repo, r1[:10], "compute.star")
				So(exitCode, ShouldEqual, api.ExitSuccess)
				So(stdout, ShouldStartWith, "def add(x):\n    return x + 5\n")
				exitCode, stdout, _ = run("show", repo, "HEAD", "compute.star")
				So(exitCode, ShouldEqual, api.ExitSuccess)
				So(stdout, ShouldEqual, "def add(x):\n    return x + 10\n")
			})
			Convey("show reports missing things with their exit codes", func() {
				exitCode, stdout, stderr := run("show", repo, "doesnotexist", "compute.star")
				So(exitCode, ShouldEqual, api.ExitRevisionNotFound)
				So(stdout, ShouldBeBlank)
				So(stderr, ShouldContainSubstring, "doesnotexist")
				exitCode, _, _ = run("show", repo, r1, "missing.py")
				So(exitCode, ShouldEqual, api.ExitPathNotFound)
				exitCode, _, _ = run("show", scratch.String(), r1, "compute.star")
				So(exitCode, ShouldEqual, api.ExitBackendUnavailable)
			})
			Convey("checkout keeps the file", func() {
				exitCode, stdout, _ := run("checkout", repo, r1, "compute.star")
				So(exitCode, ShouldEqual, api.ExitSuccess)
				path := strings.TrimSpace(stdout)
				So(path, ShouldStartWith, scratch.String()+"/compute.")
				body, err := ioutil.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(body), ShouldStartWith, "def add(x):\n    return x + 5\n")

				Convey("or writes it where it's told to", func() {
					dest := scratch.Join(fs.MustRelPath("mine.star")).String()
					exitCode, stdout, _ := run("checkout", repo, r2, "compute.star", "--dest="+dest)
					So(exitCode, ShouldEqual, api.ExitSuccess)
					So(stdout, ShouldEqual, dest+"\n")
					body, err := ioutil.ReadFile(dest)
					So(err, ShouldBeNil)
					So(string(body), ShouldEqual, "def add(x):\n    return x + 10\n")
				})
			})
			Convey("call runs the function and cleans up after itself", func() {
				exitCode, stdout, _ := run("call", repo, r1, "compute.star", "add", "3")
				So(exitCode, ShouldEqual, api.ExitSuccess)
				So(stdout, ShouldEqual, "8\n")
				So(testutil.Ls(scratch), ShouldBeEmpty)

				exitCode, stdout, _ = run("call", repo, r1, "compute.star", "tags", "x")
				So(exitCode, ShouldEqual, api.ExitSuccess)
				So(stdout, ShouldEqual, `{"n":[1,2],"name":"x"}`+"\n")

				exitCode, _, stderr := run("call", repo, r2, "compute.star", "tags", "x")
				So(exitCode, ShouldEqual, api.ExitCallFailed)
				So(stderr, ShouldContainSubstring, "tags")
				So(testutil.Ls(scratch), ShouldBeEmpty)
			})
			Convey("compare runs the function at both revisions", func() {
				exitCode, stdout, _ := run("compare", repo, "compute.star", "add", "3", "--old="+r1)
				So(exitCode, ShouldEqual, api.ExitSuccess)
				So(stdout, ShouldEqual, "8\n13\n")
				So(testutil.Ls(scratch), ShouldBeEmpty)

				exitCode, _, stderr := run("--verbose", "compare", repo, "compute.star", "add", "3", "--old="+r1)
				So(exitCode, ShouldEqual, api.ExitSuccess)
				So(stderr, ShouldContainSubstring, "revision HEAD is "+r2)
			})
			Convey("compare can run against the working tree as it is", func() {
				working := repo + "/compute.star"
				So(ioutil.WriteFile(working, []byte("def add(x):\n    return x + 100\n"), 0644), ShouldBeNil)
				exitCode, stdout, _ := run("compare", repo, "compute.star", "add", "3", "--old="+r1, "--new=worktree")
				So(exitCode, ShouldEqual, api.ExitSuccess)
				So(stdout, ShouldEqual, "8\n103\n")
				So(testutil.Ls(scratch), ShouldBeEmpty)
				body, err := ioutil.ReadFile(working)
				So(err, ShouldBeNil)
				So(string(body), ShouldEqual, "def add(x):\n    return x + 100\n")
			})
			Convey("json output is one result event", func() {
				exitCode, stdout, _ := run("--format=json", "call", repo, r1, "compute.star", "add", "3")
				So(exitCode, ShouldEqual, api.ExitSuccess)
				So(stdout, ShouldContainSubstring, `"result":`)
				So(stdout, ShouldContainSubstring, `"values":["8"]`)

				exitCode, stdout, _ = run("--format=json", "call", repo, "doesnotexist", "compute.star", "add", "3")
				So(exitCode, ShouldEqual, api.ExitRevisionNotFound)
				So(stdout, ShouldContainSubstring, `"category":"muskcult-revision-not-found"`)
			})
			Convey("verbose output logs what happens", func() {
				exitCode, _, stderr := run("--verbose", "call", repo, r1, "compute.star", "add", "3")
				So(exitCode, ShouldEqual, api.ExitSuccess)
				So(stderr, ShouldContainSubstring, "[info] file compute.star from revision "+r1[:8])
				So(stderr, ShouldContainSubstring, "[debug] released")
			})
		})
	})
}

func TestParseArg(t *testing.T) {
	Convey("Arguments are parsed by what they look like", t, func() {
		So(parseArg("3"), ShouldEqual, int64(3))
		So(parseArg("-3"), ShouldEqual, int64(-3))
		So(parseArg("3.5"), ShouldEqual, 3.5)
		So(parseArg("True"), ShouldEqual, true)
		So(parseArg("false"), ShouldEqual, false)
		So(parseArg("None"), ShouldBeNil)
		So(parseArg("three"), ShouldEqual, "three")
		So(parseArg(""), ShouldEqual, "")
	})
}

func TestFormatValue(t *testing.T) {
	Convey("Values are formatted as json", t, func() {
		So(formatValue(int64(8)), ShouldEqual, "8")
		So(formatValue(2.5), ShouldEqual, "2.5")
		So(formatValue(nil), ShouldEqual, "null")
		So(formatValue(true), ShouldEqual, "true")
		So(formatValue("x"), ShouldEqual, `"x"`)
		So(formatValue([]interface{}{int64(1), "a"}), ShouldEqual, `[1,"a"]`)
		So(formatValue(map[string]interface{}{"b": int64(1), "a": nil}), ShouldEqual, `{"a":null,"b":1}`)
		So(formatValue(loader.Callable{Name: "add"}), ShouldEqual, `"<function add>"`)
	})
}
