/*
	Helpers for loading contextual config.

	Config here means "things that are the host machine operator's concerns",
	like where scratch files go.
	Everything that describes *what* to check out (repository, revision, path)
	is a parameter of the call instead, and never config.

	Values are taken from environment variables first, then from an optional
	TOML file, then from defaults.
*/
package config

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	. "github.com/warpfork/go-errcat"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/fs"
)

const DefaultRevisionPrefix = 8

// Contents of the optional config file.  Zero values mean "not set".
type File struct {
	ScratchDir     string `toml:"scratch_dir"`
	RevisionPrefix int    `toml:"revision_prefix"`
	Format         string `toml:"format"`
}

/*
	Return the home-base path prefix that is the default root for all other paths.

	The default value is `"$TMPDIR/muskcult"`;
	this can be overriden by the `MUSKCULT_BASE` environment variable.
*/
func GetBasePath() fs.AbsolutePath {
	pth := os.Getenv("MUSKCULT_BASE")
	if pth == "" {
		pth = filepath.Join(os.TempDir(), "muskcult")
	}
	pth, err := filepath.Abs(pth)
	if err != nil {
		panic(err)
	}
	return fs.MustAbsolutePath(pth)
}

/*
	Return the path of the config file.

	The default value is `"$MUSKCULT_BASE/config.toml"`;
	this can be overriden by the `MUSKCULT_CONFIG` environment variable.
*/
func GetConfigPath() fs.AbsolutePath {
	pth := os.Getenv("MUSKCULT_CONFIG")
	if pth == "" {
		return GetBasePath().Join(fs.MustRelPath("config.toml"))
	}
	pth, err := filepath.Abs(pth)
	if err != nil {
		panic(err)
	}
	return fs.MustAbsolutePath(pth)
}

/*
	Load the config file.

	A missing file is not an error; it yields the zero File.
	A file that exists but can't be read or parsed is an `api.ErrUsage`.
*/
func Load() (File, error) {
	var cfg File
	pth := GetConfigPath()
	body, err := ioutil.ReadFile(pth.String())
	if os.IsNotExist(err) {
		return cfg, nil
	} else if err != nil {
		return cfg, Errorf(api.ErrUsage, "cannot read config file %s: %s", pth, err)
	}
	if err := toml.Unmarshal(body, &cfg); err != nil {
		return cfg, Errorf(api.ErrUsage, "cannot parse config file %s: %s", pth, err)
	}
	if cfg.RevisionPrefix < 0 {
		return cfg, Errorf(api.ErrUsage, "config file %s: revision_prefix must not be negative", pth)
	}
	return cfg, nil
}

/*
	Return the path that is the root for auto-named checked-out files.

	The default value is `"$MUSKCULT_BASE/scratch"`;
	this can be overriden by `scratch_dir` in the config file,
	and both are overriden by the `MUSKCULT_SCRATCH` environment variable.
*/
func GetScratchPath(cfg File) fs.AbsolutePath {
	pth := os.Getenv("MUSKCULT_SCRATCH")
	if pth == "" {
		pth = cfg.ScratchDir
	}
	if pth == "" {
		return GetBasePath().Join(fs.MustRelPath("scratch"))
	}
	pth, err := filepath.Abs(pth)
	if err != nil {
		panic(err)
	}
	return fs.MustAbsolutePath(pth)
}

/*
	Return how many leading characters of a revision go into generated names.

	The default value is 8;
	this can be overriden by `revision_prefix` in the config file.
*/
func GetRevisionPrefix(cfg File) int {
	if cfg.RevisionPrefix > 0 {
		return cfg.RevisionPrefix
	}
	return DefaultRevisionPrefix
}
