package fs

import (
	"path"
	"path/filepath"
	"strings"

	. "github.com/warpfork/go-errcat"
)

// Meta: yep, these *are not* interchangeable.
// It's expected that if you *can* accept an AbsolutePath,
//  then you should normalize to that ASAP;
// and if you can't, then clearly it's correct to use the RelPath,
//  through and through the whole way.

type RelPath struct {
	path      string
	lastSplit int
}

func MustRelPath(p string) RelPath {
	p2, err := ParseRelPath(p)
	if err != nil {
		panic(err)
	}
	return p2
}

/*
	Parses a slash-separated relative path, cleaning it on the way.

	Returns ErrBadPath for absolute and empty paths.
	Paths which climb above their root (leading "..") are allowed here;
	check `Escapes` if that matters for your purpose.
*/
func ParseRelPath(p string) (RelPath, error) {
	if p == "" {
		return RelPath{}, Errorf(ErrBadPath, "empty path")
	}
	p = path.Clean(p)
	if p[0] == '/' {
		return RelPath{}, Errorf(ErrBadPath, "path %q is absolute; a relative path is required", p)
	}
	if p == "." { // We can't stop people from using the zero value, so, use it.
		return RelPath{}, nil
	}
	return RelPath{p, strings.LastIndexByte(p, '/')}, nil
}

func (p RelPath) String() string {
	if p.path == "" {
		return "."
	} else if p.Escapes() { // a '..' prefix
		return p.path
	} else {
		return "./" + p.path
	}
}

// The cleaned path without the "./" prefix; "" for the zero value.
// This is the form tree lookups in a repository expect.
func (p RelPath) Bare() string {
	return p.path
}

// True if the path climbs above its root.
func (p RelPath) Escapes() bool {
	return p.path == ".." || strings.HasPrefix(p.path, "../")
}

func (p RelPath) Dir() RelPath {
	if p.path == "" {
		return p
	} else if p.lastSplit == -1 {
		return RelPath{}
	} else {
		p2 := p.path[0:p.lastSplit]
		return RelPath{p2, strings.LastIndexByte(p2, '/')}
	}
}
func (p RelPath) Last() string {
	if p.path == "" {
		return "."
	} else if p.lastSplit == -1 {
		return p.path
	} else {
		return p.path[p.lastSplit+1:]
	}
}
func (p RelPath) Join(p2 RelPath) RelPath {
	switch {
	case p2.path == "":
		return p
	case p.path == "":
		return p2
	default:
		return MustRelPath(p.path + "/" + p2.path)
	}
}

type AbsolutePath struct {
	path      string
	lastSplit int
}

func MustAbsolutePath(p string) AbsolutePath {
	p = path.Clean(p)
	if p[0] != '/' {
		panic("nope")
	}
	if p == "/" { // We can't stop people from using the zero value, so, use it.
		return AbsolutePath{}
	}
	return AbsolutePath{p, strings.LastIndexByte(p, '/')}
}

/*
	Absolutizes a host path against the current working directory.
*/
func ParseAbsolutePath(p string) (AbsolutePath, error) {
	if p == "" {
		return AbsolutePath{}, Errorf(ErrBadPath, "empty path")
	}
	p2, err := filepath.Abs(p)
	if err != nil {
		return AbsolutePath{}, Errorf(ErrBadPath, "cannot absolutize %q: %s", p, err)
	}
	return MustAbsolutePath(filepath.ToSlash(p2)), nil
}

func (p AbsolutePath) String() string {
	if p.path == "" {
		return "/"
	}
	return p.path
}
func (p AbsolutePath) Dir() AbsolutePath {
	if p.path == "" {
		return p
	} else if p.lastSplit == 0 {
		return AbsolutePath{}
	} else {
		p2 := p.path[0:p.lastSplit]
		return AbsolutePath{p2, strings.LastIndexByte(p2, '/')}
	}
}
func (p AbsolutePath) Last() string {
	if p.path == "" {
		return "/"
	} else {
		return p.path[p.lastSplit+1:]
	}
}
func (p AbsolutePath) Join(p2 RelPath) AbsolutePath {
	switch {
	case p2.path == "":
		return p
	default:
		return MustAbsolutePath(p.String() + "/" + p2.path)
	}
}
