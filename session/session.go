/*
	The session package is the core of muskcult: a Session is bound to one
	repository, checks out and loads historical files on request, and
	remembers everything it made so that it can all be released again.

	A Session goes through three states.  The zero value is unopened, and
	every operation on it is an `api.ErrInvalidState`.  Open returns an open
	Session.  Close releases every artifact, once, and leaves the session
	closed; further checkouts are `api.ErrInvalidState`, and further closes
	are no-ops.

	All operations on one Session are serialized by its lock, and each holds
	it for its full duration, so a concurrent Close never overlaps a checkout.
	Different Sessions share nothing (except perhaps a Namespace, which does
	its own locking).

	Use `With` to get a Session that is closed on every way out of a block.
*/
package session

import (
	"fmt"
	"strconv"
	"sync"

	. "github.com/warpfork/go-errcat"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/config"
	"github.com/Avishs-nd/MuskCult/fs"
	"github.com/Avishs-nd/MuskCult/fs/osfs"
	"github.com/Avishs-nd/MuskCult/fsOp"
	"github.com/Avishs-nd/MuskCult/loader"
	"github.com/Avishs-nd/MuskCult/loader/starlark"
	"github.com/Avishs-nd/MuskCult/log"
	"github.com/Avishs-nd/MuskCult/materialize"
	"github.com/Avishs-nd/MuskCult/namer"
	"github.com/Avishs-nd/MuskCult/revision"
	gitrev "github.com/Avishs-nd/MuskCult/revision/git"
)

type state uint8

const (
	stateUnopened state = iota
	stateOpen
	stateClosed
)

/*
	Everything a Session depends on.  Zero fields get defaults:

	  - Opener: the git backend.
	  - FS: the host filesystem.
	  - Namespace: a new Starlark namespace of the session's own.
	  - ScratchDir: `config.GetScratchPath`, with the config file loaded.
	  - Namer: revision prefix length per `config.GetRevisionPrefix`.
	  - Monitor: none; logging is off.
*/
type Options struct {
	Opener     revision.Opener
	FS         fs.FS
	Namespace  loader.Namespace
	ScratchDir fs.AbsolutePath
	Namer      *namer.Namer
	Monitor    api.Monitor
}

type Session struct {
	mu        sync.Mutex
	state     state
	repo      revision.Repository
	mat       materialize.Materializer
	seq       uint64
	artifacts []api.Artifact // creation order.
}

/*
	Opens a Session on the repository at location.

	Errors are `api.ErrBackendUnavailable` if the repository can't be opened,
	or `api.ErrUsage` if the location or the config is unusable.
*/
func Open(location string, opts Options) (_ *Session, err error) {
	defer RequireErrorHasCategory(&err, api.ErrorCategory(""))

	if err := opts.defaults(); err != nil {
		return nil, err
	}
	repo, err := opts.Opener(location)
	if err != nil {
		if _, ok := Category(err).(api.ErrorCategory); !ok {
			err = Errorf(api.ErrBackendUnavailable, "cannot open repository at %s: %s", location, err)
		}
		return nil, err
	}
	return &Session{
		state: stateOpen,
		repo:  repo,
		mat: materialize.Materializer{
			FS:         opts.FS,
			Namespace:  opts.Namespace,
			Namer:      *opts.Namer,
			ScratchDir: opts.ScratchDir,
			Monitor:    opts.Monitor,
		},
	}, nil
}

func (opts *Options) defaults() error {
	if opts.Opener == nil {
		opts.Opener = gitrev.Opener
	}
	if opts.FS == nil {
		opts.FS = osfs.New()
	}
	if opts.Namespace == nil {
		opts.Namespace = starlark.NewNamespace(opts.Monitor, nil)
	}
	if opts.ScratchDir == (fs.AbsolutePath{}) || opts.Namer == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if opts.ScratchDir == (fs.AbsolutePath{}) {
			opts.ScratchDir = config.GetScratchPath(cfg)
		}
		if opts.Namer == nil {
			opts.Namer = &namer.Namer{PrefixLen: config.GetRevisionPrefix(cfg)}
		}
	}
	return nil
}

/*
	Opens a Session, runs fn with it, and closes it, however fn exits
	(panics included).

	If fn failed and Close then fails too, the close error is logged and
	fn's error is the one returned.  A panic is re-raised after closing.
*/
func With(location string, opts Options, fn func(*Session) error) (err error) {
	s, err := Open(location, opts)
	if err != nil {
		return err
	}
	mon := s.mat.Monitor
	defer func() {
		if rcvr := recover(); rcvr != nil {
			if cerr := s.Close(); cerr != nil {
				log.TeardownFailed(mon, cerr, fmt.Errorf("panic: %v", rcvr))
			}
			panic(rcvr)
		}
		cerr := s.Close()
		switch {
		case cerr == nil:
		case err != nil:
			log.TeardownFailed(mon, cerr, err)
		default:
			err = cerr
		}
	}()
	return fn(s)
}

/*
	Checks out the file at relPath as it was at rev, and returns the
	absolute path it was written to.

	If dest is empty, the file gets a fresh name in the scratch dir, distinct
	from every other checkout.  Otherwise it's written to dest, replacing
	whatever was there.  Either way the file is removed again on Close.

	Errors:

	  - `api.ErrRevisionNotFound` -- if rev doesn't resolve
	  - `api.ErrPathNotFound` -- if there's no file at relPath at rev
	  - `api.ErrBackendUnavailable` -- if the repository can't be read
	  - `api.ErrWriteFailed` -- if the file can't be written
	  - `api.ErrInvalidState` -- if the session isn't open

	On any error nothing new is tracked, and the session remains usable.
*/
func (s *Session) CheckoutFile(rev api.RevisionID, relPath string, dest string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOpen(); err != nil {
		return "", err
	}
	art, err := s.checkoutFile(rev, relPath, dest)
	if err != nil {
		return "", err
	}
	return art.Path, nil
}

/*
	Checks out the file at relPath as it was at rev, loads it as a unit
	named baseName plus a unique suffix, and returns the loaded unit.

	Errors are as for CheckoutFile, plus `api.ErrLoadFailed` if the source
	won't load.  In that case no unit is left registered,
	but the checked-out file is tracked and removed on Close like any other.
*/
func (s *Session) CheckoutAndLoad(rev api.RevisionID, relPath string, baseName string) (loader.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOpen(); err != nil {
		return nil, err
	}
	s.seq++
	art, unit, err := s.mat.ToLoadedUnit(s.repo, rev, relPath, baseName, s.seq)
	if art.File.Path != "" {
		s.artifacts = append(s.artifacts, art.File)
	}
	if err != nil {
		return nil, err
	}
	s.artifacts = append(s.artifacts, art)
	return unit, nil
}

// Does the work of CheckoutFile; the caller holds the lock.
func (s *Session) checkoutFile(rev api.RevisionID, relPath string, dest string) (api.FileArtifact, error) {
	s.seq++
	art, err := s.mat.ToFile(s.repo, rev, relPath, dest, s.seq)
	if err != nil {
		return art, err
	}
	for _, tracked := range s.artifacts {
		if file, ok := tracked.(api.FileArtifact); ok && file.Path == art.Path {
			return art, nil
		}
	}
	s.artifacts = append(s.artifacts, art)
	return art, nil
}

/*
	Loads the file at relPath as it is in the repository's working tree
	right now, as a unit named baseName plus a unique suffix.  This is the
	"current" side of a comparison with some historical revision.

	The working tree file is only read, and never removed on Close;
	the unit is unregistered on Close like any other.

	Errors are those of `revision.ReadWorking`, plus `api.ErrLoadFailed`
	if the source won't load, and `api.ErrInvalidState`
	if the session isn't open.
*/
func (s *Session) LoadWorking(relPath string, baseName string) (loader.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOpen(); err != nil {
		return nil, err
	}
	s.seq++
	art, unit, err := s.mat.ToWorkingUnit(s.repo, relPath, baseName, s.seq)
	if err != nil {
		return nil, err
	}
	s.artifacts = append(s.artifacts, art)
	return unit, nil
}

/*
	Releases every artifact of the session: units are unregistered first,
	then files are deleted (files already gone are fine), each group in
	creation order.

	A failure to release one artifact doesn't stop the others from being
	attempted.  Each failure is logged, and if there were any, an
	`api.ErrDeleteFailed` summarizing them is returned.  Either way the
	session is closed afterwards, and tracks nothing.

	Closing a closed session does nothing and returns nil.
	Closing a session that was never opened is `api.ErrInvalidState`.
*/
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case stateUnopened:
		return Errorf(api.ErrInvalidState, "session was never opened")
	case stateClosed:
		return nil
	}
	arts := s.artifacts
	s.artifacts = nil
	s.state = stateClosed

	var failed []error
	release := func(art api.Artifact, err error) {
		if err != nil {
			log.ReleaseFailed(s.mat.Monitor, err, art)
			failed = append(failed, err)
			return
		}
		log.ArtifactReleased(s.mat.Monitor, art)
	}
	for _, art := range arts {
		if unit, ok := art.(api.UnitArtifact); ok {
			release(unit, s.mat.Namespace.Unregister(unit.UnitName))
		}
	}
	for _, art := range arts {
		if file, ok := art.(api.FileArtifact); ok {
			_, err := fsOp.RemoveFile(s.mat.FS, fs.MustAbsolutePath(file.Path))
			release(file, err)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return ErrorDetailed(api.ErrDeleteFailed, fmt.Sprintf("%d of %d artifacts could not be released; first error: %s", len(failed), len(arts), failed[0]), map[string]string{
		"failed": strconv.Itoa(len(failed)),
		"total":  strconv.Itoa(len(arts)),
		"cause":  failed[0].Error(),
	})
}

// The artifacts currently tracked, in creation order.
func (s *Session) Artifacts() []api.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Artifact(nil), s.artifacts...)
}

func (s *Session) requireOpen() error {
	switch s.state {
	case stateUnopened:
		return Errorf(api.ErrInvalidState, "session was never opened")
	case stateClosed:
		return Errorf(api.ErrInvalidState, "session is closed")
	}
	return nil
}
