package main

import (
	"context"
	"strconv"

	. "github.com/warpfork/go-errcat"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/config"
	"github.com/Avishs-nd/MuskCult/fs"
	"github.com/Avishs-nd/MuskCult/fs/osfs"
	"github.com/Avishs-nd/MuskCult/loader"
	"github.com/Avishs-nd/MuskCult/loader/starlark"
	"github.com/Avishs-nd/MuskCult/log"
	"github.com/Avishs-nd/MuskCult/materialize"
	"github.com/Avishs-nd/MuskCult/namer"
	"github.com/Avishs-nd/MuskCult/revision"
	gitrev "github.com/Avishs-nd/MuskCult/revision/git"
	"github.com/Avishs-nd/MuskCult/session"
)

// What every command needs, resolved from flags and config.
type environment struct {
	cfg     config.File
	scratch fs.AbsolutePath
	mon     api.Monitor
}

func (env environment) sessionOptions() session.Options {
	return session.Options{
		FS:         osfs.New(),
		Namespace:  starlark.NewNamespace(env.mon, nil),
		ScratchDir: env.scratch,
		Namer:      &namer.Namer{PrefixLen: config.GetRevisionPrefix(env.cfg)},
		Monitor:    env.mon,
	}
}

func executeShow(cli baseCLI) ([]byte, error) {
	repo, err := gitrev.Open(cli.ShowCLI.Repo)
	if err != nil {
		return nil, err
	}
	return revision.Read(repo, api.RevisionID(cli.ShowCLI.Rev), cli.ShowCLI.Path)
}

// Checkout goes around the session: the point is for the file to outlive the command.
func executeCheckout(cli baseCLI, env environment) (string, error) {
	repo, err := gitrev.Open(cli.CheckoutCLI.Repo)
	if err != nil {
		return "", err
	}
	opts := env.sessionOptions()
	m := materialize.Materializer{
		FS:         opts.FS,
		Namer:      *opts.Namer,
		ScratchDir: opts.ScratchDir,
		Monitor:    opts.Monitor,
	}
	art, err := m.ToFile(repo, api.RevisionID(cli.CheckoutCLI.Rev), cli.CheckoutCLI.Path, cli.CheckoutCLI.Dest, 1)
	return art.Path, err
}

func executeCall(ctx context.Context, cli baseCLI, env environment) (values []string, err error) {
	args := parseArgs(cli.CallCLI.Args)
	err = session.With(cli.CallCLI.Repo, env.sessionOptions(), func(sess *session.Session) error {
		result, err := callAt(ctx, sess, cli.CallCLI.Rev, cli.CallCLI.Path, cli.CallCLI.Function, args)
		if err != nil {
			return err
		}
		values = []string{result}
		return nil
	})
	return values, err
}

func executeCompare(ctx context.Context, cli baseCLI, env environment) (values []string, err error) {
	args := parseArgs(cli.CompareCLI.Args)
	if cli.CompareCLI.Old == "HEAD" || cli.CompareCLI.New == "HEAD" {
		if repo, err := gitrev.Open(cli.CompareCLI.Repo); err == nil {
			if head, err := repo.Head(); err == nil {
				log.RevisionResolved(env.mon, "HEAD", head)
			}
		}
	}
	err = session.With(cli.CompareCLI.Repo, env.sessionOptions(), func(sess *session.Session) error {
		for _, rev := range []string{cli.CompareCLI.Old, cli.CompareCLI.New} {
			result, err := callAt(ctx, sess, rev, cli.CompareCLI.Path, cli.CompareCLI.Function, args)
			if err != nil {
				return err
			}
			values = append(values, result)
		}
		return nil
	})
	return values, err
}

/*
	Loads the unit at the revision and calls fn in it.  Checks for interruption before starting.
	The "worktree" revision loads the working tree file as it is.
*/
func callAt(ctx context.Context, sess *session.Session, rev string, relPath string, fn string, args []interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", Errorf(api.ErrCallFailed, "interrupted: %s", err)
	}
	var unit loader.Unit
	var err error
	if api.RevisionID(rev) == revision.WorkingTree {
		unit, err = sess.LoadWorking(relPath, baseName(relPath))
	} else {
		unit, err = sess.CheckoutAndLoad(api.RevisionID(rev), relPath, baseName(relPath))
	}
	if err != nil {
		return "", err
	}
	result, err := unit.Call(fn, args...)
	if err != nil {
		return "", err
	}
	return formatValue(result), nil
}

/*
	Parses command line arguments into values for a function call.

	Integers, floats, and the literals True/False/None become what they look
	like; anything else is passed as a string.
*/
func parseArgs(args []string) []interface{} {
	values := make([]interface{}, len(args))
	for i, arg := range args {
		values[i] = parseArg(arg)
	}
	return values
}

func parseArg(arg string) interface{} {
	if i, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(arg, 64); err == nil {
		return f
	}
	switch arg {
	case "True", "true":
		return true
	case "False", "false":
		return false
	case "None":
		return nil
	}
	return arg
}
