package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/config"
	"github.com/Avishs-nd/MuskCult/fs"
)

/*
	Output serialization formats
*/
const (
	FmtJson = "json"
	FmtDumb = "dumb"
)

type baseCLI struct {
	Format  string // Output api format, eg. json
	Scratch string // Scratch dir override
	Verbose bool   // Emit log events on stderr
	ShowCLI struct {
		Repo string
		Rev  string
		Path string
	}
	CheckoutCLI struct {
		Repo string
		Rev  string
		Path string
		Dest string // Explicit destination; scratch if empty
	}
	CallCLI struct {
		Repo     string
		Rev      string
		Path     string
		Function string
		Args     []string
	}
	CompareCLI struct {
		Repo     string
		Path     string
		Function string
		Old      string
		New      string
		Args     []string
	}
}

func configureShow(cli *baseCLI, appShow *kingpin.CmdClause) {
	appShow.Arg("repo", "Repository location").
		Required().
		StringVar(&cli.ShowCLI.Repo)
	appShow.Arg("rev", "Revision").
		Required().
		StringVar(&cli.ShowCLI.Rev)
	appShow.Arg("path", "Path of the file in the repository").
		Required().
		StringVar(&cli.ShowCLI.Path)
}

func configureCheckout(cli *baseCLI, appCheckout *kingpin.CmdClause) {
	appCheckout.Arg("repo", "Repository location").
		Required().
		StringVar(&cli.CheckoutCLI.Repo)
	appCheckout.Arg("rev", "Revision").
		Required().
		StringVar(&cli.CheckoutCLI.Rev)
	appCheckout.Arg("path", "Path of the file in the repository").
		Required().
		StringVar(&cli.CheckoutCLI.Path)
	appCheckout.Flag("dest", "Where to write the file (overwritten if present); a fresh name in the scratch dir if not given").
		StringVar(&cli.CheckoutCLI.Dest)
}

func configureCall(cli *baseCLI, appCall *kingpin.CmdClause) {
	appCall.Arg("repo", "Repository location").
		Required().
		StringVar(&cli.CallCLI.Repo)
	appCall.Arg("rev", "Revision").
		Required().
		StringVar(&cli.CallCLI.Rev)
	appCall.Arg("path", "Path of the unit in the repository").
		Required().
		StringVar(&cli.CallCLI.Path)
	appCall.Arg("function", "Function to call").
		Required().
		StringVar(&cli.CallCLI.Function)
	appCall.Arg("args", "Arguments to the function").
		StringsVar(&cli.CallCLI.Args)
}

func configureCompare(cli *baseCLI, appCompare *kingpin.CmdClause) {
	appCompare.Arg("repo", "Repository location").
		Required().
		StringVar(&cli.CompareCLI.Repo)
	appCompare.Arg("path", "Path of the unit in the repository").
		Required().
		StringVar(&cli.CompareCLI.Path)
	appCompare.Arg("function", "Function to call").
		Required().
		StringVar(&cli.CompareCLI.Function)
	appCompare.Arg("args", "Arguments to the function").
		StringsVar(&cli.CompareCLI.Args)
	appCompare.Flag("old", "The older revision, or \"worktree\"").
		Required().
		StringVar(&cli.CompareCLI.Old)
	appCompare.Flag("new", "The newer revision, or \"worktree\" for the working tree as it is").
		Default("HEAD").
		StringVar(&cli.CompareCLI.New)
}

/*
	Blocks until a sigint is received, then calls cancel.
	Returns early (and stops listening) if the context is done first.
*/
func CancelOnInterrupt(ctx context.Context, cancel context.CancelFunc) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)
	defer signal.Stop(signalChan)
	select {
	case <-signalChan:
		cancel()
	case <-ctx.Done():
	}
}

func main() {
	ctx := context.Background()
	exitCode := Main(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	os.Exit(int(exitCode))
}

func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) api.ExitCode {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go CancelOnInterrupt(ctx, cancel)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return api.ExitUsage
	}
	defaultFormat := FmtDumb
	if cfg.Format != "" {
		defaultFormat = cfg.Format
	}

	cli := baseCLI{}

	app := kingpin.New("muskcult", "Check out and load files from history")
	app.HelpFlag.Short('h')

	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)

	app.Flag("format", "Output api format").
		Default(defaultFormat).
		EnumVar(&cli.Format, FmtJson, FmtDumb)
	app.Flag("scratch", "Directory generated files are written to").
		StringVar(&cli.Scratch)
	app.Flag("verbose", "Emit log events on stderr").
		Short('v').
		BoolVar(&cli.Verbose)

	appShow := app.Command("show", "print a file as it was at a revision")
	configureShow(&cli, appShow)

	appCheckout := app.Command("checkout", "write a file as it was at a revision, and keep it")
	configureCheckout(&cli, appCheckout)

	appCall := app.Command("call", "load a unit as it was at a revision, and call a function in it")
	configureCall(&cli, appCall)

	appCompare := app.Command("compare", "call the same function in a unit as it was at two revisions")
	configureCompare(&cli, appCompare)

	var termErr error
	app.Terminate(func(status int) {
		termErr = fmt.Errorf("parsing error: %d\n", status)
	})
	cmd, err := app.Parse(args[1:])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return api.ExitUsage
	}
	if termErr != nil {
		fmt.Fprintln(stderr, termErr)
		return api.ExitUsage
	}

	scratch := config.GetScratchPath(cfg)
	if cli.Scratch != "" {
		scratch, err = fs.ParseAbsolutePath(cli.Scratch)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return api.ExitUsage
		}
	}
	env := environment{
		cfg:     cfg,
		scratch: scratch,
	}
	mon, closeMonitor := startMonitor(cli.Format, cli.Verbose, stderr)
	env.mon = mon

	var result api.Event_Result
	switch cmd {
	case appShow.FullCommand():
		var body []byte
		body, err = executeShow(cli)
		closeMonitor()
		if err == nil && cli.Format == FmtDumb {
			stdout.Write(body)
			return api.ExitSuccess
		}
		result = api.Event_Result{Path: cli.ShowCLI.Path, Values: []string{string(body)}}
	case appCheckout.FullCommand():
		result.Path, err = executeCheckout(cli, env)
		closeMonitor()
	case appCall.FullCommand():
		result.Values, err = executeCall(ctx, cli, env)
		closeMonitor()
	case appCompare.FullCommand():
		result.Values, err = executeCompare(ctx, cli, env)
		closeMonitor()
	default:
		closeMonitor()
		fmt.Fprintln(stderr, "no command given")
		return api.ExitUsage
	}
	SerializeResult(cli.Format, result, err, stdout, stderr)
	return api.ExitCodeFor(err)
}

// Returns the unit base name for a path in a repository: its file name without the extension.
func baseName(relPath string) string {
	base := path.Base(relPath)
	return strings.TrimSuffix(base, path.Ext(base))
}
