package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/ephdisc/grimpossiblemission/config"
	"github.com/ephdisc/grimpossiblemission/levels"
	"github.com/ephdisc/grimpossiblemission/store"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	programName = "leveltool"
)

// errUsage marks errors caused by bad arguments; they exit with exitUsage.
var errUsage = errors.New("usage")

// errProblems is returned by commands that ran fine but found problems in a
// level, such as validation errors or strict lint warnings.
var errProblems = errors.New("problems found")

type app struct {
	cfg    config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
	// ctx is cancelled on SIGINT/SIGTERM for long running commands.
	ctx context.Context
}

type command struct {
	name  string
	usage string
	run   func(a *app, args []string) error
}

func commands() []command {
	return []command{
		{"new", "new [-template name] <file>", cmdNew},
		{"validate", "validate <file>...", cmdValidate},
		{"lint", "lint [-script file]... [-disable rule,...] [-strict] <file>", cmdLint},
		{"fmt", "fmt [-check] <file>...", cmdFmt},
		{"info", "info <file>", cmdInfo},
		{"room", "room add|rm|dup|resize|renumber|fill|tile|exit|theme|show ...", cmdRoom},
		{"layout", "layout add|rm|move ...", cmdLayout},
		{"floor", "floor new|place|clear|door|grow|shrink|show ...", cmdFloor},
		{"store", "store push|pull|ls|rm ...", cmdStore},
		{"watch", "watch [-script file]... <path>...", cmdWatch},
		{"serve", "serve [-addr host:port] [-path /ws] <file>", cmdServe},
		{"copy-room", "copy-room <file> <id>", cmdCopyRoom},
		{"paste-room", "paste-room [-id n] <file>", cmdPasteRoom},
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file layered over the defaults")
	verbose := fs.Bool("v", false, "enable debug logging")
	fs.Usage = func() { printUsage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		return exitFailed
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		return exitFailed
	}

	if fs.NArg() == 0 {
		printUsage(stderr, fs)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:    cfg,
		logger: cfg.Logger(stderr),
		stdout: stdout,
		stderr: stderr,
		ctx:    ctx,
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	for _, c := range commands() {
		if c.name != name {
			continue
		}
		err := c.run(a, rest)
		switch {
		case err == nil:
			return exitOK
		case errors.Is(err, flag.ErrHelp):
			return exitOK
		case errors.Is(err, errUsage):
			fmt.Fprintf(stderr, "%s: %v\nusage: %s %s\n", programName, err, programName, c.usage)
			return exitUsage
		case errors.Is(err, errProblems):
			return exitFailed
		default:
			fmt.Fprintf(stderr, "%s: %v\n", programName, err)
			return exitFailed
		}
	}
	fmt.Fprintf(stderr, "%s: unknown command %q\n", programName, name)
	printUsage(stderr, fs)
	return exitUsage
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "usage: %s [-config file] [-v] <command> [flags] [args]\n\nflags:\n", programName)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %s\n", c.usage)
	}
}

// newFlagSet returns a flag set for a subcommand that reports parse errors
// instead of exiting.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(programName+" "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func wantArgs(fs *flag.FlagSet, n int) error {
	if fs.NArg() != n {
		return usageErr("expected %d argument(s), got %d", n, fs.NArg())
	}
	return nil
}

func atoi(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, usageErr("%s must be an integer, got %q", name, s)
	}
	return v, nil
}

// atois parses every element of ss, naming them after names.
func atois(names []string, ss []string) ([]int, error) {
	out := make([]int, len(ss))
	for i, s := range ss {
		v, err := atoi(names[i], s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// loadLevel reads the level at path.
func (a *app) loadLevel(path string) (*levels.Level, error) {
	lvl, err := levels.FromJSON(path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("level loaded", slog.String("path", path), slog.Int("rooms", len(lvl.Rooms)))
	return lvl, nil
}

// saveLevel writes lvl to path through a directory store rooted at the
// file's directory, so edits get the same atomic write and backups as the
// level library.
func (a *app) saveLevel(path string, lvl *levels.Level) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if filepath.Ext(name) != ".json" {
		return lvl.ToJSON(path)
	}
	ds, err := store.NewDirStore(dir, a.cfg.Save, a.logger)
	if err != nil {
		return err
	}
	defer ds.Close()
	if err := ds.Save(strings.TrimSuffix(name, ".json"), lvl); err != nil {
		return err
	}
	a.logger.Debug("level saved", slog.String("path", path))
	return nil
}

// edit loads path, applies fn and writes the result back.
func (a *app) edit(path string, fn func(lvl *levels.Level) error) error {
	lvl, err := a.loadLevel(path)
	if err != nil {
		return err
	}
	if err := fn(lvl); err != nil {
		return err
	}
	return a.saveLevel(path, lvl)
}

func (a *app) room(lvl *levels.Level, id int) (*levels.Room, error) {
	r, ok := lvl.Room(id)
	if !ok {
		return nil, fmt.Errorf("room %d does not exist", id)
	}
	return r, nil
}

func (a *app) checkSize(width, height int) error {
	if width < a.cfg.Room.MinSize || height < a.cfg.Room.MinSize {
		return fmt.Errorf("room size %dx%d is below the minimum of %d", width, height, a.cfg.Room.MinSize)
	}
	return nil
}

func sortedKeys(m map[levels.TileType]int) []levels.TileType {
	keys := make([]levels.TileType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
