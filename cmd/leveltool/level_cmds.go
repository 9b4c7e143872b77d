package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/ephdisc/grimpossiblemission/levels"
	"github.com/ephdisc/grimpossiblemission/lint"
	"golang.org/x/sync/errgroup"
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdNew(a *app, args []string) error {
	fs := a.newFlagSet("new")
	template := fs.String("template", "empty", "starting template: "+strings.Join(levels.TemplateNames(), ", "))
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	path := fs.Arg(0)
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists, use -force to overwrite", path)
	}
	lvl, err := levels.LoadTemplate(*template)
	if err != nil {
		return fmt.Errorf("template %q: %w", *template, err)
	}
	if err := a.saveLevel(path, lvl); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "created %s from %s\n", path, *template)
	return nil
}

type validateResult struct {
	path   string
	errors []string
}

// validateFiles loads and validates every path concurrently. Load failures
// are reported as a single error for that file.
func validateFiles(ctx context.Context, paths []string) ([]validateResult, error) {
	results := make([]validateResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i].path = path
			lvl, err := levels.FromJSON(path)
			if err != nil {
				results[i].errors = []string{err.Error()}
				return nil
			}
			results[i].errors = lvl.Validate()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func cmdValidate(a *app, args []string) error {
	fs := a.newFlagSet("validate")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageErr("at least one file is required")
	}
	results, err := validateFiles(a.ctx, fs.Args())
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if len(r.errors) == 0 {
			fmt.Fprintf(a.stdout, "%s: ok\n", r.path)
			continue
		}
		failed++
		for _, msg := range r.errors {
			fmt.Fprintf(a.stdout, "%s: %s\n", r.path, msg)
		}
	}
	a.logger.Debug("validation finished", slog.Int("files", len(results)), slog.Int("failed", failed))
	if failed > 0 {
		return errProblems
	}
	return nil
}

func cmdLint(a *app, args []string) error {
	fs := a.newFlagSet("lint")
	var scripts stringList
	fs.Var(&scripts, "script", "tengo rule script, may be repeated")
	disable := fs.String("disable", "", "comma separated built-in rules to skip: "+strings.Join(lint.Rules(), ", "))
	strict := fs.Bool("strict", a.cfg.Lint.Strict, "fail when any finding is reported")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	path := fs.Arg(0)
	lvl, err := a.loadLevel(path)
	if err != nil {
		return err
	}
	findings, err := a.lint(lvl, scripts, *disable)
	if err != nil {
		return err
	}
	for _, f := range findings {
		fmt.Fprintf(a.stdout, "%s: %s\n", path, f)
	}
	if *strict && len(findings) > 0 {
		return errProblems
	}
	return nil
}

func (a *app) lint(lvl *levels.Level, scripts []string, disable string) ([]lint.Finding, error) {
	opts := lint.Options{
		Scripts: append(append([]string{}, a.cfg.Lint.Scripts...), scripts...),
		Logger:  a.logger,
	}
	if disable != "" {
		for _, name := range strings.Split(disable, ",") {
			opts.Disable = append(opts.Disable, strings.TrimSpace(name))
		}
	}
	return lint.Run(lvl, opts)
}

func cmdFmt(a *app, args []string) error {
	fs := a.newFlagSet("fmt")
	check := fs.Bool("check", false, "list files that are not in canonical form without rewriting them")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageErr("at least one file is required")
	}
	unformatted := 0
	for _, path := range fs.Args() {
		current, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		lvl, err := a.loadLevel(path)
		if err != nil {
			return err
		}
		canonical, err := lvl.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		if bytes.Equal(current, canonical) {
			continue
		}
		unformatted++
		if *check {
			fmt.Fprintln(a.stdout, path)
			continue
		}
		if err := a.saveLevel(path, lvl); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "formatted %s\n", path)
	}
	if *check && unformatted > 0 {
		return errProblems
	}
	return nil
}

func exitName(e *levels.Exit) string {
	if e == nil {
		return "none"
	}
	return e.Type
}

func cmdInfo(a *app, args []string) error {
	fs := a.newFlagSet("info")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	lvl, err := a.loadLevel(fs.Arg(0))
	if err != nil {
		return err
	}
	stats := lvl.Stats()
	w := a.stdout
	fmt.Fprintf(w, "rooms: %d\n", stats.Rooms)
	fmt.Fprintf(w, "layout: %d\n", stats.LayoutLength)
	fmt.Fprintf(w, "floor layouts: %d\n", stats.FloorLayouts)
	fmt.Fprintln(w, "tiles:")
	for _, t := range sortedKeys(stats.TileCounts) {
		fmt.Fprintf(w, "  %s: %d\n", t.Name(), stats.TileCounts[t])
	}
	for _, loc := range lvl.SpawnLocations() {
		fmt.Fprintf(w, "spawn: %s\n", loc)
	}
	for _, r := range lvl.Rooms {
		fmt.Fprintf(w, "room %d: %dx%d left=%s right=%s\n", r.ID, r.Width, r.Height, exitName(r.Exits.Left), exitName(r.Exits.Right))
	}
	return nil
}
