package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/ephdisc/grimpossiblemission/livesync"
	"github.com/ephdisc/grimpossiblemission/watch"
)

// levelFiles expands directories in paths to the .json files they contain.
func levelFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// check validates and lints one level file and prints the outcome.
func (a *app) check(path string, scripts []string) {
	lvl, err := a.loadLevel(path)
	if err != nil {
		fmt.Fprintf(a.stdout, "%s: %v\n", path, err)
		return
	}
	errs := lvl.Validate()
	findings, err := a.lint(lvl, scripts, "")
	if err != nil {
		fmt.Fprintf(a.stdout, "%s: %v\n", path, err)
	}
	if len(errs) == 0 && len(findings) == 0 && err == nil {
		fmt.Fprintf(a.stdout, "%s: ok\n", path)
		return
	}
	for _, msg := range errs {
		fmt.Fprintf(a.stdout, "%s: %s\n", path, msg)
	}
	for _, f := range findings {
		fmt.Fprintf(a.stdout, "%s: %s\n", path, f)
	}
}

func cmdWatch(a *app, args []string) error {
	fs := a.newFlagSet("watch")
	var scripts stringList
	fs.Var(&scripts, "script", "tengo rule script, may be repeated")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageErr("at least one file or directory is required")
	}
	allScripts := append(append([]string{}, a.cfg.Lint.Scripts...), scripts...)

	watched := append(append([]string{}, fs.Args()...), allScripts...)
	w, err := watch.NewWatcher(a.logger, watched...)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	checkAll := func() error {
		files, err := levelFiles(fs.Args())
		if err != nil {
			return err
		}
		for _, f := range files {
			a.check(f, scripts)
		}
		return nil
	}
	if err := checkAll(); err != nil {
		return err
	}
	a.logger.Info("watching for changes", slog.Any("paths", fs.Args()))

	for {
		select {
		case <-a.ctx.Done():
			return nil
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(path) != ".json" {
				a.logger.Info("lint script changed, rechecking", slog.String("script", path))
				if err := checkAll(); err != nil {
					a.logger.Warn("recheck failed", slog.Any("error", err))
				}
				continue
			}
			if _, err := os.Stat(path); err != nil {
				continue
			}
			a.check(path, scripts)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}

func cmdServe(a *app, args []string) error {
	fs := a.newFlagSet("serve")
	addr := fs.String("addr", a.cfg.Serve.Addr, "listen address")
	path := fs.String("path", a.cfg.Serve.Path, "websocket endpoint path")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	hub := livesync.NewHub(a.logger)
	return livesync.ListenAndServe(a.ctx, *addr, *path, fs.Arg(0), hub, a.logger)
}
