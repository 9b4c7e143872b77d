package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ephdisc/grimpossiblemission/levels"
	"github.com/ephdisc/grimpossiblemission/roomclip"
	"github.com/ephdisc/grimpossiblemission/store"
)

func cmdStore(a *app, args []string) error {
	return dispatch(a, "store", args, map[string]subcommand{
		"push": storePush,
		"pull": storePull,
		"ls":   storeList,
		"rm":   storeRemove,
	})
}

// withStore opens the configured level library for the duration of fn.
func (a *app) withStore(fn func(s store.Storage) error) error {
	s, err := store.Open(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func levelName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func storePush(a *app, args []string) error {
	fs := a.newFlagSet("store push")
	name := fs.String("name", "", "name in the library, defaults to the file name")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	path := fs.Arg(0)
	if *name == "" {
		*name = levelName(path)
	}
	lvl, err := a.loadLevel(path)
	if err != nil {
		return err
	}
	return a.withStore(func(s store.Storage) error {
		if err := s.Save(*name, lvl); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "pushed %s as %s\n", path, *name)
		return nil
	})
}

func storePull(a *app, args []string) error {
	fs := a.newFlagSet("store pull")
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 2); err != nil {
		return err
	}
	name, path := fs.Arg(0), fs.Arg(1)
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists, use -force to overwrite", path)
	}
	return a.withStore(func(s store.Storage) error {
		lvl, err := s.Load(name)
		if err != nil {
			return err
		}
		if err := a.saveLevel(path, lvl); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "pulled %s into %s\n", name, path)
		return nil
	})
}

func storeList(a *app, args []string) error {
	fs := a.newFlagSet("store ls")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0); err != nil {
		return err
	}
	return a.withStore(func(s store.Storage) error {
		names, err := s.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(a.stdout, name)
		}
		return nil
	})
}

func storeRemove(a *app, args []string) error {
	fs := a.newFlagSet("store rm")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	return a.withStore(func(s store.Storage) error {
		if err := s.Delete(fs.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "removed %s\n", fs.Arg(0))
		return nil
	})
}

func cmdCopyRoom(a *app, args []string) error {
	fs := a.newFlagSet("copy-room")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, id, _, err := roomArgs(fs, 0)
	if err != nil {
		return err
	}
	lvl, err := a.loadLevel(path)
	if err != nil {
		return err
	}
	r, err := a.room(lvl, id)
	if err != nil {
		return err
	}
	if err := roomclip.Copy(r); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "copied room %d\n", id)
	return nil
}

func cmdPasteRoom(a *app, args []string) error {
	fs := a.newFlagSet("paste-room")
	id := fs.Int("id", 0, "id for the pasted room, defaults to the next free id")
	noLayout := fs.Bool("no-layout", false, "do not append the room to the layout")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	r, err := roomclip.Paste()
	if err != nil {
		if errors.Is(err, roomclip.ErrEmpty) {
			return errors.New("clipboard does not hold a room")
		}
		return err
	}
	return a.edit(fs.Arg(0), func(lvl *levels.Level) error {
		return a.insertRoom(lvl, r, *id, !*noLayout)
	})
}

// insertRoom adds r to lvl under id, or under the next free id when id is
// zero, and optionally appends it to the layout.
func (a *app) insertRoom(lvl *levels.Level, r *levels.Room, id int, layout bool) error {
	if id == 0 {
		id = lvl.NextRoomID()
	}
	r.ID = id
	if !lvl.AddRoom(r) {
		return fmt.Errorf("room %d already exists", id)
	}
	if layout {
		lvl.AddToLayout(id)
	}
	fmt.Fprintf(a.stdout, "pasted room %d (%dx%d)\n", id, r.Width, r.Height)
	return nil
}
