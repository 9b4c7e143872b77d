package main

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ephdisc/grimpossiblemission/levels"
)

type subcommand func(a *app, args []string) error

// dispatch runs the subcommand named by args[0].
func dispatch(a *app, group string, args []string, subs map[string]subcommand) error {
	if len(args) == 0 {
		return usageErr("%s needs a subcommand", group)
	}
	sub, ok := subs[args[0]]
	if !ok {
		names := make([]string, 0, len(subs))
		for name := range subs {
			names = append(names, name)
		}
		sort.Strings(names)
		return usageErr("unknown %s subcommand %q, want one of %s", group, args[0], strings.Join(names, ", "))
	}
	return sub(a, args[1:])
}

func cmdRoom(a *app, args []string) error {
	return dispatch(a, "room", args, map[string]subcommand{
		"add":      roomAdd,
		"rm":       roomRemove,
		"dup":      roomDuplicate,
		"resize":   roomResize,
		"renumber": roomRenumber,
		"fill":     roomFill,
		"tile":     roomTile,
		"exit":     roomExit,
		"theme":    roomTheme,
		"show":     roomShow,
	})
}

// roomArgs parses the flags of a room subcommand and returns the level path,
// the room id and the remaining n positional arguments.
func roomArgs(fs *flag.FlagSet, n int) (string, int, []string, error) {
	if fs.NArg() != n+2 {
		return "", 0, nil, usageErr("expected <file> <id> and %d more argument(s), got %d argument(s)", n, fs.NArg())
	}
	id, err := atoi("room id", fs.Arg(1))
	if err != nil {
		return "", 0, nil, err
	}
	rest := make([]string, n)
	for i := range rest {
		rest[i] = fs.Arg(i + 2)
	}
	return fs.Arg(0), id, rest, nil
}

func roomAdd(a *app, args []string) error {
	fs := a.newFlagSet("room add")
	id := fs.Int("id", 0, "room id, defaults to the next free id")
	width := fs.Int("width", a.cfg.Room.Width, "total width including walls")
	height := fs.Int("height", a.cfg.Room.Height, "total height including walls")
	noLayout := fs.Bool("no-layout", false, "do not append the room to the layout")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	if err := a.checkSize(*width, *height); err != nil {
		return err
	}
	return a.edit(fs.Arg(0), func(lvl *levels.Level) error {
		roomID := *id
		if roomID == 0 {
			roomID = lvl.NextRoomID()
		}
		if roomID < 1 {
			return fmt.Errorf("room id must be positive, got %d", roomID)
		}
		r := a.cfg.NewRoom(roomID)
		r.Resize(*width, *height)
		if !lvl.AddRoom(r) {
			return fmt.Errorf("room %d already exists", roomID)
		}
		if !*noLayout {
			lvl.AddToLayout(roomID)
		}
		fmt.Fprintf(a.stdout, "added room %d (%dx%d)\n", roomID, *width, *height)
		return nil
	})
}

func roomRemove(a *app, args []string) error {
	fs := a.newFlagSet("room rm")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, id, _, err := roomArgs(fs, 0)
	if err != nil {
		return err
	}
	return a.edit(path, func(lvl *levels.Level) error {
		if _, err := a.room(lvl, id); err != nil {
			return err
		}
		lvl.RemoveRoom(id)
		fmt.Fprintf(a.stdout, "removed room %d\n", id)
		return nil
	})
}

func roomDuplicate(a *app, args []string) error {
	fs := a.newFlagSet("room dup")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, id, _, err := roomArgs(fs, 0)
	if err != nil {
		return err
	}
	return a.edit(path, func(lvl *levels.Level) error {
		dup, ok := lvl.DuplicateRoom(id)
		if !ok {
			return fmt.Errorf("room %d does not exist", id)
		}
		fmt.Fprintf(a.stdout, "duplicated room %d as %d\n", id, dup.ID)
		return nil
	})
}

func roomResize(a *app, args []string) error {
	fs := a.newFlagSet("room resize")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, id, rest, err := roomArgs(fs, 2)
	if err != nil {
		return err
	}
	size, err := atois([]string{"width", "height"}, rest)
	if err != nil {
		return err
	}
	if err := a.checkSize(size[0], size[1]); err != nil {
		return err
	}
	return a.edit(path, func(lvl *levels.Level) error {
		r, err := a.room(lvl, id)
		if err != nil {
			return err
		}
		r.Resize(size[0], size[1])
		fmt.Fprintf(a.stdout, "resized room %d to %dx%d\n", id, size[0], size[1])
		return nil
	})
}

func roomRenumber(a *app, args []string) error {
	fs := a.newFlagSet("room renumber")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, id, rest, err := roomArgs(fs, 1)
	if err != nil {
		return err
	}
	newID, err := atoi("new id", rest[0])
	if err != nil {
		return err
	}
	if newID < 1 {
		return usageErr("new id must be positive, got %d", newID)
	}
	return a.edit(path, func(lvl *levels.Level) error {
		if _, err := a.room(lvl, id); err != nil {
			return err
		}
		if !lvl.RenumberRoom(id, newID) {
			return fmt.Errorf("room %d already exists", newID)
		}
		fmt.Fprintf(a.stdout, "renumbered room %d to %d\n", id, newID)
		return nil
	})
}

func roomFill(a *app, args []string) error {
	fs := a.newFlagSet("room fill")
	tile := fs.String("tile", "block", "tile name or number")
	flood := fs.Bool("flood", false, "flood fill the region at <x> <y> instead of a rectangle")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	t, err := levels.ParseTileType(*tile)
	if err != nil {
		return usageErr("%v", err)
	}
	n := 4
	if *flood {
		n = 2
	}
	path, id, rest, err := roomArgs(fs, n)
	if err != nil {
		return err
	}
	coords, err := atois([]string{"x1", "y1", "x2", "y2"}, rest)
	if err != nil {
		return err
	}
	return a.edit(path, func(lvl *levels.Level) error {
		r, err := a.room(lvl, id)
		if err != nil {
			return err
		}
		if *flood {
			changed := r.FloodFill(coords[0], coords[1], t)
			fmt.Fprintf(a.stdout, "filled %d tile(s) in room %d with %s\n", changed, id, t.Name())
			return nil
		}
		r.FillRect(coords[0], coords[1], coords[2], coords[3], t)
		fmt.Fprintf(a.stdout, "filled room %d (%d, %d)-(%d, %d) with %s\n", id, coords[0], coords[1], coords[2], coords[3], t.Name())
		return nil
	})
}

func roomTile(a *app, args []string) error {
	fs := a.newFlagSet("room tile")
	brush := fs.Int("brush", 1, "square brush size")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, id, rest, err := roomArgs(fs, 3)
	if err != nil {
		return err
	}
	xy, err := atois([]string{"x", "y"}, rest[:2])
	if err != nil {
		return err
	}
	t, err := levels.ParseTileType(rest[2])
	if err != nil {
		return usageErr("%v", err)
	}
	return a.edit(path, func(lvl *levels.Level) error {
		r, err := a.room(lvl, id)
		if err != nil {
			return err
		}
		r.Paint(xy[0], xy[1], *brush, t)
		fmt.Fprintf(a.stdout, "set room %d (%d, %d) to %s\n", id, xy[0], xy[1], t.Name())
		return nil
	})
}

func roomExit(a *app, args []string) error {
	fs := a.newFlagSet("room exit")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, id, rest, err := roomArgs(fs, 2)
	if err != nil {
		return err
	}
	side, kind := rest[0], rest[1]
	var exit *levels.Exit
	switch kind {
	case "none":
	case "doorway":
		exit = levels.DoorwayExit()
	default:
		return usageErr("exit must be doorway or none, got %q", kind)
	}
	return a.edit(path, func(lvl *levels.Level) error {
		r, err := a.room(lvl, id)
		if err != nil {
			return err
		}
		if err := r.Exits.Set(side, exit); err != nil {
			return fmt.Errorf("%w %q", err, side)
		}
		fmt.Fprintf(a.stdout, "room %d %s exit: %s\n", id, side, kind)
		return nil
	})
}

func roomTheme(a *app, args []string) error {
	fs := a.newFlagSet("room theme")
	wall := fs.String("wall", "", "wall color")
	floor := fs.String("floor", "", "floor color")
	ceiling := fs.String("ceiling", "", "ceiling color")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, id, _, err := roomArgs(fs, 0)
	if err != nil {
		return err
	}
	return a.edit(path, func(lvl *levels.Level) error {
		r, err := a.room(lvl, id)
		if err != nil {
			return err
		}
		for _, set := range []struct {
			dst *string
			v   string
		}{
			{&r.Theme.WallColor, *wall},
			{&r.Theme.FloorColor, *floor},
			{&r.Theme.CeilingColor, *ceiling},
		} {
			if set.v != "" {
				*set.dst = set.v
			}
		}
		fmt.Fprintf(a.stdout, "room %d theme: wall=%s floor=%s ceiling=%s\n", id, r.Theme.WallColor, r.Theme.FloorColor, r.Theme.CeilingColor)
		return nil
	})
}

var tileGlyphs = map[levels.TileType]byte{
	levels.TileEmpty:      '.',
	levels.TileBlock:      'B',
	levels.TilePlatform:   '=',
	levels.TileSpawn:      'S',
	levels.TileSearchable: '?',
}

// renderRoom draws r with its perimeter wall. Open side exits are drawn as
// a gap in the middle of the wall.
func renderRoom(w io.Writer, r *levels.Room) {
	mid := r.Height / 2
	for y := 0; y < r.Height; y++ {
		var line strings.Builder
		for x := 0; x < r.Width; x++ {
			switch {
			case y == 0 || y == r.Height-1:
				line.WriteByte('#')
			case x == 0:
				line.WriteByte(wallGlyph(r.Exits.Left, y == mid))
			case x == r.Width-1:
				line.WriteByte(wallGlyph(r.Exits.Right, y == mid))
			default:
				g, ok := tileGlyphs[r.Tile(x-1, y-1)]
				if !ok {
					g = '!'
				}
				line.WriteByte(g)
			}
		}
		fmt.Fprintln(w, line.String())
	}
}

func wallGlyph(exit *levels.Exit, door bool) byte {
	if exit != nil && door {
		return ' '
	}
	return '#'
}

func roomShow(a *app, args []string) error {
	fs := a.newFlagSet("room show")
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
	fmt.Fprintf(a.stdout, "room %d: %dx%d\n", r.ID, r.Width, r.Height)
	renderRoom(a.stdout, r)
	return nil
}
