package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/ephdisc/grimpossiblemission/levels"
)

func cmdLayout(a *app, args []string) error {
	return dispatch(a, "layout", args, map[string]subcommand{
		"add":  layoutAdd,
		"rm":   layoutRemove,
		"move": layoutMove,
	})
}

// fileAndInts parses "<file> <n>..." positional arguments.
func fileAndInts(fs *flag.FlagSet, names ...string) (string, []int, error) {
	if fs.NArg() != len(names)+1 {
		return "", nil, usageErr("expected <file> %s", "<"+strings.Join(names, "> <")+">")
	}
	vals, err := atois(names, fs.Args()[1:])
	if err != nil {
		return "", nil, err
	}
	return fs.Arg(0), vals, nil
}

func layoutAdd(a *app, args []string) error {
	fs := a.newFlagSet("layout add")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, vals, err := fileAndInts(fs, "id")
	if err != nil {
		return err
	}
	return a.edit(path, func(lvl *levels.Level) error {
		if !lvl.AddToLayout(vals[0]) {
			return fmt.Errorf("room %d does not exist", vals[0])
		}
		fmt.Fprintf(a.stdout, "layout position %d: room %d\n", len(lvl.Layout)-1, vals[0])
		return nil
	})
}

func layoutRemove(a *app, args []string) error {
	fs := a.newFlagSet("layout rm")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, vals, err := fileAndInts(fs, "position")
	if err != nil {
		return err
	}
	return a.edit(path, func(lvl *levels.Level) error {
		before := len(lvl.Layout)
		lvl.RemoveFromLayout(vals[0])
		if len(lvl.Layout) == before {
			return fmt.Errorf("no layout entry at position %d", vals[0])
		}
		fmt.Fprintf(a.stdout, "removed layout position %d\n", vals[0])
		return nil
	})
}

func layoutMove(a *app, args []string) error {
	fs := a.newFlagSet("layout move")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, vals, err := fileAndInts(fs, "from", "to")
	if err != nil {
		return err
	}
	from, to := vals[0], vals[1]
	return a.edit(path, func(lvl *levels.Level) error {
		if from < 0 || from >= len(lvl.Layout) || to < 0 || to >= len(lvl.Layout) {
			return fmt.Errorf("layout has %d entries, cannot move %d to %d", len(lvl.Layout), from, to)
		}
		lvl.MoveInLayout(from, to)
		fmt.Fprintf(a.stdout, "moved layout entry %d to %d\n", from, to)
		return nil
	})
}

func cmdFloor(a *app, args []string) error {
	return dispatch(a, "floor", args, map[string]subcommand{
		"new":    floorNew,
		"place":  floorPlace,
		"clear":  floorClear,
		"door":   floorDoor,
		"grow":   floorGrow,
		"shrink": floorShrink,
		"show":   floorShow,
	})
}

// floorIndex adds the -floor flag shared by the floor subcommands.
func floorIndex(fs *flag.FlagSet) *int {
	return fs.Int("floor", 0, "floor layout index, 0 is the active one")
}

// floorAt returns floor layout i. The active layout is created with the
// configured size when the level has none.
func (a *app) floorAt(lvl *levels.Level, i int) (*levels.FloorLayout, error) {
	if i == 0 {
		return lvl.EnsureFloorLayout(a.cfg.FloorLayout.Rows, a.cfg.FloorLayout.Cols), nil
	}
	if i < 0 || i >= len(lvl.FloorLayouts) {
		return nil, fmt.Errorf("floor layout %d does not exist, level has %d", i, len(lvl.FloorLayouts))
	}
	return lvl.FloorLayouts[i], nil
}

func checkCell(f *levels.FloorLayout, pos levels.GridPosition) error {
	if !f.Contains(pos) {
		return fmt.Errorf("cell (%d, %d) is outside the %dx%d floor layout", pos.Row, pos.Col, f.Rows(), f.Cols())
	}
	return nil
}

func floorNew(a *app, args []string) error {
	fs := a.newFlagSet("floor new")
	rows := fs.Int("rows", a.cfg.FloorLayout.Rows, "rows")
	cols := fs.Int("cols", a.cfg.FloorLayout.Cols, "columns")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1); err != nil {
		return err
	}
	if *rows < 1 || *cols < 1 {
		return usageErr("floor layout must be at least 1x1, got %dx%d", *rows, *cols)
	}
	return a.edit(fs.Arg(0), func(lvl *levels.Level) error {
		lvl.FloorLayouts = append(lvl.FloorLayouts, levels.NewFloorLayout(*rows, *cols))
		fmt.Fprintf(a.stdout, "added floor layout %d (%dx%d)\n", len(lvl.FloorLayouts)-1, *rows, *cols)
		return nil
	})
}

func floorPlace(a *app, args []string) error {
	fs := a.newFlagSet("floor place")
	index := floorIndex(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, vals, err := fileAndInts(fs, "row", "col", "id")
	if err != nil {
		return err
	}
	pos, id := levels.Pos(vals[0], vals[1]), vals[2]
	return a.edit(path, func(lvl *levels.Level) error {
		if _, err := a.room(lvl, id); err != nil {
			return err
		}
		f, err := a.floorAt(lvl, *index)
		if err != nil {
			return err
		}
		if !f.PlaceRoom(pos, id) {
			return checkCell(f, pos)
		}
		fmt.Fprintf(a.stdout, "placed room %d at (%d, %d)\n", id, pos.Row, pos.Col)
		return nil
	})
}

func floorClear(a *app, args []string) error {
	fs := a.newFlagSet("floor clear")
	index := floorIndex(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, vals, err := fileAndInts(fs, "row", "col")
	if err != nil {
		return err
	}
	pos := levels.Pos(vals[0], vals[1])
	return a.edit(path, func(lvl *levels.Level) error {
		f, err := a.floorAt(lvl, *index)
		if err != nil {
			return err
		}
		if !f.ClearCell(pos) {
			return checkCell(f, pos)
		}
		fmt.Fprintf(a.stdout, "cleared (%d, %d)\n", pos.Row, pos.Col)
		return nil
	})
}

func floorDoor(a *app, args []string) error {
	fs := a.newFlagSet("floor door")
	index := floorIndex(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 6 {
		return usageErr("expected <file> <row1> <col1> <row2> <col2> <top|mid|bot|none>")
	}
	vals, err := atois([]string{"row1", "col1", "row2", "col2"}, fs.Args()[1:5])
	if err != nil {
		return err
	}
	door, err := levels.ParseDoorPosition(fs.Arg(5))
	if err != nil {
		return usageErr("%v", err)
	}
	from, to := levels.Pos(vals[0], vals[1]), levels.Pos(vals[2], vals[3])
	if !from.Adjacent(to) {
		return fmt.Errorf("cells (%d, %d) and (%d, %d) are not adjacent", from.Row, from.Col, to.Row, to.Col)
	}
	return a.edit(fs.Arg(0), func(lvl *levels.Level) error {
		f, err := a.floorAt(lvl, *index)
		if err != nil {
			return err
		}
		for _, pos := range []levels.GridPosition{from, to} {
			if err := checkCell(f, pos); err != nil {
				return err
			}
		}
		f.SetConnection(from, to, door)
		fmt.Fprintf(a.stdout, "door (%d, %d)-(%d, %d): %s\n", from.Row, from.Col, to.Row, to.Col, door.Name())
		return nil
	})
}

func axisArg(fs *flag.FlagSet) (string, string, error) {
	if fs.NArg() != 2 {
		return "", "", usageErr("expected <file> <row|col>")
	}
	axis := fs.Arg(1)
	if axis != "row" && axis != "col" {
		return "", "", usageErr("axis must be row or col, got %q", axis)
	}
	return fs.Arg(0), axis, nil
}

func floorGrow(a *app, args []string) error {
	fs := a.newFlagSet("floor grow")
	index := floorIndex(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, axis, err := axisArg(fs)
	if err != nil {
		return err
	}
	return a.edit(path, func(lvl *levels.Level) error {
		f, err := a.floorAt(lvl, *index)
		if err != nil {
			return err
		}
		if axis == "row" {
			f.AddRow()
		} else {
			f.AddColumn()
		}
		fmt.Fprintf(a.stdout, "floor layout %d is now %dx%d\n", *index, f.Rows(), f.Cols())
		return nil
	})
}

func floorShrink(a *app, args []string) error {
	fs := a.newFlagSet("floor shrink")
	index := floorIndex(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	path, axis, err := axisArg(fs)
	if err != nil {
		return err
	}
	return a.edit(path, func(lvl *levels.Level) error {
		f, err := a.floorAt(lvl, *index)
		if err != nil {
			return err
		}
		var ok bool
		if axis == "row" {
			ok = f.RemoveRow()
		} else {
			ok = f.RemoveColumn()
		}
		if !ok {
			return fmt.Errorf("cannot remove the last %s: it is occupied or the only one left", axis)
		}
		fmt.Fprintf(a.stdout, "floor layout %d is now %dx%d\n", *index, f.Rows(), f.Cols())
		return nil
	})
}

func floorShow(a *app, args []string) error {
	fs := a.newFlagSet("floor show")
	index := floorIndex(fs)
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
	if *index < 0 || *index >= len(lvl.FloorLayouts) {
		return fmt.Errorf("floor layout %d does not exist, level has %d", *index, len(lvl.FloorLayouts))
	}
	f := lvl.FloorLayouts[*index]

	width := 1
	for _, id := range f.RoomIDs() {
		width = max(width, len(strconv.Itoa(id)))
	}
	fmt.Fprintf(a.stdout, "floor layout %d: %dx%d\n", *index, f.Rows(), f.Cols())
	for row := 0; row < f.Rows(); row++ {
		cells := make([]string, f.Cols())
		for col := range cells {
			cell := "."
			if id, ok := f.RoomAt(levels.Pos(row, col)); ok {
				cell = strconv.Itoa(id)
			}
			cells[col] = fmt.Sprintf("%*s", width, cell)
		}
		fmt.Fprintln(a.stdout, strings.Join(cells, " "))
	}
	for _, c := range f.Connections() {
		fmt.Fprintf(a.stdout, "door (%d, %d)-(%d, %d): %s\n", c.From.Row, c.From.Col, c.To.Row, c.To.Col, c.Door.Name())
	}
	return nil
}
