package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/ephdisc/grimpossiblemission/levels"
)

func scriptRuleName(path string) string {
	return "script:" + strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// runScript executes one rule file. The script sees the level as `level`
// and reports problems either by calling warn(msg) or by appending strings
// to the global `warnings` array.
func runScript(path string, lvl *levels.Level) ([]string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lint: load %s: %w", path, err)
	}
	return runScriptSource(path, src, lvl)
}

func runScriptSource(name string, src []byte, lvl *levels.Level) ([]string, error) {
	var warned []string
	warn := &tengo.UserFunction{Name: "warn", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		msg := strings.TrimSpace(objectAsString(args[0]))
		if msg == "" {
			return tengo.FalseValue, nil
		}
		warned = append(warned, msg)
		return tengo.TrueValue, nil
	}}

	script := tengo.NewScript(src)
	if err := script.Add("level", scriptLevel(lvl)); err != nil {
		return nil, fmt.Errorf("lint: script %s: %w", name, err)
	}
	if err := script.Add("warnings", []any{}); err != nil {
		return nil, fmt.Errorf("lint: script %s: %w", name, err)
	}
	if err := script.Add("warn", warn); err != nil {
		return nil, fmt.Errorf("lint: script %s: %w", name, err)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("lint: compile %s: %w", name, err)
	}
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("lint: run %s: %w", name, err)
	}

	out := warned
	for _, v := range compiled.Get("warnings").Array() {
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func objectAsString(o tengo.Object) string {
	if s, ok := o.(*tengo.String); ok {
		return s.Value
	}
	return o.String()
}

// scriptLevel mirrors the file format using plain maps so tengo can convert
// it. Integers stay integers; empty grid cells and missing exits are undefined.
func scriptLevel(lvl *levels.Level) map[string]any {
	rooms := make([]any, len(lvl.Rooms))
	for i, r := range lvl.Rooms {
		interior := make([]any, len(r.Interior))
		for y, row := range r.Interior {
			cells := make([]any, len(row))
			for x, t := range row {
				cells[x] = int(t)
			}
			interior[y] = cells
		}
		rooms[i] = map[string]any{
			"id":       r.ID,
			"width":    r.Width,
			"height":   r.Height,
			"interior": interior,
			"exits": map[string]any{
				"left":  scriptExit(r.Exits.Left),
				"right": scriptExit(r.Exits.Right),
			},
			"theme": map[string]any{
				"wall_color":    r.Theme.WallColor,
				"floor_color":   r.Theme.FloorColor,
				"ceiling_color": r.Theme.CeilingColor,
			},
		}
	}

	layout := make([]any, len(lvl.Layout))
	for i, e := range lvl.Layout {
		layout[i] = map[string]any{"room_id": e.RoomID, "position": e.Position}
	}

	floors := make([]any, len(lvl.FloorLayouts))
	for i, f := range lvl.FloorLayouts {
		grid := make([]any, f.Rows())
		for row := range grid {
			cells := make([]any, f.Cols())
			for col := range cells {
				if id, ok := f.RoomAt(levels.Pos(row, col)); ok {
					cells[col] = id
				}
			}
			grid[row] = cells
		}
		conns := make([]any, 0, len(f.Connections()))
		for _, c := range f.Connections() {
			conns = append(conns, map[string]any{
				"from":          map[string]any{"row": c.From.Row, "col": c.From.Col},
				"to":            map[string]any{"row": c.To.Row, "col": c.To.Col},
				"door_position": string(c.Door),
			})
		}
		floors[i] = map[string]any{
			"rows":        f.Rows(),
			"cols":        f.Cols(),
			"grid":        grid,
			"connections": conns,
		}
	}

	return map[string]any{
		"rooms":         rooms,
		"layout":        layout,
		"floor_layouts": floors,
	}
}

func scriptExit(e *levels.Exit) any {
	if e == nil {
		return nil
	}
	return map[string]any{"type": e.Type}
}
