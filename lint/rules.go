package lint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ephdisc/grimpossiblemission/levels"
	"github.com/zyedidia/generic/mapset"
	"golang.org/x/image/colornames"
)

func roomIDs(lvl *levels.Level) mapset.Set[int] {
	ids := mapset.New[int]()
	for _, r := range lvl.Rooms {
		ids.Put(r.ID)
	}
	return ids
}

func cell(p levels.GridPosition) string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Floor layout cells hold plain ids, so deleting a room leaves them pointing
// at nothing.
func danglingFloorRefs(lvl *levels.Level) []string {
	ids := roomIDs(lvl)
	var out []string
	for i, f := range lvl.FloorLayouts {
		for row := 0; row < f.Rows(); row++ {
			for col := 0; col < f.Cols(); col++ {
				pos := levels.Pos(row, col)
				if id, ok := f.RoomAt(pos); ok && !ids.Has(id) {
					out = append(out, fmt.Sprintf("floor %d: cell %s references missing room %d", i, cell(pos), id))
				}
			}
		}
	}
	return out
}

func unknownTiles(lvl *levels.Level) []string {
	var out []string
	for _, r := range lvl.Rooms {
		count := 0
		var first levels.TileLocation
		var firstType levels.TileType
		for y, row := range r.Interior {
			for x, t := range row {
				if t.Known() {
					continue
				}
				if count == 0 {
					first = levels.TileLocation{RoomID: r.ID, X: x, Y: y}
					firstType = t
				}
				count++
			}
		}
		if count > 0 {
			out = append(out, fmt.Sprintf("Room %d: %d tile(s) of unknown type, first is %d at (%d, %d)",
				r.ID, count, int(firstType), first.X, first.Y))
		}
	}
	return out
}

// knownColor accepts #rrggbb and #rrggbbaa hex values and SVG color names.
func knownColor(s string) bool {
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) != 6 && len(hex) != 8 {
			return false
		}
		_, err := strconv.ParseUint(hex, 16, 32)
		return err == nil
	}
	_, ok := colornames.Map[strings.ToLower(s)]
	return ok
}

func themeColors(lvl *levels.Level) []string {
	var out []string
	for _, r := range lvl.Rooms {
		for _, c := range []struct{ key, value string }{
			{"wall_color", r.Theme.WallColor},
			{"floor_color", r.Theme.FloorColor},
			{"ceiling_color", r.Theme.CeilingColor},
		} {
			if !knownColor(c.value) {
				out = append(out, fmt.Sprintf("Room %d: %s %q is not a known color", r.ID, c.key, c.value))
			}
		}
	}
	for _, e := range lvl.TileTypes {
		if e.Info.Color != "" && !knownColor(e.Info.Color) {
			out = append(out, fmt.Sprintf("tile type %s: color %q is not a known color", e.Key, e.Info.Color))
		}
	}
	return out
}

func connectionAdjacency(lvl *levels.Level) []string {
	var out []string
	for i, f := range lvl.FloorLayouts {
		for _, c := range f.Connections() {
			switch {
			case !f.Contains(c.From) || !f.Contains(c.To):
				out = append(out, fmt.Sprintf("floor %d: connection %s-%s leaves the grid", i, cell(c.From), cell(c.To)))
			case !c.From.Adjacent(c.To):
				out = append(out, fmt.Sprintf("floor %d: connection %s-%s joins cells that are not adjacent", i, cell(c.From), cell(c.To)))
			}
		}
	}
	return out
}

func connectionEmptyCells(lvl *levels.Level) []string {
	var out []string
	for i, f := range lvl.FloorLayouts {
		for _, c := range f.Connections() {
			for _, p := range []levels.GridPosition{c.From, c.To} {
				if !f.Contains(p) {
					continue
				}
				if _, ok := f.RoomAt(p); !ok {
					out = append(out, fmt.Sprintf("floor %d: %s door at %s opens onto an empty cell", i, c.Door.Name(), cell(p)))
				}
			}
		}
	}
	return out
}

// reachableCells walks doors outward from start.
func reachableCells(f *levels.FloorLayout, start []levels.GridPosition) mapset.Set[levels.GridPosition] {
	reachable := mapset.New[levels.GridPosition]()
	queue := append([]levels.GridPosition(nil), start...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if reachable.Has(current) {
			continue
		}
		reachable.Put(current)
		for _, c := range f.ConnectionsAt(current) {
			if next, ok := c.Other(current); ok && f.Contains(next) && !reachable.Has(next) {
				queue = append(queue, next)
			}
		}
	}
	return reachable
}

// Only the active floor layout is checked. Levels without exactly one spawn
// are left to Validate.
func unreachableRooms(lvl *levels.Level) []string {
	f := lvl.ActiveFloorLayout()
	spawns := lvl.SpawnLocations()
	if f == nil || len(spawns) != 1 {
		return nil
	}
	start := f.PositionsOf(spawns[0].RoomID)
	if len(start) == 0 {
		return []string{fmt.Sprintf("spawn room %d is not placed on the floor layout", spawns[0].RoomID)}
	}
	reachable := reachableCells(f, start)

	var out []string
	for _, id := range f.RoomIDs() {
		hit := false
		for _, p := range f.PositionsOf(id) {
			if reachable.Has(p) {
				hit = true
				break
			}
		}
		if !hit {
			out = append(out, fmt.Sprintf("Room %d cannot be reached from spawn room %d", id, spawns[0].RoomID))
		}
	}
	return out
}

func roomsWithoutExits(lvl *levels.Level) []string {
	doors := mapset.New[int]()
	for _, f := range lvl.FloorLayouts {
		for _, c := range f.Connections() {
			for _, p := range []levels.GridPosition{c.From, c.To} {
				if id, ok := f.RoomAt(p); ok {
					doors.Put(id)
				}
			}
		}
	}
	var out []string
	for _, r := range lvl.Rooms {
		if r.Exits.Left == nil && r.Exits.Right == nil && !doors.Has(r.ID) {
			out = append(out, fmt.Sprintf("Room %d has no side exits and no floor layout doors", r.ID))
		}
	}
	return out
}
