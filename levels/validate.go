package levels

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// Validate runs every structural check and returns one message per problem.
// An empty result means the level can be handed to the runtime. Floor
// layout references are not checked here; see the lint package.
func (l *Level) Validate() []string {
	var errs []string

	ids := mapset.New[int]()
	for _, r := range l.Rooms {
		ids.Put(r.ID)
	}
	if ids.Size() != len(l.Rooms) {
		errs = append(errs, "Duplicate room IDs found")
	}

	for _, r := range l.Rooms {
		if msg := interiorShapeError(r); msg != "" {
			errs = append(errs, msg)
		}
	}

	for _, e := range l.Layout {
		if !ids.Has(e.RoomID) {
			errs = append(errs, fmt.Sprintf("Layout references non-existent room %d", e.RoomID))
		}
	}

	positions := make([]int, len(l.Layout))
	for i, e := range l.Layout {
		positions[i] = e.Position
	}
	sort.Ints(positions)
	for i, p := range positions {
		if p != i {
			errs = append(errs, "Layout positions are not sequential")
			break
		}
	}

	spawns := l.SpawnLocations()
	switch {
	case len(spawns) == 0:
		errs = append(errs, "No spawn point found in level (place exactly 1 spawn tile)")
	case len(spawns) > 1:
		locs := make([]string, len(spawns))
		for i, s := range spawns {
			locs[i] = s.String()
		}
		errs = append(errs, fmt.Sprintf("Multiple spawn points found (%d). Only 1 spawn allowed. Locations: %s",
			len(spawns), strings.Join(locs, ", ")))
	}

	return errs
}

// interiorShapeError reports at most one problem per room; a wrong row
// count takes precedence over ragged rows.
func interiorShapeError(r *Room) string {
	if len(r.Interior) != r.InteriorHeight() {
		return fmt.Sprintf("Room %d: Interior height mismatch", r.ID)
	}
	for _, row := range r.Interior {
		if len(row) != r.InteriorWidth() {
			return fmt.Sprintf("Room %d: Interior width mismatch", r.ID)
		}
	}
	return ""
}

// TileLocation is an interior coordinate within a specific room.
type TileLocation struct {
	RoomID int
	X, Y   int
}

func (t TileLocation) String() string {
	return fmt.Sprintf("Room %d at (%d, %d)", t.RoomID, t.X, t.Y)
}

// SpawnLocations lists every spawn tile in room order, then row-major.
func (l *Level) SpawnLocations() []TileLocation {
	var out []TileLocation
	for _, r := range l.Rooms {
		for y, row := range r.Interior {
			for x, t := range row {
				if t == TileSpawn {
					out = append(out, TileLocation{RoomID: r.ID, X: x, Y: y})
				}
			}
		}
	}
	return out
}
