package levels

import (
	"sort"
	"strconv"
)

// TileTypeInfo is legend data written for the runtime. It is never
// consulted by validation.
type TileTypeInfo struct {
	Name      string `json:"name" yaml:"name"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	SolidType string `json:"solidType" yaml:"solidType"`
}

// TileTypeEntry pairs a stringified tile id with its legend.
type TileTypeEntry struct {
	Key  string
	Info TileTypeInfo
}

// TileTypeTable keeps legend entries in file order so that a load/save
// cycle does not reorder keys.
type TileTypeTable []TileTypeEntry

func DefaultTileTypes() TileTypeTable {
	return TileTypeTable{
		{Key: "0", Info: TileTypeInfo{Name: "empty", SolidType: "none"}},
		{Key: "1", Info: TileTypeInfo{Name: "block", Color: "brown", SolidType: "block"}},
		{Key: "2", Info: TileTypeInfo{Name: "platform", Color: "green", SolidType: "platform"}},
		{Key: "8", Info: TileTypeInfo{Name: "spawn", Color: "magenta", SolidType: "none"}},
		{Key: "9", Info: TileTypeInfo{Name: "searchable", SolidType: "none"}},
	}
}

// Lookup returns the legend for tile t.
func (tt TileTypeTable) Lookup(t TileType) (TileTypeInfo, bool) {
	key := strconv.Itoa(int(t))
	for _, e := range tt {
		if e.Key == key {
			return e.Info, true
		}
	}
	return TileTypeInfo{}, false
}

// Set replaces the legend for key, appending it when absent.
func (tt *TileTypeTable) Set(key string, info TileTypeInfo) {
	for i := range *tt {
		if (*tt)[i].Key == key {
			(*tt)[i].Info = info
			return
		}
	}
	*tt = append(*tt, TileTypeEntry{Key: key, Info: info})
}

// LayoutEntry places a room in the legacy linear layout.
type LayoutEntry struct {
	RoomID   int `json:"room_id"`
	Position int `json:"position"`
}

// Level owns every room, the legacy layout and the floor layouts. The first
// floor layout is the active one.
type Level struct {
	TileTypes    TileTypeTable
	Rooms        []*Room
	Layout       []LayoutEntry
	FloorLayouts []*FloorLayout
}

func NewLevel() *Level {
	return &Level{TileTypes: DefaultTileTypes()}
}

// AddRoom appends r unless a room with the same id already exists.
func (l *Level) AddRoom(r *Room) bool {
	if _, ok := l.Room(r.ID); ok {
		return false
	}
	l.Rooms = append(l.Rooms, r)
	return true
}

// RemoveRoom deletes the room and its layout entries and resequences the
// layout. Floor layout cells that reference the id are left as they are.
func (l *Level) RemoveRoom(id int) {
	rooms := l.Rooms[:0]
	for _, r := range l.Rooms {
		if r.ID != id {
			rooms = append(rooms, r)
		}
	}
	for i := len(rooms); i < len(l.Rooms); i++ {
		l.Rooms[i] = nil
	}
	l.Rooms = rooms

	layout := l.Layout[:0]
	for _, e := range l.Layout {
		if e.RoomID != id {
			layout = append(layout, e)
		}
	}
	l.Layout = layout
	l.resequence()
}

func (l *Level) Room(id int) (*Room, bool) {
	for _, r := range l.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// NextRoomID returns one past the highest id in use, or 1 for an empty level.
func (l *Level) NextRoomID() int {
	if len(l.Rooms) == 0 {
		return 1
	}
	highest := l.Rooms[0].ID
	for _, r := range l.Rooms[1:] {
		highest = max(highest, r.ID)
	}
	return highest + 1
}

// AddToLayout appends an existing room to the end of the layout.
func (l *Level) AddToLayout(id int) bool {
	if _, ok := l.Room(id); !ok {
		return false
	}
	l.Layout = append(l.Layout, LayoutEntry{RoomID: id, Position: len(l.Layout)})
	return true
}

// RemoveFromLayout drops every entry at position and resequences.
func (l *Level) RemoveFromLayout(position int) {
	layout := l.Layout[:0]
	for _, e := range l.Layout {
		if e.Position != position {
			layout = append(layout, e)
		}
	}
	l.Layout = layout
	l.resequence()
}

// MoveInLayout moves the entry at index from to index to. Out-of-range
// indices leave the layout unchanged.
func (l *Level) MoveInLayout(from, to int) {
	if from < 0 || from >= len(l.Layout) || to < 0 || to >= len(l.Layout) {
		return
	}
	e := l.Layout[from]
	l.Layout = append(l.Layout[:from], l.Layout[from+1:]...)
	l.Layout = append(l.Layout[:to], append([]LayoutEntry{e}, l.Layout[to:]...)...)
	for i := range l.Layout {
		l.Layout[i].Position = i
	}
}

func (l *Level) resequence() {
	sort.SliceStable(l.Layout, func(i, j int) bool {
		return l.Layout[i].Position < l.Layout[j].Position
	})
	for i := range l.Layout {
		l.Layout[i].Position = i
	}
}

// ActiveFloorLayout returns the first floor layout, or nil.
func (l *Level) ActiveFloorLayout() *FloorLayout {
	if len(l.FloorLayouts) == 0 {
		return nil
	}
	return l.FloorLayouts[0]
}

// EnsureFloorLayout returns the active floor layout, creating one of the
// given size when the level has none.
func (l *Level) EnsureFloorLayout(rows, cols int) *FloorLayout {
	if f := l.ActiveFloorLayout(); f != nil {
		return f
	}
	f := NewFloorLayout(rows, cols)
	l.FloorLayouts = append(l.FloorLayouts, f)
	return f
}

// DuplicateRoom clones room id under the next free id and adds it.
func (l *Level) DuplicateRoom(id int) (*Room, bool) {
	src, ok := l.Room(id)
	if !ok {
		return nil, false
	}
	dup := src.Clone()
	dup.ID = l.NextRoomID()
	if !l.AddRoom(dup) {
		return nil, false
	}
	return dup, true
}

// RenumberRoom changes a room's id and rewrites layout entries and floor
// layout cells that pointed at the old id. It refuses ids already in use.
func (l *Level) RenumberRoom(oldID, newID int) bool {
	r, ok := l.Room(oldID)
	if !ok {
		return false
	}
	if oldID == newID {
		return true
	}
	if _, taken := l.Room(newID); taken {
		return false
	}
	r.ID = newID
	for i := range l.Layout {
		if l.Layout[i].RoomID == oldID {
			l.Layout[i].RoomID = newID
		}
	}
	for _, f := range l.FloorLayouts {
		for _, pos := range f.PositionsOf(oldID) {
			f.PlaceRoom(pos, newID)
		}
	}
	return true
}

// Stats summarises a level for display.
type Stats struct {
	Rooms        int
	LayoutLength int
	FloorLayouts int
	TileCounts   map[TileType]int
}

// Stats counts rooms and known tile types across every interior.
func (l *Level) Stats() Stats {
	s := Stats{
		Rooms:        len(l.Rooms),
		LayoutLength: len(l.Layout),
		FloorLayouts: len(l.FloorLayouts),
		TileCounts:   make(map[TileType]int),
	}
	for _, t := range AllTileTypes() {
		s.TileCounts[t] = 0
	}
	for _, r := range l.Rooms {
		for t, n := range r.CountTiles() {
			if t.Known() {
				s.TileCounts[t] += n
			}
		}
	}
	return s
}
