package levels

import "sort"

const (
	DefaultFloorRows = 5
	DefaultFloorCols = 5
)

// GridPosition addresses a floor layout cell. It is a plain value, so two
// positions with the same row and column are the same map key.
type GridPosition struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func Pos(row, col int) GridPosition { return GridPosition{Row: row, Col: col} }

// Adjacent reports whether p and o share an edge.
func (p GridPosition) Adjacent(o GridPosition) bool {
	return abs(p.Row-o.Row)+abs(p.Col-o.Col) == 1
}

// RoomConnection is an undirected door between two floor layout cells.
// From/To only record the orientation it was created with.
type RoomConnection struct {
	From GridPosition `json:"from"`
	To   GridPosition `json:"to"`
	Door DoorPosition `json:"door_position"`
}

// Joins reports whether c links a and b in either orientation.
func (c RoomConnection) Joins(a, b GridPosition) bool {
	return (c.From == a && c.To == b) || (c.From == b && c.To == a)
}

// Other returns the far end of c as seen from p.
func (c RoomConnection) Other(p GridPosition) (GridPosition, bool) {
	switch p {
	case c.From:
		return c.To, true
	case c.To:
		return c.From, true
	}
	return GridPosition{}, false
}

type slot struct {
	roomID   int
	occupied bool
}

// FloorLayout is a rows x cols grid of room references plus the doors
// between cells. Cells hold room ids, not rooms, and are not checked
// against any Level.
type FloorLayout struct {
	rows        int
	cols        int
	grid        map[GridPosition]slot
	connections []RoomConnection
}

// NewFloorLayout returns a dense grid of empty cells.
func NewFloorLayout(rows, cols int) *FloorLayout {
	f := &FloorLayout{
		rows: rows,
		cols: cols,
		grid: make(map[GridPosition]slot, rows*cols),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			f.grid[Pos(row, col)] = slot{}
		}
	}
	return f
}

func (f *FloorLayout) Rows() int { return f.rows }
func (f *FloorLayout) Cols() int { return f.cols }

// Contains reports whether pos is inside the grid.
func (f *FloorLayout) Contains(pos GridPosition) bool {
	_, ok := f.grid[pos]
	return ok
}

// PlaceRoom overwrites the cell at pos with roomID. It reports false when
// pos is outside the grid.
func (f *FloorLayout) PlaceRoom(pos GridPosition, roomID int) bool {
	if !f.Contains(pos) {
		return false
	}
	f.grid[pos] = slot{roomID: roomID, occupied: true}
	return true
}

// ClearCell empties the cell at pos.
func (f *FloorLayout) ClearCell(pos GridPosition) bool {
	if !f.Contains(pos) {
		return false
	}
	f.grid[pos] = slot{}
	return true
}

// RoomAt returns the room id stored at pos, if any.
func (f *FloorLayout) RoomAt(pos GridPosition) (int, bool) {
	s, ok := f.grid[pos]
	if !ok || !s.occupied {
		return 0, false
	}
	return s.roomID, true
}

// AddRow appends an empty row at the bottom.
func (f *FloorLayout) AddRow() {
	f.rows++
	for col := 0; col < f.cols; col++ {
		f.grid[Pos(f.rows-1, col)] = slot{}
	}
}

// AddColumn appends an empty column on the right.
func (f *FloorLayout) AddColumn() {
	f.cols++
	for row := 0; row < f.rows; row++ {
		f.grid[Pos(row, f.cols-1)] = slot{}
	}
}

// RemoveRow drops the bottom row if it is entirely empty and is not the
// last row. Connections touching the removed row are pruned.
func (f *FloorLayout) RemoveRow() bool {
	if f.rows <= 1 {
		return false
	}
	last := f.rows - 1
	for col := 0; col < f.cols; col++ {
		if f.grid[Pos(last, col)].occupied {
			return false
		}
	}
	for col := 0; col < f.cols; col++ {
		delete(f.grid, Pos(last, col))
	}
	f.rows--
	f.pruneConnections(func(c RoomConnection) bool {
		return c.From.Row < f.rows && c.To.Row < f.rows
	})
	return true
}

// RemoveColumn drops the rightmost column under the same rules as RemoveRow.
func (f *FloorLayout) RemoveColumn() bool {
	if f.cols <= 1 {
		return false
	}
	last := f.cols - 1
	for row := 0; row < f.rows; row++ {
		if f.grid[Pos(row, last)].occupied {
			return false
		}
	}
	for row := 0; row < f.rows; row++ {
		delete(f.grid, Pos(row, last))
	}
	f.cols--
	f.pruneConnections(func(c RoomConnection) bool {
		return c.From.Col < f.cols && c.To.Col < f.cols
	})
	return true
}

func (f *FloorLayout) pruneConnections(keep func(RoomConnection) bool) {
	kept := f.connections[:0]
	for _, c := range f.connections {
		if keep(c) {
			kept = append(kept, c)
		}
	}
	f.connections = kept
}

// SetConnection replaces any door between a and b. DoorNone removes it.
func (f *FloorLayout) SetConnection(a, b GridPosition, door DoorPosition) {
	f.pruneConnections(func(c RoomConnection) bool { return !c.Joins(a, b) })
	if door != DoorNone {
		f.connections = append(f.connections, RoomConnection{From: a, To: b, Door: door})
	}
}

// Connection returns the door between a and b regardless of orientation.
func (f *FloorLayout) Connection(a, b GridPosition) (RoomConnection, bool) {
	for _, c := range f.connections {
		if c.Joins(a, b) {
			return c, true
		}
	}
	return RoomConnection{}, false
}

// Connections returns a copy of the stored doors in insertion order.
func (f *FloorLayout) Connections() []RoomConnection {
	out := make([]RoomConnection, len(f.connections))
	copy(out, f.connections)
	return out
}

// ConnectionsAt returns the doors touching pos.
func (f *FloorLayout) ConnectionsAt(pos GridPosition) []RoomConnection {
	var out []RoomConnection
	for _, c := range f.connections {
		if c.From == pos || c.To == pos {
			out = append(out, c)
		}
	}
	return out
}

// RoomIDs returns the distinct room ids placed on the grid, ascending.
func (f *FloorLayout) RoomIDs() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, s := range f.grid {
		if s.occupied && !seen[s.roomID] {
			seen[s.roomID] = true
			ids = append(ids, s.roomID)
		}
	}
	sort.Ints(ids)
	return ids
}

// PositionsOf returns every cell holding roomID in row-major order.
func (f *FloorLayout) PositionsOf(roomID int) []GridPosition {
	var out []GridPosition
	for row := 0; row < f.rows; row++ {
		for col := 0; col < f.cols; col++ {
			if id, ok := f.RoomAt(Pos(row, col)); ok && id == roomID {
				out = append(out, Pos(row, col))
			}
		}
	}
	return out
}

// Clone returns an independent copy.
func (f *FloorLayout) Clone() *FloorLayout {
	out := &FloorLayout{
		rows:        f.rows,
		cols:        f.cols,
		grid:        make(map[GridPosition]slot, len(f.grid)),
		connections: f.Connections(),
	}
	for pos, s := range f.grid {
		out.grid[pos] = s
	}
	return out
}

// Equal compares grid contents and the set of doors; connection order and
// orientation are ignored.
func (f *FloorLayout) Equal(o *FloorLayout) bool {
	if f.rows != o.rows || f.cols != o.cols || len(f.connections) != len(o.connections) {
		return false
	}
	for pos, s := range f.grid {
		if o.grid[pos] != s {
			return false
		}
	}
	for _, c := range f.connections {
		oc, ok := o.Connection(c.From, c.To)
		if !ok || oc.Door != c.Door {
			return false
		}
	}
	return true
}
