package levels

import "errors"

const (
	// DefaultRoomWidth and DefaultRoomHeight include the perimeter wall.
	DefaultRoomWidth  = 64
	DefaultRoomHeight = 36
)

// ErrUnknownSide is returned for exit sides other than "left" and "right".
var ErrUnknownSide = errors.New("levels: unknown exit side")

// Exit describes an opening in a room's side wall.
type Exit struct {
	Type string `json:"type"`
}

// DoorwayExit is the only exit kind the runtime understands today.
func DoorwayExit() *Exit { return &Exit{Type: "doorway"} }

// Exits holds the two side exits of a room. Top and bottom connectivity
// lives on the floor layout instead.
type Exits struct {
	Left  *Exit `json:"left"`
	Right *Exit `json:"right"`
}

func (e Exits) Get(side string) (*Exit, error) {
	switch side {
	case "left":
		return e.Left, nil
	case "right":
		return e.Right, nil
	}
	return nil, ErrUnknownSide
}

// Set replaces the exit on side. A nil exit closes the side.
func (e *Exits) Set(side string, exit *Exit) error {
	switch side {
	case "left":
		e.Left = exit
	case "right":
		e.Right = exit
	default:
		return ErrUnknownSide
	}
	return nil
}

func (e Exits) clone() Exits {
	var out Exits
	if e.Left != nil {
		l := *e.Left
		out.Left = &l
	}
	if e.Right != nil {
		r := *e.Right
		out.Right = &r
	}
	return out
}

// Theme holds color names for the runtime renderer.
type Theme struct {
	WallColor    string `json:"wall_color" yaml:"wall_color"`
	FloorColor   string `json:"floor_color" yaml:"floor_color"`
	CeilingColor string `json:"ceiling_color" yaml:"ceiling_color"`
}

func DefaultTheme() Theme {
	return Theme{WallColor: "darkgray", FloorColor: "gray", CeilingColor: "gray"}
}

// Room is a walled rectangle. Width and Height include the 1-tile perimeter
// wall; Interior is indexed [y][x] with y=0 the top row and holds
// (Height-2) rows of (Width-2) tiles.
type Room struct {
	ID       int
	Width    int
	Height   int
	Interior [][]TileType
	Exits    Exits
	Theme    Theme
}

// NewRoom returns a room with an empty interior, no exits and the default theme.
func NewRoom(id, width, height int) *Room {
	return &Room{
		ID:       id,
		Width:    width,
		Height:   height,
		Interior: newInterior(width-2, height-2),
		Theme:    DefaultTheme(),
	}
}

func newInterior(w, h int) [][]TileType {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	rows := make([][]TileType, h)
	for y := range rows {
		rows[y] = make([]TileType, w)
	}
	return rows
}

func (r *Room) InteriorWidth() int  { return r.Width - 2 }
func (r *Room) InteriorHeight() int { return r.Height - 2 }

func (r *Room) inBounds(x, y int) bool {
	return y >= 0 && y < len(r.Interior) && x >= 0 && x < len(r.Interior[y])
}

// Tile returns the interior tile at (x, y). Out-of-range coordinates read as TileEmpty.
func (r *Room) Tile(x, y int) TileType {
	if !r.inBounds(x, y) {
		return TileEmpty
	}
	return r.Interior[y][x]
}

// SetTile writes an interior tile. Out-of-range coordinates are ignored.
func (r *Room) SetTile(x, y int, t TileType) {
	if !r.inBounds(x, y) {
		return
	}
	r.Interior[y][x] = t
}

// Resize changes the room's outer size. Tiles in the region shared by the old
// and new interiors keep their values; everything else becomes TileEmpty.
func (r *Room) Resize(width, height int) {
	old := r.Interior
	r.Width = width
	r.Height = height
	r.Interior = newInterior(width-2, height-2)
	for y := 0; y < len(old) && y < len(r.Interior); y++ {
		copy(r.Interior[y], old[y])
	}
}

// Clone returns a deep copy with the same ID. Callers adding the copy to a
// level must assign a fresh ID first.
func (r *Room) Clone() *Room {
	interior := make([][]TileType, len(r.Interior))
	for y, row := range r.Interior {
		interior[y] = make([]TileType, len(row))
		copy(interior[y], row)
	}
	return &Room{
		ID:       r.ID,
		Width:    r.Width,
		Height:   r.Height,
		Interior: interior,
		Exits:    r.Exits.clone(),
		Theme:    r.Theme,
	}
}
