package levels

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrMalformed wraps every decode failure caused by the document itself
// rather than by I/O.
var ErrMalformed = errors.New("levels: malformed level document")

// MarshalJSON writes the level in the runtime's file layout: pretty-printed
// with 4-space nesting, except that each interior row is a compact
// single-line array and exits/theme are single-line objects. The output is
// byte-compatible with files written by the level editor.
func (l *Level) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("{\n")
	b.WriteString(`  "tile_types": `)
	dumpIndent(&b, tileTypesValue(l.TileTypes), 0)
	b.WriteString(",\n")

	b.WriteString(`  "rooms": [` + "\n")
	for i, r := range l.Rooms {
		writeRoom(&b, r, "    ")
		if i < len(l.Rooms)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("  ],\n")

	layout := make(ordList, len(l.Layout))
	for i, e := range l.Layout {
		layout[i] = ordObject{{"room_id", e.RoomID}, {"position", e.Position}}
	}
	b.WriteString(`  "layout": `)
	dumpIndent(&b, layout, 0)
	b.WriteString(",\n")

	floors := make(ordList, len(l.FloorLayouts))
	for i, f := range l.FloorLayouts {
		floors[i] = floorLayoutValue(f)
	}
	b.WriteString(`  "floor_layouts": `)
	dumpIndent(&b, floors, 0)
	b.WriteString("\n}\n")
	return b.Bytes(), nil
}

// writeRoom renders one room object whose opening brace sits at pad.
func writeRoom(b *bytes.Buffer, r *Room, pad string) {
	field := pad + "  "
	rowPad := pad + "    "
	b.WriteString(pad + "{\n")
	fmt.Fprintf(b, "%s\"id\": %d,\n", field, r.ID)
	fmt.Fprintf(b, "%s\"width\": %d,\n", field, r.Width)
	fmt.Fprintf(b, "%s\"height\": %d,\n", field, r.Height)
	b.WriteString(field + `"interior": [` + "\n" + rowPad)
	for y, row := range r.Interior {
		if y > 0 {
			b.WriteString(",\n" + rowPad)
		}
		writeInteriorRow(b, row)
	}
	b.WriteString("\n" + field + "],\n")
	b.WriteString(field + `"exits": `)
	dumpCompact(b, exitsValue(r.Exits))
	b.WriteString(",\n")
	b.WriteString(field + `"theme": `)
	dumpCompact(b, themeValue(r.Theme))
	b.WriteString("\n" + pad + "}")
}

func writeInteriorRow(b *bytes.Buffer, row []TileType) {
	b.WriteByte('[')
	for x, t := range row {
		if x > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(t)))
	}
	b.WriteByte(']')
}

func tileTypesValue(tt TileTypeTable) ordObject {
	obj := make(ordObject, 0, len(tt))
	for _, e := range tt {
		info := ordObject{{"name", e.Info.Name}}
		if e.Info.Color != "" {
			info = append(info, ordField{"color", e.Info.Color})
		}
		info = append(info, ordField{"solidType", e.Info.SolidType})
		obj = append(obj, ordField{e.Key, info})
	}
	return obj
}

func exitValue(e *Exit) any {
	if e == nil {
		return nil
	}
	return ordObject{{"type", e.Type}}
}

func exitsValue(e Exits) ordObject {
	return ordObject{{"left", exitValue(e.Left)}, {"right", exitValue(e.Right)}}
}

func themeValue(t Theme) ordObject {
	return ordObject{
		{"wall_color", t.WallColor},
		{"floor_color", t.FloorColor},
		{"ceiling_color", t.CeilingColor},
	}
}

func positionValue(p GridPosition) ordObject {
	return ordObject{{"row", p.Row}, {"col", p.Col}}
}

func floorLayoutValue(f *FloorLayout) ordObject {
	grid := make(ordList, f.rows)
	for row := 0; row < f.rows; row++ {
		cells := make(ordList, f.cols)
		for col := 0; col < f.cols; col++ {
			if id, ok := f.RoomAt(Pos(row, col)); ok {
				cells[col] = id
			}
		}
		grid[row] = cells
	}
	conns := make(ordList, len(f.connections))
	for i, c := range f.connections {
		conns[i] = ordObject{
			{"from", positionValue(c.From)},
			{"to", positionValue(c.To)},
			{"door_position", string(c.Door)},
		}
	}
	return ordObject{
		{"rows", f.rows},
		{"cols", f.cols},
		{"grid", grid},
		{"connections", conns},
	}
}

// ToJSON writes the level to path in a single write. A failure part way
// through can leave a truncated file; callers wanting atomic replacement
// should write elsewhere and rename.
func (l *Level) ToJSON(path string) error {
	data, err := l.MarshalJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("levels: write %s: %w", path, err)
	}
	return nil
}

// FromJSON reads a level file.
func FromJSON(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", path, err)
	}
	var lvl Level
	if err := lvl.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("levels: decode %s: %w", path, err)
	}
	return &lvl, nil
}

type levelWire struct {
	TileTypes    json.RawMessage   `json:"tile_types"`
	Rooms        []roomWire        `json:"rooms"`
	Layout       []layoutWire      `json:"layout"`
	FloorLayouts []floorLayoutWire `json:"floor_layouts"`
}

type roomWire struct {
	ID       *int          `json:"id"`
	Width    *int          `json:"width"`
	Height   *int          `json:"height"`
	Interior *[][]TileType `json:"interior"`
	Exits    *Exits        `json:"exits"`
	Theme    *Theme        `json:"theme"`
}

type layoutWire struct {
	RoomID   *int `json:"room_id"`
	Position *int `json:"position"`
}

type connectionWire struct {
	From *GridPosition `json:"from"`
	To   *GridPosition `json:"to"`
	Door *string       `json:"door_position"`
}

type floorLayoutWire struct {
	Rows        *int             `json:"rows"`
	Cols        *int             `json:"cols"`
	Grid        [][]*int         `json:"grid"`
	Connections []connectionWire `json:"connections"`
}

// UnmarshalJSON accepts any document produced by MarshalJSON as well as
// older files without "tile_types" or "floor_layouts". Interior shapes are
// not checked here so that Validate can report them.
func (l *Level) UnmarshalJSON(data []byte) error {
	var w levelWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	out := Level{TileTypes: DefaultTileTypes()}
	if len(w.TileTypes) > 0 && !bytes.Equal(bytes.TrimSpace(w.TileTypes), []byte("null")) {
		tt, err := decodeTileTypes(w.TileTypes)
		if err != nil {
			return err
		}
		out.TileTypes = tt
	}

	for i, rw := range w.Rooms {
		r, err := rw.room()
		if err != nil {
			return fmt.Errorf("%w: rooms[%d]: %s", ErrMalformed, i, err)
		}
		out.Rooms = append(out.Rooms, r)
	}

	for i, lw := range w.Layout {
		if lw.RoomID == nil || lw.Position == nil {
			return fmt.Errorf("%w: layout[%d]: room_id and position are required", ErrMalformed, i)
		}
		out.Layout = append(out.Layout, LayoutEntry{RoomID: *lw.RoomID, Position: *lw.Position})
	}

	for i, fw := range w.FloorLayouts {
		f, err := fw.floorLayout()
		if err != nil {
			return fmt.Errorf("%w: floor_layouts[%d]: %s", ErrMalformed, i, err)
		}
		out.FloorLayouts = append(out.FloorLayouts, f)
	}

	*l = out
	return nil
}

func (rw roomWire) room() (*Room, error) {
	switch {
	case rw.ID == nil:
		return nil, errors.New(`missing "id"`)
	case rw.Width == nil:
		return nil, errors.New(`missing "width"`)
	case rw.Height == nil:
		return nil, errors.New(`missing "height"`)
	case rw.Interior == nil:
		return nil, errors.New(`missing "interior"`)
	}
	r := &Room{
		ID:       *rw.ID,
		Width:    *rw.Width,
		Height:   *rw.Height,
		Interior: *rw.Interior,
		Theme:    DefaultTheme(),
	}
	for y := range r.Interior {
		if r.Interior[y] == nil {
			r.Interior[y] = []TileType{}
		}
	}
	if rw.Exits != nil {
		r.Exits = *rw.Exits
	}
	if rw.Theme != nil {
		r.Theme = *rw.Theme
	}
	return r, nil
}

func (fw floorLayoutWire) floorLayout() (*FloorLayout, error) {
	if fw.Rows == nil || fw.Cols == nil {
		return nil, errors.New(`"rows" and "cols" are required`)
	}
	rows, cols := *fw.Rows, *fw.Cols
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("size %dx%d is below 1x1", rows, cols)
	}
	if len(fw.Grid) < rows {
		return nil, fmt.Errorf("grid has %d rows, want %d", len(fw.Grid), rows)
	}
	f := NewFloorLayout(rows, cols)
	for row := 0; row < rows; row++ {
		if len(fw.Grid[row]) < cols {
			return nil, fmt.Errorf("grid row %d has %d cells, want %d", row, len(fw.Grid[row]), cols)
		}
		for col := 0; col < cols; col++ {
			if id := fw.Grid[row][col]; id != nil {
				f.PlaceRoom(Pos(row, col), *id)
			}
		}
	}
	for i, cw := range fw.Connections {
		if cw.From == nil || cw.To == nil || cw.Door == nil {
			return nil, fmt.Errorf(`connections[%d]: "from", "to" and "door_position" are required`, i)
		}
		door, err := ParseDoorPosition(*cw.Door)
		if err != nil {
			return nil, fmt.Errorf("connections[%d]: %s", i, err)
		}
		if door == DoorNone {
			continue
		}
		f.connections = append(f.connections, RoomConnection{From: *cw.From, To: *cw.To, Door: door})
	}
	return f, nil
}

// decodeTileTypes reads the legend object while keeping its key order.
func decodeTileTypes(raw json.RawMessage) (TileTypeTable, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: tile_types: %w", ErrMalformed, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: tile_types must be an object", ErrMalformed)
	}
	tt := TileTypeTable{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: tile_types: %w", ErrMalformed, err)
		}
		key, _ := tok.(string)
		var entry struct {
			Name      *string `json:"name"`
			Color     string  `json:"color"`
			SolidType *string `json:"solidType"`
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: tile_types[%q]: %w", ErrMalformed, key, err)
		}
		if err := json.Unmarshal(raw, &entry); err != nil || entry.Name == nil || entry.SolidType == nil {
			return nil, fmt.Errorf(`%w: tile_types[%q]: want an object with "name" and "solidType"`, ErrMalformed, key)
		}
		tt = append(tt, TileTypeEntry{Key: key, Info: TileTypeInfo{Name: *entry.Name, Color: entry.Color, SolidType: *entry.SolidType}})
	}
	return tt, nil
}

// MarshalRoom renders a single room as a standalone document, using the
// same compact interior rows as the level file.
func MarshalRoom(r *Room) ([]byte, error) {
	var b bytes.Buffer
	writeRoom(&b, r, "")
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// UnmarshalRoom decodes a document produced by MarshalRoom.
func UnmarshalRoom(data []byte) (*Room, error) {
	var rw roomWire
	if err := json.Unmarshal(data, &rw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	r, err := rw.room()
	if err != nil {
		return nil, fmt.Errorf("%w: room: %s", ErrMalformed, err)
	}
	return r, nil
}
