package levels

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const exampleLevelJSON = `{
  "tile_types": {
    "0": {
        "name": "empty",
        "solidType": "none"
    },
    "1": {
        "name": "block",
        "color": "brown",
        "solidType": "block"
    },
    "2": {
        "name": "platform",
        "color": "green",
        "solidType": "platform"
    },
    "8": {
        "name": "spawn",
        "color": "magenta",
        "solidType": "none"
    },
    "9": {
        "name": "searchable",
        "solidType": "none"
    }
},
  "rooms": [
    {
      "id": 1,
      "width": 10,
      "height": 8,
      "interior": [
        [1,1,0,0,0,0,0,0],
        [2,0,0,0,0,0,0,0],
        [0,0,0,0,0,0,0,0],
        [0,0,0,0,0,0,0,0],
        [0,0,0,0,0,0,0,0],
        [0,0,0,0,0,9,0,0]
      ],
      "exits": {"left": null, "right": {"type": "doorway"}},
      "theme": {"wall_color": "darkgray", "floor_color": "gray", "ceiling_color": "gray"}
    }
  ],
  "layout": [
    {
        "room_id": 1,
        "position": 0
    }
],
  "floor_layouts": []
}
`

func exampleLevel() *Level {
	l := NewLevel()
	r := NewRoom(1, 10, 8)
	r.SetTile(0, 0, TileBlock)
	r.SetTile(1, 0, TileBlock)
	r.SetTile(0, 1, TilePlatform)
	r.SetTile(5, 5, TileSearchable)
	r.Exits.Right = DoorwayExit()
	l.AddRoom(r)
	l.AddToLayout(1)
	return l
}

func TestMarshalJSONExactBytes(t *testing.T) {
	got, err := exampleLevel().MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(got) != exampleLevelJSON {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, exampleLevelJSON)
	}
}

func TestMarshalJSONEmptyLevel(t *testing.T) {
	got, err := NewLevel().MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(got, []byte("  \"rooms\": [\n  ],\n  \"layout\": [],\n  \"floor_layouts\": []\n}\n")) {
		t.Fatalf("unexpected empty level output:\n%s", got)
	}
	want, err := TemplatesFS.ReadFile("templates/empty.json")
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("empty level differs from bundled template")
	}
}

func TestMarshalJSONEmptyInterior(t *testing.T) {
	l := NewLevel()
	l.AddRoom(NewRoom(1, 2, 2))
	got, _ := l.MarshalJSON()
	if !bytes.Contains(got, []byte("      \"interior\": [\n        \n      ],\n")) {
		t.Fatalf("unexpected empty interior output:\n%s", got)
	}
	var back Level
	if err := json.Unmarshal(got, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back.Rooms[0].Interior) != 0 {
		t.Fatalf("expected empty interior, got %v", back.Rooms[0].Interior)
	}
}

func TestRoundTripExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.json")
	if err := exampleLevel().ToJSON(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	l, err := FromJSON(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	r, ok := l.Room(1)
	if !ok {
		t.Fatalf("room 1 missing")
	}
	if r.Tile(5, 5) != TileSearchable {
		t.Fatalf("expected searchable at (5,5), got %v", r.Tile(5, 5))
	}
	if r.Exits.Right == nil || r.Exits.Right.Type != "doorway" || r.Exits.Left != nil {
		t.Fatalf("unexpected exits %+v", r.Exits)
	}
	errs := l.Validate()
	if len(errs) != 1 || errs[0] != "No spawn point found in level (place exactly 1 spawn tile)" {
		t.Fatalf("unexpected validation %v", errs)
	}

	again, err := l.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(again) != exampleLevelJSON {
		t.Fatalf("reloaded level does not re-encode identically")
	}
}

func TestRoundTripTemplates(t *testing.T) {
	for _, name := range TemplateNames() {
		t.Run(name, func(t *testing.T) {
			want, err := TemplatesFS.ReadFile("templates/" + name + ".json")
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			l, err := LoadTemplate(name)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			got, err := l.MarshalJSON()
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !bytes.Equal(got, want) {
				t.Fatalf("template does not round-trip:\n%s", got)
			}
		})
	}
}

func TestStarterTemplate(t *testing.T) {
	l, err := LoadTemplate("starter")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if errs := l.Validate(); len(errs) != 0 {
		t.Fatalf("expected starter to validate, got %v", errs)
	}
	f := l.ActiveFloorLayout()
	if f == nil {
		t.Fatalf("expected a floor layout")
	}
	c, ok := f.Connection(Pos(0, 1), Pos(0, 0))
	if !ok || c.Door != DoorMid {
		t.Fatalf("expected mid door, got %+v %v", c, ok)
	}
	if _, err := LoadTemplate("missing"); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestUnmarshalDefaults(t *testing.T) {
	doc := `{"rooms": [{"id": 3, "width": 4, "height": 3, "interior": [[1, 0]]}]}`
	var l Level
	if err := json.Unmarshal([]byte(doc), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(l.TileTypes) != len(DefaultTileTypes()) {
		t.Fatalf("expected default tile types, got %v", l.TileTypes)
	}
	if l.Layout != nil || l.FloorLayouts != nil {
		t.Fatalf("expected empty layout and floor layouts")
	}
	r := l.Rooms[0]
	if r.Theme != DefaultTheme() || r.Exits.Left != nil || r.Exits.Right != nil {
		t.Fatalf("expected default theme and no exits, got %+v", r)
	}
	if r.Tile(0, 0) != TileBlock {
		t.Fatalf("expected block at (0,0)")
	}
}

func TestUnmarshalKeepsTileTypeOrder(t *testing.T) {
	doc := `{"tile_types": {"9": {"name": "searchable", "solidType": "none"}, "1": {"name": "block", "color": "brown", "solidType": "block"}, "4": {"name": "lava", "color": "red", "solidType": "hazard"}}}`
	var l Level
	if err := json.Unmarshal([]byte(doc), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	keys := make([]string, len(l.TileTypes))
	for i, e := range l.TileTypes {
		keys[i] = e.Key
	}
	if strings.Join(keys, ",") != "9,1,4" {
		t.Fatalf("expected file order, got %v", keys)
	}
	info, ok := l.TileTypes.Lookup(TileType(4))
	if !ok || info.Color != "red" {
		t.Fatalf("expected lava legend, got %+v", info)
	}
	out, _ := l.MarshalJSON()
	if !bytes.Contains(out, []byte("\"9\": {\n        \"name\": \"searchable\",\n        \"solidType\": \"none\"\n    },\n    \"1\"")) {
		t.Fatalf("unexpected tile types output:\n%s", out)
	}
}

func TestUnmarshalFloorLayout(t *testing.T) {
	doc := `{"floor_layouts": [{"rows": 2, "cols": 2, "grid": [[1, null], [null, 5]],
		"connections": [{"from": {"row": 0, "col": 0}, "to": {"row": 1, "col": 0}, "door_position": "top"}]},
		{"rows": 1, "cols": 1, "grid": [[null]]}]}`
	var l Level
	if err := json.Unmarshal([]byte(doc), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(l.FloorLayouts) != 2 {
		t.Fatalf("expected 2 floor layouts, got %d", len(l.FloorLayouts))
	}
	f := l.ActiveFloorLayout()
	if id, ok := f.RoomAt(Pos(1, 1)); !ok || id != 5 {
		t.Fatalf("expected dangling room 5 kept, got %d %v", id, ok)
	}
	if _, ok := f.RoomAt(Pos(0, 1)); ok {
		t.Fatalf("expected empty cell")
	}
	if c, ok := f.Connection(Pos(1, 0), Pos(0, 0)); !ok || c.Door != DoorTop {
		t.Fatalf("expected top door, got %+v %v", c, ok)
	}
	if len(l.FloorLayouts[1].Connections()) != 0 {
		t.Fatalf("expected missing connections to read as none")
	}

	out, _ := l.MarshalJSON()
	var back Level
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if !back.FloorLayouts[0].Equal(f) {
		t.Fatalf("floor layout changed across round trip")
	}
}

func TestUnmarshalMalformed(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"syntax", `{"rooms": [`},
		{"missing_id", `{"rooms": [{"width": 4, "height": 3, "interior": []}]}`},
		{"missing_interior", `{"rooms": [{"id": 1, "width": 4, "height": 3}]}`},
		{"layout_missing_position", `{"layout": [{"room_id": 1}]}`},
		{"short_grid", `{"floor_layouts": [{"rows": 2, "cols": 2, "grid": [[null, null]]}]}`},
		{"short_grid_row", `{"floor_layouts": [{"rows": 1, "cols": 2, "grid": [[null]]}]}`},
		{"bad_door", `{"floor_layouts": [{"rows": 1, "cols": 2, "grid": [[1, 2]], "connections": [{"from": {"row": 0, "col": 0}, "to": {"row": 0, "col": 1}, "door_position": "sideways"}]}]}`},
		{"tile_types_not_object", `{"tile_types": [1, 2]}`},
		{"tile_type_null", `{"tile_types": {"0": null}}`},
		{"tile_type_not_object", `{"tile_types": {"0": "empty"}}`},
		{"tile_type_missing_solid", `{"tile_types": {"0": {"name": "empty"}}}`},
		{"floor_negative", `{"floor_layouts": [{"rows": -1, "cols": -1, "grid": []}]}`},
		{"floor_negative_cols", `{"floor_layouts": [{"rows": 2, "cols": -1, "grid": [[], []]}]}`},
		{"floor_zero_rows", `{"floor_layouts": [{"rows": 0, "cols": 3, "grid": []}]}`},
		{"floor_zero_cols", `{"floor_layouts": [{"rows": 1, "cols": 0, "grid": [[]]}]}`},
		{"bad_tile", `{"rooms": [{"id": 1, "width": 3, "height": 3, "interior": [["x"]]}]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var l Level
			err := l.UnmarshalJSON([]byte(c.doc))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestUnmarshalKeepsMisshapenInterior(t *testing.T) {
	doc := `{"rooms": [{"id": 1, "width": 10, "height": 8, "interior": [[8, 0], [0]]}]}`
	var l Level
	if err := json.Unmarshal([]byte(doc), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	errs := l.Validate()
	if len(errs) != 1 || errs[0] != "Room 1: Interior height mismatch" {
		t.Fatalf("unexpected validation %v", errs)
	}
}

func TestFromJSONMissingFile(t *testing.T) {
	_, err := FromJSON(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestStringEscaping(t *testing.T) {
	cases := map[string]string{
		"plain":      `"plain"`,
		`q"b\s`:      `"q\"b\\s"`,
		"tab\tnl\n":  `"tab\tnl\n"`,
		"\x01":       `"\u0001"`,
		"caf\u00e9":  `"caf\u00e9"`,
		"\U0001F600": `"\ud83d\ude00"`,
		"\x7f":       "\"\x7f\"",
	}
	for in, want := range cases {
		var b bytes.Buffer
		writeQuoted(&b, in)
		if b.String() != want {
			t.Fatalf("%q: expected %s, got %s", in, want, b.String())
		}
	}
}

func TestRoomFragmentRoundTrip(t *testing.T) {
	r := exampleLevel().Rooms[0]
	r.Theme.WallColor = "navy"
	data, err := MarshalRoom(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasPrefix(string(data), "{\n  \"id\": 1,\n  \"width\": 10,\n") {
		t.Fatalf("unexpected fragment:\n%s", data)
	}
	if !strings.Contains(string(data), "  \"interior\": [\n    [1,1,0,0,0,0,0,0],\n") {
		t.Fatalf("unexpected interior layout:\n%s", data)
	}
	back, err := UnmarshalRoom(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Tile(5, 5) != TileSearchable || back.Theme.WallColor != "navy" || back.Exits.Right == nil {
		t.Fatalf("room changed across round trip: %+v", back)
	}
	if _, err := UnmarshalRoom([]byte(`{"id": 1}`)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
