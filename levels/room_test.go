package levels

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewRoomInteriorShape(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"default", DefaultRoomWidth, DefaultRoomHeight, 62, 34},
		{"small", 10, 8, 8, 6},
		{"walls_only", 2, 2, 0, 0},
		{"degenerate", 1, 1, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := NewRoom(1, c.width, c.height)
			if len(r.Interior) != c.wantH {
				t.Fatalf("expected %d rows, got %d", c.wantH, len(r.Interior))
			}
			for y, row := range r.Interior {
				if len(row) != c.wantW {
					t.Fatalf("row %d: expected %d tiles, got %d", y, c.wantW, len(row))
				}
				for x, tile := range row {
					if tile != TileEmpty {
						t.Fatalf("expected empty tile at (%d,%d), got %v", x, y, tile)
					}
				}
			}
			if r.Exits.Left != nil || r.Exits.Right != nil {
				t.Fatalf("expected no exits, got %+v", r.Exits)
			}
			if r.Theme != DefaultTheme() {
				t.Fatalf("expected default theme, got %+v", r.Theme)
			}
		})
	}
}

func TestRoomTileOutOfRange(t *testing.T) {
	r := NewRoom(1, 10, 8)
	r.SetTile(3, 2, TileBlock)
	if got := r.Tile(3, 2); got != TileBlock {
		t.Fatalf("expected Block, got %v", got)
	}
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {8, 0}, {0, 6}, {100, 100}} {
		r.SetTile(p[0], p[1], TileSpawn)
		if got := r.Tile(p[0], p[1]); got != TileEmpty {
			t.Fatalf("expected Empty at %v, got %v", p, got)
		}
	}
	if n := r.CountTiles()[TileSpawn]; n != 0 {
		t.Fatalf("out-of-range writes should be ignored, found %d spawn tiles", n)
	}
}

func TestRoomResizePreservesOverlap(t *testing.T) {
	r := NewRoom(1, 10, 8)
	r.SetTile(0, 0, TileBlock)
	r.SetTile(7, 5, TileSearchable)
	r.SetTile(2, 1, TilePlatform)

	r.Resize(6, 5)
	if r.Width != 6 || r.Height != 5 {
		t.Fatalf("expected 6x5, got %dx%d", r.Width, r.Height)
	}
	if len(r.Interior) != 3 || len(r.Interior[0]) != 4 {
		t.Fatalf("expected 4x3 interior, got %dx%d", len(r.Interior[0]), len(r.Interior))
	}
	if r.Tile(0, 0) != TileBlock || r.Tile(2, 1) != TilePlatform {
		t.Fatalf("overlap tiles lost after shrink")
	}

	r.Resize(12, 10)
	if r.Tile(0, 0) != TileBlock || r.Tile(2, 1) != TilePlatform {
		t.Fatalf("overlap tiles lost after grow")
	}
	if r.Tile(7, 5) != TileEmpty {
		t.Fatalf("tile outside the shrunken area should not come back, got %v", r.Tile(7, 5))
	}
	if len(r.Interior) != 8 || len(r.Interior[7]) != 10 {
		t.Fatalf("expected 10x8 interior, got %dx%d", len(r.Interior[7]), len(r.Interior))
	}
}

func TestRoomCloneIsIndependent(t *testing.T) {
	r := NewRoom(3, 10, 8)
	r.SetTile(1, 1, TileBlock)
	r.Exits.Right = DoorwayExit()

	c := r.Clone()
	if !reflect.DeepEqual(r, c) {
		t.Fatalf("clone differs from source")
	}
	c.SetTile(1, 1, TileEmpty)
	c.Exits.Right.Type = "portal"
	c.Theme.WallColor = "red"
	if r.Tile(1, 1) != TileBlock {
		t.Fatalf("clone shares interior with source")
	}
	if r.Exits.Right.Type != "doorway" {
		t.Fatalf("clone shares exits with source")
	}
	if r.Theme.WallColor != "darkgray" {
		t.Fatalf("clone shares theme with source")
	}
}

func TestExitsSides(t *testing.T) {
	var e Exits
	if err := e.Set("left", DoorwayExit()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := e.Get("left")
	if err != nil || got == nil || got.Type != "doorway" {
		t.Fatalf("expected doorway on left, got %+v (%v)", got, err)
	}
	if err := e.Set("top", DoorwayExit()); !errors.Is(err, ErrUnknownSide) {
		t.Fatalf("expected ErrUnknownSide, got %v", err)
	}
	if _, err := e.Get("bottom"); !errors.Is(err, ErrUnknownSide) {
		t.Fatalf("expected ErrUnknownSide, got %v", err)
	}
	if err := e.Set("left", nil); err != nil || e.Left != nil {
		t.Fatalf("expected left exit cleared")
	}
}

func TestRoomTools(t *testing.T) {
	t.Run("fill_rect_any_corner_order", func(t *testing.T) {
		r := NewRoom(1, 10, 8)
		r.FillRect(3, 2, 1, 0, TileBlock)
		if n := r.CountTiles()[TileBlock]; n != 9 {
			t.Fatalf("expected 9 blocks, got %d", n)
		}
	})

	t.Run("fill_rect_clipped", func(t *testing.T) {
		r := NewRoom(1, 10, 8)
		r.FillRect(-5, -5, 1, 1, TileBlock)
		if n := r.CountTiles()[TileBlock]; n != 4 {
			t.Fatalf("expected 4 blocks, got %d", n)
		}
	})

	t.Run("paint_brush", func(t *testing.T) {
		r := NewRoom(1, 10, 8)
		r.Paint(4, 3, 3, TilePlatform)
		if n := r.CountTiles()[TilePlatform]; n != 9 {
			t.Fatalf("expected 9 platforms, got %d", n)
		}
		r.Clear()
		r.Paint(4, 3, 0, TilePlatform)
		if n := r.CountTiles()[TilePlatform]; n != 1 {
			t.Fatalf("expected brush size to clamp to 1, got %d tiles", n)
		}
	})

	t.Run("flood_fill_bounded", func(t *testing.T) {
		r := NewRoom(1, 10, 8)
		for y := 0; y < 6; y++ {
			r.SetTile(3, y, TileBlock)
		}
		n := r.FloodFill(0, 0, TilePlatform)
		if n != 18 {
			t.Fatalf("expected 18 filled cells, got %d", n)
		}
		if r.Tile(4, 0) != TileEmpty {
			t.Fatalf("fill crossed the wall")
		}
		if r.FloodFill(0, 0, TilePlatform) != 0 {
			t.Fatalf("refilling with the same tile should change nothing")
		}
		if r.FloodFill(-1, 0, TileBlock) != 0 {
			t.Fatalf("out-of-range seed should change nothing")
		}
	})

	t.Run("draw_line", func(t *testing.T) {
		r := NewRoom(1, 10, 8)
		r.DrawLine(0, 0, 5, 5, TileBlock)
		for i := 0; i <= 5; i++ {
			if r.Tile(i, i) != TileBlock {
				t.Fatalf("expected block at (%d,%d)", i, i)
			}
		}
		if n := r.CountTiles()[TileBlock]; n != 6 {
			t.Fatalf("expected 6 blocks, got %d", n)
		}
	})

	t.Run("clear", func(t *testing.T) {
		r := NewRoom(1, 10, 8)
		r.FillRect(0, 0, 7, 5, TileBlock)
		r.Clear()
		if n := r.CountTiles()[TileEmpty]; n != 48 {
			t.Fatalf("expected 48 empty tiles, got %d", n)
		}
	})
}

func TestParseTileType(t *testing.T) {
	cases := []struct {
		in      string
		want    TileType
		wantErr bool
	}{
		{"block", TileBlock, false},
		{"Spawn", TileSpawn, false},
		{" 9 ", TileSearchable, false},
		{"5", TileType(5), false},
		{"lava", TileEmpty, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseTileType(c.in)
			if (err != nil) != c.wantErr {
				t.Fatalf("expected error=%v, got %v", c.wantErr, err)
			}
			if got != c.want {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
	if TileType(5).Name() != "Unknown" || TileType(5).Known() {
		t.Fatalf("reserved values should be unknown")
	}
}

func TestParseDoorPosition(t *testing.T) {
	cases := map[string]DoorPosition{
		"top":    DoorTop,
		"MID":    DoorMid,
		"middle": DoorMid,
		"bottom": DoorBot,
		"none":   DoorNone,
	}
	for in, want := range cases {
		got, err := ParseDoorPosition(in)
		if err != nil || got != want {
			t.Fatalf("%q: expected %q, got %q (%v)", in, want, got, err)
		}
	}
	if _, err := ParseDoorPosition("sideways"); err == nil {
		t.Fatalf("expected error for unknown door position")
	}
	if DoorMid.Name() != "Middle" || DoorBot.Name() != "Bottom" {
		t.Fatalf("unexpected door names")
	}
}
