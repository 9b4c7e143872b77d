package lint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ephdisc/grimpossiblemission/levels"
)

// connectedLevel returns two rooms side by side on the floor layout with a
// door between them and the spawn in room 1.
func connectedLevel() *levels.Level {
	lvl := levels.NewLevel()
	for id := 1; id <= 2; id++ {
		lvl.AddRoom(levels.NewRoom(id, 10, 8))
		lvl.AddToLayout(id)
	}
	r, _ := lvl.Room(1)
	r.SetTile(0, 5, levels.TileSpawn)
	f := lvl.EnsureFloorLayout(3, 3)
	f.PlaceRoom(levels.Pos(0, 0), 1)
	f.PlaceRoom(levels.Pos(0, 1), 2)
	f.SetConnection(levels.Pos(0, 0), levels.Pos(0, 1), levels.DoorMid)
	return lvl
}

func byRule(findings []Finding, rule string) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Rule == rule {
			out = append(out, f)
		}
	}
	return out
}

func TestCleanLevelHasNoFindings(t *testing.T) {
	findings, err := Run(connectedLevel(), Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %v", findings)
	}
}

func TestBuiltinRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(lvl *levels.Level)
		rule   string
		want   string
	}{
		{
			name:   "dangling_floor_ref",
			mutate: func(lvl *levels.Level) { lvl.RemoveRoom(2) },
			rule:   RuleDanglingFloorRef,
			want:   "floor 0: cell (0, 1) references missing room 2",
		},
		{
			name: "unknown_tile",
			mutate: func(lvl *levels.Level) {
				r, _ := lvl.Room(2)
				r.SetTile(3, 1, levels.TileType(5))
				r.SetTile(4, 4, levels.TileType(7))
			},
			rule: RuleUnknownTile,
			want: "Room 2: 2 tile(s) of unknown type, first is 5 at (3, 1)",
		},
		{
			name: "theme_color",
			mutate: func(lvl *levels.Level) {
				r, _ := lvl.Room(1)
				r.Theme.FloorColor = "grey-ish"
			},
			rule: RuleThemeColor,
			want: `Room 1: floor_color "grey-ish" is not a known color`,
		},
		{
			name: "legend_color",
			mutate: func(lvl *levels.Level) {
				lvl.TileTypes.Set("4", levels.TileTypeInfo{Name: "lava", Color: "#ff00zz", SolidType: "none"})
			},
			rule: RuleThemeColor,
			want: `tile type 4: color "#ff00zz" is not a known color`,
		},
		{
			name: "non_adjacent",
			mutate: func(lvl *levels.Level) {
				f := lvl.ActiveFloorLayout()
				f.PlaceRoom(levels.Pos(2, 2), 2)
				f.SetConnection(levels.Pos(0, 0), levels.Pos(2, 2), levels.DoorTop)
			},
			rule: RuleConnectionAdjacency,
			want: "floor 0: connection (0, 0)-(2, 2) joins cells that are not adjacent",
		},
		{
			name: "empty_cell",
			mutate: func(lvl *levels.Level) {
				lvl.ActiveFloorLayout().SetConnection(levels.Pos(0, 1), levels.Pos(1, 1), levels.DoorBot)
			},
			rule: RuleConnectionEmptyCell,
			want: "floor 0: Bottom door at (1, 1) opens onto an empty cell",
		},
		{
			name: "unreachable",
			mutate: func(lvl *levels.Level) {
				lvl.ActiveFloorLayout().SetConnection(levels.Pos(0, 0), levels.Pos(0, 1), levels.DoorNone)
			},
			rule: RuleUnreachableRoom,
			want: "Room 2 cannot be reached from spawn room 1",
		},
		{
			name: "spawn_not_placed",
			mutate: func(lvl *levels.Level) {
				lvl.ActiveFloorLayout().ClearCell(levels.Pos(0, 0))
			},
			rule: RuleUnreachableRoom,
			want: "spawn room 1 is not placed on the floor layout",
		},
		{
			name: "exit_none",
			mutate: func(lvl *levels.Level) {
				lvl.AddRoom(levels.NewRoom(3, 10, 8))
			},
			rule: RuleExitNone,
			want: "Room 3 has no side exits and no floor layout doors",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lvl := connectedLevel()
			c.mutate(lvl)
			findings, err := Run(lvl, Options{})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			got := byRule(findings, c.rule)
			if len(got) != 1 || got[0].Message != c.want {
				t.Fatalf("expected %q, got %v", c.want, got)
			}
		})
	}
}

func TestFindingsDoNotAffectValidate(t *testing.T) {
	lvl := connectedLevel()
	lvl.RemoveRoom(2)
	findings, _ := Run(lvl, Options{})
	if len(findings) == 0 {
		t.Fatalf("expected findings")
	}
	if errs := lvl.Validate(); len(errs) != 0 {
		t.Fatalf("expected level to validate, got %v", errs)
	}
}

func TestDisableRule(t *testing.T) {
	lvl := connectedLevel()
	lvl.RemoveRoom(2)
	findings, err := Run(lvl, Options{Disable: []string{RuleDanglingFloorRef, RuleConnectionEmptyCell}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(byRule(findings, RuleDanglingFloorRef)) != 0 {
		t.Fatalf("disabled rule still reported: %v", findings)
	}
	if len(Rules()) != 7 {
		t.Fatalf("expected 7 built-in rules, got %v", Rules())
	}
}

func TestKnownColor(t *testing.T) {
	for _, s := range []string{"darkgray", "Gray", "brown", "#1a2B3c", "#1a2b3cff"} {
		if !knownColor(s) {
			t.Fatalf("expected %q to be known", s)
		}
	}
	for _, s := range []string{"", "grey-ish", "#123", "#12345g"} {
		if knownColor(s) {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

const wideRoomScript = `
fmt := import("fmt")

for _, r in level.rooms {
	if r.width > 30 {
		warn(fmt.sprintf("Room %d is wider than 30 tiles", r.id))
	}
}

spawns := 0
for _, r in level.rooms {
	for _, row in r.interior {
		for _, t in row {
			if t == 8 {
				spawns += 1
			}
		}
	}
}
if spawns == 1 && level.floor_layouts[0].grid[0][2] == undefined {
	warnings = append(warnings, "top right cell is empty")
}
`

func TestScriptRule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide_rooms.tengo")
	if err := os.WriteFile(path, []byte(wideRoomScript), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	lvl := connectedLevel()
	r, _ := lvl.Room(2)
	r.Resize(40, 8)

	findings, err := Run(lvl, Options{Scripts: []string{path}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got := byRule(findings, "script:wide_rooms")
	if len(got) != 2 {
		t.Fatalf("expected 2 script findings, got %v", findings)
	}
	if got[0].Message != "Room 2 is wider than 30 tiles" || got[1].Message != "top right cell is empty" {
		t.Fatalf("unexpected script findings %v", got)
	}
}

func TestScriptErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"syntax.tengo":  "if {",
		"runtime.tengo": "x := level.rooms - 1",
	}
	for name, src := range cases {
		path := filepath.Join(dir, name)
		os.WriteFile(path, []byte(src), 0o644)
		if _, err := Run(connectedLevel(), Options{Scripts: []string{path}}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	_, err := Run(connectedLevel(), Options{Scripts: []string{filepath.Join(dir, "missing.tengo")}})
	if err == nil || !strings.HasPrefix(err.Error(), "lint: load") {
		t.Fatalf("expected load error, got %v", err)
	}
}
