package levels

import (
	"fmt"
	"strconv"
	"strings"
)

// TileType is the value stored in a room interior cell. Values outside the
// known set are kept as-is so files written by newer tools still load.
type TileType int

const (
	TileEmpty    TileType = 0
	TileBlock    TileType = 1
	TilePlatform TileType = 2
	// 3-7 are reserved.
	TileSpawn      TileType = 8
	TileSearchable TileType = 9
)

// Name returns the display name of the tile type, or "Unknown".
func (t TileType) Name() string {
	switch t {
	case TileEmpty:
		return "Empty"
	case TileBlock:
		return "Block"
	case TilePlatform:
		return "Platform"
	case TileSpawn:
		return "Spawn"
	case TileSearchable:
		return "Searchable"
	default:
		return "Unknown"
	}
}

func (t TileType) String() string { return t.Name() }

// Known reports whether t is one of the defined tile types.
func (t TileType) Known() bool { return t.Name() != "Unknown" }

// AllTileTypes returns the defined tile types in numeric order.
func AllTileTypes() []TileType {
	return []TileType{TileEmpty, TileBlock, TilePlatform, TileSpawn, TileSearchable}
}

// ParseTileType accepts a tile name (case-insensitive) or an integer literal.
func ParseTileType(s string) (TileType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return TileType(n), nil
	}
	for _, t := range AllTileTypes() {
		if strings.EqualFold(t.Name(), s) {
			return t, nil
		}
	}
	return TileEmpty, fmt.Errorf("levels: unknown tile type %q", s)
}

// DoorPosition is the vertical alignment of a door between two floor layout
// cells. DoorNone is never stored; it means "no connection".
type DoorPosition string

const (
	DoorNone DoorPosition = "none"
	DoorTop  DoorPosition = "top"
	DoorMid  DoorPosition = "mid"
	DoorBot  DoorPosition = "bot"
)

func (d DoorPosition) Name() string {
	switch d {
	case DoorNone:
		return "None"
	case DoorTop:
		return "Top"
	case DoorMid:
		return "Middle"
	case DoorBot:
		return "Bottom"
	default:
		return "Unknown"
	}
}

func AllDoorPositions() []DoorPosition {
	return []DoorPosition{DoorNone, DoorTop, DoorMid, DoorBot}
}

// ParseDoorPosition maps a stored or typed value onto the closed set.
func ParseDoorPosition(s string) (DoorPosition, error) {
	d := DoorPosition(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DoorNone, DoorTop, DoorMid, DoorBot:
		return d, nil
	case "middle":
		return DoorMid, nil
	case "bottom":
		return DoorBot, nil
	}
	return DoorNone, fmt.Errorf("levels: unknown door position %q", s)
}
