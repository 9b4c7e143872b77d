// Package roomclip moves single rooms between level files through the
// system clipboard.
package roomclip

import (
	"errors"
	"fmt"

	"github.com/ephdisc/grimpossiblemission/levels"
	"golang.design/x/clipboard"
)

// ErrEmpty is returned by Paste when the clipboard holds no text.
var ErrEmpty = errors.New("roomclip: clipboard is empty")

// Encode renders r as a standalone room object in the level file format.
func Encode(r *levels.Room) ([]byte, error) {
	return levels.MarshalRoom(r)
}

// Decode parses a room object produced by Encode.
func Decode(data []byte) (*levels.Room, error) {
	r, err := levels.UnmarshalRoom(data)
	if err != nil {
		return nil, fmt.Errorf("roomclip: decode: %w", err)
	}
	return r, nil
}

// Copy places r on the clipboard as text.
func Copy(r *levels.Room) error {
	data, err := Encode(r)
	if err != nil {
		return fmt.Errorf("roomclip: encode room %d: %w", r.ID, err)
	}
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("roomclip: init clipboard: %w", err)
	}
	clipboard.Write(clipboard.FmtText, data)
	return nil
}

// Paste reads a room from the clipboard.
func Paste() (*levels.Room, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("roomclip: init clipboard: %w", err)
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return Decode(data)
}
