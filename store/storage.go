// Package store keeps a library of named levels, either as files in a
// directory or as rows in PostgreSQL. Both backends store the exact bytes
// produced by the level writer.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ephdisc/grimpossiblemission/config"
	"github.com/ephdisc/grimpossiblemission/levels"
)

var (
	ErrNotFound    = errors.New("store: level not found")
	ErrInvalidName = errors.New("store: invalid level name")
)

// Storage defines the level library operations shared by every backend.
type Storage interface {
	Save(name string, lvl *levels.Level) error
	Load(name string) (*levels.Level, error)
	List() ([]string, error)
	Delete(name string) error
	Close() error
}

// Open returns the backend selected by cfg.Store.Driver.
func Open(cfg config.Config, logger *slog.Logger) (Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Store.Driver {
	case "", "dir":
		return NewDirStore(cfg.Store.Dir, cfg.Save, logger)
	case "postgres":
		return NewPostgresStore(cfg.Store.DSN, logger)
	}
	return nil, fmt.Errorf("store: unknown driver %q", cfg.Store.Driver)
}

// checkName rejects names that would escape the store or collide with
// backup file naming.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
