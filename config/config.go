package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ephdisc/grimpossiblemission/levels"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Room struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	MinSize int `yaml:"min_size"`
}

type FloorLayout struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// Save controls what happens to the previous copy of a level when it is
// overwritten.
type Save struct {
	Backup    bool   `yaml:"backup"`
	BackupDir string `yaml:"backup_dir"`
	Keep      int    `yaml:"keep"`
}

type Lint struct {
	Scripts []string `yaml:"scripts"`
	// Strict makes warnings fail the lint command.
	Strict bool `yaml:"strict"`
}

type Store struct {
	Driver string `yaml:"driver"`
	Dir    string `yaml:"dir"`
	DSN    string `yaml:"dsn"`
}

type Serve struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Room        Room         `yaml:"room"`
	FloorLayout FloorLayout  `yaml:"floor_layout"`
	Theme       levels.Theme `yaml:"theme"`
	Save        Save         `yaml:"save"`
	Lint        Lint         `yaml:"lint"`
	Store       Store        `yaml:"store"`
	Serve       Serve        `yaml:"serve"`
	Log         Log          `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded default.yaml: %v", err))
	}
	return cfg
}

// Load reads path on top of the defaults; keys missing from the file keep
// their default values. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Room.Width < c.Room.MinSize || c.Room.Height < c.Room.MinSize {
		errs = append(errs, fmt.Errorf("config: room size %dx%d is below min_size %d", c.Room.Width, c.Room.Height, c.Room.MinSize))
	}
	if c.FloorLayout.Rows < 1 || c.FloorLayout.Cols < 1 {
		errs = append(errs, fmt.Errorf("config: floor_layout must be at least 1x1, got %dx%d", c.FloorLayout.Rows, c.FloorLayout.Cols))
	}
	switch c.Store.Driver {
	case "dir", "postgres":
	default:
		errs = append(errs, fmt.Errorf("config: unknown store driver %q", c.Store.Driver))
	}
	if c.Store.Driver == "postgres" && c.Store.DSN == "" {
		errs = append(errs, errors.New("config: store.dsn is required for the postgres driver"))
	}
	if c.Save.Backup && (c.Save.BackupDir == "" || filepath.Clean(c.Save.BackupDir) == ".") {
		errs = append(errs, errors.New("config: save.backup_dir must name a directory separate from the levels"))
	}
	if c.Save.Keep < 0 {
		errs = append(errs, fmt.Errorf("config: save.keep must not be negative, got %d", c.Save.Keep))
	}
	if _, err := c.Log.level(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// NewRoom returns a room with the configured default size and theme.
func (c Config) NewRoom(id int) *levels.Room {
	r := levels.NewRoom(id, c.Room.Width, c.Room.Height)
	r.Theme = c.Theme
	return r
}

// NewFloorLayout returns an empty floor layout of the configured size.
func (c Config) NewFloorLayout() *levels.FloorLayout {
	return levels.NewFloorLayout(c.FloorLayout.Rows, c.FloorLayout.Cols)
}

func (l Log) level() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return lvl, fmt.Errorf("config: unknown log level %q", l.Level)
	}
	return lvl, nil
}

// Logger builds the process logger writing to w. Invalid settings fall back
// to info level text output; Validate reports them.
func (c Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := c.Log.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
