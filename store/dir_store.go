package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ephdisc/grimpossiblemission/config"
	"github.com/ephdisc/grimpossiblemission/levels"
	cp "github.com/otiai10/copy"
)

// DirStore keeps one <name>.json file per level. Overwrites go through a
// temp file and rename, and the replaced file can be kept as a backup.
type DirStore struct {
	dir    string
	save   config.Save
	logger *slog.Logger
	mu     sync.RWMutex
	now    func() time.Time
}

func NewDirStore(dir string, save config.Save, logger *slog.Logger) (*DirStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &DirStore{dir: dir, save: save, logger: logger, now: time.Now}, nil
}

func (s *DirStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// defaultBackupDir is used when save.backup_dir is empty, so that backups
// never share a directory with the levels they belong to.
const defaultBackupDir = ".backups"

func (s *DirStore) backupDir() string {
	dir := s.save.BackupDir
	if dir == "" || filepath.Clean(dir) == "." {
		dir = defaultBackupDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(s.dir, dir)
}

func (s *DirStore) Save(name string, lvl *levels.Level) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := lvl.MarshalJSON()
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(name)
	if s.save.Backup {
		if _, err := os.Stat(path); err == nil {
			if err := s.backup(name, path); err != nil {
				return err
			}
		}
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("store: save %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", name, err)
	}
	s.logger.Debug("level saved", slog.String("name", name), slog.Int("rooms", len(lvl.Rooms)))
	return nil
}

func (s *DirStore) backup(name, path string) error {
	dir := s.backupDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: backup %s: %w", name, err)
	}
	stamp := s.now().UnixNano()
	dest := filepath.Join(dir, fmt.Sprintf("%s-%d.json", name, stamp))
	for {
		if _, err := os.Stat(dest); errors.Is(err, fs.ErrNotExist) {
			break
		}
		stamp++
		dest = filepath.Join(dir, fmt.Sprintf("%s-%d.json", name, stamp))
	}
	if err := cp.Copy(path, dest); err != nil {
		return fmt.Errorf("store: backup %s: %w", name, err)
	}
	s.logger.Debug("level backed up", slog.String("name", name), slog.String("backup", dest))
	return s.prune(name)
}

// prune removes the oldest backups of name beyond save.keep. A keep of zero
// keeps everything.
func (s *DirStore) prune(name string) error {
	if s.save.Keep <= 0 {
		return nil
	}
	backups, err := s.backups(name)
	if err != nil {
		return err
	}
	for len(backups) > s.save.Keep {
		old := backups[0]
		backups = backups[1:]
		if err := os.Remove(old.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("store: prune %s: %w", old.path, err)
		}
	}
	return nil
}

type backupFile struct {
	path  string
	stamp int64
}

// backups lists the backups of name, oldest first.
func (s *DirStore) backups(name string) ([]backupFile, error) {
	entries, err := os.ReadDir(s.backupDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: list backups: %w", err)
	}
	var out []backupFile
	prefix := name + "-"
	for _, e := range entries {
		rest, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok || e.IsDir() {
			continue
		}
		stamp, err := strconv.ParseInt(strings.TrimSuffix(rest, ".json"), 10, 64)
		if err != nil || !strings.HasSuffix(rest, ".json") {
			continue
		}
		out = append(out, backupFile{path: filepath.Join(s.backupDir(), e.Name()), stamp: stamp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].stamp < out[j].stamp })
	return out, nil
}

// Backups returns the backup file paths for name, oldest first.
func (s *DirStore) Backups(name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files, err := s.backups(name)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

func (s *DirStore) Load(name string) (*levels.Level, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, err := os.ReadFile(s.path(name))
	s.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", name, err)
	}
	var lvl levels.Level
	if err := lvl.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("store: load %s: %w", name, err)
	}
	return &lvl, nil
}

func (s *DirStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *DirStore) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", name, err)
	}
	return nil
}

func (s *DirStore) Close() error { return nil }
