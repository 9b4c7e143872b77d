package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ephdisc/grimpossiblemission/levels"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore keeps levels in a single table keyed by name.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresStore(dsn string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	s := &PostgresStore{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS levels (
		name TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		room_count INTEGER NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *PostgresStore) Save(name string, lvl *levels.Level) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := lvl.MarshalJSON()
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", name, err)
	}

	query := `
	INSERT INTO levels (name, document, room_count)
	VALUES ($1, $2, $3)
	ON CONFLICT (name)
	DO UPDATE SET
		document = $2, room_count = $3,
		updated_at = NOW()
	`
	if _, err := s.db.Exec(query, name, string(data), len(lvl.Rooms)); err != nil {
		return fmt.Errorf("store: save %s: %w", name, err)
	}
	s.logger.Debug("level saved", slog.String("name", name), slog.Int("rooms", len(lvl.Rooms)))
	return nil
}

func (s *PostgresStore) Load(name string) (*levels.Level, error) {
	var doc string
	err := s.db.QueryRow(`SELECT document FROM levels WHERE name = $1`, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", name, err)
	}
	var lvl levels.Level
	if err := lvl.UnmarshalJSON([]byte(doc)); err != nil {
		return nil, fmt.Errorf("store: load %s: %w", name, err)
	}
	return &lvl, nil
}

func (s *PostgresStore) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM levels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return names, nil
}

func (s *PostgresStore) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM levels WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
