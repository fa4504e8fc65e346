package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// SQLite stores scenes in a single table of an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database file at path.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS scenes (
			name TEXT PRIMARY KEY,
			document BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	return err
}

// Load implements Store.
func (s *SQLite) Load(ctx context.Context, name string) ([]*scene.Object, error) {
	if err := errors.ValidateSceneName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM scenes WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", name, err)
	}
	return scene.UnmarshalObjects(data)
}

// Save implements Store.
func (s *SQLite) Save(ctx context.Context, name string, objs []*scene.Object) error {
	if err := errors.ValidateSceneName(name); err != nil {
		return err
	}
	data, err := scene.MarshalObjects(objs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scenes (name, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
	`, name, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save scene %s: %w", name, err)
	}
	return nil
}

// List implements Store.
func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM scenes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenes WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(name)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

var _ Store = (*SQLite)(nil)
