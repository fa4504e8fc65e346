// Package store persists whole scenes by name.
//
// The layout engine itself never touches storage: it reads and commits
// objects through a [scene.Host]. Stores back the reference host used by the
// CLI and the HTTP API. Four backends are provided:
//
//   - [File]: one JSON document per scene in a directory
//   - [SQLite]: a single-table database file
//   - [Redis]: one key per scene plus a name index set
//   - [Mongo]: one document per scene
//
// All backends store the same [scene.Document] payload, so a scene can be
// moved between them with Load and Save.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/matzehuels/mindlayout/pkg/scene"
)

// ErrNotFound is returned by Load and Delete for unknown scene names.
var ErrNotFound = errors.New("scene not found")

// Store loads and saves scenes.
type Store interface {
	// Load returns every object of the named scene.
	Load(ctx context.Context, name string) ([]*scene.Object, error)

	// Save replaces the named scene.
	Save(ctx context.Context, name string, objs []*scene.Object) error

	// List returns the names of all stored scenes, sorted.
	List(ctx context.Context) ([]string, error)

	// Delete removes the named scene.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// Open returns the store described by a DSN:
//
//	file:///path/to/dir
//	sqlite:///path/to/scenes.db
//	redis://localhost:6379/0
//	mongodb://localhost:27017/mindlayout
//
// A bare path is treated as a file store directory.
func Open(ctx context.Context, dsn string) (Store, error) {
	if !strings.Contains(dsn, "://") {
		return NewFile(dsn)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse store dsn: %w", err)
	}
	switch u.Scheme {
	case "file":
		return NewFile(u.Host + u.Path)
	case "sqlite", "sqlite3":
		return NewSQLite(u.Host + u.Path)
	case "redis", "rediss":
		return NewRedis(ctx, dsn)
	case "mongodb", "mongodb+srv":
		db := strings.TrimPrefix(u.Path, "/")
		if db == "" {
			db = DefaultMongoDatabase
		}
		return NewMongo(ctx, dsn, db)
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}
