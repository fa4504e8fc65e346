package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

const fileExt = ".scene.json"

// File stores each scene as a JSON document in a directory.
type File struct {
	dir string
}

// NewFile returns a file store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the store directory.
func (s *File) Dir() string { return s.dir }

func (s *File) path(name string) (string, error) {
	if err := errors.ValidateSceneName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+fileExt), nil
}

// Load implements Store.
func (s *File) Load(ctx context.Context, name string) ([]*scene.Object, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, err
	}
	return scene.UnmarshalObjects(data)
}

// Save implements Store. The document is written to a temporary file and
// renamed into place.
func (s *File) Save(ctx context.Context, name string, objs []*scene.Object) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	data, err := scene.MarshalObjects(objs)
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// List implements Store.
func (s *File) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), fileExt); ok && !e.IsDir() {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Delete implements Store.
func (s *File) Delete(ctx context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); os.IsNotExist(err) {
		return notFound(name)
	} else if err != nil {
		return err
	}
	return nil
}

// Close does nothing for the file store.
func (s *File) Close() error { return nil }

var _ Store = (*File)(nil)
