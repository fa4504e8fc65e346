// Package host provides reference implementations of [scene.Host].
//
// [Memory] keeps the scene in process and is what tests and the TUI use.
// [StoreHost] layers a Memory over a [store.Store] so that committed objects
// are persisted under a scene name.
package host

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/mindlayout/pkg/scene"
)

// Memory is an in-process scene. It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	objects   map[string]*scene.Object
	order     []string
	selection []string
	commits   int
}

// NewMemory returns a host holding deep copies of objs.
func NewMemory(objs []*scene.Object) *Memory {
	m := &Memory{objects: make(map[string]*scene.Object, len(objs))}
	m.apply(objs)
	return m
}

// Objects implements scene.Host. The returned objects are copies.
func (m *Memory) Objects(ctx context.Context) ([]*scene.Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*scene.Object, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.objects[id].Clone())
	}
	return out, nil
}

// Commit implements scene.Host. Changes are applied immediately regardless
// of mode.
func (m *Memory) Commit(ctx context.Context, changed []*scene.Object, mode scene.CommitMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(changed)
	m.commits++
	return nil
}

// apply merges objs by ID. Deleted objects are removed. Callers hold mu.
func (m *Memory) apply(objs []*scene.Object) {
	for _, o := range objs {
		if o == nil || o.ID == "" {
			continue
		}
		_, exists := m.objects[o.ID]
		if o.Deleted {
			if exists {
				delete(m.objects, o.ID)
				m.order = slices.DeleteFunc(m.order, func(id string) bool { return id == o.ID })
			}
			continue
		}
		if !exists {
			m.order = append(m.order, o.ID)
		}
		m.objects[o.ID] = o.Clone()
	}
}

// Selection implements scene.Host.
func (m *Memory) Selection(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.selection), nil
}

// SetSelection implements scene.Host. Unknown IDs are dropped.
func (m *Memory) SetSelection(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selection = m.selection[:0]
	for _, id := range ids {
		if _, ok := m.objects[id]; ok {
			m.selection = append(m.selection, id)
		}
	}
	return nil
}

// Get returns a copy of one object, or nil.
func (m *Memory) Get(id string) *scene.Object {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[id].Clone()
}

// Len returns the number of objects in the scene.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Commits returns how many commits have been applied.
func (m *Memory) Commits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commits
}

var _ scene.Host = (*Memory)(nil)
