package host

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/store"
)

// StoreHost is a scene.Host backed by a named scene in a store.
//
// The scene is loaded on first use. Immediate commits are written through;
// eventual commits are held until Flush.
type StoreHost struct {
	store store.Store
	name  string

	mu    sync.Mutex
	mem   *Memory
	dirty bool
}

// NewStoreHost returns a host for scene name in s.
func NewStoreHost(s store.Store, name string) *StoreHost {
	return &StoreHost{store: s, name: name}
}

// Name returns the scene name.
func (h *StoreHost) Name() string { return h.name }

func (h *StoreHost) load(ctx context.Context) (*Memory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mem != nil {
		return h.mem, nil
	}
	objs, err := h.store.Load(ctx, h.name)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(errors.ErrCodeSceneNotFound, err, "scene %q not found", h.name)
	}
	if err != nil {
		return nil, err
	}
	h.mem = NewMemory(objs)
	return h.mem, nil
}

// Objects implements scene.Host.
func (h *StoreHost) Objects(ctx context.Context) ([]*scene.Object, error) {
	m, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	return m.Objects(ctx)
}

// Commit implements scene.Host.
func (h *StoreHost) Commit(ctx context.Context, changed []*scene.Object, mode scene.CommitMode) error {
	m, err := h.load(ctx)
	if err != nil {
		return err
	}
	if err := m.Commit(ctx, changed, mode); err != nil {
		return err
	}
	h.mu.Lock()
	h.dirty = true
	h.mu.Unlock()
	if mode == scene.CommitImmediately {
		return h.Flush(ctx)
	}
	return nil
}

// Flush persists pending eventual commits.
func (h *StoreHost) Flush(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.dirty || h.mem == nil {
		return nil
	}
	objs, _ := h.mem.Objects(ctx)
	if err := h.store.Save(ctx, h.name, objs); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save scene %q", h.name)
	}
	h.dirty = false
	return nil
}

// Selection implements scene.Host.
func (h *StoreHost) Selection(ctx context.Context) ([]string, error) {
	m, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	return m.Selection(ctx)
}

// SetSelection implements scene.Host. Selection is not persisted.
func (h *StoreHost) SetSelection(ctx context.Context, ids []string) error {
	m, err := h.load(ctx)
	if err != nil {
		return err
	}
	return m.SetSelection(ctx, ids)
}

var _ scene.Host = (*StoreHost)(nil)
