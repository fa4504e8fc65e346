package scene

import "errors"

// ErrUnknownObject is returned when an object ID is not part of the buffer.
var ErrUnknownObject = errors.New("unknown object")

// Buffer is the engine's working copy of a scene.
//
// It owns deep copies of the host objects, so the engine may mutate freely
// until it commits. Every mutation must go through Edit, Add or Delete so the
// buffer can report exactly which objects changed.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	objects map[string]*Object
	order   []string
	changed map[string]bool
}

// NewBuffer deep-copies objs into a new buffer. Later duplicates of an ID
// replace earlier ones.
func NewBuffer(objs []*Object) *Buffer {
	b := &Buffer{
		objects: make(map[string]*Object, len(objs)),
		order:   make([]string, 0, len(objs)),
		changed: make(map[string]bool),
	}
	for _, o := range objs {
		if o == nil || o.ID == "" {
			continue
		}
		if _, dup := b.objects[o.ID]; !dup {
			b.order = append(b.order, o.ID)
		}
		b.objects[o.ID] = o.Clone()
	}
	return b
}

// Len returns the number of objects, deleted ones included.
func (b *Buffer) Len() int { return len(b.order) }

// Get returns the object with the given ID, or nil. Deleted objects are
// returned; use Live to skip them. The result must not be mutated; use Edit.
func (b *Buffer) Get(id string) *Object { return b.objects[id] }

// Live returns the object if it exists and is not deleted.
func (b *Buffer) Live(id string) *Object {
	if o := b.objects[id]; o != nil && !o.Deleted {
		return o
	}
	return nil
}

// All returns every object in insertion order. The slice is fresh; the
// objects are shared and must not be mutated without Edit.
func (b *Buffer) All() []*Object {
	out := make([]*Object, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.objects[id])
	}
	return out
}

// Edit returns the object for mutation and records it as changed.
// It returns nil for unknown IDs.
func (b *Buffer) Edit(id string) *Object {
	o := b.objects[id]
	if o == nil {
		return nil
	}
	b.changed[id] = true
	return o
}

// Add inserts a new object and records it as changed.
func (b *Buffer) Add(o *Object) {
	if _, exists := b.objects[o.ID]; !exists {
		b.order = append(b.order, o.ID)
	}
	b.objects[o.ID] = o
	b.changed[o.ID] = true
}

// Delete marks the object deleted. Unknown IDs are ignored.
func (b *Buffer) Delete(id string) {
	if o := b.Edit(id); o != nil {
		o.Deleted = true
	}
}

// Changed reports whether id has been touched since the buffer was created.
func (b *Buffer) Changed(id string) bool { return b.changed[id] }

// Changes returns deep copies of all changed objects in insertion order.
func (b *Buffer) Changes() []*Object {
	out := make([]*Object, 0, len(b.changed))
	for _, id := range b.order {
		if b.changed[id] {
			out = append(out, b.objects[id].Clone())
		}
	}
	return out
}

// Retain drops the change record of every changed object for which keep
// returns false, so it is not committed. The object itself stays readable.
func (b *Buffer) Retain(keep func(*Object) bool) int {
	dropped := 0
	for id := range b.changed {
		if !keep(b.objects[id]) {
			delete(b.changed, id)
			dropped++
		}
	}
	return dropped
}

// Snapshot returns deep copies of every object in insertion order.
func (b *Buffer) Snapshot() []*Object {
	out := make([]*Object, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.objects[id].Clone())
	}
	return out
}
