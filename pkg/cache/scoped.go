package cache

// ScopedKeyer wraps a Keyer with a prefix so several stores can share one
// cache backend without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "store:redis:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(sceneHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(sceneHash, opts)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(sceneHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(sceneHash, opts)
}
