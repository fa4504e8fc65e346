package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys. Implementations must be deterministic.
type Keyer interface {
	// LayoutKey returns the key of a layout result for a scene.
	LayoutKey(sceneHash string, opts LayoutKeyOpts) string

	// RenderKey returns the key of a rendered artifact for a scene.
	RenderKey(sceneHash string, opts RenderKeyOpts) string
}

// LayoutKeyOpts are the inputs of a layout besides the scene itself.
type LayoutKeyOpts struct {
	RootID           string `json:"root"`
	ConfigHash       string `json:"config"`
	ForceUngroup     bool   `json:"ungroup,omitempty"`
	HonorManualOrder bool   `json:"manual_order,omitempty"`
}

// RenderKeyOpts are the inputs of a render besides the scene itself.
type RenderKeyOpts struct {
	Format string `json:"format"`
	Engine string `json:"engine,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer. Keys look like "layout:<hex>".
func (DefaultKeyer) LayoutKey(sceneHash string, opts LayoutKeyOpts) string {
	return "layout:" + digest(sceneHash, opts)
}

// RenderKey implements Keyer. Keys look like "render:<hex>".
func (DefaultKeyer) RenderKey(sceneHash string, opts RenderKeyOpts) string {
	return "render:" + digest(sceneHash, opts)
}

// digest hashes the scene hash together with the JSON form of opts.
// Both option structs marshal without error.
func digest(sceneHash string, opts any) string {
	data, _ := json.Marshal(opts)
	h := sha256.New()
	h.Write([]byte(sceneHash))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. Scene documents and layout
// configurations are hashed with it before being keyed.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
