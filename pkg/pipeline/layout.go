package pipeline

import (
	"bytes"

	"github.com/matzehuels/mindlayout/pkg/cache"
	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// SceneHash returns the content hash of a scene.
func SceneHash(objs []*scene.Object) (string, error) {
	data, err := scene.MarshalObjects(objs)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// ConfigHash returns the content hash of a layout configuration. Invalid
// configurations have no hash, so they never reach the cache.
func ConfigHash(cfg config.LayoutConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := config.Write(&buf, cfg); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode layout config")
	}
	return cache.Hash(buf.Bytes()), nil
}

// roots returns the roots to lay out: the root of rootID, or every root.
func roots(objs []*scene.Object, rootID string) []string {
	ix := hierarchy.Build(objs)
	if rootID == "" {
		return ix.Roots()
	}
	if ix.Node(rootID) == nil {
		return nil
	}
	return []string{ix.Info(rootID).RootID}
}
