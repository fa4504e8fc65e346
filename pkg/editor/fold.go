package editor

import (
	"github.com/matzehuels/mindlayout/pkg/boundary"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// FoldMode selects what ToggleFold folds.
type FoldMode string

const (
	// FoldSelf toggles the node itself.
	FoldSelf FoldMode = "self"
	// FoldChildren toggles every child that has children of its own.
	FoldChildren FoldMode = "children"
	// FoldAll toggles every descendant that has children.
	FoldAll FoldMode = "all"
)

// ParseFoldMode validates a fold mode name.
func ParseFoldMode(s string) (FoldMode, error) {
	switch m := FoldMode(s); m {
	case FoldSelf, FoldChildren, FoldAll:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFoldMode, "unknown fold mode %q (want self, children or all)", s)
}

// ToggleFold folds or unfolds according to mode and refreshes visibility.
//
// In children and all modes the node itself ends up unfolded; the targets
// are folded if any of them is unfolded, otherwise all of them are unfolded.
func (e *Editor) ToggleFold(id string, mode FoldMode) (Result, error) {
	n, err := e.node(id)
	if err != nil {
		return Result{}, err
	}
	ix := e.Index()
	var targets []string
	switch mode {
	case FoldSelf:
		if !ix.HasChildren(id) && !n.Node.Folded {
			return Result{}, errors.Invariant("node %q has no children to fold", id)
		}
		e.buf.Edit(id).Node.Folded = !n.Node.Folded
		return Result{RootID: e.refresh(id)}, nil
	case FoldChildren:
		targets = ix.Children(id)
	case FoldAll:
		targets = ix.Descendants(id)
	default:
		return Result{}, errors.New(errors.ErrCodeInvalidFoldMode, "unknown fold mode %q", mode)
	}

	var branches []string
	fold := false
	for _, t := range targets {
		if !ix.HasChildren(t) {
			continue
		}
		branches = append(branches, t)
		if !ix.Node(t).Node.Folded {
			fold = true
		}
	}
	if len(branches) == 0 {
		return Result{}, errors.Invariant("node %q has no nested branches to fold", id)
	}
	if n.Node.Folded {
		e.buf.Edit(id).Node.Folded = false
	}
	for _, b := range branches {
		if ix.Node(b).Node.Folded != fold {
			e.buf.Edit(b).Node.Folded = fold
		}
	}
	return Result{RootID: e.refresh(id)}, nil
}

// ToggleBoundary adds or removes the boundary of id.
func (e *Editor) ToggleBoundary(id string) (Result, error) {
	if _, err := e.node(id); err != nil {
		return Result{}, err
	}
	cfg, rootID := e.resolved(id)
	boundary.Toggle(e.buf, e.Index(), cfg, id)
	return Result{RootID: rootID}, nil
}

// ToggleBranchGroup flips whether the subtree of id is grouped on layout.
func (e *Editor) ToggleBranchGroup(id string) (Result, error) {
	n, err := e.node(id)
	if err != nil {
		return Result{}, err
	}
	e.buf.Edit(id).Node.BranchGrouped = !n.Node.BranchGrouped
	_, rootID := e.resolved(id)
	return Result{RootID: rootID}, nil
}

// TogglePin flips the pinned state of id.
func (e *Editor) TogglePin(id string) (Result, error) {
	n, err := e.node(id)
	if err != nil {
		return Result{}, err
	}
	if e.Index().IsRoot(id) {
		return Result{}, errors.Invariant("the map root cannot be pinned")
	}
	e.buf.Edit(id).Node.Pinned = !n.Node.Pinned
	_, rootID := e.resolved(id)
	return Result{RootID: rootID}, nil
}

// rootConfig returns the editable RootConfig of the root of id.
func (e *Editor) rootConfig(id string) (*scene.RootConfig, string, error) {
	if _, err := e.node(id); err != nil {
		return nil, "", err
	}
	rootID := e.Index().Info(id).RootID
	r := e.buf.Edit(rootID)
	if r.Root == nil {
		r.Root = &scene.RootConfig{}
	}
	return r.Root, rootID, nil
}

// SetGrowthMode changes the growth mode of the map containing id.
func (e *Editor) SetGrowthMode(id string, mode scene.GrowthMode) (Result, error) {
	if _, err := scene.ParseGrowthMode(string(mode)); err != nil {
		return Result{}, err
	}
	rc, rootID, err := e.rootConfig(id)
	if err != nil {
		return Result{}, err
	}
	rc.GrowthMode = mode
	return Result{RootID: rootID}, nil
}

// SetArrowStyle changes the connector style of the map containing id.
func (e *Editor) SetArrowStyle(id string, style scene.ArrowStyle) (Result, error) {
	if style != scene.ArrowCurved && style != scene.ArrowStraight {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "unknown arrow style %q", style)
	}
	rc, rootID, err := e.rootConfig(id)
	if err != nil {
		return Result{}, err
	}
	rc.ArrowStyle = style
	return Result{RootID: rootID}, nil
}

// SetAutoLayout enables or disables auto-layout for the map containing id.
func (e *Editor) SetAutoLayout(id string, enabled bool) (Result, error) {
	rc, rootID, err := e.rootConfig(id)
	if err != nil {
		return Result{}, err
	}
	rc.AutoLayoutDisabled = !enabled
	return Result{RootID: rootID}, nil
}
