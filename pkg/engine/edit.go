package engine

import (
	"context"

	"github.com/matzehuels/mindlayout/pkg/editor"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/observability"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// editFunc applies one edit to a fresh editor.
type editFunc func(*editor.Editor) (editor.Result, error)

// apply runs fn against the host's current scene, commits the result and,
// if relayout is set, lays out the affected map.
func (e *Engine) apply(ctx context.Context, op, id string, relayout bool, fn editFunc) (editor.Result, error) {
	res, err := e.applyLocked(ctx, op, id, fn)
	observability.Edit().OnEdit(ctx, op, id, err)
	if err != nil {
		if errors.Is(err, errors.ErrCodeInvariantViolation) {
			e.Logger.Warn("edit rejected", "op", op, "node", id, "reason", errors.UserMessage(err))
		}
		return res, err
	}
	e.Logger.Debug("applied edit", "op", op, "node", id, "root", res.RootID)

	if relayout && res.RootID != "" {
		_, err = e.Layout(ctx, res.RootID, LayoutOptions{HonorManualOrder: res.HonorManualOrder})
	}
	return res, err
}

func (e *Engine) applyLocked(ctx context.Context, op, id string, fn editFunc) (editor.Result, error) {
	e.editMu.Lock()
	defer e.editMu.Unlock()

	buf, _, err := e.load(ctx)
	if err != nil {
		return editor.Result{}, err
	}
	res, err := fn(editor.New(buf, e.Config, e.Measurer))
	if err != nil {
		return res, err
	}
	if _, err := e.commit(ctx, buf, scene.CommitImmediately); err != nil {
		return res, err
	}
	return res, nil
}

// NewRoot creates a new map root centered at (cx, cy) and returns its ID.
func (e *Engine) NewRoot(ctx context.Context, text string, cx, cy float64, rc scene.RootConfig) (string, error) {
	res, err := e.apply(ctx, "new-root", "", false, func(ed *editor.Editor) (editor.Result, error) {
		return ed.NewRoot(text, cx, cy, rc)
	})
	return res.NodeID, err
}

// ToggleFold folds or unfolds id according to mode and re-lays out the map.
func (e *Engine) ToggleFold(ctx context.Context, id string, mode editor.FoldMode) error {
	_, err := e.apply(ctx, "fold-"+string(mode), id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.ToggleFold(id, mode)
	})
	return err
}

// ToggleBoundary adds or removes the boundary around the subtree of id.
func (e *Engine) ToggleBoundary(ctx context.Context, id string) error {
	_, err := e.apply(ctx, "boundary", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.ToggleBoundary(id)
	})
	return err
}

// ToggleBranchGroup flips branch grouping for the subtree of id.
func (e *Engine) ToggleBranchGroup(ctx context.Context, id string) error {
	_, err := e.apply(ctx, "group", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.ToggleBranchGroup(id)
	})
	return err
}

// ChangeNodeOrder swaps id with its previous or next sibling.
func (e *Engine) ChangeNodeOrder(ctx context.Context, id string, dir editor.Direction) error {
	_, err := e.apply(ctx, "order-"+dir.String(), id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.Reorder(id, dir)
	})
	return err
}

// Promote moves id up one level, right after its former parent.
func (e *Engine) Promote(ctx context.Context, id string) error {
	_, err := e.apply(ctx, "promote", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.Promote(id)
	})
	return err
}

// Demote moves id under its previous sibling.
func (e *Engine) Demote(ctx context.Context, id string) error {
	_, err := e.apply(ctx, "demote", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.Demote(id)
	})
	return err
}

// SwapSide mirrors the level-1 branch id to the other side of the root.
func (e *Engine) SwapSide(ctx context.Context, id string) error {
	_, err := e.apply(ctx, "swap", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.SwapSide(id)
	})
	return err
}

// AddChild creates a node under parent and returns its ID.
func (e *Engine) AddChild(ctx context.Context, parent, text string) (string, error) {
	res, err := e.apply(ctx, "add-child", parent, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.AddChild(parent, text)
	})
	return res.NodeID, err
}

// AddSibling creates a node right after id and returns its ID.
func (e *Engine) AddSibling(ctx context.Context, id, text string) (string, error) {
	res, err := e.apply(ctx, "add-sibling", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.AddSibling(id, text)
	})
	return res.NodeID, err
}

// SetText replaces the text of id and resizes it.
func (e *Engine) SetText(ctx context.Context, id, text string) error {
	_, err := e.apply(ctx, "set-text", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.SetText(id, text)
	})
	return err
}

// Delete removes id and its whole subtree.
func (e *Engine) Delete(ctx context.Context, id string) error {
	_, err := e.apply(ctx, "delete", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.Delete(id)
	})
	return err
}

// TogglePin pins or unpins id.
func (e *Engine) TogglePin(ctx context.Context, id string) error {
	_, err := e.apply(ctx, "pin", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.TogglePin(id)
	})
	return err
}

// SetGrowthMode changes the growth mode of the map containing id.
func (e *Engine) SetGrowthMode(ctx context.Context, id string, mode scene.GrowthMode) error {
	_, err := e.apply(ctx, "growth-mode", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.SetGrowthMode(id, mode)
	})
	return err
}

// SetArrowStyle changes the connector style of the map containing id.
func (e *Engine) SetArrowStyle(ctx context.Context, id string, style scene.ArrowStyle) error {
	_, err := e.apply(ctx, "arrow-style", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.SetArrowStyle(id, style)
	})
	return err
}

// SetAutoLayout enables or disables automatic placement for the map
// containing id.
func (e *Engine) SetAutoLayout(ctx context.Context, id string, enabled bool) error {
	_, err := e.apply(ctx, "auto-layout", id, true, func(ed *editor.Editor) (editor.Result, error) {
		return ed.SetAutoLayout(id, enabled)
	})
	return err
}
