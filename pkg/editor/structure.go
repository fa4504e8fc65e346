package editor

import (
	"slices"

	"github.com/matzehuels/mindlayout/pkg/boundary"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// Direction selects the neighbor for a sibling reorder.
type Direction int

const (
	Up Direction = iota
	Down
)

// ParseDirection parses "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown direction %q (want up or down)", s)
}

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// Promote moves id one level up, next to its former parent. Its order is
// placed between the old parent and the parent's next sibling, and its
// subtree is restyled for the new depth.
func (e *Editor) Promote(id string) (Result, error) {
	if _, err := e.movable(id, "promote"); err != nil {
		return Result{}, err
	}
	ix := e.Index()
	parent, _ := ix.Parent(id)
	grand, ok := ix.Parent(parent)
	if !ok {
		return Result{}, errors.Invariant("cannot promote level-1 node %q", id)
	}
	order := e.orderAfter(grand, parent)

	e.rebind(id, grand)
	e.buf.Edit(id).Node.Order = order
	e.restyle(id)
	return Result{RootID: e.refresh(id), HonorManualOrder: true}, nil
}

// Demote moves id under its visually preceding sibling, or under the next
// one when id comes first, as that sibling's last child.
func (e *Editor) Demote(id string) (Result, error) {
	if _, err := e.movable(id, "demote"); err != nil {
		return Result{}, err
	}
	parent, _ := e.Index().Parent(id)
	sibs := e.siblings(parent)
	if len(sibs) < 2 {
		return Result{}, errors.Invariant("cannot demote %q: it has no sibling to move under", id)
	}
	i := slices.Index(sibs, id)
	target := sibs[1]
	if i > 0 {
		target = sibs[i-1]
	}
	order := e.maxOrder(target) + 1

	e.rebind(id, target)
	n := e.buf.Edit(id)
	n.Node.Order = order
	if t := e.Index().Node(target); t.Node.Folded {
		e.buf.Edit(target).Node.Folded = false
	}
	e.restyle(id)
	return Result{RootID: e.refresh(id), HonorManualOrder: true}, nil
}

// Reorder swaps id with its previous or next sibling after normalizing the
// sibling orders to dense integers.
func (e *Editor) Reorder(id string, dir Direction) (Result, error) {
	if _, err := e.movable(id, "reorder"); err != nil {
		return Result{}, err
	}
	parent, _ := e.Index().Parent(id)
	sibs := e.siblings(parent)
	i := slices.Index(sibs, id)
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if j < 0 || j >= len(sibs) {
		return Result{}, errors.Invariant("cannot move %q %s: it is already at the edge", id, dir)
	}
	e.normalize(parent)
	e.buf.Edit(id).Node.Order = float64(j)
	e.buf.Edit(sibs[j]).Node.Order = float64(i)
	_, rootID := e.resolved(id)
	return Result{RootID: rootID, HonorManualOrder: true}, nil
}

// SwapSide mirrors a level-1 branch across the root's vertical center line
// in directional growth modes. A right or left map becomes a left-right map.
func (e *Editor) SwapSide(id string) (Result, error) {
	n, err := e.movable(id, "swap side of")
	if err != nil {
		return Result{}, err
	}
	cfg, rootID := e.resolved(id)
	if !cfg.GrowthMode.Directional() {
		return Result{}, errors.Invariant("side swap needs a directional growth mode, map is %s", cfg.GrowthMode)
	}
	ix := e.Index()
	if p, _ := ix.Parent(id); p != rootID {
		return Result{}, errors.Invariant("only level-1 branches can swap sides")
	}
	dx := 2 * (ix.Node(rootID).Center().X - n.Center().X)
	d := geom.Pt(dx, 0)
	members := boundary.Members(ix, e.buf, id)
	if b := n.Node.BoundaryID; b != "" {
		members = append(members, b)
	}
	for _, m := range members {
		if e.buf.Live(m) != nil {
			e.buf.Edit(m).Translate(d)
		}
	}
	// A one-sided map would put the branch straight back.
	if cfg.GrowthMode != scene.GrowthLeftRight {
		r := e.buf.Edit(rootID)
		if r.Root == nil {
			r.Root = &scene.RootConfig{}
		}
		r.Root.GrowthMode = scene.GrowthLeftRight
	}
	return Result{RootID: rootID}, nil
}
