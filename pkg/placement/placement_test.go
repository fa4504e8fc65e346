package placement

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/scene/scenetest"
)

func run(t *testing.T, buf *scene.Buffer, opts Options) Stats {
	t.Helper()
	ix := hierarchy.Build(buf.All())
	root := buf.Get(ix.Roots()[0])
	cfg := config.Default().Resolve(root.Root)
	st, err := Run(buf, ix, cfg, root.ID, opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return st
}

func wideMap(mode scene.GrowthMode) *scenetest.Builder {
	b := scenetest.New().Root("root", 0, 0, &scene.RootConfig{GrowthMode: mode})
	for i := range 5 {
		id := fmt.Sprintf("n%d", i)
		b.Child("root", id, float64(i))
		for j := range i % 3 {
			b.Child(id, fmt.Sprintf("%s.%d", id, j), float64(j))
		}
	}
	return b.Child("n1.0", "deep", 0).CrossLink("link", "n0", "deep").Decoration("deco", "n2")
}

// clockAngle returns the angle of p around c, clockwise from 12 o'clock.
func clockAngle(c, p geom.Point) float64 {
	return geom.NormalizeAngle(geom.Degrees(math.Atan2(p.X-c.X, c.Y-p.Y)))
}

func TestRadialSlotsNonOverlapping(t *testing.T) {
	cfg := config.Default().Resolve(nil)
	for _, n := range []int{1, 2, 8, 30} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			items := make([]Item, n)
			for i := range items {
				items[i] = Item{ID: fmt.Sprint(i), Width: 120, Height: 40 + float64(i%4)*30}
			}
			r := RadialSlots(items, 380, 240, cfg)
			if len(r.Slots) != n {
				t.Fatalf("got %d slots, want %d", len(r.Slots), n)
			}
			for i, s := range r.Slots {
				if s.ID != items[i].ID {
					t.Errorf("slot %d holds %s, want input order", i, s.ID)
				}
				if s.Span <= 0 || s.Angle <= s.Start || s.Angle >= s.End() {
					t.Errorf("slot %d malformed: %+v", i, s)
				}
				if i > 0 && s.Start < r.Slots[i-1].End()-geom.Epsilon {
					t.Errorf("slot %d starts at %.2f before previous end %.2f", i, s.Start, r.Slots[i-1].End())
				}
			}
			last := r.Slots[n-1]
			if last.End() > r.Slots[0].Start+360+geom.Epsilon {
				t.Errorf("slots wrap onto the first slot: end %.2f", last.End())
			}
			if n > 1 && math.Abs(last.End()-cfg.RadialStartAngle-cfg.RadialMaxSweep) > 1e-6 && r.Required < cfg.RadialMaxSweep {
				t.Errorf("sparse map not stretched to the sweep: end %.2f", last.End())
			}
			if n == 30 && r.RadiusX <= 380 {
				t.Errorf("radius not grown for 30 branches: %.1f", r.RadiusX)
			}
		})
	}
}

func TestRadialLayoutFollowsOrder(t *testing.T) {
	b := scenetest.New().Root("root", 0, 0, &scene.RootConfig{GrowthMode: scene.GrowthRadial})
	// Insert in scrambled order; placement must sort by stored order.
	for _, i := range []int{5, 2, 7, 0, 3, 6, 1, 4} {
		b.Child("root", fmt.Sprintf("n%d", i), float64(i))
	}
	buf := b.Buffer()
	run(t, buf, Options{})

	c := buf.Get("root").Center()
	prev := -1.0
	for i := range 8 {
		a := clockAngle(c, buf.Get(fmt.Sprintf("n%d", i)).Center())
		if a <= prev {
			t.Errorf("n%d at %.1f°, not after previous %.1f°", i, a, prev)
		}
		prev = a
	}
}

func TestRadialBranchesDoNotOverlap(t *testing.T) {
	for _, n := range []int{8, 30} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			b := scenetest.New().Root("root", 0, 0, &scene.RootConfig{GrowthMode: scene.GrowthRadial})
			for i := range n {
				parent := fmt.Sprintf("n%d", i)
				b.Child("root", parent, float64(i))
				for d := range i % 4 {
					id := fmt.Sprintf("%s.%d", parent, d)
					b.Child(parent, id, 0).Child(parent, id+"x", 1)
					parent = id
				}
			}
			buf := b.Buffer()
			run(t, buf, Options{})
			run(t, buf, Options{})

			ix := hierarchy.Build(buf.All())
			ids := ix.Nodes()
			for i, a := range ids {
				for _, c := range ids[i+1:] {
					ba, bc := buf.Get(a).Box(), buf.Get(c).Box()
					if ba.Overlaps(bc) {
						t.Errorf("%s %v overlaps %s %v", a, ba, c, bc)
					}
				}
			}
		})
	}
}

func TestBranchBox(t *testing.T) {
	it := Item{ID: "a", Width: 300, Height: 100}
	right := BranchBox(it, geom.Pt(50, 10), 90)
	if right != (geom.Box{X: 50, Y: -40, Width: 300, Height: 100}) {
		t.Errorf("right branch box = %v", right)
	}
	left := BranchBox(it, geom.Pt(-50, 10), 270)
	if left != (geom.Box{X: -350, Y: -40, Width: 300, Height: 100}) {
		t.Errorf("left branch box = %v", left)
	}
}

func TestLayoutIdempotent(t *testing.T) {
	modes := []scene.GrowthMode{scene.GrowthRadial, scene.GrowthRight, scene.GrowthLeft, scene.GrowthLeftRight, scene.GrowthManual}
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			buf := wideMap(mode).Buffer()
			run(t, buf, Options{})
			before := buf.Snapshot()

			st := run(t, buf, Options{})
			if st.MaxShift > config.Default().Epsilon {
				t.Errorf("second pass moved nodes by %.3f", st.MaxShift)
			}
			for _, want := range before {
				got := buf.Get(want.ID)
				if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
					t.Errorf("%s moved from (%.2f,%.2f) to (%.2f,%.2f)", want.ID, want.X, want.Y, got.X, got.Y)
				}
			}
		})
	}
}

func TestDirectionalSiblingsDoNotOverlap(t *testing.T) {
	for _, mode := range []scene.GrowthMode{scene.GrowthRight, scene.GrowthLeftRight} {
		t.Run(string(mode), func(t *testing.T) {
			buf := wideMap(mode).Buffer()
			run(t, buf, Options{})
			ix := hierarchy.Build(buf.All())
			for _, parent := range ix.Nodes() {
				kids := ix.Children(parent)
				for i := range kids {
					for j := i + 1; j < len(kids); j++ {
						a, b := buf.Get(kids[i]).Box(), buf.Get(kids[j]).Box()
						if a.Overlaps(b) {
							t.Errorf("%s %v overlaps %s %v", kids[i], a, kids[j], b)
						}
					}
				}
			}
		})
	}
}

func TestDirectionalSides(t *testing.T) {
	tests := []struct {
		mode  scene.GrowthMode
		right bool
		left  bool
	}{
		{scene.GrowthRight, true, false},
		{scene.GrowthLeft, false, true},
		{scene.GrowthLeftRight, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			b := scenetest.New().Root("root", 0, 0, &scene.RootConfig{GrowthMode: tt.mode})
			for i := range 4 {
				b.Child("root", fmt.Sprint(i), float64(i)).Edit(fmt.Sprint(i), func(o *scene.Object) { o.Node.IsNew = true })
			}
			buf := b.Buffer()
			run(t, buf, Options{})
			var r, l bool
			for i := range 4 {
				n := buf.Get(fmt.Sprint(i))
				if n.Node.IsNew {
					t.Errorf("node %d still flagged new", i)
				}
				if n.Center().X > 0 {
					r = true
				} else {
					l = true
				}
			}
			if r != tt.right || l != tt.left {
				t.Errorf("right=%v left=%v, want right=%v left=%v", r, l, tt.right, tt.left)
			}
		})
	}
}

func TestPinnedAnchor(t *testing.T) {
	b := scenetest.New().
		Root("root", 0, 0, &scene.RootConfig{GrowthMode: scene.GrowthRight}).
		Child("root", "A", 0).
		Child("root", "B", 1).
		Child("root", "C", 2).
		Edit("B", func(o *scene.Object) { o.X, o.Y = 400, 60 }).
		Pin("B")
	buf := b.Buffer()
	run(t, buf, Options{})
	pinned := buf.Get("B").Box()

	// Add D as a freshly created child next to the root.
	nb := scenetest.New()
	for _, o := range buf.Snapshot() {
		nb.Add(o)
	}
	nb.Child("root", "D", 3).Edit("D", func(o *scene.Object) { o.Node.IsNew = true; o.X, o.Y = 70, -20 })
	buf = nb.Buffer()
	run(t, buf, Options{})

	if got := buf.Get("B").Box(); got != pinned {
		t.Fatalf("pinned B moved from %v to %v", pinned, got)
	}
	if a := buf.Get("A").Box(); a.Bottom() > pinned.Top() {
		t.Errorf("A %v reaches into B's band %v", a, pinned)
	}
	for _, id := range []string{"C", "D"} {
		if box := buf.Get(id).Box(); box.Top() < pinned.Bottom() {
			t.Errorf("%s %v reaches into B's band %v", id, box, pinned)
		}
	}
	if c, d := buf.Get("C").Box(), buf.Get("D").Box(); c.Bottom() > d.Top() {
		t.Errorf("D %v not stacked below C %v", d, c)
	}
	if st := run(t, buf, Options{}); st.MaxShift > 0 {
		t.Errorf("layout with anchor not settled, second pass moved %.3f", st.MaxShift)
	}
}

func TestChildOrdering(t *testing.T) {
	b := scenetest.New().
		Root("root", 0, 0, &scene.RootConfig{GrowthMode: scene.GrowthRight}).
		Child("root", "p", 0).
		Child("p", "x", 0).
		Child("p", "y", 1).
		Edit("x", func(o *scene.Object) { o.Y = 500 })

	buf := b.Buffer()
	run(t, buf, Options{})
	if buf.Get("y").Y >= buf.Get("x").Y {
		t.Error("visual order not kept: x was dragged below y")
	}
	if buf.Get("y").Node.Order != 0 || buf.Get("x").Node.Order != 1 {
		t.Errorf("orders not resynchronized: x=%v y=%v", buf.Get("x").Node.Order, buf.Get("y").Node.Order)
	}

	buf.Edit("x").Node.Order = -1
	run(t, buf, Options{HonorManualOrder: true})
	if buf.Get("x").Y >= buf.Get("y").Y {
		t.Error("manual order ignored")
	}
}

func TestFoldedChildrenStay(t *testing.T) {
	b := scenetest.New().
		Root("root", 0, 0, &scene.RootConfig{GrowthMode: scene.GrowthRight}).
		Child("root", "p", 0).
		Child("p", "hidden", 0).
		Edit("p", func(o *scene.Object) { o.Node.Folded = true })
	buf := b.Buffer()
	before := buf.Get("hidden").Box()
	run(t, buf, Options{})
	if got := buf.Get("hidden").Box(); got != before {
		t.Errorf("child of folded node moved: %v -> %v", before, got)
	}
}

func TestConnectorPath(t *testing.T) {
	parent := geom.Box{X: 0, Y: 0, Width: 100, Height: 40}
	right := geom.Box{X: 200, Y: 100, Width: 80, Height: 20}
	left := geom.Box{X: -300, Y: -50, Width: 80, Height: 20}

	tests := []struct {
		name     string
		child    geom.Box
		fromRoot bool
		style    scene.ArrowStyle
		n        int
		start    geom.Point
		end      geom.Point
	}{
		{"straight", right, false, scene.ArrowStraight, 2, geom.Pt(100, 20), geom.Pt(200, 110)},
		{"curved", right, false, scene.ArrowCurved, 4, geom.Pt(100, 20), geom.Pt(200, 110)},
		{"curved left", left, false, scene.ArrowCurved, 4, geom.Pt(0, 20), geom.Pt(-220, -40)},
		{"from root", right, true, scene.ArrowCurved, 3, geom.RayExit(parent, geom.Pt(200, 110)), geom.Pt(200, 110)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := ConnectorPath(parent, tt.child, tt.fromRoot, tt.style, 0.5)
			if len(pts) != tt.n {
				t.Fatalf("got %d points, want %d", len(pts), tt.n)
			}
			if !geom.Near(pts[0], tt.start) || !geom.Near(pts[len(pts)-1], tt.end) {
				t.Errorf("path %v, want %v .. %v", pts, tt.start, tt.end)
			}
		})
	}
}

func TestReconcileFollowers(t *testing.T) {
	buf := wideMap(scene.GrowthRight).Label("tag", "n2").Buffer()
	deco0, n20, tag0 := buf.Get("deco").Box(), buf.Get("n2").Box(), buf.Get("tag").Box()
	st := run(t, buf, Options{})

	n2 := buf.Get("n2").Box()
	want := geom.Pt(n2.CenterX()-n20.CenterX(), n2.CenterY()-n20.CenterY())
	if got := buf.Get("deco").Box(); !geom.Near(geom.Pt(got.X-deco0.X, got.Y-deco0.Y), want) {
		t.Errorf("decoration shifted by (%.1f,%.1f), want %v", got.X-deco0.X, got.Y-deco0.Y, want)
	}
	if got := buf.Get("tag").Box(); !geom.Near(geom.Pt(got.X-tag0.X, got.Y-tag0.Y), want) {
		t.Errorf("bound text did not follow its node")
	}

	link := buf.Get("link").AbsPoints()
	if !geom.Near(link[0], buf.Get("n0").Center()) || !geom.Near(link[len(link)-1], buf.Get("deep").Center()) {
		t.Errorf("cross-link %v not attached to moved endpoints", link)
	}
	if st.CrossLinks != 1 || st.Decorations < 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestPurgeDropsUnrelatedChanges(t *testing.T) {
	buf := wideMap(scene.GrowthRight).
		Add(&scene.Object{ID: "stray", Kind: scene.KindRectangle, Width: 5, Height: 5}).
		Buffer()
	buf.Edit("stray").X = 99
	buf.Edit("n2.1").Deleted = true
	st := run(t, buf, Options{})
	if buf.Changed("stray") {
		t.Error("unrelated object still marked changed")
	}
	if !buf.Changed("n2.1") {
		t.Error("deletion dropped by purge")
	}
	if st.Purged < 1 {
		t.Errorf("Purged = %d, want >= 1", st.Purged)
	}
}

func TestRunRejectsNonRoot(t *testing.T) {
	buf := wideMap(scene.GrowthRight).Buffer()
	ix := hierarchy.Build(buf.All())
	cfg := config.Default().Resolve(nil)
	if _, err := Run(buf, ix, cfg, "n1", Options{}); err == nil {
		t.Error("Run(non-root) = nil error")
	}
	if _, err := Run(buf, ix, cfg, "ghost", Options{}); err == nil {
		t.Error("Run(missing) = nil error")
	}
}

func TestRunRejectsCycle(t *testing.T) {
	b := scenetest.New().
		Root("x", 0, 0, nil).
		Child("x", "y", 0).
		Connector("back", "y", "x", true)
	buf := b.Buffer()
	ix := hierarchy.Build(buf.All())
	root := ix.Info("y").RootID
	_, err := Run(buf, ix, config.Default().Resolve(nil), root, Options{})
	if !errors.Is(err, errors.ErrCodeInvariantViolation) {
		t.Fatalf("Run(%s) error = %v, want invariant violation", root, err)
	}
	if !strings.Contains(err.Error(), "x -> y -> x") {
		t.Errorf("error %q does not name the cycle", err)
	}
	if len(buf.Changes()) != 0 {
		t.Errorf("rejected run changed %d objects", len(buf.Changes()))
	}
}

func TestArcParams(t *testing.T) {
	ts := arcParams([]geom.Point{geom.Pt(0, 0), geom.Pt(3, 4), geom.Pt(3, 14)})
	want := []float64{0, 1.0 / 3, 1}
	for i := range want {
		if math.Abs(ts[i]-want[i]) > 1e-9 {
			t.Errorf("ts[%d] = %v, want %v", i, ts[i], want[i])
		}
	}
	if m := midpoint([]geom.Point{geom.Pt(0, 0), geom.Pt(10, 0)}); !geom.Near(m, geom.Pt(5, 0)) {
		t.Errorf("midpoint = %v", m)
	}
}
