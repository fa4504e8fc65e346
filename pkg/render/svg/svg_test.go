package svg

import (
	"strings"
	"testing"

	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/scene/scenetest"
)

func TestRender(t *testing.T) {
	b := scenetest.New().
		Root("root", 0, 0, nil).
		Child("root", "a", 0).
		Child("a", "hidden", 0).
		Edit("hidden", func(o *scene.Object) { o.Opacity = 0 })
	b.Object("edge-a").SetAbsPoints([]geom.Point{geom.Pt(60, 0), geom.Pt(100, 0), geom.Pt(140, 0)})

	out := string(Render(b.Objects(), Options{Background: "white"}))
	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(out, "</svg>\n") {
		t.Fatalf("not an SVG document:\n%s", out)
	}
	if !strings.Contains(out, `id="root"`) || !strings.Contains(out, `id="a"`) {
		t.Error("visible nodes missing")
	}
	if strings.Contains(out, `id="hidden"`) {
		t.Error("hidden node drawn")
	}
	if !strings.Contains(out, " Q100.00,0.00 140.00,0.00") {
		t.Error("three-point connector should be a quadratic curve")
	}
}

func TestPathData(t *testing.T) {
	tests := []struct {
		pts  []geom.Point
		want string
	}{
		{[]geom.Point{geom.Pt(0, 0), geom.Pt(10, 5)}, "M0.00,0.00 L10.00,5.00"},
		{[]geom.Point{geom.Pt(0, 0), geom.Pt(5, 0), geom.Pt(10, 5)}, "M0.00,0.00 Q5.00,0.00 10.00,5.00"},
		{[]geom.Point{geom.Pt(0, 0), geom.Pt(5, 0), geom.Pt(5, 5), geom.Pt(10, 5)}, "M0.00,0.00 C5.00,0.00 5.00,5.00 10.00,5.00"},
	}
	for _, tt := range tests {
		if got := PathData(tt.pts); got != tt.want {
			t.Errorf("PathData(%v) = %q, want %q", tt.pts, got, tt.want)
		}
	}
}
