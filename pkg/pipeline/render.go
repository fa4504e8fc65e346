package pipeline

import (
	"github.com/matzehuels/mindlayout/pkg/render"
	"github.com/matzehuels/mindlayout/pkg/render/dot"
	"github.com/matzehuels/mindlayout/pkg/render/svg"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// RenderScene renders objs in the requested format.
func RenderScene(objs []*scene.Object, opts RenderOptions) ([]byte, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Format == render.FormatDOT {
		return []byte(dot.FromScene(objs, dot.Options{CrossLinks: true})), nil
	}

	image, err := renderSVG(objs, opts)
	if err != nil {
		return nil, err
	}
	switch opts.Format {
	case render.FormatPNG:
		return render.ToPNG(image, opts.Scale)
	case render.FormatPDF:
		return render.ToPDF(image)
	default:
		return image, nil
	}
}

func renderSVG(objs []*scene.Object, opts RenderOptions) ([]byte, error) {
	if opts.Graphviz {
		return dot.RenderSVG(dot.FromScene(objs, dot.Options{CrossLinks: true}))
	}
	return svg.Render(objs, svg.Options{Background: "white"}), nil
}
