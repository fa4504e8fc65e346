package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
	FormatDOT = "dot"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT}

// ToPDF converts SVG to PDF.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, "-f", "pdf")
}

// ToPNG converts SVG to PNG at the given scale.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return rsvgConvert(svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', 2, 64))
}

func rsvgConvert(svg []byte, args ...string) ([]byte, error) {
	path, err := exec.LookPath("rsvg-convert")
	if err != nil {
		return nil, fmt.Errorf("rsvg-convert not found (install librsvg): %w", err)
	}
	cmd := exec.Command(path, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %w: %s", err, stderr.String())
	}
	return out.Bytes(), nil
}
