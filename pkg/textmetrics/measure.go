// Package textmetrics measures and wraps node labels.
//
// The layout engine never renders text, but it needs to know how large a
// label will be so it can size new nodes and honor a root's wrap width.
// [Font] measures with the embedded Go Regular typeface; [Fixed] is a
// deterministic approximation for tests and headless hosts.
package textmetrics

import (
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Measurer reports the advance width of a single line of text.
type Measurer interface {
	Width(text string, size float64) float64
}

// Size is the outer extent of a wrapped label.
type Size struct {
	Width  float64
	Height float64
	Lines  []string
}

// Font measures text with Go Regular at 72 DPI. Faces are created lazily
// per font size and reused.
type Font struct {
	once  sync.Once
	fnt   *opentype.Font
	err   error
	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFont returns a measurer backed by the embedded Go Regular font.
func NewFont() *Font {
	return &Font{faces: make(map[float64]font.Face)}
}

func (f *Font) face(size float64) font.Face {
	f.once.Do(func() { f.fnt, f.err = opentype.Parse(goregular.TTF) })
	if f.err != nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[size]; ok {
		return face
	}
	face, err := opentype.NewFace(f.fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil
	}
	f.faces[size] = face
	return face
}

// Width implements Measurer. It falls back to the fixed approximation if the
// embedded font cannot be loaded.
func (f *Font) Width(text string, size float64) float64 {
	face := f.face(size)
	if face == nil {
		return Fixed{}.Width(text, size)
	}
	f.mu.Lock()
	adv := font.MeasureString(face, text)
	f.mu.Unlock()
	return float64(adv) / 64
}

// Fixed approximates every glyph as a fixed fraction of the font size.
type Fixed struct {
	// Ratio is glyph advance / font size; zero means 0.6.
	Ratio float64
}

// Width implements Measurer.
func (m Fixed) Width(text string, size float64) float64 {
	r := m.Ratio
	if r == 0 {
		r = 0.6
	}
	return float64(len([]rune(text))) * size * r
}

// Wrap breaks text into lines no wider than maxWidth, splitting on spaces.
// A single word longer than maxWidth gets its own line. Explicit newlines are
// kept. A non-positive maxWidth disables wrapping.
func Wrap(m Measurer, text string, size, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if maxWidth <= 0 {
			lines = append(lines, para)
			continue
		}
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			candidate := cur + " " + w
			if m.Width(candidate, size) > maxWidth {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur = candidate
		}
		lines = append(lines, cur)
	}
	return lines
}

// Measure wraps text and returns the padded label extent.
func Measure(m Measurer, text string, size, maxWidth, lineHeight, padding float64) Size {
	lines := Wrap(m, text, size, maxWidth)
	var w float64
	for _, l := range lines {
		w = math.Max(w, m.Width(l, size))
	}
	h := float64(len(lines)) * size * lineHeight
	return Size{
		Width:  math.Ceil(w + 2*padding),
		Height: math.Ceil(h + 2*padding),
		Lines:  lines,
	}
}
