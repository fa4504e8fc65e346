package textmetrics

import (
	"slices"
	"testing"
)

func TestFixedWidth(t *testing.T) {
	if got := (Fixed{}).Width("abcd", 10); got != 24 {
		t.Errorf("Width = %v, want 24", got)
	}
	if got := (Fixed{Ratio: 1}).Width("héllo", 10); got != 50 {
		t.Errorf("Width = %v, want 50 (runes, not bytes)", got)
	}
}

func TestWrap(t *testing.T) {
	m := Fixed{Ratio: 1}
	tests := []struct {
		name string
		text string
		max  float64
		want []string
	}{
		{"no wrap", "alpha beta gamma", 0, []string{"alpha beta gamma"}},
		{"fits", "alpha beta", 100, []string{"alpha beta"}},
		{"breaks", "alpha beta gamma", 10, []string{"alpha beta", "gamma"}},
		{"long word", "incomprehensibilities a", 5, []string{"incomprehensibilities", "a"}},
		{"newlines kept", "a\nb", 100, []string{"a", "b"}},
		{"empty", "", 100, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(m, tt.text, 1, tt.max)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Wrap(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMeasure(t *testing.T) {
	s := Measure(Fixed{Ratio: 1}, "ab cd", 10, 30, 1.5, 2)
	if len(s.Lines) != 2 {
		t.Fatalf("Lines = %q, want 2 lines", s.Lines)
	}
	if s.Width != 24 || s.Height != 34 {
		t.Errorf("Size = %vx%v, want 24x34", s.Width, s.Height)
	}
}

func TestFontWidthGrowsWithText(t *testing.T) {
	f := NewFont()
	short := f.Width("mind", 16)
	long := f.Width("mind map layout", 16)
	if short <= 0 || long <= short {
		t.Errorf("Width(short)=%v Width(long)=%v, want 0 < short < long", short, long)
	}
	if big := f.Width("mind", 32); big <= short {
		t.Errorf("Width at 32pt = %v, want > %v", big, short)
	}
}
