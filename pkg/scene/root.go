package scene

import (
	"fmt"

	"github.com/matzehuels/mindlayout/pkg/errors"
)

// GrowthMode selects how level-1 branches are distributed around the root.
type GrowthMode string

const (
	GrowthRadial    GrowthMode = "radial"
	GrowthRight     GrowthMode = "right"
	GrowthLeft      GrowthMode = "left"
	GrowthLeftRight GrowthMode = "left-right"
	// GrowthManual leaves level-1 nodes where the user put them and only lays
	// out their subtrees.
	GrowthManual GrowthMode = "manual"
)

// ValidGrowthModes lists every accepted growth mode.
var ValidGrowthModes = []GrowthMode{GrowthRadial, GrowthRight, GrowthLeft, GrowthLeftRight, GrowthManual}

// ParseGrowthMode validates a growth mode name.
func ParseGrowthMode(s string) (GrowthMode, error) {
	for _, m := range ValidGrowthModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidGrowthMode, "unknown growth mode %q (want one of %v)", s, ValidGrowthModes)
}

// Directional reports whether the mode distributes level-1 nodes on a
// vertical fan rather than an ellipse.
func (m GrowthMode) Directional() bool {
	return m == GrowthRight || m == GrowthLeft || m == GrowthLeftRight
}

// ArrowStyle selects the connector path shape.
type ArrowStyle string

const (
	ArrowCurved   ArrowStyle = "curved"
	ArrowStraight ArrowStyle = "straight"
)

// RootConfig is the set of map-wide preferences stored on a root node.
// Zero values mean "use the engine default".
type RootConfig struct {
	GrowthMode         GrowthMode `json:"growthMode,omitempty" bson:"growthMode,omitempty"`
	ArrowStyle         ArrowStyle `json:"arrowStyle,omitempty" bson:"arrowStyle,omitempty"`
	WrapWidth          float64    `json:"wrapWidth,omitempty" bson:"wrapWidth,omitempty"`
	CenterText         bool       `json:"centerText,omitempty" bson:"centerText,omitempty"`
	AutoLayoutDisabled bool       `json:"autoLayoutDisabled,omitempty" bson:"autoLayoutDisabled,omitempty"`
}

// String implements fmt.Stringer for log output.
func (r *RootConfig) String() string {
	if r == nil {
		return "<defaults>"
	}
	return fmt.Sprintf("mode=%s arrows=%s wrap=%.0f", r.GrowthMode, r.ArrowStyle, r.WrapWidth)
}
