package geom

// Side is the horizontal direction a branch grows in.
type Side int

const (
	Right Side = iota
	Left
)

// Sign is +1 for Right and -1 for Left.
func (s Side) Sign() float64 {
	if s == Left {
		return -1
	}
	return 1
}

// Opposite returns the mirrored side.
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// LeadingEdge returns the x of the box edge facing the parent: the left edge
// when growing right, the right edge when growing left.
func (b Box) LeadingEdge(s Side) float64 {
	if s == Left {
		return b.Right()
	}
	return b.Left()
}

// TrailingEdge returns the x of the box edge facing away from the parent.
func (b Box) TrailingEdge(s Side) float64 {
	if s == Left {
		return b.Left()
	}
	return b.Right()
}
