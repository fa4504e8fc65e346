package scene

import "context"

// CommitMode hints how soon the host must apply a commit.
type CommitMode int

const (
	// CommitImmediately requires the host to apply the objects before Commit
	// returns, so positions can be re-read for a stabilization pass.
	CommitImmediately CommitMode = iota
	// CommitEventually allows the host to batch or defer the write.
	CommitEventually
)

// String implements fmt.Stringer.
func (m CommitMode) String() string {
	if m == CommitEventually {
		return "eventually"
	}
	return "immediately"
}

// Host is the drawing canvas the engine operates on.
type Host interface {
	// Objects returns every object currently in the scene.
	Objects(ctx context.Context) ([]*Object, error)

	// Commit applies changed (or newly created) objects to the scene.
	// Objects with Deleted set are removed.
	Commit(ctx context.Context, changed []*Object, mode CommitMode) error

	// Selection returns the IDs of the selected objects.
	Selection(ctx context.Context) ([]string, error)

	// SetSelection replaces the selection.
	SetSelection(ctx context.Context, ids []string) error
}
