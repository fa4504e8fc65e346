package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindlayout/pkg/boundary"
	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/grouping"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/observability"
	"github.com/matzehuels/mindlayout/pkg/placement"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/textmetrics"
	"github.com/matzehuels/mindlayout/pkg/visibility"
)

// LayoutOptions control a single Layout call.
type LayoutOptions struct {
	// ForceUngroup clears branch grouping in the laid-out map.
	ForceUngroup bool
	// HonorManualOrder sorts siblings by stored order rather than by their
	// current vertical position.
	HonorManualOrder bool
}

// Report summarizes a Layout call.
type Report struct {
	RootID     string
	Placement  placement.Stats
	Stabilize  placement.Stats
	Boundaries int
	Groups     int
	Committed  int
	// Superseded is set when the stabilization pass was skipped because a
	// newer layout of the same root was requested.
	Superseded bool
	Duration   time.Duration
}

// rootState serializes layouts of one map.
type rootState struct {
	mu  sync.Mutex
	gen atomic.Uint64
}

// Engine runs layouts and edits against a host.
//
// Engine is safe for concurrent use. Layouts of the same map run one at a
// time; edits are serialized engine-wide.
type Engine struct {
	Host     scene.Host
	Config   config.LayoutConfig
	Measurer textmetrics.Measurer
	Logger   *log.Logger

	mu     sync.Mutex
	roots  map[string]*rootState
	editMu sync.Mutex
}

// New creates an engine for host.
// If logger is nil, log.Default() is used.
// If m is nil, text is measured with the bundled Go Regular font.
func New(host scene.Host, cfg config.LayoutConfig, m textmetrics.Measurer, logger *log.Logger) *Engine {
	if m == nil {
		m = textmetrics.NewFont()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		Host:     host,
		Config:   cfg,
		Measurer: m,
		Logger:   logger,
		roots:    make(map[string]*rootState),
	}
}

func (e *Engine) state(rootID string) *rootState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.roots[rootID]
	if !ok {
		st = &rootState{}
		e.roots[rootID] = st
	}
	return st
}

// load reads the host scene into a fresh buffer and index.
func (e *Engine) load(ctx context.Context) (*scene.Buffer, *hierarchy.Index, error) {
	objs, err := e.Host.Objects(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "read scene")
	}
	buf := scene.NewBuffer(objs)
	return buf, hierarchy.Build(buf.All()), nil
}

// commit hands the buffer's changes to the host.
func (e *Engine) commit(ctx context.Context, buf *scene.Buffer, mode scene.CommitMode) (int, error) {
	changes := buf.Changes()
	if len(changes) == 0 {
		return 0, nil
	}
	if err := e.Host.Commit(ctx, changes, mode); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "commit scene")
	}
	return len(changes), nil
}

// GetHierarchy returns the depth, level-1 ancestor and root of a node.
func (e *Engine) GetHierarchy(ctx context.Context, id string) (hierarchy.Info, error) {
	_, ix, err := e.load(ctx)
	if err != nil {
		return hierarchy.Info{}, err
	}
	if ix.Node(id) == nil {
		return hierarchy.Info{}, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	return ix.Info(id), nil
}

// Roots returns the IDs of every map root in the scene.
func (e *Engine) Roots(ctx context.Context) ([]string, error) {
	_, ix, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	return ix.Roots(), nil
}

// Layout lays out the map containing id. id may be any node of the map.
func (e *Engine) Layout(ctx context.Context, id string, opts LayoutOptions) (Report, error) {
	start := time.Now()
	_, ix, err := e.load(ctx)
	if err != nil {
		return Report{}, err
	}
	if ix.Node(id) == nil {
		return Report{}, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	rootID := ix.Info(id).RootID
	rep := Report{RootID: rootID}

	st := e.state(rootID)
	gen := st.gen.Add(1)
	st.mu.Lock()
	defer st.mu.Unlock()

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, rootID, len(ix.Subtree(rootID)))
	defer func() {
		hooks.OnLayoutComplete(ctx, rootID, time.Since(start), err)
	}()

	if err = ctx.Err(); err != nil {
		return rep, err
	}
	if err = e.pass(ctx, rootID, opts, 1, &rep, &rep.Placement); err != nil {
		return rep, err
	}

	if st.gen.Load() != gen {
		rep.Superseded = true
		hooks.OnLayoutSuperseded(ctx, rootID)
		e.Logger.Debug("stabilization pass superseded", "root", rootID)
	} else {
		opts.ForceUngroup = false
		opts.HonorManualOrder = true
		if err = e.pass(ctx, rootID, opts, 2, &rep, &rep.Stabilize); err != nil {
			return rep, err
		}
	}

	rep.Duration = time.Since(start)
	e.Logger.Info("laid out map",
		"root", rootID,
		"nodes", rep.Placement.Nodes,
		"moved", rep.Placement.Moved,
		"settle", rep.Stabilize.MaxShift,
		"committed", rep.Committed,
		"duration", rep.Duration)
	return rep, nil
}

// pass runs one placement pass from the host's current state and commits
// it. The first pass commits immediately so the stabilization pass reads
// the applied positions.
func (e *Engine) pass(ctx context.Context, rootID string, opts LayoutOptions, n int, rep *Report, stats *placement.Stats) error {
	buf, ix, err := e.load(ctx)
	if err != nil {
		return err
	}
	root := ix.Node(rootID)
	if root == nil {
		return errors.New(errors.ErrCodeNodeNotFound, "root node %q not found", rootID)
	}
	cfg := e.Config.Resolve(root.Root)
	subtree := ix.Subtree(rootID)

	grouping.Strip(buf, boundary.Members(ix, buf, rootID))
	if opts.ForceUngroup {
		for _, id := range subtree {
			if ix.Node(id).Node.BranchGrouped {
				buf.Edit(id).Node.BranchGrouped = false
			}
		}
	}

	visibility.New(buf, ix, cfg).Refresh(rootID)

	if cfg.AutoLayout {
		*stats, err = placement.Run(buf, ix, cfg, rootID, placement.Options{HonorManualOrder: opts.HonorManualOrder})
		if err != nil {
			return err
		}
	} else {
		e.Logger.Debug("auto-layout disabled, skipping placement", "root", rootID)
	}

	rep.Boundaries = boundary.UpdateAll(buf, ix, cfg, rootID)
	rep.Groups = 0
	for _, id := range subtree {
		if o := buf.Live(id); o.IsNode() && o.Node.BranchGrouped {
			rep.Groups += grouping.ApplyRecursive(buf, ix, id)
		}
	}

	mode := scene.CommitImmediately
	if n > 1 {
		mode = scene.CommitEventually
	}
	committed, err := e.commit(ctx, buf, mode)
	if err != nil {
		return err
	}
	rep.Committed += committed

	observability.Layout().OnPassComplete(ctx, rootID, n, stats.Moved, stats.MaxShift)
	e.Logger.Debug("layout pass",
		"root", rootID,
		"pass", n,
		"moved", stats.Moved,
		"max_shift", stats.MaxShift,
		"boundaries", rep.Boundaries,
		"groups", rep.Groups,
		"changes", committed)
	return nil
}
