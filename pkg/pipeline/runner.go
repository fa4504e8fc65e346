package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindlayout/pkg/cache"
	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/engine"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/host"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/store"
	"github.com/matzehuels/mindlayout/pkg/textmetrics"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators; it doesn't keep
// scenes between calls. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Store    store.Store
	Cache    cache.Cache
	Keyer    cache.Keyer
	Config   config.LayoutConfig
	Measurer textmetrics.Measurer
	Logger   *log.Logger
}

// NewRunner creates a runner over a scene store.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// The layout configuration starts as config.Default().
func NewRunner(s store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:    s,
		Cache:    c,
		Keyer:    keyer,
		Config:   config.Default(),
		Measurer: textmetrics.NewFont(),
		Logger:   logger,
	}
}

// Engine returns an engine over h sharing the runner's configuration.
func (r *Runner) Engine(h scene.Host) *engine.Engine {
	return engine.New(h, r.Config, r.Measurer, r.Logger)
}

// Host returns a store-backed host for a scene.
func (r *Runner) Host(name string) *host.StoreHost {
	return host.NewStoreHost(r.Store, name)
}

// Load reads a scene from the store.
func (r *Runner) Load(ctx context.Context, name string) ([]*scene.Object, error) {
	objs, err := r.Host(name).Objects(ctx)
	if err != nil {
		return nil, err
	}
	return objs, nil
}

// Layout lays out a stored scene, saves it and returns the result.
func (r *Runner) Layout(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	result := &Result{}

	loadStart := time.Now()
	h := r.Host(opts.Scene)
	objs, err := h.Objects(ctx)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)

	targets := roots(objs, opts.RootID)
	if len(targets) == 0 {
		if opts.RootID != "" {
			return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not found in scene %q", opts.RootID, opts.Scene)
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "scene %q contains no mind map", opts.Scene)
	}
	result.Stats.Roots = len(targets)

	if result.SceneHash, err = SceneHash(objs); err != nil {
		return nil, fmt.Errorf("hash scene: %w", err)
	}
	configHash, err := ConfigHash(r.Config)
	if err != nil {
		return nil, err
	}
	cacheKey := r.Keyer.LayoutKey(result.SceneHash, opts.keyOpts(targets, configHash))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := scene.UnmarshalObjects(data); err == nil {
				if err := r.Store.Save(ctx, opts.Scene, cached); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInternal, err, "save scene %q", opts.Scene)
				}
				result.Objects = cached
				result.CacheHit = true
				result.Stats.Objects = len(cached)
				r.Logger.Info("layout from cache", "scene", opts.Scene, "roots", len(targets))
				return result, nil
			}
		}
	}

	layoutStart := time.Now()
	eng := r.Engine(h)
	for _, root := range targets {
		rep, err := eng.Layout(ctx, root, opts.layoutOptions())
		if err != nil {
			return nil, fmt.Errorf("layout %s: %w", root, err)
		}
		result.Reports = append(result.Reports, rep)
	}
	if err := h.Flush(ctx); err != nil {
		return nil, err
	}
	result.Stats.LayoutTime = time.Since(layoutStart)

	if result.Objects, err = h.Objects(ctx); err != nil {
		return nil, err
	}
	result.Stats.Objects = len(result.Objects)

	if data, err := scene.MarshalObjects(result.Objects); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	r.Logger.Info("laid out scene",
		"scene", opts.Scene,
		"roots", len(targets),
		"objects", result.Stats.Objects,
		"duration", result.Stats.LayoutTime)
	return result, nil
}

// Render renders a stored scene and reports whether it came from the cache.
func (r *Runner) Render(ctx context.Context, name string, opts RenderOptions) ([]byte, bool, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	objs, err := r.Load(ctx, name)
	if err != nil {
		return nil, false, err
	}
	hash, err := SceneHash(objs)
	if err != nil {
		return nil, false, fmt.Errorf("hash scene: %w", err)
	}
	cacheKey := r.Keyer.RenderKey(hash, cache.RenderKeyOpts{Format: opts.Format, Engine: opts.renderer()})

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		return data, true, nil
	}

	start := time.Now()
	data, err := RenderScene(objs, opts)
	if err != nil {
		return nil, false, err
	}
	_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLRender)

	r.Logger.Debug("rendered scene",
		"scene", name,
		"format", opts.Format,
		"bytes", len(data),
		"duration", time.Since(start))
	return data, false, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
