// Package cli implements the mindlayout command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/mindlayout/pkg/buildinfo"
	"github.com/matzehuels/mindlayout/pkg/cache"
	"github.com/matzehuels/mindlayout/pkg/pipeline"
	"github.com/matzehuels/mindlayout/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mindlayout"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	v        *viper.Viper
	settings *Settings
	logFile  io.Closer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		v:        viper.New(),
		settings: DefaultSettings(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Settings returns the merged configuration of the current invocation.
func (c *CLI) Settings() *Settings { return c.settings }

// Close releases the log file, if one was opened.
func (c *CLI) Close() error {
	if c.logFile != nil {
		return c.logFile.Close()
	}
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Mindlayout arranges mind maps automatically",
		Long:         `Mindlayout is a layout engine for mind maps. It places the branches of a map around its root, keeps folds, boundaries and groups consistent, and renders the result to SVG, PNG, PDF or DOT.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadSettings(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (TOML)")
	pf.String("store", "", "scene store: directory, sqlite://, redis:// or mongodb:// URL")
	pf.String("log-file", "", "write logs to a rotating file instead of stderr")
	pf.Bool("no-cache", false, "disable the layout and render cache")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.scenesCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.renderCommand())
	for _, cmd := range c.editCommands() {
		root.AddCommand(cmd)
	}
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.shellCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	c.registerSceneCompletion(root)
	return root
}

// loadSettings merges config files, environment and flags.
func (c *CLI) loadSettings(cmd *cobra.Command) error {
	if err := bindFlags(c.v, cmd.Flags(), map[string]string{
		"config":   "config",
		"store":    "store",
		"log-file": "log.file",
		"no-cache": "cache.disabled",
		"addr":     "serve.addr",
	}); err != nil {
		return err
	}
	s, err := LoadSettings(c.v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := s.Layout.Validate(); err != nil {
		return err
	}
	c.settings = s

	if s.Log.File != "" {
		c.logFile = redirectLogger(c.Logger, s.Log)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the configured store and cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	st, err := store.Open(ctx, c.settings.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	ch, err := c.newCache(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	var keyer cache.Keyer
	if scope := c.settings.Cache.Scope; scope != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), scope)
	}
	r := pipeline.NewRunner(st, ch, keyer, c.Logger)
	r.Config = c.settings.Layout
	return r, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	s := c.settings.Cache
	switch {
	case s.Disabled:
		return cache.NewNullCache(), nil
	case s.RedisURL != "":
		return cache.NewRedisCache(ctx, s.RedisURL, appName)
	case s.Dir == "":
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(s.Dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", s.Dir, "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mindlayout/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// configDir returns the config directory (~/.config/mindlayout/).
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// dataDir returns the data directory (~/.local/share/mindlayout/).
func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// globalConfigPath returns the global config file path.
func globalConfigPath() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, globalConfigFile)
}
