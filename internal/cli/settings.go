package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/mindlayout/pkg/config"
)

// Config file locations.
const (
	// globalConfigFile lives under $XDG_CONFIG_HOME/mindlayout.
	globalConfigFile = "config.toml"
	// projectConfigFile lives in the working directory.
	projectConfigFile = ".mindlayout.toml"
	// envPrefix prefixes environment overrides (MINDLAYOUT_STORE, ...).
	envPrefix = "MINDLAYOUT"
)

// Settings is the merged CLI configuration.
type Settings struct {
	// Store is a scene store DSN: a directory, sqlite://, redis:// or mongodb://.
	Store  string              `mapstructure:"store"`
	Cache  CacheSettings       `mapstructure:"cache"`
	Serve  ServeSettings       `mapstructure:"serve"`
	Log    LogSettings         `mapstructure:"log"`
	Shell  ShellSettings       `mapstructure:"shell"`
	Layout config.LayoutConfig `mapstructure:"layout"`
}

// CacheSettings selects the layout/render cache.
type CacheSettings struct {
	Disabled bool   `mapstructure:"disabled"`
	Dir      string `mapstructure:"dir"`
	RedisURL string `mapstructure:"redis_url"`
	// Scope prefixes cache keys so several deployments can share one Redis.
	Scope string `mapstructure:"scope"`
}

// ServeSettings configures the HTTP server.
type ServeSettings struct {
	Addr string `mapstructure:"addr"`
}

// LogSettings configures the rotating log file used by serve and browse.
type LogSettings struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ShellSettings configures the interactive shell.
type ShellSettings struct {
	HistoryFile string `mapstructure:"history_file"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() *Settings {
	s := &Settings{
		Serve:  ServeSettings{Addr: ":8080"},
		Log:    LogSettings{MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28},
		Layout: config.Default(),
	}
	if dir, err := dataDir(); err == nil {
		s.Store = filepath.Join(dir, "scenes")
		s.Shell.HistoryFile = filepath.Join(dir, "history")
	}
	if dir, err := cacheDir(); err == nil {
		s.Cache.Dir = dir
	}
	return s
}

// LoadSettings merges configuration sources into v and decodes the result.
// Precedence (later overrides earlier):
//  1. DefaultSettings()
//  2. $XDG_CONFIG_HOME/mindlayout/config.toml
//  3. ./.mindlayout.toml
//  4. the file named by --config
//  5. MINDLAYOUT_* environment variables
//  6. flags bound to v
//
// Missing implicit config files are ignored.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	defaults, err := structToMap(DefaultSettings())
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(defaults); err != nil {
		return nil, err
	}

	for _, path := range []string{globalConfigPath(), projectConfigFile} {
		if err := mergeConfigFile(v, path); err != nil {
			return nil, err
		}
	}
	if explicit := v.GetString("config"); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, err
		}
		if err := mergeConfigFile(v, explicit); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{"store", "cache.disabled", "cache.dir", "cache.redis_url", "serve.addr", "log.file"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, err
	}
	return s, nil
}

// bindFlags binds the named flags of fs to viper keys.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// mergeConfigFile reads a TOML file and merges it into v.
func mergeConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	fv := viper.New()
	fv.SetConfigType("toml")
	if err := fv.ReadConfig(f); err != nil {
		return err
	}
	return v.MergeConfigMap(fv.AllSettings())
}

// structToMap converts settings to a nested map for viper.MergeConfigMap.
func structToMap(s *Settings) (map[string]any, error) {
	result := make(map[string]any)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  &result,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(s); err != nil {
		return nil, err
	}
	return result, nil
}
