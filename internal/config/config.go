// Package config loads Purple Titanium's workspace configuration from
// <root>/.titanium/config.toml, the same "optional, strict, single
// location" discipline the teacher uses for its own project-local config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the workspace-level configuration consulted when building a
// Scheduler from the CLI: where persisted results live, which backend
// stores them, and the default run mode.
type Config struct {
	CacheRoot          string `toml:"cache_root"`
	CacheBackend       string `toml:"cache_backend"` // "fs" (default) or "bolt"
	PersistenceEnabled bool   `toml:"persistence_enabled"`
	FailFast           bool   `toml:"fail_fast"`
	Concurrency        int    `toml:"concurrency"`
}

// ErrInvalidConfig wraps every rejection Parse and LoadOptional produce:
// unknown fields, an unsupported cache_backend, or a malformed file.
var ErrInvalidConfig = errors.New("invalid workspace config")

// Defaults returns the configuration a workspace with no config file gets.
func Defaults() Config {
	return Config{
		CacheRoot:          ".titanium/cache",
		CacheBackend:       "fs",
		PersistenceEnabled: true,
		FailFast:           false,
		Concurrency:        1,
	}
}

// Parse strictly decodes TOML workspace config: any key this struct
// doesn't declare is rejected rather than silently ignored, matching the
// teacher's unknown-field-is-an-error discipline.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: parse toml: %v", ErrInvalidConfig, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown field(s) %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if cfg.CacheBackend != "fs" && cfg.CacheBackend != "bolt" {
		return Config{}, fmt.Errorf("%w: cache_backend must be \"fs\" or \"bolt\", got %q", ErrInvalidConfig, cfg.CacheBackend)
	}
	if cfg.Concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be >= 1", ErrInvalidConfig)
	}
	return cfg, nil
}

// LoadOptional loads <root>/.titanium/config.toml. A missing file is not
// an error: it returns the defaults and found=false so callers can tell
// "no config" from "config present and equal to the defaults".
func LoadOptional(root string) (cfg Config, found bool, err error) {
	if strings.TrimSpace(root) == "" {
		return Config{}, false, fmt.Errorf("%w: workspace root is required", ErrInvalidConfig)
	}

	path := filepath.Join(root, ".titanium", "config.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), false, nil
		}
		return Config{}, false, fmt.Errorf("read config: %w", err)
	}

	cfg, err = Parse(data)
	if err != nil {
		return Config{}, true, err
	}
	return applyEnv(cfg), true, nil
}

// applyEnv layers the documented environment overrides atop a loaded
// config: TITANIUM_CACHE_ROOT relocates the store, and
// TITANIUM_PERSISTENCE_DISABLE=1 force-disables cross-run persistence
// without editing the checked-in config file (useful in CI).
func applyEnv(cfg Config) Config {
	if root := os.Getenv("TITANIUM_CACHE_ROOT"); root != "" {
		cfg.CacheRoot = root
	}
	if os.Getenv("TITANIUM_PERSISTENCE_DISABLE") == "1" {
		cfg.PersistenceEnabled = false
	}
	return cfg
}
