// Package cli assembles Purple Titanium's cobra command surface: workspace
// config resolution, persistence store introspection (stats/gc), and the
// cache-revalidation watch loop. Tasks themselves are declared in-process
// via package titanium, so this surface never "runs a graph file" the way
// the teacher's CLI does — it operates on the workspace's persisted cache
// and configuration instead.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galvinograd/purple-titanium/internal/config"
	"github.com/galvinograd/purple-titanium/internal/logging"
	"github.com/galvinograd/purple-titanium/internal/store"
)

type rootFlags struct {
	workspaceRoot string
	cacheRoot     string
	cacheBackend  string
	dev           bool
}

// Root builds the titanium cobra command tree.
func Root() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "titanium",
		Short:         "Purple Titanium task-graph engine workspace tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.workspaceRoot, "workspace-root", ".", "Workspace root containing .titanium/config.toml")
	root.PersistentFlags().StringVar(&flags.cacheRoot, "cache-root", "", "Override the persistence cache root (defaults to config)")
	root.PersistentFlags().StringVar(&flags.cacheBackend, "cache-backend", "", "Override the persistence backend: fs|bolt")
	root.PersistentFlags().BoolVar(&flags.dev, "dev", false, "Use human-readable console logging")

	root.AddCommand(newValidateCmd(flags))
	root.AddCommand(newStoreCmd(flags))
	root.AddCommand(newWatchCmd(flags))
	return root
}

// resolvedConfig layers CLI flag overrides atop the loaded workspace
// config, the same precedence order LoadOptional already applies to
// environment variables.
func resolvedConfig(flags *rootFlags) (config.Config, error) {
	if _, err := config.EnsureWorkspace(flags.workspaceRoot); err != nil {
		return config.Config{}, err
	}
	cfg, _, err := config.LoadOptional(flags.workspaceRoot)
	if err != nil {
		return config.Config{}, err
	}
	if flags.cacheRoot != "" {
		cfg.CacheRoot = flags.cacheRoot
	}
	if flags.cacheBackend != "" {
		cfg.CacheBackend = flags.cacheBackend
	}
	return cfg, nil
}

func openStore(cfg config.Config, workspaceRoot string) (store.Store, func() error, error) {
	root := cfg.CacheRoot
	if !filepath.IsAbs(root) {
		root = filepath.Join(workspaceRoot, root)
	}

	switch cfg.CacheBackend {
	case "", "fs":
		return store.NewFSStore(root), func() error { return nil }, nil
	case "bolt":
		path := filepath.Join(root, "titanium.bolt")
		db, err := store.OpenBoltStore(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unsupported cache_backend %q", config.ErrInvalidConfig, cfg.CacheBackend)
	}
}

func buildLogger(flags *rootFlags) (*zap.Logger, error) {
	return logging.New(logging.Options{Dev: flags.dev})
}
