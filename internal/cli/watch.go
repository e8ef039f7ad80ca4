package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galvinograd/purple-titanium/internal/watch"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the cache root and config file, revalidating cache integrity on change",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := buildLogger(flags)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			cfg, err := resolvedConfig(flags)
			if err != nil {
				return err
			}
			s, closeFn, err := openStore(cfg, flags.workspaceRoot)
			if err != nil {
				return err
			}
			defer closeFn()

			cacheRoot := cfg.CacheRoot
			if !filepath.IsAbs(cacheRoot) {
				cacheRoot = filepath.Join(flags.workspaceRoot, cacheRoot)
			}
			configDir := filepath.Join(flags.workspaceRoot, ".titanium")
			if err := os.MkdirAll(cacheRoot, 0o755); err != nil {
				return err
			}
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				return err
			}

			rebuild := func(ctx context.Context, changed []string) error {
				sigs, err := s.Signatures(ctx)
				if err != nil {
					return err
				}
				valid := 0
				for _, sig := range sigs {
					if _, err := s.Load(ctx, sig); err != nil {
						log.Warn("cache entry invalidated on revalidation", zap.String("signature", sig), zap.Error(err))
						_ = s.Invalidate(ctx, sig)
						continue
					}
					valid++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revalidated cache: %d ok, %d entries total\n", valid, len(sigs))
				return nil
			}

			w, err := watch.New(log, []string{cacheRoot, configDir}, 0, rebuild)
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
}
