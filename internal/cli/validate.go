package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/galvinograd/purple-titanium/internal/config"
)

func newValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the workspace configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.EnsureWorkspace(flags.workspaceRoot); err != nil {
				return err
			}
			cfg, found, err := config.LoadOptional(flags.workspaceRoot)
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintln(cmd.OutOrStdout(), "no .titanium/config.toml found; defaults apply")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config valid: cache_root=%s cache_backend=%s persistence_enabled=%v fail_fast=%v concurrency=%d\n",
				cfg.CacheRoot, cfg.CacheBackend, cfg.PersistenceEnabled, cfg.FailFast, cfg.Concurrency)
			return nil
		},
	}
}
