package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStoreCmd(flags *rootFlags) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and maintain the persistence cache",
	}
	storeCmd.AddCommand(newStoreStatsCmd(flags))
	storeCmd.AddCommand(newStoreGCCmd(flags))
	return storeCmd
}

func newStoreStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "List every persisted signature, sorted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolvedConfig(flags)
			if err != nil {
				return err
			}
			s, closeFn, err := openStore(cfg, flags.workspaceRoot)
			if err != nil {
				return err
			}
			defer closeFn()

			sigs, err := s.Signatures(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(sigs)
			fmt.Fprintf(cmd.OutOrStdout(), "%d cached entries\n", len(sigs))
			for _, sig := range sigs {
				fmt.Fprintln(cmd.OutOrStdout(), sig)
			}
			return nil
		},
	}
}

func newStoreGCCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Invalidate every persisted entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolvedConfig(flags)
			if err != nil {
				return err
			}
			s, closeFn, err := openStore(cfg, flags.workspaceRoot)
			if err != nil {
				return err
			}
			defer closeFn()

			sigs, err := s.Signatures(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(sigs)
			for _, sig := range sigs {
				if err := s.Invalidate(cmd.Context(), sig); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "invalidated %d entries\n", len(sigs))
			return nil
		},
	}
}
