package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imyousuf/CodeSentry/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(newCacheStatusCmd())
	cmd.AddCommand(newCacheCleanCmd())

	return cmd
}

func newCacheStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how many results are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := cache.Open(cfg.Cache.Dir, newLogger(cfg))
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Len()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printKV(out, "Directory", cfg.Cache.Dir)
			printKV(out, "Enabled", boolYesNo(cfg.Cache.Enabled))
			printKV(out, "Results", fmt.Sprint(n))
			return nil
		},
	}
}

func newCacheCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete every cached result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := cache.Open(cfg.Cache.Dir, newLogger(cfg))
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Purge()
			if err != nil {
				return fmt.Errorf("clean cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached results from %s\n", n, cfg.Cache.Dir)
			return nil
		},
	}
}
