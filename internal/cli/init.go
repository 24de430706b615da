package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imyousuf/CodeSentry/internal/config"
	"github.com/imyousuf/CodeSentry/internal/discovery"
)

func newInitCmd() *cobra.Command {
	var (
		interactive bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a " + config.DefaultFileName + " config file",
		Long: `Initialize CodeSentry in the current directory.

Writes ` + config.DefaultFileName + ` with the built-in thresholds, detector lists and
report settings. Use --interactive to choose them in a wizard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			return runInit(cmd, cwd, interactive, force)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "choose settings in an interactive wizard")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func runInit(cmd *cobra.Command, dir string, interactive, force bool) error {
	configPath := filepath.Join(dir, config.DefaultFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists; use --force to overwrite it", configPath)
	}

	out := cmd.OutOrStdout()
	cfg := config.Default()
	if interactive {
		ok, err := runWizard(cfg, "Create")
		if err != nil {
			return fmt.Errorf("interactive init: %w", err)
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := config.WriteConfig(cfg, configPath); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	fmt.Fprintf(out, "Created %s\n", configPath)

	files, err := discovery.Discover(context.Background(), dir, discovery.Options{
		Extensions: cfg.Discovery.Extensions,
		Exclude:    cfg.Discovery.Exclude,
	})
	if err == nil {
		fmt.Fprintf(out, "Found %d C files under %s\n", len(files), dir)
	}

	// Print next steps.
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  1. Review %s and adjust thresholds\n", config.DefaultFileName)
	if cfg.Cache.Enabled {
		fmt.Fprintf(out, "  2. Add %s to .gitignore\n", cfg.Cache.Dir)
	} else {
		fmt.Fprintln(out, "  2. Run 'codesentry detectors' to see what will be checked")
	}
	fmt.Fprintln(out, "  3. Run 'codesentry analyze' to analyze the code base")
	fmt.Fprintln(out, "  4. Run 'codesentry hook install' to check changed files before each commit")
	return nil
}
