package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imyousuf/CodeSentry/internal/detector"
)

func newDetectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detectors",
		Short: "List the available detectors",
		Long: `List every detector with its description. Detectors that the
configuration leaves out (analysis.detectors) are marked as disabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := detector.New(cfg.Policy())
			if err != nil {
				return fmt.Errorf("build detectors: %w", err)
			}
			enabled := make(map[string]bool)
			for _, name := range cfg.Analysis.Detectors {
				enabled[name] = true
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render("Detectors"))
			fmt.Fprintln(out, headerStyle.Render(strings.Repeat("=", 9)))
			for _, d := range registry.All() {
				name := d.Name()
				if len(enabled) > 0 && !enabled[name] {
					name += " (disabled)"
				}
				fmt.Fprintf(out, "  %s%s\n", labelStyle.Width(32).Render(name), d.Description())
			}
			return nil
		},
	}
}
