package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imyousuf/CodeSentry/internal/metrics"
	"github.com/imyousuf/CodeSentry/internal/source"
)

func newMetricsCmd() *cobra.Command {
	var masked bool

	cmd := &cobra.Command{
		Use:   "metrics <file>",
		Short: "Show code metrics",
		Long:  `Show line counts, function and variable counts and the cyclomatic complexity estimate for a C file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]

			content, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			t := source.New(filePath, content)
			if masked {
				if t, err = source.NewMasked(filePath, content); err != nil {
					return fmt.Errorf("mask literals: %w", err)
				}
			}
			result := metrics.NewCompositeCalculator().Calculate(t)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Metrics for %s\n", filePath)
			fmt.Fprintf(out, "%s\n\n", strings.Repeat("=", 40))

			// Sort metric names for stable output.
			keys := make([]string, 0, len(result))
			for k := range result {
				keys = append(keys, string(k))
			}
			sort.Strings(keys)

			for _, k := range keys {
				fmt.Fprintf(out, "  %-25s %d\n", k, result[metrics.MetricType(k)])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&masked, "mask-literals", false, "ignore comments and string literals when estimating complexity")
	return cmd
}
