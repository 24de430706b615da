package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imyousuf/CodeSentry/internal/discovery"
	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/gitutil"
	"github.com/imyousuf/CodeSentry/internal/report"
)

// ErrThresholdReached is returned when --fail-on matched a finding.
var ErrThresholdReached = errors.New("findings at or above the failure threshold")

type analyzeOptions struct {
	format  string
	only    []string
	failOn  string
	changed bool
	noCache bool
	output  string
}

func addAnalyzeFlags(cmd *cobra.Command, opts *analyzeOptions) {
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "report format: "+report.FormatNames()+" (default from config)")
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "run only these detectors (comma separated)")
	cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "exit non-zero when a finding reaches this severity (INFO, WARNING, ERROR)")
	cmd.Flags().BoolVar(&opts.changed, "changed", false, "only analyze files changed on the current git branch")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "ignore the result cache")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to this file instead of stdout")
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Analyze the C files under a directory",
		Long: `Analyze every C source and header file under dir (default: the current
directory), or a single file, and print findings, per-file metrics and a
project summary.

Files that cannot be read are reported as errors; the remaining files are
still analyzed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}
	addAnalyzeFlags(cmd, opts)
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *analyzeOptions) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format := cfg.Report.Format
	if opts.format != "" {
		format = opts.format
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	failOn := cfg.Report.FailOn
	if opts.failOn != "" {
		failOn = opts.failOn
	}
	var threshold finding.Severity
	if failOn != "" {
		if threshold, err = finding.ParseSeverity(failOn); err != nil {
			return fmt.Errorf("--fail-on: %w", err)
		}
	}

	s, err := openSession(cfg, sessionOptions{only: opts.only, noCache: opts.noCache})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := discovery.Discover(ctx, root, s.discoveryOptions())
	if err != nil {
		return err
	}
	if opts.changed {
		if files, err = onlyChanged(root, files); err != nil {
			return err
		}
		s.log.Debug("limited to changed files", "count", len(files))
	}

	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintf(out, "No C files found in %s\n", root)
		return nil
	}

	pr, err := s.runner().AnalyzeProject(ctx, files)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("analysis interrupted")
		}
		return err
	}
	pr.Root, _ = filepath.Abs(root)

	var w io.Writer = out
	if opts.output != "" {
		file, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer file.Close()
		w = file
	}
	ropts := report.Options{
		Format: f,
		Color:  cfg.Report.Color && opts.output == "",
		Rules:  s.rules(),
	}
	if err := report.Write(w, pr, ropts); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if opts.output != "" {
		fmt.Fprintf(out, "Report written to %s\n", opts.output)
	}

	if failOn != "" && finding.AtLeast(pr.Findings(), threshold) {
		return fmt.Errorf("%w (%s)", ErrThresholdReached, threshold)
	}
	return nil
}

// onlyChanged keeps the files that git reports as changed in the repository
// containing root.
func onlyChanged(root string, files []string) ([]string, error) {
	dir := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		dir = filepath.Dir(root)
	}
	changed, err := gitutil.ChangedPaths(dir)
	if err != nil {
		return nil, fmt.Errorf("--changed: %w", err)
	}
	return intersectPaths(files, changed), nil
}

// intersectPaths returns the entries of files that resolve to one of the
// absolute paths in set, keeping the order of files.
func intersectPaths(files, set []string) []string {
	want := make(map[string]bool, len(set))
	for _, p := range set {
		want[resolvePath(p)] = true
	}
	var out []string
	for _, f := range files {
		if want[resolvePath(f)] {
			out = append(out, f)
		}
	}
	return out
}

func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
