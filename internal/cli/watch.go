package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/imyousuf/CodeSentry/internal/analysis"
	"github.com/imyousuf/CodeSentry/internal/discovery"
	"github.com/imyousuf/CodeSentry/internal/report"
	"github.com/imyousuf/CodeSentry/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		only    []string
		initial bool
	)

	cmd := &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Re-analyze C files as they change",
		Long: `Watch one or more directories (default: the current directory) and print
the findings and metrics of every C file that is created or modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openSession(cfg, sessionOptions{only: only})
			if err != nil {
				return err
			}
			defer s.Close()

			w, err := watcher.New(watcher.Config{
				Paths:      paths,
				Extensions: cfg.Discovery.Extensions,
				Exclude:    cfg.Discovery.Exclude,
				Logger:     s.log,
			})
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lw := &liveAnalyzer{
				runner: s.runner(),
				out:    cmd.OutOrStdout(),
				color:  cfg.Report.Color,
				log:    s.log,
			}

			if initial {
				for _, root := range paths {
					files, err := discovery.Discover(ctx, root, s.discoveryOptions())
					if err != nil {
						return err
					}
					for _, f := range files {
						lw.analyze(ctx, f)
					}
				}
			}

			events, err := w.Start(ctx)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d paths...\n", len(paths))
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}

			lw.run(ctx, events)
			if ctx.Err() != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nFinal stats:\n")
			fmt.Fprintf(cmd.OutOrStdout(), "  Files analyzed: %d\n", lw.analyzed)
			if lw.failed > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  Errors:         %d\n", lw.failed)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "run only these detectors (comma separated)")
	cmd.Flags().BoolVar(&initial, "initial", false, "analyze every file once before watching")

	return cmd
}

// liveAnalyzer turns watcher events into per-file reports.
type liveAnalyzer struct {
	runner   *analysis.Runner
	out      io.Writer
	color    bool
	log      hclog.Logger
	analyzed int
	failed   int
}

func (l *liveAnalyzer) run(ctx context.Context, events <-chan watcher.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			l.handleEvent(ctx, evt)
		}
	}
}

func (l *liveAnalyzer) handleEvent(ctx context.Context, evt watcher.Event) {
	l.log.Debug("file event", "op", evt.Op, "path", evt.Path)
	switch evt.Op {
	case watcher.Create, watcher.Write:
		l.analyze(ctx, evt.Path)
	case watcher.Remove, watcher.Rename:
		fmt.Fprintf(l.out, "\n%s removed\n", evt.Path)
	}
}

func (l *liveAnalyzer) analyze(ctx context.Context, path string) {
	res, err := l.runner.AnalyzeFile(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		l.failed++
		l.log.Warn("cannot analyze file", "file", path, "error", err)
		return
	}
	l.analyzed++
	report.WriteFileText(l.out, res, l.color)
}
