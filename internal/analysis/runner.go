// Package analysis orchestrates detectors, metrics and external tools over
// single files and whole projects.
package analysis

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/imyousuf/CodeSentry/internal/cache"
	"github.com/imyousuf/CodeSentry/internal/detector"
	"github.com/imyousuf/CodeSentry/internal/external"
	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/metrics"
	"github.com/imyousuf/CodeSentry/internal/source"
)

// InputRule marks findings about files that could not be analyzed.
const InputRule = "input"

// DefaultTopFiles is the ranking size used when Config.TopFiles is zero.
const DefaultTopFiles = 5

// Cache stores file results between runs.
type Cache interface {
	Get(ctx context.Context, key string, v any) (bool, error)
	Put(ctx context.Context, key string, v any) error
}

// Config holds the collaborators of a Runner.
type Config struct {
	Detectors []detector.Detector
	Tools     []external.Tool
	// MaskLiterals hides comments and literals from structural detectors.
	MaskLiterals bool
	// Workers bounds parallel file analysis; zero means runtime.NumCPU().
	Workers  int
	TopFiles int
	Cache    Cache
	// Fingerprint identifies the settings that produced cached results.
	Fingerprint string
	Logger      hclog.Logger
}

// Runner analyzes files. It is safe for concurrent use.
type Runner struct {
	cfg Config
	log hclog.Logger
}

// NewRunner creates a Runner from cfg.
func NewRunner(cfg Config) *Runner {
	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.TopFiles == 0 {
		cfg.TopFiles = DefaultTopFiles
	}
	return &Runner{cfg: cfg, log: log.Named("analysis")}
}

// AnalyzeSource runs the detectors and metrics over in-memory content. It
// does no I/O and never consults the cache or external tools.
func (r *Runner) AnalyzeSource(path string, content []byte) FileResult {
	t := r.text(path, content)
	findings := make([]finding.Finding, 0)
	for _, d := range r.cfg.Detectors {
		findings = append(findings, d.Detect(t)...)
	}
	return FileResult{Path: path, Findings: findings, Metrics: metrics.Collect(t)}
}

func (r *Runner) text(path string, content []byte) *source.Text {
	if !r.cfg.MaskLiterals {
		return source.New(path, content)
	}
	t, err := source.NewMasked(path, content)
	if err != nil {
		r.log.Warn("literal masking failed, using raw text", "file", path, "error", err)
		return source.New(path, content)
	}
	return t
}

// AnalyzeFile reads path and analyzes it, enriching the result with external
// tool findings. Results are served from and written to the cache when one
// is configured.
func (r *Runner) AnalyzeFile(ctx context.Context, path string) (FileResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	var key string
	if r.cfg.Cache != nil {
		key = cache.Key(path, content, r.cfg.Fingerprint)
		var cached FileResult
		ok, err := r.cfg.Cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			r.log.Warn("cache lookup failed", "file", path, "error", err)
		case ok:
			r.log.Trace("cache hit", "file", path)
			return cached, nil
		}
	}

	r.log.Debug("analyzing", "file", path)
	res := r.AnalyzeSource(path, content)
	for _, tool := range r.cfg.Tools {
		extra, err := tool.Run(ctx, path, res.Metrics.TotalLines)
		if err != nil {
			if ctx.Err() != nil {
				return FileResult{}, ctx.Err()
			}
			r.log.Warn("external tool failed", "tool", tool.Name(), "file", path, "error", err)
			continue
		}
		res.Findings = append(res.Findings, extra...)
	}

	if r.cfg.Cache != nil {
		if err := r.cfg.Cache.Put(ctx, key, res); err != nil {
			r.log.Warn("cache store failed", "file", path, "error", err)
		}
	}
	return res, nil
}

// AnalyzeProject analyzes files in parallel and merges the results in the
// given order. A file that cannot be read becomes an ERROR finding in
// Failures and the remaining files are still analyzed. Cancelling ctx stops
// scheduling further files and returns the context error.
func (r *Runner) AnalyzeProject(ctx context.Context, files []string) (*ProjectResult, error) {
	results := make([]FileResult, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.AnalyzeFile(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				errs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pr := &ProjectResult{Files: make([]FileResult, 0, len(files))}
	for i, path := range files {
		if errs[i] != nil {
			r.log.Warn("cannot analyze file", "file", path, "error", errs[i])
			pr.Failures = append(pr.Failures, finding.Finding{
				Severity: finding.Error,
				Rule:     InputRule,
				Message:  fmt.Sprintf("Cannot analyze file: %v", errs[i]),
				File:     path,
			})
			continue
		}
		pr.Files = append(pr.Files, results[i])
		pr.Totals.Add(results[i].Metrics)
	}
	pr.TopFiles = RankFiles(pr.Files, r.cfg.TopFiles)
	r.log.Debug("project analyzed", "files", len(pr.Files), "failures", len(pr.Failures))
	return pr, nil
}
