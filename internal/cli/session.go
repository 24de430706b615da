package cli

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/imyousuf/CodeSentry/internal/analysis"
	"github.com/imyousuf/CodeSentry/internal/cache"
	"github.com/imyousuf/CodeSentry/internal/config"
	"github.com/imyousuf/CodeSentry/internal/detector"
	"github.com/imyousuf/CodeSentry/internal/discovery"
	"github.com/imyousuf/CodeSentry/internal/external"
	"github.com/imyousuf/CodeSentry/internal/logger"
	"github.com/imyousuf/CodeSentry/internal/report"
)

// session bundles what every analyzing command needs: the validated
// configuration, a logger, the selected detectors and the optional cache.
type session struct {
	cfg       *config.Config
	log       hclog.Logger
	detectors []detector.Detector
	cache     *cache.Store
}

// sessionOptions are command-line overrides applied on top of the config.
type sessionOptions struct {
	only    []string
	noCache bool
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command logger; --verbose forces debug output.
func newLogger(cfg *config.Config) hclog.Logger {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logger.New(level, "codesentry", nil)
}

func openSession(cfg *config.Config, opts sessionOptions) (*session, error) {
	log := newLogger(cfg)
	if cfg.File != "" {
		log.Debug("using config file", "path", cfg.File)
	}

	registry, err := detector.New(cfg.Policy())
	if err != nil {
		return nil, fmt.Errorf("build detectors: %w", err)
	}
	// --only replaces the configured selection, including in the cache
	// fingerprint.
	if len(opts.only) > 0 {
		cfg.Analysis.Detectors = opts.only
	}
	detectors, err := registry.Select(cfg.Analysis.Detectors)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, log: log, detectors: detectors}
	if cfg.Cache.Enabled && !opts.noCache {
		store, err := cache.Open(cfg.Cache.Dir, log)
		if err != nil {
			return nil, err
		}
		s.cache = store
	}
	return s, nil
}

// runner builds an analysis runner from the session settings.
func (s *session) runner() *analysis.Runner {
	rc := analysis.Config{
		Detectors:    s.detectors,
		MaskLiterals: s.cfg.Analysis.MaskLiterals,
		Workers:      s.cfg.Analysis.Workers,
		TopFiles:     s.cfg.Report.TopFiles,
		Fingerprint:  s.cfg.Fingerprint(Version),
		Logger:       s.log,
	}
	if s.cfg.External.Cppcheck {
		rc.Tools = append(rc.Tools, newCppcheck(s.cfg, s.log))
	}
	// A nil *cache.Store must not become a non-nil interface.
	if s.cache != nil {
		rc.Cache = s.cache
	}
	return analysis.NewRunner(rc)
}

// newCppcheck builds the cppcheck runner for the configured binary.
func newCppcheck(cfg *config.Config, log hclog.Logger) *external.Cppcheck {
	c := external.NewCppcheck(log)
	c.Binary = cfg.External.CppcheckBinary
	return c
}

func (s *session) discoveryOptions() discovery.Options {
	return discovery.Options{
		Extensions: s.cfg.Discovery.Extensions,
		Exclude:    s.cfg.Discovery.Exclude,
	}
}

// rules describes the selected detectors for rule-aware report formats.
func (s *session) rules() []report.Rule {
	rules := make([]report.Rule, 0, len(s.detectors)+1)
	for _, d := range s.detectors {
		rules = append(rules, report.Rule{ID: d.Name(), Description: d.Description()})
	}
	if s.cfg.External.Cppcheck {
		rules = append(rules, report.Rule{ID: external.Rule, Description: "Finding reported by cppcheck"})
	}
	return rules
}

func (s *session) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}
