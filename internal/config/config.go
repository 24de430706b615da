// Package config handles configuration loading and validation for CodeSentry.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/imyousuf/CodeSentry/internal/detector"
	"github.com/imyousuf/CodeSentry/internal/finding"
	"github.com/imyousuf/CodeSentry/internal/report"
)

const (
	// DefaultConfigFile is the default configuration file name (without extension).
	DefaultConfigFile = ".codesentry"
	// DefaultConfigType is the default configuration file type.
	DefaultConfigType = "yaml"
	// EnvPrefix prefixes environment overrides, e.g. CODESENTRY_ANALYSIS_MAX_LINE_LENGTH.
	EnvPrefix = "CODESENTRY"
)

// Config holds all configuration for CodeSentry.
type Config struct {
	// Analysis holds detector thresholds and name lists.
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	// Discovery controls which files a project run covers.
	Discovery DiscoveryConfig `mapstructure:"discovery" yaml:"discovery"`
	// Report controls output rendering.
	Report ReportConfig `mapstructure:"report" yaml:"report"`
	// Cache configures the on-disk result cache.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`
	// External enables third-party checkers.
	External ExternalConfig `mapstructure:"external" yaml:"external"`
	// Log configures logging.
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// AnalysisConfig holds the detector settings.
type AnalysisConfig struct {
	MaxLineLength    int      `mapstructure:"max_line_length" yaml:"max_line_length"`
	MaxFileLines     int      `mapstructure:"max_file_lines" yaml:"max_file_lines"`
	MaxFunctionLines int      `mapstructure:"max_function_lines" yaml:"max_function_lines"`
	FunctionPattern  string   `mapstructure:"function_pattern" yaml:"function_pattern"`
	MacroPattern     string   `mapstructure:"macro_pattern" yaml:"macro_pattern"`
	NamingExempt     []string `mapstructure:"naming_exempt" yaml:"naming_exempt"`
	Allocators       []string `mapstructure:"allocators" yaml:"allocators"`
	Releasers        []string `mapstructure:"releasers" yaml:"releasers"`
	Syscalls         []string `mapstructure:"syscalls" yaml:"syscalls"`
	// OwnershipEscape suppresses leak warnings for names that also appear
	// as NAME_ or _NAME elsewhere in the file.
	OwnershipEscape bool `mapstructure:"ownership_escape" yaml:"ownership_escape"`
	// MaskLiterals hides comments and literals from structural detectors.
	MaskLiterals bool `mapstructure:"mask_literals" yaml:"mask_literals"`
	// Detectors selects detectors by name; empty runs all of them.
	Detectors []string `mapstructure:"detectors" yaml:"detectors"`
	// Workers bounds parallel analysis; 0 uses every CPU.
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// DiscoveryConfig controls file discovery.
type DiscoveryConfig struct {
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	// Exclude lists gitignore-style patterns to skip.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
}

// ReportConfig controls output rendering.
type ReportConfig struct {
	Format   string `mapstructure:"format" yaml:"format"`
	TopFiles int    `mapstructure:"top_files" yaml:"top_files"`
	Color    bool   `mapstructure:"color" yaml:"color"`
	// FailOn makes the process exit non-zero when a finding reaches this
	// severity. Empty never fails.
	FailOn string `mapstructure:"fail_on" yaml:"fail_on"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// ExternalConfig enables external checkers.
type ExternalConfig struct {
	Cppcheck bool `mapstructure:"cppcheck" yaml:"cppcheck"`
	// CppcheckBinary is the cppcheck executable name or path; empty looks up
	// "cppcheck" on PATH.
	CppcheckBinary string `mapstructure:"cppcheck_binary" yaml:"cppcheck_binary"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Load loads configuration from file, environment variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Check if a specific config file was set via CLI flag (stored in global viper)
	globalViper := viper.GetViper()
	if configFile := globalViper.GetString("config_file"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigFile)
		v.SetConfigType(DefaultConfigType)
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}

// Default returns the built-in configuration, ignoring files and environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &cfg
}

var logLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}

// Validate checks that the configuration is valid. Every problem is
// reported, combined into one error.
func (c *Config) Validate() error {
	var errs error
	a := c.Analysis

	positive := []struct {
		key   string
		value int
	}{
		{"analysis.max_line_length", a.MaxLineLength},
		{"analysis.max_file_lines", a.MaxFileLines},
		{"analysis.max_function_lines", a.MaxFunctionLines},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s must be positive, got %d", p.key, p.value))
		}
	}

	for key, pattern := range map[string]string{
		"analysis.function_pattern": a.FunctionPattern,
		"analysis.macro_pattern":    a.MacroPattern,
	} {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	for key, names := range map[string][]string{
		"analysis.allocators": a.Allocators,
		"analysis.releasers":  a.Releasers,
		"analysis.syscalls":   a.Syscalls,
	} {
		if len(names) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s must not be empty", key))
		}
	}

	for _, name := range a.Detectors {
		if !isStockDetector(name) {
			errs = multierr.Append(errs, fmt.Errorf("analysis.detectors: %w", detector.UnknownNameError(name, detector.StockNames)))
		}
	}
	if a.Workers < 0 {
		errs = multierr.Append(errs, fmt.Errorf("analysis.workers must not be negative, got %d", a.Workers))
	}

	for _, ext := range c.Discovery.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = multierr.Append(errs, fmt.Errorf("discovery.extensions: %q must start with a dot", ext))
		}
	}

	if _, err := report.ParseFormat(c.Report.Format); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("report.format: %w", err))
	}
	if c.Report.TopFiles < 1 {
		errs = multierr.Append(errs, fmt.Errorf("report.top_files must be at least 1, got %d", c.Report.TopFiles))
	}
	if c.Report.FailOn != "" {
		if _, err := finding.ParseSeverity(c.Report.FailOn); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("report.fail_on: %w", err))
		}
	}

	if c.Cache.Enabled && c.Cache.Dir == "" {
		errs = multierr.Append(errs, fmt.Errorf("cache.dir is required when the cache is enabled"))
	}
	if !logLevels[strings.ToLower(c.Log.Level)] {
		errs = multierr.Append(errs, fmt.Errorf("log.level must be one of trace, debug, info, warn, error; got %q", c.Log.Level))
	}
	return errs
}

func isStockDetector(name string) bool {
	for _, n := range detector.StockNames {
		if n == name {
			return true
		}
	}
	return false
}

// Policy converts the analysis settings into detector configuration.
func (c *Config) Policy() detector.Policy {
	a := c.Analysis
	return detector.Policy{
		MaxLineLength:    a.MaxLineLength,
		MaxFileLines:     a.MaxFileLines,
		MaxFunctionLines: a.MaxFunctionLines,
		FunctionPattern:  a.FunctionPattern,
		MacroPattern:     a.MacroPattern,
		NamingExempt:     a.NamingExempt,
		Allocators:       a.Allocators,
		Releasers:        a.Releasers,
		Syscalls:         a.Syscalls,
		OwnershipEscape:  a.OwnershipEscape,
	}
}

// Fingerprint identifies every setting that changes per-file results, so
// cached results are only reused under the same settings and version.
func (c *Config) Fingerprint(version string) string {
	a := c.Analysis
	a.Workers = 0
	data, _ := json.Marshal(struct {
		Version  string
		Analysis AnalysisConfig
		External ExternalConfig
	}{version, a, c.External})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	p := detector.DefaultPolicy()
	v.SetDefault("analysis.max_line_length", p.MaxLineLength)
	v.SetDefault("analysis.max_file_lines", p.MaxFileLines)
	v.SetDefault("analysis.max_function_lines", p.MaxFunctionLines)
	v.SetDefault("analysis.function_pattern", p.FunctionPattern)
	v.SetDefault("analysis.macro_pattern", p.MacroPattern)
	v.SetDefault("analysis.naming_exempt", p.NamingExempt)
	v.SetDefault("analysis.allocators", p.Allocators)
	v.SetDefault("analysis.releasers", p.Releasers)
	v.SetDefault("analysis.syscalls", p.Syscalls)
	v.SetDefault("analysis.ownership_escape", p.OwnershipEscape)
	v.SetDefault("analysis.mask_literals", false)
	v.SetDefault("analysis.detectors", []string{})
	v.SetDefault("analysis.workers", 0)

	v.SetDefault("discovery.extensions", []string{".c", ".h"})
	v.SetDefault("discovery.exclude", []string{
		"**/.git/**",
		"**/build/**",
	})

	v.SetDefault("report.format", string(report.Text))
	v.SetDefault("report.top_files", 5)
	v.SetDefault("report.color", true)
	v.SetDefault("report.fail_on", "")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.dir", ".codesentry/cache")

	v.SetDefault("external.cppcheck", false)
	v.SetDefault("external.cppcheck_binary", "")

	v.SetDefault("log.level", "info")
}
