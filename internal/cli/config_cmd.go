package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/imyousuf/CodeSentry/internal/config"
)

// Style definitions for config view.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	labelStyle = lipgloss.NewStyle().
			Faint(true).
			Width(20)
	valueStyle = lipgloss.NewStyle()
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `View or edit CodeSentry configuration.

By default, displays the effective configuration (file, environment and
built-in defaults combined) in a pretty-printed format.
Use 'config edit' to edit configuration interactively.`,
		Args: cobra.NoArgs,
		RunE: runConfigView,
	}

	cmd.AddCommand(newConfigEditCmd())

	return cmd
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	printConfig(cmd.OutOrStdout(), cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out)

	// Title
	fmt.Fprintln(out, headerStyle.Render("CodeSentry Configuration"))
	fmt.Fprintln(out, headerStyle.Render(strings.Repeat("=", 24)))
	fmt.Fprintln(out)

	source := cfg.File
	if source == "" {
		source = "(built-in defaults)"
	}
	printKV(out, "Config file", source)
	fmt.Fprintln(out)

	a := cfg.Analysis
	printSection(out, "Thresholds")
	printKV(out, "Line length", strconv.Itoa(a.MaxLineLength))
	printKV(out, "File lines", strconv.Itoa(a.MaxFileLines))
	printKV(out, "Function lines", strconv.Itoa(a.MaxFunctionLines))
	fmt.Fprintln(out)

	printSection(out, "Naming")
	printKV(out, "Functions", a.FunctionPattern)
	printKV(out, "Macros", a.MacroPattern)
	printKV(out, "Exempt", listOrNone(a.NamingExempt))
	fmt.Fprintln(out)

	printSection(out, "Resources")
	printKV(out, "Allocators", listOrNone(a.Allocators))
	printKV(out, "Releasers", listOrNone(a.Releasers))
	printKV(out, "Syscalls", listOrNone(a.Syscalls))
	printKV(out, "Ownership escape", boolYesNo(a.OwnershipEscape))
	fmt.Fprintln(out)

	printSection(out, "Analysis")
	detectors := "all"
	if len(a.Detectors) > 0 {
		detectors = strings.Join(a.Detectors, ", ")
	}
	printKV(out, "Detectors", detectors)
	printKV(out, "Mask literals", boolYesNo(a.MaskLiterals))
	workers := "all CPUs"
	if a.Workers > 0 {
		workers = strconv.Itoa(a.Workers)
	}
	printKV(out, "Workers", workers)
	printKV(out, "cppcheck", boolYesNo(cfg.External.Cppcheck))
	if cfg.External.CppcheckBinary != "" {
		printKV(out, "cppcheck binary", cfg.External.CppcheckBinary)
	}
	fmt.Fprintln(out)

	printSection(out, "Discovery")
	printKV(out, "Extensions", listOrNone(cfg.Discovery.Extensions))
	for _, pattern := range cfg.Discovery.Exclude {
		printKV(out, "Exclude", pattern)
	}
	fmt.Fprintln(out)

	printSection(out, "Report")
	printKV(out, "Format", cfg.Report.Format)
	printKV(out, "Top files", strconv.Itoa(cfg.Report.TopFiles))
	printKV(out, "Colour", boolYesNo(cfg.Report.Color))
	failOn := cfg.Report.FailOn
	if failOn == "" {
		failOn = "never"
	}
	printKV(out, "Fail on", failOn)
	fmt.Fprintln(out)

	printSection(out, "Cache")
	printKV(out, "Enabled", boolYesNo(cfg.Cache.Enabled))
	printKV(out, "Directory", cfg.Cache.Dir)
	fmt.Fprintln(out)

	printSection(out, "Logging")
	printKV(out, "Level", cfg.Log.Level)
	fmt.Fprintln(out)
}

func printSection(out io.Writer, title string) {
	fmt.Fprintf(out, "  %s\n", headerStyle.Render(title))
}

func printKV(out io.Writer, label, value string) {
	fmt.Fprintf(out, "    %s%s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func boolYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration interactively",
		Long:  `Edit the CodeSentry config file using an interactive wizard.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigEdit(cmd)
		},
	}
}

func runConfigEdit(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.File == "" {
		return fmt.Errorf("no config file found; run 'codesentry init' first")
	}

	out := cmd.OutOrStdout()
	ok, err := runWizard(cfg, "Save")
	if err != nil {
		return fmt.Errorf("interactive config edit: %w", err)
	}
	if !ok {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	if err := config.WriteConfig(cfg, cfg.File); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(out, "Configuration saved to %s\n", cfg.File)
	return nil
}
