package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/imyousuf/CodeSentry/internal/config"
	"github.com/imyousuf/CodeSentry/internal/detector"
	"github.com/imyousuf/CodeSentry/internal/external"
	"github.com/imyousuf/CodeSentry/internal/report"
)

// wizard holds the form values shared by `init --interactive` and
// `config edit`. huh inputs edit strings, so numbers are kept as text
// until apply.
type wizard struct {
	maxLineLength    string
	maxFileLines     string
	maxFunctionLines string
	topFiles         string
	detectors        []string
	format           string
	color            bool
	maskLiterals     bool
	cppcheck         bool
	cppcheckBinary   string
	cache            bool
	confirm          bool
}

func newWizard(cfg *config.Config) *wizard {
	detectors := cfg.Analysis.Detectors
	if len(detectors) == 0 {
		detectors = append([]string(nil), detector.StockNames...)
	}
	return &wizard{
		maxLineLength:    strconv.Itoa(cfg.Analysis.MaxLineLength),
		maxFileLines:     strconv.Itoa(cfg.Analysis.MaxFileLines),
		maxFunctionLines: strconv.Itoa(cfg.Analysis.MaxFunctionLines),
		topFiles:         strconv.Itoa(cfg.Report.TopFiles),
		detectors:        detectors,
		format:           cfg.Report.Format,
		color:            cfg.Report.Color,
		maskLiterals:     cfg.Analysis.MaskLiterals,
		cppcheck:         cfg.External.Cppcheck,
		cppcheckBinary:   cfg.External.CppcheckBinary,
		cache:            cfg.Cache.Enabled,
	}
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

// form builds the wizard; action labels the final confirmation.
func (w *wizard) form(action string) *huh.Form {
	detectorOptions := make([]huh.Option[string], len(detector.StockNames))
	selected := make(map[string]bool, len(w.detectors))
	for _, d := range w.detectors {
		selected[d] = true
	}
	for i, name := range detector.StockNames {
		detectorOptions[i] = huh.NewOption(name, name).Selected(selected[name])
	}

	formatOptions := make([]huh.Option[string], len(report.Formats))
	for i, f := range report.Formats {
		formatOptions[i] = huh.NewOption(string(f), string(f))
	}

	cppcheckHint := "cppcheck was not found; findings will be skipped until it is installed"
	checker := external.NewCppcheck(nil)
	checker.Binary = w.cppcheckBinary
	if path, err := checker.Lookup(); err == nil {
		cppcheckHint = "Found " + path
	}

	return huh.NewForm(
		// Group 1: Thresholds
		huh.NewGroup(
			huh.NewInput().
				Title("Maximum line length").
				Value(&w.maxLineLength).
				Validate(positiveInt),
			huh.NewInput().
				Title("Maximum file length (lines)").
				Value(&w.maxFileLines).
				Validate(positiveInt),
			huh.NewInput().
				Title("Maximum function length (lines)").
				Value(&w.maxFunctionLines).
				Validate(positiveInt),
		).Title("Thresholds"),

		// Group 2: Detectors
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Detectors to run").
				Options(detectorOptions...).
				Value(&w.detectors).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return fmt.Errorf("select at least one detector")
					}
					return nil
				}),
		).Title("Detectors"),

		// Group 3: Report
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Report format").
				Options(formatOptions...).
				Value(&w.format),
			huh.NewInput().
				Title("Files listed in the summary").
				Value(&w.topFiles).
				Validate(positiveInt),
			huh.NewConfirm().
				Title("Colour text reports?").
				Value(&w.color).
				Affirmative("Yes").
				Negative("No"),
		).Title("Report"),

		// Group 4: Advanced Options
		huh.NewGroup(
			huh.NewConfirm().
				Title("Ignore comments and string literals?").
				Description("Parses each file with tree-sitter so braces and calls inside literals are skipped").
				Value(&w.maskLiterals).
				Affirmative("Yes").
				Negative("No"),
			huh.NewConfirm().
				Title("Run cppcheck?").
				Description(cppcheckHint).
				Value(&w.cppcheck).
				Affirmative("Yes").
				Negative("No"),
			huh.NewConfirm().
				Title("Cache results between runs?").
				Value(&w.cache).
				Affirmative("Yes").
				Negative("No"),
		).Title("Advanced Options"),

		// Group 5: Confirm
		huh.NewGroup(
			huh.NewNote().
				Title("Summary").
				DescriptionFunc(w.summary, &w.detectors),
			huh.NewConfirm().
				Title(action+"?").
				Value(&w.confirm).
				Affirmative(action).
				Negative("Cancel"),
		).Title("Confirm"),
	).WithTheme(huh.ThemeCharm())
}

func (w *wizard) summary() string {
	return fmt.Sprintf(
		"Line length:   %s\n"+
			"File length:   %s\n"+
			"Function:      %s\n"+
			"Detectors:     %s\n"+
			"Format:        %s\n"+
			"cppcheck:      %v\n"+
			"Cache:         %v",
		w.maxLineLength, w.maxFileLines, w.maxFunctionLines,
		strings.Join(w.detectors, ", "), w.format, w.cppcheck, w.cache,
	)
}

// apply copies the form values into cfg. Selecting every detector is
// stored as an empty list so detectors added later run too.
func (w *wizard) apply(cfg *config.Config) error {
	ints := []struct {
		value string
		dst   *int
	}{
		{w.maxLineLength, &cfg.Analysis.MaxLineLength},
		{w.maxFileLines, &cfg.Analysis.MaxFileLines},
		{w.maxFunctionLines, &cfg.Analysis.MaxFunctionLines},
		{w.topFiles, &cfg.Report.TopFiles},
	}
	for _, i := range ints {
		n, err := strconv.Atoi(strings.TrimSpace(i.value))
		if err != nil {
			return fmt.Errorf("invalid number %q", i.value)
		}
		*i.dst = n
	}

	if len(w.detectors) == len(detector.StockNames) {
		cfg.Analysis.Detectors = []string{}
	} else {
		cfg.Analysis.Detectors = append([]string(nil), w.detectors...)
	}
	cfg.Report.Format = w.format
	cfg.Report.Color = w.color
	cfg.Analysis.MaskLiterals = w.maskLiterals
	cfg.External.Cppcheck = w.cppcheck
	cfg.Cache.Enabled = w.cache
	return cfg.Validate()
}

// runWizard shows the form and applies it to cfg. It reports false when
// the user cancelled.
func runWizard(cfg *config.Config, action string) (bool, error) {
	w := newWizard(cfg)
	if err := w.form(action).Run(); err != nil {
		if err == huh.ErrUserAborted {
			return false, nil
		}
		return false, err
	}
	if !w.confirm {
		return false, nil
	}
	return true, w.apply(cfg)
}
