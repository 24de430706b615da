package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imyousuf/CodeSentry/internal/finding"
)

const (
	hookName        = "pre-commit"
	hookMarkerBegin = "# BEGIN codesentry hook"
	hookMarkerEnd   = "# END codesentry hook"
	hookShebang     = "#!/bin/sh\n"
)

// hookSection returns the script block that blocks a commit when a changed
// file has a finding at or above failOn.
func hookSection(failOn string) string {
	return hookMarkerBegin + "\n" +
		"codesentry analyze --changed --fail-on " + failOn + " || exit 1\n" +
		hookMarkerEnd + "\n"
}

func newHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage the git pre-commit hook",
	}

	cmd.AddCommand(newHookInstallCmd())
	cmd.AddCommand(newHookRemoveCmd())

	return cmd
}

func newHookInstallCmd() *cobra.Command {
	var failOn string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install a pre-commit hook that analyzes changed files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sev, err := finding.ParseSeverity(failOn)
			if err != nil {
				return fmt.Errorf("--fail-on: %w", err)
			}
			gitDir, err := findGitDir()
			if err != nil {
				return err
			}
			return installHook(cmd, gitDir, sev.String())
		},
	}

	cmd.Flags().StringVar(&failOn, "fail-on", "ERROR", "block the commit when a finding reaches this severity")
	return cmd
}

func installHook(cmd *cobra.Command, gitDir, failOn string) error {
	hookPath := filepath.Join(gitDir, "hooks", hookName)
	out := cmd.OutOrStdout()

	// Ensure hooks directory exists.
	if err := os.MkdirAll(filepath.Join(gitDir, "hooks"), 0755); err != nil {
		return fmt.Errorf("create hooks directory: %w", err)
	}

	// Read existing hook file if present.
	existing, err := os.ReadFile(hookPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read hook file: %w", err)
	}

	content := string(existing)

	// Check if already installed.
	if strings.Contains(content, hookMarkerBegin) {
		fmt.Fprintln(out, "CodeSentry hook is already installed.")
		return nil
	}

	// Build new content.
	var newContent string
	if content == "" {
		newContent = hookShebang + "\n" + hookSection(failOn)
	} else {
		// Append to existing hook.
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		newContent = content + "\n" + hookSection(failOn)
	}

	if err := os.WriteFile(hookPath, []byte(newContent), 0755); err != nil {
		return fmt.Errorf("write hook file: %w", err)
	}

	fmt.Fprintf(out, "Installed %s hook at %s\n", hookName, hookPath)
	return nil
}

func newHookRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the codesentry pre-commit hook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gitDir, err := findGitDir()
			if err != nil {
				return err
			}
			return removeHook(cmd, gitDir)
		},
	}
}

func removeHook(cmd *cobra.Command, gitDir string) error {
	hookPath := filepath.Join(gitDir, "hooks", hookName)
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(hookPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(out, "No %s hook found.\n", hookName)
			return nil
		}
		return fmt.Errorf("read hook file: %w", err)
	}

	content := string(data)
	if !strings.Contains(content, hookMarkerBegin) {
		fmt.Fprintf(out, "No CodeSentry hook found in %s.\n", hookName)
		return nil
	}

	// Strip the codesentry section.
	cleaned := stripHookSection(content)

	// If only shebang (and whitespace) remains, delete the file.
	trimmed := strings.TrimSpace(cleaned)
	if trimmed == "" || trimmed == strings.TrimSpace(hookShebang) {
		if err := os.Remove(hookPath); err != nil {
			return fmt.Errorf("remove hook file: %w", err)
		}
		fmt.Fprintf(out, "Removed %s hook at %s\n", hookName, hookPath)
	} else {
		if err := os.WriteFile(hookPath, []byte(cleaned), 0755); err != nil {
			return fmt.Errorf("write hook file: %w", err)
		}
		fmt.Fprintf(out, "Removed CodeSentry section from %s\n", hookPath)
	}
	return nil
}

// findGitDir walks up from CWD looking for a .git directory.
func findGitDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ".git")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("not inside a git repository")
}

// stripHookSection removes the codesentry hook section from the content.
func stripHookSection(content string) string {
	lines := strings.Split(content, "\n")
	var result []string
	inSection := false
	for _, line := range lines {
		switch strings.TrimSpace(line) {
		case hookMarkerBegin:
			inSection = true
			continue
		case hookMarkerEnd:
			inSection = false
			continue
		}
		if !inSection {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
