// Package gitutil finds the files changed on the current git branch, so an
// analysis can be limited to them.
package gitutil

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// BranchInfo holds information about the current git branch state.
type BranchInfo struct {
	CurrentBranch   string
	DefaultBranch   string // main or master
	IsFeatureBranch bool   // true if current != default
	Ahead           int    // commits ahead of default
	Behind          int    // commits behind default
}

// ChangedFile represents a file changed between branches.
type ChangedFile struct {
	Path   string
	Status string // "added", "modified", "deleted", "renamed"
}

// BranchDiff contains branch info plus the list of changed files.
type BranchDiff struct {
	BranchInfo
	ChangedFiles []ChangedFile
}

// GetBranchInfo returns information about the current branch relative to the default branch.
func GetBranchInfo(repoPath string) (*BranchInfo, error) {
	current, err := runGit(repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("get current branch: %w", err)
	}

	defaultBranch, err := detectDefaultBranch(repoPath)
	if err != nil {
		return nil, fmt.Errorf("detect default branch: %w", err)
	}

	info := &BranchInfo{
		CurrentBranch:   current,
		DefaultBranch:   defaultBranch,
		IsFeatureBranch: current != defaultBranch,
	}

	if info.IsFeatureBranch {
		ahead, behind, err := getAheadBehind(repoPath, defaultBranch, current)
		if err == nil {
			info.Ahead = ahead
			info.Behind = behind
		}
	}

	return info, nil
}

// GetBranchDiff returns the branch info plus all files changed compared to the
// default branch, sorted by path. On the default branch the list is empty.
func GetBranchDiff(repoPath string) (*BranchDiff, error) {
	info, err := GetBranchInfo(repoPath)
	if err != nil {
		return nil, err
	}

	diff := &BranchDiff{BranchInfo: *info}
	if !info.IsFeatureBranch {
		return diff, nil
	}

	mergeBase, err := runGit(repoPath, "merge-base", info.DefaultBranch, "HEAD")
	if err != nil {
		return diff, nil // return what we have without file details
	}
	nameStatusOutput, err := runGit(repoPath, "diff", "--name-status", mergeBase+"..HEAD")
	if err != nil {
		return diff, nil
	}

	for path, status := range parseNameStatus(nameStatusOutput) {
		diff.ChangedFiles = append(diff.ChangedFiles, ChangedFile{Path: path, Status: status})
	}
	sort.Slice(diff.ChangedFiles, func(i, j int) bool {
		return diff.ChangedFiles[i].Path < diff.ChangedFiles[j].Path
	})
	return diff, nil
}

// ChangedPaths returns the absolute paths of files that differ from the
// default branch, plus uncommitted and untracked files. Deleted files are
// left out. Outside a feature branch only the working tree is considered.
func ChangedPaths(repoPath string) ([]string, error) {
	top, err := runGit(repoPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("find repository root: %w", err)
	}

	set := make(map[string]bool)
	if diff, err := GetBranchDiff(repoPath); err == nil {
		for _, f := range diff.ChangedFiles {
			if f.Status != "deleted" {
				set[f.Path] = true
			}
		}
	}
	if out, err := runGit(repoPath, "diff", "--name-status", "HEAD"); err == nil {
		for path, status := range parseNameStatus(out) {
			if status != "deleted" {
				set[path] = true
			}
		}
	}
	if out, err := runGit(repoPath, "ls-files", "--others", "--exclude-standard"); err == nil {
		for _, line := range strings.Split(out, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				set[line] = true
			}
		}
	}

	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, filepath.Join(top, filepath.FromSlash(p)))
	}
	sort.Strings(paths)
	return paths, nil
}

// detectDefaultBranch checks whether the repository uses "main" or "master" as its default branch.
func detectDefaultBranch(repoPath string) (string, error) {
	for _, name := range []string{"main", "master"} {
		if _, err := runGit(repoPath, "rev-parse", "--verify", "refs/heads/"+name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no default branch found (tried main and master)")
}

// getAheadBehind returns how many commits the current branch is ahead/behind relative to base.
func getAheadBehind(repoPath, base, current string) (ahead, behind int, err error) {
	output, err := runGit(repoPath, "rev-list", "--left-right", "--count", base+"..."+current)
	if err != nil {
		return 0, 0, err
	}
	parts := strings.Fields(output)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output: %q", output)
	}
	behind, _ = strconv.Atoi(parts[0])
	ahead, _ = strconv.Atoi(parts[1])
	return ahead, behind, nil
}

// parseNameStatus parses "git diff --name-status" output into a map of path -> status.
func parseNameStatus(output string) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		statusCode := parts[0]
		path := parts[len(parts)-1] // use last field; for renames this is the new path

		switch {
		case strings.HasPrefix(statusCode, "A"):
			result[path] = "added"
		case strings.HasPrefix(statusCode, "D"):
			result[path] = "deleted"
		case strings.HasPrefix(statusCode, "R"):
			result[path] = "renamed"
		default:
			result[path] = "modified"
		}
	}
	return result
}

// runGit executes a git command in the given repository path and returns trimmed stdout.
func runGit(repoPath string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(output)), nil
}
