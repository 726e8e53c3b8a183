package util

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitInfo describes the working tree a scan runs over
type GitInfo struct {
	IsGitRepo     bool
	HeadCommitSHA string
	// ChangedFiles holds absolute paths that differ from HEAD or are untracked
	ChangedFiles map[string]bool
}

// GetGitInfo inspects repoPath. A directory outside git is not an error.
func GetGitInfo(ctx context.Context, repoPath string) (*GitInfo, error) {
	info := &GitInfo{ChangedFiles: make(map[string]bool)}

	root, err := git(ctx, repoPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return info, nil
	}
	info.IsGitRepo = true

	if info.HeadCommitSHA, err = git(ctx, repoPath, "rev-parse", "HEAD"); err != nil {
		return nil, fmt.Errorf("failed to get HEAD commit SHA: %w", err)
	}

	// git prints paths relative to the top level
	for _, args := range [][]string{
		{"diff", "--name-only", "HEAD"},
		{"ls-files", "--others", "--exclude-standard", "--full-name"},
	} {
		out, err := git(ctx, repoPath, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to list changed files: %w", err)
		}
		for _, file := range strings.Split(out, "\n") {
			if file != "" {
				info.ChangedFiles[filepath.Join(root, filepath.FromSlash(file))] = true
			}
		}
	}
	return info, nil
}

// IsChanged reports whether path differs from HEAD
func (g *GitInfo) IsChanged(path string) bool {
	if g == nil || !g.IsGitRepo {
		return false
	}
	return g.ChangedFiles[path]
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
