// Package scope discovers the version-control context of a local target.
//
// When a local path sits inside a larger git worktree, ingestion is
// restricted to that subdirectory while the worktree root still provides the
// naming context ("monorepo restriction"). Resolution failures are never
// fatal: a path outside version control simply has no scope.
package scope

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// Context describes a local target's position inside a git worktree.
type Context struct {
	// RootName is the worktree root directory's own name, not a full
	// path. Keeps generated digest names short and portable.
	RootName string

	// RootPath is the absolute worktree root, used as the fetch base
	// when ingestion is restricted to RelativePath.
	RootPath string

	// RelativePath is the path from the root to the target. Never empty:
	// a target equal to its own root has no Context at all.
	RelativePath string
}

// Resolve finds the enclosing git worktree root for path and computes the
// restriction context.
//
// Returns (nil, nil) when the path is not under version control or equals
// the worktree root itself; both are ordinary outcomes, not errors. An
// error is returned only when the path cannot be resolved at all.
func Resolve(path string) (*Context, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}

	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	root, err := findRoot(dir)
	if err != nil {
		// Not a repository, or git metadata is unreadable. Ingestion
		// proceeds unrestricted.
		return nil, nil
	}

	if root == abs {
		return nil, nil
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return nil, nil
	}

	return &Context{
		RootName:     filepath.Base(root),
		RootPath:     root,
		RelativePath: rel,
	}, nil
}

// findRoot walks go-git's dot-git detection upward from dir and returns the
// worktree root.
func findRoot(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		// Bare repository; no worktree to scope against.
		return "", err
	}

	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return "", err
	}
	return root, nil
}

// Branch returns the current branch name for the repository containing
// path, or empty when the path is not a repository or HEAD is detached.
func Branch(path string) string {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		return ""
	}

	if head.Name().IsBranch() {
		return head.Name().Short()
	}
	return ""
}
