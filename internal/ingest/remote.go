package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/repodigest/internal/logging"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCloneTimeout = 5 * time.Minute

// RemoteFetcher shallow-clones a remote repository into a temporary
// directory and delegates flattening to a LocalFetcher.
type RemoteFetcher struct {
	log   *logging.Logger
	local *LocalFetcher

	// CloneTimeout bounds one clone; zero means the 5 minute default.
	CloneTimeout time.Duration

	// TempRoot overrides where clones land; empty means os.TempDir().
	TempRoot string
}

// NewRemoteFetcher creates a remote content fetcher.
func NewRemoteFetcher(log *logging.Logger, local *LocalFetcher) *RemoteFetcher {
	if log == nil {
		log = logging.Nop()
	}
	return &RemoteFetcher{log: log, local: local}
}

// remoteRef is a parsed remote target.
type remoteRef struct {
	// display is "owner/repo", used in the digest summary.
	display string

	cloneURL string

	// branch and subpath come from tree/blob browsing URLs and are
	// empty for whole-repo targets.
	branch  string
	subpath string
}

// parseRemote normalizes a remote target: full URLs, host-less forms, and
// owner/repo shorthand all resolve to a clone URL, with tree/blob sub-path
// URLs additionally carrying a branch and an include restriction.
func parseRemote(raw string) (remoteRef, error) {
	trimmed := strings.TrimRight(raw, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	parts := strings.Split(trimmed, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "http:" || p == "https:" {
			continue
		}
		segments = append(segments, p)
	}

	// A leading host segment is recognizable by its dot.
	host := "github.com"
	if len(segments) > 0 && strings.Contains(segments[0], ".") {
		host = segments[0]
		segments = segments[1:]
	}

	if len(segments) < 2 {
		return remoteRef{}, fmt.Errorf("not a repository target: %q", raw)
	}

	owner, repo := segments[0], segments[1]
	ref := remoteRef{
		display:  owner + "/" + repo,
		cloneURL: "https://" + host + "/" + owner + "/" + repo + ".git",
	}

	// owner/repo/tree/<branch>/<subpath...>
	if len(segments) >= 4 && (segments[2] == "tree" || segments[2] == "blob") {
		ref.branch = segments[3]
		if len(segments) > 4 {
			ref.subpath = strings.Join(segments[4:], "/")
		}
	}

	return ref, nil
}

// Fetch clones target at depth 1 and flattens the checkout. The clone
// directory is always removed, also on failure.
func (f *RemoteFetcher) Fetch(ctx context.Context, rawTarget string, opts FetchOptions) (*Payload, error) {
	ref, err := parseRemote(rawTarget)
	if err != nil {
		return nil, &FetchError{Target: rawTarget, Err: err}
	}

	timeout := f.CloneTimeout
	if timeout == 0 {
		timeout = defaultCloneTimeout
	}

	tempRoot := f.TempRoot
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	dir := filepath.Join(tempRoot, "repodigest-"+uuid.NewString())
	defer os.RemoveAll(dir)

	cloneCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cloneOpts := &git.CloneOptions{
		URL:          ref.cloneURL,
		Depth:        1,
		SingleBranch: true,
	}
	if ref.branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(ref.branch)
	}

	f.log.Debug(ctx, "cloning repository",
		zap.String("url", ref.cloneURL),
		zap.String("branch", ref.branch))

	repo, err := git.PlainCloneContext(cloneCtx, dir, false, cloneOpts)
	if err != nil {
		return nil, &FetchError{Target: rawTarget, Err: fmt.Errorf("clone failed: %w", err)}
	}

	if ref.subpath != "" {
		opts.IncludePatterns = append(opts.IncludePatterns, ref.subpath, ref.subpath+"/**")
	}

	payload, err := f.local.Fetch(ctx, dir, opts)
	if err != nil {
		return nil, err
	}

	payload.Summary = remoteSummary(payload.Summary, ref, repo)
	payload.Tree = remoteTree(payload.Tree, ref)
	return payload, nil
}

// remoteTree replaces the temporary clone directory's name at the top of the
// tree listing with the repository's own name.
func remoteTree(tree string, ref remoteRef) string {
	lines := strings.SplitN(tree, "\n", 2)
	name := ref.display
	if _, repo, found := strings.Cut(ref.display, "/"); found {
		name = repo
	}
	if len(lines) == 2 {
		return name + "/\n" + lines[1]
	}
	return name + "/\n"
}

// remoteSummary replaces the clone-directory header the local fetch wrote
// with the repository identity.
func remoteSummary(summary string, ref remoteRef, repo *git.Repository) string {
	lines := strings.Split(summary, "\n")
	if len(lines) > 0 {
		lines[0] = "Repository: " + ref.display
	}

	// Shallow single-branch clones may leave a detached HEAD; recover
	// the branch from the requested ref when the checkout has none.
	hasBranch := false
	for _, l := range lines {
		if strings.HasPrefix(l, "Branch: ") {
			hasBranch = true
			break
		}
	}
	if !hasBranch {
		branch := ref.branch
		if branch == "" && repo != nil {
			if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
				branch = head.Name().Short()
			}
		}
		if branch != "" {
			rest := append([]string{lines[0], "Branch: " + branch}, lines[1:]...)
			lines = rest
		}
	}

	return strings.Join(lines, "\n")
}
