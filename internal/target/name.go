package target

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/repodigest/internal/scope"
)

// subpath markers used by repository hosts for in-tree browsing URLs.
var subpathMarkers = map[string]bool{
	"tree": true,
	"blob": true,
}

// SynthesizeName produces a deterministic, filesystem-safe digest name for
// a target. Path separators are flattened to '-'; a scoped local path joins
// the worktree root name and the flattened relative path with '--', as does
// a remote URL that browses a sub-path via a tree/blob marker.
//
// Scope-based naming takes precedence over plain last-segment naming, and
// sub-path URL naming over whole-repo naming. The fallback for degenerate
// input is "digest".
func SynthesizeName(target string, sc *scope.Context) string {
	if sc != nil && sc.RelativePath != "" {
		return sc.RootName + "--" + flattenRelative(sc.RelativePath)
	}

	trimmed := normalizeRemote(target)
	segments := remoteSegments(trimmed)

	if repo, sub, ok := splitSubpath(segments); ok {
		if len(sub) == 0 {
			// Marker present but nothing browsed below the branch:
			// the whole repository is the target.
			return repo
		}
		return repo + "--" + strings.Join(sub, "-")
	}

	if Classify(target) == KindLocal {
		return localName(target)
	}

	if len(segments) > 0 {
		return segments[len(segments)-1]
	}

	return "digest"
}

// localName names an unscoped local target: directory name as-is, file
// stem without extension.
func localName(target string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	base := filepath.Base(filepath.Clean(abs))

	if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
		return stem(base)
	}
	return base
}

// flattenRelative turns a root-relative path into a single dash-joined
// token. When the path has multiple segments, the final component's
// extension is dropped; a single-segment path keeps its extension so the
// name stays recognizable.
func flattenRelative(rel string) string {
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	if len(parts) > 1 {
		parts[len(parts)-1] = stem(parts[len(parts)-1])
	}
	return strings.Join(parts, "-")
}

// splitSubpath detects a tree/blob browsing URL. Segments must contain at
// least host-or-owner and repo before the marker, then a branch token and
// one or more sub-path segments after it.
func splitSubpath(segments []string) (repo string, sub []string, ok bool) {
	for i, s := range segments {
		if !subpathMarkers[s] {
			continue
		}
		// segments[i-1] is the repository, segments[i+1] the branch.
		if i < 2 || len(segments) <= i+1 {
			return "", nil, false
		}
		return segments[i-1], segments[i+2:], true
	}
	return "", nil, false
}

// stem strips the final extension, keeping dotfiles intact.
func stem(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
