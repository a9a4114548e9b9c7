// Package target classifies ingestion targets and synthesizes digest names.
//
// A target string is one of: a local filesystem path, a remote repository
// URL (or owner/repo shorthand), or a hosting-platform username. Both
// operations here are best-effort and never fail; ambiguity resolves to the
// username kind.
package target

import (
	"os"
	"strings"
)

// Kind is the classified kind of an ingestion target.
type Kind int

const (
	// KindUnknown is the zero value; the classifier never returns it.
	KindUnknown Kind = iota

	// KindLocal is an existing filesystem path.
	KindLocal

	// KindRemoteRepo is a single remote repository (URL or owner/repo).
	KindRemoteRepo

	// KindRemoteUser is a hosting-platform username whose repositories
	// are ingested as a batch.
	KindRemoteUser
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindRemoteRepo:
		return "remote-repo"
	case KindRemoteUser:
		return "remote-user"
	default:
		return "unknown"
	}
}

// hostDomain is the hosting-platform domain used for URL classification.
const hostDomain = "github.com"

// Classify maps a target string to a Kind. First match wins:
//
//  1. An existing filesystem entry is local.
//  2. A string containing the hosting-platform domain is a repository when
//     at least three meaningful path segments remain (host, owner, repo),
//     otherwise a user.
//  3. Any other string containing a slash is owner/repo shorthand.
//  4. Everything else is a username.
//
// Trailing slashes and a .git suffix never change the outcome.
func Classify(target string) Kind {
	if target == "" {
		return KindRemoteUser
	}

	if _, err := os.Stat(target); err == nil {
		return KindLocal
	}

	trimmed := normalizeRemote(target)

	if strings.Contains(trimmed, hostDomain) {
		if len(remoteSegments(trimmed)) >= 3 {
			return KindRemoteRepo
		}
		return KindRemoteUser
	}

	if strings.Contains(trimmed, "/") {
		return KindRemoteRepo
	}

	return KindRemoteUser
}

// Username extracts the username from a user-kind target: either a bare
// name or a profile URL's last segment.
func Username(target string) string {
	segments := remoteSegments(normalizeRemote(target))
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// normalizeRemote strips the noise that must not affect classification or
// naming: a trailing slash and a .git suffix.
func normalizeRemote(target string) string {
	t := strings.TrimRight(target, "/")
	t = strings.TrimSuffix(t, ".git")
	return t
}

// remoteSegments splits a remote target on '/' and discards scheme tokens
// and empty segments.
func remoteSegments(target string) []string {
	parts := strings.Split(target, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "http:" || p == "https:" {
			continue
		}
		segments = append(segments, p)
	}
	return segments
}
