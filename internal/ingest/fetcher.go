// Package ingest flattens codebase targets into normalized textual digests.
//
// The pipeline for a single target is strictly sequential: classify, resolve
// scope, fetch, extract metrics, synthesize a name. User-level targets fan
// out over a bounded worker pool instead; see Service.RunBatch.
package ingest

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/repodigest/internal/target"
)

// Fetcher retrieves one target's raw content.
type Fetcher interface {
	Fetch(ctx context.Context, target string, opts FetchOptions) (*Payload, error)
}

// Payload is the raw fetched content of one target.
type Payload struct {
	// Summary is semi-structured text describing the fetch (target,
	// branch, file and token counts). Its exact layout is not a
	// committed contract; see ExtractMetrics.
	Summary string

	// Tree is an indented listing of the ingested file tree.
	Tree string

	// Content is the flattened file contents with per-file banners.
	Content string
}

// FetchOptions restrict what a fetch ingests.
type FetchOptions struct {
	// IncludePatterns, when non-empty, limit ingestion to matching
	// root-relative paths.
	IncludePatterns []string

	// ExcludePatterns drop matching paths. Excludes win over includes.
	ExcludePatterns []string

	// IncludeIgnored disables gitignore-based exclusion.
	IncludeIgnored bool

	// MaxFileSize is the per-file byte cap; 0 means the 1MB default.
	MaxFileSize int64
}

// FetchError wraps an upstream fetch failure with its target. Fatal for a
// single-target run; isolated to one item in a batch.
type FetchError struct {
	Target string
	Err    error
}

// Error implements error.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Target, e.Err)
}

// Unwrap returns the upstream error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Metrics summarizes one ingested target.
type Metrics struct {
	FileCount  uint64
	TokenCount uint64

	// SizeBytes is the byte length of the final serialized report, set
	// by the caller that renders it. Never derived from upstream fields.
	SizeBytes uint64
}

// Result is a completed ingestion. Create-once, format-many: formatters
// treat it as read-only.
type Result struct {
	Target        string
	Kind          target.Kind
	Summary       string
	Tree          string
	Content       string
	Metrics       Metrics
	SuggestedName string
}
