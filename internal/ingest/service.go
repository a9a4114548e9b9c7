package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fyrsmithlabs/repodigest/internal/logging"
	"github.com/fyrsmithlabs/repodigest/internal/scope"
	"github.com/fyrsmithlabs/repodigest/internal/target"
	"go.uber.org/zap"
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// CloneTimeout bounds each remote clone; zero keeps the fetcher default.
	CloneTimeout time.Duration

	// TempRoot overrides where remote clones land; empty means the
	// system temporary directory.
	TempRoot string

	// Tokenizer overrides the token estimator; nil selects the default.
	Tokenizer Tokenizer
}

// Service runs the full ingestion pipeline for one target: classify, resolve
// scope, fetch, extract metrics, synthesize a name.
type Service struct {
	log    *logging.Logger
	local  Fetcher
	remote Fetcher
	tok    Tokenizer
}

// NewService wires a Service with real fetchers.
func NewService(log *logging.Logger, opts ServiceOptions) *Service {
	if log == nil {
		log = logging.Nop()
	}
	log = log.Named("ingest")

	local := NewLocalFetcher(log)
	remote := NewRemoteFetcher(log, local)
	remote.CloneTimeout = opts.CloneTimeout
	remote.TempRoot = opts.TempRoot

	tok := opts.Tokenizer
	if tok == nil {
		tok = DefaultTokenizer()
	}

	return &Service{
		log:    log,
		local:  local,
		remote: remote,
		tok:    tok,
	}
}

// Ingest runs one target through the pipeline. User-level targets are
// rejected here; they require repository enumeration first (see RunBatch).
func (s *Service) Ingest(ctx context.Context, rawTarget string, opts FetchOptions) (*Result, error) {
	kind := target.Classify(rawTarget)

	s.log.Debug(ctx, "classified target",
		zap.String("target", rawTarget),
		zap.String("kind", kind.String()))

	switch kind {
	case target.KindLocal:
		return s.ingestLocal(ctx, rawTarget, opts)
	case target.KindRemoteRepo:
		return s.ingestRemote(ctx, rawTarget, opts)
	case target.KindRemoteUser:
		return nil, fmt.Errorf("target %q is a user, not a repository; use batch ingestion", rawTarget)
	default:
		return nil, fmt.Errorf("cannot classify target %q", rawTarget)
	}
}

// ingestLocal fetches a local path. When the path sits inside a larger git
// worktree, the fetch runs from the worktree root restricted to the target's
// relative path, so the digest carries the repository's context.
func (s *Service) ingestLocal(ctx context.Context, rawTarget string, opts FetchOptions) (*Result, error) {
	sc, err := scope.Resolve(rawTarget)
	if err != nil {
		// Classification already confirmed the path exists; a resolution
		// failure here means git metadata trouble, not a missing target.
		s.log.Warn(ctx, "scope resolution failed, ingesting unrestricted",
			zap.String("target", rawTarget), zap.Error(err))
		sc = nil
	}

	fetchPath := rawTarget
	if sc != nil {
		fetchPath = sc.RootPath
		rel := filepath.ToSlash(sc.RelativePath)
		opts.IncludePatterns = append(opts.IncludePatterns, rel, rel+"/**")

		s.log.Debug(ctx, "restricting to worktree subpath",
			zap.String("root", sc.RootPath),
			zap.String("subpath", rel))
	}

	payload, err := s.local.Fetch(ctx, fetchPath, opts)
	if err != nil {
		return nil, err
	}

	return s.finish(rawTarget, target.KindLocal, sc, payload), nil
}

// ingestRemote clones and flattens a remote repository target.
func (s *Service) ingestRemote(ctx context.Context, rawTarget string, opts FetchOptions) (*Result, error) {
	payload, err := s.remote.Fetch(ctx, rawTarget, opts)
	if err != nil {
		return nil, err
	}
	return s.finish(rawTarget, target.KindRemoteRepo, nil, payload), nil
}

// finish assembles the Result from a fetched payload.
func (s *Service) finish(rawTarget string, kind target.Kind, sc *scope.Context, payload *Payload) *Result {
	return &Result{
		Target:        rawTarget,
		Kind:          kind,
		Summary:       payload.Summary,
		Tree:          payload.Tree,
		Content:       payload.Content,
		Metrics:       ExtractMetrics(payload.Summary, payload.Content, s.tok),
		SuggestedName: target.SynthesizeName(rawTarget, sc),
	}
}
