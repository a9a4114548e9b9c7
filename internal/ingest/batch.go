package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fyrsmithlabs/repodigest/internal/logging"
	"github.com/fyrsmithlabs/repodigest/internal/target"
	"go.uber.org/zap"
)

// defaultBatchConcurrency caps simultaneous repository ingestions.
const defaultBatchConcurrency = 5

// repoBanner separates repositories in a combined digest.
const repoBanner = "=============================="

// Mode selects how a batch's digests are assembled.
type Mode int

const (
	// ModeCombined merges every successful digest into one document.
	ModeCombined Mode = iota

	// ModeSeparate leaves one Result per repository.
	ModeSeparate
)

// RepoRef identifies one repository in a batch.
type RepoRef struct {
	Name     string
	CloneURL string
}

// ItemError records one repository's failure without aborting the batch.
type ItemError struct {
	Name string
	Err  string
}

// Outcome is the aggregate of a batch run. Succeeded and Failed are in
// completion order, not submission order.
type Outcome struct {
	Succeeded []*Result
	Failed    []ItemError

	// Combined is the merged digest in ModeCombined, nil otherwise.
	Combined *Result
}

// BatchOptions configures a batch run.
type BatchOptions struct {
	// Concurrency caps simultaneous ingestions; zero or negative selects
	// the default of 5.
	Concurrency int

	Mode Mode

	// Fetch applies to every repository in the batch.
	Fetch FetchOptions

	// OnItemDone, when set, is invoked once per repository as it
	// completes, from the worker goroutine that finished it.
	OnItemDone func(name string, err error)
}

// batchItem carries one worker's outcome to the collector.
type batchItem struct {
	name string
	res  *Result
	err  error
}

// RunBatch ingests every repository over a bounded worker pool. A failing
// repository never takes down the batch: its error is recorded and the rest
// proceed. An empty repository list returns an empty Outcome immediately.
func (s *Service) RunBatch(ctx context.Context, user string, repos []RepoRef, opts BatchOptions) (*Outcome, error) {
	if len(repos) == 0 {
		s.log.Info(ctx, "nothing to ingest", zap.String("user", user))
		return &Outcome{}, nil
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	s.log.Info(ctx, "starting batch ingestion",
		zap.String("user", user),
		zap.Int("repos", len(repos)),
		zap.Int("concurrency", concurrency))

	sem := make(chan struct{}, concurrency)
	results := make(chan batchItem, len(repos))

	var wg sync.WaitGroup
	for _, repo := range repos {
		wg.Add(1)
		go func(repo RepoRef) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := s.ingestBatchItem(ctx, repo, opts.Fetch)
			if opts.OnItemDone != nil {
				opts.OnItemDone(repo.Name, err)
			}
			results <- batchItem{name: repo.Name, res: res, err: err}
		}(repo)
	}

	wg.Wait()
	close(results)

	out := &Outcome{}
	for item := range results {
		if item.err != nil {
			s.log.Warn(ctx, "repository ingestion failed",
				zap.String("repo", item.name),
				zap.Error(item.err))
			out.Failed = append(out.Failed, ItemError{Name: item.name, Err: item.err.Error()})
			continue
		}
		out.Succeeded = append(out.Succeeded, item.res)
	}

	if opts.Mode == ModeCombined {
		out.Combined = combineResults(user, out.Succeeded)
	}

	s.log.Info(ctx, "batch ingestion finished",
		zap.String("user", user),
		zap.Int("succeeded", len(out.Succeeded)),
		zap.Int("failed", len(out.Failed)))

	return out, nil
}

// ingestBatchItem ingests one repository. A panic in the fetch path is
// converted to an error so it stays contained to this item.
func (s *Service) ingestBatchItem(ctx context.Context, repo RepoRef, fopts FetchOptions) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("panic ingesting %s: %v", repo.Name, r)
		}
	}()

	tgt := repo.CloneURL
	if tgt == "" {
		tgt = repo.Name
	}

	ctx = logging.WithRepo(ctx, repo.Name)

	payload, err := s.remote.Fetch(ctx, tgt, fopts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Target:        tgt,
		Kind:          target.KindRemoteRepo,
		Summary:       payload.Summary,
		Tree:          payload.Tree,
		Content:       payload.Content,
		Metrics:       ExtractMetrics(payload.Summary, payload.Content, s.tok),
		SuggestedName: repo.Name,
	}, nil
}

// combineResults merges successful digests into one document named after the
// user, with a banner introducing each repository's section.
func combineResults(user string, results []*Result) *Result {
	var (
		content strings.Builder
		tree    strings.Builder
		files   uint64
		tokens  uint64
	)

	summaryLines := []string{
		"User: " + user,
		fmt.Sprintf("Repos: %d", len(results)),
	}

	for _, r := range results {
		content.WriteString(repoBanner)
		content.WriteString("\nREPO: ")
		content.WriteString(r.SuggestedName)
		content.WriteString("\n")
		content.WriteString(repoBanner)
		content.WriteString("\n")
		content.WriteString(r.Content)
		if !strings.HasSuffix(r.Content, "\n") {
			content.WriteString("\n")
		}
		content.WriteString("\n")

		tree.WriteString(r.Tree)

		files += r.Metrics.FileCount
		tokens += r.Metrics.TokenCount

		summaryLines = append(summaryLines,
			fmt.Sprintf("- %s: %d chars", r.SuggestedName, len(r.Content)))
	}

	summaryLines = append(summaryLines,
		fmt.Sprintf("Files analyzed: %d", files),
		fmt.Sprintf("Estimated tokens: %s", HumanTokens(tokens)))

	return &Result{
		Target:        user,
		Kind:          target.KindRemoteUser,
		Summary:       strings.Join(summaryLines, "\n") + "\n",
		Tree:          tree.String(),
		Content:       content.String(),
		Metrics:       Metrics{FileCount: files, TokenCount: tokens},
		SuggestedName: user,
	}
}
