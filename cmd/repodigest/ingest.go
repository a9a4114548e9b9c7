package main

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/repodigest/internal/config"
	"github.com/fyrsmithlabs/repodigest/internal/github"
	"github.com/fyrsmithlabs/repodigest/internal/ingest"
	"github.com/fyrsmithlabs/repodigest/internal/logging"
	"github.com/fyrsmithlabs/repodigest/internal/report"
	"github.com/fyrsmithlabs/repodigest/internal/target"
	"github.com/fyrsmithlabs/repodigest/internal/ui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagOutput         string
	flagFormat         string
	flagSeparate       bool
	flagConcurrency    int
	flagInclude        []string
	flagExclude        []string
	flagIncludeIgnored bool
	flagToken          string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <target>",
	Short: "Ingest a local path, remote repository, or user",
	Long: `Ingest flattens a target into a digest file.

The target is classified automatically:
  - an existing filesystem path is ingested locally
  - a repository URL or owner/repo shorthand is cloned and ingested
  - a username ingests all of the user's source repositories

Examples:
  # Ingest the current directory
  repodigest ingest .

  # Ingest a remote repository
  repodigest ingest https://github.com/golang/go

  # Ingest only a subdirectory of a repository
  repodigest ingest https://github.com/golang/go/tree/master/src/fmt

  # Ingest every repository of a user, one combined digest
  repodigest ingest octocat

  # One digest file per repository instead
  repodigest ingest octocat --separate`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output directory (default from config)")
	ingestCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "output format: txt, md, xml (default from config)")
	ingestCmd.Flags().BoolVar(&flagSeparate, "separate", false, "write one digest per repository for user targets")
	ingestCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "parallel repository ingestions for user targets")
	ingestCmd.Flags().StringSliceVarP(&flagInclude, "include", "i", nil, "glob patterns to include")
	ingestCmd.Flags().StringSliceVarP(&flagExclude, "exclude", "e", nil, "glob patterns to exclude")
	ingestCmd.Flags().BoolVar(&flagIncludeIgnored, "include-ignored", false, "ingest files matched by ignore files")
	ingestCmd.Flags().StringVar(&flagToken, "token", "", "GitHub API token (overrides config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := logging.WithRunID(cmd.Context(), uuid.NewString())
	rawTarget := args[0]

	format, err := resolveFormat()
	if err != nil {
		return err
	}

	svc := ingest.NewService(log, ingest.ServiceOptions{
		CloneTimeout: cfg.Ingest.CloneTimeout.Duration(),
	})

	opts := ingest.FetchOptions{
		IncludePatterns: flagInclude,
		ExcludePatterns: flagExclude,
		IncludeIgnored:  flagIncludeIgnored || cfg.Ingest.IncludeIgnored,
		MaxFileSize:     cfg.Ingest.MaxFileSize,
	}

	writer := &report.Writer{Dir: resolveOutputDir()}

	if target.Classify(rawTarget) == target.KindRemoteUser {
		return runUserBatch(ctx, svc, writer, rawTarget, format, opts)
	}

	res, err := svc.Ingest(ctx, rawTarget, opts)
	if err != nil {
		return err
	}

	path, err := persist(writer, res, format)
	if err != nil {
		return err
	}

	printDigestPanel(res, path)
	return nil
}

// runUserBatch enumerates a user's repositories and ingests them over the
// worker pool.
func runUserBatch(ctx context.Context, svc *ingest.Service, writer *report.Writer, rawTarget string, format report.Format, opts ingest.FetchOptions) error {
	user := target.Username(rawTarget)
	if user == "" {
		return fmt.Errorf("cannot extract username from %q", rawTarget)
	}

	gh := github.NewClient(log, resolveToken())

	log.Debug(ctx, "listing repositories",
		zap.String("user", user),
		logging.Secret("token", resolveToken()))

	repos, err := gh.ListRepos(ctx, user)
	if err != nil {
		return err
	}

	sources := github.FilterSources(user, repos)
	if len(sources) == 0 {
		ui.Warningf("%s has no source repositories to ingest", user)
		return nil
	}

	refs := make([]ingest.RepoRef, 0, len(sources))
	for _, r := range sources {
		refs = append(refs, ingest.RepoRef{Name: r.Name, CloneURL: r.CloneURL})
	}

	mode := ingest.ModeCombined
	if flagSeparate {
		mode = ingest.ModeSeparate
	}

	bar := newProgressBar(int64(len(refs)), "ingesting repositories")

	out, err := svc.RunBatch(ctx, user, refs, ingest.BatchOptions{
		Concurrency: resolveConcurrency(),
		Mode:        mode,
		Fetch:       opts,
		OnItemDone: func(name string, err error) {
			if bar != nil {
				_ = bar.Add(1)
			}
		},
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	if mode == ingest.ModeCombined {
		if out.Combined != nil && len(out.Succeeded) > 0 {
			path, err := persist(writer, out.Combined, format)
			if err != nil {
				return err
			}
			ui.Successf("combined digest: %s", ui.DimText(path))
		}
	} else {
		for _, res := range out.Succeeded {
			path, err := persist(writer, res, format)
			if err != nil {
				return err
			}
			ui.Successf("%s: %s", res.SuggestedName, ui.DimText(path))
		}
	}

	for _, f := range out.Failed {
		ui.Warningf("%s: %s", f.Name, f.Err)
	}

	ui.Infof("%d ingested, %d failed", len(out.Succeeded), len(out.Failed))
	if len(out.Succeeded) == 0 {
		return fmt.Errorf("no repository of %s could be ingested", user)
	}
	return nil
}

// persist renders res, records the rendered size, and writes the file.
func persist(writer *report.Writer, res *ingest.Result, format report.Format) (string, error) {
	rendered := report.Render(res, format)
	res.Metrics.SizeBytes = uint64(len(rendered))
	return writer.Write(res.SuggestedName, rendered, format)
}

// printDigestPanel reports one finished digest on the terminal.
func printDigestPanel(res *ingest.Result, path string) {
	ui.Successf("digest written: %s", ui.DimText(path))
	fmt.Printf("%s %s\n", ui.Label("Name:"), res.SuggestedName)
	fmt.Printf("%s %d\n", ui.Label("Files:"), res.Metrics.FileCount)
	fmt.Printf("%s %s\n", ui.Label("Tokens:"), ingest.HumanTokens(res.Metrics.TokenCount))
	fmt.Printf("%s %s\n", ui.Label("Size:"), ingest.HumanBytes(res.Metrics.SizeBytes))
}

func resolveOutputDir() string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.Dir
}

func resolveFormat() (report.Format, error) {
	name := flagFormat
	if name == "" {
		name = cfg.Output.Format
	}
	return report.ParseFormat(name)
}

func resolveConcurrency() int {
	if flagConcurrency > 0 {
		return flagConcurrency
	}
	return cfg.Ingest.Concurrency
}

func resolveToken() config.Secret {
	if flagToken != "" {
		return config.Secret(flagToken)
	}
	return cfg.GitHub.Token
}
