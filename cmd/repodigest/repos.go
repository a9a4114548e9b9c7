package main

import (
	"fmt"

	"github.com/fyrsmithlabs/repodigest/internal/github"
	"github.com/fyrsmithlabs/repodigest/internal/target"
	"github.com/fyrsmithlabs/repodigest/internal/ui"
	"github.com/spf13/cobra"
)

var flagReposAll bool

var reposCmd = &cobra.Command{
	Use:   "repos <user>",
	Short: "List a user's repositories",
	Long: `Repos lists the repositories batch ingestion would process for a user.

Forks and the user's profile repository are filtered out unless --all is set.

Examples:
  repodigest repos octocat
  repodigest repos octocat --all`,
	Args: cobra.ExactArgs(1),
	RunE: runRepos,
}

func init() {
	reposCmd.Flags().BoolVar(&flagReposAll, "all", false, "include forks and the profile repository")
	reposCmd.Flags().StringVar(&flagToken, "token", "", "GitHub API token (overrides config)")
}

func runRepos(cmd *cobra.Command, args []string) error {
	user := target.Username(args[0])
	if user == "" {
		return fmt.Errorf("cannot extract username from %q", args[0])
	}

	gh := github.NewClient(log, resolveToken())

	repos, err := gh.ListRepos(cmd.Context(), user)
	if err != nil {
		return err
	}

	if !flagReposAll {
		repos = github.FilterSources(user, repos)
	}

	ui.Header(fmt.Sprintf("Repositories of %s", user))
	for _, r := range repos {
		marker := ""
		if r.Fork {
			marker = ui.DimText(" (fork)")
		}
		fmt.Printf("%s%s\n", r.Name, marker)
	}
	fmt.Printf("\n%s %d\n", ui.Label("Total:"), len(repos))

	return nil
}
