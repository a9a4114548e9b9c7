package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fyrsmithlabs/repodigest/internal/target"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestRepo(t *testing.T, dir string) {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)

	_, err = wt.Add("README.md")
	require.NoError(t, err)

	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func TestIngestLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello World\n"), 0644))

	svc := newTestService(&fakeFetcher{})
	res, err := svc.Ingest(context.Background(), path, FetchOptions{})
	require.NoError(t, err)

	assert.Equal(t, target.KindLocal, res.Kind)
	assert.Equal(t, "notes", res.SuggestedName)
	assert.Equal(t, uint64(1), res.Metrics.FileCount)
	assert.Contains(t, res.Content, "Hello World")
}

func TestIngestScopedSubdirectory(t *testing.T) {
	dir := t.TempDir()
	initTestRepo(t, dir)

	sub := filepath.Join(dir, "services", "auth")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "auth.go"), []byte("package auth\n"), 0644))

	svc := newTestService(&fakeFetcher{})
	res, err := svc.Ingest(context.Background(), sub, FetchOptions{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(dir)+"--services-auth", res.SuggestedName)
	assert.Contains(t, res.Content, "FILE: services/auth/auth.go")
	assert.NotContains(t, res.Content, "README.md", "ingestion restricted to the subpath")
	assert.NotContains(t, res.Tree, "README.md", "tree mirrors the restriction")
}

func TestIngestRemoteDelegates(t *testing.T) {
	svc := newTestService(&fakeFetcher{})

	res, err := svc.Ingest(context.Background(), "https://github.com/acme/widget", FetchOptions{})
	require.NoError(t, err)

	assert.Equal(t, target.KindRemoteRepo, res.Kind)
	assert.Equal(t, "widget", res.SuggestedName)
	assert.Equal(t, uint64(2), res.Metrics.FileCount)
}

func TestIngestRemoteFailure(t *testing.T) {
	svc := newTestService(&fakeFetcher{
		fail: map[string]bool{"https://github.com/acme/broken": true},
	})

	_, err := svc.Ingest(context.Background(), "https://github.com/acme/broken", FetchOptions{})

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
}

func TestIngestUserTargetRejected(t *testing.T) {
	svc := newTestService(&fakeFetcher{})

	_, err := svc.Ingest(context.Background(), "https://github.com/octocat", FetchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch")
}
