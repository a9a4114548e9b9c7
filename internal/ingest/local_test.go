package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestLocalFetchSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello World\n"), 0644))

	f := NewLocalFetcher(nil)
	payload, err := f.Fetch(context.Background(), path, FetchOptions{})
	require.NoError(t, err)

	assert.Contains(t, payload.Summary, "Files analyzed: 1")
	assert.Contains(t, payload.Content, "Hello World")
	assert.Contains(t, payload.Content, "FILE: hello.txt")
	assert.Equal(t, "hello.txt\n", payload.Tree)

	m := ExtractMetrics(payload.Summary, payload.Content, HeuristicTokenizer{})
	assert.Equal(t, uint64(1), m.FileCount)
}

func TestLocalFetchSingleBinaryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x01}, 0644))

	f := NewLocalFetcher(nil)
	_, err := f.Fetch(context.Background(), path, FetchOptions{})
	assert.Error(t, err)

	var fe *FetchError
	assert.ErrorAs(t, err, &fe)
}

func TestLocalFetchDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"main.go":           "package main\n",
		"docs/guide.md":     "# Guide\n",
		"node_modules/x.js": "ignored\n",
		".git/config":       "[core]\n",
		"assets/logo.bin":   string([]byte{0xff, 0xfe, 0x00}),
	})

	f := NewLocalFetcher(nil)
	payload, err := f.Fetch(context.Background(), dir, FetchOptions{})
	require.NoError(t, err)

	assert.Contains(t, payload.Content, "FILE: main.go")
	assert.Contains(t, payload.Content, "FILE: docs/guide.md")
	assert.NotContains(t, payload.Content, "node_modules")
	assert.NotContains(t, payload.Content, ".git")
	assert.NotContains(t, payload.Content, "logo.bin", "binary files are skipped")

	assert.Contains(t, payload.Summary, "Files analyzed: 2")

	// Tree is rooted at the directory name with indented children.
	assert.True(t, strings.HasPrefix(payload.Tree, filepath.Base(dir)+"/\n"))
	assert.Contains(t, payload.Tree, "    main.go\n")
	assert.Contains(t, payload.Tree, "        guide.md\n")

	// A directory holding only skipped files never enters the tree.
	assert.NotContains(t, payload.Tree, "assets")
}

func TestLocalFetchIncludeRestrictsTree(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"services/auth/auth.go": "package auth\n",
		"unrelated/web/app.go":  "package web\n",
		"docs/guide.md":         "# guide\n",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty", "nested"), 0755))

	f := NewLocalFetcher(nil)
	payload, err := f.Fetch(context.Background(), dir, FetchOptions{
		IncludePatterns: []string{"services/auth", "services/auth/**"},
	})
	require.NoError(t, err)

	assert.Contains(t, payload.Content, "FILE: services/auth/auth.go")
	assert.NotContains(t, payload.Content, "app.go")

	// The tree mirrors the restriction: only the ingested subtree appears.
	assert.Contains(t, payload.Tree, "    services/\n")
	assert.Contains(t, payload.Tree, "        auth/\n")
	assert.Contains(t, payload.Tree, "            auth.go\n")
	assert.NotContains(t, payload.Tree, "unrelated")
	assert.NotContains(t, payload.Tree, "docs")
	assert.NotContains(t, payload.Tree, "empty")
}

func TestMatchesAnyAnchoring(t *testing.T) {
	// Plain prefix patterns are anchored at the root.
	assert.True(t, matchesAny([]string{"docs/api/**"}, "docs/api/spec.md"))
	assert.True(t, matchesAny([]string{"docs/api/**"}, "docs/api"))
	assert.False(t, matchesAny([]string{"docs/api/**"}, "x/docs/api/spec.md"))

	// gitignore-derived bare names float to any depth.
	assert.True(t, matchesAny([]string{"**/node_modules/**"}, "a/node_modules/b.js"))
	assert.True(t, matchesAny([]string{"**/config.yaml"}, "a/b/config.yaml"))
	assert.False(t, matchesAny([]string{"**/node_modules/**"}, "a/modules/b.js"))
}

func TestLocalFetchGitignore(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".gitignore": "*.log\nsecrets/\n",
		"app.go":     "package app\n",
		"debug.log":  "noise\n",
		"secrets/k":  "hunter2\n",
	})

	f := NewLocalFetcher(nil)

	payload, err := f.Fetch(context.Background(), dir, FetchOptions{})
	require.NoError(t, err)
	assert.NotContains(t, payload.Content, "debug.log")
	assert.NotContains(t, payload.Content, "hunter2")
	assert.Contains(t, payload.Content, "FILE: app.go")

	payload, err = f.Fetch(context.Background(), dir, FetchOptions{IncludeIgnored: true})
	require.NoError(t, err)
	assert.Contains(t, payload.Content, "noise")
	assert.Contains(t, payload.Content, "hunter2")
}

func TestLocalFetchIncludeExclude(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"src/a.go":      "package a\n",
		"src/a_test.go": "package a\n",
		"README.md":     "# readme\n",
	})

	f := NewLocalFetcher(nil)

	payload, err := f.Fetch(context.Background(), dir, FetchOptions{
		IncludePatterns: []string{"src/**"},
	})
	require.NoError(t, err)
	assert.Contains(t, payload.Content, "FILE: src/a.go")
	assert.NotContains(t, payload.Content, "README.md")

	// Excludes beat includes.
	payload, err = f.Fetch(context.Background(), dir, FetchOptions{
		IncludePatterns: []string{"src/**"},
		ExcludePatterns: []string{"*_test.go"},
	})
	require.NoError(t, err)
	assert.Contains(t, payload.Content, "FILE: src/a.go")
	assert.NotContains(t, payload.Content, "a_test.go")
}

func TestLocalFetchMaxFileSize(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"small.txt": "ok\n",
		"big.txt":   strings.Repeat("x", 128) + "\n",
	})

	f := NewLocalFetcher(nil)
	payload, err := f.Fetch(context.Background(), dir, FetchOptions{MaxFileSize: 64})
	require.NoError(t, err)

	assert.Contains(t, payload.Content, "FILE: small.txt")
	assert.NotContains(t, payload.Content, "FILE: big.txt")
	assert.Contains(t, payload.Summary, "Files analyzed: 1")
}

func TestLocalFetchMissingPath(t *testing.T) {
	f := NewLocalFetcher(nil)
	_, err := f.Fetch(context.Background(), filepath.Join(t.TempDir(), "gone"), FetchOptions{})

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Target, "gone")
}

func TestLocalFetchCancelled(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "a\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewLocalFetcher(nil)
	_, err := f.Fetch(ctx, dir, FetchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
