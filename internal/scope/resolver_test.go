package scope

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a git repository with one commit at dir.
func initRepo(t *testing.T, dir string) {
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

func TestResolveOutsideRepository(t *testing.T) {
	dir := t.TempDir()

	sc, err := Resolve(dir)
	require.NoError(t, err)
	assert.Nil(t, sc, "no false-positive scope detection")
}

func TestResolveAtRepositoryRoot(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	sc, err := Resolve(dir)
	require.NoError(t, err)
	assert.Nil(t, sc, "root equals input: no restriction needed")
}

func TestResolveSubdirectory(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	sub := filepath.Join(dir, "services", "auth")
	require.NoError(t, os.MkdirAll(sub, 0755))

	sc, err := Resolve(sub)
	require.NoError(t, err)
	require.NotNil(t, sc)

	assert.Equal(t, filepath.Base(dir), sc.RootName)
	assert.Equal(t, filepath.Join("services", "auth"), sc.RelativePath)

	assert.Equal(t, dir, sc.RootPath)
}

func TestResolveFileAlwaysScoped(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	// A file at the root still yields a relative path: a file is never
	// itself the root.
	sc, err := Resolve(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	require.NotNil(t, sc)

	assert.Equal(t, filepath.Base(dir), sc.RootName)
	assert.Equal(t, "README.md", sc.RelativePath)
}

func TestResolveNonexistentPath(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestBranch(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	branch := Branch(dir)
	assert.NotEmpty(t, branch) // master or main depending on defaults

	assert.Empty(t, Branch(t.TempDir()))
}
