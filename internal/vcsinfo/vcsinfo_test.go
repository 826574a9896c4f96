package vcsinfo

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

var testSignature = object.Signature{
	Name:  "Test",
	Email: "test@example.com",
	When:  time.Unix(0, 0),
}

func TestLoad_NonRepoDegradesSilently(t *testing.T) {
	dir := t.TempDir()
	info := Load(dir)
	assert.False(t, info.IsRepo)
	assert.Empty(t, info.Branch)
	assert.Empty(t, info.CommitHash)
}

func TestLoad_CleanRepo(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	filePath := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(filePath, []byte("hello\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &testSignature,
	})
	require.NoError(t, err)

	info := Load(dir)
	assert.True(t, info.IsRepo)
	assert.NotEmpty(t, info.CommitHash)
	assert.False(t, info.Dirty)

	require.NoError(t, os.WriteFile(filePath, []byte("hello again\n"), 0o644))
	dirty := Load(dir)
	assert.True(t, dirty.Dirty)
}
