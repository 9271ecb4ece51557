package ioutils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"one-piece", "one-piece"},
		{"fate/zero", "fate_zero"},
		{"what?", "what_"},
		{"dr.-stone.", "dr.-stone"},
		{"trailing   ", "trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.input))
		})
	}
}

func TestStager_Lifecycle(t *testing.T) {
	root := filepath.Join(t.TempDir(), "staging")
	stager := NewStager(root)

	ws, err := stager.PrepareWorkspace("demo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "demo"), ws.RootDir)

	dir, created, err := stager.PrepareChapterDir(ws, 0)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, filepath.Join(ws.RootDir, "0"), dir)

	dir2, created, err := stager.PrepareChapterDir(ws, 0)
	require.NoError(t, err, "chapter directory creation must be idempotent")
	assert.False(t, created)
	assert.Equal(t, dir, dir2)
	assert.Equal(t, dir, ws.ChapterDirs[0])

	_, _, err = stager.PrepareChapterDir(ws, 1)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.jpg"), []byte("x"), 0644))

	require.NoError(t, stager.Cleanup(ws))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging root must be empty after cleanup")
}

func TestStager_PrepareWorkspaceExists(t *testing.T) {
	root := t.TempDir()
	stager := NewStager(root)

	_, err := stager.PrepareWorkspace("demo")
	require.NoError(t, err)

	_, err = stager.PrepareWorkspace("demo")
	assert.True(t, errors.Is(err, ErrWorkspaceExists), "got %v", err)
}

func TestStager_Sweep(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "old-work", "0"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "old-work", "0", "1.jpg"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "other"), 0755))

	stager := NewStager(root)
	assert.Equal(t, 2, stager.Sweep())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = stager.PrepareWorkspace("old-work")
	assert.NoError(t, err, "a swept workspace can be prepared again")
}

func TestStager_SweepMissingRoot(t *testing.T) {
	stager := NewStager(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Equal(t, 0, stager.Sweep())
}

func TestStager_CleanupNil(t *testing.T) {
	assert.NoError(t, NewStager(t.TempDir()).Cleanup(nil))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "title.png")
	require.NoError(t, WriteFile(context.Background(), path, []byte("png")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
}

func TestWriteFileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "title.png")
	assert.ErrorIs(t, WriteFile(ctx, path, []byte("png")), context.Canceled)
	assert.NoFileExists(t, path)
}
