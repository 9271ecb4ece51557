// Package ioutils provides file system utilities for the manga-downloader.
//
// This package contains:
//   - The staging workspace lifecycle (Stager)
//   - File writing
//   - Filename sanitization
//   - Directory creation
package ioutils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrWorkspaceExists is returned when a work's staging directory is already present.
//
// A leftover workspace must be removed by Sweep before the work is staged again.
var ErrWorkspaceExists = errors.New("workspace already exists")

// Workspace is the staging tree of one work.
//
// It is owned by a single work's processing: created before downloads
// begin and removed once the output document is finalized or abandoned.
type Workspace struct {
	// RootDir is the work's staging directory.
	RootDir string

	// ChapterDirs maps chapter index to its staging directory.
	ChapterDirs map[int]string
}

// Stager manages workspaces under a shared staging root.
//
// Example:
//
//	stager := NewStager("/home/user/.cache/manga-dl/staging")
//	stager.Sweep() // recover from a previous interrupted run
//
//	ws, err := stager.PrepareWorkspace("one-piece")
//	dir, err := stager.PrepareChapterDir(ws, 0)
//	// ... download into dir ...
//	err = stager.Cleanup(ws)
type Stager struct {
	root string
}

// NewStager creates a Stager rooted at root.
func NewStager(root string) *Stager {
	return &Stager{root: root}
}

// Root returns the shared staging root.
func (s *Stager) Root() string {
	return s.root
}

// Sweep removes every entry under the staging root left by previous runs.
//
// Sweep is best effort: a missing root, or an entry that cannot be
// removed, is skipped silently. It returns the number of entries removed.
func (s *Stager) Sweep() int {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err == nil {
			removed++
		}
	}
	return removed
}

// PrepareWorkspace creates the staging directory of the named work.
//
// Returns ErrWorkspaceExists if the directory is already present.
func (s *Stager) PrepareWorkspace(name string) (*Workspace, error) {
	if err := EnsureDir(s.root); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}

	dir := filepath.Join(s.root, SanitizeFileName(name))
	if err := os.Mkdir(dir, 0755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrWorkspaceExists)
		}
		return nil, err
	}

	return &Workspace{RootDir: dir, ChapterDirs: make(map[int]string)}, nil
}

// PrepareChapterDir creates the staging subdirectory of a chapter.
//
// It is idempotent: created reports whether the directory was new, and an
// already existing directory is not an error. Any other failure is returned.
func (s *Stager) PrepareChapterDir(ws *Workspace, chapterIndex int) (dir string, created bool, err error) {
	dir = filepath.Join(ws.RootDir, strconv.Itoa(chapterIndex))
	err = os.Mkdir(dir, 0755)
	switch {
	case err == nil:
		created = true
	case errors.Is(err, os.ErrExist):
		info, statErr := os.Stat(dir)
		if statErr != nil {
			return "", false, statErr
		}
		if !info.IsDir() {
			return "", false, fmt.Errorf("%s exists and is not a directory", dir)
		}
	default:
		return "", false, err
	}

	ws.ChapterDirs[chapterIndex] = dir
	return dir, created, nil
}

// Cleanup removes the whole workspace tree.
func (s *Stager) Cleanup(ws *Workspace) error {
	if ws == nil {
		return nil
	}
	return os.RemoveAll(ws.RootDir)
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Parameters:
//   - ctx: Nothing is written once ctx is done
//   - path: File path to write to
//   - data: Bytes to write
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("fate/zero")  // Returns "fate_zero"
//	SanitizeFileName("dr.-stone.") // Returns "dr.-stone"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = whitespace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
