package download

import (
	"fmt"

	"github.com/handiism/manga-downloader/internal/model"
)

// Stage names a step of a work's processing.
type Stage string

const (
	StageResolve   Stage = "resolve"
	StageDiscover  Stage = "discover"
	StageWorkspace Stage = "workspace"
	StageDownload  Stage = "download"
	StageAssemble  Stage = "assemble"
)

// StageError is the terminal failure of one work.
//
// It names the work and the stage that failed and wraps the cause, so
// callers can still test for site.ErrWorkNotFound, *DownloadError and the
// like with errors.Is / errors.As.
type StageError struct {
	Work  string
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Work, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// DownloadError reports the page whose download failed.
type DownloadError struct {
	Page model.Page
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("chapter %d page %d (%s): %v", e.Page.ChapterIndex+1, e.Page.Number, e.Page.SourceURL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
