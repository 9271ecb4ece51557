package model

import (
	"path/filepath"
	"strconv"
)

// Page represents a single downloadable page image within a chapter.
//
// Page contains:
//   - The chapter it belongs to (by index)
//   - The number embedded in its URL, which defines its position
//   - The source URL to download from
//   - The computed staging path where the image is written
//
// The staging path is deterministic: it is derived from the chapter's
// staging directory and the page number, so two pages of the same chapter
// never share a path and pages of different chapters never share a
// directory.
//
// Example:
//
//	page := NewPage(0, 10, "http://host/123/c1/10.jpg", "/staging/one-piece/0")
//	// page.StagingPath = "/staging/one-piece/0/10.jpg"
type Page struct {
	// ChapterIndex is the index of the owning chapter.
	ChapterIndex int

	// Number is the integer embedded in the page URL (e.g. 10 for ".../10.jpg").
	Number int

	// SourceURL is the URL to download the image from.
	SourceURL string

	// StagingPath is the local file path the image is downloaded to.
	StagingPath string
}

// NewPage creates a Page with its staging path computed under chapterDir.
func NewPage(chapterIndex, number int, sourceURL, chapterDir string) Page {
	return Page{
		ChapterIndex: chapterIndex,
		Number:       number,
		SourceURL:    sourceURL,
		StagingPath:  filepath.Join(chapterDir, strconv.Itoa(number)+".jpg"),
	}
}
