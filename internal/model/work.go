package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrEmptyWorkName is returned when a work name normalizes to nothing.
var ErrEmptyWorkName = errors.New("empty work name")

// WorkRequest identifies one work to download.
//
// A WorkRequest is created from user input or from one line of a batch
// file. The name is normalized once on creation (lower-cased, whitespace
// replaced with hyphens) and is used unchanged afterwards for the profile
// lookup, the staging directory and the output file name.
//
// Example:
//
//	work, err := NewWorkRequest("One Piece")
//	// work.Name == "one-piece"
type WorkRequest struct {
	// Name is the normalized work name.
	Name string
}

// NewWorkRequest normalizes raw into a WorkRequest.
//
// Leading and trailing whitespace is trimmed first so that a trailing
// newline from a batch file does not become a trailing hyphen.
func NewWorkRequest(raw string) (WorkRequest, error) {
	name := NormalizeName(raw)
	if name == "" {
		return WorkRequest{}, ErrEmptyWorkName
	}
	return WorkRequest{Name: name}, nil
}

// NormalizeName lower-cases name and replaces every whitespace rune with a hyphen.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, name)
}

// DisplayName returns the human-readable form used on the title page.
func (w WorkRequest) DisplayName() string {
	return strings.ReplaceAll(w.Name, "-", " ")
}

// FileName returns the output document file name for the work.
func (w WorkRequest) FileName() string {
	return w.Name + ".pdf"
}

// String implements fmt.Stringer.
func (w WorkRequest) String() string {
	return w.Name
}

// ContentRoot is the canonical base URL under which a work's chapters are listed.
type ContentRoot struct {
	URL string
}

// Chapter is one discovery-ordered subdivision of a work.
//
// Index is the 0-based position of the chapter link in the content root
// page. Chapters are never re-sorted: the site's document order is kept.
type Chapter struct {
	Index     int
	SourceURL string
}

// Order selects the page order of the assembled document.
type Order int

const (
	// OrderForward appends chapters and pages in discovery/sort order.
	OrderForward Order = iota

	// OrderReverse appends every page in fully reversed order, so the
	// document is read back to front.
	OrderReverse
)

// String implements fmt.Stringer.
func (o Order) String() string {
	if o == OrderReverse {
		return "reverse"
	}
	return "forward"
}

// SiteConfig holds the URL templates of the content site.
//
// Both templates take a single %s verb:
//
//	cfg := &SiteConfig{
//	    ProfileURLFormat:  "http://mangapark.me/manga/%s", // work name
//	    ContentRootFormat: "http://2.p.mpcdn.net/%s",      // work identifier
//	}
type SiteConfig struct {
	// ProfileURLFormat is the template of a work's profile page, keyed by name.
	ProfileURLFormat string

	// ContentRootFormat is the template of a work's content root, keyed by identifier.
	ContentRootFormat string
}

// ProfileURL returns the profile page URL of work.
func (c *SiteConfig) ProfileURL(work WorkRequest) string {
	return fmt.Sprintf(c.ProfileURLFormat, work.Name)
}

// ContentRoot returns the content root of the work with the given identifier.
func (c *SiteConfig) ContentRoot(id string) ContentRoot {
	return ContentRoot{URL: fmt.Sprintf(c.ContentRootFormat, id)}
}
