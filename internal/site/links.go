package site

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves a page body. *http.Client satisfies it.
type Fetcher interface {
	GetString(ctx context.Context, url string) (string, error)
}

// linkRegex matches chapter links ("12/", "/12") and page image links ("7.jpg").
var linkRegex = regexp.MustCompile(`^/?(\d+(?:/|\.jpg)?)$`)

// Discoverer extracts chapter and page links from site pages.
//
// The same structural rule serves both levels of the site:
//   - On a content root, the matches are chapter links
//   - On a chapter page, the matches are page image links
//
// Links are returned in document order. For chapters this is the final
// order; for pages it is re-sorted by SortPages before use.
//
// Example usage:
//
//	disco := NewDiscoverer(client)
//	chapters, err := disco.Discover(ctx, root.URL)
//	if errors.Is(err, ErrDiscoveryEmpty) {
//	    // the work has no chapters
//	}
type Discoverer struct {
	fetcher Fetcher
}

// NewDiscoverer creates a new Discoverer.
func NewDiscoverer(fetcher Fetcher) *Discoverer {
	return &Discoverer{fetcher: fetcher}
}

// Discover fetches pageURL once and returns the absolute child links it contains.
//
// Returns ErrDiscoveryEmpty if nothing matches. Fetch failures are returned
// wrapped and are not retried.
func (d *Discoverer) Discover(ctx context.Context, pageURL string) ([]string, error) {
	body, err := d.fetcher.GetString(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	links, err := ExtractLinks(pageURL, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pageURL, err)
	}
	return links, nil
}

// ExtractLinks scans body for href attributes matching the structural
// pattern and rewrites each into an absolute URL under baseURL.
//
// A trailing path separator is stripped from every result:
//
//	<a href="/12/">  ->  baseURL + "/12"
//	<a href="3.jpg"> ->  baseURL + "/3.jpg"
func ExtractLinks(baseURL, body string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base := strings.TrimSuffix(baseURL, "/")
	var links []string
	doc.Find("[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		match := linkRegex.FindStringSubmatch(strings.TrimSpace(href))
		if match == nil {
			return
		}
		links = append(links, base+"/"+strings.TrimSuffix(match[1], "/"))
	})

	if len(links) == 0 {
		return nil, ErrDiscoveryEmpty
	}
	return links, nil
}
