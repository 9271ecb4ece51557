package site

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var pageNumberRegex = regexp.MustCompile(`/(\d+)\.jpg$`)

// NumberedLink is a page link paired with the number embedded in it.
type NumberedLink struct {
	URL    string
	Number int
}

// PageNumber extracts the integer from the trailing "/<digits>.jpg" of link.
//
// Returns a *MalformedLinkError if the token is missing.
//
// Example:
//
//	n, _ := PageNumber("http://2.p.mpcdn.net/123/c1/10.jpg") // 10
func PageNumber(link string) (int, error) {
	match := pageNumberRegex.FindStringSubmatch(link)
	if match == nil {
		return 0, &MalformedLinkError{Link: link}
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, &MalformedLinkError{Link: link}
	}
	return n, nil
}

// SortPages orders links by the integer embedded in each, not lexicographically.
//
// The input slice is left untouched. Sorting is stable, so re-sorting an
// already sorted result returns the same sequence. The first link without
// a page number aborts the sort with a *MalformedLinkError; links are never
// dropped silently.
//
// Example:
//
//	sorted, _ := SortPages([]string{".../10.jpg", ".../2.jpg", ".../1.jpg"})
//	// .../1.jpg, .../2.jpg, .../10.jpg
func SortPages(links []string) ([]NumberedLink, error) {
	numbered := make([]NumberedLink, 0, len(links))
	for _, link := range links {
		n, err := PageNumber(link)
		if err != nil {
			return nil, err
		}
		numbered = append(numbered, NumberedLink{URL: link, Number: n})
	}

	sort.SliceStable(numbered, func(i, j int) bool {
		return numbered[i].Number < numbered[j].Number
	})
	return numbered, nil
}

// DedupePages drops repeated occurrences of the same link from a sorted
// sequence. Pages often link the same image twice (thumbnail and full
// view). Two different links carrying the same number cannot both be
// staged and are reported as an error.
func DedupePages(sorted []NumberedLink) ([]NumberedLink, error) {
	out := make([]NumberedLink, 0, len(sorted))
	seen := make(map[int]string, len(sorted))
	for _, link := range sorted {
		if prev, ok := seen[link.Number]; ok {
			if prev == link.URL {
				continue
			}
			return nil, fmt.Errorf("page %d linked twice: %s and %s", link.Number, prev, link.URL)
		}
		seen[link.Number] = link.URL
		out = append(out, link)
	}
	return out, nil
}
