package site

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkNotFound is returned when the profile page carries no work identifier.
	//
	// This typically means no work with that name exists on the site.
	ErrWorkNotFound = errors.New("work not found")

	// ErrResolutionTimeout is returned when the rendered lookup never
	// produced a work identifier within the configured deadline.
	ErrResolutionTimeout = errors.New("work identifier did not appear before timeout")

	// ErrDiscoveryEmpty is returned when a page contains no matching links.
	//
	// This typically occurs when:
	//   - The work has no chapters, or the chapter has no pages
	//   - The site structure has changed unexpectedly
	//
	// A failed fetch is never reported as ErrDiscoveryEmpty.
	ErrDiscoveryEmpty = errors.New("no links found on page")

	// ErrMalformedLink is matched by every *MalformedLinkError.
	ErrMalformedLink = errors.New("malformed link")
)

// MalformedLinkError reports a link that lacks the page number token.
type MalformedLinkError struct {
	Link string
}

func (e *MalformedLinkError) Error() string {
	return fmt.Sprintf("malformed link %q: no page number", e.Link)
}

// Is makes errors.Is(err, ErrMalformedLink) true.
func (e *MalformedLinkError) Is(target error) bool {
	return target == ErrMalformedLink
}
