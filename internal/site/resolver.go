package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	mhttp "github.com/handiism/manga-downloader/internal/http"
	"github.com/handiism/manga-downloader/internal/model"
)

// Resolver turns a work name into the work's content root.
//
// Exactly one implementation is active per deployment; both produce a
// ContentRoot of the same shape.
type Resolver interface {
	Resolve(ctx context.Context, work model.WorkRequest) (model.ContentRoot, error)
}

var workIDRegex = regexp.MustCompile(`_manga_id\s*=\s*'(\d+)'`)

// StaticResolver finds the work identifier in the raw profile page markup.
//
// The profile page declares the identifier in an inline script:
//
//	<script>var _manga_id = '12345';</script>
//
// Example usage:
//
//	resolver := NewStaticResolver(client, siteConfig)
//	root, err := resolver.Resolve(ctx, work)
//	if errors.Is(err, ErrWorkNotFound) {
//	    fmt.Println("Could not find this manga")
//	}
type StaticResolver struct {
	fetcher Fetcher
	site    *model.SiteConfig
}

// NewStaticResolver creates a new StaticResolver.
func NewStaticResolver(fetcher Fetcher, site *model.SiteConfig) *StaticResolver {
	return &StaticResolver{fetcher: fetcher, site: site}
}

// Resolve fetches the profile page of work and derives its content root.
//
// Returns ErrWorkNotFound if the page lacks the identifier or does not exist.
func (r *StaticResolver) Resolve(ctx context.Context, work model.WorkRequest) (model.ContentRoot, error) {
	profileURL := r.site.ProfileURL(work)
	body, err := r.fetcher.GetString(ctx, profileURL)
	if err != nil {
		var statusErr *mhttp.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return model.ContentRoot{}, fmt.Errorf("%s: %w", work.Name, ErrWorkNotFound)
		}
		return model.ContentRoot{}, fmt.Errorf("fetch profile %s: %w", profileURL, err)
	}

	id, ok := ExtractWorkID(body)
	if !ok {
		return model.ContentRoot{}, fmt.Errorf("%s: %w", work.Name, ErrWorkNotFound)
	}
	return r.site.ContentRoot(id), nil
}

// ExtractWorkID returns the numeric work identifier embedded in a profile page.
func ExtractWorkID(body string) (string, bool) {
	match := workIDRegex.FindStringSubmatch(body)
	if match == nil {
		return "", false
	}
	return match[1], true
}
