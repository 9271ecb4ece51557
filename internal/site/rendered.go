package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/handiism/manga-downloader/internal/model"
)

// ScriptEvaluator is a rendered-page session able to run page scripts.
type ScriptEvaluator interface {
	// Navigate loads url in the session.
	Navigate(ctx context.Context, url string) error

	// Evaluate runs a JavaScript function expression and returns its string result.
	Evaluate(ctx context.Context, expression string) (string, error)

	// Close releases the session.
	Close() error
}

// SessionOpener starts a new ScriptEvaluator session.
type SessionOpener func(ctx context.Context) (ScriptEvaluator, error)

var errIdentifierPending = errors.New("identifier not yet available")

// RenderedConfig holds the polling parameters of a RenderedResolver.
type RenderedConfig struct {
	// Expression is evaluated on the profile page; it must return the
	// identifier as a string, or "" while it is not yet known.
	Expression string

	// Interval is the fixed delay between two evaluations.
	Interval time.Duration

	// Timeout bounds the whole polling phase.
	Timeout time.Duration
}

// RenderedResolver recovers the work identifier by executing the profile
// page's scripts when the identifier is absent from the raw markup.
//
// The identifier is polled at a fixed interval until it appears or the
// timeout elapses, in which case ErrResolutionTimeout is returned. The
// session is always closed before Resolve returns.
type RenderedResolver struct {
	open   SessionOpener
	site   *model.SiteConfig
	cfg    RenderedConfig
	logger *slog.Logger
}

// NewRenderedResolver creates a new RenderedResolver.
func NewRenderedResolver(open SessionOpener, site *model.SiteConfig, cfg RenderedConfig, logger *slog.Logger) *RenderedResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderedResolver{open: open, site: site, cfg: cfg, logger: logger}
}

// Resolve opens a session on the profile page of work and polls for its identifier.
func (r *RenderedResolver) Resolve(ctx context.Context, work model.WorkRequest) (model.ContentRoot, error) {
	session, err := r.open(ctx)
	if err != nil {
		return model.ContentRoot{}, fmt.Errorf("open rendered session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.logger.Warn("closing rendered session", "work", work.Name, "error", err)
		}
	}()

	profileURL := r.site.ProfileURL(work)
	if err := session.Navigate(ctx, profileURL); err != nil {
		return model.ContentRoot{}, fmt.Errorf("navigate %s: %w", profileURL, err)
	}

	id, err := r.poll(ctx, session)
	if err != nil {
		if ctx.Err() != nil {
			return model.ContentRoot{}, ctx.Err()
		}
		return model.ContentRoot{}, fmt.Errorf("%s: %w (%s): %v", work.Name, ErrResolutionTimeout, r.cfg.Timeout, err)
	}
	return r.site.ContentRoot(id), nil
}

func (r *RenderedResolver) poll(ctx context.Context, session ScriptEvaluator) (string, error) {
	pollCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	attempts := 1
	if r.cfg.Interval > 0 {
		attempts = int(r.cfg.Timeout / r.cfg.Interval)
	}
	if attempts < 1 {
		attempts = 1
	}

	var id string
	err := retry.Do(
		func() error {
			value, err := session.Evaluate(pollCtx, r.cfg.Expression)
			if err != nil {
				return err
			}
			value = strings.TrimSpace(value)
			if !isDigits(value) {
				return errIdentifierPending
			}
			id = value
			return nil
		},
		retry.Context(pollCtx),
		retry.Attempts(uint(attempts)),
		retry.Delay(r.cfg.Interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("work identifier not ready", "attempt", n+1, "error", err)
		}),
	)
	return id, err
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
