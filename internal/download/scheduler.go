package download

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/handiism/manga-downloader/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultPoolSize is the number of concurrent page downloads.
const DefaultPoolSize = 6

// Downloader streams a URL to a local file. *http.Client satisfies it.
type Downloader interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
}

// Scheduler is a fixed-size pool downloading pages to their staging paths.
//
// Every completed page increments the shared ProgressCounter exactly once.
// The first failed page cancels the pool: in-flight downloads are
// interrupted, pages not yet started are skipped, and Wait reports the
// failing page as a *DownloadError. Failed pages are not retried.
//
// Example:
//
//	sched := NewScheduler(ctx, client, counter, DefaultPoolSize, nil)
//	for _, page := range pages {
//	    if !sched.Enqueue(page) {
//	        break // pool aborted
//	    }
//	}
//	err := sched.Wait()
type Scheduler struct {
	ctx        context.Context
	group      *errgroup.Group
	client     Downloader
	counter    *model.ProgressCounter
	onComplete func(page model.Page, completed, total int64)

	bytes       atomic.Int64
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

// NewScheduler creates a pool of size workers bound to ctx.
//
// onComplete, if not nil, is called after each successful page with the
// updated counts. It may be called from several goroutines at once.
func NewScheduler(ctx context.Context, client Downloader, counter *model.ProgressCounter, size int, onComplete func(page model.Page, completed, total int64)) *Scheduler {
	if size < 1 {
		size = DefaultPoolSize
	}
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(size)

	return &Scheduler{
		ctx:        ctx,
		group:      group,
		client:     client,
		counter:    counter,
		onComplete: onComplete,
	}
}

// Enqueue schedules page for download, blocking while the pool is full.
//
// It returns false, without scheduling, once the pool has been aborted.
func (s *Scheduler) Enqueue(page model.Page) bool {
	if s.ctx.Err() != nil {
		return false
	}

	s.group.Go(func() error {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		return s.download(page)
	})
	return true
}

// Wait blocks until every enqueued page has finished and returns the first failure.
//
// A pool that drained without every discovered page completing is an error.
func (s *Scheduler) Wait() error {
	if err := s.group.Wait(); err != nil {
		return err
	}
	if !s.counter.Done() {
		completed, total := s.counter.Snapshot()
		return fmt.Errorf("pool drained with %d of %d pages downloaded", completed, total)
	}
	return nil
}

// BytesReceived returns the number of bytes written to staging so far.
func (s *Scheduler) BytesReceived() int64 {
	return s.bytes.Load()
}

// MaxInFlight returns the highest number of simultaneous downloads observed.
func (s *Scheduler) MaxInFlight() int {
	return int(s.maxInFlight.Load())
}

func (s *Scheduler) download(page model.Page) error {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.maxInFlight.Load()
		if current <= peak || s.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}

	var last int64
	err := s.client.DownloadFile(s.ctx, page.SourceURL, page.StagingPath, func(written, _ int64) {
		s.bytes.Add(written - last)
		last = written
	})
	if err != nil {
		return &DownloadError{Page: page, Err: err}
	}

	completed, total, err := s.counter.Complete()
	if err != nil {
		return &DownloadError{Page: page, Err: err}
	}
	if s.onComplete != nil {
		s.onComplete(page, completed, total)
	}
	return nil
}
