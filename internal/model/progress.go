package model

import (
	"errors"
	"sync/atomic"
)

// ErrProgressOverflow is returned when a completion would exceed a finalized total.
var ErrProgressOverflow = errors.New("progress: completed would exceed total")

// ProgressCounter accumulates completed downloads against a total.
//
// The total grows while chapters are being discovered (AddTotal) and is
// fixed once every chapter's page count is known (Finalize). Completions
// may arrive concurrently from pool workers; all updates are atomic.
// Once finalized, completed never exceeds total.
type ProgressCounter struct {
	completed atomic.Int64
	total     atomic.Int64
	final     atomic.Bool
}

// AddTotal adds n pages to the expected total. It has no effect once finalized.
func (p *ProgressCounter) AddTotal(n int) {
	if p.final.Load() {
		return
	}
	p.total.Add(int64(n))
}

// Finalize marks the total as complete.
func (p *ProgressCounter) Finalize() {
	p.final.Store(true)
}

// Complete records one finished page and returns the updated counts.
func (p *ProgressCounter) Complete() (completed, total int64, err error) {
	for {
		cur := p.completed.Load()
		total = p.total.Load()
		if p.final.Load() && cur >= total {
			return cur, total, ErrProgressOverflow
		}
		if p.completed.CompareAndSwap(cur, cur+1) {
			return cur + 1, total, nil
		}
	}
}

// Snapshot returns the current counts.
func (p *ProgressCounter) Snapshot() (completed, total int64) {
	return p.completed.Load(), p.total.Load()
}

// Done reports whether the total is final and every page has completed.
func (p *ProgressCounter) Done() bool {
	return p.final.Load() && p.completed.Load() == p.total.Load()
}

// Fraction returns completed/total, or 0 when nothing is expected yet.
func (p *ProgressCounter) Fraction() float64 {
	completed, total := p.Snapshot()
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}
