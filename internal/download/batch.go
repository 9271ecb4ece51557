package download

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/handiism/manga-downloader/internal/model"
)

// ReadWorkList reads one work name per line, skipping blank lines.
func ReadWorkList(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read work list: %w", err)
	}
	return names, nil
}

// Processor processes a single work. *Manager satisfies it.
type Processor interface {
	ProcessWork(ctx context.Context, work model.WorkRequest, order model.Order) (string, error)
}

// Result is the outcome of one work of a batch.
type Result struct {
	Work   string
	Output string
	Err    error
}

// Batch processes works strictly one after another.
//
// A failed work is reported and the batch moves on to the next name. Only
// cancellation of ctx stops a batch early; names not yet started are then
// reported with the context's error.
type Batch struct {
	processor  Processor
	order      model.Order
	logger     *slog.Logger
	onProgress func(ProgressEvent)
}

// NewBatch creates a Batch assembling every work in order.
func NewBatch(processor Processor, order model.Order, logger *slog.Logger, onProgress func(ProgressEvent)) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{
		processor:  processor,
		order:      order,
		logger:     logger,
		onProgress: onProgress,
	}
}

// Run processes names in order and returns one Result per name.
func (b *Batch) Run(ctx context.Context, names []string) []Result {
	results := make([]Result, 0, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			for _, rest := range names[i:] {
				results = append(results, Result{Work: rest, Err: err})
			}
			break
		}

		result := b.runOne(ctx, name)
		if result.Err != nil {
			b.logger.Error("work failed", "work", result.Work, "error", result.Err)
			b.progress(ProgressEvent{Message: fmt.Sprintf("Failed %s: %v", result.Work, result.Err), Level: LevelError})
		}
		results = append(results, result)
	}
	return results
}

func (b *Batch) runOne(ctx context.Context, name string) Result {
	work, err := model.NewWorkRequest(name)
	if err != nil {
		return Result{Work: name, Err: err}
	}

	output, err := b.processor.ProcessWork(ctx, work, b.order)
	return Result{Work: work.Name, Output: output, Err: err}
}

func (b *Batch) progress(event ProgressEvent) {
	if b.onProgress != nil {
		b.onProgress(event)
	}
}
