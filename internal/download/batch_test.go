package download

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/manga-downloader/internal/model"
)

func TestReadWorkList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "one piece\n", []string{"one piece"}},
		{"blank lines", "\nnaruto\n\n  \nbleach", []string{"naruto", "bleach"}},
		{"crlf", "naruto\r\nbleach\r\n", []string{"naruto", "bleach"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadWorkList(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeProcessor struct {
	fail  map[string]error
	seen  []string
	order []model.Order
}

func (p *fakeProcessor) ProcessWork(_ context.Context, work model.WorkRequest, order model.Order) (string, error) {
	p.seen = append(p.seen, work.Name)
	p.order = append(p.order, order)
	if err := p.fail[work.Name]; err != nil {
		return "", err
	}
	return "/out/" + work.FileName(), nil
}

func TestBatch_ContinuesAfterFailure(t *testing.T) {
	boom := &StageError{Work: "bad", Stage: StageResolve, Err: errors.New("not found")}
	proc := &fakeProcessor{fail: map[string]error{"bad": boom}}

	var failures int
	batch := NewBatch(proc, model.OrderReverse, nil, func(e ProgressEvent) {
		if e.Level == LevelError {
			failures++
		}
	})
	results := batch.Run(context.Background(), []string{"One Piece", "bad", "naruto"})

	assert.Equal(t, []string{"one-piece", "bad", "naruto"}, proc.seen)
	assert.Equal(t, []model.Order{model.OrderReverse, model.OrderReverse, model.OrderReverse}, proc.order)
	require.Len(t, results, 3)
	assert.Equal(t, Result{Work: "one-piece", Output: "/out/one-piece.pdf"}, results[0])
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "/out/naruto.pdf", results[2].Output)
	assert.Equal(t, 1, failures)
}

func TestBatch_InvalidName(t *testing.T) {
	proc := &fakeProcessor{}
	results := NewBatch(proc, model.OrderForward, nil, nil).Run(context.Background(), []string{"   ", "bleach"})

	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, model.ErrEmptyWorkName)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, []string{"bleach"}, proc.seen)
}

func TestBatch_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc := &fakeProcessor{}
	results := NewBatch(proc, model.OrderForward, nil, nil).Run(ctx, []string{"a", "b"})

	assert.Empty(t, proc.seen)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}
