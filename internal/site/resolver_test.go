package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	mhttp "github.com/handiism/manga-downloader/internal/http"
	"github.com/handiism/manga-downloader/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWorkID(t *testing.T) {
	id, ok := ExtractWorkID(`<script>var _manga_id = '12345'; var x = 1;</script>`)
	assert.True(t, ok)
	assert.Equal(t, "12345", id)

	id, ok = ExtractWorkID(`<script>var _manga_id='7';</script>`)
	assert.True(t, ok)
	assert.Equal(t, "7", id)

	_, ok = ExtractWorkID(`<html>no id here</html>`)
	assert.False(t, ok)
}

func TestStaticResolver(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/manga/demo", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<script>var _manga_id = '4242';</script>`))
	})
	mux.HandleFunc("/manga/nothing", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>Search results</html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	siteCfg := &model.SiteConfig{
		ProfileURLFormat:  server.URL + "/manga/%s",
		ContentRootFormat: "http://cdn.example/%s",
	}
	resolver := NewStaticResolver(mhttp.NewClient("MangaWeb", 5*time.Second), siteCfg)

	root, err := resolver.Resolve(context.Background(), model.WorkRequest{Name: "demo"})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example/4242", root.URL)

	_, err = resolver.Resolve(context.Background(), model.WorkRequest{Name: "nothing"})
	assert.True(t, errors.Is(err, ErrWorkNotFound), "got %v", err)

	_, err = resolver.Resolve(context.Background(), model.WorkRequest{Name: "missing"})
	assert.True(t, errors.Is(err, ErrWorkNotFound), "404 should mean not found, got %v", err)
}

type fakeEvaluator struct {
	mu        sync.Mutex
	values    []string
	calls     int
	navigated string
	closed    bool
}

func (f *fakeEvaluator) Navigate(ctx context.Context, url string) error {
	f.navigated = url
	return nil
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, expression string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.values) == 0 {
		return "", nil
	}
	v := f.values[0]
	f.values = f.values[1:]
	return v, nil
}

func (f *fakeEvaluator) Close() error {
	f.closed = true
	return nil
}

func TestRenderedResolver_EventuallyResolves(t *testing.T) {
	eval := &fakeEvaluator{values: []string{"", "", "987"}}
	siteCfg := &model.SiteConfig{
		ProfileURLFormat:  "http://profile.example/%s",
		ContentRootFormat: "http://cdn.example/%s",
	}
	resolver := NewRenderedResolver(
		func(ctx context.Context) (ScriptEvaluator, error) { return eval, nil },
		siteCfg,
		RenderedConfig{Expression: "() => _manga_id", Interval: time.Millisecond, Timeout: time.Second},
		nil,
	)

	root, err := resolver.Resolve(context.Background(), model.WorkRequest{Name: "demo"})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example/987", root.URL)
	assert.Equal(t, "http://profile.example/demo", eval.navigated)
	assert.Equal(t, 3, eval.calls)
	assert.True(t, eval.closed)
}

func TestRenderedResolver_Timeout(t *testing.T) {
	eval := &fakeEvaluator{}
	siteCfg := &model.SiteConfig{
		ProfileURLFormat:  "http://profile.example/%s",
		ContentRootFormat: "http://cdn.example/%s",
	}
	resolver := NewRenderedResolver(
		func(ctx context.Context) (ScriptEvaluator, error) { return eval, nil },
		siteCfg,
		RenderedConfig{Interval: 5 * time.Millisecond, Timeout: 50 * time.Millisecond},
		nil,
	)

	start := time.Now()
	_, err := resolver.Resolve(context.Background(), model.WorkRequest{Name: "demo"})
	assert.True(t, errors.Is(err, ErrResolutionTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, eval.closed)
	assert.LessOrEqual(t, eval.calls, 10)
}

func TestRenderedResolver_OpenFailure(t *testing.T) {
	resolver := NewRenderedResolver(
		func(ctx context.Context) (ScriptEvaluator, error) { return nil, errors.New("no browser") },
		&model.SiteConfig{ProfileURLFormat: "%s", ContentRootFormat: "%s"},
		RenderedConfig{Interval: time.Millisecond, Timeout: time.Millisecond},
		nil,
	)

	_, err := resolver.Resolve(context.Background(), model.WorkRequest{Name: "demo"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrResolutionTimeout))
}
