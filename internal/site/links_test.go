package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mhttp "github.com/handiism/manga-downloader/internal/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		html    string
		want    []string
		wantErr error
	}{
		{
			name: "chapter links keep document order",
			base: "http://host/123",
			html: `<html><body>
				<a href="/3/">Chapter 3</a>
				<a href="/1/">Chapter 1</a>
				<a href="2/">Chapter 2</a>
				<a href="/about">About</a>
			</body></html>`,
			want: []string{"http://host/123/3", "http://host/123/1", "http://host/123/2"},
		},
		{
			name: "page links",
			base: "http://host/123/1/",
			html: `<html><body>
				<a href="10.jpg">10</a>
				<a href="/2.jpg">2</a>
				<link href="1.jpg">
				<a href="banner.jpg">ad</a>
			</body></html>`,
			want: []string{"http://host/123/1/10.jpg", "http://host/123/1/2.jpg", "http://host/123/1/1.jpg"},
		},
		{
			name:    "no matches",
			base:    "http://host/123",
			html:    `<html><body><a href="/help">help</a></body></html>`,
			wantErr: ErrDiscoveryEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractLinks(tt.base, tt.html)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiscoverer_Discover(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/work", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="/1/">c1</a><a href="/2/">c2</a>`))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>nothing</p>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	disco := NewDiscoverer(mhttp.NewClient("MangaWeb", 5*time.Second))

	links, err := disco.Discover(context.Background(), server.URL+"/work")
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/work/1", server.URL + "/work/2"}, links)

	_, err = disco.Discover(context.Background(), server.URL+"/empty")
	assert.True(t, errors.Is(err, ErrDiscoveryEmpty), "got %v", err)

	_, err = disco.Discover(context.Background(), server.URL+"/missing")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDiscoveryEmpty), "fetch failures must not look like empty discovery")
	var statusErr *mhttp.StatusError
	assert.True(t, errors.As(err, &statusErr))
}
