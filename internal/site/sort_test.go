package site

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func urls(links []NumberedLink) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.URL
	}
	return out
}

func TestPageNumber(t *testing.T) {
	tests := []struct {
		link    string
		want    int
		wantErr bool
	}{
		{"http://host/1/c1/1.jpg", 1, false},
		{"http://host/1/c1/010.jpg", 10, false},
		{"/staging/demo/0/42.jpg", 42, false},
		{"http://host/1/c1/cover.jpg", 0, true},
		{"http://host/1/c1/12", 0, true},
		{"http://host/1/c1/12.png", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			got, err := PageNumber(tt.link)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrMalformedLink), "got %v", err)
				var malformed *MalformedLinkError
				require.True(t, errors.As(err, &malformed))
				assert.Equal(t, tt.link, malformed.Link)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortPages_Numeric(t *testing.T) {
	input := []string{
		"http://host/c/10.jpg",
		"http://host/c/2.jpg",
		"http://host/c/1.jpg",
		"http://host/c/21.jpg",
	}

	sorted, err := SortPages(input)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"http://host/c/1.jpg",
		"http://host/c/2.jpg",
		"http://host/c/10.jpg",
		"http://host/c/21.jpg",
	}, urls(sorted))
	assert.Equal(t, "http://host/c/10.jpg", input[0], "input must not be modified")
}

func TestSortPages_IndependentOfInputOrderAndIdempotent(t *testing.T) {
	orders := [][]string{
		{"a/3.jpg", "a/1.jpg", "a/2.jpg", "a/100.jpg"},
		{"a/100.jpg", "a/2.jpg", "a/3.jpg", "a/1.jpg"},
		{"a/1.jpg", "a/2.jpg", "a/3.jpg", "a/100.jpg"},
	}
	want := []string{"a/1.jpg", "a/2.jpg", "a/3.jpg", "a/100.jpg"}

	for _, in := range orders {
		first, err := SortPages(in)
		require.NoError(t, err)
		assert.Equal(t, want, urls(first))

		second, err := SortPages(urls(first))
		require.NoError(t, err)
		assert.Equal(t, urls(first), urls(second))
	}
}

func TestSortPages_Malformed(t *testing.T) {
	_, err := SortPages([]string{"a/1.jpg", "a/credits.jpg", "a/2.jpg"})

	var malformed *MalformedLinkError
	require.True(t, errors.As(err, &malformed), "got %v", err)
	assert.Equal(t, "a/credits.jpg", malformed.Link)
}

func TestSortPages_Empty(t *testing.T) {
	sorted, err := SortPages(nil)
	require.NoError(t, err)
	assert.Empty(t, sorted)
}

func TestDedupePages(t *testing.T) {
	sorted, err := SortPages([]string{"a/2.jpg", "a/1.jpg", "a/2.jpg"})
	require.NoError(t, err)

	unique, err := DedupePages(sorted)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1.jpg", "a/2.jpg"}, urls(unique))

	conflicting, err := SortPages([]string{"a/2.jpg", "b/2.jpg"})
	require.NoError(t, err)
	_, err = DedupePages(conflicting)
	assert.Error(t, err)
}
