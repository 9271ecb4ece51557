package assemble

import (
	"testing"

	"github.com/handiism/manga-downloader/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoWork() ([]model.Chapter, map[int][]model.Page) {
	chapters := []model.Chapter{
		{Index: 0, SourceURL: "http://cdn/1/c1"},
		{Index: 1, SourceURL: "http://cdn/1/c2"},
	}
	pages := map[int][]model.Page{
		0: {
			model.NewPage(0, 1, "http://cdn/1/c1/1.jpg", "/s/demo/0"),
			model.NewPage(0, 2, "http://cdn/1/c1/2.jpg", "/s/demo/0"),
			model.NewPage(0, 10, "http://cdn/1/c1/10.jpg", "/s/demo/0"),
		},
		1: {
			model.NewPage(1, 1, "http://cdn/1/c2/1.jpg", "/s/demo/1"),
		},
	}
	return chapters, pages
}

func labels(pages []model.Page) [][2]int {
	out := make([][2]int, len(pages))
	for i, p := range pages {
		out[i] = [2]int{p.ChapterIndex, p.Number}
	}
	return out
}

func TestPlan_Forward(t *testing.T) {
	chapters, pages := demoWork()

	planned, err := Plan(chapters, pages, model.OrderForward)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {0, 10}, {1, 1}}, labels(planned))
}

func TestPlan_Reverse(t *testing.T) {
	chapters, pages := demoWork()

	planned, err := Plan(chapters, pages, model.OrderReverse)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 1}, {0, 10}, {0, 2}, {0, 1}}, labels(planned))
}

func TestPlan_KeepsDiscoveryOrderOfChapters(t *testing.T) {
	// The site listed chapter 2 before chapter 1; that order is kept.
	chapters := []model.Chapter{
		{Index: 0, SourceURL: "http://cdn/1/2"},
		{Index: 1, SourceURL: "http://cdn/1/1"},
	}
	pages := map[int][]model.Page{
		0: {model.NewPage(0, 1, "http://cdn/1/2/1.jpg", "/s/0")},
		1: {model.NewPage(1, 1, "http://cdn/1/1/1.jpg", "/s/1")},
	}

	planned, err := Plan(chapters, pages, model.OrderForward)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/1/2/1.jpg", planned[0].SourceURL)
}

func TestPlan_MissingChapter(t *testing.T) {
	chapters, pages := demoWork()
	delete(pages, 1)

	_, err := Plan(chapters, pages, model.OrderForward)
	assert.Error(t, err)
}
