package assemble

import (
	"fmt"

	"github.com/handiism/manga-downloader/internal/model"
)

// Plan returns every page of the work in document order.
//
// In forward order, chapters follow their discovery order and pages their
// sorted order. In reverse order the whole sequence is reversed: last
// chapter first, and within it the last page first.
//
// The plan depends only on chapter indices and the already sorted page
// slices, never on the order downloads completed in.
//
// Example (chapter 0: 1, 2, 10; chapter 1: 1):
//
//	forward: ch0/1, ch0/2, ch0/10, ch1/1
//	reverse: ch1/1, ch0/10, ch0/2, ch0/1
func Plan(chapters []model.Chapter, pages map[int][]model.Page, order model.Order) ([]model.Page, error) {
	total := 0
	for _, ch := range chapters {
		chapterPages, ok := pages[ch.Index]
		if !ok {
			return nil, fmt.Errorf("no pages for chapter %d", ch.Index)
		}
		total += len(chapterPages)
	}

	planned := make([]model.Page, 0, total)
	if order == model.OrderReverse {
		for i := len(chapters) - 1; i >= 0; i-- {
			chapterPages := pages[chapters[i].Index]
			for j := len(chapterPages) - 1; j >= 0; j-- {
				planned = append(planned, chapterPages[j])
			}
		}
		return planned, nil
	}

	for _, ch := range chapters {
		planned = append(planned, pages[ch.Index]...)
	}
	return planned, nil
}
