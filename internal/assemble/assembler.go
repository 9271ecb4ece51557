package assemble

import (
	"context"
	"fmt"
	"path/filepath"

	ioutils "github.com/handiism/manga-downloader/internal/io"
	"github.com/handiism/manga-downloader/internal/model"
)

// Input is everything the Assembler needs for one work.
type Input struct {
	Work     model.WorkRequest
	Chapters []model.Chapter

	// Pages maps chapter index to the chapter's pages in sorted order.
	// Every page must already be downloaded to its StagingPath.
	Pages map[int][]model.Page

	Order model.Order

	// StagingDir receives transient files such as the title page.
	StagingDir string
}

// Assembler turns the downloaded pages of a work into one output document.
//
// The document starts with a title page showing the work name, followed
// by one page per image in the order given by Plan. Each chapter's first
// page carries a bookmark.
//
// Example:
//
//	asm := NewAssembler(NewPDFCompositor(), ioutils.NewImageService(), settings.SaveLocation)
//	path, err := asm.Assemble(ctx, Input{
//	    Work:       work,
//	    Chapters:   chapters,
//	    Pages:      pagesByChapter,
//	    Order:      model.OrderForward,
//	    StagingDir: ws.RootDir,
//	})
type Assembler struct {
	compositor Compositor
	images     *ioutils.ImageService
	saveDir    string
}

// NewAssembler creates a new Assembler writing documents into saveDir.
func NewAssembler(compositor Compositor, images *ioutils.ImageService, saveDir string) *Assembler {
	return &Assembler{
		compositor: compositor,
		images:     images,
		saveDir:    saveDir,
	}
}

// OutputPath returns where the document of work is written.
func (a *Assembler) OutputPath(work model.WorkRequest) string {
	return filepath.Join(a.saveDir, ioutils.SanitizeFileName(work.FileName()))
}

// Assemble writes the document and returns its path.
//
// The document is finalized only after every page has been appended; on
// any failure it is aborted and nothing is published.
func (a *Assembler) Assemble(ctx context.Context, in Input) (string, error) {
	planned, err := Plan(in.Chapters, in.Pages, in.Order)
	if err != nil {
		return "", err
	}

	target := a.OutputPath(in.Work)
	doc, err := a.compositor.Create(target)
	if err != nil {
		return "", err
	}

	if err := a.appendPages(ctx, doc, in, planned); err != nil {
		doc.Abort()
		return "", err
	}

	if err := doc.Finalize(); err != nil {
		doc.Abort()
		return "", fmt.Errorf("finalize %s: %w", target, err)
	}
	return target, nil
}

func (a *Assembler) appendPages(ctx context.Context, doc Document, in Input, planned []model.Page) error {
	title, err := a.images.RenderTitlePage(ctx, in.Work.DisplayName())
	if err != nil {
		return fmt.Errorf("render title page: %w", err)
	}
	titlePath := filepath.Join(in.StagingDir, "title.png")
	if err := ioutils.WriteFile(ctx, titlePath, title); err != nil {
		return fmt.Errorf("write title page: %w", err)
	}
	if err := doc.AddPage(titlePath, a.images.TitleSize); err != nil {
		return err
	}

	chapter := -1
	for _, page := range planned {
		if err := ctx.Err(); err != nil {
			return err
		}
		if page.ChapterIndex != chapter {
			chapter = page.ChapterIndex
			doc.AddBookmark(fmt.Sprintf("Chapter %d", chapter+1))
		}

		dim, err := a.images.ReadDimensions(page.StagingPath)
		if err != nil {
			return fmt.Errorf("chapter %d page %d: %w", page.ChapterIndex, page.Number, err)
		}
		if err := doc.AddPage(page.StagingPath, dim); err != nil {
			return err
		}
	}
	return nil
}
