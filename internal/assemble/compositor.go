package assemble

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	ioutils "github.com/handiism/manga-downloader/internal/io"
)

// Document is an output document being assembled, one image per page.
type Document interface {
	// AddPage appends the image at path as a page of its native size, with no margin.
	AddPage(path string, dim ioutils.Dimensions) error

	// AddBookmark labels the next page added.
	AddBookmark(title string)

	// Finalize writes the document and publishes it at its target path.
	Finalize() error

	// Abort discards the document; the target path is left untouched.
	Abort() error
}

// Compositor creates output documents.
type Compositor interface {
	Create(path string) (Document, error)
}

// PDFCompositor builds PDF documents with pdfcpu.
//
// Pages are imported with the "full" position, so every page has exactly
// the dimensions of its image. The document is written to a hidden
// temporary file beside the target and renamed on success, so a crash never
// leaves a truncated PDF under the final name.
type PDFCompositor struct {
	conf *pdfmodel.Configuration
}

// NewPDFCompositor creates a PDFCompositor with pdfcpu's default configuration.
func NewPDFCompositor() *PDFCompositor {
	return &PDFCompositor{conf: pdfmodel.NewDefaultConfiguration()}
}

// Create starts a new PDF that will be published at path.
func (c *PDFCompositor) Create(path string) (Document, error) {
	dir, name := filepath.Split(path)
	temp := filepath.Join(dir, "."+strings.TrimSuffix(name, ".pdf")+".part.pdf")
	if err := os.Remove(temp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale %s: %w", temp, err)
	}
	return &pdfDocument{conf: c.conf, target: path, temp: temp}, nil
}

type pdfDocument struct {
	conf      *pdfmodel.Configuration
	target    string
	temp      string
	pages     []string
	bookmarks []pdfcpu.Bookmark
	pending   string
	closed    bool
}

func (d *pdfDocument) AddPage(path string, dim ioutils.Dimensions) error {
	if d.closed {
		return errors.New("document already closed")
	}
	if dim.Width <= 0 || dim.Height <= 0 {
		return fmt.Errorf("%s: invalid page size %dx%d", path, dim.Width, dim.Height)
	}
	d.pages = append(d.pages, path)
	if d.pending != "" {
		d.bookmarks = append(d.bookmarks, pdfcpu.Bookmark{Title: d.pending, PageFrom: len(d.pages)})
		d.pending = ""
	}
	return nil
}

func (d *pdfDocument) AddBookmark(title string) {
	d.pending = title
}

func (d *pdfDocument) Finalize() error {
	if d.closed {
		return errors.New("document already closed")
	}
	d.closed = true
	if len(d.pages) == 0 {
		return errors.New("document has no pages")
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.Pos = types.Full
	if err := api.ImportImagesFile(d.pages, d.temp, imp, d.conf); err != nil {
		os.Remove(d.temp)
		return fmt.Errorf("import images: %w", err)
	}

	if len(d.bookmarks) > 0 {
		if err := api.AddBookmarksFile(d.temp, "", d.bookmarks, true, d.conf); err != nil {
			os.Remove(d.temp)
			return fmt.Errorf("add bookmarks: %w", err)
		}
	}

	count, err := api.PageCountFile(d.temp)
	if err != nil {
		os.Remove(d.temp)
		return fmt.Errorf("verify document: %w", err)
	}
	if count != len(d.pages) {
		os.Remove(d.temp)
		return fmt.Errorf("document has %d pages, want %d", count, len(d.pages))
	}

	return os.Rename(d.temp, d.target)
}

func (d *pdfDocument) Abort() error {
	d.closed = true
	if err := os.Remove(d.temp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
