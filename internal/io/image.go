package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // GIF decoder registration
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// Dimensions is the native pixel size of an image.
type Dimensions struct {
	Width  int
	Height int
}

// ImageService provides image operations for document assembly.
//
// ImageService is used to:
//   - Read the native dimensions of downloaded pages without decoding them
//   - Render the title page of a work
//
// Example usage:
//
//	svc := NewImageService()
//	dim, err := svc.ReadDimensions("/staging/one-piece/0/1.jpg")
//	title, err := svc.RenderTitlePage(ctx, "one piece")
type ImageService struct {
	// TitleSize is the pixel size of rendered title pages.
	TitleSize Dimensions

	// TitleScale is the integer magnification applied to the title glyphs.
	TitleScale int
}

// NewImageService creates a new ImageService rendering A4-at-150dpi title pages.
func NewImageService() *ImageService {
	return &ImageService{
		TitleSize:  Dimensions{Width: 1240, Height: 1754},
		TitleScale: 6,
	}
}

// ReadDimensions returns the pixel dimensions of the image at path.
//
// Only the image header is decoded. JPEG, PNG, GIF and WebP are supported.
func (s *ImageService) ReadDimensions(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, fmt.Errorf("%s: invalid dimensions %dx%d", path, cfg.Width, cfg.Height)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// RenderTitlePage renders title centred horizontally, a third down a white
// page, and returns it PNG-encoded.
//
// The text is drawn with the built-in 7x13 bitmap face and magnified with
// nearest-neighbour scaling so the glyphs stay crisp.
//
// Parameters:
//   - ctx: Nothing is rendered once ctx is done
//   - title: The human-readable work name
func (s *ImageService) RenderTitlePage(ctx context.Context, title string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page := image.NewRGBA(image.Rect(0, 0, s.TitleSize.Width, s.TitleSize.Height))
	draw.Draw(page, page.Bounds(), image.White, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, title).Ceil()
	if textWidth == 0 {
		return encodePNG(page)
	}

	// Draw the text at native size first.
	metrics := face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()
	text := image.NewRGBA(image.Rect(0, 0, textWidth, textHeight))
	draw.Draw(text, text.Bounds(), image.White, image.Point{}, draw.Src)
	drawer := &font.Drawer{
		Dst:  text,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: metrics.Ascent},
	}
	drawer.DrawString(title)

	scale := s.TitleScale
	for scale > 1 && textWidth*scale > s.TitleSize.Width {
		scale--
	}
	w, h := textWidth*scale, textHeight*scale
	x := (s.TitleSize.Width - w) / 2
	y := s.TitleSize.Height / 3
	draw.NearestNeighbor.Scale(page, image.Rect(x, y, x+w, y+h), text, text.Bounds(), draw.Src, nil)

	return encodePNG(page)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
