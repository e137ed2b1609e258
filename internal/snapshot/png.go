package snapshot

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/san-kum/mazeplay/internal/render"
)

var ErrEmptyFrame = errors.New("snapshot: nothing to draw")

const (
	DefaultCellSize = 16
	footerHeight    = 22
)

// Frame is one rendered grid plus an optional caption.
type Frame struct {
	Rows, Cols int
	Cells      []render.CellView
	Caption    string
}

type Options struct {
	CellSize int
	Palette  Palette
	// Face draws the caption; nil uses the built-in bitmap face.
	Face font.Face
}

func DefaultOptions() Options {
	return Options{CellSize: DefaultCellSize, Palette: GetPalette("default")}
}

func (o Options) normalized() Options {
	if o.CellSize <= 0 {
		o.CellSize = DefaultCellSize
	}
	if o.Palette == (Palette{}) {
		o.Palette = GetPalette("default")
	}
	if o.Face == nil {
		o.Face = basicfont.Face7x13
	}
	return o
}

// MonoFace returns Go Mono at size points for sharper captions.
func MonoFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

// Draw rasterizes f.
func Draw(f Frame, opts Options) (image.Image, error) {
	if f.Rows <= 0 || f.Cols <= 0 || len(f.Cells) != f.Rows*f.Cols {
		return nil, ErrEmptyFrame
	}
	opts = opts.normalized()
	cs := float64(opts.CellSize)

	w := f.Cols * opts.CellSize
	h := f.Rows * opts.CellSize
	if f.Caption != "" {
		h += footerHeight
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(opts.Palette.Background)
	dc.Clear()

	gap := 1.0
	if opts.CellSize < 6 {
		gap = 0
	}
	for _, cell := range f.Cells {
		dc.SetColor(opts.Palette.CellColor(cell))
		dc.DrawRectangle(float64(cell.Col)*cs, float64(cell.Row)*cs, cs-gap, cs-gap)
		dc.Fill()
	}

	if f.Caption != "" {
		dc.SetFontFace(opts.Face)
		dc.SetColor(opts.Palette.Text)
		dc.DrawStringAnchored(f.Caption, 4, float64(f.Rows)*cs+footerHeight/2, 0, 0.5)
	}
	return dc.Image(), nil
}

func WritePNG(w io.Writer, f Frame, opts Options) error {
	img, err := Draw(f, opts)
	if err != nil {
		return err
	}
	return gg.NewContextForImage(img).EncodePNG(w)
}

func SavePNG(path string, f Frame, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WritePNG(file, f, opts)
}
