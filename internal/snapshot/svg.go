package snapshot

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/render"
)

// SVG renders f as a standalone SVG document, one rect per cell.
func SVG(f Frame, opts Options) (string, error) {
	if f.Rows <= 0 || f.Cols <= 0 || len(f.Cells) != f.Rows*f.Cols {
		return "", ErrEmptyFrame
	}
	opts = opts.normalized()
	cs := opts.CellSize
	width := f.Cols * cs
	height := f.Rows * cs
	if f.Caption != "" {
		height += footerHeight
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, cssColor(opts.Palette.Background)))

	size := cs - 1
	if cs < 6 {
		size = cs
	}
	for _, cell := range f.Cells {
		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="%s"/>
`, cell.Col*cs, cell.Row*cs, size, size, cssColor(opts.Palette.CellColor(cell)), cellClass(cell)))
	}

	if f.Caption != "" {
		sb.WriteString(fmt.Sprintf(`<text x="4" y="%d" fill="%s" font-family="monospace" font-size="12" dominant-baseline="middle">%s</text>
`, f.Rows*cs+footerHeight/2, cssColor(opts.Palette.Text), escapeXML(f.Caption)))
	}
	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

func cellClass(c render.CellView) string {
	if c.Kind == grid.KindFree && c.Mark != render.None {
		return c.Mark.String()
	}
	return c.Kind.String()
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func WriteSVG(w io.Writer, f Frame, opts Options) error {
	doc, err := SVG(f, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, doc)
	return err
}

func SaveSVG(path string, f Frame, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteSVG(file, f, opts)
}
