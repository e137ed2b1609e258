package snapshot

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/render"
)

// Palette holds the colours of one export theme.
type Palette struct {
	Background color.RGBA
	Free       color.RGBA
	Wall       color.RGBA
	Start      color.RGBA
	Goal       color.RGBA
	Visited    color.RGBA
	Path       color.RGBA
	Text       color.RGBA
}

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

var Palettes = map[string]Palette{
	"default": {
		Background: hex(0x0a0a0a),
		Free:       hex(0x1e1e2e),
		Wall:       hex(0x585b70),
		Start:      hex(0x00d26a),
		Goal:       hex(0xff4757),
		Visited:    hex(0x3a86ff),
		Path:       hex(0xffd166),
		Text:       hex(0xe0e0e0),
	},
	"light": {
		Background: hex(0xffffff),
		Free:       hex(0xf4f4f4),
		Wall:       hex(0x222222),
		Start:      hex(0x2e8b57),
		Goal:       hex(0xc0392b),
		Visited:    hex(0x9ecae1),
		Path:       hex(0xf39c12),
		Text:       hex(0x111111),
	},
	"matrix": {
		Background: hex(0x000000),
		Free:       hex(0x001a00),
		Wall:       hex(0x00ff41),
		Start:      hex(0xffffff),
		Goal:       hex(0xff0000),
		Visited:    hex(0x008f11),
		Path:       hex(0xd4ff00),
		Text:       hex(0x00ff41),
	},
}

// GetPalette returns the named palette, falling back to "default".
func GetPalette(name string) Palette {
	if p, ok := Palettes[name]; ok {
		return p
	}
	return Palettes["default"]
}

func PaletteNames() []string {
	names := make([]string, 0, len(Palettes))
	for n := range Palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CellColor resolves what a cell is painted with. Endpoints and walls win
// over overlay marks.
func (p Palette) CellColor(v render.CellView) color.RGBA {
	switch v.Kind {
	case grid.KindWall:
		return p.Wall
	case grid.KindStart:
		return p.Start
	case grid.KindGoal:
		return p.Goal
	}
	switch v.Mark {
	case render.Path:
		return p.Path
	case render.Visited:
		return p.Visited
	}
	return p.Free
}

func (p Palette) colors() color.Palette {
	return color.Palette{p.Background, p.Free, p.Wall, p.Start, p.Goal, p.Visited, p.Path, p.Text}
}

func cssColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
