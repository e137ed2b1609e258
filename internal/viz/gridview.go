package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/render"
)

// GridView draws one cell as two terminal columns.
func GridView(cells []render.CellView, rows, cols int, t Theme) string {
	if rows*cols != len(cells) {
		return ""
	}
	block := func(c lipgloss.Color) string {
		return lipgloss.NewStyle().Background(c).Render("  ")
	}
	var (
		free    = block(t.Free)
		wall    = block(t.Wall)
		start   = lipgloss.NewStyle().Background(t.Start).Foreground(lipgloss.Color("#000000")).Bold(true).Render("S ")
		goal    = lipgloss.NewStyle().Background(t.Goal).Foreground(lipgloss.Color("#000000")).Bold(true).Render("G ")
		visited = block(t.Visited)
		path    = block(t.Path)
	)

	var b strings.Builder
	for i, cell := range cells {
		switch {
		case cell.Kind == grid.KindWall:
			b.WriteString(wall)
		case cell.Kind == grid.KindStart:
			b.WriteString(start)
		case cell.Kind == grid.KindGoal:
			b.WriteString(goal)
		case cell.Mark == render.Path:
			b.WriteString(path)
		case cell.Mark == render.Visited:
			b.WriteString(visited)
		default:
			b.WriteString(free)
		}
		if (i+1)%cols == 0 && i+1 < len(cells) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Minimap draws the grid at one Braille dot per cell for grids that do not
// fit the terminal. Walls are dimmed; marked cells and the path drawn so
// far are highlighted.
func Minimap(cells []render.CellView, rows, cols int, path grid.Steps, t Theme) string {
	if rows*cols != len(cells) {
		return ""
	}
	w, h := (cols+1)/2, (rows+3)/4
	walls := NewCanvas(w, h)
	overlay := NewCanvas(w, h)

	marked := make(map[grid.Coord]bool)
	for _, cell := range cells {
		switch {
		case cell.Kind == grid.KindWall:
			walls.Set(cell.Col, cell.Row)
		case cell.Kind == grid.KindStart || cell.Kind == grid.KindGoal:
			overlay.Set(cell.Col, cell.Row)
			marked[cell.Coord] = true
		case cell.Mark != render.None:
			overlay.Set(cell.Col, cell.Row)
			if cell.Mark == render.Path {
				marked[cell.Coord] = true
			}
		}
	}
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		if marked[a] && marked[b] {
			overlay.DrawLine(a.Col, a.Row, b.Col, b.Row)
		}
	}

	wallStyle := lipgloss.NewStyle().Foreground(t.Wall)
	hotStyle := lipgloss.NewStyle().Foreground(t.Path)
	var b strings.Builder
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			if r := overlay.Grid[row][col]; r != 0x2800 {
				b.WriteString(hotStyle.Render(string(r)))
			} else {
				b.WriteString(wallStyle.Render(string(walls.Grid[row][col])))
			}
		}
		if row < h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
