// Package render projects a grid model into per-cell visual states and keeps
// the transient visited/path overlay that playback paints onto it.
package render

import (
	"sync"

	"github.com/san-kum/mazeplay/internal/grid"
)

// Mark is a transient overlay annotation on a cell.
type Mark uint8

const (
	None Mark = iota
	Visited
	Path
)

func (m Mark) String() string {
	switch m {
	case Visited:
		return "visited"
	case Path:
		return "path"
	default:
		return "none"
	}
}

// CellView is the visual state of one cell.
type CellView struct {
	grid.Coord
	Kind grid.Kind
	Mark Mark
}

// Renderer owns the overlay. Walls, start and goal always come from the
// model passed to Render.
type Renderer struct {
	mu         sync.RWMutex
	rows, cols int
	overlay    []Mark
}

func New(rows, cols int) *Renderer {
	r := &Renderer{}
	r.Resize(rows, cols)
	return r
}

// Resize drops the overlay and adopts new dimensions.
func (r *Renderer) Resize(rows, cols int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows, r.cols = rows, cols
	r.overlay = make([]Mark, rows*cols)
}

func (r *Renderer) Dims() (rows, cols int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rows, r.cols
}

// Render returns the cells of m in row-major order with the overlay applied.
func (r *Renderer) Render(m *grid.Model) []CellView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CellView, 0, m.Rows()*m.Cols())
	for row := 0; row < m.Rows(); row++ {
		for col := 0; col < m.Cols(); col++ {
			kind, _ := m.CellKind(row, col)
			out = append(out, CellView{Coord: grid.C(row, col), Kind: kind, Mark: r.markAt(row, col)})
		}
	}
	return out
}

func (r *Renderer) markAt(row, col int) Mark {
	if row < 0 || row >= r.rows || col < 0 || col >= r.cols {
		return None
	}
	return r.overlay[row*r.cols+col]
}

// Mark applies m at c and reports whether the cell changed. Path supersedes
// visited; nothing downgrades a path mark.
func (r *Renderer) Mark(c grid.Coord, m Mark) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.Row < 0 || c.Row >= r.rows || c.Col < 0 || c.Col >= r.cols {
		return false
	}
	i := c.Row*r.cols + c.Col
	if m <= r.overlay[i] {
		return false
	}
	r.overlay[i] = m
	return true
}

// MarkAt returns the overlay mark at c.
func (r *Renderer) MarkAt(c grid.Coord) Mark {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.markAt(c.Row, c.Col)
}

// ClearMarks resets the overlay only.
func (r *Renderer) ClearMarks() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.overlay {
		r.overlay[i] = None
	}
}

// Counts returns the number of visited and path marks currently shown.
func (r *Renderer) Counts() (visited, path int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.overlay {
		switch m {
		case Visited:
			visited++
		case Path:
			path++
		}
	}
	return visited, path
}
