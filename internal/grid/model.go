package grid

// Model is a maze grid with a start and a goal.
type Model struct {
	rows, cols int
	cells      []Cell
	start      Coord
	goal       Coord
}

// ClampRows applies the row limits; non-positive input means "unset" and
// falls back to DefaultRows.
func ClampRows(rows int) int {
	return clampDim(rows, DefaultRows, MinRows, MaxRows)
}

// ClampCols applies the column limits the same way ClampRows does.
func ClampCols(cols int) int {
	return clampDim(cols, DefaultCols, MinCols, MaxCols)
}

func clampDim(v, def, lo, hi int) int {
	if v <= 0 {
		v = def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Reset returns an all-free grid with start at the top-left corner and goal
// at the bottom-right corner. Dimensions are clamped, never rejected.
func Reset(rows, cols int) *Model {
	rows, cols = ClampRows(rows), ClampCols(cols)
	return &Model{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
		start: C(0, 0),
		goal:  C(rows-1, cols-1),
	}
}

// FromCells builds a grid from a 0/1 matrix (1 = wall).
func FromCells(cells [][]int, start, goal Coord) (*Model, error) {
	rows := len(cells)
	if rows == 0 {
		return nil, invalidf("empty matrix")
	}
	cols := len(cells[0])
	if cols == 0 {
		return nil, invalidf("empty first row")
	}

	m := &Model{rows: rows, cols: cols, cells: make([]Cell, rows*cols), start: start, goal: goal}
	for r, row := range cells {
		if len(row) != cols {
			return nil, invalidf("row %d has %d columns, want %d", r, len(row), cols)
		}
		for c, v := range row {
			switch v {
			case 0:
			case 1:
				m.cells[r*cols+c] = Wall
			default:
				return nil, invalidf("cell (%d,%d) has value %d, want 0 or 1", r, c, v)
			}
		}
	}

	if err := m.checkEndpoints(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) checkEndpoints() error {
	if !m.InBounds(m.start) {
		return invalidf("start %s outside %dx%d grid", m.start, m.rows, m.cols)
	}
	if !m.InBounds(m.goal) {
		return invalidf("goal %s outside %dx%d grid", m.goal, m.rows, m.cols)
	}
	if m.start == m.goal {
		return invalidf("start and goal both at %s", m.start)
	}
	if m.IsWall(m.start) {
		return invalidf("start %s is a wall", m.start)
	}
	if m.IsWall(m.goal) {
		return invalidf("goal %s is a wall", m.goal)
	}
	return nil
}

// Load replaces the grid wholesale. On error m is left unchanged.
func (m *Model) Load(cells [][]int, start, goal Coord) error {
	next, err := FromCells(cells, start, goal)
	if err != nil {
		return err
	}
	*m = *next
	return nil
}

func (m *Model) Rows() int    { return m.rows }
func (m *Model) Cols() int    { return m.cols }
func (m *Model) Start() Coord { return m.start }
func (m *Model) Goal() Coord  { return m.goal }

// InBounds reports whether c lies inside the grid.
func (m *Model) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < m.rows && c.Col >= 0 && c.Col < m.cols
}

// IsWall reports whether c is an in-bounds wall.
func (m *Model) IsWall(c Coord) bool {
	return m.InBounds(c) && m.cells[c.Row*m.cols+c.Col] == Wall
}

// IsEndpoint reports whether c is the start or the goal.
func (m *Model) IsEndpoint(c Coord) bool {
	return c == m.start || c == m.goal
}

// CellKind returns what (r, c) renders as.
func (m *Model) CellKind(r, c int) (Kind, error) {
	at := C(r, c)
	if !m.InBounds(at) {
		return KindFree, &OutOfBoundsError{Coord: at, Rows: m.rows, Cols: m.cols}
	}
	switch {
	case at == m.start:
		return KindStart, nil
	case at == m.goal:
		return KindGoal, nil
	case m.cells[r*m.cols+c] == Wall:
		return KindWall, nil
	}
	return KindFree, nil
}

// Cells returns the grid as a fresh 0/1 matrix.
func (m *Model) Cells() [][]int {
	out := make([][]int, m.rows)
	for r := range out {
		out[r] = make([]int, m.cols)
		for c := range out[r] {
			if m.cells[r*m.cols+c] == Wall {
				out[r][c] = 1
			}
		}
	}
	return out
}

// Clone returns an independent copy.
func (m *Model) Clone() *Model {
	c := *m
	c.cells = make([]Cell, len(m.cells))
	copy(c.cells, m.cells)
	return &c
}

// Equal reports whether both grids have the same layout and endpoints.
func (m *Model) Equal(o *Model) bool {
	if m.rows != o.rows || m.cols != o.cols || m.start != o.start || m.goal != o.goal {
		return false
	}
	for i := range m.cells {
		if m.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

func (m *Model) WallCount() int {
	n := 0
	for _, v := range m.cells {
		if v == Wall {
			n++
		}
	}
	return n
}

// Density is the fraction of cells that are walls.
func (m *Model) Density() float64 {
	if len(m.cells) == 0 {
		return 0
	}
	return float64(m.WallCount()) / float64(len(m.cells))
}
