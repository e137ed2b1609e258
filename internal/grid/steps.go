package grid

// Steps is an ordered list of cells produced by a solver, either the order in
// which cells were visited or the final path.
type Steps []Coord

// ParseSteps converts wire pairs [[r,c], ...] into Steps.
func ParseSteps(pairs [][]int) (Steps, error) {
	out := make(Steps, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, invalidf("step %d has %d components, want 2", i, len(p))
		}
		out = append(out, C(p[0], p[1]))
	}
	return out, nil
}

// Validate returns an *OutOfBoundsError for the first step outside m.
func (s Steps) Validate(m *Model) error {
	for _, c := range s {
		if !m.InBounds(c) {
			return &OutOfBoundsError{Coord: c, Rows: m.rows, Cols: m.cols}
		}
	}
	return nil
}

// Pairs returns the wire form.
func (s Steps) Pairs() [][]int {
	out := make([][]int, len(s))
	for i, c := range s {
		out[i] = []int{c.Row, c.Col}
	}
	return out
}

func (s Steps) Clone() Steps {
	if s == nil {
		return nil
	}
	c := make(Steps, len(s))
	copy(c, s)
	return c
}
