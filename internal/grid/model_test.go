package grid

import (
	"errors"
	"testing"
)

func TestReset(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		wantRows   int
		wantCols   int
	}{
		{"defaults on zero", 0, 0, 20, 25},
		{"defaults on negative", -3, -1, 20, 25},
		{"clamp low", 2, 3, 5, 5},
		{"clamp high", 100, 200, 60, 80},
		{"in range", 12, 30, 12, 30},
		{"exact bounds", 5, 80, 5, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Reset(tt.rows, tt.cols)
			if m.Rows() != tt.wantRows || m.Cols() != tt.wantCols {
				t.Fatalf("Reset(%d,%d) = %dx%d, want %dx%d", tt.rows, tt.cols, m.Rows(), m.Cols(), tt.wantRows, tt.wantCols)
			}
			if m.Start() != C(0, 0) {
				t.Errorf("start = %s, want (0,0)", m.Start())
			}
			if m.Goal() != C(tt.wantRows-1, tt.wantCols-1) {
				t.Errorf("goal = %s, want bottom-right", m.Goal())
			}
			if m.WallCount() != 0 {
				t.Errorf("expected no walls, got %d", m.WallCount())
			}
		})
	}
}

func TestResetEndpointsNeverCollide(t *testing.T) {
	for rows := -1; rows <= MaxRows+1; rows++ {
		for cols := -1; cols <= MaxCols+1; cols += 7 {
			m := Reset(rows, cols)
			if m.Start() == m.Goal() {
				t.Fatalf("Reset(%d,%d): start == goal", rows, cols)
			}
			if m.IsWall(m.Start()) || m.IsWall(m.Goal()) {
				t.Fatalf("Reset(%d,%d): endpoint is a wall", rows, cols)
			}
		}
	}
}

func sampleCells() [][]int {
	return [][]int{
		{0, 1, 0, 0, 0},
		{0, 1, 0, 1, 0},
		{0, 0, 0, 1, 0},
		{1, 1, 0, 1, 0},
		{0, 0, 0, 0, 0},
	}
}

func TestLoad(t *testing.T) {
	m := Reset(5, 5)
	if err := m.Load(sampleCells(), C(0, 0), C(4, 4)); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if m.WallCount() != 7 {
		t.Errorf("expected 7 walls, got %d", m.WallCount())
	}
	if !m.IsWall(C(0, 1)) {
		t.Error("expected wall at (0,1)")
	}
}

func TestLoadRejectsOutOfBoundsStart(t *testing.T) {
	m := Reset(5, 5)
	before := m.Clone()

	err := m.Load(sampleCells(), C(10, 10), C(4, 4))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var ige *InvalidGridError
	if !errors.As(err, &ige) {
		t.Fatalf("expected *InvalidGridError, got %T", err)
	}
	if !errors.Is(err, ErrInvalidGrid) {
		t.Error("expected errors.Is(err, ErrInvalidGrid)")
	}
	if !m.Equal(before) {
		t.Error("model changed after failed load")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name        string
		cells       [][]int
		start, goal Coord
	}{
		{"empty", [][]int{}, C(0, 0), C(1, 1)},
		{"empty row", [][]int{{}}, C(0, 0), C(1, 1)},
		{"ragged", [][]int{{0, 0}, {0}}, C(0, 0), C(0, 1)},
		{"bad value", [][]int{{0, 2}, {0, 0}}, C(0, 0), C(1, 1)},
		{"goal outside", [][]int{{0, 0}, {0, 0}}, C(0, 0), C(2, 0)},
		{"negative start", [][]int{{0, 0}, {0, 0}}, C(-1, 0), C(1, 1)},
		{"same endpoints", [][]int{{0, 0}, {0, 0}}, C(1, 1), C(1, 1)},
		{"wall start", [][]int{{1, 0}, {0, 0}}, C(0, 0), C(1, 1)},
		{"wall goal", [][]int{{0, 0}, {0, 1}}, C(0, 0), C(1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Reset(5, 5)
			if err := m.Load(tt.cells, tt.start, tt.goal); !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("expected invalid grid error, got %v", err)
			}
			if m.Rows() != 5 || m.Cols() != 5 {
				t.Error("model changed after failed load")
			}
		})
	}
}

func TestCellKind(t *testing.T) {
	m, err := FromCells(sampleCells(), C(0, 0), C(4, 4))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		r, c int
		want Kind
	}{
		{0, 0, KindStart},
		{4, 4, KindGoal},
		{0, 1, KindWall},
		{0, 2, KindFree},
	}
	for _, tt := range tests {
		got, err := m.CellKind(tt.r, tt.c)
		if err != nil {
			t.Fatalf("CellKind(%d,%d): %v", tt.r, tt.c, err)
		}
		if got != tt.want {
			t.Errorf("CellKind(%d,%d) = %s, want %s", tt.r, tt.c, got, tt.want)
		}
	}

	_, err = m.CellKind(5, 0)
	var oob *OutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("expected *OutOfBoundsError, got %v", err)
	}
	if oob.Coord != C(5, 0) {
		t.Errorf("unexpected coord in error: %s", oob.Coord)
	}
}

func TestCellsRoundTrip(t *testing.T) {
	m, err := FromCells(sampleCells(), C(0, 0), C(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	again, err := FromCells(m.Cells(), m.Start(), m.Goal())
	if err != nil {
		t.Fatal(err)
	}
	if !m.Equal(again) {
		t.Error("Cells() did not reproduce the grid")
	}
}

func TestCloneIndependent(t *testing.T) {
	m := Reset(5, 5)
	c := m.Clone()
	if err := m.Load(sampleCells(), C(0, 0), C(4, 4)); err != nil {
		t.Fatal(err)
	}
	if c.WallCount() != 0 {
		t.Error("clone shares cells with original")
	}
}

func TestDensity(t *testing.T) {
	m, err := FromCells([][]int{{0, 1}, {1, 0}}, C(0, 0), C(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Density(); got != 0.5 {
		t.Errorf("Density() = %v, want 0.5", got)
	}
}
