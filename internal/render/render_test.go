package render

import (
	"testing"

	"github.com/san-kum/mazeplay/internal/grid"
)

func testModel(t *testing.T) *grid.Model {
	t.Helper()
	m, err := grid.FromCells([][]int{
		{0, 1, 0},
		{0, 1, 0},
		{0, 0, 0},
	}, grid.C(0, 0), grid.C(0, 2))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func layout(cells []CellView) []grid.Kind {
	out := make([]grid.Kind, len(cells))
	for i, c := range cells {
		out[i] = c.Kind
	}
	return out
}

func TestRenderRowMajor(t *testing.T) {
	m := testModel(t)
	r := New(m.Rows(), m.Cols())

	cells := r.Render(m)
	if len(cells) != 9 {
		t.Fatalf("expected 9 cells, got %d", len(cells))
	}
	want := []grid.Kind{
		grid.KindStart, grid.KindWall, grid.KindGoal,
		grid.KindFree, grid.KindWall, grid.KindFree,
		grid.KindFree, grid.KindFree, grid.KindFree,
	}
	for i, k := range layout(cells) {
		if k != want[i] {
			t.Errorf("cell %d: got %s, want %s", i, k, want[i])
		}
		if cells[i].Coord != grid.C(i/3, i%3) {
			t.Errorf("cell %d: got coord %s", i, cells[i].Coord)
		}
	}
}

func TestClearMarksKeepsLayout(t *testing.T) {
	m := testModel(t)
	r := New(m.Rows(), m.Cols())

	r.Mark(grid.C(1, 0), Visited)
	r.Mark(grid.C(2, 1), Path)
	before := layout(r.Render(m))

	r.ClearMarks()
	after := r.Render(m)

	for i, k := range layout(after) {
		if k != before[i] {
			t.Errorf("cell %d kind changed: %s -> %s", i, before[i], k)
		}
		if after[i].Mark != None {
			t.Errorf("cell %d still marked %s", i, after[i].Mark)
		}
	}
}

func TestMarkPrecedence(t *testing.T) {
	r := New(3, 3)
	c := grid.C(1, 1)

	tests := []struct {
		mark    Mark
		changed bool
		want    Mark
	}{
		{Visited, true, Visited},
		{Visited, false, Visited},
		{Path, true, Path},
		{Visited, false, Path},
		{Path, false, Path},
	}
	for i, tt := range tests {
		if got := r.Mark(c, tt.mark); got != tt.changed {
			t.Errorf("step %d: Mark(%s) changed = %v, want %v", i, tt.mark, got, tt.changed)
		}
		if got := r.MarkAt(c); got != tt.want {
			t.Errorf("step %d: MarkAt = %s, want %s", i, got, tt.want)
		}
	}
}

func TestMarkOutOfBoundsIgnored(t *testing.T) {
	r := New(3, 3)
	if r.Mark(grid.C(3, 0), Visited) {
		t.Error("out-of-bounds mark reported a change")
	}
	if v, p := r.Counts(); v != 0 || p != 0 {
		t.Errorf("expected empty overlay, got %d/%d", v, p)
	}
}

func TestCountsAndResize(t *testing.T) {
	r := New(3, 3)
	r.Mark(grid.C(0, 1), Visited)
	r.Mark(grid.C(0, 2), Visited)
	r.Mark(grid.C(1, 1), Path)

	if v, p := r.Counts(); v != 2 || p != 1 {
		t.Errorf("Counts() = %d/%d, want 2/1", v, p)
	}

	r.Resize(4, 4)
	if rows, cols := r.Dims(); rows != 4 || cols != 4 {
		t.Errorf("Dims() = %dx%d after resize", rows, cols)
	}
	if v, p := r.Counts(); v != 0 || p != 0 {
		t.Error("resize kept overlay")
	}
}
