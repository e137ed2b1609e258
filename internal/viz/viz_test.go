package viz

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/player"
	"github.com/san-kum/mazeplay/internal/render"
	"github.com/san-kum/mazeplay/internal/service"
	"github.com/san-kum/mazeplay/internal/session"
)

type stubService struct{}

func (stubService) Generate(ctx context.Context, req service.GenerateRequest) (*service.GenerateResponse, error) {
	cells := make([][]int, req.Rows)
	for r := range cells {
		cells[r] = make([]int, req.Cols)
	}
	cells[0][1] = 1
	return &service.GenerateResponse{Grid: cells, GenTimeMs: 2}, nil
}

func (stubService) Solve(ctx context.Context, req service.SolveRequest) (*service.SolveResponse, error) {
	return &service.SolveResponse{
		Visited: [][]int{{1, 0}, {1, 1}},
		Path:    [][]int{{0, 0}, {1, 0}, {1, 1}},
	}, nil
}

func (stubService) Compare(ctx context.Context, req service.CompareRequest) (*service.CompareResponse, error) {
	return &service.CompareResponse{Results: []service.AlgoStat{{Algo: "BFS", TimeMs: 1}, {Algo: "DFS", TimeMs: 2}}}, nil
}

func newTestModel() (Model, *player.ManualScheduler) {
	sched := player.NewManualScheduler()
	ctl := session.New(stubService{}, session.WithScheduler(sched), session.WithSize(5, 5))
	return NewModel(context.Background(), AppConfig{
		Controller: ctl,
		Params:     session.GenerateParams{Rows: 5, Cols: 5, Density: 20},
		Algo:       "bfs",
		ExportDir:  "",
	}), sched
}

func press(t *testing.T, m Model, key string) (Model, tea.Msg) {
	t.Helper()
	var k tea.KeyMsg
	if len(key) == 1 {
		k = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	} else {
		k = tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	next, cmd := m.Update(k)
	model := next.(Model)
	if cmd == nil {
		return model, nil
	}
	return model, cmd()
}

func TestGridViewShape(t *testing.T) {
	m := grid.Reset(5, 6)
	r := render.New(5, 6)
	out := GridView(r.Render(m), 5, 6, ThemeMinimal)

	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 12 {
			t.Errorf("line %d has width %d, want 12", i, w)
		}
	}
	if !strings.Contains(lines[0], "S") || !strings.Contains(lines[4], "G") {
		t.Error("start/goal labels missing")
	}
}

func TestMinimapShape(t *testing.T) {
	m := grid.Reset(60, 80)
	r := render.New(60, 80)
	r.Mark(grid.C(0, 1), render.Path)
	out := Minimap(r.Render(m), 60, 80, grid.Steps{grid.C(0, 0), grid.C(0, 1)}, ThemeOcean)

	lines := strings.Split(out, "\n")
	if len(lines) != 15 {
		t.Fatalf("expected 15 lines, got %d", len(lines))
	}
	if w := lipgloss.Width(lines[0]); w != 40 {
		t.Errorf("expected width 40, got %d", w)
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(2, 1)
	c.DrawLine(0, 0, 3, 0)
	for x := 0; x < 4; x++ {
		if !c.IsSet(x, 0) {
			t.Errorf("pixel (%d,0) not set", x)
		}
	}
	if c.IsSet(0, 1) {
		t.Error("unexpected pixel (0,1)")
	}
	if got := c.String(); got != "⠉⠉\n" {
		t.Errorf("got %q", got)
	}
	c.Clear()
	if c.IsSet(0, 0) {
		t.Error("clear left pixels")
	}
}

func TestGenerateAndSolveKeys(t *testing.T) {
	m, sched := newTestModel()

	m, msg := press(t, m, "g")
	if m.pending != 1 {
		t.Errorf("expected one pending action, got %d", m.pending)
	}
	next, _ := m.Update(msg)
	m = next.(Model)
	if m.pending != 0 || m.flashErr {
		t.Fatalf("generate failed: %q", m.flash)
	}
	if !m.cfg.Controller.Model().IsWall(grid.C(0, 1)) {
		t.Error("generated maze not installed")
	}

	m, msg = press(t, m, "s")
	next, _ = m.Update(msg)
	m = next.(Model)
	sched.Flush()
	if v, p := m.cfg.Controller.Renderer().Counts(); v != 0 || p != 2 {
		t.Errorf("Counts() = %d/%d, want 0/2", v, p)
	}

	view := m.View()
	if !strings.Contains(view, "Solve (BFS)") {
		t.Error("status missing from view")
	}
}

func TestSettingsKeys(t *testing.T) {
	m, _ := newTestModel()

	m, _ = press(t, m, "a")
	if m.algo != "dfs" {
		t.Errorf("expected dfs, got %s", m.algo)
	}
	m, _ = press(t, m, "+")
	if m.params.Density != 25 {
		t.Errorf("expected density 25, got %v", m.params.Density)
	}
	for i := 0; i < 10; i++ {
		m, _ = press(t, m, "+")
	}
	if m.params.Density != session.MaxDensity {
		t.Errorf("density not capped: %v", m.params.Density)
	}
	m, _ = press(t, m, "[")
	if m.params.Rows != grid.MinRows {
		t.Errorf("rows not clamped: %d", m.params.Rows)
	}

	theme := m.theme.Name
	m, _ = press(t, m, "t")
	if m.theme.Name == theme {
		t.Error("theme did not change")
	}
}

func TestCompareShownInPanel(t *testing.T) {
	m, _ := newTestModel()
	m, msg := press(t, m, "c")
	next, _ := m.Update(msg)
	m = next.(Model)

	view := m.View()
	if !strings.Contains(view, "Comparison (sorted by time)") || !strings.Contains(view, "DFS") {
		t.Error("comparison not rendered")
	}
	if !strings.Contains(m.statsText(), "BFS: 1 ms") {
		t.Errorf("stats text = %q", m.statsText())
	}
}

func TestGIFWithoutSolve(t *testing.T) {
	m, _ := newTestModel()
	m, msg := press(t, m, "G")
	next, _ := m.Update(msg)
	m = next.(Model)
	if !m.flashErr {
		t.Error("expected an error flash")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestThemes(t *testing.T) {
	if NextTheme("sunset").Name != "cyberpunk" {
		t.Error("themes do not wrap")
	}
	if GetTheme("nope").Name != "cyberpunk" {
		t.Error("unknown theme should fall back")
	}
	p := ThemeOcean.Palette()
	if p.Path.R != 0xff || p.Path.G != 0xd7 || p.Path.B != 0 {
		t.Errorf("unexpected path colour %v", p.Path)
	}
	if r, g, b := parseHex("bogus"); r != 255 || g != 255 || b != 255 {
		t.Error("bad hex should be white")
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0.5, 4); got != "██░░" {
		t.Errorf("got %q", got)
	}
	if got := ProgressBar(2, 3); got != "███" {
		t.Errorf("got %q", got)
	}
}

func TestPNGExportDirectory(t *testing.T) {
	m, _ := newTestModel()
	dir := filepath.Join(t.TempDir(), "exports", "png")
	m.cfg.ExportDir = dir

	msg := m.pngCmd()().(actionMsg)
	if msg.err != nil {
		t.Fatalf("export failed: %v", msg.err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one file in %s, got %v (%v)", dir, entries, err)
	}

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	m.cfg.ExportDir = filepath.Join(blocker, "exports")
	msg = m.pngCmd()().(actionMsg)
	if msg.err == nil {
		t.Fatal("expected an error when the export directory cannot be created")
	}
	m.handleResult(msg)
	if !m.flashErr || !strings.Contains(m.flash, "png failed") {
		t.Errorf("flash = %q (err %v)", m.flash, m.flashErr)
	}
}
