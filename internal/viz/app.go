package viz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/player"
	"github.com/san-kum/mazeplay/internal/service"
	"github.com/san-kum/mazeplay/internal/session"
	"github.com/san-kum/mazeplay/internal/snapshot"
	"github.com/san-kum/mazeplay/internal/storage"
)

const (
	panelWidth  = 56
	densityStep = 5
	sizeStep    = 5
)

type TickMsg time.Time

// actionMsg reports a finished session action.
type actionMsg struct {
	op   string
	note string
	err  error
}

// AppConfig wires the interactive program.
type AppConfig struct {
	Controller   *session.Controller
	Store        *storage.Store // nil disables saving runs
	ExportDir    string
	Params       session.GenerateParams
	Algo         string
	Theme        string
	VisitedDelay time.Duration
	PathDelay    time.Duration
	Logger       *log.Logger
	// Replay, when set, is played as soon as the program starts.
	Replay *storage.Record
}

// Model is the bubbletea model. Playback paints the renderer from timer
// goroutines; View reads it on every tick.
type Model struct {
	cfg           AppConfig
	ctx           context.Context
	params        session.GenerateParams
	algo          string
	theme         Theme
	width, height int
	frame         int
	pending       int
	showHelp      bool
	flash         string
	flashErr      bool
}

func NewModel(ctx context.Context, cfg AppConfig) Model {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "."
	}
	algo := cfg.Algo
	if a, err := service.LookupAlgorithm(algo); err == nil {
		algo = a.Key
	} else {
		algo = service.Algorithms[0].Key
	}
	return Model{
		cfg:    cfg,
		ctx:    ctx,
		params: cfg.Params,
		algo:   algo,
		theme:  GetTheme(cfg.Theme),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	if m.cfg.Replay != nil {
		return tea.Batch(tick(), m.replayCmd(m.cfg.Replay))
	}
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case TickMsg:
		m.frame++
		return m, tick()
	case actionMsg:
		m.pending = max(m.pending-1, 0)
		m.handleResult(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleResult(msg actionMsg) {
	switch {
	case errors.Is(msg.err, session.ErrSuperseded):
		m.cfg.Logger.Debug("result superseded", "op", msg.op)
	case msg.err != nil:
		m.flash, m.flashErr = fmt.Sprintf("%s failed: %v", msg.op, msg.err), true
		m.cfg.Logger.Warn("action failed", "op", msg.op, "err", msg.err)
	case msg.note != "":
		m.flash, m.flashErr = msg.note, false
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.cfg.Controller
	switch msg.String() {
	case "q", "ctrl+c":
		ctl.Cancel()
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "g":
		return m.start(m.generateCmd())
	case "s":
		return m.start(m.solveCmd())
	case "c":
		return m.start(m.compareCmd())
	case "r":
		ctl.Reset(m.params.Rows, m.params.Cols)
		m.flash = ""
	case "x":
		ctl.Cancel()
	case "a":
		m.algo = service.NextAlgorithm(m.algo)
	case "t":
		m.theme = NextTheme(m.theme.Name)
		SetTheme(m.theme.Name)
	case "+", "=":
		m.params.Density = min(m.params.Density+densityStep, session.MaxDensity)
	case "-", "_":
		m.params.Density = max(m.params.Density-densityStep, session.MinDensity)
	case "]":
		m.params.Rows = grid.ClampRows(m.params.Rows + sizeStep)
		m.params.Cols = grid.ClampCols(m.params.Cols + sizeStep)
	case "[":
		m.params.Rows = grid.ClampRows(max(m.params.Rows-sizeStep, grid.MinRows))
		m.params.Cols = grid.ClampCols(max(m.params.Cols-sizeStep, grid.MinCols))
	case "y":
		if err := clipboard.WriteAll(m.statsText()); err != nil {
			m.flash, m.flashErr = "clipboard: "+err.Error(), true
		} else {
			m.flash, m.flashErr = "stats copied to clipboard", false
		}
	case "p":
		return m.start(m.pngCmd())
	case "G":
		return m.start(m.gifCmd())
	}
	return m, nil
}

func (m Model) start(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if cmd == nil {
		return m, nil
	}
	m.pending++
	m.flash = ""
	return m, cmd
}

func (m Model) generateCmd() tea.Cmd {
	ctl, ctx, params := m.cfg.Controller, m.ctx, m.params
	return func() tea.Msg {
		_, err := ctl.Generate(ctx, params)
		return actionMsg{op: "generate", err: err}
	}
}

func (m Model) solveCmd() tea.Cmd {
	ctl, ctx, algo, st := m.cfg.Controller, m.ctx, m.algo, m.cfg.Store
	return func() tea.Msg {
		sol, err := ctl.Solve(ctx, algo)
		if err != nil {
			return actionMsg{op: "solve", err: err}
		}
		if st == nil {
			return actionMsg{op: "solve"}
		}
		id, err := st.Save(sol.Record())
		if err != nil {
			return actionMsg{op: "save", err: err}
		}
		return actionMsg{op: "solve", note: "saved run " + shortID(id)}
	}
}

func (m Model) compareCmd() tea.Cmd {
	ctl, ctx := m.cfg.Controller, m.ctx
	return func() tea.Msg {
		_, err := ctl.Compare(ctx)
		return actionMsg{op: "compare", err: err}
	}
}

func (m Model) replayCmd(rec *storage.Record) tea.Cmd {
	ctl := m.cfg.Controller
	return func() tea.Msg {
		_, err := ctl.Replay(rec)
		return actionMsg{op: "replay", err: err}
	}
}

func (m Model) pngCmd() tea.Cmd {
	view := m.cfg.Controller.Snapshot()
	frame := snapshot.Frame{Rows: view.Model.Rows(), Cols: view.Model.Cols(), Cells: view.Cells, Caption: view.Status}
	opts := snapshot.Options{Palette: m.theme.Palette()}
	dir := m.cfg.ExportDir
	return func() tea.Msg {
		path, err := exportPath(dir, "png")
		if err != nil {
			return actionMsg{op: "png", err: err}
		}
		if err := snapshot.SavePNG(path, frame, opts); err != nil {
			return actionMsg{op: "png", err: err}
		}
		return actionMsg{op: "png", note: "saved " + path}
	}
}

func (m Model) gifCmd() tea.Cmd {
	view := m.cfg.Controller.Snapshot()
	sol := view.Solve
	if sol == nil {
		return func() tea.Msg {
			return actionMsg{op: "gif", err: errors.New("nothing solved yet")}
		}
	}
	opts := snapshot.DefaultGIFOptions()
	opts.Palette = m.theme.Palette()
	opts.CellSize = 8
	if m.cfg.VisitedDelay > 0 || m.cfg.PathDelay > 0 {
		opts.VisitedDelay, opts.PathDelay = m.cfg.VisitedDelay, m.cfg.PathDelay
	}
	opts.MarksPerFrame = max(1, (len(sol.Visited)+len(sol.Path))/150)
	opts.Caption = fmt.Sprintf("%s | visited %d | path %d", strings.ToUpper(sol.Algo), sol.VisitedCount, sol.PathLength)
	dir := m.cfg.ExportDir
	return func() tea.Msg {
		path, err := exportPath(dir, "gif")
		if err != nil {
			return actionMsg{op: "gif", err: err}
		}
		anim, err := snapshot.RecordGIF(sol.Model, sol.Visited, sol.Path, opts)
		if err != nil {
			return actionMsg{op: "gif", err: err}
		}
		if err := snapshot.SaveGIF(path, anim); err != nil {
			return actionMsg{op: "gif", err: err}
		}
		return actionMsg{op: "gif", note: fmt.Sprintf("saved %s (%d frames)", path, len(anim.Image))}
	}
}

// exportPath creates dir if needed and returns a timestamped file name in it.
func exportPath(dir, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	name := fmt.Sprintf("maze-%s.%s", time.Now().Format("20060102-150405"), ext)
	return filepath.Join(dir, name), nil
}

// statsText is the plain-text summary copied to the clipboard.
func (m Model) statsText() string {
	view := m.cfg.Controller.Snapshot()
	var b strings.Builder
	b.WriteString(view.Status)
	if len(view.Compare) > 0 {
		b.WriteString("\nComparison (sorted by time)")
		for _, r := range view.Compare {
			fmt.Fprintf(&b, "\n%s: %v ms | visited %d | path %d", r.Algo, r.TimeMs, r.VisitedCount, r.PathLength)
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m Model) View() string {
	view := m.cfg.Controller.Snapshot()
	rows, cols := view.Model.Rows(), view.Model.Cols()

	var board string
	if m.fits(rows, cols) {
		board = GridFrame.Render(GridView(view.Cells, rows, cols, m.theme))
	} else {
		var path grid.Steps
		if view.Solve != nil && view.Solve.Model.Equal(view.Model) {
			path = view.Solve.Path
		}
		board = GridFrame.Render(Minimap(view.Cells, rows, cols, path, m.theme))
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top, board, Panel.Render(m.panel(view)))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (m Model) fits(rows, cols int) bool {
	if m.width == 0 || m.height == 0 {
		return true
	}
	return cols*2+2+panelWidth <= m.width && rows+2 <= m.height
}

func (m Model) panel(view session.View) string {
	var s strings.Builder
	s.WriteString(GradientText("MAZEPLAY", m.theme.Primary, m.theme.Accent) + "\n\n")

	state := view.State.String()
	stateColor := m.theme.Muted
	switch {
	case view.Busy || m.pending > 0:
		state = AnimatedSpinner(m.frame) + " working"
		stateColor = m.theme.Accent
	case view.State != player.Idle:
		state = AnimatedSpinner(m.frame) + " " + state
		stateColor = m.theme.Primary
	}
	s.WriteString(statusStyle(stateColor).Render(strings.ToUpper(state)) + "\n\n")

	label := func(k, v string) {
		s.WriteString(MetricLabel.Render(k) + MetricValue.Render(v) + "\n")
	}
	a, _ := service.LookupAlgorithm(m.algo)
	label("Algo", a.Label)
	label("Grid", fmt.Sprintf("%dx%d (next %dx%d)", view.Model.Rows(), view.Model.Cols(), grid.ClampRows(m.params.Rows), grid.ClampCols(m.params.Cols)))
	label("Density", fmt.Sprintf("%.0f%% walls (next %.0f%%)", view.Model.Density()*100, m.params.Density))
	label("Theme", m.theme.Name)

	if sol := view.Solve; sol != nil {
		v, p := m.cfg.Controller.Renderer().Counts()
		label("Marks", fmt.Sprintf("%d visited, %d path", v, p))
		s.WriteString(MetricLabel.Render("Progress") + lipgloss.NewStyle().Foreground(m.theme.Path).Render(ProgressBar(progress(sol), 24)) + "\n")
	}

	if view.Status != "" {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Text).Width(panelWidth-6).Render(view.Status) + "\n")
	}

	if len(view.Compare) > 0 {
		s.WriteString("\n" + Separator(panelWidth-6) + "\n")
		s.WriteString(MetricValue.Render("Comparison (sorted by time)") + "\n")
		times := make([]float64, len(view.Compare))
		for i, r := range view.Compare {
			times[i] = r.TimeMs
			s.WriteString(fmt.Sprintf("%-9s %v ms | visited %d | path %d\n", r.Algo, r.TimeMs, r.VisitedCount, r.PathLength))
		}
		s.WriteString(SparklineChart(times) + "\n")
		if len(times) > 1 {
			chart := asciigraph.Plot(times, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("ms by rank"))
			s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Accent).Render(chart) + "\n")
		}
	}

	if m.flash != "" {
		color := m.theme.Primary
		if m.flashErr {
			color = m.theme.Error
		}
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(color).Width(panelWidth-6).Render(m.flash) + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("G:Gen S:Solve C:Compare R:Reset A:Algo\nX:Stop T:Theme Y:Copy P:PNG ⇧G:GIF ?:Help Q:Quit"))
	return s.String()
}

// progress is how much of sol's playback has been consumed.
func progress(sol *session.Solution) float64 {
	total := len(sol.Visited) + len(sol.Path)
	if total == 0 || sol.Run == nil {
		return 1
	}
	switch sol.Run.Phase() {
	case player.PhaseVisited:
		return float64(sol.Run.Cursor()) / float64(total)
	case player.PhasePath:
		return float64(len(sol.Visited)+sol.Run.Cursor()) / float64(total)
	}
	if sol.Run.Outcome() == player.OutcomeComplete {
		return 1
	}
	return 0
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  G        - Generate a new maze      ║
║  S        - Solve with current algo  ║
║  C        - Compare all algorithms   ║
║  R        - Reset to an empty grid   ║
║  A        - Cycle algorithm          ║
║  X        - Stop the animation       ║
║  + / -    - Wall density ±5%         ║
║  [ / ]    - Grid size ±5             ║
║  T        - Cycle themes             ║
║  Y        - Copy stats to clipboard  ║
║  P        - Save frame as PNG        ║
║  Shift+G  - Save last solve as GIF   ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the interactive program and blocks until it exits.
func Run(ctx context.Context, cfg AppConfig) error {
	SetTheme(cfg.Theme)
	p := tea.NewProgram(NewModel(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
