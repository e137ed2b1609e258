// Package session ties the grid, the renderer and the player to the maze
// service. It owns the current maze and turns user actions into service
// calls and playback runs.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/player"
	"github.com/san-kum/mazeplay/internal/render"
	"github.com/san-kum/mazeplay/internal/service"
	"github.com/san-kum/mazeplay/internal/storage"
)

var (
	// ErrSuperseded is returned when a newer action started before a
	// response arrived. The response is discarded.
	ErrSuperseded = errors.New("session: superseded by a newer action")

	ErrNoService = errors.New("session: no service configured")
)

// Density bounds in percent.
const (
	MinDensity     = 5
	MaxDensity     = 45
	DefaultDensity = 28
)

// ClampDensity converts a wall density percentage into the fraction sent
// to the service.
func ClampDensity(percent float64) float64 {
	if math.IsNaN(percent) {
		percent = DefaultDensity
	}
	return math.Min(MaxDensity, math.Max(MinDensity, percent)) / 100
}

type GenerateParams struct {
	Rows    int
	Cols    int
	Density float64 // percent
}

// Solution is the outcome of a solve or replay.
type Solution struct {
	Algo         string
	TimeMs       float64
	VisitedCount int
	PathLength   int
	Client       time.Duration
	Model        *grid.Model
	Visited      grid.Steps
	Path         grid.Steps
	Run          *player.Run
}

// Record converts the solution for storage.
func (s *Solution) Record() *storage.Record {
	rec := storage.NewRecord(s.Model, s.Algo, s.Visited, s.Path)
	rec.TimeMs = s.TimeMs
	rec.ClientMs = ms(s.Client)
	rec.VisitedCount = s.VisitedCount
	rec.PathLength = s.PathLength
	return rec
}

type Options struct {
	Scheduler    player.Scheduler
	Observer     func(player.Event)
	Logger       *log.Logger
	VisitedDelay time.Duration
	PathDelay    time.Duration
	Rows, Cols   int
}

type Option func(*Options)

func WithScheduler(s player.Scheduler) Option {
	return func(o *Options) { o.Scheduler = s }
}

// WithObserver forwards player events. See player.WithObserver for the
// locking rules.
func WithObserver(fn func(player.Event)) Option {
	return func(o *Options) { o.Observer = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func WithDelays(visited, path time.Duration) Option {
	return func(o *Options) {
		o.VisitedDelay = visited
		o.PathDelay = path
	}
}

// WithSize sets the dimensions of the initial empty grid.
func WithSize(rows, cols int) Option {
	return func(o *Options) {
		o.Rows = rows
		o.Cols = cols
	}
}

// Controller is the session. All methods are safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	svc      service.Service
	logger   *log.Logger
	renderer *render.Renderer
	player   *player.Player
	vd, pd   time.Duration

	seq     uint64
	busy    bool
	model   *grid.Model
	status  string
	note    string
	solve   *Solution
	compare []service.AlgoStat
}

func New(svc service.Service, options ...Option) *Controller {
	opts := Options{
		Scheduler:    player.RealScheduler{},
		VisitedDelay: player.DefaultVisitedDelay,
		PathDelay:    player.DefaultPathDelay,
		Rows:         grid.DefaultRows,
		Cols:         grid.DefaultCols,
	}
	for _, o := range options {
		o(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	model := grid.Reset(opts.Rows, opts.Cols)
	renderer := render.New(model.Rows(), model.Cols())
	popts := []player.Option{player.WithScheduler(opts.Scheduler), player.WithLogger(opts.Logger)}
	if opts.Observer != nil {
		popts = append(popts, player.WithObserver(opts.Observer))
	}

	return &Controller{
		svc:      svc,
		logger:   opts.Logger,
		renderer: renderer,
		player:   player.New(renderer, popts...),
		vd:       opts.VisitedDelay,
		pd:       opts.PathDelay,
		model:    model,
	}
}

func (c *Controller) Renderer() *render.Renderer { return c.renderer }
func (c *Controller) Player() *player.Player       { return c.player }

// Model returns a copy of the current grid.
func (c *Controller) Model() *grid.Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model.Clone()
}

// begin starts a new action: the running animation stops, the overlay is
// cleared and any in-flight action becomes stale.
func (c *Controller) begin(status string) (uint64, *grid.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.player.Cancel()
	c.renderer.ClearMarks()
	c.busy = true
	c.status = status
	return c.seq, c.model.Clone()
}

// finishLocked reports whether seq is still the latest action and clears
// the busy flag if so.
func (c *Controller) finishLocked(seq uint64) bool {
	if seq != c.seq {
		return false
	}
	c.busy = false
	return true
}

func (c *Controller) failLocked(op string, err error) error {
	c.status = "Error: " + err.Error()
	c.logger.Warn(op+" failed", "err", err)
	return fmt.Errorf("%s: %w", op, err)
}

// Generate asks the service for a new maze. Dimensions are clamped to the
// grid limits and density (percent) to [5,45].
func (c *Controller) Generate(ctx context.Context, p GenerateParams) (*grid.Model, error) {
	if c.svc == nil {
		return nil, ErrNoService
	}
	rows, cols := grid.ClampRows(p.Rows), grid.ClampCols(p.Cols)
	req := service.GenerateRequest{
		Rows:    rows,
		Cols:    cols,
		Density: ClampDensity(p.Density),
		Start:   [2]int{0, 0},
		Goal:    [2]int{rows - 1, cols - 1},
	}

	seq, _ := c.begin("Generating...")
	c.logger.Debug("generate", "rows", rows, "cols", cols, "density", req.Density)

	t0 := time.Now()
	resp, err := c.svc.Generate(ctx, req)
	client := time.Since(t0)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finishLocked(seq) {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, c.failLocked("generate", err)
	}

	start, goal := grid.C(req.Start[0], req.Start[1]), grid.C(req.Goal[0], req.Goal[1])
	if resp.Start != nil {
		start = grid.C(resp.Start[0], resp.Start[1])
	}
	if resp.Goal != nil {
		goal = grid.C(resp.Goal[0], resp.Goal[1])
	}
	m, err := grid.FromCells(resp.Grid, start, goal)
	if err != nil {
		return nil, c.failLocked("generate", err)
	}

	c.model = m
	c.renderer.Resize(m.Rows(), m.Cols())
	c.solve = nil
	c.compare = nil
	c.note = resp.Note
	c.status = fmt.Sprintf("Maze generated in %s ms (client total %d ms)", formatMs(resp.GenTimeMs), roundMs(client))
	if resp.Note != "" {
		c.status += " - " + resp.Note
	}
	c.logger.Info("maze generated", "rows", m.Rows(), "cols", m.Cols(), "walls", m.WallCount(), "gen_ms", resp.GenTimeMs)
	return m.Clone(), nil
}

// Solve asks the service to solve the current maze with algo and starts
// playback of the result.
func (c *Controller) Solve(ctx context.Context, algo string) (*Solution, error) {
	if c.svc == nil {
		return nil, ErrNoService
	}
	a, err := service.LookupAlgorithm(algo)
	if err != nil {
		return nil, err
	}

	seq, m := c.begin("Solving (" + a.Label + ")...")
	req := service.SolveRequest{Grid: m.Cells(), Start: m.Start().Pair(), Goal: m.Goal().Pair(), Algo: a.Key}

	t0 := time.Now()
	resp, err := c.svc.Solve(ctx, req)
	client := time.Since(t0)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finishLocked(seq) {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, c.failLocked("solve", err)
	}

	visited, err := grid.ParseSteps(resp.Visited)
	if err != nil {
		return nil, c.failLocked("solve", fmt.Errorf("visited: %w", err))
	}
	path, err := grid.ParseSteps(resp.Path)
	if err != nil {
		return nil, c.failLocked("solve", fmt.Errorf("path: %w", err))
	}

	sol := &Solution{
		Algo:         a.Key,
		TimeMs:       resp.TimeMs,
		VisitedCount: resp.VisitedCount,
		PathLength:   resp.PathLength,
		Client:       client,
		Model:        m,
		Visited:      visited,
		Path:         path,
	}
	if err := c.playLocked(sol); err != nil {
		return nil, c.failLocked("solve", err)
	}
	c.status = fmt.Sprintf("Solve (%s): %s ms | Visited: %d | Path: %d | Client total: %d ms",
		strings.ToUpper(a.Key), formatMs(resp.TimeMs), resp.VisitedCount, resp.PathLength, roundMs(client))
	c.logger.Info("solved", "algo", a.Key, "time_ms", resp.TimeMs, "visited", resp.VisitedCount, "path", resp.PathLength)
	return sol, nil
}

func (c *Controller) playLocked(sol *Solution) error {
	run, err := c.player.Play(sol.Model, sol.Visited, sol.Path, c.vd, c.pd)
	if err != nil {
		return err
	}
	sol.Run = run
	c.solve = sol
	return nil
}

// Compare runs every algorithm on the service against the current maze.
// Results are kept sorted by time.
func (c *Controller) Compare(ctx context.Context) ([]service.AlgoStat, error) {
	if c.svc == nil {
		return nil, ErrNoService
	}
	seq, m := c.begin("Comparing...")
	req := service.CompareRequest{Grid: m.Cells(), Start: m.Start().Pair(), Goal: m.Goal().Pair()}

	t0 := time.Now()
	resp, err := c.svc.Compare(ctx, req)
	client := time.Since(t0)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finishLocked(seq) {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, c.failLocked("compare", err)
	}

	c.compare = append([]service.AlgoStat(nil), resp.Results...)
	c.status = fmt.Sprintf("Comparison (sorted by time): %d algorithms | Client total: %d ms", len(c.compare), roundMs(client))
	if len(c.compare) > 0 {
		c.status += " | Fastest: " + c.compare[0].Algo
	}
	return append([]service.AlgoStat(nil), c.compare...), nil
}

// Reset replaces the maze with an empty grid and clears the status.
func (c *Controller) Reset(rows, cols int) *grid.Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.busy = false
	c.player.Cancel()
	c.model = grid.Reset(rows, cols)
	c.renderer.Resize(c.model.Rows(), c.model.Cols())
	c.status = ""
	c.note = ""
	c.solve = nil
	c.compare = nil
	return c.model.Clone()
}

// Replay loads a stored run's grid and plays its sequences again without
// contacting the service.
func (c *Controller) Replay(rec *storage.Record) (*Solution, error) {
	m, err := rec.Model()
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rec.Visited.Validate(m); err != nil {
		return nil, c.failLocked("replay", fmt.Errorf("visited sequence: %w", err))
	}
	if err := rec.Path.Validate(m); err != nil {
		return nil, c.failLocked("replay", fmt.Errorf("path sequence: %w", err))
	}

	c.seq++
	c.busy = false
	c.player.Cancel()

	sol := &Solution{
		Algo:         rec.Algo,
		TimeMs:       rec.TimeMs,
		VisitedCount: rec.VisitedCount,
		PathLength:   rec.PathLength,
		Client:       time.Duration(rec.ClientMs * float64(time.Millisecond)),
		Model:        m,
		Visited:      rec.Visited,
		Path:         rec.Path,
	}
	c.model = m
	c.renderer.Resize(m.Rows(), m.Cols())
	if err := c.playLocked(sol); err != nil {
		return nil, c.failLocked("replay", err)
	}
	c.compare = nil
	short := rec.ID
	if len(short) > 8 {
		short = short[:8]
	}
	c.status = fmt.Sprintf("Replay %s (%s): %s ms | Visited: %d | Path: %d",
		short, strings.ToUpper(rec.Algo), formatMs(rec.TimeMs), rec.VisitedCount, rec.PathLength)
	return sol, nil
}

// Cancel stops the animation. Marks already shown stay.
func (c *Controller) Cancel() {
	c.player.Cancel()
}

// View is a consistent snapshot of the session for display.
type View struct {
	Model   *grid.Model
	Cells   []render.CellView
	Status  string
	Note    string
	Busy    bool
	State   player.State
	Solve   *Solution
	Compare []service.AlgoStat
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Model:   c.model.Clone(),
		Cells:   c.renderer.Render(c.model),
		Status:  c.status,
		Note:    c.note,
		Busy:    c.busy,
		State:   c.player.State(),
		Solve:   c.solve,
		Compare: append([]service.AlgoStat(nil), c.compare...),
	}
}

func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func roundMs(d time.Duration) int64 {
	return int64(math.Round(ms(d)))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
