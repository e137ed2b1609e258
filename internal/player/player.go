package player

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/render"
)

// Default per-step delays.
const (
	DefaultVisitedDelay = 6 * time.Millisecond
	DefaultPathDelay    = 18 * time.Millisecond
)

// Overlay receives marks. *render.Renderer implements it.
type Overlay interface {
	Mark(c grid.Coord, m render.Mark) bool
}

// State is the player's position in its state machine.
type State int

const (
	Idle State = iota
	PlayingVisited
	PlayingPath
)

func (s State) String() string {
	switch s {
	case PlayingVisited:
		return "playing visited"
	case PlayingPath:
		return "playing path"
	default:
		return "idle"
	}
}

// Outcome is how a run ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeComplete
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Phase is the sequence a run is replaying.
type Phase int

const (
	PhaseVisited Phase = iota
	PhasePath
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseVisited:
		return "visited"
	case PhasePath:
		return "path"
	default:
		return "done"
	}
}

// EventKind classifies observer events.
type EventKind int

const (
	EventStart EventKind = iota
	EventMark
	EventPhase
	EventEnd
)

// Event is delivered to the observer for every applied mark and transition.
type Event struct {
	RunID   uint64
	Kind    EventKind
	Phase   Phase
	Coord   grid.Coord
	Mark    render.Mark
	Outcome Outcome
}

// Options configures a Player.
type Options struct {
	Scheduler Scheduler
	Observer  func(Event)
	Logger    *log.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(o *Options) { o.Scheduler = s }
}

// WithObserver installs fn to receive events. fn runs while the player is
// locked and must not call back into the Player.
func WithObserver(fn func(Event)) Option {
	return func(o *Options) { o.Observer = fn }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Player replays solver output onto an overlay, one cell per tick: the whole
// visited sequence first, then the path. At most one run is active; starting
// a run or cancelling invalidates the previous one before any of its pending
// ticks can paint.
type Player struct {
	mu       sync.Mutex
	overlay  Overlay
	sched    Scheduler
	observer func(Event)
	logger   *log.Logger

	current *Run
	nextID  uint64
	last    Outcome
}

func New(overlay Overlay, options ...Option) *Player {
	opts := Options{Scheduler: RealScheduler{}}
	for _, o := range options {
		o(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Player{
		overlay:  overlay,
		sched:    opts.Scheduler,
		observer: opts.Observer,
		logger:   opts.Logger,
	}
}

// Play starts a new run. Both sequences are checked against m first; if
// either has an out-of-bounds step the current run is left alone and the
// error is returned.
func (p *Player) Play(m *grid.Model, visited, path grid.Steps, visitedDelay, pathDelay time.Duration) (*Run, error) {
	if err := visited.Validate(m); err != nil {
		return nil, fmt.Errorf("visited sequence: %w", err)
	}
	if err := path.Validate(m); err != nil {
		return nil, fmt.Errorf("path sequence: %w", err)
	}
	if visitedDelay < 0 {
		visitedDelay = 0
	}
	if pathDelay < 0 {
		pathDelay = 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelLocked()

	p.nextID++
	run := &Run{
		p:            p,
		id:           p.nextID,
		start:        m.Start(),
		goal:         m.Goal(),
		visited:      visited.Clone(),
		path:         path.Clone(),
		visitedDelay: visitedDelay,
		pathDelay:    pathDelay,
		seen:         make(map[grid.Coord]render.Mark, len(visited)),
		done:         make(chan struct{}),
	}
	if len(run.visited) == 0 {
		run.phase = PhasePath
	}
	p.current = run
	p.emit(Event{RunID: run.id, Kind: EventStart, Phase: run.phase})
	p.logger.Debug("playback started", "run", run.id, "visited", len(visited), "path", len(path), "planned", run.Planned())

	run.timer = p.sched.AfterFunc(0, func() { p.step(run) })
	return run, nil
}

// Cancel stops the current run. Marks already applied stay. Calling Cancel
// with no active run does nothing.
func (p *Player) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
}

// State reports the state machine position.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Idle
	}
	if p.current.phase == PhaseVisited {
		return PlayingVisited
	}
	return PlayingPath
}

// LastOutcome reports how the most recent finished run ended.
func (p *Player) LastOutcome() Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Current returns the active run, or nil.
func (p *Player) Current() *Run {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Player) cancelLocked() {
	run := p.current
	if run == nil {
		return
	}
	run.cancelled = true
	if run.timer != nil {
		run.timer.Stop()
	}
	p.logger.Debug("playback cancelled", "run", run.id, "phase", run.phase, "cursor", run.cursor)
	p.finishLocked(run, OutcomeCancelled)
}

func (p *Player) finishLocked(run *Run, outcome Outcome) {
	run.outcome = outcome
	run.phase = PhaseDone
	close(run.done)
	p.current = nil
	p.last = outcome
	p.emit(Event{RunID: run.id, Kind: EventEnd, Phase: PhaseDone, Outcome: outcome})
}

// step applies the mark under the cursor and schedules the next tick. Each
// element of a sequence takes one tick, including skipped endpoints.
func (p *Player) step(run *Run) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if run != p.current || run.cancelled {
		return
	}

	for {
		seq, delay, mark := run.active()
		if run.cursor < len(seq) {
			c := seq[run.cursor]
			run.cursor++
			p.applyLocked(run, c, mark)
			run.timer = p.sched.AfterFunc(delay, func() { p.step(run) })
			return
		}
		if run.phase == PhaseVisited {
			run.phase = PhasePath
			run.cursor = 0
			p.emit(Event{RunID: run.id, Kind: EventPhase, Phase: PhasePath})
			continue
		}
		p.logger.Debug("playback complete", "run", run.id, "marks", run.marks)
		p.finishLocked(run, OutcomeComplete)
		return
	}
}

func (p *Player) applyLocked(run *Run, c grid.Coord, mark render.Mark) {
	if c == run.start || c == run.goal {
		return
	}
	if run.seen[c] >= mark {
		return
	}
	run.seen[c] = mark
	run.marks++
	p.overlay.Mark(c, mark)
	p.emit(Event{RunID: run.id, Kind: EventMark, Phase: run.phase, Coord: c, Mark: mark})
}

func (p *Player) emit(e Event) {
	if p.observer != nil {
		p.observer(e)
	}
}

// Run is one invocation of Play.
type Run struct {
	p *Player

	id           uint64
	start, goal  grid.Coord
	visited      grid.Steps
	path         grid.Steps
	visitedDelay time.Duration
	pathDelay    time.Duration

	phase     Phase
	cursor    int
	cancelled bool
	outcome   Outcome
	marks     int
	seen      map[grid.Coord]render.Mark
	timer     Timer
	done      chan struct{}
}

func (r *Run) active() (grid.Steps, time.Duration, render.Mark) {
	if r.phase == PhaseVisited {
		return r.visited, r.visitedDelay, render.Visited
	}
	return r.path, r.pathDelay, render.Path
}

func (r *Run) ID() uint64 { return r.id }

// Done is closed when the run completes or is cancelled.
func (r *Run) Done() <-chan struct{} { return r.done }

// Planned is the nominal playback duration.
func (r *Run) Planned() time.Duration {
	return time.Duration(len(r.visited))*r.visitedDelay + time.Duration(len(r.path))*r.pathDelay
}

func (r *Run) Phase() Phase {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()
	return r.phase
}

// Cursor is the number of steps of the active phase already consumed.
func (r *Run) Cursor() int {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()
	return r.cursor
}

func (r *Run) Outcome() Outcome {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()
	return r.outcome
}

// Marks is the number of marks this run has applied.
func (r *Run) Marks() int {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()
	return r.marks
}

// Wait blocks until the run ends or ctx is done.
func (r *Run) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-r.done:
		return r.Outcome(), nil
	case <-ctx.Done():
		return OutcomeNone, ctx.Err()
	}
}
