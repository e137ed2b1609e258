package snapshot

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"time"

	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/player"
	"github.com/san-kum/mazeplay/internal/render"
)

// GIFOptions controls animated export.
type GIFOptions struct {
	Options
	VisitedDelay time.Duration
	PathDelay    time.Duration
	// MarksPerFrame groups marks into one frame to keep large runs small.
	MarksPerFrame int
	// Hold is how long the final frame stays up.
	Hold    time.Duration
	Caption string
}

func DefaultGIFOptions() GIFOptions {
	return GIFOptions{
		Options:       DefaultOptions(),
		VisitedDelay:  player.DefaultVisitedDelay,
		PathDelay:     player.DefaultPathDelay,
		MarksPerFrame: 1,
		Hold:          2 * time.Second,
	}
}

// RecordGIF replays visited and path on a virtual clock and captures a
// frame as marks land. Frame delays follow the playback pacing with a
// 20ms floor per frame; raise MarksPerFrame to keep real-time pacing on
// fast runs.
func RecordGIF(m *grid.Model, visited, path grid.Steps, opts GIFOptions) (*gif.GIF, error) {
	opts.Options = opts.Options.normalized()
	if opts.MarksPerFrame < 1 {
		opts.MarksPerFrame = 1
	}

	r := render.New(m.Rows(), m.Cols())
	sched := player.NewManualScheduler()
	marks := 0
	p := player.New(r, player.WithScheduler(sched), player.WithObserver(func(e player.Event) {
		if e.Kind == player.EventMark {
			marks++
		}
	}))

	run, err := p.Play(m, visited, path, opts.VisitedDelay, opts.PathDelay)
	if err != nil {
		return nil, err
	}

	rec := &gifRecorder{opts: opts, model: m, renderer: r}
	if err := rec.capture(); err != nil {
		return nil, err
	}

	last := time.Duration(0)
	pending := 0
	for sched.Step() {
		if marks > pending && marks-pending >= opts.MarksPerFrame {
			pending = marks
			now := sched.Now()
			rec.extend(now - last)
			last = now
			if err := rec.capture(); err != nil {
				return nil, err
			}
		}
	}
	if run.Outcome() != player.OutcomeComplete {
		return nil, fmt.Errorf("snapshot: playback ended %s", run.Outcome())
	}

	rec.extend(sched.Now() - last)
	if marks > pending {
		if err := rec.capture(); err != nil {
			return nil, err
		}
	}
	rec.extend(opts.Hold)
	return &rec.anim, nil
}

type gifRecorder struct {
	opts     GIFOptions
	model    *grid.Model
	renderer *render.Renderer
	anim     gif.GIF
}

func (g *gifRecorder) capture() error {
	img, err := Draw(Frame{
		Rows:    g.model.Rows(),
		Cols:    g.model.Cols(),
		Cells:   g.renderer.Render(g.model),
		Caption: g.opts.Caption,
	}, g.opts.Options)
	if err != nil {
		return err
	}
	frame := image.NewPaletted(img.Bounds(), g.opts.Palette.colors())
	draw.Draw(frame, frame.Rect, img, image.Point{}, draw.Src)
	g.anim.Image = append(g.anim.Image, frame)
	g.anim.Delay = append(g.anim.Delay, 0)
	return nil
}

// extend adds d to the delay of the newest frame.
func (g *gifRecorder) extend(d time.Duration) {
	if n := len(g.anim.Delay); n > 0 {
		g.anim.Delay[n-1] += centis(d)
		if g.anim.Delay[n-1] < 2 {
			g.anim.Delay[n-1] = 2
		}
	}
}

func centis(d time.Duration) int {
	return int(d / (10 * time.Millisecond))
}

func WriteGIF(w io.Writer, anim *gif.GIF) error {
	return gif.EncodeAll(w, anim)
}

func SaveGIF(path string, anim *gif.GIF) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, anim)
}
