package player_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/player"
	"github.com/san-kum/mazeplay/internal/render"
)

type stamped struct {
	player.Event
	At time.Duration
}

func openGrid(rows, cols int, start, goal grid.Coord) *grid.Model {
	cells := make([][]int, rows)
	for r := range cells {
		cells[r] = make([]int, cols)
	}
	m, err := grid.FromCells(cells, start, goal)
	Expect(err).NotTo(HaveOccurred())
	return m
}

func marksOf(events []stamped) []grid.Coord {
	var out []grid.Coord
	for _, e := range events {
		if e.Kind == player.EventMark {
			out = append(out, e.Coord)
		}
	}
	return out
}

var _ = Describe("Player", func() {
	var (
		model   *grid.Model
		overlay *render.Renderer
		sched   *player.ManualScheduler
		events  []stamped
		p       *player.Player
	)

	BeforeEach(func() {
		model = openGrid(3, 3, grid.C(2, 0), grid.C(2, 2))
		overlay = render.New(3, 3)
		sched = player.NewManualScheduler()
		events = nil
		p = player.New(overlay,
			player.WithScheduler(sched),
			player.WithObserver(func(e player.Event) {
				events = append(events, stamped{Event: e, At: sched.Now()})
			}),
		)
	})

	It("starts idle and treats cancel as a no-op", func() {
		Expect(p.State()).To(Equal(player.Idle))
		p.Cancel()
		p.Cancel()
		Expect(p.State()).To(Equal(player.Idle))
		Expect(p.LastOutcome()).To(Equal(player.OutcomeNone))
		Expect(events).To(BeEmpty())
	})

	It("marks visited cells in order before the path", func() {
		visited := grid.Steps{grid.C(0, 0), grid.C(0, 1)}
		path := grid.Steps{grid.C(1, 1)}

		run, err := p.Play(model, visited, path, 6*time.Millisecond, 18*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
		Expect(run.Planned()).To(Equal(30 * time.Millisecond))

		sched.Flush()

		Expect(marksOf(events)).To(Equal([]grid.Coord{grid.C(0, 0), grid.C(0, 1), grid.C(1, 1)}))

		var at []time.Duration
		for _, e := range events {
			if e.Kind == player.EventMark {
				at = append(at, e.At)
			}
		}
		Expect(at).To(Equal([]time.Duration{0, 6 * time.Millisecond, 12 * time.Millisecond}))

		Expect(overlay.MarkAt(grid.C(0, 0))).To(Equal(render.Visited))
		Expect(overlay.MarkAt(grid.C(0, 1))).To(Equal(render.Visited))
		Expect(overlay.MarkAt(grid.C(1, 1))).To(Equal(render.Path))

		Eventually(run.Done()).Should(BeClosed())
		Expect(run.Outcome()).To(Equal(player.OutcomeComplete))
		Expect(p.LastOutcome()).To(Equal(player.OutcomeComplete))
		Expect(sched.Now()).To(Equal(30 * time.Millisecond))
	})

	It("walks the state machine through both phases", func() {
		_, err := p.Play(model, grid.Steps{grid.C(0, 0)}, grid.Steps{grid.C(1, 1)}, 6*time.Millisecond, 18*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.State()).To(Equal(player.PlayingVisited))

		sched.Advance(0)
		Expect(p.State()).To(Equal(player.PlayingVisited))

		sched.Advance(6 * time.Millisecond)
		Expect(p.State()).To(Equal(player.PlayingPath))

		sched.Advance(18 * time.Millisecond)
		Expect(p.State()).To(Equal(player.Idle))
		Expect(p.LastOutcome()).To(Equal(player.OutcomeComplete))
	})

	It("goes straight to the path phase when nothing was visited", func() {
		run, err := p.Play(model, nil, grid.Steps{grid.C(1, 1)}, 6*time.Millisecond, 18*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.State()).To(Equal(player.PlayingPath))
		Expect(run.Phase()).To(Equal(player.PhasePath))

		sched.Flush()
		Expect(marksOf(events)).To(Equal([]grid.Coord{grid.C(1, 1)}))
		for _, e := range events {
			Expect(e.Kind).NotTo(Equal(player.EventPhase))
		}
		Expect(p.State()).To(Equal(player.Idle))
	})

	It("completes immediately with two empty sequences", func() {
		run, err := p.Play(model, nil, nil, 6*time.Millisecond, 18*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
		sched.Flush()
		Expect(run.Outcome()).To(Equal(player.OutcomeComplete))
		Expect(marksOf(events)).To(BeEmpty())
	})

	It("stops painting once cancelled", func() {
		visited := grid.Steps{grid.C(0, 0), grid.C(0, 1), grid.C(0, 2), grid.C(1, 0)}
		run, err := p.Play(model, visited, grid.Steps{grid.C(1, 1)}, 6*time.Millisecond, 18*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())

		sched.Advance(0)
		Expect(marksOf(events)).To(HaveLen(1))

		p.Cancel()
		Expect(p.State()).To(Equal(player.Idle))
		Expect(run.Outcome()).To(Equal(player.OutcomeCancelled))
		Expect(run.Done()).To(BeClosed())

		sched.Advance(time.Second)
		sched.Flush()

		Expect(marksOf(events)).To(HaveLen(1))
		v, path := overlay.Counts()
		Expect(v).To(Equal(1))
		Expect(path).To(Equal(0))
		Expect(sched.Pending()).To(Equal(0))
	})

	It("supersedes an unfinished run", func() {
		first := grid.Steps{grid.C(0, 0), grid.C(0, 1), grid.C(0, 2)}
		second := grid.Steps{grid.C(1, 0), grid.C(1, 2)}

		run1, err := p.Play(model, first, nil, 6*time.Millisecond, 18*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
		sched.Advance(0)

		run2, err := p.Play(model, second, grid.Steps{grid.C(1, 1)}, 6*time.Millisecond, 18*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
		Expect(run1.Outcome()).To(Equal(player.OutcomeCancelled))
		Expect(run2.ID()).To(BeNumerically(">", run1.ID()))

		sched.Flush()

		for _, e := range events {
			if e.Kind == player.EventMark && e.RunID == run1.ID() {
				Expect(e.Coord).To(Equal(grid.C(0, 0)))
			}
		}
		Expect(overlay.MarkAt(grid.C(0, 1))).To(Equal(render.None))
		Expect(overlay.MarkAt(grid.C(0, 2))).To(Equal(render.None))
		Expect(overlay.MarkAt(grid.C(1, 0))).To(Equal(render.Visited))
		Expect(overlay.MarkAt(grid.C(1, 1))).To(Equal(render.Path))
		Expect(run2.Outcome()).To(Equal(player.OutcomeComplete))
	})

	It("never marks the start or the goal", func() {
		visited := grid.Steps{model.Start(), grid.C(1, 0), model.Goal()}
		path := grid.Steps{model.Start(), grid.C(1, 1), model.Goal()}

		_, err := p.Play(model, visited, path, 6*time.Millisecond, 18*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
		sched.Flush()

		Expect(marksOf(events)).To(Equal([]grid.Coord{grid.C(1, 0), grid.C(1, 1)}))
		Expect(overlay.MarkAt(model.Start())).To(Equal(render.None))
		Expect(overlay.MarkAt(model.Goal())).To(Equal(render.None))
	})

	It("keeps pacing when skipping endpoints", func() {
		visited := grid.Steps{model.Start(), grid.C(1, 0)}
		run, err := p.Play(model, visited, nil, 6*time.Millisecond, 18*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())

		sched.Advance(0)
		Expect(marksOf(events)).To(BeEmpty())
		sched.Advance(6 * time.Millisecond)
		Expect(marksOf(events)).To(Equal([]grid.Coord{grid.C(1, 0)}))
		sched.Advance(6 * time.Millisecond)
		Expect(run.Outcome()).To(Equal(player.OutcomeComplete))
	})

	It("does not re-mark duplicate steps", func() {
		visited := grid.Steps{grid.C(0, 1), grid.C(0, 1), grid.C(1, 1)}
		path := grid.Steps{grid.C(1, 1), grid.C(1, 1)}

		run, err := p.Play(model, visited, path, time.Millisecond, time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
		sched.Flush()

		Expect(marksOf(events)).To(Equal([]grid.Coord{grid.C(0, 1), grid.C(1, 1), grid.C(1, 1)}))
		Expect(run.Marks()).To(Equal(3))
		Expect(overlay.MarkAt(grid.C(1, 1))).To(Equal(render.Path))
	})

	It("rejects out-of-bounds steps without disturbing the active run", func() {
		run, err := p.Play(model, grid.Steps{grid.C(0, 0), grid.C(0, 1)}, nil, 6*time.Millisecond, 18*time.Millisecond)
		Expect(err).NotTo(HaveOccurred())
		sched.Advance(0)

		_, err = p.Play(model, grid.Steps{grid.C(0, 0)}, grid.Steps{grid.C(7, 7)}, 6*time.Millisecond, 18*time.Millisecond)
		var oob *grid.OutOfBoundsError
		Expect(err).To(MatchError(ContainSubstring("path sequence")))
		Expect(errors.As(err, &oob)).To(BeTrue())
		Expect(oob.Coord).To(Equal(grid.C(7, 7)))

		Expect(p.Current()).To(BeIdenticalTo(run))
		sched.Flush()
		Expect(run.Outcome()).To(Equal(player.OutcomeComplete))
	})
})
