// Package bench runs batches of generate-and-solve requests against the
// maze service and collects per-algorithm results.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/service"
	"github.com/san-kum/mazeplay/internal/storage"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScenario = errors.New("bench: invalid scenario")

// Scenario defines a benchmark batch: every size is combined with every
// density and each combination is tried Trials times.
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Sizes       []int     `yaml:"sizes"`
	Densities   []float64 `yaml:"densities"` // wall fraction in [0,1]
	Trials      int       `yaml:"trials"`
	Algorithms  []string  `yaml:"algorithms"`
	Workers     int       `yaml:"workers"`
}

// DefaultScenario is 3 sizes x 3 densities x 20 trials on all algorithms.
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:       "default",
		Sizes:      []int{10, 20, 30},
		Densities:  []float64{0.10, 0.20, 0.30},
		Trials:     20,
		Algorithms: service.AlgorithmKeys(),
		Workers:    4,
	}
}

// LoadScenario loads a scenario from a YAML file. Missing fields keep the
// default values.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scenario := DefaultScenario()
	if err := yaml.Unmarshal(data, scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return scenario, nil
}

// Validate checks the scenario against what the service accepts.
func (s *Scenario) Validate() error {
	if len(s.Sizes) == 0 || len(s.Densities) == 0 {
		return fmt.Errorf("%w: need at least one size and one density", ErrInvalidScenario)
	}
	if s.Trials < 1 {
		return fmt.Errorf("%w: trials must be positive", ErrInvalidScenario)
	}
	for _, n := range s.Sizes {
		if n < grid.MinRows || n > grid.MaxRows {
			return fmt.Errorf("%w: size %d outside [%d,%d]", ErrInvalidScenario, n, grid.MinRows, grid.MaxRows)
		}
	}
	for _, d := range s.Densities {
		if d < 0 || d > 1 {
			return fmt.Errorf("%w: density %v outside [0,1]", ErrInvalidScenario, d)
		}
	}
	for _, a := range s.Algorithms {
		if _, err := service.LookupAlgorithm(a); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
	}
	return nil
}

// Mazes is the number of mazes the scenario generates.
func (s *Scenario) Mazes() int {
	return len(s.Sizes) * len(s.Densities) * s.Trials
}

type job struct {
	mazeID  int
	size    int
	density float64
}

func (s *Scenario) jobs() []job {
	jobs := make([]job, 0, s.Mazes())
	id := 0
	for _, n := range s.Sizes {
		for _, d := range s.Densities {
			for t := 0; t < s.Trials; t++ {
				id++
				jobs = append(jobs, job{mazeID: id, size: n, density: d})
			}
		}
	}
	return jobs
}

// Runner executes scenarios against a service.
type Runner struct {
	svc      service.Service
	logger   *log.Logger
	progress func(done, total int)
}

type Option func(*Runner)

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithProgress is called after each maze completes. Calls may come from
// several goroutines.
func WithProgress(fn func(done, total int)) Option {
	return func(r *Runner) { r.progress = fn }
}

func NewRunner(svc service.Service, opts ...Option) *Runner {
	r := &Runner{svc: svc, logger: log.New(io.Discard)}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes the scenario and returns the rows ordered by maze id then
// algorithm order. The first service error aborts the batch.
func (r *Runner) Run(ctx context.Context, s *Scenario) ([]storage.BenchRow, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	algos := make([]service.Algorithm, len(s.Algorithms))
	for i, key := range s.Algorithms {
		algos[i], _ = service.LookupAlgorithm(key)
	}
	if len(algos) == 0 {
		algos = service.Algorithms
	}

	jobs := s.jobs()
	results := make([][]storage.BenchRow, len(jobs))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Workers, 1))
	for i, j := range jobs {
		g.Go(func() error {
			rows, err := r.runMaze(ctx, j, algos)
			if err != nil {
				return fmt.Errorf("maze %d: %w", j.mazeID, err)
			}
			results[i] = rows
			n := int(done.Add(1))
			r.logger.Debug("maze done", "maze", j.mazeID, "size", j.size, "density", percent(j.density))
			if r.progress != nil {
				r.progress(n, len(jobs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]storage.BenchRow, 0, len(jobs)*len(algos))
	for _, rs := range results {
		rows = append(rows, rs...)
	}
	r.logger.Info("benchmark complete", "scenario", s.Name, "mazes", len(jobs), "rows", len(rows))
	return rows, nil
}

func (r *Runner) runMaze(ctx context.Context, j job, algos []service.Algorithm) ([]storage.BenchRow, error) {
	start, goal := [2]int{0, 0}, [2]int{j.size - 1, j.size - 1}
	gen, err := r.svc.Generate(ctx, service.GenerateRequest{
		Rows:    j.size,
		Cols:    j.size,
		Density: j.density,
		Start:   start,
		Goal:    goal,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]storage.BenchRow, 0, len(algos))
	for _, a := range algos {
		res, err := r.svc.Solve(ctx, service.SolveRequest{Grid: gen.Grid, Start: start, Goal: goal, Algo: a.Key})
		if err != nil {
			return nil, err
		}
		rows = append(rows, storage.BenchRow{
			MazeID:       j.mazeID,
			Size:         j.size,
			Density:      percent(j.density),
			Algorithm:    a.Label,
			Success:      reaches(res.Path, start, goal),
			RuntimeMs:    res.TimeMs,
			VisitedCount: len(res.Visited),
			PathLength:   max(len(res.Path)-1, 0),
		})
	}
	return rows, nil
}

// reaches reports whether path runs from start to goal.
func reaches(path [][]int, start, goal [2]int) bool {
	if len(path) == 0 || len(path[0]) != 2 || len(path[len(path)-1]) != 2 {
		return false
	}
	first, last := path[0], path[len(path)-1]
	return first[0] == start[0] && first[1] == start[1] && last[0] == goal[0] && last[1] == goal[1]
}

func percent(fraction float64) int {
	return int(math.Round(fraction * 100))
}

// Summary aggregates rows per algorithm.
type Summary struct {
	Algorithm   string
	Runs        int
	Successes   int
	MeanMs      float64
	MeanVisited float64
	MeanPath    float64
}

// Summarize returns one Summary per algorithm in first-seen order.
func Summarize(rows []storage.BenchRow) []Summary {
	index := map[string]int{}
	var out []Summary
	for _, row := range rows {
		i, ok := index[row.Algorithm]
		if !ok {
			i = len(out)
			index[row.Algorithm] = i
			out = append(out, Summary{Algorithm: row.Algorithm})
		}
		s := &out[i]
		s.Runs++
		if row.Success {
			s.Successes++
		}
		s.MeanMs += row.RuntimeMs
		s.MeanVisited += float64(row.VisitedCount)
		s.MeanPath += float64(row.PathLength)
	}
	for i := range out {
		n := float64(out[i].Runs)
		out[i].MeanMs /= n
		out[i].MeanVisited /= n
		out[i].MeanPath /= n
	}
	return out
}
