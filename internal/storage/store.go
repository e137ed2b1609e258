// Package storage persists solve runs so they can be listed, replayed and
// exported without the service.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/mazeplay/internal/grid"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string    `json:"id"`
	Algo         string    `json:"algo"`
	Timestamp    time.Time `json:"timestamp"`
	Rows         int       `json:"rows"`
	Cols         int       `json:"cols"`
	Start        [2]int    `json:"start"`
	Goal         [2]int    `json:"goal"`
	Density      float64   `json:"density"`
	TimeMs       float64   `json:"time_ms"`
	ClientMs     float64   `json:"client_ms"`
	VisitedCount int       `json:"visited_count"`
	PathLength   int       `json:"path_length"`
}

// Record is a stored run: metadata, the grid it was solved on and the
// solver output.
type Record struct {
	RunMetadata
	Grid    [][]int    `json:"grid"`
	Visited grid.Steps `json:"-"`
	Path    grid.Steps `json:"-"`
}

// NewRecord fills the grid-derived metadata from m.
func NewRecord(m *grid.Model, algo string, visited, path grid.Steps) *Record {
	return &Record{
		RunMetadata: RunMetadata{
			Algo:         algo,
			Rows:         m.Rows(),
			Cols:         m.Cols(),
			Start:        m.Start().Pair(),
			Goal:         m.Goal().Pair(),
			Density:      m.Density(),
			VisitedCount: len(visited),
			PathLength:   len(path),
		},
		Grid:    m.Cells(),
		Visited: visited.Clone(),
		Path:    path.Clone(),
	}
}

// Model rebuilds the grid the run was solved on.
func (r *Record) Model() (*grid.Model, error) {
	return grid.FromCells(r.Grid, grid.C(r.Start[0], r.Start[1]), grid.C(r.Goal[0], r.Goal[1]))
}

// Save writes rec under a fresh id and returns it. rec.ID and
// rec.Timestamp are set.
func (s *Store) Save(rec *Record) (string, error) {
	rec.ID = uuid.NewString()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, rec.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), rec.RunMetadata); err != nil {
		return "", err
	}
	if err := writeGridCSV(filepath.Join(runDir, "grid.csv"), rec.Grid); err != nil {
		return "", err
	}
	if err := writeStepsCSV(filepath.Join(runDir, "steps.csv"), rec.Visited, rec.Path); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// List returns stored runs, newest first. Unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// Resolve expands a unique id prefix to the full id.
func (s *Store) Resolve(prefix string) (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	match := ""
	for _, r := range runs {
		if r.ID == prefix {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("storage: ambiguous run id %q", prefix)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	}
	return match, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRecord loads metadata, grid and steps of a run.
func (s *Store) LoadRecord(runID string) (*Record, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	runDir := filepath.Join(s.baseDir, runID)

	cells, err := readGridCSV(filepath.Join(runDir, "grid.csv"))
	if err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	visited, path, err := readStepsCSV(filepath.Join(runDir, "steps.csv"))
	if err != nil {
		return nil, fmt.Errorf("read steps: %w", err)
	}
	return &Record{RunMetadata: *meta, Grid: cells, Visited: visited, Path: path}, nil
}

func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeGridCSV(path string, cells [][]int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range cells {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = strconv.Itoa(v)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func readGridCSV(path string) ([][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	cells := make([][]int, len(records))
	for r, rec := range records {
		cells[r] = make([]int, len(rec))
		for c, v := range rec {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", r, c, err)
			}
			cells[r][c] = n
		}
	}
	return cells, nil
}

func writeStepsCSV(path string, visited, route grid.Steps) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"phase", "index", "row", "col"}); err != nil {
		return err
	}
	for _, seq := range []struct {
		name  string
		steps grid.Steps
	}{{"visited", visited}, {"path", route}} {
		for i, c := range seq.steps {
			if err := w.Write([]string{seq.name, strconv.Itoa(i), strconv.Itoa(c.Row), strconv.Itoa(c.Col)}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func readStepsCSV(path string) (visited, route grid.Steps, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	visited, route = grid.Steps{}, grid.Steps{}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		row, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		col, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		switch rec[0] {
		case "visited":
			visited = append(visited, grid.C(row, col))
		case "path":
			route = append(route, grid.C(row, col))
		default:
			return nil, nil, fmt.Errorf("line %d: unknown phase %q", i+1, rec[0])
		}
	}
	return visited, route, nil
}
