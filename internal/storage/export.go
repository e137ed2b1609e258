package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/mazeplay/internal/service"
)

type ExportData struct {
	RunMetadata
	Grid    [][]int `json:"grid"`
	Visited [][]int `json:"visited"`
	Path    [][]int `json:"path"`
}

func newExportData(rec *Record) ExportData {
	return ExportData{
		RunMetadata: rec.RunMetadata,
		Grid:        rec.Grid,
		Visited:     rec.Visited.Pairs(),
		Path:        rec.Path.Pairs(),
	}
}

func ExportJSON(path string, rec *Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, rec)
}

// WriteJSON writes rec in the same shape the solve endpoint returns its
// sequences in.
func WriteJSON(w io.Writer, rec *Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(rec))
}

var compareHeader = []string{"algorithm", "runtime_ms", "visited_count", "path_length"}

func WriteCompareCSV(w io.Writer, results []service.AlgoStat) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(compareHeader); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write([]string{
			r.Algo,
			formatMs(r.TimeMs),
			strconv.Itoa(r.VisitedCount),
			strconv.Itoa(r.PathLength),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// BenchRow is one algorithm's result on one benchmark maze.
type BenchRow struct {
	MazeID       int
	Size         int
	Density      int // percent
	Algorithm    string
	Success      bool
	RuntimeMs    float64
	VisitedCount int
	PathLength   int
}

var BenchHeader = []string{"maze_id", "size", "density", "algorithm", "success", "runtime_ms", "visited_count", "path_length"}

// BenchWriter streams benchmark rows as CSV.
type BenchWriter struct {
	cw *csv.Writer
}

func NewBenchWriter(w io.Writer) (*BenchWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(BenchHeader); err != nil {
		return nil, err
	}
	return &BenchWriter{cw: cw}, nil
}

func (b *BenchWriter) Write(r BenchRow) error {
	return b.cw.Write([]string{
		strconv.Itoa(r.MazeID),
		strconv.Itoa(r.Size),
		strconv.Itoa(r.Density),
		r.Algorithm,
		boolDigit(r.Success),
		strconv.FormatFloat(math.Round(r.RuntimeMs*1e4)/1e4, 'f', -1, 64),
		strconv.Itoa(r.VisitedCount),
		strconv.Itoa(r.PathLength),
	})
}

func (b *BenchWriter) Flush() error {
	b.cw.Flush()
	return b.cw.Error()
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
