package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/mazeplay/internal/config"
	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/render"
	"github.com/san-kum/mazeplay/internal/storage"
)

func TestBoardText(t *testing.T) {
	m, err := grid.FromCells([][]int{
		{0, 1, 0},
		{0, 0, 0},
	}, grid.C(0, 0), grid.C(0, 2))
	if err != nil {
		t.Fatal(err)
	}
	r := render.New(m.Rows(), m.Cols())
	r.Mark(grid.C(1, 0), render.Visited)
	r.Mark(grid.C(1, 1), render.Path)

	want := "S#G\n.* "
	if got := boardText(r.Render(m), m.Cols()); got != want {
		t.Errorf("boardText = %q, want %q", got, want)
	}
}

func TestFinalFrame(t *testing.T) {
	m := grid.Reset(5, 5)
	rec := storage.NewRecord(m, "bfs",
		grid.Steps{grid.C(0, 0), grid.C(0, 1), grid.C(1, 1)},
		grid.Steps{grid.C(0, 0), grid.C(0, 1), grid.C(4, 4)},
	)

	frame, err := finalFrame(rec)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Rows != 5 || frame.Cols != 5 || len(frame.Cells) != 25 {
		t.Fatalf("unexpected frame shape %dx%d (%d cells)", frame.Rows, frame.Cols, len(frame.Cells))
	}
	marks := map[render.Mark]int{}
	for _, c := range frame.Cells {
		marks[c.Mark]++
	}
	if marks[render.Path] != 1 || marks[render.Visited] != 1 {
		t.Errorf("expected 1 path and 1 visited mark, got %v", marks)
	}
}

func TestDistances(t *testing.T) {
	got := distances(grid.Steps{grid.C(0, 0), grid.C(2, 3)}, grid.C(2, 2))
	if len(got) != 2 || got[0] != 4 || got[1] != 1 {
		t.Errorf("distances = %v", got)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestResolveConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mazeplay.yaml")
	if err := os.WriteFile(file, []byte("grid:\n  rows: 33\nsolve:\n  algo: dfs\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Grid != (config.GridConfig{Rows: 20, Cols: 25, Density: 28}) {
					t.Errorf("grid = %+v", cfg.Grid)
				}
				if cfg.Server.URL != config.DefaultURL || cfg.Solve.Algo != "bfs" || cfg.LogLevel != "info" {
					t.Errorf("unexpected defaults %+v", cfg)
				}
			},
		},
		{
			name: "preset",
			args: []string{"--preset", "large"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Grid != config.Presets["large"] {
					t.Errorf("grid = %+v", cfg.Grid)
				}
			},
		},
		{
			name: "file over preset",
			args: []string{"--preset", "large", "--config", file},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Grid.Rows != 33 || cfg.Grid.Cols != 80 || cfg.Grid.Density != 30 {
					t.Errorf("grid = %+v", cfg.Grid)
				}
				if cfg.Solve.Algo != "dfs" {
					t.Errorf("algo = %q", cfg.Solve.Algo)
				}
			},
		},
		{
			name: "flags over file",
			args: []string{"--preset", "large", "--config", file, "--server", "http://maze:9000", "-v", "init-config", "--rows", "12", "--algo", "astar", "--path-delay", "0"},
			check: func(t *testing.T, cfg *config.Config) {
				if cfg.Grid.Rows != 12 || cfg.Grid.Cols != 80 {
					t.Errorf("grid = %+v", cfg.Grid)
				}
				if cfg.Solve.Algo != "astar" || cfg.Server.URL != "http://maze:9000" {
					t.Errorf("solve %q server %q", cfg.Solve.Algo, cfg.Server.URL)
				}
				if cfg.Playback.PathDelay != 0 || cfg.Playback.VisitedDelay != 6 {
					t.Errorf("playback = %+v", cfg.Playback)
				}
				if cfg.LogLevel != "debug" {
					t.Errorf("log level = %q", cfg.LogLevel)
				}
			},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, "out", tt.name+".yaml")
			args := tt.args
			if !containsArg(args, "init-config") {
				args = append(append([]string(nil), args...), "init-config")
			}
			args = append(args, out)
			if _, err := runCLI(t, args...); err != nil {
				t.Fatalf("case %d: %v", i, err)
			}
			cfg, err := config.Load(out)
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, cfg)
		})
	}

	if _, err := runCLI(t, "--preset", "huge", "init-config", filepath.Join(dir, "bad.yaml")); err == nil {
		t.Error("expected unknown preset error")
	}
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func saveTestRun(t *testing.T, dataDir string) string {
	t.Helper()
	m := grid.Reset(5, 5)
	rec := storage.NewRecord(m, "bfs",
		grid.Steps{grid.C(0, 1), grid.C(1, 1)},
		grid.Steps{grid.C(0, 0), grid.C(1, 1), grid.C(4, 4)},
	)
	id, err := storage.New(filepath.Join(dataDir, "runs")).Save(rec)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestExportOutputDefaults(t *testing.T) {
	data := t.TempDir()
	id := saveTestRun(t, data)
	work := t.TempDir()
	t.Chdir(work)

	out, err := runCLI(t, "--data", data, "export-json", id[:8])
	if err != nil {
		t.Fatalf("export-json: %v", err)
	}
	var exported storage.ExportData
	if err := json.Unmarshal([]byte(out), &exported); err != nil {
		t.Fatalf("stdout is not the run json: %v\n%s", err, out)
	}
	if exported.ID != id || len(exported.Path) != 3 {
		t.Errorf("unexpected export %+v", exported.RunMetadata)
	}

	if _, err := runCLI(t, "--data", data, "export-svg", id[:8]); err != nil {
		t.Fatalf("export-svg: %v", err)
	}
	if _, err := os.Stat(filepath.Join(work, id[:8]+".svg")); err != nil {
		t.Errorf("svg not written to its default name: %v", err)
	}

	if _, err := runCLI(t, "--data", data, "export-json", id, "-o", "run.json"); err != nil {
		t.Fatalf("export-json -o: %v", err)
	}
	if _, err := os.Stat(filepath.Join(work, "run.json")); err != nil {
		t.Errorf("explicit output not written: %v", err)
	}

	if _, err := os.Stat(filepath.Join(work, "results.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("exports touched the bench output file: %v", err)
	}
}

func TestOutputFlagDefaults(t *testing.T) {
	root := newRootCmd()
	tests := []struct {
		cmd  string
		want string
	}{
		{"export-png", ""},
		{"export-gif", ""},
		{"export-svg", ""},
		{"export-json", ""},
		{"bench", "results.csv"},
	}
	for _, tt := range tests {
		cmd, _, err := root.Find([]string{tt.cmd})
		if err != nil {
			t.Fatalf("%s: %v", tt.cmd, err)
		}
		if got := cmd.Flags().Lookup("output").DefValue; got != tt.want {
			t.Errorf("%s --output default = %q, want %q", tt.cmd, got, tt.want)
		}
	}
	if output != "" || benchOut != "results.csv" {
		t.Errorf("flag variables after setup: output %q, bench %q", output, benchOut)
	}
}

func TestListRunsShortID(t *testing.T) {
	data := t.TempDir()
	id := saveTestRun(t, data)
	runDir := filepath.Join(data, "runs", "abc")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	meta := `{"id":"abc","algo":"dfs","rows":5,"cols":5}`
	if err := os.WriteFile(filepath.Join(runDir, "metadata.json"), []byte(meta), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--data", data, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "abc") || !strings.Contains(out, id[:8]) {
		t.Errorf("list output missing runs:\n%s", out)
	}
	if strings.Contains(out, id) {
		t.Errorf("list should shorten ids:\n%s", out)
	}
}
