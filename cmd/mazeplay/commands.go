package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mazeplay/internal/bench"
	"github.com/san-kum/mazeplay/internal/config"
	"github.com/san-kum/mazeplay/internal/grid"
	"github.com/san-kum/mazeplay/internal/player"
	"github.com/san-kum/mazeplay/internal/render"
	"github.com/san-kum/mazeplay/internal/service"
	"github.com/san-kum/mazeplay/internal/session"
	"github.com/san-kum/mazeplay/internal/snapshot"
	"github.com/san-kum/mazeplay/internal/storage"
	"github.com/san-kum/mazeplay/internal/viz"
)

func runInteractive(cmd *cobra.Command, args []string) error {
	return startTUI(cmd, nil)
}

func replayRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rec, err := loadRecord(cfg, args[0])
	if err != nil {
		return err
	}
	return startTUI(cmd, rec)
}

func startTUI(cmd *cobra.Command, replay *storage.Record) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(cfg.LogFile(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newLogger(cfg, logFile)

	st := storage.New(cfg.RunsDir())
	if err := st.Init(); err != nil {
		return err
	}

	ctl := session.New(newClient(cfg, logger),
		session.WithLogger(logger),
		session.WithDelays(cfg.VisitedDelay(), cfg.PathDelay()),
		session.WithSize(cfg.Grid.Rows, cfg.Grid.Cols),
	)

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("starting", "server", cfg.Server.URL, "data", cfg.DataDir)
	return viz.Run(ctx, viz.AppConfig{
		Controller:   ctl,
		Store:        st,
		ExportDir:    filepath.Join(cfg.DataDir, "exports"),
		Params:       session.GenerateParams{Rows: cfg.Grid.Rows, Cols: cfg.Grid.Cols, Density: cfg.Grid.Density},
		Algo:         cfg.Solve.Algo,
		Theme:        cfg.Theme,
		VisitedDelay: cfg.VisitedDelay(),
		PathDelay:    cfg.PathDelay(),
		Logger:       logger,
		Replay:       replay,
	})
}

func playMaze(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	ctx, cancel := signalContext()
	defer cancel()

	ctl := session.New(newClient(cfg, logger),
		session.WithLogger(logger),
		session.WithDelays(cfg.VisitedDelay(), cfg.PathDelay()),
	)

	if _, err := ctl.Generate(ctx, session.GenerateParams{Rows: cfg.Grid.Rows, Cols: cfg.Grid.Cols, Density: cfg.Grid.Density}); err != nil {
		return err
	}
	fmt.Println(ctl.Status())

	sol, err := ctl.Solve(ctx, cfg.Solve.Algo)
	if err != nil {
		return err
	}
	fmt.Println(ctl.Status())
	fmt.Printf("animating %d visited and %d path cells (%v)...\n", len(sol.Visited), len(sol.Path), sol.Run.Planned().Round(time.Millisecond))

	outcome, err := sol.Run.Wait(ctx)
	if err != nil {
		ctl.Cancel()
		return err
	}
	view := ctl.Snapshot()
	fmt.Println()
	fmt.Println(boardText(view.Cells, view.Model.Cols()))
	fmt.Printf("\nplayback %s\n", outcome)

	if saveRun {
		st := storage.New(cfg.RunsDir())
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(sol.Record())
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}
	return nil
}

func solveStored(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rec, err := loadRecord(cfg, args[0])
	if err != nil {
		return err
	}
	m, err := rec.Model()
	if err != nil {
		return err
	}
	a, err := service.LookupAlgorithm(cfg.Solve.Algo)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, os.Stderr)
	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	resp, err := newClient(cfg, logger).Solve(ctx, service.SolveRequest{
		Grid: m.Cells(), Start: m.Start().Pair(), Goal: m.Goal().Pair(), Algo: a.Key,
	})
	if err != nil {
		return err
	}
	visited, err := grid.ParseSteps(resp.Visited)
	if err != nil {
		return err
	}
	path, err := grid.ParseSteps(resp.Path)
	if err != nil {
		return err
	}

	sol := &session.Solution{
		Algo:         a.Key,
		TimeMs:       resp.TimeMs,
		VisitedCount: resp.VisitedCount,
		PathLength:   resp.PathLength,
		Client:       time.Since(start),
		Model:        m,
		Visited:      visited,
		Path:         path,
	}
	st := storage.New(cfg.RunsDir())
	id, err := st.Save(sol.Record())
	if err != nil {
		return err
	}
	fmt.Printf("Solve (%s): %v ms | Visited: %d | Path: %d\n", strings.ToUpper(a.Key), resp.TimeMs, resp.VisitedCount, resp.PathLength)
	fmt.Printf("run id: %s\n", id)
	return nil
}

func compareAlgorithms(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	ctx, cancel := signalContext()
	defer cancel()

	client := newClient(cfg, logger)
	var m *grid.Model
	if len(args) == 1 {
		rec, err := loadRecord(cfg, args[0])
		if err != nil {
			return err
		}
		if m, err = rec.Model(); err != nil {
			return err
		}
	} else {
		ctl := session.New(client, session.WithLogger(logger))
		if m, err = ctl.Generate(ctx, session.GenerateParams{Rows: cfg.Grid.Rows, Cols: cfg.Grid.Cols, Density: cfg.Grid.Density}); err != nil {
			return err
		}
		fmt.Println(ctl.Status())
	}

	resp, err := client.Compare(ctx, service.CompareRequest{Grid: m.Cells(), Start: m.Start().Pair(), Goal: m.Goal().Pair()})
	if err != nil {
		return err
	}

	fmt.Printf("comparison on %dx%d maze (sorted by time)\n\n", m.Rows(), m.Cols())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALGO\tTIME\tVISITED\tPATH")
	for _, r := range resp.Results {
		fmt.Fprintf(w, "%s\t%v ms\t%d\t%d\n", r.Algo, r.TimeMs, r.VisitedCount, r.PathLength)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if csvOut != "" {
		f, err := os.Create(csvOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := storage.WriteCompareCSV(f, resp.Results); err != nil {
			return err
		}
		fmt.Printf("\nsaved: %s\n", csvOut)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	runs, err := storage.New(cfg.RunsDir()).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tALGO\tTIME\tSIZE\tDENSITY\tSOLVE\tVISITED\tPATH")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%.0f%%\t%vms\t%d\t%d\n",
			shortID(run.ID),
			run.Algo,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Rows, run.Cols,
			run.Density*100,
			run.TimeMs,
			run.VisitedCount,
			run.PathLength,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rec, err := loadRecord(cfg, args[0])
	if err != nil {
		return err
	}
	frame, err := finalFrame(rec)
	if err != nil {
		return err
	}

	fmt.Printf("run:      %s\n", rec.ID)
	fmt.Printf("algo:     %s\n", rec.Algo)
	fmt.Printf("time:     %s\n", rec.Timestamp.Format(time.RFC3339))
	fmt.Printf("grid:     %dx%d, %.0f%% walls\n", rec.Rows, rec.Cols, rec.Density*100)
	fmt.Printf("solve:    %v ms (client %v ms)\n", rec.TimeMs, math.Round(rec.ClientMs))
	fmt.Printf("visited:  %d\n", rec.VisitedCount)
	fmt.Printf("path:     %d\n\n", rec.PathLength)
	fmt.Println(boardText(frame.Cells, frame.Cols))
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	cfg, rec, frame, err := exportSetup(cmd, args[0])
	if err != nil {
		return err
	}
	path := outputPath(rec, "png")
	if err := snapshot.SavePNG(path, frame, exportOptions(cfg)); err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", path)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, rec, frame, err := exportSetup(cmd, args[0])
	if err != nil {
		return err
	}
	path := outputPath(rec, "svg")
	if err := snapshot.SaveSVG(path, frame, exportOptions(cfg)); err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", path)
	return nil
}

func exportGIF(cmd *cobra.Command, args []string) error {
	cfg, rec, _, err := exportSetup(cmd, args[0])
	if err != nil {
		return err
	}
	m, err := rec.Model()
	if err != nil {
		return err
	}

	opts := snapshot.DefaultGIFOptions()
	opts.Options = exportOptions(cfg)
	opts.VisitedDelay = cfg.VisitedDelay()
	opts.PathDelay = cfg.PathDelay()
	opts.MarksPerFrame = max(1, (len(rec.Visited)+len(rec.Path))/200)
	opts.Caption = caption(rec)

	anim, err := snapshot.RecordGIF(m, rec.Visited, rec.Path, opts)
	if err != nil {
		return err
	}
	path := outputPath(rec, "gif")
	if err := snapshot.SaveGIF(path, anim); err != nil {
		return err
	}
	fmt.Printf("saved: %s (%d frames)\n", path, len(anim.Image))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rec, err := loadRecord(cfg, args[0])
	if err != nil {
		return err
	}
	if output == "" {
		return storage.WriteJSON(cmd.OutOrStdout(), rec)
	}
	if err := storage.ExportJSON(output, rec); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", output)
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rec, err := loadRecord(cfg, args[0])
	if err != nil {
		return err
	}
	if len(rec.Visited) < 2 {
		return fmt.Errorf("no data to plot")
	}

	goal := grid.C(rec.Goal[0], rec.Goal[1])
	fmt.Printf("run: %s\n", rec.ID)
	fmt.Printf("algo: %s\n\n", rec.Algo)

	fmt.Println(asciigraph.Plot(distances(rec.Visited, goal),
		asciigraph.Height(10), asciigraph.Width(70),
		asciigraph.Caption("visited order: manhattan distance to goal")))
	if len(rec.Path) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(distances(rec.Path, goal),
			asciigraph.Height(6), asciigraph.Width(70),
			asciigraph.Caption("path: manhattan distance to goal")))
	}
	return nil
}

func distances(steps grid.Steps, goal grid.Coord) []float64 {
	out := make([]float64, len(steps))
	for i, c := range steps {
		out[i] = math.Abs(float64(c.Row-goal.Row)) + math.Abs(float64(c.Col-goal.Col))
	}
	return out
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)

	sc := bench.DefaultScenario()
	if scenarioFile != "" {
		if sc, err = bench.LoadScenario(scenarioFile); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("trials") {
		sc.Trials = trials
	}
	if cmd.Flags().Changed("workers") {
		sc.Workers = workers
	}

	ctx, cancel := signalContext()
	defer cancel()

	runner := bench.NewRunner(newClient(cfg, logger),
		bench.WithLogger(logger),
		bench.WithProgress(func(done, total int) {
			if done%10 == 0 || done == total {
				logger.Info("progress", "mazes", fmt.Sprintf("%d/%d", done, total))
			}
		}),
	)

	nAlgos := len(sc.Algorithms)
	if nAlgos == 0 {
		nAlgos = len(service.Algorithms)
	}
	fmt.Printf("benchmarking %d mazes x %d algorithms...\n", sc.Mazes(), nAlgos)
	start := time.Now()
	rows, err := runner.Run(ctx, sc)
	if err != nil {
		return err
	}

	f, err := os.Create(benchOut)
	if err != nil {
		return err
	}
	defer f.Close()
	w, err := storage.NewBenchWriter(f)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start).Round(time.Millisecond))
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGO\tRUNS\tSUCCESS\tMEAN MS\tMEAN VISITED\tMEAN PATH")
	for _, s := range bench.Summarize(rows) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\t%.1f\t%.1f\n", s.Algorithm, s.Runs, s.Successes, s.MeanMs, s.MeanVisited, s.MeanPath)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nsaved: %s\n", benchOut)
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.RunsDir())
	id, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	if err := st.Delete(id); err != nil {
		return err
	}
	fmt.Printf("deleted: %s\n", id)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tROWS\tCOLS\tDENSITY")
	for _, name := range config.ListPresets() {
		g := config.Presets[name]
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f%%\n", name, g.Rows, g.Cols, g.Density)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "mazeplay.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func loadRecord(cfg *config.Config, idOrPrefix string) (*storage.Record, error) {
	st := storage.New(cfg.RunsDir())
	id, err := st.Resolve(idOrPrefix)
	if err != nil {
		return nil, err
	}
	return st.LoadRecord(id)
}

func exportSetup(cmd *cobra.Command, id string) (*config.Config, *storage.Record, snapshot.Frame, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, snapshot.Frame{}, err
	}
	rec, err := loadRecord(cfg, id)
	if err != nil {
		return nil, nil, snapshot.Frame{}, err
	}
	frame, err := finalFrame(rec)
	if err != nil {
		return nil, nil, snapshot.Frame{}, err
	}
	return cfg, rec, frame, nil
}

// finalFrame plays rec to completion on a virtual clock and returns the
// resulting frame.
func finalFrame(rec *storage.Record) (snapshot.Frame, error) {
	m, err := rec.Model()
	if err != nil {
		return snapshot.Frame{}, err
	}
	r := render.New(m.Rows(), m.Cols())
	sched := player.NewManualScheduler()
	p := player.New(r, player.WithScheduler(sched))
	if _, err := p.Play(m, rec.Visited, rec.Path, 0, 0); err != nil {
		return snapshot.Frame{}, err
	}
	sched.Flush()
	return snapshot.Frame{Rows: m.Rows(), Cols: m.Cols(), Cells: r.Render(m), Caption: caption(rec)}, nil
}

func caption(rec *storage.Record) string {
	return fmt.Sprintf("%s: %v ms | visited %d | path %d", strings.ToUpper(rec.Algo), rec.TimeMs, rec.VisitedCount, rec.PathLength)
}

// exportOptions prefers a named export palette and falls back to the TUI
// theme of the same name.
func exportOptions(cfg *config.Config) snapshot.Options {
	opts := snapshot.Options{CellSize: cellSize}
	if _, ok := snapshot.Palettes[cfg.Theme]; ok {
		opts.Palette = snapshot.GetPalette(cfg.Theme)
	} else {
		opts.Palette = viz.GetTheme(cfg.Theme).Palette()
	}
	if face, err := snapshot.MonoFace(float64(max(cellSize-2, 10))); err == nil {
		opts.Face = face
	}
	return opts
}

func outputPath(rec *storage.Record, ext string) string {
	if output != "" {
		return output
	}
	return shortID(rec.ID) + "." + ext
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// boardText draws cells as plain text, one character per cell.
func boardText(cells []render.CellView, cols int) string {
	var b strings.Builder
	for i, c := range cells {
		switch {
		case c.Kind == grid.KindWall:
			b.WriteByte('#')
		case c.Kind == grid.KindStart:
			b.WriteByte('S')
		case c.Kind == grid.KindGoal:
			b.WriteByte('G')
		case c.Mark == render.Path:
			b.WriteByte('*')
		case c.Mark == render.Visited:
			b.WriteByte('.')
		default:
			b.WriteByte(' ')
		}
		if (i+1)%cols == 0 && i+1 < len(cells) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
