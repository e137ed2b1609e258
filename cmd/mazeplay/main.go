package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mazeplay/internal/config"
	"github.com/san-kum/mazeplay/internal/service"
	"github.com/san-kum/mazeplay/internal/snapshot"
	"github.com/san-kum/mazeplay/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	serverURL  string
	timeout    float64
	rows       int
	cols       int
	density    float64
	algo       string
	visitedMs  float64
	pathMs     float64
	theme      string
	verbose    bool
	// Export options
	output   string
	cellSize int
	// Bench options
	scenarioFile string
	trials       int
	workers      int
	benchOut     string
	saveRun      bool
	csvOut       string
)

// main executes the root command, which opens the interactive program. It
// exits with status 1 on error.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd registers commands and flags. Registering resets every flag
// variable to its default.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mazeplay",
		Short:         "maze solving visualizer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "grid preset (see `mazeplay presets`)")
	pf.StringVar(&serverURL, "server", config.DefaultURL, "maze service base url")
	pf.Float64Var(&timeout, "timeout", config.DefaultTimeoutSeconds, "request timeout in seconds")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&theme, "theme", config.DefaultTheme, "colour theme: "+strings.Join(append(viz.ThemeNames(), snapshot.PaletteNames()...), ", "))

	gridFlags := func(cmd *cobra.Command) {
		cmd.Flags().IntVar(&rows, "rows", config.DefaultRows, "grid rows (5-60)")
		cmd.Flags().IntVar(&cols, "cols", config.DefaultCols, "grid columns (5-80)")
		cmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "wall density percent (5-45)")
	}
	playbackFlags := func(cmd *cobra.Command) {
		cmd.Flags().Float64Var(&visitedMs, "visited-delay", config.DefaultVisitedDelayMs, "ms per visited cell")
		cmd.Flags().Float64Var(&pathMs, "path-delay", config.DefaultPathDelayMs, "ms per path cell")
	}
	algoFlag := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&algo, "algo", config.DefaultAlgo, "algorithm: "+strings.Join(service.AlgorithmKeys(), ", "))
	}
	exportFlags := func(cmd *cobra.Command, ext string) {
		cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run_id>."+ext+")")
		cmd.Flags().IntVar(&cellSize, "cell", 16, "cell size in pixels")
	}

	gridFlags(rootCmd)
	playbackFlags(rootCmd)
	algoFlag(rootCmd)

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "generate a maze, solve it and wait for the animation",
		Args:  cobra.NoArgs,
		RunE:  playMaze,
	}
	gridFlags(playCmd)
	playbackFlags(playCmd)
	algoFlag(playCmd)
	playCmd.Flags().BoolVar(&saveRun, "save", true, "store the run")

	solveCmd := &cobra.Command{
		Use:   "solve [run_id]",
		Short: "solve a stored run's maze again",
		Args:  cobra.ExactArgs(1),
		RunE:  solveStored,
	}
	algoFlag(solveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [run_id]",
		Short: "compare all algorithms on a stored or fresh maze",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareAlgorithms,
	}
	gridFlags(compareCmd)
	compareCmd.Flags().StringVar(&csvOut, "csv", "", "also write results to this csv file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a run's metadata and solved maze",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a stored run interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}
	playbackFlags(replayCmd)

	pngCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render a run's final frame as png",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportFlags(pngCmd, "png")

	gifCmd := &cobra.Command{
		Use:   "export-gif [run_id]",
		Short: "render a run's playback as an animated gif",
		Args:  cobra.ExactArgs(1),
		RunE:  exportGIF,
	}
	exportFlags(gifCmd, "gif")
	playbackFlags(gifCmd)

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run's final frame as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportFlags(svgCmd, "svg")

	jsonCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as json (stdout unless -o)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	jsonCmd.Flags().StringVarP(&output, "output", "o", "", "output file")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot distance to goal over the search",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "batch compare algorithms over sizes and densities",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().StringVar(&scenarioFile, "scenario", "", "scenario file (yaml)")
	benchCmd.Flags().IntVar(&trials, "trials", 20, "mazes per size/density")
	benchCmd.Flags().IntVar(&workers, "workers", 4, "concurrent mazes")
	benchCmd.Flags().StringVarP(&benchOut, "output", "o", "results.csv", "csv output")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list grid presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the resolved configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	gridFlags(initCmd)
	playbackFlags(initCmd)
	algoFlag(initCmd)

	rootCmd.AddCommand(playCmd, solveCmd, compareCmd, listCmd, showCmd, replayCmd,
		pngCmd, gifCmd, svgCmd, jsonCmd, plotCmd, benchCmd, deleteCmd, presetsCmd, initCmd)
	return rootCmd
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		if cfg, err = config.LoadOver(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("server") {
		cfg.Server.URL = serverURL
	}
	if flags.Changed("timeout") {
		cfg.Server.Timeout = timeout
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("rows") {
		cfg.Grid.Rows = rows
	}
	if flags.Changed("cols") {
		cfg.Grid.Cols = cols
	}
	if flags.Changed("density") {
		cfg.Grid.Density = density
	}
	if flags.Changed("algo") {
		cfg.Solve.Algo = algo
	}
	if flags.Changed("visited-delay") {
		cfg.Playback.VisitedDelay = visitedMs
	}
	if flags.Changed("path-delay") {
		cfg.Playback.PathDelay = pathMs
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "mazeplay",
	})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func newClient(cfg *config.Config, logger *log.Logger) *service.Client {
	return service.NewClient(cfg.Server.URL, service.WithTimeout(cfg.Timeout()), service.WithLogger(logger))
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
