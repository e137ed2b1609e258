package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultURL            = "http://127.0.0.1:8000"
	DefaultTimeoutSeconds = 30.0
	DefaultRows           = 20
	DefaultCols           = 25
	DefaultDensity        = 28.0
	DefaultAlgo           = "bfs"
	DefaultVisitedDelayMs = 6.0
	DefaultPathDelayMs    = 18.0
	DefaultTheme          = "default"
	DefaultLogLevel       = "info"
	DefaultDataDir        = ".mazeplay"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Grid     GridConfig     `yaml:"grid"`
	Solve    SolveConfig    `yaml:"solve"`
	Playback PlaybackConfig `yaml:"playback"`
	DataDir  string         `yaml:"data_dir"`
	Theme    string         `yaml:"theme"`
	LogLevel string         `yaml:"log_level"`
}

type ServerConfig struct {
	URL     string  `yaml:"url"`
	Timeout float64 `yaml:"timeout"` // seconds
}

type GridConfig struct {
	Rows    int     `yaml:"rows"`
	Cols    int     `yaml:"cols"`
	Density float64 `yaml:"density"` // percent of cells that are walls
}

type SolveConfig struct {
	Algo string `yaml:"algo"`
}

type PlaybackConfig struct {
	VisitedDelay float64 `yaml:"visited_delay_ms"`
	PathDelay    float64 `yaml:"path_delay_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     DefaultURL,
			Timeout: DefaultTimeoutSeconds,
		},
		Grid: GridConfig{
			Rows:    DefaultRows,
			Cols:    DefaultCols,
			Density: DefaultDensity,
		},
		Solve: SolveConfig{Algo: DefaultAlgo},
		Playback: PlaybackConfig{
			VisitedDelay: DefaultVisitedDelayMs,
			PathDelay:    DefaultPathDelayMs,
		},
		DataDir:  DefaultDataDir,
		Theme:    DefaultTheme,
		LogLevel: DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of base, so keys missing from the file keep
// base's values. base is modified and returned.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, err
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Timeout() time.Duration {
	return seconds(c.Server.Timeout)
}

func (c *Config) VisitedDelay() time.Duration {
	return millis(c.Playback.VisitedDelay)
}

func (c *Config) PathDelay() time.Duration {
	return millis(c.Playback.PathDelay)
}

// RunsDir is where stored runs live.
func (c *Config) RunsDir() string {
	return filepath.Join(c.DataDir, "runs")
}

// LogFile is where the interactive program writes its log.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "mazeplay.log")
}

func millis(v float64) time.Duration {
	if v < 0 {
		return 0
	}
	return time.Duration(v * float64(time.Millisecond))
}

func seconds(v float64) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}
