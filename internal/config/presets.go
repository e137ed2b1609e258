package config

import "sort"

// Presets are grid shapes. They only carry the grid section; everything
// else comes from the defaults.
var Presets = map[string]GridConfig{
	"small":  {Rows: 10, Cols: 12, Density: 20},
	"medium": {Rows: DefaultRows, Cols: DefaultCols, Density: DefaultDensity},
	"large":  {Rows: 60, Cols: 80, Density: 30},
	"dense":  {Rows: 30, Cols: 40, Density: 45},
	"sparse": {Rows: 30, Cols: 40, Density: 10},
}

// GetPreset returns the defaults with the named grid applied, or nil.
func GetPreset(name string) *Config {
	g, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Grid = g
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
