package config

import (
	"sort"

	"github.com/san-kum/galpot/internal/potential"
)

// Presets holds the named reference configurations.
var Presets = map[string]func() *Config{
	// density map only, 30x30
	"density": DefaultConfig,
	// 50x50 grid with the direct potential sum
	"potential": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "potential"
		cfg.Grid.PixelAxisSize = 25
		cfg.Grid.UpscaleFactor = 50
		cfg.Stars.Count = 1e12
		cfg.Potential.Enabled = true
		return cfg
	},
	// 100x100 grid, Barnes-Hut approximation
	"hires": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "hires"
		cfg.Grid.PixelAxisSize = 25
		cfg.Grid.UpscaleFactor = 100
		cfg.Stars.Count = 1e12
		cfg.Potential.Enabled = true
		cfg.Potential.Method = potential.MethodBarnesHut
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
