package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/galpot/internal/galaxy"
	"github.com/san-kum/galpot/internal/potential"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPixelAxisSize = 15
	DefaultUpscaleFactor = 2 * DefaultPixelAxisSize
	DefaultScaleKpc      = 1.0
	DefaultStars         = 5e12
	DefaultSersicIndex   = 2.2
	DefaultBulgeDensity  = 1.0
	DefaultBulgeRadius   = 1.0
	DefaultDiskDensity   = 0.1
	DefaultDiskRadius    = 5.0
	DefaultMinRadius     = 0.01
	DefaultSamples       = 100
	DefaultOutputDir     = "out"
)

// ErrInvalidConfig indicates a configuration that cannot produce a model.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the full parameter set of one run. Lengths are in units of
// Grid.ScaleKpc kiloparsecs unless the field name says otherwise.
type Config struct {
	Name      string          `yaml:"name"`
	Grid      GridConfig      `yaml:"grid"`
	Stars     StarsConfig     `yaml:"stars"`
	Bulge     BulgeConfig     `yaml:"bulge"`
	Disk      DiskConfig      `yaml:"disk"`
	Profile   ProfileConfig   `yaml:"profile"`
	Potential PotentialConfig `yaml:"potential"`
	Output    OutputConfig    `yaml:"output"`
}

type GridConfig struct {
	PixelAxisSize float64 `yaml:"pixel_axis_size"`
	UpscaleFactor int     `yaml:"upscale_factor"`
	ScaleKpc      float64 `yaml:"scale_kpc"`
}

type StarsConfig struct {
	Count     float64 `yaml:"count"`
	SolarMass float64 `yaml:"solar_mass"`
}

type BulgeConfig struct {
	Density         float64 `yaml:"density"`
	EffectiveRadius float64 `yaml:"effective_radius"`
	SersicIndex     float64 `yaml:"sersic_index"`
}

type DiskConfig struct {
	Density     float64 `yaml:"density"`
	ScaleRadius float64 `yaml:"scale_radius"`
}

type ProfileConfig struct {
	MinRadius float64 `yaml:"min_radius"`
	Samples   int     `yaml:"samples"`
}

type PotentialConfig struct {
	Enabled bool    `yaml:"enabled"`
	Method  string  `yaml:"method"`
	Theta   float64 `yaml:"theta"`
	Workers int     `yaml:"workers"`
}

type OutputConfig struct {
	Dir      string `yaml:"dir"`
	PNG      bool   `yaml:"png"`
	Terminal bool   `yaml:"terminal"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "density",
		Grid: GridConfig{
			PixelAxisSize: DefaultPixelAxisSize,
			UpscaleFactor: DefaultUpscaleFactor,
			ScaleKpc:      DefaultScaleKpc,
		},
		Stars: StarsConfig{
			Count:     DefaultStars,
			SolarMass: galaxy.SolarMass,
		},
		Bulge: BulgeConfig{
			Density:         DefaultBulgeDensity,
			EffectiveRadius: DefaultBulgeRadius,
			SersicIndex:     DefaultSersicIndex,
		},
		Disk: DiskConfig{
			Density:     DefaultDiskDensity,
			ScaleRadius: DefaultDiskRadius,
		},
		Profile: ProfileConfig{
			MinRadius: DefaultMinRadius,
			Samples:   DefaultSamples,
		},
		Potential: PotentialConfig{
			Method: potential.MethodDirect,
			Theta:  potential.DefaultTheta,
		},
		Output: OutputConfig{
			Dir:      DefaultOutputDir,
			PNG:      true,
			Terminal: true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case !(c.Grid.PixelAxisSize > 0):
		return fmt.Errorf("%w: pixel_axis_size must be positive, got %g", ErrInvalidConfig, c.Grid.PixelAxisSize)
	case c.Grid.UpscaleFactor <= 0:
		return fmt.Errorf("%w: upscale_factor must be positive, got %d", ErrInvalidConfig, c.Grid.UpscaleFactor)
	case !(c.Grid.ScaleKpc > 0):
		return fmt.Errorf("%w: scale_kpc must be positive, got %g", ErrInvalidConfig, c.Grid.ScaleKpc)
	case c.Stars.Count < 0 || c.Stars.SolarMass < 0:
		return fmt.Errorf("%w: star count and solar mass must not be negative", ErrInvalidConfig)
	case !(c.Bulge.SersicIndex > 0):
		return fmt.Errorf("%w: sersic_index must be positive, got %g", ErrInvalidConfig, c.Bulge.SersicIndex)
	case !(c.Bulge.EffectiveRadius > 0) || !(c.Disk.ScaleRadius > 0):
		return fmt.Errorf("%w: component radii must be positive", ErrInvalidConfig)
	case c.Bulge.Density < 0 || c.Disk.Density < 0:
		return fmt.Errorf("%w: component densities must not be negative", ErrInvalidConfig)
	case c.Profile.Samples < 2:
		return fmt.Errorf("%w: profile needs at least 2 samples, got %d", ErrInvalidConfig, c.Profile.Samples)
	case c.Profile.MinRadius < 0 || c.Profile.MinRadius >= c.Grid.PixelAxisSize:
		return fmt.Errorf("%w: min_radius must lie in [0, pixel_axis_size)", ErrInvalidConfig)
	case c.Potential.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	case c.Potential.Theta < 0 || math.IsNaN(c.Potential.Theta):
		return fmt.Errorf("%w: theta must not be negative, got %g", ErrInvalidConfig, c.Potential.Theta)
	}
	if c.Potential.Enabled {
		if _, err := potential.New(c.Potential.Method, c.PotentialOptions()); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Scale is the length of one grid unit in meters.
func (c *Config) Scale() float64 {
	return c.Grid.ScaleKpc * galaxy.Kiloparsec
}

// DensityFactor is the mass represented by unit normalized density.
func (c *Config) DensityFactor() float64 {
	return galaxy.DensityFactor(c.Stars.SolarMass, c.Stars.Count)
}

func (c *Config) ProfileParams() galaxy.Params {
	scale := c.Scale()
	return galaxy.Params{
		SersicIndex:  c.Bulge.SersicIndex,
		BulgeRadius:  c.Bulge.EffectiveRadius * scale,
		BulgeDensity: c.Bulge.Density,
		DiskRadius:   c.Disk.ScaleRadius * scale,
		DiskDensity:  c.Disk.Density,
	}
}

// ProfileRadii returns the radii, in meters, the profile chart is drawn over.
func (c *Config) ProfileRadii() []float64 {
	scale := c.Scale()
	return galaxy.Sample(c.Profile.MinRadius*scale, c.Grid.PixelAxisSize*scale, c.Profile.Samples)
}

func (c *Config) PotentialOptions() potential.Options {
	return potential.Options{
		G:       galaxy.G,
		Workers: c.Potential.Workers,
		Theta:   c.Potential.Theta,
	}
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
