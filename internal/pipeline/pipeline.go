// Package pipeline runs the galaxy model end to end: profile, grid with
// point masses, optional potential.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/galpot/internal/config"
	"github.com/san-kum/galpot/internal/galaxy"
	"github.com/san-kum/galpot/internal/grid"
	"github.com/san-kum/galpot/internal/potential"
)

// Result holds every array a run produces.
type Result struct {
	Config    config.Config
	Curves    *galaxy.Curves
	Nu        float64
	Grid      *grid.Grid
	Density   *grid.Field
	Masses    []float64
	Potential *grid.Field
	Method    string
	Timings   map[string]time.Duration
	Elapsed   time.Duration
}

// HasPotential reports whether the potential stage ran.
func (r *Result) HasPotential() bool { return r.Potential != nil }

type Pipeline struct {
	cfg       config.Config
	profile   *galaxy.Profile
	evaluator potential.Evaluator
	logger    *log.Logger
}

type Option func(*Pipeline)

func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithEvaluator overrides the evaluator selected by the config and turns
// the potential stage on.
func WithEvaluator(e potential.Evaluator) Option {
	return func(p *Pipeline) { p.evaluator = e }
}

// New validates cfg and prepares a pipeline. cfg is copied; later changes
// to it do not affect the pipeline.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prof, err := galaxy.NewProfile(cfg.ProfileParams())
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:     *cfg,
		profile: prof,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.evaluator == nil && cfg.Potential.Enabled {
		p.evaluator, err = potential.New(cfg.Potential.Method, cfg.PotentialOptions())
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Pipeline) Config() config.Config { return p.cfg }

// Run executes the stages in order. Cancellation is checked between stages
// and inside the potential evaluation.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{
		Config:  p.cfg,
		Timings: make(map[string]time.Duration),
	}

	stage := func(name string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		t0 := time.Now()
		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		res.Timings[name] = time.Since(t0)
		p.logger.Debug("stage done", "stage", name, "took", res.Timings[name])
		return nil
	}

	err := stage("profile", func() error {
		res.Curves = p.profile.Curves(p.cfg.ProfileRadii())
		res.Nu = p.profile.Nu()
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = stage("grid", func() error {
		g, err := grid.New(p.cfg.Grid.PixelAxisSize, p.cfg.Grid.UpscaleFactor, p.cfg.Scale())
		if err != nil {
			return err
		}
		res.Grid = g
		res.Density, err = g.DensityMap(p.profile, p.cfg.DensityFactor())
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("density map ready",
		"points", res.Grid.Len(),
		"resolution", res.Grid.Resolution,
		"density_factor", p.cfg.DensityFactor())

	if p.evaluator != nil {
		err = stage("potential", func() error {
			masses, err := res.Grid.AttachMasses(p.profile, p.cfg.DensityFactor())
			if err != nil {
				return err
			}
			pts := res.Grid.Points()
			phi, err := p.evaluator.Potential(ctx, masses, pts, pts)
			if err != nil {
				return err
			}
			res.Masses = masses
			res.Method = p.evaluator.Name()
			res.Potential, err = res.Grid.Reshape(phi)
			return err
		})
		if err != nil {
			return nil, err
		}
		p.logger.Info("potential ready",
			"method", res.Method,
			"pairs", res.Grid.Len()*res.Grid.Len(),
			"took", res.Timings["potential"])
	}

	res.Elapsed = time.Since(start)
	return res, nil
}
