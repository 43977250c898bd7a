// Package potential sums the Newtonian gravitational potential of a set of
// point masses at a set of target points.
//
// Two evaluators are provided:
//
//   - [Direct]: the exact O(N·M) pairwise sum, optionally split across
//     worker goroutines by target
//   - [BarnesHut]: a quadtree monopole approximation, O(N log M)
//   - [FFT]: the exact sum as a zero-padded convolution, for masses and
//     targets on the same regular lattice, O(N log N)
//
// Coincident source/target pairs contribute nothing: the separation is
// treated as infinite instead of dividing by zero.
package potential

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/galpot/internal/galaxy"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrDimensionMismatch indicates a different number of masses and sources.
	ErrDimensionMismatch = errors.New("potential: mass and source counts differ")

	// ErrUnknownMethod indicates an evaluator name that is not registered.
	ErrUnknownMethod = errors.New("potential: unknown evaluation method")

	// ErrInvalidTheta indicates a negative Barnes-Hut opening angle.
	ErrInvalidTheta = errors.New("potential: opening angle must not be negative")

	// ErrNotLattice indicates points that do not form the square row-major
	// lattice the FFT evaluator requires.
	ErrNotLattice = errors.New("potential: points are not a regular lattice")
)

// Evaluator computes the potential at every target due to masses placed at
// sources.
type Evaluator interface {
	Name() string
	Potential(ctx context.Context, masses []float64, sources, targets []r2.Vec) ([]float64, error)
}

const (
	MethodDirect    = "direct"
	MethodBarnesHut = "barneshut"
	MethodFFT       = "fft"
)

// Options configures evaluator construction. Zero values select defaults.
type Options struct {
	G       float64
	Workers int
	Theta   float64
}

// New returns the evaluator registered under method.
func New(method string, opts Options) (Evaluator, error) {
	g := opts.G
	if g == 0 {
		g = galaxy.G
	}
	switch method {
	case MethodDirect, "":
		return &Direct{G: g, Workers: opts.Workers}, nil
	case MethodBarnesHut:
		if opts.Theta < 0 {
			return nil, fmt.Errorf("%w: %g", ErrInvalidTheta, opts.Theta)
		}
		return &BarnesHut{G: g, Theta: opts.Theta}, nil
	case MethodFFT:
		return &FFT{G: g}, nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownMethod, method, Methods())
	}
}

// Methods lists the registered evaluator names.
func Methods() []string {
	return []string{MethodDirect, MethodBarnesHut, MethodFFT}
}

func checkDims(masses []float64, sources []r2.Vec) error {
	if len(masses) != len(sources) {
		return fmt.Errorf("%w: %d masses, %d sources", ErrDimensionMismatch, len(masses), len(sources))
	}
	return nil
}
