// Package grid lays out the square sampling lattice the density model and
// the potential are evaluated on.
package grid

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrInvalidGrid indicates a non-positive size, resolution or scale.
	ErrInvalidGrid = errors.New("grid: invalid grid parameters")

	// ErrShapeMismatch indicates a value slice whose length differs from
	// the number of grid points.
	ErrShapeMismatch = errors.New("grid: value count does not match grid size")
)

// Density evaluates a radial density over a batch of radii.
type Density interface {
	Total(r []float64) []float64
}

// Grid is a Resolution x Resolution lattice of cell centres covering
// [-HalfWidth, HalfWidth) on both axes, multiplied by Scale.
type Grid struct {
	HalfWidth  float64
	Resolution int
	Scale      float64

	step   float64
	points []r2.Vec
}

// New builds the lattice. Points are stored row-major: y is the outer
// index, x the inner one.
func New(halfWidth float64, resolution int, scale float64) (*Grid, error) {
	if !(halfWidth > 0) {
		return nil, fmt.Errorf("%w: half width %g", ErrInvalidGrid, halfWidth)
	}
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: resolution %d", ErrInvalidGrid, resolution)
	}
	if !(scale > 0) {
		return nil, fmt.Errorf("%w: scale %g", ErrInvalidGrid, scale)
	}

	g := &Grid{
		HalfWidth:  halfWidth,
		Resolution: resolution,
		Scale:      scale,
		step:       2 * halfWidth / float64(resolution),
	}

	axis := g.Axis()
	g.points = make([]r2.Vec, 0, resolution*resolution)
	for _, y := range axis {
		for _, x := range axis {
			g.points = append(g.points, r2.Vec{X: x * scale, Y: y * scale})
		}
	}
	return g, nil
}

// Axis returns the unscaled cell-centre coordinates along one axis.
func (g *Grid) Axis() []float64 {
	axis := make([]float64, g.Resolution)
	start := -g.HalfWidth + g.step/2
	for i := range axis {
		axis[i] = start + float64(i)*g.step
	}
	return axis
}

func (g *Grid) Len() int         { return len(g.points) }
func (g *Grid) Step() float64    { return g.step }
func (g *Grid) Points() []r2.Vec { return g.points }

// Extent returns the unscaled plot bounds (xmin, xmax, ymin, ymax).
func (g *Grid) Extent() Extent {
	return Extent{XMin: -g.HalfWidth, XMax: g.HalfWidth, YMin: -g.HalfWidth, YMax: g.HalfWidth}
}

// Radii returns the distance of every point from the origin.
func (g *Grid) Radii() []float64 {
	r := make([]float64, len(g.points))
	for i, p := range g.points {
		r[i] = r2.Norm(p)
	}
	return r
}

// DensityMap evaluates factor * rho(|p|) over the grid and reshapes it.
func (g *Grid) DensityMap(rho Density, factor float64) (*Field, error) {
	values := rho.Total(g.Radii())
	for i := range values {
		values[i] *= factor
	}
	return g.Reshape(values)
}

// AttachMasses returns one point mass per grid point:
// factor * rho(|p|) / Resolution.
func (g *Grid) AttachMasses(rho Density, factor float64) ([]float64, error) {
	masses := rho.Total(g.Radii())
	if len(masses) != g.Len() {
		return nil, fmt.Errorf("%w: got %d masses for %d points", ErrShapeMismatch, len(masses), g.Len())
	}
	res := float64(g.Resolution)
	for i := range masses {
		masses[i] = factor * masses[i] / res
	}
	return masses, nil
}

// Reshape wraps values as a Resolution x Resolution field. The slice is
// not copied.
func (g *Grid) Reshape(values []float64) (*Field, error) {
	if len(values) != g.Len() {
		return nil, fmt.Errorf("%w: got %d values for %d points", ErrShapeMismatch, len(values), g.Len())
	}
	return &Field{
		Rows:   g.Resolution,
		Cols:   g.Resolution,
		Data:   values,
		Extent: g.Extent(),
	}, nil
}
