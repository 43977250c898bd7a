package potential

import (
	"context"
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/spatial/r2"
)

// FFT evaluates the exact pairwise sum for masses sitting on a square
// row-major lattice and probed at the same points. The sum is a discrete
// convolution of the mass grid with the kernel -G/r (zero at r = 0),
// computed with zero padding so there is no wrap-around.
type FFT struct {
	G float64
}

func (f *FFT) Name() string { return MethodFFT }

// lattice describes n x n points at origin + (col*dx, row*dy).
type lattice struct {
	n      int
	dx, dy float64
}

// detectLattice checks that pts is a square row-major lattice, x fastest.
func detectLattice(pts []r2.Vec) (lattice, error) {
	n := int(math.Round(math.Sqrt(float64(len(pts)))))
	if n*n != len(pts) {
		return lattice{}, fmt.Errorf("%w: %d points is not a square count", ErrNotLattice, len(pts))
	}
	if n == 1 {
		return lattice{n: 1}, nil
	}

	l := lattice{n: n, dx: pts[1].X - pts[0].X, dy: pts[n].Y - pts[0].Y}
	if !(l.dx > 0) || !(l.dy > 0) {
		return lattice{}, fmt.Errorf("%w: non-increasing axis", ErrNotLattice)
	}
	tol := 1e-6 * math.Min(l.dx, l.dy)
	origin := pts[0]
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			p := pts[row*n+col]
			if math.Abs(p.X-(origin.X+float64(col)*l.dx)) > tol ||
				math.Abs(p.Y-(origin.Y+float64(row)*l.dy)) > tol {
				return lattice{}, fmt.Errorf("%w: point %d off the lattice", ErrNotLattice, row*n+col)
			}
		}
	}
	return l, nil
}

// paddedSize is the smallest power of two holding a linear convolution of
// two length-n sequences.
func paddedSize(n int) int {
	size := 1
	for size < 2*n-1 {
		size <<= 1
	}
	return size
}

func (f *FFT) Potential(ctx context.Context, masses []float64, sources, targets []r2.Vec) ([]float64, error) {
	if err := checkDims(masses, sources); err != nil {
		return nil, err
	}
	if len(targets) != len(sources) {
		return nil, fmt.Errorf("%w: targets must coincide with sources", ErrNotLattice)
	}
	for i := range targets {
		if targets[i] != sources[i] {
			return nil, fmt.Errorf("%w: target %d differs from its source", ErrNotLattice, i)
		}
	}
	phi := make([]float64, len(targets))
	if len(sources) == 0 {
		return phi, nil
	}

	l, err := detectLattice(sources)
	if err != nil {
		return nil, err
	}
	if l.n == 1 {
		return phi, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := l.n
	size := paddedSize(n)
	grid := make([][]float64, size)
	kernel := make([][]float64, size)
	for i := range grid {
		grid[i] = make([]float64, size)
		kernel[i] = make([]float64, size)
	}
	for row := 0; row < n; row++ {
		copy(grid[row][:n], masses[row*n:(row+1)*n])
	}
	// offsets past the midpoint wrap to negative separations
	offset := func(i int) int {
		if i < n {
			return i
		}
		return i - size
	}
	for i := 0; i < size; i++ {
		di := offset(i)
		if di <= -n {
			continue
		}
		for j := 0; j < size; j++ {
			dj := offset(j)
			if dj <= -n || (di == 0 && dj == 0) {
				continue
			}
			ry := float64(di) * l.dy
			rx := float64(dj) * l.dx
			kernel[i][j] = -f.G / math.Sqrt(rx*rx+ry*ry)
		}
	}

	gf := fft.FFT2Real(grid)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kf := fft.FFT2Real(kernel)
	for i := range gf {
		for j := range gf[i] {
			gf[i][j] *= kf[i][j]
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conv := fft.IFFT2(gf)

	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			phi[row*n+col] = real(conv[row][col])
		}
	}
	return phi, nil
}
