package potential

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// minChunk is the smallest number of targets handed to one worker.
const minChunk = 64

// Direct is the exact pairwise sum. With Workers > 1 the targets are split
// into contiguous chunks; each target is still summed in source order, so
// the output is bit-identical to the serial evaluation.
type Direct struct {
	G       float64
	Workers int
}

func (d *Direct) Name() string { return MethodDirect }

func (d *Direct) Potential(ctx context.Context, masses []float64, sources, targets []r2.Vec) ([]float64, error) {
	if err := checkDims(masses, sources); err != nil {
		return nil, err
	}

	phi := make([]float64, len(targets))
	err := parallelFor(ctx, len(targets), d.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			phi[i] = d.at(masses, sources, targets[i])
		}
	})
	if err != nil {
		return nil, err
	}
	return phi, nil
}

func (d *Direct) at(masses []float64, sources []r2.Vec, target r2.Vec) float64 {
	sum := 0.0
	for j, s := range sources {
		dx := s.X - target.X
		dy := s.Y - target.Y
		r := math.Sqrt(dx*dx + dy*dy)
		if r == 0 {
			r = math.Inf(1)
		}
		sum += -d.G * masses[j] / r
	}
	return sum
}

// parallelFor runs fn over [0, n) in at most workers contiguous chunks.
// Cancellation is observed before each chunk starts.
func parallelFor(ctx context.Context, n, workers int, fn func(start, end int)) error {
	if workers <= 1 || n <= minChunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(0, n)
		return nil
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	chunkSize := (n + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		s, e := start, end
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(s, e)
			return nil
		})
	}
	return g.Wait()
}
