package potential

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultTheta is the opening angle of the default configuration.
const DefaultTheta = 0.5

// BarnesHut approximates the pairwise sum with a quadtree: a tile whose
// size-to-distance ratio is below Theta is replaced by its total mass at
// its centre of mass. Theta = 0 evaluates every pair.
type BarnesHut struct {
	G     float64
	Theta float64
}

func (b *BarnesHut) Name() string { return MethodBarnesHut }

type body struct {
	pos  r2.Vec
	mass float64
}

func (p *body) Coord2() r2.Vec { return p.pos }
func (p *body) Mass() float64  { return p.mass }

// monopole carries -m2/|v| in the X component of the returned vector so the
// tree walk accumulates potential instead of force. A leaf tile's centre is
// not bit-exact with its particle, so leaf separations use the particle
// coordinates; a target coincident with a source gets nothing from it.
func monopole(p1, p2 barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
	if p2 != nil {
		v = r2.Sub(p2.Coord2(), p1.Coord2())
	}
	r := r2.Norm(v)
	if r == 0 || m2 == 0 {
		return r2.Vec{}
	}
	return r2.Vec{X: -m2 / r}
}

func (b *BarnesHut) Potential(ctx context.Context, masses []float64, sources, targets []r2.Vec) ([]float64, error) {
	if err := checkDims(masses, sources); err != nil {
		return nil, err
	}
	if b.Theta < 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidTheta, b.Theta)
	}
	phi := make([]float64, len(targets))
	if len(sources) == 0 {
		return phi, nil
	}

	particles := make([]barneshut.Particle2, len(sources))
	for i, s := range sources {
		particles[i] = &body{pos: s, mass: masses[i]}
	}
	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		return nil, fmt.Errorf("potential: building quadtree: %w", err)
	}

	for i, t := range targets {
		if i%minChunk == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		target := &body{pos: t}
		phi[i] = b.G * plane.ForceOn(target, b.Theta, monopole).X
	}
	return phi, nil
}
