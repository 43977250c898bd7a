package galaxy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Params describes the two density components. Radii are in meters.
type Params struct {
	SersicIndex  float64
	BulgeRadius  float64
	BulgeDensity float64
	DiskRadius   float64
	DiskDensity  float64
}

// DefaultParams returns the reference Milky-Way-like model: n = 2.2,
// Re = 1 kpc with unit central weight, Rd = 5 kpc with weight 0.1.
func DefaultParams() Params {
	return Params{
		SersicIndex:  2.2,
		BulgeRadius:  1 * Kiloparsec,
		BulgeDensity: 1,
		DiskRadius:   5 * Kiloparsec,
		DiskDensity:  0.1,
	}
}

// Profile evaluates the bulge, disk and total density over batches of radii.
// A Profile is immutable and safe for concurrent use.
type Profile struct {
	params Params
	nu     float64
}

func NewProfile(p Params) (*Profile, error) {
	if p.SersicIndex <= 0 || math.IsNaN(p.SersicIndex) {
		return nil, fmt.Errorf("%w: sersic index %g", ErrInvalidProfile, p.SersicIndex)
	}
	if p.BulgeRadius <= 0 {
		return nil, fmt.Errorf("%w: bulge radius %g", ErrInvalidProfile, p.BulgeRadius)
	}
	if p.DiskRadius <= 0 {
		return nil, fmt.Errorf("%w: disk radius %g", ErrInvalidProfile, p.DiskRadius)
	}
	if p.BulgeDensity < 0 || p.DiskDensity < 0 {
		return nil, fmt.Errorf("%w: negative component density", ErrInvalidProfile)
	}
	return &Profile{params: p, nu: Nu(p.SersicIndex)}, nil
}

// Nu is the Sersic exponent coefficient derived from the profile's index.
func (p *Profile) Nu() float64 { return p.nu }

// Bulge returns the Sersic component normalized to its batch maximum and
// weighted by the bulge density.
func (p *Profile) Bulge(r []float64) []float64 {
	out := make([]float64, len(r))
	invN := 1 / p.params.SersicIndex
	for i, ri := range r {
		out[i] = math.Exp(-p.nu * (math.Pow(ri/p.params.BulgeRadius, invN) - 1))
	}
	normalize(out, p.params.BulgeDensity)
	return out
}

// Disk returns the exponential component normalized to its batch maximum and
// weighted by the disk density.
func (p *Profile) Disk(r []float64) []float64 {
	out := make([]float64, len(r))
	for i, ri := range r {
		out[i] = math.Exp(-(ri / p.params.DiskRadius))
	}
	normalize(out, p.params.DiskDensity)
	return out
}

// Total is Bulge(r) + Disk(r). The sum is not re-normalized.
func (p *Profile) Total(r []float64) []float64 {
	total := p.Bulge(r)
	floats.Add(total, p.Disk(r))
	return total
}

// Curves evaluates all three components over r.
func (p *Profile) Curves(r []float64) *Curves {
	bulge := p.Bulge(r)
	disk := p.Disk(r)
	total := make([]float64, len(r))
	floats.AddTo(total, bulge, disk)

	radii := make([]float64, len(r))
	copy(radii, r)
	return &Curves{Radii: radii, Bulge: bulge, Disk: disk, Total: total}
}

// normalize divides v by its maximum and multiplies by weight, in place.
// A batch whose maximum is not positive is zeroed.
func normalize(v []float64, weight float64) {
	if len(v) == 0 {
		return
	}
	peak := floats.Max(v)
	if !(peak > 0) || math.IsInf(peak, 1) {
		for i := range v {
			v[i] = 0
		}
		return
	}
	for i := range v {
		v[i] = weight * (v[i] / peak)
	}
}

// Sample returns n linearly spaced radii from min to max inclusive.
func Sample(min, max float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{min}
	}
	r := floats.Span(make([]float64, n), min, max)
	r[n-1] = max
	return r
}
