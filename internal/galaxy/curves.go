package galaxy

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Curves holds one evaluation of the profile over a batch of radii.
type Curves struct {
	Radii []float64
	Bulge []float64
	Disk  []float64
	Total []float64
}

// Len returns the number of samples.
func (c *Curves) Len() int { return len(c.Radii) }

// Normalized returns a copy with all three curves divided by max(Total),
// which puts the total on a peak-of-one display scale.
func (c *Curves) Normalized() *Curves {
	out := &Curves{
		Radii: append([]float64(nil), c.Radii...),
		Bulge: append([]float64(nil), c.Bulge...),
		Disk:  append([]float64(nil), c.Disk...),
		Total: append([]float64(nil), c.Total...),
	}
	if len(c.Total) == 0 {
		return out
	}
	peak := floats.Max(c.Total)
	if !(peak > 0) {
		return out
	}
	for i := range out.Total {
		out.Bulge[i] /= peak
		out.Disk[i] /= peak
		out.Total[i] /= peak
	}
	return out
}

// Limits returns log-axis bounds bracketing the total curve with a 25%
// margin on both ends.
func (c *Curves) Limits() (lo, hi float64) {
	if len(c.Total) == 0 {
		return 0, 0
	}
	return floats.Min(c.Total) / 1.25, floats.Max(c.Total) * 1.25
}

// RadiiIn returns the radii divided by unit, e.g. Kiloparsec for plotting.
func (c *Curves) RadiiIn(unit float64) []float64 {
	out := make([]float64, len(c.Radii))
	for i, r := range c.Radii {
		out[i] = r / unit
	}
	return out
}

// Log10 returns log10 of v, with non-positive entries mapped to floor.
func Log10(v []float64, floor float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		if x > 0 {
			out[i] = math.Log10(x)
		} else {
			out[i] = floor
		}
	}
	return out
}
