package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/galpot/internal/galaxy"
	"github.com/san-kum/galpot/internal/grid"
)

var (
	rampLow  = mustHex("#08306b")
	rampHigh = mustHex("#f7fbff")

	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ProfileASCII plots log10 of the normalized profile curves.
func ProfileASCII(c *galaxy.Curves, width, height int) string {
	if c.Len() == 0 {
		return ""
	}
	norm := c.Normalized()
	lo, _ := norm.Limits()
	floor := math.Log10(lo)

	return asciigraph.PlotMany(
		[][]float64{
			galaxy.Log10(norm.Total, floor),
			galaxy.Log10(norm.Bulge, floor),
			galaxy.Log10(norm.Disk, floor),
		},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Blue, asciigraph.Red),
		asciigraph.Caption(fmt.Sprintf("log10 density vs radius 0..%.0f kpc (total, bulge, disk)",
			norm.Radii[len(norm.Radii)-1]/galaxy.Kiloparsec)),
	)
}

// Shade maps v in [lo, hi] onto the blue ramp.
func Shade(v, lo, hi float64) colorful.Color {
	t := 0.0
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	t = math.Max(0, math.Min(1, t))
	return rampLow.BlendLab(rampHigh, t).Clamped()
}

// FieldANSI renders f as coloured cells, two characters per cell, with the
// highest y on top. Fields wider than maxCols are subsampled.
func FieldANSI(f *grid.Field, maxCols int) string {
	if f == nil || len(f.Data) == 0 {
		return ""
	}
	stride := 1
	if maxCols > 0 && f.Cols > maxCols {
		stride = (f.Cols + maxCols - 1) / maxCols
	}
	lo, hi := f.Min(), f.Max()

	var sb strings.Builder
	for row := f.Rows - 1; row >= 0; row -= stride {
		for col := 0; col < f.Cols; col += stride {
			c := Shade(f.At(row, col), lo, hi)
			sb.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render("  "))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(captionStyle.Render(fmt.Sprintf("min %.4g  max %.4g  extent [%g, %g] kpc",
		lo, hi, f.Extent.XMin, f.Extent.XMax)))
	return sb.String()
}
