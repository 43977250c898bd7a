package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/galpot/internal/grid"
)

// FieldSVG converts a field to an SVG heat map, one rect per cell of size
// cell pixels. The highest y row is drawn at the top.
func FieldSVG(f *grid.Field, cell float64) string {
	if f == nil || len(f.Data) == 0 {
		return ""
	}

	width := float64(f.Cols) * cell
	height := float64(f.Rows) * cell
	lo, hi := f.Min(), f.Max()

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" shape-rendering="crispEdges">
`, width, height, width, height))

	for row := 0; row < f.Rows; row++ {
		y := float64(f.Rows-1-row) * cell
		for col := 0; col < f.Cols; col++ {
			x := float64(col) * cell
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, x, y, cell, cell, Shade(f.At(row, col), lo, hi).Hex()))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ProfileSVG draws the normalized total profile as a polyline on a
// log-density axis.
func ProfileSVG(radii, total []float64, width, height int, strokeColor string) string {
	if len(radii) < 2 || len(radii) != len(total) {
		return ""
	}

	minX, maxX := radii[0], radii[0]
	minY, maxY := 0.0, 0.0
	first := true
	for i, r := range radii {
		if r < minX {
			minX = r
		}
		if r > maxX {
			maxX = r
		}
		if total[i] <= 0 {
			continue
		}
		ly := math.Log10(total[i])
		if first || ly < minY {
			minY = ly
		}
		if first || ly > maxY {
			maxY = ly
		}
		first = false
	}
	if first {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, strokeColor))

	cmd := "M"
	for i, r := range radii {
		if total[i] <= 0 {
			continue
		}
		x := (r - minX) / rangeX * float64(width)
		y := float64(height) - (math.Log10(total[i])-minY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f ", cmd, x, y))
		cmd = "L"
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
