// Package render draws the profile chart and the field heat maps, both as
// image files and as terminal text.
package render

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/galpot/internal/galaxy"
	"github.com/san-kum/galpot/internal/grid"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	figureSize = 6 * vg.Inch
	figureDPI  = 150
	paletteLen = 256
)

var (
	totalColor = color.RGBA{A: 255}
	bulgeColor = color.RGBA{B: 255, A: 255}
	diskColor  = color.RGBA{R: 255, A: 255}
)

// fieldXYZ adapts a grid.Field to plotter.GridXYZ. Columns run along x,
// rows along y, with row 0 at the bottom.
type fieldXYZ struct{ f *grid.Field }

func (g fieldXYZ) Dims() (c, r int)   { return g.f.Cols, g.f.Rows }
func (g fieldXYZ) Z(c, r int) float64 { return g.f.At(r, c) }

func (g fieldXYZ) X(c int) float64 {
	x, _ := g.f.CellCenter(0, c)
	return x
}

func (g fieldXYZ) Y(r int) float64 {
	_, y := g.f.CellCenter(r, 0)
	return y
}

// ProfilePlot builds the log-scale density profile chart. Curves are
// normalized to a peak total of one before plotting.
func ProfilePlot(c *galaxy.Curves, sersicIndex float64) (*plot.Plot, error) {
	if c.Len() == 0 {
		return nil, fmt.Errorf("render: empty profile")
	}
	norm := c.Normalized()
	radii := norm.RadiiIn(galaxy.Kiloparsec)

	p := plot.New()
	p.Title.Text = "Density Distribution Profile"
	p.X.Label.Text = "Radius (kpc)"
	p.Y.Label.Text = "Density (rho/rho0)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Min, p.Y.Max = norm.Limits()
	p.Add(plotter.NewGrid())

	series := []struct {
		name   string
		values []float64
		color  color.Color
		dashed bool
	}{
		{"Disk", norm.Disk, diskColor, true},
		{fmt.Sprintf("Bulge n = %g", sersicIndex), norm.Bulge, bulgeColor, true},
		{"Total", norm.Total, totalColor, false},
	}
	for _, s := range series {
		pts := make(plotter.XYs, 0, len(radii))
		for i, r := range radii {
			// log axes cannot show non-positive values
			if s.values[i] > 0 {
				pts = append(pts, plotter.XY{X: r, Y: s.values[i]})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = s.color
		line.LineStyle.Width = vg.Points(1.5)
		if s.dashed {
			line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		}
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	return p, nil
}

// FieldPlot builds a heat map of f over its extent.
func FieldPlot(f *grid.Field, title string) (*plot.Plot, error) {
	if f == nil || len(f.Data) == 0 {
		return nil, fmt.Errorf("render: empty field")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (kpc)"
	p.Y.Label.Text = "Y (kpc)"

	hm := plotter.NewHeatMap(fieldXYZ{f}, fieldPalette())
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)
	p.X.Min, p.X.Max = f.Extent.XMin, f.Extent.XMax
	p.Y.Min, p.Y.Max = f.Extent.YMin, f.Extent.YMax
	return p, nil
}

// ramp is a palette.Palette over a fixed list of colors.
type ramp []color.Color

func (r ramp) Colors() []color.Color { return r }

// fieldPalette runs from dark blue at the minimum to near white at the
// maximum, the same ramp the terminal heat map uses.
func fieldPalette() palette.Palette {
	colors := make(ramp, paletteLen)
	for i := range colors {
		colors[i] = Shade(float64(i), 0, paletteLen-1)
	}
	return colors
}

// WritePNG draws p on a square canvas and encodes it to w.
func WritePNG(w io.Writer, p *plot.Plot) error {
	c := vgimg.NewWith(
		vgimg.UseWH(figureSize, figureSize),
		vgimg.UseDPI(figureDPI),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("render: encoding png: %w", err)
	}
	return bw.Flush()
}

// SavePNG writes p to path, creating parent directories.
func SavePNG(path string, p *plot.Plot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := WritePNG(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
