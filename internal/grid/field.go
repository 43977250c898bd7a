package grid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Extent is an axis-aligned bounding box in unscaled units.
type Extent struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Field is a row-major 2D scalar field. Row 0 is the lowest y.
type Field struct {
	Rows, Cols int
	Data       []float64
	Extent     Extent
}

// NewField builds a field, checking that data has rows*cols entries.
func NewField(rows, cols int, data []float64, ext Extent) (*Field, error) {
	if rows <= 0 || cols <= 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrShapeMismatch, len(data), rows, cols)
	}
	return &Field{Rows: rows, Cols: cols, Data: data, Extent: ext}, nil
}

func (f *Field) At(row, col int) float64 {
	return f.Data[row*f.Cols+col]
}

// Row returns a view of one row.
func (f *Field) Row(row int) []float64 {
	return f.Data[row*f.Cols : (row+1)*f.Cols]
}

func (f *Field) Min() float64 { return floats.Min(f.Data) }
func (f *Field) Max() float64 { return floats.Max(f.Data) }

// Sum returns the sum over all cells.
func (f *Field) Sum() float64 { return floats.Sum(f.Data) }

// CellCenter returns the unscaled coordinates of a cell centre.
func (f *Field) CellCenter(row, col int) (x, y float64) {
	dx := (f.Extent.XMax - f.Extent.XMin) / float64(f.Cols)
	dy := (f.Extent.YMax - f.Extent.YMin) / float64(f.Rows)
	return f.Extent.XMin + (float64(col)+0.5)*dx, f.Extent.YMin + (float64(row)+0.5)*dy
}
