package viewer

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DefaultColumns is the grid width when no shape is given
const DefaultColumns = 5

// Shape is a grid size in cells
type Shape struct {
	Rows int
	Cols int
}

// Cells returns how many images the grid holds
func (s Shape) Cells() int {
	return s.Rows * s.Cols
}

// GridShape returns shape when both dimensions are set. Otherwise rows are
// n/cols+1, which adds an empty row when n is a multiple of cols: five
// images give [2,5].
func GridShape(n int, shape Shape) Shape {
	if shape.Rows > 0 && shape.Cols > 0 {
		return shape
	}
	cols := shape.Cols
	if cols <= 0 {
		cols = DefaultColumns
	}
	return Shape{Rows: n/cols + 1, Cols: cols}
}

// RenderGrid lays images out row-major in cell×cell tiles. Nil images take
// no cell; images past the last cell are dropped.
func RenderGrid(images []image.Image, shape Shape, cell int) *image.NRGBA {
	canvas := imaging.New(shape.Cols*cell, shape.Rows*cell, color.White)

	pos := 0
	for _, img := range images {
		if img == nil {
			continue
		}
		if pos >= shape.Cells() {
			break
		}
		tile := imaging.Fill(img, cell, cell, imaging.Center, imaging.Lanczos)
		row, col := pos/shape.Cols, pos%shape.Cols
		canvas = imaging.Paste(canvas, tile, image.Pt(col*cell, row*cell))
		pos++
	}

	return canvas
}
