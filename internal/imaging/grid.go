package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrOutOfBounds is returned when a query needs cells outside the grid.
var ErrOutOfBounds = errors.New("pixel window outside grid bounds")

// Cell is the value of one binarized pixel.
type Cell uint8

const (
	// Ink marks candidate letter-stroke material.
	Ink Cell = 0

	// Background marks blank canvas.
	Background Cell = 255
)

// String returns "ink" or "background".
func (c Cell) String() string {
	if c == Ink {
		return "ink"
	}
	return "background"
}

// Label is the ground-truth class of an ink pixel.
type Label int

const (
	// Noise is a stray mark that should be erased.
	Noise Label = 0

	// Letter is part of a character.
	Letter Label = 1
)

// String returns "letter" or "noise".
func (l Label) String() string {
	if l == Letter {
		return "letter"
	}
	return "noise"
}

// Pixel is a grid coordinate.
type Pixel struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Point converts the pixel to image space (X = Col, Y = Row).
func (p Pixel) Point() image.Point {
	return image.Point{X: p.Col, Y: p.Row}
}

// Grid is a two-level image stored row-major.
type Grid struct {
	rows  int
	cols  int
	cells []Cell
}

// NewGrid creates a rows×cols grid with every cell set to fill.
func NewGrid(rows, cols int, fill Cell) *Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	cells := make([]Cell, rows*cols)
	if fill != 0 {
		for i := range cells {
			cells[i] = fill
		}
	}
	return &Grid{rows: rows, cols: cols, cells: cells}
}

// ParseGrid builds a grid from text rows where '#' (or '*') is ink and any
// other rune is background. All rows must have the same length.
func ParseGrid(lines []string) (*Grid, error) {
	if len(lines) == 0 {
		return NewGrid(0, 0, Background), nil
	}
	cols := len(lines[0])
	g := NewGrid(len(lines), cols, Background)
	for r, line := range lines {
		if len(line) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", r, len(line), cols)
		}
		for c := 0; c < cols; c++ {
			if line[c] == '#' || line[c] == '*' {
				g.cells[r*cols+c] = Ink
			}
		}
	}
	return g, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether (row, col) lies inside the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// At returns the cell at (row, col). The coordinate must be in bounds.
func (g *Grid) At(row, col int) Cell {
	return g.cells[row*g.cols+col]
}

// IsInk reports whether (row, col) is in bounds and holds ink.
func (g *Grid) IsInk(row, col int) bool {
	return g.InBounds(row, col) && g.cells[row*g.cols+col] == Ink
}

// Set overwrites the cell at (row, col). The coordinate must be in bounds.
func (g *Grid) Set(row, col int, c Cell) {
	g.cells[row*g.cols+col] = c
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{rows: g.rows, cols: g.cols, cells: cells}
}

// Equal reports whether both grids have the same shape and cells.
func (g *Grid) Equal(o *Grid) bool {
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// InkCount returns the number of ink cells.
func (g *Grid) InkCount() int {
	n := 0
	for _, c := range g.cells {
		if c == Ink {
			n++
		}
	}
	return n
}

// InkPixels lists, in raster order, the ink pixels that are at least margin
// cells away from every edge.
func (g *Grid) InkPixels(margin int) []Pixel {
	var out []Pixel
	for r := margin; r < g.rows-margin; r++ {
		for c := margin; c < g.cols-margin; c++ {
			if g.cells[r*g.cols+c] == Ink {
				out = append(out, Pixel{Row: r, Col: c})
			}
		}
	}
	return out
}

// Window is the square neighborhood of half-width Radius around a pixel,
// stored row-major with side 2*Radius+1.
type Window struct {
	Radius int
	Cells  []Cell
}

// Side returns the window edge length.
func (w Window) Side() int { return 2*w.Radius + 1 }

// At returns the cell at offset (dr, dc) from the window center.
func (w Window) At(dr, dc int) Cell {
	side := w.Side()
	return w.Cells[(dr+w.Radius)*side+dc+w.Radius]
}

// Window copies the neighborhood of half-width radius centered at p.
//
// Returns ErrOutOfBounds if any cell of the square lies outside the grid.
func (g *Grid) Window(p Pixel, radius int) (Window, error) {
	if radius < 0 {
		return Window{}, fmt.Errorf("negative window radius %d", radius)
	}
	if !g.InBounds(p.Row-radius, p.Col-radius) || !g.InBounds(p.Row+radius, p.Col+radius) {
		return Window{}, fmt.Errorf("window of radius %d at (%d,%d) in %dx%d grid: %w",
			radius, p.Row, p.Col, g.rows, g.cols, ErrOutOfBounds)
	}
	side := 2*radius + 1
	cells := make([]Cell, 0, side*side)
	for r := p.Row - radius; r <= p.Row+radius; r++ {
		start := r*g.cols + p.Col - radius
		cells = append(cells, g.cells[start:start+side]...)
	}
	return Window{Radius: radius, Cells: cells}, nil
}

// ToImage renders the grid as a two-level grayscale image.
func (g *Grid) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.cols, g.rows))
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			img.SetGray(c, r, color.Gray{Y: uint8(g.cells[r*g.cols+c])})
		}
	}
	return img
}
