package features

import (
	"fmt"
	"math"

	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// Extent is the nominal image size used by position features.
type Extent struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

// NominalExtent is the size of the images the stored models were trained on.
// Position features keep using it even when a grid has a different shape, so
// that feature values stay comparable with existing training data.
var NominalExtent = Extent{Rows: 70, Cols: 175}

// BorderDistance returns the distance from p to the nearest edge along each
// axis, measured against extent rather than the runtime grid shape.
func BorderDistance(p imaging.Pixel, extent Extent) (rowDist, colDist int) {
	return minInt(p.Row, extent.Rows-p.Row), minInt(p.Col, extent.Cols-p.Col)
}

// CenterDistance returns the Euclidean distance from p to the center of extent.
func CenterDistance(p imaging.Pixel, extent Extent) float64 {
	dr := float64(p.Row) - float64(extent.Rows)/2
	dc := float64(p.Col) - float64(extent.Cols)/2
	return math.Hypot(dr, dc)
}

// LocalWindowMean returns the share of ink cells in the square of half-width
// halfWidth around p, excluding p itself.
//
// Returns imaging.ErrOutOfBounds if the square leaves the grid.
func LocalWindowMean(g *imaging.Grid, p imaging.Pixel, halfWidth int) (float64, error) {
	if halfWidth < 1 {
		return 0, fmt.Errorf("window half-width must be at least 1, got %d", halfWidth)
	}
	w, err := g.Window(p, halfWidth)
	if err != nil {
		return 0, err
	}
	center := len(w.Cells) / 2
	ink := 0
	for i, c := range w.Cells {
		if i != center && c == imaging.Ink {
			ink++
		}
	}
	return float64(ink) / float64(len(w.Cells)-1), nil
}

// WhiteRatios returns the background share of three rectangles spanned by
// opposing rays from p:
//
//   - [0]: rows p-d90..p+d270, cols p-d180..p+d0 (the axis-aligned cross)
//   - [1]: rows ±d225, cols ±d45 (the anti-diagonal)
//   - [2]: rows ±d315, cols ±d135 (the main diagonal)
//
// Diagonal rectangles are symmetric about p and are clipped to the grid.
func WhiteRatios(g *imaging.Grid, p imaging.Pixel) [3]float64 {
	return [3]float64{
		whiteRatio(g,
			p.Row-RayLength(g, p, D90), p.Row+RayLength(g, p, D270),
			p.Col-RayLength(g, p, D180), p.Col+RayLength(g, p, D0)),
		whiteRatio(g,
			p.Row-RayLength(g, p, D225), p.Row+RayLength(g, p, D225),
			p.Col-RayLength(g, p, D45), p.Col+RayLength(g, p, D45)),
		whiteRatio(g,
			p.Row-RayLength(g, p, D315), p.Row+RayLength(g, p, D315),
			p.Col-RayLength(g, p, D135), p.Col+RayLength(g, p, D135)),
	}
}

// whiteRatio counts background cells in the inclusive rectangle
// [top..bottom]×[left..right] after clipping it to the grid.
func whiteRatio(g *imaging.Grid, top, bottom, left, right int) float64 {
	top, left = maxInt(top, 0), maxInt(left, 0)
	bottom, right = minInt(bottom, g.Rows()-1), minInt(right, g.Cols()-1)
	if top > bottom || left > right {
		return 0
	}
	white := 0
	for r := top; r <= bottom; r++ {
		for c := left; c <= right; c++ {
			if g.At(r, c) == imaging.Background {
				white++
			}
		}
	}
	return float64(white) / float64((bottom-top+1)*(right-left+1))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
