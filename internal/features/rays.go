package features

import (
	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// Ray holds both measurements for one direction.
type Ray struct {
	Direction Direction `json:"-"`
	Degrees   int       `json:"degrees"`
	Length    int       `json:"length"`
	Thickness float64   `json:"thickness"`
}

// Product returns Length×Thickness, the per-direction stroke feature.
func (r Ray) Product() float64 {
	return float64(r.Length) * r.Thickness
}

// RayLength counts consecutive ink cells from p along d, starting one step
// away. It returns 0 when the adjacent cell is outside the grid or background.
func RayLength(g *imaging.Grid, p imaging.Pixel, d Direction) int {
	dr, dc := d.Step()
	n := 0
	for r, c := p.Row+dr, p.Col+dc; g.IsInk(r, c); r, c = r+dr, c+dc {
		n++
	}
	return n
}

// RayThickness measures the stroke width across the ray cast from p along d.
//
// For each of the RayLength+1 positions on the ray (p included) the ink runs
// on both sides perpendicular to d are summed; the result is the mean of those
// sums. A ray of length 0 has thickness 0.
func RayThickness(g *imaging.Grid, p imaging.Pixel, d Direction) float64 {
	length := RayLength(g, p, d)
	if length == 0 {
		return 0
	}
	perp := d.Perpendicular()
	back := perp.Opposite()
	dr, dc := d.Step()

	total := 0
	for i := 0; i <= length; i++ {
		pos := imaging.Pixel{Row: p.Row + i*dr, Col: p.Col + i*dc}
		total += RayLength(g, pos, perp) + RayLength(g, pos, back)
	}
	return float64(total) / float64(length+1)
}

// Rays measures all eight directions in Directions order.
func Rays(g *imaging.Grid, p imaging.Pixel) [8]Ray {
	var out [8]Ray
	for i, d := range Directions {
		out[i] = Ray{
			Direction: d,
			Degrees:   d.Degrees(),
			Length:    RayLength(g, p, d),
			Thickness: RayThickness(g, p, d),
		}
	}
	return out
}

// BoundedBallRadius returns the largest r >= 0 such that the square of
// half-width r centered on p holds no background cell and lies inside the
// grid. Radii are grown from 1; the first radius that leaves the grid or
// touches background ends the search.
func BoundedBallRadius(g *imaging.Grid, p imaging.Pixel) int {
	if !g.IsInk(p.Row, p.Col) {
		return 0
	}
	r := 1
	for g.InBounds(p.Row-r, p.Col-r) && g.InBounds(p.Row+r, p.Col+r) {
		if ringHasBackground(g, p, r) {
			break
		}
		r++
	}
	return r - 1
}

// ringHasBackground checks the cells at Chebyshev distance exactly r.
// Inner rings were checked by earlier iterations.
func ringHasBackground(g *imaging.Grid, p imaging.Pixel, r int) bool {
	top, bottom := p.Row-r, p.Row+r
	left, right := p.Col-r, p.Col+r
	for c := left; c <= right; c++ {
		if g.At(top, c) != imaging.Ink || g.At(bottom, c) != imaging.Ink {
			return true
		}
	}
	for row := top + 1; row < bottom; row++ {
		if g.At(row, left) != imaging.Ink || g.At(row, right) != imaging.Ink {
			return true
		}
	}
	return false
}
