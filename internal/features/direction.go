package features

import "fmt"

// Direction is one of the eight lattice directions at 45° increments.
type Direction int

// The eight directions, counter-clockwise from "right".
const (
	D0 Direction = iota
	D45
	D90
	D135
	D180
	D225
	D270
	D315
)

// Directions lists all directions in counter-clockwise order.
var Directions = [8]Direction{D0, D45, D90, D135, D180, D225, D270, D315}

// steps holds the (row, col) unit step of each direction.
var steps = [8][2]int{
	{0, 1},   // 0°
	{-1, 1},  // 45°
	{-1, 0},  // 90°
	{-1, -1}, // 135°
	{0, -1},  // 180°
	{1, -1},  // 225°
	{1, 0},   // 270°
	{1, 1},   // 315°
}

// Step returns the row and column increments of d.
func (d Direction) Step() (dRow, dCol int) {
	s := steps[d.normalize()]
	return s[0], s[1]
}

// Degrees returns the angle of d.
func (d Direction) Degrees() int {
	return int(d.normalize()) * 45
}

// Perpendicular returns d rotated by +90°.
func (d Direction) Perpendicular() Direction {
	return (d.normalize() + 2) % 8
}

// Opposite returns d rotated by 180°.
func (d Direction) Opposite() Direction {
	return (d.normalize() + 4) % 8
}

// String returns the column-style name, e.g. "d45".
func (d Direction) String() string {
	return fmt.Sprintf("d%d", d.Degrees())
}

func (d Direction) normalize() Direction {
	return ((d % 8) + 8) % 8
}
