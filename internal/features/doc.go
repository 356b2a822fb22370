// Package features extracts geometric feature vectors for ink pixels.
//
// The extractor characterises the stroke a pixel sits on by casting rays in
// eight directions across a binarized grid. Every measurement is a pure
// function of (grid, pixel); nothing is cached between pixels.
//
// # Measurements
//
//   - Ray length: consecutive ink cells from the pixel along a direction,
//     starting one step away, stopping at the grid edge or the first
//     background cell.
//   - Ray thickness: the mean perpendicular ink extent along a ray, i.e. how
//     wide the stroke is in the direction the ray travels.
//   - Bounded ball radius: the largest Chebyshev square around the pixel that
//     contains only ink and stays inside the grid.
//   - Border and center distances against a fixed nominal extent.
//   - Local window mean: the share of ink around the pixel.
//   - White rectangle ratios: the share of background inside rectangles
//     spanned by opposing rays.
//
// # Directions
//
// Row increases downward and column rightward, so 90° points up:
//
//	135  90  45
//	   \  |  /
//	180 - o - 0
//	   /  |  \
//	225 270  315
//
// # Layouts
//
// A Layout fixes the column order of a feature vector. The same layout must
// be used to write training samples and to query a fitted model; Extract and
// the sample file codec both take the layout so the two cannot drift apart.
package features
