// Package imaging provides the pixel grid and the image plumbing for letter denoising.
//
// This package turns decoded raster images into two-level grids (ink and
// background), extracts square neighborhoods around pixels, renders the
// labeling preview and writes cleaned grids back to disk. All classification
// packages consume the Grid type defined here.
//
// # Coordinate System
//
// Grid coordinates are (Row, Col), 0-based:
//   - Row: vertical position (0 = topmost row), increases downward
//   - Col: horizontal position (0 = leftmost column), increases rightward
//
// Note that image.Image uses (X, Y); a Pixel{Row: r, Col: c} maps to image
// point (c, r).
//
// # Cell Values
//
// Cells carry the source convention values: Ink is 0 and Background is 255, so
// a Grid converts to an *image.Gray without any remapping.
//
// # Thread Safety
//
// A Grid is not synchronized. Classification passes treat the input grid as
// read-only and write into a Clone, so any number of goroutines may read the
// same grid concurrently. The ImageCache type is safe for concurrent use.
//
// # Error Handling
//
// Window returns ErrOutOfBounds when the requested neighborhood leaves the
// grid. Loader functions wrap file and decoding errors with context.
package imaging
