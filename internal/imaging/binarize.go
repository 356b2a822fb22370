package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Luminance weights matching ITU-R 601-2, as used by common imaging tools.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Midpoint is the intensity threshold between ink and background.
// Intensities strictly below it are ink; ties go to background.
const Midpoint = 255.0 / 2

// Binarize thresholds a grayscale image at Midpoint.
//
// The output grid has the image's width as column count and its height as row
// count. Binarize is a pure function and never fails.
func Binarize(gray *image.Gray) *Grid {
	b := gray.Bounds()
	g := NewGrid(b.Dy(), b.Dx(), Background)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if float64(gray.GrayAt(b.Min.X+c, b.Min.Y+r).Y) < Midpoint {
				g.cells[r*g.cols+c] = Ink
			}
		}
	}
	return g
}

// FromImage converts any decoded image to a binary grid.
//
// The image is reduced to ITU-R 601-2 luminance with bild's weighted
// grayscale effect, rounded to the nearest integer. When
// blurRadius is positive a box blur of that radius is applied first, which
// merges speckle noise into its surroundings before thresholding.
func FromImage(img image.Image, blurRadius float64) *Grid {
	if blurRadius > 0 {
		img = blur.Box(img, blurRadius)
	}
	return Binarize(toGray(effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)))
}

// toGray copies the red channel of a grayscale RGBA image.
func toGray(rgba *image.RGBA) *image.Gray {
	b := rgba.Bounds()
	gray := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			gray.Pix[y*gray.Stride+x] = rgba.Pix[y*rgba.Stride+x*4]
		}
	}
	return gray
}
