package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	noiseColor  = colorful.Color{R: 0, G: 0, B: 1}
	letterColor = colorful.Color{R: 1, G: 0, B: 0}
)

// SampleBoxColor is the check box colour used when no posterior is available.
var SampleBoxColor = color.NRGBA{R: 255, A: 255}

// PosteriorColor maps P(letter) onto a blue (noise) to red (letter) ramp,
// blended in CIE L*a*b* so mid values stay readable on a white canvas.
// NaN yields SampleBoxColor.
func PosteriorColor(probLetter float64) color.NRGBA {
	if math.IsNaN(probLetter) {
		return SampleBoxColor
	}
	t := math.Max(0, math.Min(1, probLetter))
	r, g, b := noiseColor.BlendLab(letterColor, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// RenderCheckBox returns a copy of src with a filled square of half-width half
// centered on p, painted in boxColor, and the center pixel itself painted
// black so the labeler can see exactly which pixel is being asked about.
// The square is clipped to the image bounds.
func RenderCheckBox(src image.Image, p Pixel, half int, boxColor color.Color) *image.NRGBA {
	dst := imaging.Clone(src)
	b := dst.Bounds()
	box := image.Rect(p.Col-half, p.Row-half, p.Col+half+1, p.Row+half+1).Intersect(b)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			dst.Set(x, y, boxColor)
		}
	}
	if p.Point().In(b) {
		dst.Set(p.Col, p.Row, color.Black)
	}
	return dst
}

// Zoom scales img by an integer factor with nearest-neighbor sampling so
// individual pixels stay crisp.
func Zoom(img image.Image, factor int) *image.NRGBA {
	if factor <= 1 {
		return imaging.Clone(img)
	}
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.NearestNeighbor)
}

// CropAround extracts the square of half-width half around p, clipped to the
// image, and zooms it by factor.
func CropAround(img image.Image, p Pixel, half, factor int) (*image.NRGBA, error) {
	b := img.Bounds()
	rect := image.Rect(p.Col-half, p.Row-half, p.Col+half+1, p.Row+half+1).Intersect(b)
	if rect.Empty() {
		return nil, fmt.Errorf("crop around (%d,%d): %w", p.Row, p.Col, ErrOutOfBounds)
	}
	return Zoom(imaging.Crop(img, rect), factor), nil
}

// SavePreview writes a preview image; the encoding follows the extension.
func SavePreview(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save preview: %w", err)
	}
	return nil
}

// EncodePNGBase64 encodes img as PNG and returns it base64-encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
