package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestBinarize_Threshold(t *testing.T) {
	tests := []struct {
		value uint8
		want  Cell
	}{
		{0, Ink},
		{100, Ink},
		{127, Ink},
		{128, Background},
		{255, Background},
	}

	for _, tt := range tests {
		gray := image.NewGray(image.Rect(0, 0, 1, 1))
		gray.SetGray(0, 0, color.Gray{Y: tt.value})
		g := Binarize(gray)
		if got := g.At(0, 0); got != tt.want {
			t.Errorf("value %d: got %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestBinarize_ShapeAndOffsetBounds(t *testing.T) {
	gray := image.NewGray(image.Rect(10, 20, 14, 23))
	for y := 20; y < 23; y++ {
		for x := 10; x < 14; x++ {
			gray.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	gray.SetGray(13, 22, color.Gray{Y: 0})

	g := Binarize(gray)
	if g.Rows() != 3 || g.Cols() != 4 {
		t.Fatalf("shape: got %dx%d, want 3x4", g.Rows(), g.Cols())
	}
	if !g.IsInk(2, 3) || g.InkCount() != 1 {
		t.Errorf("expected exactly (2,3) to be ink, got %d ink cells", g.InkCount())
	}
}

func TestFromImage_Color(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA{0, 0, 0, 255})
	img.Set(1, 0, color.RGBA{255, 255, 255, 255})
	img.Set(2, 0, color.RGBA{20, 30, 10, 255})

	g := FromImage(img, 0)
	if !g.IsInk(0, 0) || g.IsInk(0, 1) || !g.IsInk(0, 2) {
		t.Errorf("unexpected binarization: %v %v %v", g.At(0, 0), g.At(0, 1), g.At(0, 2))
	}
}

func TestFromImage_LuminanceWeights(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want Cell
	}{
		// 0.587*217 rounds to 127; equal weights of 0.6 would give 130.
		{"green near midpoint", color.NRGBA{0, 217, 0, 255}, Ink},
		{"gray 127", color.NRGBA{127, 127, 127, 255}, Ink},
		{"gray 128", color.NRGBA{128, 128, 128, 255}, Background},
		// 0.114*255 rounds to 29.
		{"pure blue", color.NRGBA{0, 0, 255, 255}, Ink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
			img.SetNRGBA(0, 0, tt.c)
			if got := FromImage(img, 0).At(0, 0); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromImage_BlurRemovesSpeck(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 9, 9))
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			img.Set(x, y, color.White)
		}
	}
	img.Set(4, 4, color.Black)

	if g := FromImage(img, 0); !g.IsInk(4, 4) {
		t.Fatal("unblurred speck should be ink")
	}
	if g := FromImage(img, 2); g.InkCount() != 0 {
		t.Errorf("blurred speck should vanish, got %d ink cells", g.InkCount())
	}
}
