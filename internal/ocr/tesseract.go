package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is a recognized word with its location and OCR confidence.
type Word struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this word in the image.
	Bounds Bounds `json:"bounds"`
}

// Result contains the text read from one image.
type Result struct {
	// Text is all recognized text with surrounding whitespace trimmed.
	Text string `json:"text"`

	// Words holds the individual words. May be empty if bounding box
	// extraction fails (the text is still in Text).
	Words []Word `json:"words"`
}

// Options tunes recognition.
type Options struct {
	// Language is the Tesseract language code; empty means "eng".
	Language string

	// Whitelist restricts the recognized characters when non-empty.
	Whitelist string

	// PageSegMode is the Tesseract page segmentation mode; zero means
	// gosseract.PSM_SINGLE_LINE.
	PageSegMode gosseract.PageSegMode
}

// DefaultOptions reads one line of English text.
func DefaultOptions() Options {
	return Options{Language: "eng", PageSegMode: gosseract.PSM_SINGLE_LINE}
}

// Recognize performs OCR on an in-memory image.
//
// Parameters:
//   - img: The image to read. Dark glyphs on a light background work best.
//   - opts: Language, whitelist and segmentation settings.
//
// Returns:
//   - *Result: The trimmed text and word-level boxes (RIL_WORD).
//   - error: Non-nil if the image cannot be encoded or Tesseract fails.
func Recognize(img image.Image, opts Options) (*Result, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	lang := opts.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	psm := opts.PageSegMode
	if psm == 0 {
		psm = gosseract.PSM_SINGLE_LINE
	}
	if err := client.SetPageSegMode(psm); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	result := &Result{Text: strings.TrimSpace(text), Words: []Word{}}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return result, nil
	}
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		result.Words = append(result.Words, Word{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	return result, nil
}

// RecognizeGrid reads a binarized grid, ink rendered black on white.
func RecognizeGrid(g *imaging.Grid, opts Options) (*Result, error) {
	return Recognize(g.ToImage(), opts)
}
