// Package labeling runs interactive sessions in which a human labels random
// ink pixels as letter or noise.
//
// Each question writes a preview image with a coloured check box around the
// pixel and reads a y/n answer. What happens with the answer is up to the
// Recorder: BayesTrainer feeds the Naive-Bayes store, SampleCollector appends
// feature rows for a discriminative fit.
package labeling

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// Prompt is the question shown for every pixel.
const Prompt = "Is that pixel a part of a word? [y/n] "

// ErrNoCandidates is returned when an image has no ink pixel inside the margin.
var ErrNoCandidates = errors.New("no ink pixel inside the margin")

// Recorder consumes labeled pixels.
type Recorder interface {
	// Margin is the minimum distance from every edge of a candidate pixel.
	Margin() int

	// BoxColor returns the check box colour shown for p before the question.
	BoxColor(g *imaging.Grid, p imaging.Pixel) color.Color

	// Record stores the answer for p.
	Record(g *imaging.Grid, p imaging.Pixel, label imaging.Label) error
}

// Image is one labeling target: the binarized grid that is scored and the
// source image shown in the preview.
type Image struct {
	Path   string
	Grid   *imaging.Grid
	Source image.Image
}

// Options configures a session.
type Options struct {
	// CheckBox is the half-width of the preview square.
	CheckBox int

	// PreviewPath is where the preview image is written before each question.
	PreviewPath string

	// Seed seeds pixel selection; 0 picks a seed from the clock.
	Seed int64
}

// Session asks questions on in/out.
type Session struct {
	opts   Options
	in     *bufio.Reader
	out    io.Writer
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewSession creates a session reading answers from in and writing prompts
// to out.
func NewSession(in io.Reader, out io.Writer, opts Options, logger zerolog.Logger) *Session {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Session{
		opts:   opts,
		in:     bufio.NewReader(in),
		out:    out,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// PickPixel draws a uniformly random ink pixel at least margin cells from
// every edge.
func (s *Session) PickPixel(g *imaging.Grid, margin int) (imaging.Pixel, error) {
	candidates := g.InkPixels(margin)
	if len(candidates) == 0 {
		return imaging.Pixel{}, ErrNoCandidates
	}
	return candidates[s.rng.Intn(len(candidates))], nil
}

// Ask prints Prompt and reads one answer. "y" or an empty line is Letter,
// anything else is Noise. Returns io.EOF when input is exhausted.
func (s *Session) Ask() (imaging.Label, error) {
	if _, err := io.WriteString(s.out, Prompt); err != nil {
		return imaging.Noise, err
	}
	line, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return imaging.Noise, err
	}
	return ParseAnswer(line), nil
}

// ParseAnswer maps a typed answer to a label.
func ParseAnswer(answer string) imaging.Label {
	switch strings.TrimSpace(answer) {
	case "y", "":
		return imaging.Letter
	}
	return imaging.Noise
}

// Label runs one question on img and hands the answer to rec.
func (s *Session) Label(img Image, rec Recorder) (imaging.Pixel, imaging.Label, error) {
	p, err := s.PickPixel(img.Grid, rec.Margin())
	if err != nil {
		return p, imaging.Noise, fmt.Errorf("%s: %w", img.Path, err)
	}

	if s.opts.PreviewPath != "" {
		preview := imaging.RenderCheckBox(img.Source, p, s.opts.CheckBox, rec.BoxColor(img.Grid, p))
		if err := imaging.SavePreview(preview, s.opts.PreviewPath); err != nil {
			return p, imaging.Noise, err
		}
	}

	label, err := s.Ask()
	if err != nil {
		return p, imaging.Noise, err
	}
	if err := rec.Record(img.Grid, p, label); err != nil {
		return p, label, fmt.Errorf("failed to record label: %w", err)
	}
	s.logger.Debug().
		Str("image", img.Path).
		Int("row", p.Row).
		Int("col", p.Col).
		Stringer("label", label).
		Msg("pixel labeled")
	return p, label, nil
}

// Run asks one question per image per iteration and returns how many labels
// were recorded. Images without candidates are skipped with a warning. The
// session ends early on ctx cancellation or end of input; end of input is
// not an error.
func (s *Session) Run(ctx context.Context, images []Image, iterations int, rec Recorder) (int, error) {
	recorded := 0
	for it := 0; it < iterations; it++ {
		for _, img := range images {
			if err := ctx.Err(); err != nil {
				return recorded, err
			}
			_, _, err := s.Label(img, rec)
			switch {
			case errors.Is(err, ErrNoCandidates):
				s.logger.Warn().Str("image", img.Path).Msg("skipping image without candidate pixels")
				continue
			case errors.Is(err, io.EOF):
				return recorded, nil
			case err != nil:
				return recorded, err
			}
			recorded++
		}
		s.logger.Info().Int("iteration", it+1).Int("recorded", recorded).Msg("iteration complete")
	}
	return recorded, nil
}
