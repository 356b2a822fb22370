// Package discriminative wraps fitted statistical models behind the per-pixel
// classifier contract used by the cleaner.
//
// A Model only has to answer P(class 0) for a feature vector. The Adapter
// extracts that vector with a features.Extractor, converts the answer to
// P(letter) according to the configured class convention, and applies the
// decision threshold.
package discriminative

import (
	"fmt"
	"strings"

	"github.com/ironsheep/letter-denoise/internal/features"
	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// Model is a fitted binary classifier.
type Model interface {
	// PredictProba returns the probability of class 0 for one feature vector.
	PredictProba(features []float64) (float64, error)
}

// widthReporter is implemented by models that know their input width.
type widthReporter interface {
	Width() int
}

// Convention says which model class stands for "letter".
type Convention int

const (
	// LetterIsClass1 treats class 1 as letter, matching sample files where
	// target 1 = letter. This is the default.
	LetterIsClass1 Convention = iota

	// LetterIsClass0 treats class 0 as letter.
	LetterIsClass0
)

// String returns "letter_is_class1" or "letter_is_class0".
func (c Convention) String() string {
	if c == LetterIsClass0 {
		return "letter_is_class0"
	}
	return "letter_is_class1"
}

// ParseConvention accepts "letter_is_class0"/"class0" and
// "letter_is_class1"/"class1" (case-insensitive).
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "letter_is_class1", "class1", "":
		return LetterIsClass1, nil
	case "letter_is_class0", "class0":
		return LetterIsClass0, nil
	}
	return 0, fmt.Errorf("unknown class convention: %s", s)
}

// Config holds the decision parameters.
type Config struct {
	// Threshold is the P(letter) at or below which a pixel is noise.
	Threshold float64

	// Convention maps model classes to letter/noise.
	Convention Convention
}

// Adapter classifies grid pixels with a fitted Model.
type Adapter struct {
	model     Model
	extractor *features.Extractor
	cfg       Config
}

// NewAdapter binds a model to an extractor. If the model reports its input
// width it must equal the extractor layout's width.
func NewAdapter(model Model, extractor *features.Extractor, cfg Config) (*Adapter, error) {
	if wr, ok := model.(widthReporter); ok && wr.Width() != extractor.Layout().Width() {
		return nil, fmt.Errorf("model expects %d features, layout %s has %d",
			wr.Width(), extractor.Layout().Name, extractor.Layout().Width())
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("threshold %.3f outside [0,1]", cfg.Threshold)
	}
	return &Adapter{model: model, extractor: extractor, cfg: cfg}, nil
}

// Margin is the extractor margin.
func (a *Adapter) Margin() int { return a.extractor.Margin() }

// Threshold returns the configured decision threshold.
func (a *Adapter) Threshold() float64 { return a.cfg.Threshold }

// ProbabilityIsLetter extracts the features of p and returns P(letter).
func (a *Adapter) ProbabilityIsLetter(g *imaging.Grid, p imaging.Pixel) (float64, error) {
	v, err := a.extractor.Extract(g, p)
	if err != nil {
		return 0, err
	}
	p0, err := a.model.PredictProba(v)
	if err != nil {
		return 0, fmt.Errorf("pixel (%d,%d): %w", p.Row, p.Col, err)
	}
	return a.ToLetter(p0), nil
}

// ToLetter converts P(class 0) to P(letter).
func (a *Adapter) ToLetter(p0 float64) float64 {
	if a.cfg.Convention == LetterIsClass0 {
		return p0
	}
	return 1 - p0
}

// IsNoise applies the decision threshold to P(letter).
func (a *Adapter) IsNoise(probLetter float64) bool {
	return probLetter <= a.cfg.Threshold
}

// Classify returns the predicted label of p together with P(letter).
func (a *Adapter) Classify(g *imaging.Grid, p imaging.Pixel) (imaging.Label, float64, error) {
	prob, err := a.ProbabilityIsLetter(g, p)
	if err != nil {
		return imaging.Noise, 0, err
	}
	if a.IsNoise(prob) {
		return imaging.Noise, prob, nil
	}
	return imaging.Letter, prob, nil
}
