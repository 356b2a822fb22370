package discriminative

import (
	"errors"
	"math"
	"testing"

	"github.com/ironsheep/letter-denoise/internal/features"
	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// constModel answers the same P(class 0) for every input.
type constModel struct {
	p0  float64
	err error
}

func (m constModel) PredictProba([]float64) (float64, error) { return m.p0, m.err }

func newTestAdapter(t *testing.T, m Model, cfg Config) *Adapter {
	t.Helper()
	a, err := NewAdapter(m, features.NewExtractor(features.StrokeLayout, features.NominalExtent, 2), cfg)
	if err != nil {
		t.Fatalf("NewAdapter failed: %v", err)
	}
	return a
}

func TestParseConvention(t *testing.T) {
	tests := []struct {
		in      string
		want    Convention
		wantErr bool
	}{
		{"", LetterIsClass1, false},
		{"class1", LetterIsClass1, false},
		{"Letter_Is_Class0", LetterIsClass0, false},
		{"class0", LetterIsClass0, false},
		{"class2", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseConvention(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseConvention(%q): err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseConvention(%q): got %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestAdapter_Convention(t *testing.T) {
	g := imaging.NewGrid(9, 9, imaging.Ink)
	p := imaging.Pixel{Row: 4, Col: 4}

	class1 := newTestAdapter(t, constModel{p0: 0.25}, Config{Threshold: 0.5})
	if got, _ := class1.ProbabilityIsLetter(g, p); got != 0.75 {
		t.Errorf("letter_is_class1: got %v, want 0.75", got)
	}

	class0 := newTestAdapter(t, constModel{p0: 0.25}, Config{Threshold: 0.5, Convention: LetterIsClass0})
	if got, _ := class0.ProbabilityIsLetter(g, p); got != 0.25 {
		t.Errorf("letter_is_class0: got %v, want 0.25", got)
	}
}

func TestAdapter_ThresholdIsInclusive(t *testing.T) {
	a := newTestAdapter(t, constModel{}, Config{Threshold: 0.5})
	if !a.IsNoise(0.5) {
		t.Error("probability equal to the threshold must be noise")
	}
	if a.IsNoise(0.5000001) {
		t.Error("probability above the threshold must be letter")
	}
	if a.Threshold() != 0.5 || a.Margin() != 2 {
		t.Errorf("Threshold/Margin: got %v/%d", a.Threshold(), a.Margin())
	}
}

func TestAdapter_Classify(t *testing.T) {
	g := imaging.NewGrid(9, 9, imaging.Ink)
	p := imaging.Pixel{Row: 4, Col: 4}

	label, prob, err := newTestAdapter(t, constModel{p0: 0.9}, Config{Threshold: 0.5}).Classify(g, p)
	if err != nil || label != imaging.Noise || math.Abs(prob-0.1) > 1e-12 {
		t.Errorf("got %v %v %v, want noise", label, prob, err)
	}
	label, _, err = newTestAdapter(t, constModel{p0: 0.1}, Config{Threshold: 0.5}).Classify(g, p)
	if err != nil || label != imaging.Letter {
		t.Errorf("got %v %v, want letter", label, err)
	}

	if _, _, err := newTestAdapter(t, constModel{}, Config{}).Classify(g, imaging.Pixel{Row: 1, Col: 1}); !errors.Is(err, imaging.ErrOutOfBounds) {
		t.Errorf("got %v, want ErrOutOfBounds", err)
	}

	modelErr := errors.New("boom")
	if _, _, err := newTestAdapter(t, constModel{err: modelErr}, Config{}).Classify(g, p); !errors.Is(err, modelErr) {
		t.Errorf("got %v, want the model error", err)
	}
}

func TestNewAdapter_Rejects(t *testing.T) {
	e := features.NewExtractor(features.StrokeLayout, features.NominalExtent, 2)

	narrow := &LogisticRegression{Weights: make([]float64, 3), Mean: make([]float64, 3), Scale: []float64{1, 1, 1}}
	if _, err := NewAdapter(narrow, e, Config{Threshold: 0.5}); err == nil {
		t.Error("width mismatch should fail")
	}
	if _, err := NewAdapter(constModel{}, e, Config{Threshold: 1.5}); err == nil {
		t.Error("threshold above 1 should fail")
	}
}
