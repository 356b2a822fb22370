package discriminative

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/letter-denoise/internal/features"
	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// LogisticRegression is an L2-regularized logistic model over standardized
// features. Class 1 is "letter" when trained with Fit.
type LogisticRegression struct {
	Layout  string    `json:"layout"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// Width returns the number of input features.
func (m *LogisticRegression) Width() int { return len(m.Weights) }

// PredictProba returns P(class 0).
func (m *LogisticRegression) PredictProba(x []float64) (float64, error) {
	if len(x) != len(m.Weights) {
		return 0, fmt.Errorf("got %d features, model expects %d", len(x), len(m.Weights))
	}
	z := m.Bias + floats.Dot(m.Weights, m.standardize(x, nil))
	return 1 - sigmoid(z), nil
}

func (m *LogisticRegression) standardize(x, dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(x))
	}
	for i, v := range x {
		dst[i] = (v - m.Mean[i]) / m.Scale[i]
	}
	return dst
}

// FitOptions tunes Fit.
type FitOptions struct {
	// L2 is the ridge penalty on the weights (not the bias).
	L2 float64

	// MaxIterations bounds the BFGS major iterations; 0 means gonum's default.
	MaxIterations int
}

// DefaultFitOptions returns the options used by the fit command.
func DefaultFitOptions() FitOptions {
	return FitOptions{L2: 1e-3, MaxIterations: 500}
}

// Fit trains a logistic regression on samples (target 1 = letter) by
// minimizing the mean log-loss with BFGS.
func Fit(samples []features.Sample, layout features.Layout, opts FitOptions) (*LogisticRegression, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples to fit")
	}
	width := layout.Width()
	var letters int
	for i, s := range samples {
		if len(s.Features) != width {
			return nil, fmt.Errorf("sample %d has %d features, layout %s has %d", i, len(s.Features), layout.Name, width)
		}
		if s.Label == imaging.Letter {
			letters++
		}
	}
	if letters == 0 || letters == len(samples) {
		return nil, errors.New("samples must contain both letter and noise labels")
	}

	m := &LogisticRegression{
		Layout:  layout.Name,
		Weights: make([]float64, width),
		Mean:    make([]float64, width),
		Scale:   make([]float64, width),
	}
	col := make([]float64, len(samples))
	for j := 0; j < width; j++ {
		for i, s := range samples {
			col[i] = s.Features[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		m.Mean[j], m.Scale[j] = mean, std
	}

	xs := make([][]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = m.standardize(s.Features, nil)
		if s.Label == imaging.Letter {
			ys[i] = 1
		}
	}

	n := float64(len(samples))
	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			w, b := theta[:width], theta[width]
			loss := 0.0
			for i, x := range xs {
				z := b + floats.Dot(w, x)
				loss += log1pExp(z) - ys[i]*z
			}
			return loss/n + 0.5*opts.L2*floats.Dot(w, w)
		},
		Grad: func(grad, theta []float64) {
			w, b := theta[:width], theta[width]
			for k := range grad {
				grad[k] = 0
			}
			for i, x := range xs {
				r := sigmoid(b+floats.Dot(w, x)) - ys[i]
				floats.AddScaled(grad[:width], r, x)
				grad[width] += r
			}
			floats.Scale(1/n, grad)
			floats.AddScaled(grad[:width], opts.L2, w)
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   opts.MaxIterations,
		GradientThreshold: 1e-6,
	}
	result, err := optimize.Minimize(problem, make([]float64, width+1), settings, &optimize.BFGS{})
	// A line search stalling next to the optimum still leaves a usable point.
	if result == nil || floats.HasNaN(result.X) {
		return nil, fmt.Errorf("logistic fit failed: %w", err)
	}
	copy(m.Weights, result.X[:width])
	m.Bias = result.X[width]
	return m, nil
}

// Accuracy returns the share of samples whose label matches a 0.5 cut on
// P(class 1).
func (m *LogisticRegression) Accuracy(samples []features.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	correct := 0
	for _, s := range samples {
		p0, err := m.PredictProba(s.Features)
		if err != nil {
			continue
		}
		if (p0 < 0.5) == (s.Label == imaging.Letter) {
			correct++
		}
	}
	return float64(correct) / float64(len(samples))
}

// SaveModel writes the model as JSON.
func (m *LogisticRegression) SaveModel(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

// LoadModel reads a model written by SaveModel.
func LoadModel(path string) (*LogisticRegression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var m LogisticRegression
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if len(m.Mean) != len(m.Weights) || len(m.Scale) != len(m.Weights) {
		return nil, fmt.Errorf("model %s has inconsistent vector lengths", path)
	}
	return &m, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// log1pExp computes log(1+exp(z)) without overflow.
func log1pExp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
