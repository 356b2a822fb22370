package labeling

import (
	"image/color"
	"io"
	"math"

	"github.com/ironsheep/letter-denoise/internal/bayes"
	"github.com/ironsheep/letter-denoise/internal/features"
	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// BayesTrainer records answers into a parameter store and saves the store
// after every answer, so an interrupted session loses nothing.
type BayesTrainer struct {
	store      *bayes.Store
	classifier *bayes.Classifier
	dir        string
}

// NewBayesTrainer trains store and persists it into dir.
func NewBayesTrainer(store *bayes.Store, dir string) *BayesTrainer {
	return &BayesTrainer{store: store, classifier: bayes.NewClassifier(store), dir: dir}
}

// Margin is the store radius.
func (t *BayesTrainer) Margin() int { return t.store.Radius() }

// BoxColor shows the current posterior: red for letter, blue for noise.
func (t *BayesTrainer) BoxColor(g *imaging.Grid, p imaging.Pixel) color.Color {
	prob, err := t.classifier.ProbabilityIsLetter(g, p)
	if err != nil {
		prob = math.NaN()
	}
	return imaging.PosteriorColor(prob)
}

// Record adds the neighborhood of p to the store and saves it.
func (t *BayesTrainer) Record(g *imaging.Grid, p imaging.Pixel, label imaging.Label) error {
	w, err := g.Window(p, t.store.Radius())
	if err != nil {
		return err
	}
	if err := t.store.Record(w, label); err != nil {
		return err
	}
	return t.store.Save(t.dir)
}

// SampleCollector appends one feature row per answer to a sample file.
type SampleCollector struct {
	extractor *features.Extractor
	w         io.Writer
}

// NewSampleCollector writes rows in the extractor's layout to w. The caller
// writes the header.
func NewSampleCollector(extractor *features.Extractor, w io.Writer) *SampleCollector {
	return &SampleCollector{extractor: extractor, w: w}
}

// Margin is the extractor margin.
func (c *SampleCollector) Margin() int { return c.extractor.Margin() }

// BoxColor is always imaging.SampleBoxColor.
func (c *SampleCollector) BoxColor(*imaging.Grid, imaging.Pixel) color.Color {
	return imaging.SampleBoxColor
}

// Record extracts the features of p and writes the labeled row.
func (c *SampleCollector) Record(g *imaging.Grid, p imaging.Pixel, label imaging.Label) error {
	v, err := c.extractor.Extract(g, p)
	if err != nil {
		return err
	}
	return features.WriteSample(c.w, c.extractor.Layout(), features.Sample{Features: v, Label: label})
}
