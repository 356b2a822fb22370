// Package models opens the configured pixel classifiers by name.
package models

import (
	"fmt"

	"github.com/ironsheep/letter-denoise/internal/bayes"
	"github.com/ironsheep/letter-denoise/internal/cleaner"
	"github.com/ironsheep/letter-denoise/internal/config"
	"github.com/ironsheep/letter-denoise/internal/discriminative"
)

// Classifier kinds.
const (
	Bayes    = "bayes"
	Logistic = "logistic"
)

// Kinds lists the accepted classifier names.
var Kinds = []string{Bayes, Logistic}

// Selection is an opened classifier together with its decision threshold.
type Selection struct {
	Kind       string
	Classifier cleaner.Classifier
	Threshold  float64
}

// Open builds the classifier named kind ("" means bayes) from cfg.
//
// The Bayesian store is read from cfg.Bayes.ParametersDir; a directory
// without parameters yields an untrained store. The logistic model is read
// from cfg.Discriminative.ModelPath and must exist.
func Open(cfg *config.Config, kind string) (*Selection, error) {
	switch kind {
	case "", Bayes:
		store, err := bayes.Open(cfg.Bayes.ParametersDir, cfg.Bayes.Radius)
		if err != nil {
			return nil, fmt.Errorf("failed to open bayes parameters: %w", err)
		}
		return &Selection{Kind: Bayes, Classifier: bayes.NewClassifier(store), Threshold: cfg.Bayes.Threshold}, nil

	case Logistic:
		model, err := discriminative.LoadModel(cfg.Discriminative.ModelPath)
		if err != nil {
			return nil, err
		}
		extractor, err := cfg.Extractor()
		if err != nil {
			return nil, err
		}
		if model.Layout != "" && model.Layout != extractor.Layout().Name {
			return nil, fmt.Errorf("model was fitted on layout %s, config uses %s", model.Layout, extractor.Layout().Name)
		}
		acfg, err := cfg.AdapterConfig()
		if err != nil {
			return nil, err
		}
		adapter, err := discriminative.NewAdapter(model, extractor, acfg)
		if err != nil {
			return nil, err
		}
		return &Selection{Kind: Logistic, Classifier: adapter, Threshold: acfg.Threshold}, nil
	}
	return nil, fmt.Errorf("unknown classifier %q (want one of %v)", kind, Kinds)
}
