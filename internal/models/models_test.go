package models

import (
	"path/filepath"
	"testing"

	"github.com/ironsheep/letter-denoise/internal/config"
	"github.com/ironsheep/letter-denoise/internal/discriminative"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Bayes.ParametersDir = filepath.Join(dir, "parameters")
	cfg.Discriminative.ModelPath = filepath.Join(dir, "model.json")
	return cfg
}

func TestOpen_BayesWithoutParameters(t *testing.T) {
	cfg := testConfig(t)
	for _, kind := range []string{"", Bayes} {
		sel, err := Open(cfg, kind)
		if err != nil {
			t.Fatalf("Open(%q) failed: %v", kind, err)
		}
		if sel.Kind != Bayes || sel.Threshold != cfg.Bayes.Threshold {
			t.Errorf("Open(%q): got kind %s threshold %v", kind, sel.Kind, sel.Threshold)
		}
		if sel.Classifier.Margin() != cfg.Bayes.Radius {
			t.Errorf("Margin: got %d, want %d", sel.Classifier.Margin(), cfg.Bayes.Radius)
		}
	}
}

func TestOpen_Logistic(t *testing.T) {
	cfg := testConfig(t)
	if _, err := Open(cfg, Logistic); err == nil {
		t.Fatal("a missing model file should fail")
	}

	width := 13
	m := &discriminative.LogisticRegression{
		Layout:  "strokes",
		Weights: make([]float64, width),
		Mean:    make([]float64, width),
		Scale:   make([]float64, width),
	}
	for i := range m.Scale {
		m.Scale[i] = 1
	}
	if err := m.SaveModel(cfg.Discriminative.ModelPath); err != nil {
		t.Fatal(err)
	}

	sel, err := Open(cfg, Logistic)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if sel.Kind != Logistic || sel.Threshold != 0.5 || sel.Classifier.Margin() != 9 {
		t.Errorf("unexpected selection: %+v", sel)
	}

	cfg.Features.Layout = "rays"
	if _, err := Open(cfg, Logistic); err == nil {
		t.Error("layout mismatch should fail")
	}
}

func TestOpen_UnknownKind(t *testing.T) {
	if _, err := Open(testConfig(t), "forest"); err == nil {
		t.Error("unknown kind should fail")
	}
}
