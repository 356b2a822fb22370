// Package config loads the YAML settings file shared by every subcommand.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/letter-denoise/internal/discriminative"
	"github.com/ironsheep/letter-denoise/internal/features"
)

// Bayes configures the Naive-Bayes model.
type Bayes struct {
	Radius        int     `yaml:"radius"`
	ParametersDir string  `yaml:"parameters_dir"`
	Threshold     float64 `yaml:"threshold"`
}

// Features configures geometric feature extraction.
type Features struct {
	Layout          string `yaml:"layout"`
	ExtentRows      int    `yaml:"extent_rows"`
	ExtentCols      int    `yaml:"extent_cols"`
	WindowHalfWidth int    `yaml:"window_half_width"`
}

// Discriminative configures the fitted-model classifier.
type Discriminative struct {
	ModelPath  string  `yaml:"model_path"`
	Threshold  float64 `yaml:"threshold"`
	Convention string  `yaml:"convention"`
}

// Clean configures the cleaning sweep.
type Clean struct {
	Workers int     `yaml:"workers"`
	PreBlur float64 `yaml:"pre_blur"`
}

// Labeling configures interactive labeling sessions.
type Labeling struct {
	CheckBox    int    `yaml:"check_box"`
	PreviewPath string `yaml:"preview_path"`
	Iterations  int    `yaml:"iterations"`
	Seed        int64  `yaml:"seed"`
}

// Config is the whole settings file.
type Config struct {
	Bayes          Bayes          `yaml:"bayes"`
	Features       Features       `yaml:"features"`
	Discriminative Discriminative `yaml:"discriminative"`
	Clean          Clean          `yaml:"clean"`
	Labeling       Labeling       `yaml:"labeling"`
	LogLevel       string         `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Bayes: Bayes{
			Radius:        7,
			ParametersDir: "parameters",
			Threshold:     0.05,
		},
		Features: Features{
			Layout:          features.StrokeLayout.Name,
			ExtentRows:      features.NominalExtent.Rows,
			ExtentCols:      features.NominalExtent.Cols,
			WindowHalfWidth: 9,
		},
		Discriminative: Discriminative{
			ModelPath:  "model.json",
			Threshold:  0.5,
			Convention: discriminative.LetterIsClass1.String(),
		},
		Clean: Clean{
			Workers: 1,
		},
		Labeling: Labeling{
			CheckBox:    3,
			PreviewPath: "preview.png",
			Iterations:  100,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Bayes.Radius < 1 {
		errs = append(errs, fmt.Errorf("bayes.radius must be at least 1, got %d", c.Bayes.Radius))
	}
	if c.Bayes.Threshold < 0 || c.Bayes.Threshold > 1 {
		errs = append(errs, fmt.Errorf("bayes.threshold must be in [0,1], got %g", c.Bayes.Threshold))
	}
	if _, err := features.LayoutByName(c.Features.Layout); err != nil {
		errs = append(errs, fmt.Errorf("features.layout: %w", err))
	}
	if c.Features.ExtentRows < 1 || c.Features.ExtentCols < 1 {
		errs = append(errs, fmt.Errorf("features extent must be positive, got %dx%d", c.Features.ExtentRows, c.Features.ExtentCols))
	}
	if c.Features.WindowHalfWidth < 1 {
		errs = append(errs, fmt.Errorf("features.window_half_width must be at least 1, got %d", c.Features.WindowHalfWidth))
	}
	if c.Discriminative.Threshold < 0 || c.Discriminative.Threshold > 1 {
		errs = append(errs, fmt.Errorf("discriminative.threshold must be in [0,1], got %g", c.Discriminative.Threshold))
	}
	if _, err := discriminative.ParseConvention(c.Discriminative.Convention); err != nil {
		errs = append(errs, fmt.Errorf("discriminative.convention: %w", err))
	}
	if c.Clean.Workers < 1 {
		errs = append(errs, fmt.Errorf("clean.workers must be at least 1, got %d", c.Clean.Workers))
	}
	if c.Clean.PreBlur < 0 {
		errs = append(errs, fmt.Errorf("clean.pre_blur must not be negative, got %g", c.Clean.PreBlur))
	}
	if c.Labeling.CheckBox < 1 {
		errs = append(errs, fmt.Errorf("labeling.check_box must be at least 1, got %d", c.Labeling.CheckBox))
	}
	if c.Labeling.Iterations < 0 {
		errs = append(errs, fmt.Errorf("labeling.iterations must not be negative, got %d", c.Labeling.Iterations))
	}
	return errors.Join(errs...)
}

// Extent returns the configured nominal image extent.
func (c *Config) Extent() features.Extent {
	return features.Extent{Rows: c.Features.ExtentRows, Cols: c.Features.ExtentCols}
}

// Extractor builds the feature extractor described by the settings.
func (c *Config) Extractor() (*features.Extractor, error) {
	layout, err := features.LayoutByName(c.Features.Layout)
	if err != nil {
		return nil, err
	}
	return features.NewExtractor(layout, c.Extent(), c.Features.WindowHalfWidth), nil
}

// AdapterConfig returns the discriminative decision parameters.
func (c *Config) AdapterConfig() (discriminative.Config, error) {
	conv, err := discriminative.ParseConvention(c.Discriminative.Convention)
	if err != nil {
		return discriminative.Config{}, err
	}
	return discriminative.Config{Threshold: c.Discriminative.Threshold, Convention: conv}, nil
}
