package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ironsheep/letter-denoise/internal/bayes"
	"github.com/ironsheep/letter-denoise/internal/cleaner"
	"github.com/ironsheep/letter-denoise/internal/config"
	"github.com/ironsheep/letter-denoise/internal/discriminative"
	"github.com/ironsheep/letter-denoise/internal/features"
	"github.com/ironsheep/letter-denoise/internal/imaging"
	"github.com/ironsheep/letter-denoise/internal/labeling"
	"github.com/ironsheep/letter-denoise/internal/logging"
	"github.com/ironsheep/letter-denoise/internal/models"
	"github.com/ironsheep/letter-denoise/internal/ocr"
	"github.com/ironsheep/letter-denoise/internal/report"
	"github.com/ironsheep/letter-denoise/internal/server"
)

// env is what every command gets after flag parsing.
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
	args   []string
}

// newFlagSet creates a flag set carrying the shared -config flag.
func newFlagSet(name, argsUsage string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML settings file")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: letter-denoise %s [options] %s\n\nOptions:\n", name, argsUsage)
		fs.PrintDefaults()
	}
	return fs, configPath
}

// setup parses args, loads the configuration and builds the logger.
func setup(fs *flag.FlagSet, configPath *string, args []string, component string) (*env, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.Component(logging.NewConsole(logging.ResolveLevel(cfg.LogLevel)), component)
	return &env{cfg: cfg, logger: logger, args: fs.Args()}, nil
}

func requireArgs(e *env, fs *flag.FlagSet) error {
	if len(e.args) == 0 {
		fs.Usage()
		return errors.New("no input files given")
	}
	return nil
}

// cleanedName maps in.jpg to dir/in_clean.png.
func cleanedName(dir, in string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(dir, base+"_clean.png")
}

func runClean(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("clean", "image...")
	model := fs.String("model", models.Bayes, "classifier: bayes or logistic")
	threshold := fs.Float64("threshold", -1, "P(letter) at or below which ink is erased (default from config)")
	workers := fs.Int("workers", 0, "concurrent row bands (default from config)")
	outDir := fs.String("out", ".", "directory for the cleaned images")
	e, err := setup(fs, configPath, args, "clean")
	if err != nil {
		return err
	}
	if err := requireArgs(e, fs); err != nil {
		return err
	}

	sel, err := models.Open(e.cfg, *model)
	if err != nil {
		return err
	}
	opts := cleaner.Options{Threshold: sel.Threshold, Workers: e.cfg.Clean.Workers}
	if *threshold >= 0 {
		opts.Threshold = *threshold
	}
	if *workers > 0 {
		opts.Workers = *workers
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cl := cleaner.New(sel.Classifier, opts)
	cache := imaging.NewImageCache()
	for _, path := range e.args {
		g, err := cache.LoadGrid(path, e.cfg.Clean.PreBlur)
		if err != nil {
			return err
		}
		res, err := cl.Clean(ctx, g)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		out := cleanedName(*outDir, path)
		if err := imaging.SaveGrid(res.Image, out); err != nil {
			return err
		}
		cache.Evict(path)
		e.logger.Info().
			Str("image", path).
			Str("output", out).
			Str("model", sel.Kind).
			Int("examined", res.Examined).
			Int("removed", res.Removed).
			Int("degenerate", res.Degenerate).
			Msg("done")
	}
	return nil
}

// loadLabelingImages decodes every path and binarizes it with the configured
// pre-blur; the decoded image is kept for the preview.
func loadLabelingImages(e *env) ([]labeling.Image, error) {
	cache := imaging.NewImageCache()
	images := make([]labeling.Image, 0, len(e.args))
	for _, path := range e.args {
		src, err := cache.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		images = append(images, labeling.Image{
			Path:   path,
			Grid:   imaging.FromImage(src, e.cfg.Clean.PreBlur),
			Source: src,
		})
	}
	return images, nil
}

func newSession(e *env) *labeling.Session {
	return labeling.NewSession(os.Stdin, os.Stdout, labeling.Options{
		CheckBox:    e.cfg.Labeling.CheckBox,
		PreviewPath: e.cfg.Labeling.PreviewPath,
		Seed:        e.cfg.Labeling.Seed,
	}, e.logger)
}

func runTrainBayes(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("train-bayes", "image...")
	iterations := fs.Int("n", -1, "passes over the images (default from config)")
	e, err := setup(fs, configPath, args, "train-bayes")
	if err != nil {
		return err
	}
	if err := requireArgs(e, fs); err != nil {
		return err
	}
	if *iterations < 0 {
		*iterations = e.cfg.Labeling.Iterations
	}

	store, err := bayes.Open(e.cfg.Bayes.ParametersDir, e.cfg.Bayes.Radius)
	if err != nil {
		return err
	}
	images, err := loadLabelingImages(e)
	if err != nil {
		return err
	}
	prior := store.Prior()
	e.logger.Info().
		Str("parameters", e.cfg.Bayes.ParametersDir).
		Int64("observations", prior.Total-bayes.SeedTotal).
		Str("preview", e.cfg.Labeling.PreviewPath).
		Msg("starting training session")

	n, err := newSession(e).Run(ctx, images, *iterations, labeling.NewBayesTrainer(store, e.cfg.Bayes.ParametersDir))
	e.logger.Info().Int("recorded", n).Msg("training session ended")
	return err
}

func runSample(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("sample", "image...")
	output := fs.String("o", "sample.txt", "sample file to append to")
	iterations := fs.Int("n", -1, "passes over the images (default from config)")
	e, err := setup(fs, configPath, args, "sample")
	if err != nil {
		return err
	}
	if err := requireArgs(e, fs); err != nil {
		return err
	}
	if *iterations < 0 {
		*iterations = e.cfg.Labeling.Iterations
	}

	extractor, err := e.cfg.Extractor()
	if err != nil {
		return err
	}
	images, err := loadLabelingImages(e)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(*output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open sample file: %w", err)
	}
	defer f.Close()
	if info, err := f.Stat(); err == nil && info.Size() == 0 {
		if err := features.WriteHeader(f, extractor.Layout()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	n, err := newSession(e).Run(ctx, images, *iterations, labeling.NewSampleCollector(extractor, f))
	e.logger.Info().Int("recorded", n).Str("file", *output).Msg("sampling session ended")
	return err
}

func runFit(_ context.Context, args []string) error {
	fs, configPath := newFlagSet("fit", "samples.txt")
	output := fs.String("o", "", "model file (default from config)")
	l2 := fs.Float64("l2", discriminative.DefaultFitOptions().L2, "ridge penalty on the weights")
	e, err := setup(fs, configPath, args, "fit")
	if err != nil {
		return err
	}
	if len(e.args) != 1 {
		fs.Usage()
		return errors.New("expected exactly one sample file")
	}
	if *output == "" {
		*output = e.cfg.Discriminative.ModelPath
	}

	layout, err := features.LayoutByName(e.cfg.Features.Layout)
	if err != nil {
		return err
	}
	f, err := os.Open(e.args[0])
	if err != nil {
		return fmt.Errorf("failed to open sample file: %w", err)
	}
	samples, err := features.ReadSamples(f, layout)
	f.Close()
	if err != nil {
		return err
	}

	opts := discriminative.DefaultFitOptions()
	opts.L2 = *l2
	m, err := discriminative.Fit(samples, layout, opts)
	if err != nil {
		return err
	}
	if err := m.SaveModel(*output); err != nil {
		return err
	}
	e.logger.Info().
		Int("samples", len(samples)).
		Str("layout", layout.Name).
		Float64("accuracy", m.Accuracy(samples)).
		Str("model", *output).
		Msg("model fitted")
	return nil
}

func runOCR(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("ocr", "image...")
	clean := fs.Bool("clean", true, "clean the image before OCR")
	model := fs.String("model", models.Bayes, "classifier used for cleaning: bayes or logistic")
	lang := fs.String("lang", "eng", "Tesseract language code")
	whitelist := fs.String("whitelist", "", "restrict recognition to these characters")
	e, err := setup(fs, configPath, args, "ocr")
	if err != nil {
		return err
	}
	if err := requireArgs(e, fs); err != nil {
		return err
	}

	var cl *cleaner.Cleaner
	if *clean {
		sel, err := models.Open(e.cfg, *model)
		if err != nil {
			return err
		}
		cl = cleaner.New(sel.Classifier, cleaner.Options{Threshold: sel.Threshold, Workers: e.cfg.Clean.Workers})
	}
	opts := ocr.DefaultOptions()
	opts.Language = *lang
	opts.Whitelist = *whitelist

	cache := imaging.NewImageCache()
	for _, path := range e.args {
		g, err := cache.LoadGrid(path, e.cfg.Clean.PreBlur)
		if err != nil {
			return err
		}
		if cl != nil {
			res, err := cl.Clean(ctx, g)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			g = res.Image
		}
		text, err := ocr.RecognizeGrid(g, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s\t%s\n", path, text.Text)
		cache.Evict(path)
	}
	return nil
}

func runReport(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("report", "image")
	model := fs.String("model", models.Bayes, "classifier: bayes or logistic")
	bins := fs.Int("bins", report.DefaultBins, "histogram buckets")
	output := fs.String("o", "histogram.png", "chart file")
	e, err := setup(fs, configPath, args, "report")
	if err != nil {
		return err
	}
	if len(e.args) != 1 {
		fs.Usage()
		return errors.New("expected exactly one image")
	}

	sel, err := models.Open(e.cfg, *model)
	if err != nil {
		return err
	}
	g, err := imaging.NewImageCache().LoadGrid(e.args[0], e.cfg.Clean.PreBlur)
	if err != nil {
		return err
	}
	res, err := cleaner.New(sel.Classifier, cleaner.Options{Threshold: sel.Threshold, Workers: e.cfg.Clean.Workers}).Clean(ctx, g)
	if err != nil {
		return err
	}

	summary := report.Summarize(res.Probabilities, sel.Threshold, *bins)
	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}
	defer f.Close()
	if err := report.RenderHistogram(summary, filepath.Base(e.args[0]), f); err != nil {
		return err
	}
	e.logger.Info().
		Int("examined", summary.Count).
		Float64("mean", summary.Mean).
		Int("at_or_below_threshold", summary.AtOrBelow).
		Str("chart", *output).
		Msg("report written")
	return nil
}

func runServe(_ context.Context, args []string) error {
	fs, configPath := newFlagSet("serve", "")
	e, err := setup(fs, configPath, args, "server")
	if err != nil {
		return err
	}
	e.logger.Debug().
		Str("version", Version).
		Str("built", BuildTime).
		Str("commit", GitCommit).
		Msg("letter-denoise MCP server starting")
	return server.New(e.cfg, e.logger, Version).Run()
}
