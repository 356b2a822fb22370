// Package cleaner erases ink pixels that a classifier judges to be noise.
//
// The sweep reads every pixel from the untouched input grid and writes
// decisions into a separate output grid, so relabeling one pixel never changes
// what its neighbors see in the same pass. Rows can be split across workers;
// the result is identical for any worker count.
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ironsheep/letter-denoise/internal/bayes"
	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// Classifier scores ink pixels.
type Classifier interface {
	// Margin is the distance from every edge a pixel needs to be scored.
	Margin() int

	// ProbabilityIsLetter returns P(letter) for the ink pixel p of g.
	ProbabilityIsLetter(g *imaging.Grid, p imaging.Pixel) (float64, error)
}

// Options configures a sweep.
type Options struct {
	// Threshold is the P(letter) at or below which ink becomes background.
	Threshold float64

	// Workers is the number of row bands processed concurrently; values
	// below 1 mean 1.
	Workers int
}

// DefaultOptions matches the threshold the Bayesian model was tuned with.
func DefaultOptions() Options {
	return Options{Threshold: 0.05, Workers: 1}
}

// Result is the outcome of a sweep.
type Result struct {
	// Image is the cleaned grid; the input grid is never modified.
	Image *imaging.Grid

	// Examined counts the ink pixels inside the margin that were scored.
	Examined int

	// Removed counts the pixels flipped to background.
	Removed int

	// Degenerate counts pixels whose posterior was 0/0 (removed as noise).
	Degenerate int

	// Probabilities holds P(letter) of every examined pixel in raster order.
	// Degenerate pixels are recorded as 0.
	Probabilities []float64
}

// Cleaner runs sweeps with a fixed classifier and options.
type Cleaner struct {
	classifier Classifier
	opts       Options
}

// New creates a cleaner.
func New(classifier Classifier, opts Options) *Cleaner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Cleaner{classifier: classifier, opts: opts}
}

// Clean is the one-shot form of Cleaner.Clean with a single worker.
func Clean(g *imaging.Grid, classifier Classifier, threshold float64) (*imaging.Grid, error) {
	res, err := New(classifier, Options{Threshold: threshold, Workers: 1}).Clean(context.Background(), g)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

type band struct {
	from, to int
	examined int
	removed  int
	degen    int
	probs    []float64
	err      error
}

// Clean sweeps every ink pixel at least Margin cells from the edges.
//
// A pixel whose P(letter) is at or below the threshold is set to background
// in the output. bayes.ErrDegenerateScore is handled as noise; any other
// classifier error aborts the sweep. Cancelling ctx stops the sweep between
// rows.
func (c *Cleaner) Clean(ctx context.Context, g *imaging.Grid) (*Result, error) {
	out := g.Clone()
	m := c.classifier.Margin()
	first, last := m, g.Rows()-m
	res := &Result{Image: out}
	if first >= last || m >= g.Cols()-m {
		return res, nil
	}

	bands := splitRows(first, last, c.opts.Workers)
	var wg sync.WaitGroup
	for i := range bands {
		wg.Add(1)
		go func(b *band) {
			defer wg.Done()
			c.sweep(ctx, g, out, b)
		}(&bands[i])
	}
	wg.Wait()

	for i := range bands {
		b := &bands[i]
		if b.err != nil {
			return nil, b.err
		}
		res.Examined += b.examined
		res.Removed += b.removed
		res.Degenerate += b.degen
		res.Probabilities = append(res.Probabilities, b.probs...)
	}
	return res, nil
}

func (c *Cleaner) sweep(ctx context.Context, in, out *imaging.Grid, b *band) {
	m := c.classifier.Margin()
	for r := b.from; r < b.to; r++ {
		if err := ctx.Err(); err != nil {
			b.err = err
			return
		}
		for col := m; col < in.Cols()-m; col++ {
			if in.At(r, col) != imaging.Ink {
				continue
			}
			b.examined++
			prob, err := c.classifier.ProbabilityIsLetter(in, imaging.Pixel{Row: r, Col: col})
			if errors.Is(err, bayes.ErrDegenerateScore) {
				b.degen++
				prob, err = 0, nil
			}
			if err != nil {
				b.err = fmt.Errorf("clean: %w", err)
				return
			}
			b.probs = append(b.probs, prob)
			if prob <= c.opts.Threshold {
				out.Set(r, col, imaging.Background)
				b.removed++
			}
		}
	}
}

// splitRows partitions [first, last) into at most n contiguous bands.
func splitRows(first, last, n int) []band {
	rows := last - first
	if n > rows {
		n = rows
	}
	bands := make([]band, 0, n)
	size, extra := rows/n, rows%n
	from := first
	for i := 0; i < n; i++ {
		to := from + size
		if i < extra {
			to++
		}
		bands = append(bands, band{from: from, to: to})
		from = to
	}
	return bands
}
