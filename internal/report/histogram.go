// Package report summarizes the posterior probabilities produced by a
// cleaning sweep and renders them as a histogram chart.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the number of histogram buckets over [0,1].
const DefaultBins = 20

// Bin is one histogram bucket covering [Low, High).
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Summary describes the distribution of P(letter) over examined pixels.
type Summary struct {
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Threshold float64 `json:"threshold"`
	AtOrBelow int     `json:"at_or_below_threshold"`
	Bins      []Bin   `json:"bins"`
}

// Summarize buckets probs into bins equal-width buckets over [0,1]. Values
// outside [0,1] are clamped; NaN values are dropped.
func Summarize(probs []float64, threshold float64, bins int) Summary {
	if bins < 1 {
		bins = DefaultBins
	}
	xs := make([]float64, 0, len(probs))
	for _, p := range probs {
		if math.IsNaN(p) {
			continue
		}
		xs = append(xs, math.Max(0, math.Min(1, p)))
	}
	sort.Float64s(xs)

	dividers := make([]float64, bins+1)
	floats.Span(dividers, 0, 1)
	// The last bucket is closed so that 1.0 lands in it.
	dividers[bins] = math.Nextafter(1, 2)

	s := Summary{Count: len(xs), Threshold: threshold, Bins: make([]Bin, bins)}
	var counts []float64
	if len(xs) > 0 {
		counts = stat.Histogram(nil, dividers, xs, nil)
		s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
		if len(xs) == 1 {
			s.StdDev = 0
		}
	}
	for i := range s.Bins {
		s.Bins[i] = Bin{Low: dividers[i], High: dividers[i+1]}
		if counts != nil {
			s.Bins[i].Count = int(counts[i])
		}
	}
	s.Bins[bins-1].High = 1
	for _, x := range xs {
		if x > threshold {
			break
		}
		s.AtOrBelow++
	}
	return s
}

// RenderHistogram draws s as a filled step chart with a vertical marker at
// the threshold and writes it to w as PNG.
func RenderHistogram(s Summary, title string, w io.Writer) error {
	if len(s.Bins) == 0 {
		return errors.New("no histogram bins to render")
	}

	var xvalues, yvalues []float64
	maxCount := 1.0
	for _, b := range s.Bins {
		c := float64(b.Count)
		xvalues = append(xvalues, b.Low, b.High)
		yvalues = append(yvalues, c, c)
		maxCount = math.Max(maxCount, c)
	}

	var xticks []chart.Tick
	for i := 0; i <= 10; i++ {
		v := float64(i) / 10
		xticks = append(xticks, chart.Tick{Value: v, Label: fmt.Sprintf("%.1f", v)})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Name:  "P(letter)",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
			Ticks: xticks,
		},
		YAxis: chart.YAxis{
			Name:  "Pixels",
			Range: &chart.ContinuousRange{Min: 0, Max: maxCount * 1.05},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "pixels",
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					FillColor:   chart.ColorAlternateBlue,
				},
				XValues: xvalues,
				YValues: yvalues,
			},
			thresholdLine(s.Threshold, maxCount, chart.ColorRed),
			chart.AnnotationSeries{
				Annotations: []chart.Value2{{
					Label:  fmt.Sprintf("threshold %.2f: %d of %d", s.Threshold, s.AtOrBelow, s.Count),
					XValue: s.Threshold,
					YValue: maxCount,
				}},
			},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render histogram: %w", err)
	}
	return nil
}

// thresholdLine creates a vertical line at x spanning the chart height.
func thresholdLine(x, height float64, c drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    "threshold",
		XValues: []float64{x, x},
		YValues: []float64{0, height},
		Style: chart.Style{
			StrokeColor:     c,
			StrokeDashArray: []float64{5.0, 5.0},
		},
	}
}
