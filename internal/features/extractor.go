package features

import (
	"fmt"
	"strings"

	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// Column describes one feature column.
type Column struct {
	// Name is the header name written to sample files.
	Name string

	// Precision is the number of decimals written; 0 means an integer column.
	Precision int
}

// Layout is an ordered feature column set. The label column ("target") is
// not part of Columns.
type Layout struct {
	Name    string
	Columns []Column
}

// TargetColumn is the name of the trailing label column in sample files.
const TargetColumn = "target"

// StrokeLayout is the default layout: border distances, center distance, the
// eight length×thickness products, ball radius and local ink share.
var StrokeLayout = Layout{
	Name: "strokes",
	Columns: []Column{
		{"border_row", 0},
		{"border_col", 0},
		{"center_distance", 4},
		{"p0", 4},
		{"p45", 4},
		{"p90", 4},
		{"p135", 4},
		{"p180", 4},
		{"p225", 4},
		{"p270", 4},
		{"p315", 4},
		{"max_ball", 0},
		{"window_mean", 4},
	},
}

// RayLayout is the sampling layout with raw positions, plain ray lengths and
// the white rectangle ratios.
var RayLayout = Layout{
	Name: "rays",
	Columns: []Column{
		{"pos_row", 0},
		{"pos_col", 0},
		{"d0", 0},
		{"d45", 0},
		{"d90", 0},
		{"d135", 0},
		{"d180", 0},
		{"d225", 0},
		{"d270", 0},
		{"d315", 0},
		{"max_ball", 0},
		{"whites_rect0", 2},
		{"whites_rect1", 2},
		{"whites_rect2", 2},
	},
}

// Layouts lists the known layouts by name.
var Layouts = map[string]Layout{
	StrokeLayout.Name: StrokeLayout,
	RayLayout.Name:    RayLayout,
}

// LayoutByName looks up a layout.
func LayoutByName(name string) (Layout, error) {
	l, ok := Layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("unknown feature layout: %s", name)
	}
	return l, nil
}

// Width returns the number of feature columns.
func (l Layout) Width() int { return len(l.Columns) }

// Header returns the ';'-joined column names followed by the target column.
func (l Layout) Header() string {
	names := make([]string, 0, len(l.Columns)+1)
	for _, c := range l.Columns {
		names = append(names, c.Name)
	}
	return strings.Join(append(names, TargetColumn), ";")
}

// Extractor builds feature vectors in a fixed layout.
type Extractor struct {
	layout    Layout
	extent    Extent
	halfWidth int
}

// NewExtractor creates an extractor. halfWidth is the local window half-width
// and also the margin callers must keep from the grid edges.
func NewExtractor(layout Layout, extent Extent, halfWidth int) *Extractor {
	return &Extractor{layout: layout, extent: extent, halfWidth: halfWidth}
}

// Layout returns the extractor's column layout.
func (e *Extractor) Layout() Layout { return e.layout }

// Margin is the distance from every edge a pixel needs for Extract to succeed.
func (e *Extractor) Margin() int { return e.halfWidth }

// Extract computes the feature vector of p.
//
// Returns imaging.ErrOutOfBounds if p is closer than Margin to an edge.
func (e *Extractor) Extract(g *imaging.Grid, p imaging.Pixel) ([]float64, error) {
	m := e.halfWidth
	if !g.InBounds(p.Row-m, p.Col-m) || !g.InBounds(p.Row+m, p.Col+m) {
		return nil, fmt.Errorf("extract at (%d,%d) with margin %d: %w", p.Row, p.Col, m, imaging.ErrOutOfBounds)
	}

	switch e.layout.Name {
	case StrokeLayout.Name:
		return e.strokes(g, p)
	case RayLayout.Name:
		return e.rays(g, p), nil
	}
	return nil, fmt.Errorf("unknown feature layout: %s", e.layout.Name)
}

func (e *Extractor) strokes(g *imaging.Grid, p imaging.Pixel) ([]float64, error) {
	mean, err := LocalWindowMean(g, p, e.halfWidth)
	if err != nil {
		return nil, err
	}
	rowDist, colDist := BorderDistance(p, e.extent)

	v := make([]float64, 0, StrokeLayout.Width())
	v = append(v, float64(rowDist), float64(colDist), CenterDistance(p, e.extent))
	for _, ray := range Rays(g, p) {
		v = append(v, ray.Product())
	}
	v = append(v, float64(BoundedBallRadius(g, p)), mean)
	return v, nil
}

func (e *Extractor) rays(g *imaging.Grid, p imaging.Pixel) []float64 {
	v := make([]float64, 0, RayLayout.Width())
	v = append(v, float64(p.Row), float64(p.Col))
	for _, d := range Directions {
		v = append(v, float64(RayLength(g, p, d)))
	}
	v = append(v, float64(BoundedBallRadius(g, p)))
	for _, r := range WhiteRatios(g, p) {
		v = append(v, r)
	}
	return v
}
