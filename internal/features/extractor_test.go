package features

import (
	"errors"
	"testing"

	"github.com/ironsheep/letter-denoise/internal/imaging"
)

func TestLayouts(t *testing.T) {
	tests := []struct {
		layout Layout
		width  int
		header string
	}{
		{
			layout: StrokeLayout,
			width:  13,
			header: "border_row;border_col;center_distance;p0;p45;p90;p135;p180;p225;p270;p315;max_ball;window_mean;target",
		},
		{
			layout: RayLayout,
			width:  14,
			header: "pos_row;pos_col;d0;d45;d90;d135;d180;d225;d270;d315;max_ball;whites_rect0;whites_rect1;whites_rect2;target",
		},
	}
	for _, tt := range tests {
		t.Run(tt.layout.Name, func(t *testing.T) {
			if got := tt.layout.Width(); got != tt.width {
				t.Errorf("Width: got %d, want %d", got, tt.width)
			}
			if got := tt.layout.Header(); got != tt.header {
				t.Errorf("Header:\n got %s\nwant %s", got, tt.header)
			}
			byName, err := LayoutByName(tt.layout.Name)
			if err != nil || byName.Name != tt.layout.Name {
				t.Errorf("LayoutByName(%s): got %v, %v", tt.layout.Name, byName.Name, err)
			}
		})
	}

	if _, err := LayoutByName("pixels"); err == nil {
		t.Error("unknown layout should fail")
	}
}

func TestExtractor_WidthAndDeterminism(t *testing.T) {
	g := imaging.NewGrid(30, 30, imaging.Background)
	for r := 10; r < 20; r++ {
		g.Set(r, 15, imaging.Ink)
	}
	p := imaging.Pixel{Row: 15, Col: 15}

	for _, layout := range []Layout{StrokeLayout, RayLayout} {
		e := NewExtractor(layout, NominalExtent, 9)
		first, err := e.Extract(g, p)
		if err != nil {
			t.Fatalf("%s: Extract failed: %v", layout.Name, err)
		}
		if len(first) != layout.Width() {
			t.Errorf("%s: got %d values, want %d", layout.Name, len(first), layout.Width())
		}
		second, _ := e.Extract(g, p)
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("%s: column %s differs between calls", layout.Name, layout.Columns[i].Name)
			}
		}
	}
}

func TestExtractor_Rays(t *testing.T) {
	g := imaging.NewGrid(30, 30, imaging.Ink)
	e := NewExtractor(RayLayout, NominalExtent, 9)
	v, err := e.Extract(g, imaging.Pixel{Row: 15, Col: 15})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := map[string]float64{
		"pos_row":      15,
		"pos_col":      15,
		"d0":           14,
		"d90":          15,
		"d180":         15,
		"d270":         14,
		"max_ball":     14,
		"whites_rect0": 0,
	}
	for i, col := range RayLayout.Columns {
		if w, ok := want[col.Name]; ok && v[i] != w {
			t.Errorf("%s: got %v, want %v", col.Name, v[i], w)
		}
	}
}

func TestExtractor_Strokes(t *testing.T) {
	g := imaging.NewGrid(30, 30, imaging.Background)
	g.Set(15, 15, imaging.Ink)
	g.Set(15, 16, imaging.Ink)

	e := NewExtractor(StrokeLayout, Extent{Rows: 30, Cols: 30}, 9)
	v, err := e.Extract(g, imaging.Pixel{Row: 15, Col: 15})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// d0 has length 1 and the only cell along it has no vertical run.
	want := map[string]float64{
		"border_row":      15,
		"border_col":      15,
		"center_distance": 0,
		"p0":              0,
		"p90":             0,
		"max_ball":        0,
		"window_mean":     1.0 / 360,
	}
	for i, col := range StrokeLayout.Columns {
		if w, ok := want[col.Name]; ok && v[i] != w {
			t.Errorf("%s: got %v, want %v", col.Name, v[i], w)
		}
	}
}

func TestExtractor_Margin(t *testing.T) {
	g := imaging.NewGrid(30, 30, imaging.Ink)
	e := NewExtractor(StrokeLayout, NominalExtent, 9)
	if e.Margin() != 9 {
		t.Errorf("Margin: got %d, want 9", e.Margin())
	}

	for _, p := range []imaging.Pixel{{Row: 8, Col: 15}, {Row: 15, Col: 21}, {Row: 0, Col: 0}} {
		if _, err := e.Extract(g, p); !errors.Is(err, imaging.ErrOutOfBounds) {
			t.Errorf("%v: got %v, want ErrOutOfBounds", p, err)
		}
	}
	if _, err := e.Extract(g, imaging.Pixel{Row: 9, Col: 20}); err != nil {
		t.Errorf("pixel exactly at the margin should succeed: %v", err)
	}
}
