package bayes

import (
	"errors"
	"math"
	"testing"

	"github.com/ironsheep/letter-denoise/internal/imaging"
)

func TestPosterior_FreshStoreIsHalf(t *testing.T) {
	s := NewStore(2)
	for _, c := range []imaging.Cell{imaging.Ink, imaging.Background} {
		got, err := Posterior(uniformWindow(2, c), s)
		if err != nil {
			t.Fatalf("Posterior failed: %v", err)
		}
		if got != 0.5 {
			t.Errorf("%v window: got %v, want 0.5", c, got)
		}
	}
}

func TestPosterior_SeparatesTrainedClasses(t *testing.T) {
	s := NewStore(3)
	ink := uniformWindow(3, imaging.Ink)
	bg := uniformWindow(3, imaging.Background)
	for i := 0; i < 100; i++ {
		if err := s.Record(ink, imaging.Letter); err != nil {
			t.Fatal(err)
		}
		if err := s.Record(bg, imaging.Noise); err != nil {
			t.Fatal(err)
		}
	}

	letter, err := Posterior(ink, s)
	if err != nil {
		t.Fatalf("Posterior failed: %v", err)
	}
	if letter < 0.999 {
		t.Errorf("all-ink window: got %v, want ~1", letter)
	}

	noise, err := Posterior(bg, s)
	if err != nil {
		t.Fatalf("Posterior failed: %v", err)
	}
	if noise > 0.001 {
		t.Errorf("all-background window: got %v, want ~0", noise)
	}
}

func TestPosterior_RecordOrderDoesNotMatter(t *testing.T) {
	windows := []struct {
		w     imaging.Window
		label imaging.Label
	}{
		{uniformWindow(1, imaging.Ink), imaging.Letter},
		{imaging.Window{Radius: 1, Cells: []imaging.Cell{0, 255, 0, 255, 0, 255, 0, 255, 0}}, imaging.Letter},
		{uniformWindow(1, imaging.Background), imaging.Noise},
		{imaging.Window{Radius: 1, Cells: []imaging.Cell{255, 255, 255, 255, 0, 255, 255, 255, 255}}, imaging.Noise},
	}

	forward, backward := NewStore(1), NewStore(1)
	for i := range windows {
		forward.Record(windows[i].w, windows[i].label)
		j := len(windows) - 1 - i
		backward.Record(windows[j].w, windows[j].label)
	}

	query := imaging.Window{Radius: 1, Cells: []imaging.Cell{0, 0, 255, 0, 0, 255, 255, 255, 255}}
	a, _ := Posterior(query, forward)
	b, _ := Posterior(query, backward)
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("order changed the posterior: %v vs %v", a, b)
	}
}

func TestPosterior_OffsetOrderDoesNotMatter(t *testing.T) {
	s := NewStore(1)
	windows := []imaging.Window{
		{Radius: 1, Cells: []imaging.Cell{0, 255, 0, 255, 0, 255, 0, 255, 0}},
		{Radius: 1, Cells: []imaging.Cell{0, 0, 0, 255, 0, 255, 255, 255, 255}},
		{Radius: 1, Cells: []imaging.Cell{255, 255, 0, 255, 0, 0, 255, 0, 0}},
	}
	for _, w := range windows {
		if err := s.Record(w, imaging.Letter); err != nil {
			t.Fatal(err)
		}
		if err := s.Record(uniformWindow(1, imaging.Background), imaging.Noise); err != nil {
			t.Fatal(err)
		}
	}
	query := imaging.Window{Radius: 1, Cells: []imaging.Cell{0, 255, 255, 0, 0, 255, 0, 255, 0}}

	// Any bijection of the offsets, applied to the query and to both
	// classes' matrices alike.
	perm := []int{4, 8, 0, 6, 2, 7, 1, 5, 3}
	permuted := NewStore(1)
	permuted.prior = s.prior
	shuffled := imaging.Window{Radius: 1, Cells: make([]imaging.Cell, len(perm))}
	for i, j := range perm {
		shuffled.Cells[i] = query.Cells[j]
		permuted.letter.hits[i], permuted.letter.totals[i] = s.letter.hits[j], s.letter.totals[j]
		permuted.noise.hits[i], permuted.noise.totals[i] = s.noise.hits[j], s.noise.totals[j]
	}

	want, err := Posterior(query, s)
	if err != nil {
		t.Fatalf("Posterior failed: %v", err)
	}
	got, err := Posterior(shuffled, permuted)
	if err != nil {
		t.Fatalf("Posterior failed: %v", err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("permuted offsets: got %v, want %v", got, want)
	}
	if want == 0.5 {
		t.Error("trained store should not answer exactly 0.5 for this query")
	}
}

func TestPosterior_UnderflowGuard(t *testing.T) {
	// Each partial product is tiny but representable; their product is not.
	s := NewStore(3)
	query := imaging.Window{Radius: 3, Cells: make([]imaging.Cell, 49)}
	for i := range query.Cells {
		if i%2 == 1 {
			query.Cells[i] = imaging.Background
		}
	}
	for _, counts := range []*Counts{s.letter, s.noise} {
		for i, c := range query.Cells {
			counts.totals[i] = 100_000_000
			if c == imaging.Ink {
				counts.hits[i] = 1
			} else {
				counts.hits[i] = 100_000_000 - 1
			}
		}
	}

	_, err := Posterior(query, s)
	if !errors.Is(err, ErrDegenerateScore) {
		t.Fatalf("got %v, want ErrDegenerateScore", err)
	}

	// A single partial product that underflows by itself is replaced by 1.
	for i := range s.letter.hits {
		s.letter.hits[i] = 0
	}
	got, err := Posterior(uniformWindow(3, imaging.Ink), s)
	if err != nil {
		t.Fatalf("Posterior failed: %v", err)
	}
	if math.IsNaN(got) || got < 0 || got > 1 {
		t.Errorf("posterior out of range: %v", got)
	}
}

func TestPosterior_ShapeMismatch(t *testing.T) {
	if _, err := Posterior(uniformWindow(1, imaging.Ink), NewStore(2)); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("got %v, want ErrShapeMismatch", err)
	}
}

func TestClassifier(t *testing.T) {
	s := NewStore(2)
	c := NewClassifier(s)
	if c.Margin() != 2 {
		t.Errorf("Margin: got %d, want 2", c.Margin())
	}

	g := imaging.NewGrid(7, 7, imaging.Ink)
	got, err := c.ProbabilityIsLetter(g, imaging.Pixel{Row: 3, Col: 3})
	if err != nil || got != 0.5 {
		t.Errorf("fresh store: got %v, %v", got, err)
	}

	if _, err := c.ProbabilityIsLetter(g, imaging.Pixel{Row: 1, Col: 3}); !errors.Is(err, imaging.ErrOutOfBounds) {
		t.Errorf("got %v, want ErrOutOfBounds", err)
	}
}
