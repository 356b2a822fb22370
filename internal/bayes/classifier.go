package bayes

import (
	"errors"
	"fmt"

	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// ErrDegenerateScore is returned when both class scores vanish and the
// posterior would be 0/0. Callers treat such pixels as noise.
var ErrDegenerateScore = errors.New("degenerate posterior: both class scores are zero")

// Posterior returns P(letter | neighborhood) under the Naive-Bayes model.
//
// For each class the likelihood is the product over all offsets of p for ink
// cells and 1-p for background cells, where p is the class's hits/total at
// that offset. The ink and background partial products are computed
// separately; a partial product that underflows to zero (or below) is taken as
// 1.0 so a single extreme offset cannot zero a whole class. The class scores
// are prior×likelihood and (1-prior)×likelihood; the result is the letter
// score normalized by their sum.
//
// Returns ErrShapeMismatch for a window of the wrong radius and
// ErrDegenerateScore when both scores are zero.
func Posterior(w imaging.Window, s *Store) (float64, error) {
	if err := s.checkShape(w); err != nil {
		return 0, err
	}

	s.mu.RLock()
	prior := s.prior.Ratio()
	letter := likelihood(w, s.letter)
	noise := likelihood(w, s.noise)
	s.mu.RUnlock()

	scoreLetter := prior * letter
	scoreNoise := (1 - prior) * noise
	sum := scoreLetter + scoreNoise
	if sum <= 0 {
		return 0, ErrDegenerateScore
	}
	return scoreLetter / sum, nil
}

func likelihood(w imaging.Window, counts *Counts) float64 {
	inkProd, bgProd := 1.0, 1.0
	for i, c := range w.Cells {
		p := float64(counts.hits[i]) / float64(counts.totals[i])
		if c == imaging.Ink {
			inkProd *= p
		} else {
			bgProd *= 1 - p
		}
	}
	if inkProd <= 0 {
		inkProd = 1.0
	}
	if bgProd <= 0 {
		bgProd = 1.0
	}
	return inkProd * bgProd
}

// Classifier adapts a Store to per-pixel queries on a grid.
type Classifier struct {
	store *Store
}

// NewClassifier wraps s. The classifier never mutates the store.
func NewClassifier(s *Store) *Classifier {
	return &Classifier{store: s}
}

// Margin is the neighborhood radius; pixels closer to an edge cannot be scored.
func (c *Classifier) Margin() int { return c.store.Radius() }

// ProbabilityIsLetter extracts the neighborhood of p and returns its posterior.
func (c *Classifier) ProbabilityIsLetter(g *imaging.Grid, p imaging.Pixel) (float64, error) {
	w, err := g.Window(p, c.store.Radius())
	if err != nil {
		return 0, err
	}
	prob, err := Posterior(w, c.store)
	if err != nil {
		return 0, fmt.Errorf("pixel (%d,%d): %w", p.Row, p.Col, err)
	}
	return prob, nil
}
