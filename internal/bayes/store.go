package bayes

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ironsheep/letter-denoise/internal/imaging"
)

var (
	// ErrShapeMismatch is returned when a neighborhood or a loaded table does
	// not match the store's radius.
	ErrShapeMismatch = errors.New("neighborhood shape does not match store radius")

	// ErrCorruptParameters is returned when loaded counters break
	// total >= hits >= 0.
	ErrCorruptParameters = errors.New("corrupt parameter table")
)

// Smoothing seed applied to every counter before any observation.
const (
	SeedHits  = 1
	SeedTotal = 2
)

// Counter is a (hits, total) pair.
type Counter struct {
	Hits  int64 `json:"hits"`
	Total int64 `json:"total"`
}

// Ratio returns Hits/Total.
func (c Counter) Ratio() float64 {
	return float64(c.Hits) / float64(c.Total)
}

// Counts holds per-offset counters as two parallel row-major matrices.
type Counts struct {
	side   int
	hits   []int64
	totals []int64
}

func newCounts(side int) *Counts {
	n := side * side
	c := &Counts{side: side, hits: make([]int64, n), totals: make([]int64, n)}
	for i := 0; i < n; i++ {
		c.hits[i] = SeedHits
		c.totals[i] = SeedTotal
	}
	return c
}

// Side returns the matrix edge length (2*radius+1).
func (c *Counts) Side() int { return c.side }

// At returns the counter at matrix position (row, col).
func (c *Counts) At(row, col int) Counter {
	i := row*c.side + col
	return Counter{Hits: c.hits[i], Total: c.totals[i]}
}

// HitsMatrix returns a copy of the hits matrix, one slice per row.
func (c *Counts) HitsMatrix() [][]int64 { return toRows(c.hits, c.side) }

// TotalsMatrix returns a copy of the totals matrix, one slice per row.
func (c *Counts) TotalsMatrix() [][]int64 { return toRows(c.totals, c.side) }

func (c *Counts) clone() *Counts {
	out := &Counts{side: c.side, hits: make([]int64, len(c.hits)), totals: make([]int64, len(c.totals))}
	copy(out.hits, c.hits)
	copy(out.totals, c.totals)
	return out
}

func toRows(flat []int64, side int) [][]int64 {
	rows := make([][]int64, side)
	for r := range rows {
		rows[r] = make([]int64, side)
		copy(rows[r], flat[r*side:(r+1)*side])
	}
	return rows
}

// Store accumulates Naive-Bayes counts for a fixed neighborhood radius.
type Store struct {
	mu     sync.RWMutex
	radius int
	prior  Counter
	letter *Counts
	noise  *Counts
}

// NewStore creates a store with every counter at the smoothing seed.
func NewStore(radius int) *Store {
	side := 2*radius + 1
	return &Store{
		radius: radius,
		prior:  Counter{Hits: SeedHits, Total: SeedTotal},
		letter: newCounts(side),
		noise:  newCounts(side),
	}
}

// Radius returns the neighborhood half-width the store was built for.
func (s *Store) Radius() int { return s.radius }

// Record adds one labeled observation.
//
// The prior total always grows by one and its hits grow iff label is Letter.
// Every offset counter of the class selected by label gets total+1, and hits+1
// when the neighborhood cell at that offset is ink. The other class is not
// touched.
//
// Returns ErrShapeMismatch if w was not taken with the store's radius.
func (s *Store) Record(w imaging.Window, label imaging.Label) error {
	if err := s.checkShape(w); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prior.Total++
	counts := s.noise
	if label == imaging.Letter {
		s.prior.Hits++
		counts = s.letter
	}
	for i, c := range w.Cells {
		counts.totals[i]++
		if c == imaging.Ink {
			counts.hits[i]++
		}
	}
	return nil
}

// Prior returns the letter prior counter.
func (s *Store) Prior() Counter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prior
}

// Letter returns a copy of the counts conditioned on the letter class.
func (s *Store) Letter() *Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.letter.clone()
}

// Noise returns a copy of the counts conditioned on the noise class.
func (s *Store) Noise() *Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.noise.clone()
}

func (s *Store) checkShape(w imaging.Window) error {
	side := 2*s.radius + 1
	if w.Radius != s.radius || len(w.Cells) != side*side {
		return fmt.Errorf("window radius %d with %d cells, store radius %d: %w",
			w.Radius, len(w.Cells), s.radius, ErrShapeMismatch)
	}
	return nil
}
