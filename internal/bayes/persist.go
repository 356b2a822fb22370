package bayes

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Parameter file names inside a parameters directory.
const (
	PriorFile        = "pixel_is_a_word.txt"
	LetterHitsFile   = "neighborhood_given_word_param_x.txt"
	LetterTotalsFile = "neighborhood_given_word_param_total.txt"
	NoiseHitsFile    = "neighborhood_given_not_word_param_x.txt"
	NoiseTotalsFile  = "neighborhood_given_not_word_param_total.txt"
)

// WriteMatrix writes rows as ';'-delimited non-negative integers, one line per row.
func WriteMatrix(w io.Writer, rows [][]int64) error {
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				bw.WriteByte(';')
			}
			bw.WriteString(strconv.FormatInt(v, 10))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadMatrix parses a ';'-delimited table. Integral floats such as
// "1.000000000000000000e+00" are accepted; fractional or negative values are
// rejected with ErrCorruptParameters.
func ReadMatrix(r io.Reader) ([][]int64, error) {
	var rows [][]int64
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ";")
		row := make([]int64, len(fields))
		for i, f := range fields {
			v, err := parseCount(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", len(rows), i, err)
			}
			row[i] = v
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", len(rows), len(row), len(rows[0]), ErrShapeMismatch)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matrix: %w", err)
	}
	return rows, nil
}

func parseCount(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative count %d: %w", v, ErrCorruptParameters)
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", s, ErrCorruptParameters)
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, fmt.Errorf("count %q is not a non-negative integer: %w", s, ErrCorruptParameters)
	}
	return int64(f), nil
}

// Save writes the five parameter tables into dir, creating it if needed.
func (s *Store) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create parameters directory: %w", err)
	}

	s.mu.RLock()
	tables := map[string][][]int64{
		PriorFile:        {{s.prior.Hits, s.prior.Total}},
		LetterHitsFile:   s.letter.HitsMatrix(),
		LetterTotalsFile: s.letter.TotalsMatrix(),
		NoiseHitsFile:    s.noise.HitsMatrix(),
		NoiseTotalsFile:  s.noise.TotalsMatrix(),
	}
	s.mu.RUnlock()

	for name, rows := range tables {
		if err := writeMatrixFile(filepath.Join(dir, name), rows); err != nil {
			return err
		}
	}
	return nil
}

// writeMatrixFile writes through a temporary file and renames it so a crash
// never leaves a half-written table behind.
func writeMatrixFile(path string, rows [][]int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".params-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteMatrix(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Load reads a store of the given radius from dir.
//
// Returns ErrShapeMismatch if a table does not have the expected shape and
// ErrCorruptParameters if any counter breaks total >= hits >= 0.
func Load(dir string, radius int) (*Store, error) {
	side := 2*radius + 1

	prior, err := readMatrixFile(filepath.Join(dir, PriorFile), 1, 2)
	if err != nil {
		return nil, err
	}
	tables := make(map[string][][]int64, 4)
	for _, name := range []string{LetterHitsFile, LetterTotalsFile, NoiseHitsFile, NoiseTotalsFile} {
		rows, err := readMatrixFile(filepath.Join(dir, name), side, side)
		if err != nil {
			return nil, err
		}
		tables[name] = rows
	}

	s := NewStore(radius)
	s.prior = Counter{Hits: prior[0][0], Total: prior[0][1]}
	if err := checkCounter(PriorFile, s.prior); err != nil {
		return nil, err
	}
	if err := fillCounts(s.letter, tables[LetterHitsFile], tables[LetterTotalsFile]); err != nil {
		return nil, err
	}
	if err := fillCounts(s.noise, tables[NoiseHitsFile], tables[NoiseTotalsFile]); err != nil {
		return nil, err
	}
	return s, nil
}

// Open loads the store in dir, or returns a fresh store when dir holds no
// parameters yet.
func Open(dir string, radius int) (*Store, error) {
	if _, err := os.Stat(filepath.Join(dir, PriorFile)); errors.Is(err, os.ErrNotExist) {
		return NewStore(radius), nil
	}
	return Load(dir, radius)
}

func readMatrixFile(path string, rows, cols int) ([][]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parameters: %w", err)
	}
	defer f.Close()

	m, err := ReadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if len(m) != rows || (rows > 0 && len(m[0]) != cols) {
		got := 0
		if len(m) > 0 {
			got = len(m[0])
		}
		return nil, fmt.Errorf("%s is %dx%d, want %dx%d: %w", filepath.Base(path), len(m), got, rows, cols, ErrShapeMismatch)
	}
	return m, nil
}

func fillCounts(c *Counts, hits, totals [][]int64) error {
	for r := 0; r < c.side; r++ {
		for col := 0; col < c.side; col++ {
			i := r*c.side + col
			c.hits[i] = hits[r][col]
			c.totals[i] = totals[r][col]
			if err := checkCounter(fmt.Sprintf("offset (%d,%d)", r, col), Counter{Hits: c.hits[i], Total: c.totals[i]}); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkCounter(where string, c Counter) error {
	if c.Hits < 0 || c.Total < c.Hits || c.Total == 0 {
		return fmt.Errorf("%s: hits=%d total=%d: %w", where, c.Hits, c.Total, ErrCorruptParameters)
	}
	return nil
}
