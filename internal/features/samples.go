package features

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ironsheep/letter-denoise/internal/imaging"
)

// Sample is one labeled feature vector.
type Sample struct {
	Features []float64
	Label    imaging.Label
}

// WriteHeader writes the "# col;...;target" comment line.
func WriteHeader(w io.Writer, layout Layout) error {
	_, err := fmt.Fprintf(w, "# %s\n", layout.Header())
	return err
}

// WriteSample appends one ';'-delimited row in layout order, label last
// (1 = letter, 0 = noise).
func WriteSample(w io.Writer, layout Layout, s Sample) error {
	if len(s.Features) != layout.Width() {
		return fmt.Errorf("sample has %d features, layout %s has %d columns",
			len(s.Features), layout.Name, layout.Width())
	}
	var sb strings.Builder
	for i, col := range layout.Columns {
		sb.WriteString(strconv.FormatFloat(s.Features[i], 'f', col.Precision, 64))
		sb.WriteByte(';')
	}
	sb.WriteString(strconv.Itoa(int(s.Label)))
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteSamples writes a header followed by every sample.
func WriteSamples(w io.Writer, layout Layout, samples []Sample) error {
	if err := WriteHeader(w, layout); err != nil {
		return err
	}
	for _, s := range samples {
		if err := WriteSample(w, layout, s); err != nil {
			return err
		}
	}
	return nil
}

// ReadSamples parses a sample file written in layout. Blank lines and lines
// starting with '#' are skipped. Every row must have exactly Width()+1 fields
// and a label of 0 or 1.
func ReadSamples(r io.Reader, layout Layout) ([]Sample, error) {
	var samples []Sample
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, ";")
		if len(fields) != layout.Width()+1 {
			return nil, fmt.Errorf("line %d: got %d fields, layout %s needs %d",
				line, len(fields), layout.Name, layout.Width()+1)
		}

		s := Sample{Features: make([]float64, layout.Width())}
		for i := 0; i < layout.Width(); i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, layout.Columns[i].Name, err)
			}
			s.Features[i] = v
		}

		switch strings.TrimSpace(fields[layout.Width()]) {
		case "1":
			s.Label = imaging.Letter
		case "0":
			s.Label = imaging.Noise
		default:
			return nil, fmt.Errorf("line %d: label must be 0 or 1, got %q", line, fields[layout.Width()])
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}
	return samples, nil
}
