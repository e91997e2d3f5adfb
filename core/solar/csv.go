package solar

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kilianp07/bessim/core/model"
)

// ErrNoColumn is returned when the requested column is missing from the header.
var ErrNoColumn = errors.New("solar column not found")

// LoadCSV reads a solar series from path. See ReadCSV.
func LoadCSV(path, column string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, column)
}

// ReadCSV reads one MW value per row. The first row is a header; column
// selects the value column by name (case-insensitive), defaulting to
// "solar_mw" or else the last column. Blank values are read as zero and
// negative values are clamped to zero.
func ReadCSV(r io.Reader, column string) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header, column)
	if err != nil {
		return nil, err
	}
	var out []float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if idx >= len(rec) {
			return nil, fmt.Errorf("line %d: %d fields, want column %d", line, len(rec), idx+1)
		}
		raw := strings.TrimSpace(rec[idx])
		if raw == "" {
			out = append(out, 0)
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: line %d: %v", model.ErrNumericCorruption, line, v)
		}
		out = append(out, math.Max(0, v))
	}
	return out, nil
}

func columnIndex(header []string, column string) (int, error) {
	want := strings.ToLower(strings.TrimSpace(column))
	if want == "" {
		want = "solar_mw"
	}
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i, nil
		}
	}
	if column == "" && len(header) > 0 {
		return len(header) - 1, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrNoColumn, column)
}
