// Package sample reads a raw numeric sample from one column of delimited text.  The first record is a header that
// names the columns.  Cells that are empty or not numbers are skipped.
package sample

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/BTBurke/abtest/pkg/stat"
)

// Option changes how delimited text is read
type Option func(r *csv.Reader)

// Delimiter sets the field separator.  The default is a comma.
func Delimiter(d rune) Option {
	return func(r *csv.Reader) {
		r.Comma = d
	}
}

// Read returns the numeric values in the named column of r in the order they appear.  It returns stat.InvalidInput
// when the column is missing or holds no numeric values, so callers can show the reason to the user.
func Read(r io.Reader, column string, opts ...Option) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	for _, opt := range opts {
		opt(cr)
	}

	header, err := cr.Read()
	switch {
	case errors.Is(err, io.EOF):
		return nil, stat.InvalidInput{Msg: fmt.Sprintf("input must contain a %q column", column)}
	case err != nil:
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, stat.InvalidInput{Msg: fmt.Sprintf("input must contain a %q column", column)}
	}

	var values []float64
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %q column: %w", column, err)
		}
		if col >= len(record) {
			continue
		}
		v, ok := parseValue(record[col])
		if !ok {
			continue
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return nil, stat.InvalidInput{Msg: fmt.Sprintf("no valid numeric data found in %q column", column)}
	}
	return values, nil
}

// ReadFile reads the named column from the file at path
func ReadFile(path string, column string, opts ...Option) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values, err := Read(f, column, opts...)
	if err != nil {
		var invalid stat.InvalidInput
		if errors.As(err, &invalid) {
			return nil, stat.InvalidInput{Msg: fmt.Sprintf("%s: %s", path, invalid.Msg)}
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

func parseValue(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
