package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO date format used by the source and by every API surface.
const DateLayout = "2006-01-02"

// Source column names
const (
	ColumnCountry      = "name_en"
	ColumnDate         = "date"
	ColumnCases        = "cases"
	ColumnDeaths       = "deaths"
	ColumnCasesPer100k = "cases_100k"
)

var requiredColumns = []string{ColumnCountry, ColumnDate, ColumnCases, ColumnDeaths, ColumnCasesPer100k}

var ErrMissingColumn = errors.New("missing column")

// Observation is one reported row of the source: cumulative figures for a country as of a date.
type Observation struct {
	Country      string
	Date         time.Time
	Cases        int64
	Deaths       int64
	CasesPer100k float64
}

// ParseDate parses an ISO YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseCSV reads observations from a CSV document with a header row. Columns are located
// by name, extra columns are ignored. The first malformed line aborts the parse.
func ParseCSV(r io.Reader) ([]Observation, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		// strip a UTF-8 BOM on the first column
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var observations []Observation
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		field := func(col string) (string, error) {
			i := index[col]
			if i >= len(record) {
				return "", fmt.Errorf("line %d: %w: %s", line, ErrMissingColumn, col)
			}
			return strings.TrimSpace(record[i]), nil
		}

		var obs Observation
		if obs.Country, err = field(ColumnCountry); err != nil {
			return nil, err
		}
		if obs.Country == "" {
			return nil, fmt.Errorf("line %d: empty %s", line, ColumnCountry)
		}

		raw, err := field(ColumnDate)
		if err != nil {
			return nil, err
		}
		if obs.Date, err = ParseDate(raw); err != nil {
			return nil, fmt.Errorf("line %d: invalid %s %q: %w", line, ColumnDate, raw, err)
		}

		if raw, err = field(ColumnCases); err != nil {
			return nil, err
		}
		if obs.Cases, err = parseCount(raw); err != nil {
			return nil, fmt.Errorf("line %d: invalid %s %q: %w", line, ColumnCases, raw, err)
		}

		if raw, err = field(ColumnDeaths); err != nil {
			return nil, err
		}
		if obs.Deaths, err = parseCount(raw); err != nil {
			return nil, fmt.Errorf("line %d: invalid %s %q: %w", line, ColumnDeaths, raw, err)
		}

		if raw, err = field(ColumnCasesPer100k); err != nil {
			return nil, err
		}
		if raw != "" {
			if obs.CasesPer100k, err = strconv.ParseFloat(raw, 64); err != nil {
				return nil, fmt.Errorf("line %d: invalid %s %q: %w", line, ColumnCasesPer100k, raw, err)
			}
		}

		observations = append(observations, obs)
	}

	if len(observations) == 0 {
		return nil, ErrEmptyDataset
	}
	return observations, nil
}

// parseCount accepts integer counts, also when exported as floats ("15.0").
func parseCount(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, errors.New("negative count")
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a whole non-negative number")
	}
	return int64(f), nil
}
