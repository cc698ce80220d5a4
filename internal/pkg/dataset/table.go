package dataset

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"
)

// MAWindow is the number of trailing observations averaged into DailyMA.
const MAWindow = 5

var (
	ErrEmptyDataset         = errors.New("dataset contains no observations")
	ErrDuplicateObservation = errors.New("duplicate observation")
	ErrStrictValidation     = errors.New("dataset failed strict validation")
)

// Row is an Observation plus the series derived per country at load time.
type Row struct {
	Observation

	// DailyNewCases is the first difference of Cases inside one country's series.
	DailyNewCases int64
	// DailyMA is the trailing MAWindow mean of DailyNewCases, nil while the window is unfilled.
	DailyMA *float64
}

// Table is the prepared, read-only dataset. It is never mutated after Prepare returns
// and can be shared by concurrent requests without synchronization.
type Table struct {
	rows        []Row
	countries   []string
	groups      map[string][]Row
	minDate     time.Time
	maxDate     time.Time
	snapshot    Snapshot
	diagnostics []Diagnostic
}

type options struct {
	strict bool
}

// Option configures Prepare.
type Option func(*options)

// WithStrict makes Prepare fail when validation produced any diagnostic.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// Prepare groups observations by country, derives DailyNewCases and DailyMA within each
// group, validates the per-country date sequences and builds the latest-date Snapshot.
func Prepare(observations []Observation, opts ...Option) (*Table, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if len(observations) == 0 {
		return nil, ErrEmptyDataset
	}

	t := &Table{
		groups:  make(map[string][]Row),
		minDate: observations[0].Date,
		maxDate: observations[0].Date,
	}

	grouped := make(map[string][]Observation)
	for _, obs := range observations {
		if _, ok := grouped[obs.Country]; !ok {
			t.countries = append(t.countries, obs.Country)
		}
		grouped[obs.Country] = append(grouped[obs.Country], obs)
		if obs.Date.Before(t.minDate) {
			t.minDate = obs.Date
		}
		if obs.Date.After(t.maxDate) {
			t.maxDate = obs.Date
		}
	}

	t.rows = make([]Row, 0, len(observations))
	for _, country := range t.countries {
		group := grouped[country]

		if !sort.SliceIsSorted(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) }) {
			t.diagnostics = append(t.diagnostics, Diagnostic{
				Kind:    KindUnordered,
				Country: country,
				Message: "dates were not in ascending order and have been sorted",
			})
			sort.SliceStable(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })
		}

		for i := 1; i < len(group); i++ {
			if group[i].Date.Equal(group[i-1].Date) {
				return nil, fmt.Errorf("%w: %s on %s", ErrDuplicateObservation, country, FormatDate(group[i].Date))
			}
		}

		rows := deriveSeries(group)
		t.diagnostics = append(t.diagnostics, inspectSeries(country, rows, t.minDate, t.maxDate)...)

		t.groups[country] = rows
		t.rows = append(t.rows, rows...)
	}

	t.snapshot = buildSnapshot(t.rows, t.maxDate)

	if o.strict && len(t.diagnostics) > 0 {
		return nil, fmt.Errorf("%w: %d diagnostic(s), first: %s", ErrStrictValidation, len(t.diagnostics), t.diagnostics[0])
	}

	return t, nil
}

// deriveSeries computes the first difference and the trailing moving average for one
// chronologically ordered country group. The first observation keeps its cumulative value.
func deriveSeries(group []Observation) []Row {
	rows := make([]Row, len(group))
	var windowSum int64
	for i, obs := range group {
		rows[i].Observation = obs
		if i == 0 {
			rows[i].DailyNewCases = obs.Cases
		} else {
			rows[i].DailyNewCases = obs.Cases - group[i-1].Cases
		}

		windowSum += rows[i].DailyNewCases
		if i >= MAWindow {
			windowSum -= rows[i-MAWindow].DailyNewCases
		}
		if i >= MAWindow-1 {
			ma := float64(windowSum) / MAWindow
			rows[i].DailyMA = &ma
		}
	}
	return rows
}

// Rows returns all prepared rows grouped by country in first-appearance order.
func (t *Table) Rows() []Row {
	return t.rows
}

// Countries returns the country names in the order they first appear in the source.
func (t *Table) Countries() []string {
	return t.countries
}

func (t *Table) HasCountry(country string) bool {
	_, ok := t.groups[country]
	return ok
}

// CountryRows returns the chronologically ordered rows of a country, nil if unknown.
func (t *Table) CountryRows(country string) []Row {
	return t.groups[country]
}

func (t *Table) MinDate() time.Time {
	return t.minDate
}

func (t *Table) MaxDate() time.Time {
	return t.maxDate
}

func (t *Table) Snapshot() Snapshot {
	return t.snapshot
}

func (t *Table) Diagnostics() []Diagnostic {
	return t.diagnostics
}

var defaultTable atomic.Pointer[Table]

// SetDefault publishes the process-wide table. It is called once at start-up.
func SetDefault(t *Table) {
	defaultTable.Store(t)
}

// Default returns the process-wide table or nil before it has been loaded.
func Default() *Table {
	return defaultTable.Load()
}
