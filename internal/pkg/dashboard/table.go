package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
)

// Summary table sort keys
const (
	SortCountry      = "country"
	SortCases        = "cases"
	SortDeaths       = "deaths"
	SortCasesPer100k = "cases_100k"
	SortDeathRate    = "death_rate"
)

// SummaryColumn describes one column of the summary table.
type SummaryColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var SummaryColumns = []SummaryColumn{
	{SortCountry, "Country"},
	{SortCases, "Total Confirmed Cases"},
	{SortDeaths, "Total Confirmed Deaths"},
	{SortCasesPer100k, "Cases per 100k"},
	{SortDeathRate, "Death %"},
}

// SummaryRow is a Snapshot entry with its display columns.
type SummaryRow struct {
	dataset.SnapshotEntry

	CasesText        string `json:"cases_text"`
	DeathsText       string `json:"deaths_text"`
	CasesPer100kText string `json:"cases_per_100k_text"`
	DeathPercentText string `json:"death_percent_text"`
}

// ValidSortKey reports whether key names a summary column.
func ValidSortKey(key string) bool {
	for _, c := range SummaryColumns {
		if c.Key == key {
			return true
		}
	}
	return false
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatRate renders a rate with thousands separators, rounded to two decimals.
func FormatRate(v float64) string {
	return humanize.CommafWithDigits(math.Round(v*100)/100, 2)
}

// FormatDeathPercent renders a 0-1 death rate as a percentage with two decimals.
func FormatDeathPercent(rate float64, defined bool) string {
	if !defined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", rate*100)
}

// SummaryTable builds the display rows of the snapshot ordered by key. Unknown keys keep
// snapshot order (cases descending). Undefined death rates sort last in both directions.
func SummaryTable(snap dataset.Snapshot, key string, descending bool) []SummaryRow {
	rows := make([]SummaryRow, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		rows = append(rows, SummaryRow{
			SnapshotEntry:    e,
			CasesText:        FormatCount(e.Cases),
			DeathsText:       FormatCount(e.Deaths),
			CasesPer100kText: FormatRate(e.CasesPer100k),
			DeathPercentText: FormatDeathPercent(e.DeathRate, e.DeathRateDefined),
		})
	}

	var less func(a, b SummaryRow) bool
	switch key {
	case SortCountry:
		less = func(a, b SummaryRow) bool { return strings.ToLower(a.Country) < strings.ToLower(b.Country) }
	case SortCases:
		less = func(a, b SummaryRow) bool { return a.Cases < b.Cases }
	case SortDeaths:
		less = func(a, b SummaryRow) bool { return a.Deaths < b.Deaths }
	case SortCasesPer100k:
		less = func(a, b SummaryRow) bool { return a.CasesPer100k < b.CasesPer100k }
	case SortDeathRate:
		less = func(a, b SummaryRow) bool { return a.DeathRate < b.DeathRate }
	default:
		return rows
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if key == SortDeathRate && a.DeathRateDefined != b.DeathRateDefined {
			return a.DeathRateDefined
		}
		if descending {
			return less(b, a)
		}
		return less(a, b)
	})
	return rows
}
