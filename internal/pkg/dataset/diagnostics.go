package dataset

import (
	"fmt"
	"time"
)

type DiagnosticKind string

const (
	KindUnordered     DiagnosticKind = "unordered"
	KindGap           DiagnosticKind = "gap"
	KindLateStart     DiagnosticKind = "late_start"
	KindStale         DiagnosticKind = "stale"
	KindNegativeDelta DiagnosticKind = "negative_delta"
)

const day = 24 * time.Hour

// Diagnostic reports a property of a country's series that makes the derived daily
// values less trustworthy than the source figures.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Country string         `json:"country"`
	Date    string         `json:"date,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Date != "" {
		return fmt.Sprintf("%s %s %s: %s", d.Kind, d.Country, d.Date, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Kind, d.Country, d.Message)
}

// inspectSeries checks contiguity and baseline of one ordered country series.
func inspectSeries(country string, rows []Row, minDate, maxDate time.Time) []Diagnostic {
	var out []Diagnostic
	if len(rows) == 0 {
		return out
	}

	first := rows[0].Date
	if first.After(minDate) {
		out = append(out, Diagnostic{
			Kind:    KindLateStart,
			Country: country,
			Date:    FormatDate(first),
			Message: fmt.Sprintf("series starts %d day(s) after the dataset, first daily value assumes zero prior cases", int(first.Sub(minDate)/day)),
		})
	}

	for i := 1; i < len(rows); i++ {
		if step := rows[i].Date.Sub(rows[i-1].Date); step > day {
			out = append(out, Diagnostic{
				Kind:    KindGap,
				Country: country,
				Date:    FormatDate(rows[i].Date),
				Message: fmt.Sprintf("%d day(s) missing before this date, daily value spans the gap", int(step/day)-1),
			})
		}
		if rows[i].DailyNewCases < 0 {
			out = append(out, Diagnostic{
				Kind:    KindNegativeDelta,
				Country: country,
				Date:    FormatDate(rows[i].Date),
				Message: fmt.Sprintf("cumulative cases decreased by %d", -rows[i].DailyNewCases),
			})
		}
	}

	if last := rows[len(rows)-1].Date; last.Before(maxDate) {
		out = append(out, Diagnostic{
			Kind:    KindStale,
			Country: country,
			Date:    FormatDate(last),
			Message: "no observation on the latest dataset date, country is missing from the snapshot",
		})
	}
	return out
}
