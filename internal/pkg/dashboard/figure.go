package dashboard

import (
	"sort"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
)

// TopN is the number of countries shown in the share pie and the death-rate bar.
const TopN = 20

// OtherLabel names the pie slice aggregating every country outside the top N.
const OtherLabel = "Other"

// DeathRateColor is the bar colour of the death-rate ranking.
const DeathRateColor = "rgb(179,0,0)"

// Palette is the qualitative colour cycle assigned to selected countries.
var Palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Panel titles and axis labels
const (
	TitleDailyNewCases = "Daily Number of New COVID-19 Cases"
	TitleDailyMA       = "5-day Averaged Daily Number of New COVID-19 Cases"
	TitleShare         = "Percentage of Cases by Country"
	TitleCumulative    = "Total Number of COVID-19 Cases"
	TitleDeathRate     = "Top 20 Countries with Highest Death Rate of COVID-19 Patients"

	AxisDate       = "Date"
	AxisCountry    = "Country"
	AxisDaily      = "Number of New Confirmed Cases (Daily)"
	AxisCumulative = "Total Number of Confirmed Cases"
	AxisDeathRate  = "Death Rate (%)"
)

// Trace is one country's line in a time-series panel. Y entries are nil where the
// metric is undefined (the unfilled moving-average window).
type Trace struct {
	Name        string     `json:"name"`
	LegendGroup string     `json:"legendgroup"`
	ShowLegend  bool       `json:"showlegend"`
	Color       string     `json:"color"`
	X           []string   `json:"x"`
	Y           []*float64 `json:"y"`
}

type TimeSeriesPanel struct {
	Title  string  `json:"title"`
	XTitle string  `json:"xaxis_title"`
	YTitle string  `json:"yaxis_title"`
	Traces []Trace `json:"traces"`
}

type PieSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type PiePanel struct {
	Title  string     `json:"title"`
	Slices []PieSlice `json:"slices"`
}

type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type BarPanel struct {
	Title  string `json:"title"`
	XTitle string `json:"xaxis_title"`
	YTitle string `json:"yaxis_title"`
	Color  string `json:"color"`
	Bars   []Bar  `json:"bars"`
}

// Figure holds the four chart specifications of one redraw. The panels share no state.
type Figure struct {
	Daily      TimeSeriesPanel `json:"daily"`
	Share      PiePanel        `json:"share"`
	Cumulative TimeSeriesPanel `json:"cumulative"`
	DeathRate  BarPanel        `json:"death_rate"`
}

// Render computes every panel from scratch for the given query. It is a pure function of
// the table and the query.
func Render(t *dataset.Table, q Query) Figure {
	daily, cumulative := timeSeriesPanels(t, q)
	snap := t.Snapshot()
	return Figure{
		Daily:      daily,
		Share:      SharePie(snap),
		Cumulative: cumulative,
		DeathRate:  DeathRateBar(snap),
	}
}

func timeSeriesPanels(t *dataset.Table, q Query) (TimeSeriesPanel, TimeSeriesPanel) {
	daily := TimeSeriesPanel{
		Title:  TitleDailyNewCases,
		XTitle: AxisDate,
		YTitle: AxisDaily,
		Traces: []Trace{},
	}
	if q.Series == SeriesDailyMA {
		daily.Title = TitleDailyMA
	}
	cumulative := TimeSeriesPanel{
		Title:  TitleCumulative,
		XTitle: AxisDate,
		YTitle: AxisCumulative,
		Traces: []Trace{},
	}

	seen := make(map[string]struct{}, len(q.Countries))
	for _, country := range q.Countries {
		if _, dup := seen[country]; dup {
			continue
		}
		color := Palette[len(seen)%len(Palette)]
		seen[country] = struct{}{}

		dt := Trace{Name: country, LegendGroup: country, ShowLegend: true, Color: color, X: []string{}, Y: []*float64{}}
		ct := Trace{Name: country, LegendGroup: country, ShowLegend: false, Color: color, X: []string{}, Y: []*float64{}}

		for _, r := range t.CountryRows(country) {
			if r.Date.Before(q.Start) || r.Date.After(q.End) {
				continue
			}
			x := dataset.FormatDate(r.Date)

			total := float64(r.Cases)
			ct.X = append(ct.X, x)
			ct.Y = append(ct.Y, &total)

			dt.X = append(dt.X, x)
			dt.Y = append(dt.Y, dailyValue(r, q.Series))
		}

		daily.Traces = append(daily.Traces, dt)
		cumulative.Traces = append(cumulative.Traces, ct)
	}
	return daily, cumulative
}

func dailyValue(r dataset.Row, s Series) *float64 {
	if s == SeriesDailyMA {
		if r.DailyMA == nil {
			return nil
		}
		v := *r.DailyMA
		return &v
	}
	v := float64(r.DailyNewCases)
	return &v
}

// SharePie keeps the TopN countries by cases (ascending, ties in snapshot order) with their
// share of world cases and folds the remainder into a trailing Other slice.
func SharePie(snap dataset.Snapshot) PiePanel {
	entries := make([]dataset.SnapshotEntry, len(snap.Entries))
	copy(entries, snap.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Cases < entries[j].Cases
	})

	share := func(cases int64) float64 {
		if snap.WorldCases <= 0 {
			return 0
		}
		return float64(cases) / float64(snap.WorldCases)
	}

	cut := len(entries) - TopN
	if cut < 0 {
		cut = 0
	}

	var other float64
	for _, e := range entries[:cut] {
		other += share(e.Cases)
	}

	slices := make([]PieSlice, 0, len(entries)-cut+1)
	for _, e := range entries[cut:] {
		slices = append(slices, PieSlice{Label: e.Country, Value: share(e.Cases)})
	}
	slices = append(slices, PieSlice{Label: OtherLabel, Value: other})

	return PiePanel{Title: TitleShare, Slices: slices}
}

// DeathRateBar ranks countries with a defined death rate, highest first, and keeps TopN.
// Values are percentages on a 0-100 scale.
func DeathRateBar(snap dataset.Snapshot) BarPanel {
	var entries []dataset.SnapshotEntry
	for _, e := range snap.Entries {
		if e.DeathRateDefined {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DeathRate > entries[j].DeathRate
	})
	if len(entries) > TopN {
		entries = entries[:TopN]
	}

	bars := make([]Bar, 0, len(entries))
	for _, e := range entries {
		bars = append(bars, Bar{Label: e.Country, Value: e.DeathRate * 100})
	}

	return BarPanel{
		Title:  TitleDeathRate,
		XTitle: AxisCountry,
		YTitle: AxisDeathRate,
		Color:  DeathRateColor,
		Bars:   bars,
	}
}
