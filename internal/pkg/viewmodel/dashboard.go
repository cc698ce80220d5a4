package viewmodel

import (
	"net/url"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/charts"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/constants"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/dashboard"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/statistics"
)

type CountryOption struct {
	Name     string
	Selected bool
}

type SeriesOption struct {
	Value   string
	Label   string
	Checked bool
}

// Column is a summary table header with the link that sorts by it.
type Column struct {
	Label      string
	SortURL    string
	Active     bool
	Descending bool
}

type PanelLink struct {
	Title   string
	PNGURL  string
	WebPURL string
}

// Dashboard contains everything the dashboard page template renders
type Dashboard struct {
	Layout   Layout
	Headline statistics.Headline

	Countries []CountryOption
	Series    []SeriesOption
	MinDate   string
	MaxDate   string
	Start     string
	End       string

	ChartURL string
	Panels   []PanelLink

	Columns []Column
	Rows    []dashboard.SummaryRow
}

// NewDashboard builds the page model for q. sortKey and descending order the summary
// table; an unknown key keeps snapshot order.
func NewDashboard(t *dataset.Table, q dashboard.Query, sortKey string, descending bool) Dashboard {
	selection := SelectionValues(q)

	vm := Dashboard{
		Layout:   Layout{Page: "COVID-19 Dashboard"},
		Headline: statistics.GetHeadline(t),
		MinDate:  dataset.FormatDate(t.MinDate()),
		MaxDate:  dataset.FormatDate(t.MaxDate()),
		Start:    dataset.FormatDate(q.Start),
		End:      dataset.FormatDate(q.End),
		ChartURL: ChartURL(charts.PanelDashboard, charts.FormatPNG, selection),
		Rows:     dashboard.SummaryTable(t.Snapshot(), sortKey, descending),
	}

	selected := make(map[string]bool, len(q.Countries))
	for _, c := range q.Countries {
		selected[c] = true
	}
	for _, c := range t.Countries() {
		vm.Countries = append(vm.Countries, CountryOption{Name: c, Selected: selected[c]})
	}

	vm.Series = []SeriesOption{
		{Value: string(dashboard.SeriesDailyNewCases), Label: "Daily New Cases", Checked: q.Series == dashboard.SeriesDailyNewCases},
		{Value: string(dashboard.SeriesDailyMA), Label: "5-day Moving Average", Checked: q.Series == dashboard.SeriesDailyMA},
	}

	panelTitles := []struct{ panel, title string }{
		{charts.PanelDaily, "Daily"},
		{charts.PanelShare, "Share"},
		{charts.PanelCumulative, "Cumulative"},
		{charts.PanelDeathRate, "Death rate"},
	}
	for _, p := range panelTitles {
		vm.Panels = append(vm.Panels, PanelLink{
			Title:   p.title,
			PNGURL:  ChartURL(p.panel, charts.FormatPNG, selection),
			WebPURL: ChartURL(p.panel, charts.FormatWebP, selection),
		})
	}

	for _, col := range dashboard.SummaryColumns {
		active := col.Key == sortKey
		// Clicking the active column flips the direction, others start descending
		// except the country name.
		nextDesc := col.Key != dashboard.SortCountry
		if active {
			nextDesc = !descending
		}
		v := cloneValues(selection)
		v.Set("sort", col.Key)
		v.Set("dir", direction(nextDesc))
		vm.Columns = append(vm.Columns, Column{
			Label:      col.Label,
			SortURL:    constants.DashboardRoute + "?" + v.Encode(),
			Active:     active,
			Descending: active && descending,
		})
	}

	return vm
}

// SelectionValues encodes q as query parameters understood by every dashboard route.
// Countries repeat the parameter since names may contain commas; an empty selection is
// sent as a single empty value.
func SelectionValues(q dashboard.Query) url.Values {
	v := url.Values{}
	if len(q.Countries) == 0 {
		v.Set("countries", "")
	}
	for _, c := range q.Countries {
		v.Add("countries", c)
	}
	v.Set("start", dataset.FormatDate(q.Start))
	v.Set("end", dataset.FormatDate(q.End))
	v.Set("series", string(q.Series))
	return v
}

func ChartURL(panel, format string, selection url.Values) string {
	return constants.ChartsRoute + "/" + panel + "." + format + "?" + selection.Encode()
}

func direction(descending bool) string {
	if descending {
		return "desc"
	}
	return "asc"
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
