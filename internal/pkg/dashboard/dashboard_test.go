package dashboard

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
)

var day0 = time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)

// fixtureTable builds n countries over days, country i having (i+1)*10 new cases a day
// and i deaths a day; Canada is added last with a single daily case.
func fixtureTable(t *testing.T, n, days int) *dataset.Table {
	t.Helper()
	var input []dataset.Observation
	for i := 0; i < n; i++ {
		for d := 0; d < days; d++ {
			input = append(input, dataset.Observation{
				Country: fmt.Sprintf("C%02d", i),
				Date:    day0.AddDate(0, 0, d),
				Cases:   int64((i + 1) * 10 * (d + 1)),
				Deaths:  int64(i * (d + 1)),
			})
		}
	}
	for d := 0; d < days; d++ {
		input = append(input, dataset.Observation{Country: "Canada", Date: day0.AddDate(0, 0, d), Cases: int64(d + 1)})
	}
	table, err := dataset.Prepare(input)
	require.NoError(t, err)
	return table
}

func values(tr Trace) []float64 {
	out := make([]float64, len(tr.Y))
	for i, v := range tr.Y {
		if v == nil {
			out[i] = -1
			continue
		}
		out[i] = *v
	}
	return out
}

func TestRender_TimeSeriesPanels(t *testing.T) {
	table := fixtureTable(t, 3, 6)
	fig := Render(table, Query{
		Countries: []string{"C01", "Canada"},
		Start:     day0.AddDate(0, 0, 1),
		End:       day0.AddDate(0, 0, 3),
		Series:    SeriesDailyNewCases,
	})

	require.Len(t, fig.Daily.Traces, 2)
	require.Len(t, fig.Cumulative.Traces, 2)
	assert.Equal(t, TitleDailyNewCases, fig.Daily.Title)
	assert.Equal(t, AxisDaily, fig.Daily.YTitle)
	assert.Equal(t, AxisCumulative, fig.Cumulative.YTitle)

	daily := fig.Daily.Traces[0]
	assert.Equal(t, "C01", daily.Name)
	assert.Equal(t, []string{"2020-03-02", "2020-03-03", "2020-03-04"}, daily.X)
	assert.Equal(t, []float64{20, 20, 20}, values(daily))
	assert.True(t, daily.ShowLegend)

	cum := fig.Cumulative.Traces[0]
	assert.Equal(t, []float64{40, 60, 80}, values(cum))
	assert.False(t, cum.ShowLegend)

	// colours and legend groups are shared between the two panels
	for i := range fig.Daily.Traces {
		assert.Equal(t, Palette[i], fig.Daily.Traces[i].Color)
		assert.Equal(t, fig.Daily.Traces[i].Color, fig.Cumulative.Traces[i].Color)
		assert.Equal(t, fig.Daily.Traces[i].LegendGroup, fig.Cumulative.Traces[i].LegendGroup)
	}
}

func TestRender_MovingAverageToggle(t *testing.T) {
	table := fixtureTable(t, 1, 6)
	fig := Render(table, Query{
		Countries: []string{"C00"},
		Start:     day0,
		End:       day0.AddDate(0, 0, 5),
		Series:    SeriesDailyMA,
	})

	assert.Equal(t, TitleDailyMA, fig.Daily.Title)
	tr := fig.Daily.Traces[0]
	require.Len(t, tr.Y, 6)
	for i := 0; i < dataset.MAWindow-1; i++ {
		assert.Nil(t, tr.Y[i])
	}
	require.NotNil(t, tr.Y[4])
	assert.InDelta(t, 10.0, *tr.Y[4], 1e-12)
}

func TestRender_PaletteWraps(t *testing.T) {
	n := len(Palette) + 2
	table := fixtureTable(t, n, 2)
	var countries []string
	for i := 0; i < n; i++ {
		countries = append(countries, fmt.Sprintf("C%02d", i))
	}

	fig := Render(table, Query{Countries: countries, Start: day0, End: day0.AddDate(0, 0, 1)})
	require.Len(t, fig.Daily.Traces, n)
	assert.Equal(t, Palette[0], fig.Daily.Traces[len(Palette)].Color)
	assert.Equal(t, Palette[1], fig.Cumulative.Traces[len(Palette)+1].Color)
}

func TestRender_EmptySelection(t *testing.T) {
	table := fixtureTable(t, 25, 3)
	baseline := Render(table, DefaultQuery(table))

	fig := Render(table, Query{Countries: []string{}, Start: day0, End: day0.AddDate(0, 0, 2)})
	assert.Empty(t, fig.Daily.Traces)
	assert.Empty(t, fig.Cumulative.Traces)
	assert.NotEmpty(t, fig.Share.Slices)
	assert.NotEmpty(t, fig.DeathRate.Bars)
	assert.Equal(t, baseline.Share, fig.Share)
	assert.Equal(t, baseline.DeathRate, fig.DeathRate)
}

func TestRender_RangeOutsideData(t *testing.T) {
	table := fixtureTable(t, 2, 3)

	for _, q := range []Query{
		{Countries: []string{"C00", "C01"}, Start: day0.AddDate(1, 0, 0), End: day0.AddDate(1, 1, 0)},
		{Countries: []string{"C00", "C01"}, Start: day0.AddDate(-1, 0, 0), End: day0.AddDate(0, 0, -1)},
		{Countries: []string{"C00"}, Start: day0.AddDate(0, 0, 2), End: day0},
	} {
		fig := Render(table, q)
		require.Len(t, fig.Daily.Traces, len(q.Countries))
		for _, tr := range fig.Daily.Traces {
			assert.Empty(t, tr.X)
			assert.Empty(t, tr.Y)
		}
		for _, tr := range fig.Cumulative.Traces {
			assert.Empty(t, tr.X)
		}
	}
}

func TestRender_Idempotent(t *testing.T) {
	table := fixtureTable(t, 22, 8)
	q := Query{Countries: []string{"C03", "Canada", "C10"}, Start: day0, End: day0.AddDate(0, 0, 6), Series: SeriesDailyMA}

	first, err := json.Marshal(Render(table, q))
	require.NoError(t, err)
	second, err := json.Marshal(Render(table, q))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSharePie_TopNAndOther(t *testing.T) {
	table := fixtureTable(t, 25, 2)
	pie := SharePie(table.Snapshot())

	require.Len(t, pie.Slices, TopN+1)
	assert.Equal(t, OtherLabel, pie.Slices[TopN].Label)
	// ascending by cases, the largest country last among the kept ones
	assert.Equal(t, "C05", pie.Slices[0].Label)
	assert.Equal(t, "C24", pie.Slices[TopN-1].Label)

	var sum float64
	for _, s := range pie.Slices {
		sum += s.Value
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// Canada (2) + C00..C04 (20+40+60+80+100) out of the world total
	snap := table.Snapshot()
	assert.InDelta(t, float64(302)/float64(snap.WorldCases), pie.Slices[TopN].Value, 1e-12)
}

func TestSharePie_FewCountries(t *testing.T) {
	table := fixtureTable(t, 2, 1)
	pie := SharePie(table.Snapshot())

	require.Len(t, pie.Slices, 4)
	assert.Equal(t, []string{"Canada", "C00", "C01", OtherLabel}, []string{pie.Slices[0].Label, pie.Slices[1].Label, pie.Slices[2].Label, pie.Slices[3].Label})
	assert.Equal(t, 0.0, pie.Slices[3].Value)
}

func TestSharePie_ZeroWorldCases(t *testing.T) {
	pie := SharePie(dataset.Snapshot{Entries: []dataset.SnapshotEntry{{Country: "A"}, {Country: "B"}}})
	for _, s := range pie.Slices {
		assert.Equal(t, 0.0, s.Value)
	}
}

func TestDeathRateBar(t *testing.T) {
	table := fixtureTable(t, 25, 2)
	bar := DeathRateBar(table.Snapshot())

	require.Len(t, bar.Bars, TopN)
	assert.Equal(t, DeathRateColor, bar.Color)
	assert.Equal(t, AxisDeathRate, bar.YTitle)
	for i := 1; i < len(bar.Bars); i++ {
		assert.GreaterOrEqual(t, bar.Bars[i-1].Value, bar.Bars[i].Value)
	}
	// C24: 48 deaths / 500 cases
	assert.Equal(t, "C24", bar.Bars[0].Label)
	assert.InDelta(t, 9.6, bar.Bars[0].Value, 1e-9)
}

func TestDeathRateBar_ExcludesUndefinedRates(t *testing.T) {
	snap := dataset.Snapshot{Entries: []dataset.SnapshotEntry{
		{Country: "NoCases", Deaths: 2},
		{Country: "A", Cases: 100, Deaths: 5, DeathRate: 0.05, DeathRateDefined: true},
	}}
	bar := DeathRateBar(snap)
	require.Len(t, bar.Bars, 1)
	assert.Equal(t, "A", bar.Bars[0].Label)
	assert.InDelta(t, 5.0, bar.Bars[0].Value, 1e-12)
}

func TestQueryParamsResolve(t *testing.T) {
	table := fixtureTable(t, 3, 4)

	q, err := QueryParams{}.Resolve(table)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultCountry}, q.Countries)
	assert.Equal(t, table.MinDate(), q.Start)
	assert.Equal(t, table.MaxDate(), q.End)
	assert.Equal(t, SeriesDailyNewCases, q.Series)

	q, err = QueryParams{Countries: []string{"C02", "C00", "C02"}, Start: "2020-03-02", End: "2020-03-03", Series: "daily_ma"}.Resolve(table)
	require.NoError(t, err)
	assert.Equal(t, []string{"C02", "C00"}, q.Countries)
	assert.Equal(t, "2020-03-02", dataset.FormatDate(q.Start))
	assert.Equal(t, SeriesDailyMA, q.Series)

	q, err = QueryParams{Countries: []string{}, Series: "daily_cases"}.Resolve(table)
	require.NoError(t, err)
	assert.Empty(t, q.Countries)
	assert.Equal(t, SeriesDailyNewCases, q.Series)
}

func TestQueryParamsResolve_Invalid(t *testing.T) {
	table := fixtureTable(t, 1, 2)

	_, err := QueryParams{Countries: []string{"Atlantis"}}.Resolve(table)
	assert.ErrorIs(t, err, ErrUnknownCountry)

	_, err = QueryParams{Start: "03/01/2020"}.Resolve(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")

	_, err = QueryParams{Series: "weekly"}.Resolve(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of")

	_, err = QueryParams{Countries: []string{""}}.Resolve(table)
	assert.Error(t, err)
}

func TestSummaryTable(t *testing.T) {
	snap := dataset.Snapshot{Entries: []dataset.SnapshotEntry{
		{Country: "Big", Cases: 1234567, Deaths: 12345, CasesPer100k: 3281.456, DeathRate: 0.01, DeathRateDefined: true},
		{Country: "Zero", Cases: 0, Deaths: 0},
		{Country: "alpha", Cases: 1000, Deaths: 50, CasesPer100k: 12.5, DeathRate: 0.05, DeathRateDefined: true},
	}}

	rows := SummaryTable(snap, "", false)
	require.Len(t, rows, 3)
	assert.Equal(t, "Big", rows[0].Country)
	assert.Equal(t, "1,234,567", rows[0].CasesText)
	assert.Equal(t, "12,345", rows[0].DeathsText)
	assert.Equal(t, "3,281.46", rows[0].CasesPer100kText)
	assert.Equal(t, "1.00%", rows[0].DeathPercentText)
	assert.Equal(t, "n/a", rows[1].DeathPercentText)

	byRate := SummaryTable(snap, SortDeathRate, true)
	assert.Equal(t, []string{"alpha", "Big", "Zero"}, []string{byRate[0].Country, byRate[1].Country, byRate[2].Country})
	byRate = SummaryTable(snap, SortDeathRate, false)
	assert.Equal(t, []string{"Big", "alpha", "Zero"}, []string{byRate[0].Country, byRate[1].Country, byRate[2].Country})

	byName := SummaryTable(snap, SortCountry, false)
	assert.Equal(t, []string{"alpha", "Big", "Zero"}, []string{byName[0].Country, byName[1].Country, byName[2].Country})

	assert.True(t, ValidSortKey(SortCasesPer100k))
	assert.False(t, ValidSortKey("population"))
}
