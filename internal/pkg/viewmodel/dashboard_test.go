package viewmodel

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/dashboard"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
)

func fixtureTable(t *testing.T) *dataset.Table {
	t.Helper()
	d1 := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	table, err := dataset.Prepare([]dataset.Observation{
		{Country: "Canada", Date: d1, Cases: 100, Deaths: 5},
		{Country: "Canada", Date: d1.AddDate(0, 0, 1), Cases: 120, Deaths: 6},
		{Country: "Bonaire, Sint Eustatius and Saba", Date: d1, Cases: 3},
		{Country: "Bonaire, Sint Eustatius and Saba", Date: d1.AddDate(0, 0, 1), Cases: 4},
	})
	require.NoError(t, err)
	return table
}

func TestNewDashboard(t *testing.T) {
	table := fixtureTable(t)
	q := dashboard.DefaultQuery(table)

	vm := NewDashboard(table, q, dashboard.SortCases, true)

	assert.Equal(t, "2020-06-01", vm.MinDate)
	assert.Equal(t, "2020-06-02", vm.MaxDate)
	assert.Equal(t, vm.MinDate, vm.Start)
	assert.Equal(t, vm.MaxDate, vm.End)
	assert.Equal(t, "124", vm.Headline.WorldCasesText)

	require.Len(t, vm.Countries, 2)
	assert.True(t, vm.Countries[0].Selected)
	assert.False(t, vm.Countries[1].Selected)

	require.Len(t, vm.Series, 2)
	assert.True(t, vm.Series[0].Checked)
	assert.False(t, vm.Series[1].Checked)

	assert.True(t, strings.HasPrefix(vm.ChartURL, "/charts/dashboard.png?"))
	require.Len(t, vm.Panels, 4)
	assert.True(t, strings.HasPrefix(vm.Panels[3].WebPURL, "/charts/deathrate.webp?"))

	require.Len(t, vm.Rows, 2)
	assert.Equal(t, "Canada", vm.Rows[0].Country)

	require.Len(t, vm.Columns, len(dashboard.SummaryColumns))
	cases := vm.Columns[1]
	assert.True(t, cases.Active)
	assert.True(t, cases.Descending)
	u, err := url.Parse(cases.SortURL)
	require.NoError(t, err)
	assert.Equal(t, "asc", u.Query().Get("dir"))
	assert.Equal(t, "desc", mustQuery(t, vm.Columns[2].SortURL).Get("dir"))
	assert.Equal(t, "asc", mustQuery(t, vm.Columns[0].SortURL).Get("dir"))
}

func TestSelectionValues(t *testing.T) {
	q := dashboard.Query{
		Countries: []string{"Bonaire, Sint Eustatius and Saba", "Canada"},
		Start:     time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2020, 6, 2, 0, 0, 0, 0, time.UTC),
		Series:    dashboard.SeriesDailyMA,
	}
	v := SelectionValues(q)
	assert.Equal(t, []string{"Bonaire, Sint Eustatius and Saba", "Canada"}, v["countries"])
	assert.Equal(t, "2020-06-01", v.Get("start"))
	assert.Equal(t, "daily_ma", v.Get("series"))

	q.Countries = nil
	v = SelectionValues(q)
	assert.Equal(t, []string{""}, v["countries"])
}

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query()
}
