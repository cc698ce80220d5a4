package statistics

import (
	"github.com/jonathannli/covid-data-visualization/internal/pkg/dashboard"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
)

// Headline holds the world figures shown above the charts
type Headline struct {
	Date           string `json:"date"`
	WorldCases     int64  `json:"world_cases"`
	WorldDeaths    int64  `json:"world_deaths"`
	Countries      int    `json:"countries"`
	Reporting      int    `json:"reporting"`
	Diagnostics    int    `json:"diagnostics"`
	WorldCasesText string `json:"world_cases_text"`
	WorldDeathText string `json:"world_deaths_text"`
	DeathRateText  string `json:"death_rate_text"`
}

// GetHeadline summarizes the snapshot of t. Reporting counts the countries with an
// observation on the latest date, Countries all countries in the table.
func GetHeadline(t *dataset.Table) Headline {
	snap := t.Snapshot()
	rate, defined := dataset.DeathRate(snap.WorldCases, snap.WorldDeaths)

	return Headline{
		Date:           dataset.FormatDate(snap.Date),
		WorldCases:     snap.WorldCases,
		WorldDeaths:    snap.WorldDeaths,
		Countries:      len(t.Countries()),
		Reporting:      len(snap.Entries),
		Diagnostics:    len(t.Diagnostics()),
		WorldCasesText: dashboard.FormatCount(snap.WorldCases),
		WorldDeathText: dashboard.FormatCount(snap.WorldDeaths),
		DeathRateText:  dashboard.FormatDeathPercent(rate, defined),
	}
}
