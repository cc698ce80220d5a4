package dataset

import (
	"sort"
	"time"
)

// SnapshotEntry holds a country's totals on the latest dataset date.
type SnapshotEntry struct {
	Country      string  `json:"country"`
	Cases        int64   `json:"cases"`
	Deaths       int64   `json:"deaths"`
	CasesPer100k float64 `json:"cases_per_100k"`
	// DeathRate is Deaths/Cases as a 0-1 fraction. It is 0 and DeathRateDefined is false
	// when the country has no recorded cases.
	DeathRate        float64 `json:"death_rate"`
	DeathRateDefined bool    `json:"death_rate_defined"`
}

// Snapshot is the cross-country view restricted to the latest dataset date.
type Snapshot struct {
	Date        time.Time       `json:"-"`
	Entries     []SnapshotEntry `json:"entries"`
	WorldCases  int64           `json:"world_cases"`
	WorldDeaths int64           `json:"world_deaths"`
}

// DeathRate returns deaths/cases, guarding the zero denominator.
func DeathRate(cases, deaths int64) (float64, bool) {
	if cases <= 0 {
		return 0, false
	}
	return float64(deaths) / float64(cases), true
}

func buildSnapshot(rows []Row, latest time.Time) Snapshot {
	snap := Snapshot{Date: latest}
	for _, r := range rows {
		if !r.Date.Equal(latest) {
			continue
		}
		rate, ok := DeathRate(r.Cases, r.Deaths)
		snap.Entries = append(snap.Entries, SnapshotEntry{
			Country:          r.Country,
			Cases:            r.Cases,
			Deaths:           r.Deaths,
			CasesPer100k:     r.CasesPer100k,
			DeathRate:        rate,
			DeathRateDefined: ok,
		})
		snap.WorldCases += r.Cases
		snap.WorldDeaths += r.Deaths
	}

	sort.SliceStable(snap.Entries, func(i, j int) bool {
		return snap.Entries[i].Cases > snap.Entries[j].Cases
	})
	return snap
}
