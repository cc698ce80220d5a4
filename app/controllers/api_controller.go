package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/cache"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/dashboard"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/metrics/counter"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/middleware"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/statistics"
)

const defaultTopSelections = 10

// HandleFigureAPI returns the four chart specifications for the selection.
func HandleFigureAPI(c *fiber.Ctx) error {
	t := middleware.Table(c)
	q, err := queryParams(c, t).Resolve(t)
	if err != nil {
		return badRequest(c, err)
	}

	if err := counter.AddSelection(q.Countries); err != nil {
		log.Warnf("[Counter] Failed to record selection: %v", err)
	}

	return c.JSON(fiber.Map{
		"query": fiber.Map{
			"countries": q.Countries,
			"start":     dataset.FormatDate(q.Start),
			"end":       dataset.FormatDate(q.End),
			"series":    q.Series,
		},
		"figure": dashboard.Render(t, q),
	})
}

// HandleSnapshotAPI returns the summary table of the latest date with world totals.
func HandleSnapshotAPI(c *fiber.Ctx) error {
	sortKey, descending, err := sortParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	t := middleware.Table(c)
	snap := t.Snapshot()
	return c.JSON(fiber.Map{
		"date":         dataset.FormatDate(snap.Date),
		"world_cases":  snap.WorldCases,
		"world_deaths": snap.WorldDeaths,
		"columns":      dashboard.SummaryColumns,
		"rows":         dashboard.SummaryTable(snap, sortKey, descending),
	})
}

// HandleCountriesAPI returns the selector options and the selectable date range.
func HandleCountriesAPI(c *fiber.Ctx) error {
	t := middleware.Table(c)
	def := dashboard.DefaultQuery(t)
	return c.JSON(fiber.Map{
		"countries": t.Countries(),
		"default":   def.Countries,
		"min_date":  dataset.FormatDate(t.MinDate()),
		"max_date":  dataset.FormatDate(t.MaxDate()),
	})
}

// HandleDiagnosticsAPI lists the validation findings of the loaded dataset. An optional
// kind parameter filters them.
func HandleDiagnosticsAPI(c *fiber.Ctx) error {
	t := middleware.Table(c)
	kind := dataset.DiagnosticKind(c.Query("kind"))

	out := make([]dataset.Diagnostic, 0, len(t.Diagnostics()))
	for _, d := range t.Diagnostics() {
		if kind == "" || d.Kind == kind {
			out = append(out, d)
		}
	}
	return c.JSON(fiber.Map{
		"count":       len(out),
		"diagnostics": out,
	})
}

// HandleSelectionStatsAPI returns the most selected countries. The list is empty
// when the cache is disabled.
func HandleSelectionStatsAPI(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultTopSelections)
	if limit < 1 || limit > 100 {
		return badRequest(c, fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 100"))
	}

	top, err := counter.TopSelections(limit)
	if err != nil {
		log.Errorf("[Counter] Failed to read selections: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "unavailable",
			"message": "selection statistics unavailable",
		})
	}
	return c.JSON(fiber.Map{
		"selections": top,
	})
}

// HandleHealth reports whether a dataset is loaded and the cache is reachable.
func HandleHealth(c *fiber.Ctx) error {
	t := dataset.Default()
	if t == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "loading",
			"dataset": false,
		})
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"dataset":  true,
		"headline": statistics.GetHeadline(t),
		"cache":    cacheStatus(),
	})
}

func cacheStatus() string {
	if !cache.Enabled() {
		return "disabled"
	}
	if err := cache.Ping(); err != nil {
		return "unreachable"
	}
	return "ok"
}
