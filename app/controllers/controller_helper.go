package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/dashboard"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
)

// queryParams reads the shared selection parameters. countries may repeat and each value
// may hold a comma separated list; a value naming a known country is taken as is, so
// names containing commas survive. A present but empty countries parameter is an
// explicit empty selection.
func queryParams(c *fiber.Ctx, t *dataset.Table) dashboard.QueryParams {
	p := dashboard.QueryParams{
		Start:  strings.TrimSpace(c.Query("start")),
		End:    strings.TrimSpace(c.Query("end")),
		Series: strings.TrimSpace(c.Query("series")),
	}

	args := c.Context().QueryArgs()
	if !args.Has("countries") {
		return p
	}
	p.Countries = []string{}
	for _, raw := range args.PeekMulti("countries") {
		p.Countries = append(p.Countries, splitCountries(t, string(raw))...)
	}
	return p
}

func splitCountries(t *dataset.Table, raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t.HasCountry(raw) {
		return []string{raw}
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// sortParams reads the summary table order. An empty key keeps snapshot order.
func sortParams(c *fiber.Ctx) (string, bool, error) {
	key := c.Query("sort")
	if key != "" && !dashboard.ValidSortKey(key) {
		return "", false, fiber.NewError(fiber.StatusBadRequest, "sort must be one of: country cases deaths cases_100k death_rate")
	}
	switch dir := c.Query("dir", "desc"); dir {
	case "desc":
		return key, true, nil
	case "asc":
		return key, false, nil
	}
	return "", false, fiber.NewError(fiber.StatusBadRequest, "dir must be one of: asc desc")
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "bad_request",
		"message": errorMessage(err),
	})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":   "not_found",
		"message": msg,
	})
}

func errorMessage(err error) string {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}
