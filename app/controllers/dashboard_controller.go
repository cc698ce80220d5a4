package controllers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/charts"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/dashboard"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/env"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/metrics/counter"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/middleware"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/viewmodel"
)

// HandleDashboard renders the dashboard page. An invalid selection re-renders the page
// with the default selection and an error banner.
func HandleDashboard(c *fiber.Ctx) error {
	t := middleware.Table(c)
	status := fiber.StatusOK

	var msg string
	q, err := queryParams(c, t).Resolve(t)
	if err != nil {
		status = fiber.StatusBadRequest
		msg = err.Error()
		q = dashboard.DefaultQuery(t)
	}

	sortKey, descending, err := sortParams(c)
	if err != nil {
		status = fiber.StatusBadRequest
		msg = errorMessage(err)
		sortKey, descending = "", true
	}

	if status == fiber.StatusOK {
		if err := counter.AddSelection(q.Countries); err != nil {
			log.Warnf("[Counter] Failed to record selection: %v", err)
		}
	}

	vm := viewmodel.NewDashboard(t, q, sortKey, descending)
	vm.Layout.IsError = msg != ""
	vm.Layout.Msg = msg
	vm.Layout.IsDev = env.IsDev()

	return c.Status(status).Render("index", vm, "layouts/main")
}

// HandleChartImage renders one panel, or the 2x2 dashboard composite, as PNG or WebP.
// width and height set the size of a single panel.
func HandleChartImage(c *fiber.Ctx) error {
	panel, format := c.Params("panel"), c.Params("format")
	if !charts.ValidPanel(panel) {
		return notFound(c, fmt.Sprintf("unknown chart panel %q", panel))
	}
	contentType, err := charts.ContentType(format)
	if err != nil {
		return notFound(c, err.Error())
	}

	t := middleware.Table(c)
	q, err := queryParams(c, t).Resolve(t)
	if err != nil {
		return badRequest(c, err)
	}

	opts := charts.Options{Width: c.QueryInt("width"), Height: c.QueryInt("height")}
	var buf bytes.Buffer
	if err := charts.Render(&buf, dashboard.Render(t, q), panel, format, opts); err != nil {
		if errors.Is(err, charts.ErrUnknownPanel) || errors.Is(err, charts.ErrUnknownFormat) {
			return notFound(c, err.Error())
		}
		log.Errorf("[Charts] Rendering %s.%s failed: %v", panel, format, err)
		return fiber.NewError(fiber.StatusInternalServerError, "chart rendering failed")
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=600")
	return c.Send(buf.Bytes())
}
