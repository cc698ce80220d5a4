package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/jonathannli/covid-data-visualization/app/controllers"
	appcache "github.com/jonathannli/covid-data-visualization/internal/pkg/cache"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/constants"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, cors.New(), limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    appcache.NewStorage(limiterDatabase),
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "too many requests",
			})
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "COVID-19 dashboard api",
			"version": "v1",
		})
	})

	v1 := api.Group("/v1", middleware.RequireDataset)
	v1.Get("/figure", controllers.HandleFigureAPI)
	v1.Get("/snapshot", controllers.HandleSnapshotAPI)
	v1.Get("/countries", controllers.HandleCountriesAPI)
	v1.Get("/diagnostics", controllers.HandleDiagnosticsAPI)
	v1.Get("/stats/selections", controllers.HandleSelectionStatsAPI)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
