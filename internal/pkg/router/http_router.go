package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"

	"github.com/jonathannli/covid-data-visualization/app/controllers"
	appcache "github.com/jonathannli/covid-data-visualization/internal/pkg/cache"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/constants"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/env"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/middleware"
)

// Logical Redis databases; DB 0 holds the selection counters.
const (
	limiterDatabase    = 1
	chartCacheDatabase = 2
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get(constants.HealthRoute, controllers.HandleHealth)
	app.Get(constants.DashboardRoute, middleware.RequireDataset, controllers.HandleDashboard)

	// Chart images are a pure function of the URL, cache them by full URL including the query.
	charts := app.Group(constants.ChartsRoute, middleware.RequireDataset, cache.New(cache.Config{
		Expiration:   env.GetDuration("CHART_CACHE_TTL", 10*time.Minute),
		CacheControl: true,
		Storage:      appcache.NewStorage(chartCacheDatabase),
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.OriginalURL()
		},
	}))
	charts.Get("/:panel.:format", controllers.HandleChartImage)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
