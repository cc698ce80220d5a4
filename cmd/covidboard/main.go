package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/cache"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/constants"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/env"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/router"
	"github.com/jonathannli/covid-data-visualization/internal/pkg/source"
	"github.com/jonathannli/covid-data-visualization/views"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "8050")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()

	// The dataset is loaded once, before the server accepts requests.
	table, err := loadDataset()
	if err != nil {
		log.Fatalf("[Dataset] %v", err)
	}
	dataset.SetDefault(table)

	cache.SetupCache()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/covidboard to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		Views:   html.NewFileSystem(http.FS(views.FS), ".html"),
		AppName: "covidboard",
	})

	// recovery, request ids and logging
	app.Use(recover.New(), requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}), logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${url}\n",
	}))
	app.Use(compress.New(), etag.New())

	// fiber metrics, only with credentials configured
	if password := env.GetEnv("METRICS_PASSWORD", ""); password != "" {
		app.Get(constants.MetricsRoute, basicauth.New(basicauth.Config{
			Users: map[string]string{
				env.GetEnv("METRICS_USER", "admin"): password,
			},
		}), monitor.New(monitor.Config{Title: "covidboard metrics"}))
	} else {
		log.Warn("[Metrics] METRICS_PASSWORD not set, /metrics disabled")
	}

	// static files
	app.Static("/", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: constants.DocsRoute,
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
		Title:    "COVID-19 dashboard API",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}

func loadDataset() (*dataset.Table, error) {
	cfg, err := source.LoadConfig()
	if err != nil {
		return nil, err
	}
	src, err := source.New(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	return source.Load(ctx, src, dataset.WithStrict(cfg.Strict))
}
