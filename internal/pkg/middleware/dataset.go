package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
)

// KeyDataset is the Locals key holding the table a request works on.
const KeyDataset = "dataset"

// RequireDataset pins the loaded table for the request, or answers 503 when none is
// loaded yet. API routes get JSON, pages plain text.
func RequireDataset(c *fiber.Ctx) error {
	t := dataset.Default()
	if t == nil {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   "unavailable",
				"message": "dataset not loaded",
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).SendString("Dataset not loaded")
	}
	c.Locals(KeyDataset, t)
	return c.Next()
}

// Table returns the table pinned by RequireDataset, falling back to the default table.
func Table(c *fiber.Ctx) *dataset.Table {
	if t, ok := c.Locals(KeyDataset).(*dataset.Table); ok && t != nil {
		return t
	}
	return dataset.Default()
}
