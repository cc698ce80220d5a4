package constants

// Static route constants
const (
	DashboardRoute = "/"
	ChartsRoute    = "/charts"
	HealthRoute    = "/healthz"
	MetricsRoute   = "/metrics"
	APIRoute       = "/api"
	APIv1Route     = "/api/v1"
	DocsRoute      = "/docs/api/"
	// Chart path without leading slash for URL construction
	ChartsPath = "charts"
)
