package source

import (
	"errors"
	"time"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/env"
)

// DefaultURL is the published international case table.
const DefaultURL = "https://mapdashbd.s3.ca-central-1.amazonaws.com/download/InternationalCovid19Cases.csv"

// Config holds dataset source configuration
type Config struct {
	URL     string
	Timeout time.Duration
	Strict  bool

	// S3 settings, used for s3:// URLs
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	EndpointURL     string // Optional for S3-compatible services
}

// LoadConfig loads source configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		URL:             env.GetEnv("DATA_SOURCE_URL", DefaultURL),
		Strict:          env.GetBool("DATA_STRICT", false),
		Region:          env.GetEnv("S3_REGION", "ca-central-1"),
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
	}

	timeout, err := time.ParseDuration(env.GetEnv("DATA_FETCH_TIMEOUT", "60s"))
	if err != nil {
		return nil, errors.New("DATA_FETCH_TIMEOUT must be a duration such as 60s")
	}
	config.Timeout = timeout

	if config.URL == "" {
		return nil, errors.New("DATA_SOURCE_URL must not be empty")
	}
	if (config.AccessKeyID == "") != (config.SecretAccessKey == "") {
		return nil, errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
	}

	return config, nil
}

// HasStaticCredentials returns true if S3 access keys are configured
func (c *Config) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}
