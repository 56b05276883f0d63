package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds configuration for the normalizer and the dataset service.
// Environment variables are parsed from the DUST_ prefix, e.g. DUST_KEY,
// DUST_DATA_ROOT, DUST_HTTP_PORT.
type Config struct {
	// Key is the upstream API credential, sent as HTTP Basic auth. Required
	// for ingestion runs; the dataset service does not use it.
	Key string `envconfig:"KEY" default:""`

	// APIBaseURL is the upstream ingestion API root.
	APIBaseURL string `envconfig:"API_BASE_URL" default:"https://api.burningman.org/api/v1"`

	// DatasetName prefixes the per-year dataset folders (ttitd-2023 etc.).
	DatasetName string `envconfig:"DATASET_NAME" default:"ttitd"`

	// DataRoot is the primary output root for normalized dataset files. Like
	// MirrorRoot, its per-dataset directories must already exist.
	DataRoot string `envconfig:"DATA_ROOT" default:"./src/assets"`

	// MirrorRoot is the second output root. Its per-dataset directories must
	// already exist; a missing mirror directory is a configuration error.
	MirrorRoot string `envconfig:"MIRROR_ROOT" default:"../dust-web/src/assets/data"`

	// LiveBaseURL serves published dataset files to online clients.
	LiveBaseURL string `envconfig:"LIVE_BASE_URL" default:"https://dust.events/assets/data-v2"`

	// DatasetID selects which dataset folder the service loads, e.g. "ttitd-2023".
	DatasetID string `envconfig:"DATASET_ID" default:"ttitd-2023"`

	// HTTPPort is the dataset service listen port.
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// ImageQuality is the JPEG quality used when converting art thumbnails.
	ImageQuality int `envconfig:"IMAGE_QUALITY" default:"70"`

	// ConvertYears lists the years whose art images are downloaded and
	// converted during a normalizer run.
	ConvertYears []string `envconfig:"CONVERT_YEARS" default:"2023"`

	// EventZone is the IANA timezone the event takes place in; "today" and
	// day-filter resolution happen in this zone.
	EventZone string `envconfig:"EVENT_ZONE" default:"America/Los_Angeles"`

	// Live selects the live loader (remote fetch with local fallback) for the
	// dataset service.
	Live bool `envconfig:"LIVE" default:"false"`
}

// New creates a Config by parsing DUST_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("dust", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// RequireKey returns an error when the ingestion credential is unset. The
// normalizer calls this before any network activity.
func (c *Config) RequireKey() error {
	if c.Key == "" {
		return fmt.Errorf("DUST_KEY is not set")
	}
	return nil
}
