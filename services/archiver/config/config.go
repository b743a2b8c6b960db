package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultFeedURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vSde4l6DpjFKKuGFJ54jziiC9flPCdg726BLuHubS-xteC_Lf0IqmFmT0Ck8tw-UdV9JwoXNlYYEtcd/pub?gid=0&single=true&output=csv"

	defaultRequestTimeout = 30 * time.Second
)

// Config holds runtime configuration for the archiver job.
type Config struct {
	DatabaseURL    string
	FeedURL        string
	FeedLocation   *time.Location
	RequestTimeout time.Duration
	StrictValues   bool
	DryRun         bool
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		FeedURL:        defaultFeedURL,
		FeedLocation:   time.Local,
		RequestTimeout: defaultRequestTimeout,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	if v := strings.TrimSpace(os.Getenv("FEED_URL")); v != "" {
		cfg.FeedURL = v
	}

	if v := strings.TrimSpace(os.Getenv("FEED_TIMEZONE")); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid FEED_TIMEZONE: %w", err)
		}
		cfg.FeedLocation = loc
	}

	if v := strings.TrimSpace(os.Getenv("ARCHIVER_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid ARCHIVER_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	strict := strings.TrimSpace(os.Getenv("FEED_STRICT_VALUES"))
	cfg.StrictValues = strict == "1" || strings.EqualFold(strict, "true")

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	return cfg, nil
}
