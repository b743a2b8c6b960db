package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultFeedURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vSde4l6DpjFKKuGFJ54jziiC9flPCdg726BLuHubS-xteC_Lf0IqmFmT0Ck8tw-UdV9JwoXNlYYEtcd/pub?gid=0&single=true&output=csv"

	defaultIdentityBaseURL = "https://identitytoolkit.googleapis.com/v1"
	defaultWeatherBaseURL  = "https://api.openweathermap.org/data/2.5"
	defaultWeatherCity     = "Tunis"
	defaultMQTTClientID    = "agridash-api"
	defaultMQTTTopicPrefix = "farm/greenhouse"
)

// Config holds environment-driven settings for the REST API.
type Config struct {
	Port int

	FeedURL          string
	FeedLocation     *time.Location
	FeedStrictValues bool

	// DatabaseURL is optional; history endpoints are disabled without it.
	DatabaseURL string

	RTDBBaseURL string
	RTDBSecret  string

	IdentityBaseURL string
	IdentityAPIKey  string

	WeatherBaseURL string
	WeatherAPIKey  string
	WeatherCity    string

	InferenceURL string

	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:            8080,
		FeedURL:         defaultFeedURL,
		FeedLocation:    time.Local,
		IdentityBaseURL: defaultIdentityBaseURL,
		WeatherBaseURL:  defaultWeatherBaseURL,
		WeatherCity:     defaultWeatherCity,
		MQTTClientID:    defaultMQTTClientID,
		MQTTTopicPrefix: defaultMQTTTopicPrefix,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
		cfg.Port = port
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
	strict := strings.TrimSpace(os.Getenv("FEED_STRICT_VALUES"))
	cfg.FeedStrictValues = strict == "1" || strings.EqualFold(strict, "true")

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	cfg.RTDBBaseURL = strings.TrimSpace(os.Getenv("RTDB_BASE_URL"))
	cfg.RTDBSecret = strings.TrimSpace(os.Getenv("RTDB_SECRET"))

	if v := strings.TrimSpace(os.Getenv("IDENTITY_BASE_URL")); v != "" {
		cfg.IdentityBaseURL = v
	}
	cfg.IdentityAPIKey = strings.TrimSpace(os.Getenv("IDENTITY_API_KEY"))

	if v := strings.TrimSpace(os.Getenv("WEATHER_BASE_URL")); v != "" {
		cfg.WeatherBaseURL = v
	}
	cfg.WeatherAPIKey = strings.TrimSpace(os.Getenv("WEATHER_API_KEY"))
	if v := strings.TrimSpace(os.Getenv("WEATHER_CITY")); v != "" {
		cfg.WeatherCity = v
	}

	cfg.InferenceURL = strings.TrimSpace(os.Getenv("INFERENCE_URL"))

	cfg.MQTTBrokerURL = strings.TrimSpace(os.Getenv("MQTT_BROKER_URL"))
	if v := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID")); v != "" {
		cfg.MQTTClientID = v
	}
	cfg.MQTTUsername = strings.TrimSpace(os.Getenv("MQTT_USERNAME"))
	cfg.MQTTPassword = os.Getenv("MQTT_PASSWORD")
	if v := strings.TrimSpace(os.Getenv("MQTT_TOPIC_PREFIX")); v != "" {
		cfg.MQTTTopicPrefix = v
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
