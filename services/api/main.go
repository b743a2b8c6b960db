package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlab/agridash/internal/archive"
	"github.com/verdantlab/agridash/internal/devicemq"
	"github.com/verdantlab/agridash/internal/feed"
	"github.com/verdantlab/agridash/internal/identity"
	"github.com/verdantlab/agridash/internal/inference"
	"github.com/verdantlab/agridash/internal/rtdb"
	"github.com/verdantlab/agridash/internal/weather"
	"github.com/verdantlab/agridash/services/api/config"
	httpserver "github.com/verdantlab/agridash/services/api/http"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps := httpserver.Deps{
		Ingestor: feed.NewIngestor(cfg.FeedURL, feed.Options{
			Location:     cfg.FeedLocation,
			StrictValues: cfg.FeedStrictValues,
			Logger:       logger,
		}),
		Logger: logger,
	}

	if cfg.DatabaseURL != "" {
		store, err := archive.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("db connection error")
		}
		defer store.Close()
		deps.Store = store
	}

	if cfg.RTDBBaseURL != "" {
		deps.Realtime = rtdb.New(cfg.RTDBBaseURL, cfg.RTDBSecret, nil)
	}
	if cfg.IdentityAPIKey != "" {
		deps.Identity = identity.New(cfg.IdentityBaseURL, cfg.IdentityAPIKey, nil)
	}
	if cfg.WeatherAPIKey != "" {
		deps.Weather = weather.New(cfg.WeatherBaseURL, cfg.WeatherAPIKey, nil)
	}
	if cfg.InferenceURL != "" {
		deps.Inference = inference.New(cfg.InferenceURL, nil)
	}
	if cfg.MQTTBrokerURL != "" {
		relay, err := devicemq.Connect(devicemq.Config{
			BrokerURL:   cfg.MQTTBrokerURL,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("MQTT connection error")
		}
		defer relay.Close()
		deps.Relay = relay
	}

	// Warm the chart cache; a cold start with an unreachable feed still
	// serves (empty) charts.
	warmCtx, warmCancel := context.WithTimeout(ctx, 30*time.Second)
	if _, err := deps.Ingestor.Refresh(warmCtx); err != nil {
		logger.Warn().Err(err).Msg("initial feed refresh failed")
	}
	warmCancel()

	srv := httpserver.New(cfg, deps)
	logger.Info().Str("addr", cfg.ListenAddr()).Msg("REST API listening")

	if err := srv.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
