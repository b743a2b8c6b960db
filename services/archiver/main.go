// The archiver is a one-shot job (run from cron) that fetches the
// published sensor feed and appends anything new to the Postgres
// archive. The dashboard keeps only an in-memory cache; the archive is
// what makes history queries possible beyond the feed's window.
package main

import (
	"context"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlab/agridash/internal/archive"
	"github.com/verdantlab/agridash/internal/feed"
	"github.com/verdantlab/agridash/services/archiver/config"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "archiver").Logger()

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("archiver failed")
	}
}

func run(logger zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+10*time.Second)
	defer cancel()

	ing := feed.NewIngestor(cfg.FeedURL, feed.Options{
		Client:       &http.Client{Timeout: cfg.RequestTimeout},
		Location:     cfg.FeedLocation,
		StrictValues: cfg.StrictValues,
		Logger:       logger,
	})

	set, err := ing.Refresh(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("sensors", len(set)).Msg("fetched feed")

	store, err := archive.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	names := sensorNames(set)
	if cfg.DryRun {
		logger.Info().Int("sensors", len(names)).Msg("dry-run: skipping sensor upsert")
	} else {
		if err := store.UpsertSensors(ctx, names, time.Now().UTC()); err != nil {
			return err
		}
	}

	lastSeen, err := store.LastSampleTimes(ctx, names)
	if err != nil {
		return err
	}

	pending := newSamples(set, lastSeen)
	if len(pending) == 0 {
		logger.Info().Msg("no new samples to insert")
		return nil
	}

	logger.Info().Int("samples", len(pending)).Bool("dry_run", cfg.DryRun).Msg("prepared new samples")

	if cfg.DryRun {
		for _, row := range pending {
			logger.Info().
				Str("sensor", row.Sensor).
				Time("ts", row.Timestamp).
				Float64("value", row.Value).
				Msg("dry-run: would insert")
		}
		return nil
	}

	if err := store.InsertSamples(ctx, pending); err != nil {
		return err
	}

	logger.Info().Int("samples", len(pending)).Msg("inserted samples")
	return nil
}

func sensorNames(set feed.SampleSet) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newSamples selects samples newer than the last archived timestamp per
// sensor. The feed republishes its full window on every fetch, so the
// cutoff is what keeps reruns idempotent.
func newSamples(set feed.SampleSet, lastSeen map[string]time.Time) []archive.SampleRow {
	out := make([]archive.SampleRow, 0)
	for name, samples := range set {
		cutoff, archived := lastSeen[name]
		for _, s := range samples {
			if archived && !s.Timestamp.After(cutoff) {
				continue
			}
			out = append(out, archive.SampleRow{
				Sensor:    name,
				Timestamp: s.Timestamp,
				Value:     s.Value,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sensor != out[j].Sensor {
			return out[i].Sensor < out[j].Sensor
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
