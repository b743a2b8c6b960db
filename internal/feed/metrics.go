package feed

import "github.com/prometheus/client_golang/prometheus"

var (
	feedFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agridash_feed_fetches_total",
		Help: "Feed fetch attempts by outcome.",
	}, []string{"outcome"})

	feedSamples = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agridash_feed_samples_total",
		Help: "Samples decoded from the feed.",
	})

	feedRowsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agridash_feed_rows_skipped_total",
		Help: "Feed rows discarded during decode, by reason.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(feedFetches, feedSamples, feedRowsSkipped)
}

func recordStats(stats ParseStats) {
	feedSamples.Add(float64(stats.Samples))
	feedRowsSkipped.WithLabelValues("incomplete").Add(float64(stats.SkippedIncomplete))
	feedRowsSkipped.WithLabelValues("bad_date").Add(float64(stats.SkippedBadDate))
	feedRowsSkipped.WithLabelValues("bad_value").Add(float64(stats.SkippedBadValue))
}
