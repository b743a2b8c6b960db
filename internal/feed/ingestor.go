package feed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FetchError reports a failed feed retrieval (transport failure or a
// non-2xx status). Callers recover by treating the series as empty.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch feed: %v", e.Err)
	}
	return fmt.Sprintf("fetch feed: unexpected status %d", e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options configures an Ingestor.
type Options struct {
	Client       *http.Client
	Location     *time.Location
	StrictValues bool
	Now          func() time.Time
	Logger       zerolog.Logger
}

// Ingestor fetches the published CSV feed and serves range queries
// against the decoded samples. It owns the cached sample set; callers
// hold a reference and call Refresh/Query explicitly.
type Ingestor struct {
	url    string
	client *http.Client
	loc    *time.Location
	strict bool
	now    func() time.Time
	log    zerolog.Logger

	mu    sync.RWMutex
	seq   uint64
	cache SampleSet
}

// NewIngestor builds an ingestor for the given feed URL.
func NewIngestor(feedURL string, opts Options) *Ingestor {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Ingestor{
		url:    feedURL,
		client: client,
		loc:    loc,
		strict: opts.StrictValues,
		now:    now,
		log:    opts.Logger,
		cache:  SampleSet{},
	}
}

// Refresh fetches and decodes the feed, atomically replacing the cached
// sample set. Concurrent refreshes each build their own result; a result
// is only installed when no newer refresh started while it was in
// flight, so a stale response cannot overwrite fresher data. On failure
// the cache is left untouched and an empty set is returned alongside the
// error.
func (g *Ingestor) Refresh(ctx context.Context) (SampleSet, error) {
	g.mu.Lock()
	g.seq++
	ticket := g.seq
	g.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return SampleSet{}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		feedFetches.WithLabelValues("error").Inc()
		g.log.Error().Err(err).Msg("feed fetch failed")
		return SampleSet{}, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		feedFetches.WithLabelValues("bad_status").Inc()
		g.log.Error().Int("status", resp.StatusCode).Msg("feed fetch returned non-success status")
		return SampleSet{}, &FetchError{Status: resp.StatusCode}
	}

	set, stats := ParseCSV(resp.Body, ParseOptions{
		Location:     g.loc,
		StrictValues: g.strict,
	})
	feedFetches.WithLabelValues("ok").Inc()
	recordStats(stats)
	g.log.Debug().
		Int("rows", stats.Rows).
		Int("samples", stats.Samples).
		Int("skipped", stats.SkippedIncomplete+stats.SkippedBadDate+stats.SkippedBadValue).
		Msg("feed refresh complete")

	g.mu.Lock()
	if ticket == g.seq {
		g.cache = set
	}
	g.mu.Unlock()

	return set, nil
}

// Snapshot returns the currently cached sample set. The set must be
// treated as read-only; queries never mutate it.
func (g *Ingestor) Snapshot() SampleSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cache
}

// Empty reports whether nothing has been ingested yet.
func (g *Ingestor) Empty() bool {
	return len(g.Snapshot()) == 0
}

// Query evaluates a range query against the cached samples. It is
// synchronous and performs no I/O.
func (g *Ingestor) Query(r Range) SeriesSet {
	return QuerySamples(g.Snapshot(), r, g.now(), g.loc)
}
