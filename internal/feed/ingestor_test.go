package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feedBody = header +
	"humidity,01/06/2024,08:00:00,55.2\n" +
	"humidity,01/06/2024,14:00:00,60,1\n" +
	"temperature,01/06/2024,09:00:00,21.0\n"

func TestRefreshPopulatesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	now := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	ing := NewIngestor(srv.URL, Options{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})

	set, err := ing.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if len(set["humidity"]) != 2 || len(set["temperature"]) != 1 {
		t.Fatalf("unexpected sample set: %+v", set)
	}
	if set["humidity"][1].Value != 60.1 {
		t.Fatalf("comma decimal = %v, want 60.1", set["humidity"][1].Value)
	}

	series := ing.Query(RangeDay)
	if len(series["humidity"]) != 2 || len(series["temperature"]) != 1 {
		t.Fatalf("unexpected day series: %+v", series)
	}
}

func TestRefreshBadStatusLeavesCache(t *testing.T) {
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	ing := NewIngestor(srv.URL, Options{Location: time.UTC})
	if _, err := ing.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}

	fail = true
	set, err := ing.Refresh(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusInternalServerError {
		t.Fatalf("expected FetchError with status 500, got %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("failed refresh must return an empty set, got %+v", set)
	}
	if ing.Empty() {
		t.Fatalf("failed refresh must not clear the cache")
	}
}

func TestRefreshSupersededResultIsDiscarded(t *testing.T) {
	first := make(chan struct{})
	release := make(chan struct{})
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			close(first)
			<-release
			w.Write([]byte(header + "temperature,01/06/2024,08:00:00,1.0\n"))
			return
		}
		w.Write([]byte(header + "temperature,01/06/2024,08:00:00,2.0\n"))
	}))
	defer srv.Close()

	ing := NewIngestor(srv.URL, Options{Location: time.UTC})

	done := make(chan error, 1)
	go func() {
		_, err := ing.Refresh(context.Background())
		done <- err
	}()
	<-first

	// Second refresh starts after the first and finishes before it.
	if _, err := ing.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	got := ing.Snapshot()["temperature"][0].Value
	if got != 2.0 {
		t.Fatalf("stale refresh overwrote newer data: value = %v", got)
	}
}

func TestRefreshUnreachableHost(t *testing.T) {
	ing := NewIngestor("http://127.0.0.1:1", Options{
		Location: time.UTC,
		Client:   &http.Client{Timeout: 500 * time.Millisecond},
	})
	set, err := ing.Refresh(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty set on network failure")
	}
}
