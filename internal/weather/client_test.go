package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestCurrentPassThrough(t *testing.T) {
	const payload = `{"name":"Tunis","main":{"temp":28.4,"humidity":51}}`
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query()
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	raw, err := New(srv.URL, "api-key", nil).Current(context.Background(), "Tunis")
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if string(raw) != payload {
		t.Fatalf("response modified: %s", raw)
	}
	if gotQuery.Get("q") != "Tunis" || gotQuery.Get("appid") != "api-key" || gotQuery.Get("units") != "metric" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
}

func TestForecastCoordinates(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"list":[]}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "api-key", nil).Forecast(context.Background(), 36.8, 10.18); err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	if gotQuery.Get("lat") != "36.8" || gotQuery.Get("lon") != "10.18" {
		t.Fatalf("unexpected coordinates: %v", gotQuery)
	}
}

func TestBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":401}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "bad-key", nil).Current(context.Background(), "Tunis"); err == nil {
		t.Fatalf("expected error on 401")
	}
}
