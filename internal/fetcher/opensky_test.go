package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Copubah/jkia-aircraft-notifier/internal/config"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testBox() config.BoundingBox {
	return config.BoundingBox{LatMin: -1.5, LatMax: -1.1, LonMin: 36.7, LonMax: 37.2}
}

const statesPayload = `{
  "time": 1767100000,
  "states": [
    ["7a0042", "KQA102  ", "Kenya", 1767099990, 1767099995, 36.92, -1.31, 45.7, true, 12.3, 180.0, null, null, 50.0, null, false, 0],
    ["7a0043", "ETH305  ", "Ethiopia", 1767099990, 1767099995, 36.95, -1.29, null, false, null, 90.0, null, null, null, null, false, 0],
    ["short", "ROW"]
  ]
}`

func TestFetchStatesSuccess(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/states/all" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(statesPayload))
	}))
	defer srv.Close()

	o := NewOpenSky(OpenSkyOptions{
		BaseURL:   srv.URL,
		Box:       testBox(),
		Timeout:   time.Second,
		UserAgent: "test",
	}, noopLogger())

	states, err := o.FetchStates(context.Background())
	if err != nil {
		t.Fatalf("FetchStates should succeed: %v", err)
	}

	if len(states) != 2 {
		t.Fatalf("expected 2 decoded states (short row skipped), got %d", len(states))
	}

	first := states[0]
	if first.ICAO24 != "7a0042" {
		t.Fatalf("unexpected icao24 %q", first.ICAO24)
	}
	if first.Callsign != "KQA102  " {
		t.Fatalf("callsign should be raw at fetch stage, got %q", first.Callsign)
	}
	if !first.OnGround {
		t.Fatal("first state should be on ground")
	}
	if first.BaroAltitude == nil || *first.BaroAltitude != 45.7 {
		t.Fatalf("unexpected altitude %v", first.BaroAltitude)
	}
	if first.Velocity == nil || *first.Velocity != 12.3 {
		t.Fatalf("unexpected velocity %v", first.Velocity)
	}

	second := states[1]
	if second.BaroAltitude != nil || second.Velocity != nil {
		t.Fatal("null readings should decode to nil pointers")
	}
	if second.OnGround {
		t.Fatal("second state should not be on ground")
	}

	if gotQuery["lamin"][0] != "-1.5" || gotQuery["lomax"][0] != "37.2" {
		t.Fatalf("bounding box not forwarded: %v", gotQuery)
	}
}

func TestFetchStatesEmptyRegion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"time": 1767100000, "states": null}`))
	}))
	defer srv.Close()

	o := NewOpenSky(OpenSkyOptions{BaseURL: srv.URL, Box: testBox(), Timeout: time.Second}, noopLogger())

	states, err := o.FetchStates(context.Background())
	if err != nil {
		t.Fatalf("empty region is not an error: %v", err)
	}
	if len(states) != 0 {
		t.Fatalf("expected no states, got %d", len(states))
	}
}

func TestFetchStatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer srv.Close()

	o := NewOpenSky(OpenSkyOptions{BaseURL: srv.URL, Box: testBox(), Timeout: time.Second}, noopLogger())

	if _, err := o.FetchStates(context.Background()); err == nil {
		t.Fatal("HTTP 429 should surface as an error")
	}
}

func TestFetchStatesMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	o := NewOpenSky(OpenSkyOptions{BaseURL: srv.URL, Box: testBox(), Timeout: time.Second}, noopLogger())

	if _, err := o.FetchStates(context.Background()); err == nil {
		t.Fatal("unusable payload should surface as an error")
	}
}

func TestFetchStatesInvalidBox(t *testing.T) {
	o := NewOpenSky(OpenSkyOptions{BaseURL: "http://example.invalid", Box: config.BoundingBox{}}, noopLogger())

	if _, err := o.FetchStates(context.Background()); err == nil {
		t.Fatal("empty bounding box should be rejected")
	}
}

func TestFetchStatesBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "watcher" || pass != "secret" {
			t.Fatalf("basic auth not forwarded: %q %q %v", user, pass, ok)
		}
		_, _ = w.Write([]byte(`{"time": 0, "states": []}`))
	}))
	defer srv.Close()

	o := NewOpenSky(OpenSkyOptions{
		BaseURL:  srv.URL,
		Box:      testBox(),
		Timeout:  time.Second,
		Username: "watcher",
		Password: "secret",
	}, noopLogger())

	if _, err := o.FetchStates(context.Background()); err != nil {
		t.Fatalf("FetchStates should succeed: %v", err)
	}
}
