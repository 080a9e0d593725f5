package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Copubah/jkia-aircraft-notifier/internal/detection"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testArrival() detection.Arrival {
	altitude := 62.0
	velocity := 31.5
	return detection.Arrival{
		Callsign:   "KQA102",
		Altitude:   &altitude,
		Velocity:   &velocity,
		OnGround:   false,
		DetectedAt: time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC),
	}
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("path should contain sendMessage, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())

	if err := notifier.Notify(context.Background(), Notification{Arrival: testArrival()}); err != nil {
		t.Fatalf("Notify should succeed: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("unexpected chat_id: %#v", received)
	}

	text := received["text"]
	for _, want := range []string{"KQA102", "at 62m altitude", "31.5 m/s", "14:05 UTC"} {
		if !strings.Contains(text, want) {
			t.Fatalf("message should contain %q, got:\n%s", want, text)
		}
	}
}

func TestTelegramNotifierOnGroundStatus(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	arrival := testArrival()
	arrival.OnGround = true

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), Notification{Arrival: arrival}); err != nil {
		t.Fatalf("Notify should succeed: %v", err)
	}

	if !strings.Contains(received["text"], "Aircraft on ground") {
		t.Fatalf("on-ground arrival should render as on ground, got:\n%s", received["text"])
	}
}

func TestTelegramNotifierMissingReadings(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	arrival := detection.Arrival{
		Callsign:   "Unknown",
		OnGround:   true,
		DetectedAt: time.Now().UTC(),
	}

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), Notification{Arrival: arrival}); err != nil {
		t.Fatalf("Notify should succeed: %v", err)
	}

	if !strings.Contains(received["text"], "Velocity: unknown") {
		t.Fatalf("missing velocity should render as unknown, got:\n%s", received["text"])
	}
}

func TestTelegramNotifierAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())

	if err := notifier.Notify(context.Background(), Notification{Arrival: testArrival()}); err == nil {
		t.Fatal("ok=false should surface as an error")
	}
}

func TestTelegramNotifierHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())

	if err := notifier.Notify(context.Background(), Notification{Arrival: testArrival()}); err == nil {
		t.Fatal("HTTP 502 should surface as an error")
	}
}
