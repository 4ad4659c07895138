package net

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	server "github.com/sabbivikas/mi-amore"
	"github.com/sabbivikas/mi-amore/internal/store"
	"github.com/sabbivikas/mi-amore/internal/telemetry"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestHealth(t *testing.T) {
	handler := NewHTTPHandler(server.NewHub(), HTTPHandlerConfig{Logger: quietLogger()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	if resp.Code != http.StatusOK || resp.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", resp.Code, resp.Body.String())
	}
}

func TestDiagnosticsReportsHubAndTelemetry(t *testing.T) {
	metrics := telemetry.NewCounters()
	metrics.Add(telemetry.MetricTicks, 3)
	cfg := server.DefaultHubConfig()
	cfg.Metrics = metrics
	hub := server.NewHubWithConfig(cfg)
	hub.Connect(nil)

	handler := NewHTTPHandler(hub, HTTPHandlerConfig{Logger: quietLogger(), Metrics: metrics})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/diagnostics", nil))

	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", contentType)
	}
	var payload struct {
		Status    string             `json:"status"`
		Hub       server.Diagnostics `json:"hub"`
		Telemetry map[string]uint64  `json:"telemetry"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode diagnostics: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("unexpected status %q", payload.Status)
	}
	if payload.Hub.Connections != 1 || payload.Hub.TickRate != 60 {
		t.Fatalf("unexpected hub diagnostics %+v", payload.Hub)
	}
	if payload.Telemetry[telemetry.MetricTicks] != 3 {
		t.Fatalf("expected tick counter in telemetry, got %v", payload.Telemetry)
	}
	if payload.Telemetry[telemetry.MetricMessagesSent] != 1 {
		t.Fatalf("expected the welcome message to be counted, got %v", payload.Telemetry)
	}
}

func TestRecentMatches(t *testing.T) {
	recorder := store.NewMemory(0)
	base := time.UnixMilli(1_700_000_000_000)
	for _, id := range []string{"m1", "m2", "m3"} {
		base = base.Add(time.Minute)
		if err := recorder.Record(context.Background(), store.Result{MatchID: id, RoomCode: "ABCDE", EndedAt: base}); err != nil {
			t.Fatalf("failed to seed recorder: %v", err)
		}
	}
	cfg := server.DefaultHubConfig()
	cfg.Recorder = recorder
	handler := NewHTTPHandler(server.NewHubWithConfig(cfg), HTTPHandlerConfig{Logger: quietLogger()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/matches/recent?limit=2", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload struct {
		Matches []store.Result `json:"matches"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode matches: %v", err)
	}
	if len(payload.Matches) != 2 || payload.Matches[0].MatchID != "m3" {
		t.Fatalf("unexpected matches %+v", payload.Matches)
	}

	for _, target := range []string{"/matches/recent?limit=zero", "/matches/recent?limit=-1"} {
		resp = httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, resp.Code)
		}
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/matches/recent", nil))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestServesClientDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>mi amore</h1>"), 0o644); err != nil {
		t.Fatalf("failed to write index: %v", err)
	}
	handler := NewHTTPHandler(server.NewHub(), HTTPHandlerConfig{ClientDir: dir, Logger: quietLogger()})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK || resp.Body.String() != "<h1>mi amore</h1>" {
		t.Fatalf("unexpected static response %d %q", resp.Code, resp.Body.String())
	}

	bare := NewHTTPHandler(server.NewHub(), HTTPHandlerConfig{Logger: quietLogger()})
	resp = httptest.NewRecorder()
	bare.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a client dir, got %d", resp.Code)
	}
}
