package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"strconv"
	"time"

	server "github.com/sabbivikas/mi-amore"
	"github.com/sabbivikas/mi-amore/internal/errors"
	"github.com/sabbivikas/mi-amore/internal/net/ws"
	"github.com/sabbivikas/mi-amore/internal/store"
	"github.com/sabbivikas/mi-amore/internal/telemetry"
	"github.com/sabbivikas/mi-amore/logging"
)

type HTTPHandlerConfig struct {
	ClientDir string
	Logger    *log.Logger
	Metrics   *telemetry.Counters
	// Router exposes logging drop counters on /diagnostics when set.
	Router *logging.Router
	// Sessions serves /ws; nil builds a handler on the hub.
	Sessions *ws.Handler
}

func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string               `json:"status"`
			ServerTime int64                `json:"serverTime"`
			Hub        server.Diagnostics   `json:"hub"`
			Telemetry  map[string]uint64    `json:"telemetry,omitempty"`
			Logging    *logging.RouterStats `json:"logging,omitempty"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Hub:        hub.DiagnosticsSnapshot(),
			Telemetry:  cfg.Metrics.Snapshot(),
		}
		if cfg.Router != nil {
			stats := cfg.Router.Stats()
			payload.Logging = &stats
		}
		writeJSON(w, logger, payload)
	})

	mux.HandleFunc("/matches/recent", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		limit := store.DefaultRecentLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				httpError(w, "invalid limit", nethttp.StatusBadRequest)
				return
			}
			limit = parsed
		}
		matches, err := hub.RecentMatches(r.Context(), limit)
		if err != nil {
			logger.Printf("failed to list recent matches: %v", err)
			httpError(w, "failed to list matches", errors.GetCode(err).HTTPStatus())
			return
		}
		writeJSON(w, logger, struct {
			Matches []store.Result `json:"matches"`
		}{Matches: matches})
	})

	sessions := cfg.Sessions
	if sessions == nil {
		wsCfg := ws.HandlerConfig{Logger: logger}
		if cfg.Metrics != nil {
			wsCfg.Metrics = cfg.Metrics
		}
		sessions = ws.NewHandler(hub, wsCfg)
	}
	mux.HandleFunc("/ws", sessions.Handle)

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, logger *log.Logger, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("failed to encode response: %v", err)
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
