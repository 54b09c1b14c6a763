// Package api is the streaming-mode admin surface: health, stats, and
// Prometheus metrics.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openretail/storewatch/internal/config"
	"github.com/openretail/storewatch/internal/engine"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	proc   *engine.Processor
	loader *config.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes. loader may be nil
// when the engine runs on the built-in config.
func New(proc *engine.Processor, loader *config.Loader) http.Handler {
	h := &Handler{proc: proc, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /stats", h.stats)
	h.mux.HandleFunc("POST /config/reload", h.reloadConfig)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /stats — engine counters.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"records_processed": h.proc.Records(),
		"incidents_emitted": h.proc.Incidents(),
		"ledger_skus":       h.proc.LedgerSize(),
	})
}

// POST /config/reload — re-read thresholds from disk and swap them in.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil {
		writeError(w, http.StatusUnprocessableEntity, "no config file to reload")
		return
	}
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.proc.SwapConfig(cfg)
	writeJSON(w, http.StatusOK, map[string]any{"reloaded": true})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("http request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
