package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"intelcore/internal/domain/entity"
	"intelcore/internal/handler/http/respond"
	"intelcore/internal/observability/metrics"
)

// SSE stream tuning. One goroutine and one timer per connection; everything
// is torn down when the client disconnects or the ceiling hits.
const (
	streamDefaultSinceHours = 6.0
	streamInitLimit         = 40

	streamTickSinceHours = 2.0
	streamTickLimit      = 8

	streamMinIntervalMs     = 2500
	streamMaxIntervalMs     = 15000
	streamDefaultIntervalMs = 4000

	// streamMaxAge is the hard connection ceiling. Clients reconnect.
	streamMaxAge = 90 * time.Second
)

// handleStream serves GET /api/stream as text/event-stream: one init event,
// then ticks until disconnect or the age ceiling. Upstream failures emit
// error events without closing the stream; until init has been delivered the
// tick schedule retries init instead, so init always precedes the first tick.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	// ResponseController follows the middleware Unwrap chain down to the
	// real connection.
	rc := http.NewResponseController(w)

	sinceHours, err := floatParam(r, "sinceHours", streamDefaultSinceHours)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	intervalMs, err := intParam(r, "intervalMs", streamDefaultIntervalMs)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}
	if intervalMs < streamMinIntervalMs {
		intervalMs = streamMinIntervalMs
	}
	if intervalMs > streamMaxIntervalMs {
		intervalMs = streamMaxIntervalMs
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		respond.Error(w, http.StatusInternalServerError, fmt.Errorf("streaming is not supported"))
		return
	}

	// The connection context bounds every upstream call made on behalf of
	// this client: disconnect or the ceiling cancels all in-flight work.
	ctx, cancel := context.WithTimeout(r.Context(), streamMaxAge)
	defer cancel()

	metrics.SSEConnections.Inc()
	defer metrics.SSEConnections.Dec()

	initSent := s.emitInit(ctx, w, rc, sinceHours)

	ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !initSent {
				initSent = s.emitInit(ctx, w, rc, sinceHours)
				continue
			}
			s.emitTick(ctx, w, rc)
		}
	}
}

// emitInit reports whether the init event was delivered.
func (s *Server) emitInit(ctx context.Context, w http.ResponseWriter, rc *http.ResponseController, sinceHours float64) bool {
	items, err := s.agg.Items(ctx, sinceHours, streamInitLimit)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		s.emitEvent(w, rc, "error", map[string]any{"error": err.Error()})
		return false
	}
	s.emitEvent(w, rc, "init", map[string]any{
		"ts":    s.now().UnixMilli(),
		"count": len(items),
	})
	return true
}

func (s *Server) emitTick(ctx context.Context, w http.ResponseWriter, rc *http.ResponseController) {
	items, err := s.agg.Items(ctx, streamTickSinceHours, streamTickLimit)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.emitEvent(w, rc, "error", map[string]any{"error": err.Error()})
		return
	}
	if items == nil {
		items = []entity.ScoredItem{}
	}
	s.emitEvent(w, rc, "tick", map[string]any{
		"ts":    s.now().UnixMilli(),
		"items": items,
	})
}

// emitEvent writes one SSE frame and flushes it.
func (s *Server) emitEvent(w http.ResponseWriter, rc *http.ResponseController, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("sse payload marshal failed", slog.String("event", event), slog.Any("error", err))
		return
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		s.logger.Debug("sse write failed", slog.Any("error", err))
		return
	}
	if err := rc.Flush(); err != nil {
		s.logger.Debug("sse flush failed", slog.Any("error", err))
		return
	}
	metrics.RecordSSEEvent(event)
}
