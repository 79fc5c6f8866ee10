// Package http provides the public JSON API of the aggregation core: the
// nine read-only endpoints, the SSE stream and the shared middleware chain.
package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"intelcore/internal/handler/http/requestid"
	"intelcore/internal/handler/http/respond"
	"intelcore/internal/handler/http/responsewriter"
	"intelcore/internal/observability/metrics"
	"intelcore/internal/pkg/signing"
	"intelcore/pkg/security/csp"
)

// Middleware is a standard net/http middleware.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares outermost-first around the final handler.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Logging returns middleware that logs HTTP requests with structured logging.
// It captures request details, response status, size, and processing duration.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := responsewriter.Wrap(w)
			next.ServeHTTP(wrapped, r)

			logger.Info("request completed",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", r.RemoteAddr),
				slog.Int("status", wrapped.StatusCode()),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Recover returns middleware that catches panics, logs them and responds 500.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					respond.SafeError(w, http.StatusInternalServerError, fmt.Errorf("internal error"))

					logger.Error("panic recovered",
						slog.String("request_id", requestid.FromContext(r.Context())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
					)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Metrics returns middleware that records per-request Prometheus metrics.
// The route table is flat so raw paths carry no cardinality risk.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := responsewriter.Wrap(w)
			next.ServeHTTP(wrapped, r)
			metrics.RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(wrapped.StatusCode()), time.Since(start))
		})
	}
}

// cspPolicy is shared across all responses: this API serves JSON only.
var cspPolicy = csp.APIPolicy()

// CORS returns middleware that applies the open CORS policy and the security
// headers, and short-circuits OPTIONS preflights with 204.
func CORS() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			h.Add("Vary", "Origin")
			h.Set("Content-Security-Policy", cspPolicy)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// signingWriter buffers the response so the body signature can be computed
// before anything reaches the client.
type signingWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *signingWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *signingWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.buf.Write(b)
}

// Sign returns middleware that adds an X-Signature header over the full
// response body. With an empty secret it is a no-op.
func Sign(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &signingWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			body := sw.buf.Bytes()
			w.Header().Set(signing.Header, signing.Sign(secret, body))
			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			w.WriteHeader(sw.status)
			if _, err := w.Write(body); err != nil {
				slog.Debug("write signed response", slog.Any("error", err))
			}
		})
	}
}
