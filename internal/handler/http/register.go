package http

import (
	"log/slog"
	"net/http"

	"intelcore/internal/handler/http/requestid"
)

// Routes builds the API route table. The signing middleware wraps exactly the
// routes whose bodies are attested when a secret is configured.
func (s *Server) Routes(secret string) http.Handler {
	mux := http.NewServeMux()
	sign := Sign(secret)

	mux.Handle("GET /api/health", sign(http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /api/feeds", sign(http.HandlerFunc(s.handleFeeds)))
	mux.Handle("GET /api/clusters", sign(http.HandlerFunc(s.handleClusters)))
	mux.Handle("GET /api/clusters/enriched", sign(http.HandlerFunc(s.handleClustersEnriched)))
	mux.Handle("GET /api/enrich", sign(http.HandlerFunc(s.handleEnrich)))

	mux.HandleFunc("GET /api/sources", s.handleSources)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/topics", s.handleTopics)
	mux.HandleFunc("GET /api/stream", s.handleStream)

	return mux
}

// Handler composes the full middleware chain around the route table.
// CORS sits innermost so OPTIONS preflights are answered for every path.
func (s *Server) Handler(secret string, logger *slog.Logger) http.Handler {
	return Chain(s.Routes(secret),
		requestid.Middleware,
		Logging(logger),
		Recover(logger),
		Metrics(),
		CORS(),
	)
}
