package main

import (
	"log/slog"
	"net/http"
)

// NewRouter registers all routes and wraps them with the middleware chain.
func NewRouter(h *MoviesHandler, verifier *TokenVerifier, cfg Config, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check. The auth middleware skips this path.
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Movie CRUD
	mux.HandleFunc("GET /api/movies", h.List)
	mux.HandleFunc("POST /api/movies", h.Create)
	mux.HandleFunc("PUT /api/movies/{id}", h.ToggleWatched)
	mux.HandleFunc("DELETE /api/movies/{id}", h.Delete)

	// Middleware chain: Recovery → CORS → RequestID → RequestLogging → Authenticate → mux
	var handler http.Handler = mux
	handler = Authenticate(verifier, cfg, logger)(handler)
	handler = RequestLogging(logger)(handler)
	handler = RequestID()(handler)
	handler = CORS(cfg.CORSAllowOrigin)(handler)
	handler = Recovery(logger)(handler)

	return handler
}
