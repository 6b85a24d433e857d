package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
)

// MoviesHandler holds dependencies for the movie CRUD handlers.
type MoviesHandler struct {
	store  Store
	logger *slog.Logger
}

// NewMoviesHandler creates a new handler with the given store and logger.
func NewMoviesHandler(store Store, logger *slog.Logger) *MoviesHandler {
	return &MoviesHandler{store: store, logger: logger}
}

// requirePermission checks that the authenticated caller may perform a
// mutating operation. Authentication itself happens in middleware; this
// guard only decides authorization.
func (h *MoviesHandler) requirePermission(w http.ResponseWriter, r *http.Request, permission string) bool {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return false
	}

	if !identity.HasPermission(permission) {
		writeError(w, http.StatusForbidden, "insufficient permissions")
		return false
	}

	return true
}

// movieID parses the {id} path segment.
func movieID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return 0, false
	}
	return id, true
}

// List returns the whole collection.
func (h *MoviesHandler) List(w http.ResponseWriter, r *http.Request) {
	movies, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("store.List failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load movies")
		return
	}

	if movies == nil {
		movies = []Movie{}
	}

	writeJSON(w, http.StatusOK, movies)
}

// Create adds a movie with the next free id and watched unset.
func (h *MoviesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, r, PermissionManageMovies) {
		return
	}

	var req CreateMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	movie, err := h.store.Create(r.Context(), req.Title)
	if errors.Is(err, ErrEmptyTitle) {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err != nil {
		h.logger.Error("store.Create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save movie")
		return
	}

	writeJSON(w, http.StatusCreated, movie)
}

// ToggleWatched flips the watched flag of one movie.
func (h *MoviesHandler) ToggleWatched(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, r, PermissionManageMovies) {
		return
	}

	id, ok := movieID(w, r)
	if !ok {
		return
	}

	movie, err := h.store.ToggleWatched(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	if err != nil {
		h.logger.Error("store.ToggleWatched failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to update movie")
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

// Delete removes one movie.
func (h *MoviesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requirePermission(w, r, PermissionManageMovies) {
		return
	}

	id, ok := movieID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "movie not found")
			return
		}
		h.logger.Error("store.Delete failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete movie")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
