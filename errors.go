package main

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Store errors. Handlers translate these into 400 and 404 responses; any
// other store error is reported as a 500 without leaking details.
var (
	ErrEmptyTitle = errors.New("title must not be empty")
	ErrNotFound   = errors.New("movie not found")
)

// APIError represents a structured error response.
type APIError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIError{Error: msg, Code: status})
}
