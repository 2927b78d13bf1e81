package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"tally/internal/core"
	"tally/internal/log"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// respondServiceError maps domain errors onto HTTP statuses: field
// validation 422, missing entities 404, constraint conflicts 409,
// anything else 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if fields, ok := core.AsFieldErrors(err); ok {
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:  "validation failed",
			Fields: fields,
		})
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	if errors.Is(err, core.ErrIntegrity) {
		respondError(w, http.StatusConflict, "conflicting state")
		return
	}

	log.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}
