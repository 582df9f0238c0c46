package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lukazajc/najdeno/internal/workflow"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// workflowError maps a typed workflow failure to an HTTP status.
// Anything untyped is a store/database failure and becomes a 500 with the
// generic fallback message (details go to the log, not the client).
func workflowError(w http.ResponseWriter, err error, fallback string) {
	var ve *workflow.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, workflow.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, workflow.ErrForbidden):
		jsonError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, workflow.ErrUnauthenticated):
		jsonError(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, workflow.ErrInvalidToken):
		jsonError(w, http.StatusBadRequest, "invalid verification token")
	case errors.Is(err, workflow.ErrExpiredToken):
		jsonError(w, http.StatusGone, "verification token expired")
	default:
		slog.Error("request failed", "error", err)
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}
