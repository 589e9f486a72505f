package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/erazemk/cssd/internal/collection"
	"github.com/erazemk/cssd/internal/model"
	"github.com/erazemk/cssd/internal/reconcile"
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

// writeError maps an operation error to its status code.
func writeError(w http.ResponseWriter, err error) {
	var (
		statusErr *collection.StatusError
		urlErr    *url.Error
	)
	switch {
	case errors.Is(err, model.ErrInvalid):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, collection.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrTransition),
		errors.Is(err, reconcile.ErrConflict),
		errors.Is(err, reconcile.ErrBusy):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.As(err, &statusErr), errors.As(err, &urlErr):
		slog.Error("collection store failed", "error", err)
		jsonError(w, http.StatusBadGateway, err.Error())
	default:
		slog.Error("request failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
