package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/claims"
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

// engineError maps a claims error kind to its HTTP status.
func engineError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, claims.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, claims.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, claims.ErrPermission):
		status = http.StatusForbidden
	case errors.Is(err, claims.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, claims.ErrStoreUnavailable):
		slog.Error("store unavailable", "error", err)
		jsonError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	default:
		slog.Error("unexpected engine error", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonError(w, status, err.Error())
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}
