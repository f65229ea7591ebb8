package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"kassenbuch/internal/core"
	"kassenbuch/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors to status codes. Storage
// failures stay generic: the caller only learns that the operation
// failed as a whole.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyVendor),
		errors.Is(err, core.ErrVendorTooLong),
		errors.Is(err, core.ErrNoteTooLong),
		errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrInvalidRetention):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON rejects unknown fields so client typos surface as 400s
// instead of silently dropped data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// pathDate parses the {date} path segment.
func pathDate(r *http.Request) (core.Date, error) {
	return core.ParseDate(r.PathValue("date"))
}

// queryDate parses a required date query parameter.
func queryDate(r *http.Request, key string) (core.Date, error) {
	return core.ParseDate(r.URL.Query().Get(key))
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}

// queryInt64 parses a required epoch-millis query parameter.
func queryInt64(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get(key)), 10, 64)
}
