package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starford/caseificio/internal/apperr"
	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/service"
)

const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps service errors to status codes. Unexpected errors are
// logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("version mismatch"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// ifMatch returns the If-Match header without the surrounding ETag quotes.
func ifMatch(r *http.Request) string {
	return strings.Trim(r.Header.Get("If-Match"), `"`)
}

func setETag(w http.ResponseWriter, v any) {
	w.Header().Set("ETag", `"`+service.ETag(v)+`"`)
}

// queryDate parses an optional yyyy-MM-dd query parameter.
func queryDate(r *http.Request, key string) (calendar.Date, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return calendar.Date{}, nil
	}
	d, err := calendar.Parse(raw)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("%w: %s: %w", apperr.ErrValidation, key, err)
	}
	return d, nil
}

func requiredDate(r *http.Request, key string) (calendar.Date, error) {
	d, err := queryDate(r, key)
	if err == nil && d.IsZero() {
		err = fmt.Errorf("%w: query parameter %q is required", apperr.ErrValidation, key)
	}
	return d, err
}

// queryYear parses ?year=, defaulting to fallback.
func queryYear(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return fallback, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("%w: invalid year %q", apperr.ErrValidation, raw)
	}
	return year, nil
}
