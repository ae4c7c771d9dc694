package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bookingapi/internal/domain"
	"bookingapi/pkg/logger"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// statusFor maps a lifecycle error to its HTTP status.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindPermission:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := statusFor(err)
	message := err.Error()

	fields := map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
		"error":  err.Error(),
	}
	if status == http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "Request failed", fields)
		message = http.StatusText(status)
	} else {
		log.DebugContext(r.Context(), "Request rejected", fields)
	}

	writeJSON(w, status, ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}

func badRequest(format string, args ...interface{}) error {
	return domain.NewValidationError(format, args...)
}

func decodeBody(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return badRequest("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return badRequest("Malformed JSON at offset %d", syntaxErr.Offset)
		}
		return badRequest("Invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	return parseID(r.PathValue(name), name)
}

func queryID(r *http.Request, name string) (int64, error) {
	return parseID(r.URL.Query().Get(name), name)
}

func parseID(raw, name string) (int64, error) {
	if raw == "" {
		return 0, badRequest("Parameter %s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("Parameter %s must be a positive integer", name)
	}
	return id, nil
}
