// Package handler implements the JSON API. Handlers decode and validate
// input, call a service, and translate domain errors into HTTP statuses.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/avsoarsa/global-gourmet/internal/middleware"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`

		// MissingStep points the client back to the earliest incomplete
		// checkout step when a wizard transition is rejected.
		MissingStep string `json:"missing_step,omitempty"`
	} `json:"error"`
}

// respondJSON writes v as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps an error to an HTTP status and uniform error body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	logger := middleware.GetLogger(r.Context())

	var body errorResponse

	var stepErr *domain.StepError
	if errors.As(err, &stepErr) {
		body.Error.Code = "incomplete_step"
		body.Error.Message = stepErr.Reason
		body.Error.MissingStep = string(stepErr.Missing)
		respondJSON(w, http.StatusConflict, body)
		return
	}

	if domain.IsValidationError(err) {
		body.Error.Code = domain.EINVALID
		body.Error.Message = "Validation failed"
		body.Error.Fields = domain.GetValidationFields(err)
		respondJSON(w, http.StatusBadRequest, body)
		return
	}

	code := domain.ErrorCode(err)
	status := statusForCode(code)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.String("error", err.Error()))
	}

	body.Error.Code = code
	body.Error.Message = domain.ErrorMessage(err)
	respondJSON(w, status, body)
}

// statusForCode maps domain error codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes a request body, rejecting unknown fields. An empty
// body leaves v zeroed; required-field checks belong to the services.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.Invalid("request.decode", "Invalid JSON request body")
	}
	return nil
}
