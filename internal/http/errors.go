// v1
// internal/http/errors.go
package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"log/slog"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/device"
)

// APIError is the JSON error envelope returned by every failing route.
// Status is carried out-of-band in the HTTP status line.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newBadRequest(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

func newNotFound(resource, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

func newInternal(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// fromDeviceError maps the registry's typed errors onto the wire
// envelope: unknown ids become 404, rejected values become 400, anything
// unexpected becomes 500.
func fromDeviceError(err error) *APIError {
	var notFound *device.NotFoundError
	if errors.As(err, &notFound) {
		return newNotFound("device", notFound.ID)
	}
	var invalid *device.InvalidValueError
	if errors.As(err, &invalid) {
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "INVALID_VALUE",
			Message: invalid.Error(),
		}
	}
	return newInternal("device update failed", err)
}

// respondJSON writes payload with the given status. Encoding failures
// are logged, not surfaced, since the status line is already committed.
func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("write_response_failed", slog.Any("err", err))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, apiErr *APIError) {
	respondJSON(w, logger, apiErr.Status, apiErr)
}
