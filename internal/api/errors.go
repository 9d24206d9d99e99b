package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/phrazzld/tasker/internal/api/shared"
	"github.com/phrazzld/tasker/internal/domain"
	"github.com/phrazzld/tasker/internal/service"
	"github.com/phrazzld/tasker/internal/store"
)

// Messages written to clients. Internal error text never reaches a response.
const (
	MsgTitleRequired      = "Title is required"
	MsgInvalidRequest     = "Invalid request format"
	MsgInvalidDeadline    = "Invalid deadline"
	MsgTaskNotFound       = "Task not found"
	MsgFetchFailed        = "Failed to fetch tasks"
	MsgCreateFailed       = "Failed to add task"
	MsgDeleteFailed       = "Failed to delete task"
	MsgStorageUnavailable = "Storage unavailable"
	MsgUnexpected         = "An unexpected error occurred"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpected
	}

	switch {
	case errors.Is(err, domain.ErrEmptyTaskTitle):
		return MsgTitleRequired

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return MsgTaskNotFound

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrValidation):
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
		}
		return "Validation failed"

	case errors.Is(err, domain.ErrInvalidFormat):
		return MsgInvalidRequest

	default:
		return MsgUnexpected
	}
}

// HandleAPIError writes the error response for err. Client errors get the
// message from GetSafeErrorMessage; server errors get defaultMsg, so each
// endpoint can report its own generic failure text.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if status >= http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
