package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasker/internal/api/shared"
	"github.com/phrazzld/tasker/internal/domain"
)

var errInvalidDeadline = domain.NewValidationError("deadline", "must be an RFC 3339 timestamp or a YYYY-MM-DD date", domain.ErrInvalidFormat)

// getPathID returns the raw {paramName} path segment. IDs are not
// format-checked here; the store decides whether an ID can exist.
func getPathID(r *http.Request, paramName string) string {
	return chi.URLParam(r, paramName)
}

// decodeCreateTaskRequest reads and validates a CreateTaskRequest. It returns
// the user-facing message to send when the request is rejected.
func decodeCreateTaskRequest(w http.ResponseWriter, r *http.Request) (*CreateTaskRequest, string, error) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		return nil, MsgInvalidRequest, err
	}

	if err := shared.ValidateRequest(&req); err != nil {
		return nil, MsgTitleRequired, err
	}

	return &req, "", nil
}

// deadlineLayouts are tried in order. A bare date means midnight UTC.
var deadlineLayouts = []string{time.RFC3339Nano, time.DateOnly}

// parseDeadline parses an optional deadline. Blank means no deadline.
func parseDeadline(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	value := strings.TrimSpace(*raw)
	for _, layout := range deadlineLayouts {
		if deadline, err := time.Parse(layout, value); err == nil {
			return &deadline, nil
		}
	}
	return nil, errInvalidDeadline
}
