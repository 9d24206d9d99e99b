package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/tasker/internal/domain"
	"github.com/phrazzld/tasker/internal/service"
	"github.com/phrazzld/tasker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		defaultMsg      string
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "service not found",
			err:             service.ErrTaskNotFound,
			defaultMsg:      "Failed to delete task",
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Task not found",
		},
		{
			name:            "store not found",
			err:             fmt.Errorf("lookup: %w", store.ErrTaskNotFound),
			defaultMsg:      "Failed to delete task",
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Task not found",
		},
		{
			name:            "empty title",
			err:             domain.ErrEmptyTaskTitle,
			defaultMsg:      "Failed to add task",
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Title is required",
		},
		{
			name:            "field validation",
			err:             domain.NewValidationError("deadline", "must be in the future", nil),
			defaultMsg:      "Failed to add task",
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid deadline: must be in the future",
		},
		{
			name:            "bare validation",
			err:             domain.ErrValidation,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Validation failed",
		},
		{
			name:            "invalid entity",
			err:             store.NewStoreError("task", "insert", "check violation", store.ErrInvalidEntity),
			defaultMsg:      "Failed to add task",
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid entity data",
		},
		{
			name:            "storage failure uses default",
			err:             service.NewTaskServiceError("list_tasks", "failed", errors.New("connection refused")),
			defaultMsg:      "Failed to fetch tasks",
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Failed to fetch tasks",
		},
		{
			name:            "storage failure without default",
			err:             errors.New("connection refused"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: MsgUnexpected,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)

			HandleAPIError(rr, req, tc.err, tc.defaultMsg)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			var response map[string]interface{}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
			assert.Equal(t, tc.expectedMessage, response["error"])
		})
	}
}

func TestMapErrorToStatusCodeNil(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, MapErrorToStatusCode(nil))
	assert.Equal(t, MsgUnexpected, GetSafeErrorMessage(nil))
}

func TestParseDeadline(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		raw     *string
		want    *time.Time
		wantErr bool
	}{
		{"absent", nil, nil, false},
		{"blank", str("  "), nil, false},
		{"rfc3339", str("2030-01-02T03:04:05Z"), ptrTime(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)), false},
		{"fractional seconds", str("2030-01-02T03:04:05.25+02:00"), ptrTime(time.Date(2030, 1, 2, 1, 4, 5, 250000000, time.UTC)), false},
		{"date only", str(" 2030-01-02 "), ptrTime(time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)), false},
		{"impossible date", str("2030-02-30"), nil, true},
		{"free text", str("next tuesday"), nil, true},
		{"us format", str("01/02/2030"), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDeadline(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.ErrorIs(t, err, domain.ErrInvalidFormat)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v", got)
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
