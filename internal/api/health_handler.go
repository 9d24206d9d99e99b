package api

import (
	"net/http"

	"github.com/phrazzld/tasker/internal/api/shared"
	"github.com/phrazzld/tasker/internal/service"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	checker service.HealthChecker
}

// NewHealthHandler creates a HealthHandler. A nil checker always reports OK.
func NewHealthHandler(checker service.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Health handles GET /health. It answers 200 "OK", or 503 when the store
// cannot be reached.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		if err := h.checker.CheckHealth(r.Context()); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, MsgStorageUnavailable, err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
