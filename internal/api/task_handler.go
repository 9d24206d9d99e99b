package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasker/internal/api/shared"
	"github.com/phrazzld/tasker/internal/platform/logger"
	"github.com/phrazzld/tasker/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With("component", "task_handler"),
	}
}

// ListTasks handles GET /tasks requests.
// It responds with every task, newest first, or [] when there are none.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListTasks(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, MsgFetchFailed)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// CreateTask handles POST /tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	req, msg, err := decodeCreateTaskRequest(w, r)
	if err != nil {
		log.Debug("rejected create task request", "error", err)
		// Undecodable bodies point at a broken client rather than a user typo.
		var opts []shared.ResponseOption
		if msg == MsgInvalidRequest {
			opts = append(opts, shared.WithElevatedLogLevel())
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msg, err, opts...)
		return
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidDeadline, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), req.Title, deadline)
	if err != nil {
		HandleAPIError(w, r, err, MsgCreateFailed)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id} requests.
// Unknown and malformed IDs both yield 404.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := getPathID(r, "id")

	if _, err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, MsgTaskNotFound, err)
			return
		}
		HandleAPIError(w, r, err, MsgDeleteFailed)
		return
	}

	// Echo the id as the caller sent it; stores may normalize it.
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteTaskResponse{Success: true, ID: id})
}
