// Package aztables provides an Azure Table Storage implementation of store.TaskStore.
//
// All tasks share one partition. The RowKey, which is also the task ID, is the
// zero-padded inverse of CreatedAt in Unix nanoseconds followed by a UUID, so
// the table's natural ascending key order is newest first.
package aztables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"
	"github.com/phrazzld/tasker/internal/domain"
	"github.com/phrazzld/tasker/internal/platform/logger"
	"github.com/phrazzld/tasker/internal/store"
)

// PartitionKey is the single partition every task is written to.
const PartitionKey = "tasks"

const (
	invertedWidth = 19 // digits in math.MaxInt64
	rowKeySep     = "_"
)

// TableClient is the subset of *aztables.Client the store uses.
type TableClient interface {
	AddEntity(ctx context.Context, entity []byte, options *aztables.AddEntityOptions) (aztables.AddEntityResponse, error)
	GetEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.GetEntityOptions) (aztables.GetEntityResponse, error)
	DeleteEntity(ctx context.Context, partitionKey, rowKey string, options *aztables.DeleteEntityOptions) (aztables.DeleteEntityResponse, error)
	NewListEntitiesPager(options *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
}

var _ TableClient = (*aztables.Client)(nil)

// taskEntity is the JSON shape of a task row. Times are stored as
// RFC 3339 strings to keep nanosecond precision.
type taskEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	Title        string `json:"Title"`
	Deadline     string `json:"Deadline,omitempty"`
	CreatedAt    string `json:"CreatedAt"`
}

func (e taskEntity) toDomain() (*domain.Task, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt on row %s: %w", e.RowKey, err)
	}
	task := &domain.Task{
		ID:        e.RowKey,
		Title:     e.Title,
		CreatedAt: createdAt.UTC(),
	}
	if e.Deadline != "" {
		deadline, err := time.Parse(time.RFC3339Nano, e.Deadline)
		if err != nil {
			return nil, fmt.Errorf("invalid Deadline on row %s: %w", e.RowKey, err)
		}
		deadline = deadline.UTC()
		task.Deadline = &deadline
	}
	return task, nil
}

// TableTaskStore implements store.TaskStore on an Azure Storage table.
type TableTaskStore struct {
	table  TableClient
	clock  *store.MonotonicClock
	logger *slog.Logger
}

// Ensure TableTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TableTaskStore)(nil)

// Open creates the table named tableName if needed and returns a store on it.
func Open(ctx context.Context, connStr, tableName string, logger *slog.Logger) (*TableTaskStore, error) {
	clientOptions := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute,
				RetryDelay:    time.Second,
				MaxRetryDelay: 15 * time.Second,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create table service client: %w", err)
	}

	client := svc.NewClient(tableName)
	if _, err := client.CreateTable(ctx, nil); err != nil && !isErrorCode(err, "TableAlreadyExists") {
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return NewTableTaskStore(client, logger), nil
}

// NewTableTaskStore creates a store over an existing table client.
// If logger is nil, a default logger will be used.
func NewTableTaskStore(table TableClient, logger *slog.Logger) *TableTaskStore {
	if table == nil {
		panic("table client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TableTaskStore{
		table:  table,
		clock:  store.NewMonotonicClock(0),
		logger: logger.With(slog.String("component", "table_task_store")),
	}
}

// RowKey builds the row key for a task created at createdAt.
func RowKey(createdAt time.Time, id uuid.UUID) string {
	inverted := math.MaxInt64 - createdAt.UnixNano()
	return fmt.Sprintf("%0*d%s%s", invertedWidth, inverted, rowKeySep, id.String())
}

// validRowKey reports whether id has the shape RowKey produces.
func validRowKey(id string) bool {
	digits, rest, ok := strings.Cut(id, rowKeySep)
	if !ok || len(digits) != invertedWidth {
		return false
	}
	if _, err := strconv.ParseUint(digits, 10, 63); err != nil {
		return false
	}
	parsed, err := uuid.Parse(rest)
	return err == nil && parsed.String() == rest
}

// Insert implements store.TaskStore.Insert.
func (s *TableTaskStore) Insert(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during insert", slog.String("error", err.Error()))
		return err
	}

	createdAt := s.clock.Now()
	entity := taskEntity{
		PartitionKey: PartitionKey,
		RowKey:       RowKey(createdAt, uuid.New()),
		Title:        task.Title,
		CreatedAt:    createdAt.Format(time.RFC3339Nano),
	}
	if task.Deadline != nil {
		entity.Deadline = task.Deadline.UTC().Format(time.RFC3339Nano)
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return store.NewStoreError("task", "insert", "failed to encode entity", err)
	}

	if _, err := s.table.AddEntity(ctx, data, nil); err != nil {
		log.Error("failed to insert task", slog.String("error", err.Error()))
		return store.NewStoreError("task", "insert", "failed to add entity", err)
	}

	inserted, err := entity.toDomain()
	if err != nil {
		return store.NewStoreError("task", "insert", "failed to decode entity", err)
	}
	*task = *inserted
	log.Debug("task inserted", slog.String("task_id", task.ID))
	return nil
}

// ListAll implements store.TaskStore.ListAll.
func (s *TableTaskStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter := "PartitionKey eq '" + PartitionKey + "'"
	pager := s.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})

	tasks := make([]*domain.Task, 0)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			log.Error("failed to list entities", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "failed to list entities", err)
		}
		for _, raw := range resp.Entities {
			task, err := decodeEntity(raw)
			if err != nil {
				log.Error("failed to decode entity", slog.String("error", err.Error()))
				return nil, store.NewStoreError("task", "list", "failed to decode entity", err)
			}
			tasks = append(tasks, task)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})

	log.Debug("tasks listed", slog.Int("count", len(tasks)))
	return tasks, nil
}

// DeleteByID implements store.TaskStore.DeleteByID.
// The row is read first and then deleted conditionally on its ETag.
func (s *TableTaskStore) DeleteByID(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !validRowKey(id) {
		log.Debug("task id is not a row key", slog.String("task_id", id))
		return nil, store.ErrTaskNotFound
	}

	resp, err := s.table.GetEntity(ctx, PartitionKey, id, nil)
	if err != nil {
		if isNotFound(err) {
			log.Debug("task not found", slog.String("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to read task before delete",
			slog.String("task_id", id),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "delete", "failed to get entity", err)
	}

	task, err := decodeEntity(resp.Value)
	if err != nil {
		return nil, store.NewStoreError("task", "delete", "failed to decode entity", err)
	}

	etag := resp.ETag
	if _, err := s.table.DeleteEntity(ctx, PartitionKey, id, &aztables.DeleteEntityOptions{IfMatch: &etag}); err != nil {
		if isNotFound(err) {
			log.Debug("task deleted concurrently", slog.String("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to delete task",
			slog.String("task_id", id),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "delete", "failed to delete entity", err)
	}

	log.Debug("task deleted", slog.String("task_id", id))
	return task, nil
}

// Ping implements store.Pinger by fetching at most one entity.
func (s *TableTaskStore) Ping(ctx context.Context) error {
	top := int32(1)
	pager := s.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Top: &top})
	_, err := pager.NextPage(ctx)
	return err
}

func decodeEntity(raw []byte) (*domain.Task, error) {
	var entity taskEntity
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, err
	}
	return entity.toDomain()
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

func isErrorCode(err error, code string) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.ErrorCode == code
}
