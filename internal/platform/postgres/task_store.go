package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker/internal/domain"
	"github.com/phrazzld/tasker/internal/platform/logger"
	"github.com/phrazzld/tasker/internal/store"
)

// TIMESTAMPTZ stores microseconds.
const timestampResolution = time.Microsecond

const taskColumns = `id, title, deadline, created_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	clock  *store.MonotonicClock
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		clock:  store.NewMonotonicClock(timestampResolution),
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Insert implements store.TaskStore.Insert
// It assigns a UUID and a microsecond-precision CreatedAt, then writes the row.
// Returns validation errors from the domain Task if data is invalid.
func (s *PostgresTaskStore) Insert(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during insert", slog.String("error", err.Error()))
		return err
	}

	var deadline *time.Time
	if task.Deadline != nil {
		d := task.Deadline.UTC().Truncate(timestampResolution)
		deadline = &d
	}

	query := `
		INSERT INTO tasks (id, title, deadline, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + taskColumns

	row := s.db.QueryRowContext(ctx, query, uuid.New(), task.Title, deadline, s.clock.Now())
	inserted, err := scanTask(row)
	if err != nil {
		log.Error("failed to insert task", slog.String("error", err.Error()))
		return store.NewStoreError("task", "insert", "failed to insert task", MapError(err))
	}

	*task = *inserted
	log.Debug("task inserted", slog.String("task_id", task.ID))
	return nil
}

// ListAll implements store.TaskStore.ListAll
func (s *PostgresTaskStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to query tasks", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "failed to scan task", MapError(err))
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to read tasks", MapError(err))
	}

	log.Debug("tasks listed", slog.Int("count", len(tasks)))
	return tasks, nil
}

// DeleteByID implements store.TaskStore.DeleteByID
// IDs that do not parse as UUIDs resolve to store.ErrTaskNotFound without a query.
func (s *PostgresTaskStore) DeleteByID(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	taskID, err := uuid.Parse(id)
	if err != nil {
		log.Debug("task id is not a UUID", slog.String("task_id", id))
		return nil, store.ErrTaskNotFound
	}

	query := `DELETE FROM tasks WHERE id = $1 RETURNING ` + taskColumns

	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to delete task",
			slog.String("task_id", id),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}

	log.Debug("task deleted", slog.String("task_id", id))
	return task, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		id        uuid.UUID
		title     string
		deadline  sql.NullTime
		createdAt time.Time
	)
	if err := row.Scan(&id, &title, &deadline, &createdAt); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:        id.String(),
		Title:     title,
		CreatedAt: createdAt.UTC(),
	}
	if deadline.Valid {
		d := deadline.Time.UTC()
		task.Deadline = &d
	}
	return task, nil
}

// PostgresDB bundles a connection pool with the task store built on it.
type PostgresDB struct {
	*PostgresTaskStore
	db *sql.DB
}

// Open connects to the database at url, applies pending migrations and
// returns a store that owns the connection pool.
func Open(ctx context.Context, url string, logger *slog.Logger) (*PostgresDB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &PostgresDB{
		PostgresTaskStore: NewPostgresTaskStore(db, logger),
		db:                db,
	}, nil
}

// Ping implements store.Pinger.
func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close releases the connection pool.
func (p *PostgresDB) Close(context.Context) error {
	return p.db.Close()
}
