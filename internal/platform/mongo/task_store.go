package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker/internal/domain"
	"github.com/phrazzld/tasker/internal/platform/logger"
	"github.com/phrazzld/tasker/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// BSON stores datetimes with millisecond precision.
const timestampResolution = time.Millisecond

// taskDocument is the BSON shape of a task in the collection.
type taskDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Deadline  *time.Time         `bson:"deadline,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d taskDocument) toDomain() *domain.Task {
	task := &domain.Task{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.Deadline != nil {
		deadline := d.Deadline.UTC()
		task.Deadline = &deadline
	}
	return task
}

// MongoTaskStore implements the store.TaskStore interface
// using a MongoDB collection as the storage backend.
type MongoTaskStore struct {
	client     *mongodrv.Client
	collection *mongodrv.Collection
	clock      *store.MonotonicClock
	logger     *slog.Logger
}

// Ensure MongoTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*MongoTaskStore)(nil)

// Open connects to uri, verifies the connection and ensures the collection's
// indexes exist. The returned store owns the client; call Close to release it.
func Open(
	ctx context.Context,
	uri, database, collection string,
	connectTimeout time.Duration,
	logger *slog.Logger,
) (*MongoTaskStore, error) {
	clientOpts := options.Client().ApplyURI(uri)
	if connectTimeout > 0 {
		clientOpts.SetConnectTimeout(connectTimeout).SetServerSelectionTimeout(connectTimeout)
	}

	client, err := mongodrv.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := NewMongoTaskStore(client.Database(database).Collection(collection), logger)
	s.client = client

	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

// NewMongoTaskStore creates a store over an existing collection.
// The caller keeps ownership of the collection's client.
// If logger is nil, a default logger will be used.
func NewMongoTaskStore(collection *mongodrv.Collection, logger *slog.Logger) *MongoTaskStore {
	if collection == nil {
		panic("collection cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &MongoTaskStore{
		collection: collection,
		clock:      store.NewMonotonicClock(timestampResolution),
		logger:     logger.With(slog.String("component", "mongo_task_store")),
	}
}

// EnsureIndexes creates the index backing ListAll's sort order.
func (s *MongoTaskStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongodrv.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	if err != nil {
		return store.NewStoreError("task", "ensure_indexes", "failed to create index", MapError(err))
	}
	return nil
}

// Insert implements store.TaskStore.Insert.
// It assigns a new ObjectID and a millisecond-precision CreatedAt.
func (s *MongoTaskStore) Insert(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during insert", slog.String("error", err.Error()))
		return err
	}

	doc := taskDocument{
		ID:        primitive.NewObjectID(),
		Title:     task.Title,
		CreatedAt: s.clock.Now(),
	}
	if task.Deadline != nil {
		deadline := task.Deadline.UTC().Truncate(timestampResolution)
		doc.Deadline = &deadline
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		log.Error("failed to insert task", slog.String("error", err.Error()))
		return store.NewStoreError("task", "insert", "failed to insert task", MapError(err))
	}

	*task = *doc.toDomain()
	log.Debug("task inserted", slog.String("task_id", task.ID))
	return nil
}

// ListAll implements store.TaskStore.ListAll.
func (s *MongoTaskStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to query tasks", MapError(err))
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		log.Error("failed to decode tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "failed to decode tasks", MapError(err))
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, doc.toDomain())
	}

	log.Debug("tasks listed", slog.Int("count", len(tasks)))
	return tasks, nil
}

// DeleteByID implements store.TaskStore.DeleteByID.
// IDs that are not 24-character hex ObjectIDs cannot exist and resolve to
// store.ErrTaskNotFound without a round trip.
func (s *MongoTaskStore) DeleteByID(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		log.Debug("task id is not an ObjectID", slog.String("task_id", id))
		return nil, store.ErrTaskNotFound
	}

	var doc taskDocument
	err = s.collection.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			log.Debug("task not found", slog.String("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to delete task",
			slog.String("task_id", id),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}

	log.Debug("task deleted", slog.String("task_id", id))
	return doc.toDomain(), nil
}

// Ping implements store.Pinger.
func (s *MongoTaskStore) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the client if this store opened it.
func (s *MongoTaskStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
