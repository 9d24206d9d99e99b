// Package mongo provides the MongoDB implementation of store.TaskStore.
// Tasks live in a single collection keyed by ObjectID; listing is served by a
// descending index on createdAt.
package mongo
