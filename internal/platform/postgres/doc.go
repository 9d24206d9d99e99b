// Package postgres provides the PostgreSQL implementation of store.TaskStore.
// It handles the details of database connections, schema migrations (embedded
// goose SQL files) and mapping between domain tasks and table rows.
package postgres
