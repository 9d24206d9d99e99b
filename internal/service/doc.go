// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and the task
// store (defined in internal/store) to fulfill application features.
//
// The service layer depends on domain entities and the store interfaces,
// but never on specific infrastructure implementations. It translates store
// failures into service errors so the API layer can map them to status codes
// without knowing which database is in use.
package service
