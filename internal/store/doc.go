// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Concrete implementations live under internal/platform. Every
// implementation is exercised by the shared suite in store/storetest.
package store
