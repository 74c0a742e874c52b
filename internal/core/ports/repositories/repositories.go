package repositories

import "context"

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	RequestRepo  RequestRepositoryFacade
	AuditLogRepo AuditLogReader

	// Ping checks the backing store is reachable. Close releases it.
	Ping  func(ctx context.Context) error
	Close func()
}
