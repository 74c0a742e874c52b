package sqlite

import (
	"context"
	"database/sql"

	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
)

func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RequestRepo:  newRequestRepository(db),
		AuditLogRepo: newAuditLogRepository(db),
		Ping:         func(ctx context.Context) error { return db.PingContext(ctx) },
		Close:        func() { _ = db.Close() },
	}
}
