package pgsql

import (
	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RequestRepo:  newPgxRequestRepository(dbPool),
		AuditLogRepo: newPgxAuditLogRepository(dbPool),
		Ping:         dbPool.Ping,
		Close:        dbPool.Close,
	}
}
