package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/flowgate/internal/core/domain"
	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
	"github.com/SscSPs/flowgate/internal/models"
	"github.com/SscSPs/flowgate/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxAuditLogRepository reads the append-only audit trail.
type PgxAuditLogRepository struct {
	BaseRepository
}

func newPgxAuditLogRepository(pool *pgxpool.Pool) *PgxAuditLogRepository {
	return &PgxAuditLogRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditLogReader = (*PgxAuditLogRepository)(nil)

// ListAuditLogsByRequestID returns every entry of a request, most recent first.
func (r *PgxAuditLogRepository) ListAuditLogsByRequestID(ctx context.Context, requestID string) ([]domain.AuditLogEntry, error) {
	query := `
		SELECT log_id, request_id, action, from_status, to_status, performed_by, created_at, integrity
		FROM audit_logs
		WHERE request_id = $1
		ORDER BY created_at DESC, log_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs for request %s: %w", requestID, err)
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var m models.AuditLog
		if err := rows.Scan(&m.LogID, &m.RequestID, &m.Action, &m.FromStatus, &m.ToStatus, &m.PerformedBy, &m.CreatedAt, &m.Integrity); err != nil {
			return nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		logs = append(logs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log rows: %w", err)
	}
	return mapping.ToDomainAuditLogSlice(logs), nil
}

// appendAuditLog chains entry to the request's latest integrity hash and inserts it
// inside tx. The request row must already be written or locked by tx.
func appendAuditLog(ctx context.Context, tx pgx.Tx, entry domain.AuditLogEntry) (*domain.AuditLogEntry, error) {
	var previous string
	err := tx.QueryRow(ctx,
		`SELECT integrity FROM audit_logs WHERE request_id = $1 ORDER BY log_id DESC LIMIT 1;`,
		entry.RequestID,
	).Scan(&previous)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read previous audit entry for request %s: %w", entry.RequestID, err)
	}
	entry.Integrity = domain.ComputeIntegrity(previous, entry)

	m := mapping.ToModelAuditLog(entry)
	query := `
		INSERT INTO audit_logs (request_id, action, from_status, to_status, performed_by, created_at, integrity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING log_id;
	`
	if err := tx.QueryRow(ctx, query,
		m.RequestID, m.Action, m.FromStatus, m.ToStatus, m.PerformedBy, m.CreatedAt, m.Integrity,
	).Scan(&entry.EntryID); err != nil {
		return nil, fmt.Errorf("failed to append audit entry for request %s: %w", entry.RequestID, err)
	}
	return &entry, nil
}
