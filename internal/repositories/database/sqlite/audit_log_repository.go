package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/flowgate/internal/core/domain"
	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
	"github.com/SscSPs/flowgate/internal/models"
	"github.com/SscSPs/flowgate/internal/utils/mapping"
)

// AuditLogRepository reads the append-only audit trail.
type AuditLogRepository struct {
	BaseRepository
}

func newAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.AuditLogReader = (*AuditLogRepository)(nil)

// ListAuditLogsByRequestID returns every entry of a request, most recent first.
func (r *AuditLogRepository) ListAuditLogsByRequestID(ctx context.Context, requestID string) ([]domain.AuditLogEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT log_id, request_id, action, from_status, to_status, performed_by, created_at, integrity
		FROM audit_logs
		WHERE request_id = ?
		ORDER BY created_at DESC, log_id DESC`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs for request %s: %w", requestID, err)
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var m models.AuditLog
		var from sql.NullString
		var createdAt int64
		if err := rows.Scan(&m.LogID, &m.RequestID, &m.Action, &from, &m.ToStatus, &m.PerformedBy, &createdAt, &m.Integrity); err != nil {
			return nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		if from.Valid {
			status := models.RequestStatus(from.String)
			m.FromStatus = &status
		}
		m.CreatedAt = fromNanos(createdAt)
		logs = append(logs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log rows: %w", err)
	}
	return mapping.ToDomainAuditLogSlice(logs), nil
}

// appendAuditLog chains entry to the request's latest integrity hash and inserts it inside tx.
func appendAuditLog(ctx context.Context, tx *sql.Tx, entry domain.AuditLogEntry) (*domain.AuditLogEntry, error) {
	var previous string
	err := tx.QueryRowContext(ctx,
		`SELECT integrity FROM audit_logs WHERE request_id = ? ORDER BY log_id DESC LIMIT 1`,
		entry.RequestID,
	).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read previous audit entry for request %s: %w", entry.RequestID, err)
	}
	entry.Integrity = domain.ComputeIntegrity(previous, entry)

	m := mapping.ToModelAuditLog(entry)
	var from any
	if m.FromStatus != nil {
		from = string(*m.FromStatus)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO audit_logs (request_id, action, from_status, to_status, performed_by, created_at, integrity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.RequestID, m.Action, from, string(m.ToStatus), m.PerformedBy, toNanos(m.CreatedAt), m.Integrity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append audit entry for request %s: %w", entry.RequestID, err)
	}
	if entry.EntryID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read audit entry id for request %s: %w", entry.RequestID, err)
	}
	return &entry, nil
}
