package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/flowgate/internal/apperrors"
	"github.com/SscSPs/flowgate/internal/core/domain"
	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
	"github.com/SscSPs/flowgate/internal/models"
	"github.com/SscSPs/flowgate/internal/utils/mapping"
	"github.com/SscSPs/flowgate/internal/utils/pagination"
)

const requestColumns = `request_id, title, request_type, description, status, assigned_approver,
		created_at, created_by, last_updated_at, last_updated_by, version`

// RequestRepository implements the request store on SQLite.
type RequestRepository struct {
	BaseRepository
}

func newRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.RequestRepositoryFacade = (*RequestRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (models.Request, error) {
	var m models.Request
	var description sql.NullString
	var createdAt, updatedAt int64
	err := row.Scan(
		&m.RequestID,
		&m.Title,
		&m.Type,
		&description,
		&m.Status,
		&m.AssignedApprover,
		&createdAt,
		&m.CreatedBy,
		&updatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		return m, err
	}
	if description.Valid {
		m.Description = &description.String
	}
	m.CreatedAt = fromNanos(createdAt)
	m.LastUpdatedAt = fromNanos(updatedAt)
	return m, nil
}

// FindRequestByID retrieves a request by its ID.
func (r *RequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE request_id = ?`
	m, err := scanRequest(r.DB.QueryRowContext(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to find request by ID %s: %w", requestID, err)
	}
	req := mapping.ToDomainRequest(m)
	return &req, nil
}

// CreateRequest inserts the request and its CREATE entry in one transaction.
func (r *RequestRepository) CreateRequest(ctx context.Context, request domain.Request) (*domain.AuditLogEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelRequest(request)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO requests (`+requestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RequestID, m.Title, m.Type, m.Description, string(m.Status), m.AssignedApprover,
		toNanos(m.CreatedAt), m.CreatedBy, toNanos(m.LastUpdatedAt), m.LastUpdatedBy, m.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert request %s: %w", request.RequestID, err)
	}

	entry, err := appendAuditLog(ctx, tx, domain.CreationEntry(request))
	if err != nil {
		return nil, err
	}

	if err := r.Commit(tx); err != nil {
		return nil, err
	}
	return entry, nil
}

// ApplyTransition re-reads the request inside an immediate transaction, checks it
// still holds t.From, writes the new state and appends the audit entry.
func (r *RequestRepository) ApplyTransition(ctx context.Context, t domain.Transition) (*domain.Request, *domain.AuditLogEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Rollback(ctx, tx)

	m, err := scanRequest(tx.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE request_id = ?`, t.RequestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, t.RequestID)
		}
		return nil, nil, fmt.Errorf("failed to read request %s: %w", t.RequestID, err)
	}

	current := mapping.ToDomainRequest(m)
	next, entry, ok := t.Apply(current)
	if !ok {
		return nil, nil, fmt.Errorf("%w: request %s is %s, expected %s", apperrors.ErrInvalidTransition, t.RequestID, current.Status, t.From)
	}

	nm := mapping.ToModelRequest(next)
	res, err := tx.ExecContext(ctx, `
		UPDATE requests
		SET title = ?, request_type = ?, description = ?, status = ?,
		    last_updated_at = ?, last_updated_by = ?, version = ?
		WHERE request_id = ? AND status = ? AND version = ?`,
		nm.Title, nm.Type, nm.Description, string(nm.Status),
		toNanos(nm.LastUpdatedAt), nm.LastUpdatedBy, nm.Version,
		nm.RequestID, string(t.From), current.Version,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update request %s: %w", t.RequestID, err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return nil, nil, fmt.Errorf("%w: request %s changed concurrently", apperrors.ErrInvalidTransition, t.RequestID)
	}

	stored, err := appendAuditLog(ctx, tx, entry)
	if err != nil {
		return nil, nil, err
	}

	if err := r.Commit(tx); err != nil {
		return nil, nil, err
	}
	return &next, stored, nil
}

// ListRequests returns one page of requests ordered by (created_at DESC, request_id DESC).
func (r *RequestRepository) ListRequests(ctx context.Context, filter domain.RequestFilter, limit int, nextToken *string) ([]domain.Request, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	conds, args := filterConditions(filter)
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, decodeErr))
		}
		conds = append(conds, "(created_at < ? OR (created_at = ? AND request_id < ?))")
		args = append(args, toNanos(lastCreatedAt), toNanos(lastCreatedAt), lastID)
	}
	args = append(args, fetchLimit)

	query := `SELECT ` + requestColumns + ` FROM requests ` + whereClause(conds) +
		` ORDER BY created_at DESC, request_id DESC LIMIT ?`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query requests", err)
	}
	defer rows.Close()

	modelRequests := make([]models.Request, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanRequest(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan request row", scanErr)
		}
		modelRequests = append(modelRequests, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating request rows", err)
	}

	var newNextToken *string
	if len(modelRequests) > limit {
		last := modelRequests[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.RequestID)
		newNextToken = &token
		modelRequests = modelRequests[:limit]
	}
	return mapping.ToDomainRequestSlice(modelRequests), newNextToken, nil
}

// CountRequestsByStatus groups matching requests by status.
func (r *RequestRepository) CountRequestsByStatus(ctx context.Context, filter domain.RequestFilter) (domain.StatusCounts, error) {
	conds, args := filterConditions(filter)
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM requests `+whereClause(conds)+` GROUP BY status`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}
	defer rows.Close()

	counts := domain.StatusCounts{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan request count: %w", err)
		}
		counts[domain.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request counts: %w", err)
	}
	return counts, nil
}

func filterConditions(filter domain.RequestFilter) ([]string, []any) {
	var conds []string
	var args []any
	if filter.CreatedBy != "" {
		conds = append(conds, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if filter.AssignedApprover != "" {
		conds = append(conds, "assigned_approver = ?")
		args = append(args, filter.AssignedApprover)
	}
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Type != nil {
		conds = append(conds, "request_type = ?")
		args = append(args, string(*filter.Type))
	}
	return conds, args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conds, " AND ")
}
