package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/SscSPs/flowgate/internal/apperrors"
	"github.com/SscSPs/flowgate/internal/core/domain"
	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
	"github.com/SscSPs/flowgate/internal/middleware"
	"github.com/SscSPs/flowgate/internal/models"
	"github.com/SscSPs/flowgate/internal/utils/mapping"
	"github.com/SscSPs/flowgate/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = `request_id, title, request_type, description, status, assigned_approver,
		created_at, created_by, last_updated_at, last_updated_by, version`

// PgxRequestRepository implements the request store on PostgreSQL.
type PgxRequestRepository struct {
	BaseRepository
}

func newPgxRequestRepository(pool *pgxpool.Pool) *PgxRequestRepository {
	return &PgxRequestRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RequestRepositoryFacade = (*PgxRequestRepository)(nil)

func scanRequest(row pgx.Row) (models.Request, error) {
	var m models.Request
	err := row.Scan(
		&m.RequestID,
		&m.Title,
		&m.Type,
		&m.Description,
		&m.Status,
		&m.AssignedApprover,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

// FindRequestByID retrieves a request by its ID.
func (r *PgxRequestRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE request_id = $1;`
	m, err := scanRequest(r.Pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to find request by ID %s: %w", requestID, err)
	}
	req := mapping.ToDomainRequest(m)
	return &req, nil
}

// CreateRequest inserts the request and its CREATE entry in one transaction.
func (r *PgxRequestRepository) CreateRequest(ctx context.Context, request domain.Request) (*domain.AuditLogEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.rollback(ctx, tx)

	m := mapping.ToModelRequest(request)
	query := `
		INSERT INTO requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, query,
		m.RequestID, m.Title, m.Type, m.Description, m.Status, m.AssignedApprover,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert request %s: %w", request.RequestID, err)
	}

	entry, err := appendAuditLog(ctx, tx, domain.CreationEntry(request))
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return entry, nil
}

// ApplyTransition locks the request row, checks it still holds t.From, writes the
// new state and appends the audit entry before committing.
func (r *PgxRequestRepository) ApplyTransition(ctx context.Context, t domain.Transition) (*domain.Request, *domain.AuditLogEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.rollback(ctx, tx)

	query := `SELECT ` + requestColumns + ` FROM requests WHERE request_id = $1 FOR UPDATE;`
	m, err := scanRequest(tx.QueryRow(ctx, query, t.RequestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: request %s", apperrors.ErrNotFound, t.RequestID)
		}
		return nil, nil, fmt.Errorf("failed to lock request %s: %w", t.RequestID, err)
	}

	current := mapping.ToDomainRequest(m)
	next, entry, ok := t.Apply(current)
	if !ok {
		return nil, nil, fmt.Errorf("%w: request %s is %s, expected %s", apperrors.ErrInvalidTransition, t.RequestID, current.Status, t.From)
	}

	nm := mapping.ToModelRequest(next)
	update := `
		UPDATE requests
		SET title = $1, request_type = $2, description = $3, status = $4,
		    last_updated_at = $5, last_updated_by = $6, version = $7
		WHERE request_id = $8 AND status = $9 AND version = $10;
	`
	cmdTag, err := tx.Exec(ctx, update,
		nm.Title, nm.Type, nm.Description, nm.Status,
		nm.LastUpdatedAt, nm.LastUpdatedBy, nm.Version,
		nm.RequestID, string(t.From), current.Version,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update request %s: %w", t.RequestID, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return nil, nil, fmt.Errorf("%w: request %s changed concurrently", apperrors.ErrInvalidTransition, t.RequestID)
	}

	stored, err := appendAuditLog(ctx, tx, entry)
	if err != nil {
		return nil, nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}
	return &next, stored, nil
}

// ListRequests returns one page of requests ordered by (created_at DESC, request_id DESC).
func (r *PgxRequestRepository) ListRequests(ctx context.Context, filter domain.RequestFilter, limit int, nextToken *string) ([]domain.Request, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	where, args := filterClause(filter)
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, decodeErr))
		}
		args = append(args, lastCreatedAt, lastID)
		where = appendCondition(where, fmt.Sprintf("(created_at, request_id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, fetchLimit)

	query := `SELECT ` + requestColumns + ` FROM requests ` + where +
		` ORDER BY created_at DESC, request_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
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

	middleware.GetLoggerFromCtx(ctx).Debug("Listed requests", slog.Int("count", len(modelRequests)))
	return mapping.ToDomainRequestSlice(modelRequests), newNextToken, nil
}

// CountRequestsByStatus groups matching requests by status.
func (r *PgxRequestRepository) CountRequestsByStatus(ctx context.Context, filter domain.RequestFilter) (domain.StatusCounts, error) {
	where, args := filterClause(filter)
	query := `SELECT status, COUNT(*) FROM requests ` + where + ` GROUP BY status;`

	rows, err := r.Pool.Query(ctx, query, args...)
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

func (r *PgxRequestRepository) rollback(ctx context.Context, tx pgx.Tx) {
	if err := r.Rollback(ctx, tx); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to rollback transaction", slog.String("error", err.Error()))
	}
}

func filterClause(filter domain.RequestFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.CreatedBy != "" {
		add("created_by", filter.CreatedBy)
	}
	if filter.AssignedApprover != "" {
		add("assigned_approver", filter.AssignedApprover)
	}
	if filter.Status != nil {
		add("status", string(*filter.Status))
	}
	if filter.Type != nil {
		add("request_type", string(*filter.Type))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func appendCondition(where, cond string) string {
	if where == "" {
		return "WHERE " + cond
	}
	return where + " AND " + cond
}
