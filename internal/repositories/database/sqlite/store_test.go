package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/flowgate/internal/apperrors"
	"github.com/SscSPs/flowgate/internal/core/domain"
	"github.com/SscSPs/flowgate/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	ctx      context.Context
	db       *sql.DB
	requests *RequestRepository
	logs     *AuditLogRepository
	base     time.Time
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	path := filepath.Join(s.T().TempDir(), "flowgate.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.Require().NoError(database.MigrateSQLite(logger, path))

	db, err := database.NewSQLiteDB(s.ctx, path)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	s.db = db
	s.requests = newRequestRepository(db)
	s.logs = newAuditLogRepository(db)
	s.base = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) newRequest(id, creator, approver string, at time.Time) domain.Request {
	return domain.Request{
		RequestID:        id,
		Title:            "Leave " + id,
		Type:             domain.TypeLeave,
		Status:           domain.StatusDraft,
		AssignedApprover: approver,
		AuditFields: domain.AuditFields{
			CreatedAt:     at,
			CreatedBy:     creator,
			LastUpdatedAt: at,
			LastUpdatedBy: creator,
			Version:       1,
		},
	}
}

func (s *StoreTestSuite) create(req domain.Request) *domain.AuditLogEntry {
	entry, err := s.requests.CreateRequest(s.ctx, req)
	s.Require().NoError(err)
	return entry
}

func (s *StoreTestSuite) transition(id string, op domain.Operation, from, to domain.Status, actor string, at time.Time) (*domain.Request, *domain.AuditLogEntry, error) {
	return s.requests.ApplyTransition(s.ctx, domain.Transition{
		RequestID: id,
		Operation: op,
		From:      from,
		To:        to,
		Actor:     domain.Actor{ID: actor, Role: domain.RoleApprover},
		At:        at,
	})
}

func (s *StoreTestSuite) TestCreateRequest_PersistsRequestAndCreateEntry() {
	desc := "family trip"
	req := s.newRequest("r1", "u1", "a1", s.base)
	req.Description = &desc

	entry := s.create(req)
	s.Equal(domain.ActionCreate, entry.Action)
	s.Nil(entry.FromStatus)
	s.Equal(domain.StatusDraft, entry.ToStatus)
	s.NotZero(entry.EntryID)
	s.Equal(domain.ComputeIntegrity("", *entry), entry.Integrity)

	got, err := s.requests.FindRequestByID(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal(req.Title, got.Title)
	s.Equal(domain.StatusDraft, got.Status)
	s.Require().NotNil(got.Description)
	s.Equal(desc, *got.Description)
	s.True(s.base.Equal(got.CreatedAt))
	s.Equal(int64(1), got.Version)

	logs, err := s.logs.ListAuditLogsByRequestID(s.ctx, "r1")
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(*entry, logs[0])
}

func (s *StoreTestSuite) TestCreateRequest_DuplicateIDWritesNothing() {
	s.create(s.newRequest("r1", "u1", "a1", s.base))

	_, err := s.requests.CreateRequest(s.ctx, s.newRequest("r1", "u2", "a2", s.base))
	s.Error(err)

	logs, err := s.logs.ListAuditLogsByRequestID(s.ctx, "r1")
	s.Require().NoError(err)
	s.Len(logs, 1)
}

func (s *StoreTestSuite) TestFindRequestByID_NotFound() {
	_, err := s.requests.FindRequestByID(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestApplyTransition_ChainsEntries() {
	created := s.create(s.newRequest("r1", "u1", "a1", s.base))

	title := "Annual leave"
	updated, edit, err := s.requests.ApplyTransition(s.ctx, domain.Transition{
		RequestID: "r1",
		Operation: domain.OpEdit,
		From:      domain.StatusDraft,
		To:        domain.StatusDraft,
		Changes:   domain.RequestChanges{Title: &title},
		Actor:     domain.Actor{ID: "u1", Role: domain.RoleUser},
		At:        s.base.Add(time.Minute),
	})
	s.Require().NoError(err)
	s.Equal(title, updated.Title)
	s.Equal(int64(2), updated.Version)
	s.Equal(domain.ActionUpdate, edit.Action)
	s.Equal(domain.ComputeIntegrity(created.Integrity, *edit), edit.Integrity)

	submitted, submit, err := s.transition("r1", domain.OpSubmit, domain.StatusDraft, domain.StatusSubmitted, "u1", s.base.Add(2*time.Minute))
	s.Require().NoError(err)
	s.Equal(domain.StatusSubmitted, submitted.Status)
	s.Require().NotNil(submit.FromStatus)
	s.Equal(domain.StatusDraft, *submit.FromStatus)
	s.Greater(submit.EntryID, edit.EntryID)

	got, err := s.requests.FindRequestByID(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal(domain.StatusSubmitted, got.Status)
	s.Equal(title, got.Title)
	s.Equal("u1", got.LastUpdatedBy)
	s.Equal(int64(3), got.Version)

	logs, err := s.logs.ListAuditLogsByRequestID(s.ctx, "r1")
	s.Require().NoError(err)
	s.Require().Len(logs, 3)
	s.Equal([]domain.AuditAction{domain.ActionSubmit, domain.ActionUpdate, domain.ActionCreate},
		[]domain.AuditAction{logs[0].Action, logs[1].Action, logs[2].Action})
}

func (s *StoreTestSuite) TestApplyTransition_StalePreconditionWritesNothing() {
	s.create(s.newRequest("r1", "u1", "a1", s.base))

	_, _, err := s.transition("r1", domain.OpApprove, domain.StatusSubmitted, domain.StatusApproved, "a1", s.base.Add(time.Minute))
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	got, err := s.requests.FindRequestByID(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, got.Status)
	s.Equal(int64(1), got.Version)

	logs, err := s.logs.ListAuditLogsByRequestID(s.ctx, "r1")
	s.Require().NoError(err)
	s.Len(logs, 1)
}

func (s *StoreTestSuite) TestApplyTransition_FailedAuditAppendRollsBackStatus() {
	s.create(s.newRequest("r1", "u1", "a1", s.base))

	_, err := s.db.ExecContext(s.ctx, `
		CREATE TRIGGER audit_logs_reject_submit
		BEFORE INSERT ON audit_logs
		WHEN NEW.action = 'SUBMIT'
		BEGIN
			SELECT RAISE(ABORT, 'audit sink unavailable');
		END`)
	s.Require().NoError(err)

	_, _, err = s.transition("r1", domain.OpSubmit, domain.StatusDraft, domain.StatusSubmitted, "u1", s.base.Add(time.Minute))
	s.ErrorContains(err, "audit sink unavailable")

	got, err := s.requests.FindRequestByID(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, got.Status)
	s.Equal(int64(1), got.Version)

	logs, err := s.logs.ListAuditLogsByRequestID(s.ctx, "r1")
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(domain.ActionCreate, logs[0].Action)
}

func (s *StoreTestSuite) TestApplyTransition_NotFound() {
	_, _, err := s.transition("missing", domain.OpSubmit, domain.StatusDraft, domain.StatusSubmitted, "u1", s.base)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreTestSuite) TestAuditLogsAreAppendOnly() {
	s.create(s.newRequest("r1", "u1", "a1", s.base))

	_, err := s.db.ExecContext(s.ctx, `UPDATE audit_logs SET performed_by = 'mallory'`)
	s.ErrorContains(err, "append-only")

	_, err = s.db.ExecContext(s.ctx, `DELETE FROM audit_logs`)
	s.ErrorContains(err, "append-only")
}

func (s *StoreTestSuite) TestListRequests_PaginatesNewestFirst() {
	for i := 0; i < 5; i++ {
		s.create(s.newRequest(fmt.Sprintf("r%d", i), "u1", "a1", s.base.Add(time.Duration(i)*time.Minute)))
	}
	// Same timestamp as r4, ordered by id as tie-breaker.
	s.create(s.newRequest("r5", "u1", "a1", s.base.Add(4*time.Minute)))
	s.create(s.newRequest("other", "u2", "a1", s.base))

	filter := domain.RequestFilter{CreatedBy: "u1"}
	page1, token, err := s.requests.ListRequests(s.ctx, filter, 4, nil)
	s.Require().NoError(err)
	s.Require().NotNil(token)
	s.Equal([]string{"r5", "r4", "r3", "r2"}, ids(page1))

	page2, token, err := s.requests.ListRequests(s.ctx, filter, 4, token)
	s.Require().NoError(err)
	s.Nil(token)
	s.Equal([]string{"r1", "r0"}, ids(page2))
}

func (s *StoreTestSuite) TestListRequests_Filters() {
	s.create(s.newRequest("r1", "u1", "a1", s.base))
	s.create(s.newRequest("r2", "u1", "a2", s.base.Add(time.Minute)))
	s.create(s.newRequest("r3", "u2", "a1", s.base.Add(2*time.Minute)))
	_, _, err := s.transition("r3", domain.OpSubmit, domain.StatusDraft, domain.StatusSubmitted, "u2", s.base.Add(3*time.Minute))
	s.Require().NoError(err)

	submitted := domain.StatusSubmitted
	got, _, err := s.requests.ListRequests(s.ctx, domain.RequestFilter{AssignedApprover: "a1", Status: &submitted}, 10, nil)
	s.Require().NoError(err)
	s.Equal([]string{"r3"}, ids(got))

	expense := domain.TypeExpense
	got, _, err = s.requests.ListRequests(s.ctx, domain.RequestFilter{Type: &expense}, 10, nil)
	s.Require().NoError(err)
	s.Empty(got)

	got, _, err = s.requests.ListRequests(s.ctx, domain.RequestFilter{}, 10, nil)
	s.Require().NoError(err)
	s.Len(got, 3)
}

func (s *StoreTestSuite) TestListRequests_InvalidToken() {
	bad := "not-a-token!"
	_, _, err := s.requests.ListRequests(s.ctx, domain.RequestFilter{}, 10, &bad)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *StoreTestSuite) TestCountRequestsByStatus() {
	s.create(s.newRequest("r1", "u1", "a1", s.base))
	s.create(s.newRequest("r2", "u1", "a1", s.base))
	s.create(s.newRequest("r3", "u2", "a1", s.base))
	_, _, err := s.transition("r2", domain.OpSubmit, domain.StatusDraft, domain.StatusSubmitted, "u1", s.base.Add(time.Minute))
	s.Require().NoError(err)

	counts, err := s.requests.CountRequestsByStatus(s.ctx, domain.RequestFilter{CreatedBy: "u1"})
	s.Require().NoError(err)
	s.Equal(1, counts[domain.StatusDraft])
	s.Equal(1, counts[domain.StatusSubmitted])
	s.Equal(0, counts[domain.StatusApproved])
	s.Equal(2, counts.Total())
}

func ids(rs []domain.Request) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.RequestID
	}
	return out
}

func TestTimeRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 1, 8, 0, 0, 123456000, time.FixedZone("X", 3600))
	got := fromNanos(toNanos(at))
	require.True(t, at.Equal(got))
	assert.Equal(t, time.UTC, got.Location())
}
