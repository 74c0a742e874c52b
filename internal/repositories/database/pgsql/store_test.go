package pgsql

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/flowgate/internal/apperrors"
	"github.com/SscSPs/flowgate/internal/core/domain"
	"github.com/SscSPs/flowgate/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
)

// Runs against a live PostgreSQL when PGSQL_URL is set. Audit rows cannot be
// deleted, so every test works on ids of its own.
type PgxStoreTestSuite struct {
	suite.Suite
	ctx      context.Context
	pool     *pgxpool.Pool
	requests *PgxRequestRepository
	logs     *PgxAuditLogRepository
	base     time.Time
}

func TestPgxStoreTestSuite(t *testing.T) {
	suite.Run(t, new(PgxStoreTestSuite))
}

func (s *PgxStoreTestSuite) SetupSuite() {
	url := os.Getenv("PGSQL_URL")
	if url == "" {
		s.T().Skip("PGSQL_URL not set")
	}
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.Require().NoError(database.MigratePostgres(logger, url))

	pool, err := database.NewPgxPool(s.ctx, url, true)
	s.Require().NoError(err)
	s.pool = pool
	s.requests = newPgxRequestRepository(pool)
	s.logs = newPgxAuditLogRepository(pool)
	s.base = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
}

func (s *PgxStoreTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func (s *PgxStoreTestSuite) newRequest(id, creator, approver string, at time.Time) domain.Request {
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

func (s *PgxStoreTestSuite) create(req domain.Request) *domain.AuditLogEntry {
	entry, err := s.requests.CreateRequest(s.ctx, req)
	s.Require().NoError(err)
	return entry
}

func (s *PgxStoreTestSuite) transition(id string, op domain.Operation, from, to domain.Status, actor string, at time.Time) (*domain.Request, *domain.AuditLogEntry, error) {
	return s.requests.ApplyTransition(s.ctx, domain.Transition{
		RequestID: id,
		Operation: op,
		From:      from,
		To:        to,
		Actor:     domain.Actor{ID: actor, Role: domain.RoleApprover},
		At:        at,
	})
}

func (s *PgxStoreTestSuite) assertUntouched(id string) {
	got, err := s.requests.FindRequestByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, got.Status)
	s.Equal(int64(1), got.Version)

	logs, err := s.logs.ListAuditLogsByRequestID(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(domain.ActionCreate, logs[0].Action)
}

func (s *PgxStoreTestSuite) TestCreateRequest_PersistsRequestAndCreateEntry() {
	id := newID("r")
	desc := "family trip"
	req := s.newRequest(id, "u1", "a1", s.base)
	req.Description = &desc

	entry := s.create(req)
	s.Equal(domain.ActionCreate, entry.Action)
	s.Nil(entry.FromStatus)
	s.NotZero(entry.EntryID)
	s.Equal(domain.ComputeIntegrity("", *entry), entry.Integrity)

	got, err := s.requests.FindRequestByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(req.Title, got.Title)
	s.Require().NotNil(got.Description)
	s.Equal(desc, *got.Description)
	s.True(s.base.Equal(got.CreatedAt))
	s.Equal(int64(1), got.Version)

	logs, err := s.logs.ListAuditLogsByRequestID(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(entry.EntryID, logs[0].EntryID)
	s.Equal(entry.Integrity, logs[0].Integrity)
}

func (s *PgxStoreTestSuite) TestCreateRequest_DuplicateIDWritesNothing() {
	id := newID("r")
	s.create(s.newRequest(id, "u1", "a1", s.base))

	_, err := s.requests.CreateRequest(s.ctx, s.newRequest(id, "u2", "a2", s.base))
	s.Error(err)

	logs, err := s.logs.ListAuditLogsByRequestID(s.ctx, id)
	s.Require().NoError(err)
	s.Len(logs, 1)
}

func (s *PgxStoreTestSuite) TestFindRequestByID_NotFound() {
	_, err := s.requests.FindRequestByID(s.ctx, newID("missing"))
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PgxStoreTestSuite) TestApplyTransition_ChainsEntries() {
	id := newID("r")
	created := s.create(s.newRequest(id, "u1", "a1", s.base))

	title := "Annual leave"
	updated, edit, err := s.requests.ApplyTransition(s.ctx, domain.Transition{
		RequestID: id,
		Operation: domain.OpEdit,
		From:      domain.StatusDraft,
		To:        domain.StatusDraft,
		Changes:   domain.RequestChanges{Title: &title},
		Actor:     domain.Actor{ID: "u1", Role: domain.RoleUser},
		At:        s.base.Add(time.Minute),
	})
	s.Require().NoError(err)
	s.Equal(int64(2), updated.Version)
	s.Equal(domain.ComputeIntegrity(created.Integrity, *edit), edit.Integrity)

	_, submit, err := s.transition(id, domain.OpSubmit, domain.StatusDraft, domain.StatusSubmitted, "u1", s.base.Add(2*time.Minute))
	s.Require().NoError(err)
	s.Greater(submit.EntryID, edit.EntryID)
	s.Equal(domain.ComputeIntegrity(edit.Integrity, *submit), submit.Integrity)

	got, err := s.requests.FindRequestByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.StatusSubmitted, got.Status)
	s.Equal(title, got.Title)
	s.Equal(int64(3), got.Version)

	logs, err := s.logs.ListAuditLogsByRequestID(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(logs, 3)
	s.Equal([]domain.AuditAction{domain.ActionSubmit, domain.ActionUpdate, domain.ActionCreate},
		[]domain.AuditAction{logs[0].Action, logs[1].Action, logs[2].Action})
}

func (s *PgxStoreTestSuite) TestApplyTransition_StalePreconditionWritesNothing() {
	id := newID("r")
	s.create(s.newRequest(id, "u1", "a1", s.base))

	_, _, err := s.transition(id, domain.OpApprove, domain.StatusSubmitted, domain.StatusApproved, "a1", s.base.Add(time.Minute))
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	s.assertUntouched(id)
}

func (s *PgxStoreTestSuite) TestApplyTransition_ConcurrentDecisionsOneWins() {
	id := newID("r")
	s.create(s.newRequest(id, "u1", "a1", s.base))
	_, _, err := s.transition(id, domain.OpSubmit, domain.StatusDraft, domain.StatusSubmitted, "u1", s.base.Add(time.Minute))
	s.Require().NoError(err)

	ops := []struct {
		op domain.Operation
		to domain.Status
	}{
		{domain.OpApprove, domain.StatusApproved},
		{domain.OpReject, domain.StatusRejected},
	}
	errs := make(chan error, len(ops))
	for _, o := range ops {
		go func(op domain.Operation, to domain.Status) {
			_, _, err := s.transition(id, op, domain.StatusSubmitted, to, "a1", s.base.Add(2*time.Minute))
			errs <- err
		}(o.op, o.to)
	}

	var failed int
	for range ops {
		if err := <-errs; err != nil {
			s.ErrorIs(err, apperrors.ErrInvalidTransition)
			failed++
		}
	}
	s.Equal(1, failed)

	got, err := s.requests.FindRequestByID(s.ctx, id)
	s.Require().NoError(err)
	s.True(got.Status.IsTerminal())
	s.Equal(int64(3), got.Version)

	logs, err := s.logs.ListAuditLogsByRequestID(s.ctx, id)
	s.Require().NoError(err)
	s.Len(logs, 3)
}

func (s *PgxStoreTestSuite) TestApplyTransition_FailedAuditAppendRollsBackStatus() {
	id := newID("r")
	s.create(s.newRequest(id, "u1", "a1", s.base))

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	fn := "audit_logs_reject_submit_" + suffix
	_, err := s.pool.Exec(s.ctx, fmt.Sprintf(`
		CREATE FUNCTION %[1]s() RETURNS trigger AS $$
		BEGIN
			IF NEW.action = 'SUBMIT' AND NEW.request_id = '%[2]s' THEN
				RAISE EXCEPTION 'audit sink unavailable';
			END IF;
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;
		CREATE TRIGGER %[1]s BEFORE INSERT ON audit_logs
			FOR EACH ROW EXECUTE FUNCTION %[1]s();`, fn, id))
	s.Require().NoError(err)
	s.T().Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), fmt.Sprintf(`DROP TRIGGER IF EXISTS %[1]s ON audit_logs; DROP FUNCTION IF EXISTS %[1]s();`, fn))
	})

	_, _, err = s.transition(id, domain.OpSubmit, domain.StatusDraft, domain.StatusSubmitted, "u1", s.base.Add(time.Minute))
	s.ErrorContains(err, "audit sink unavailable")

	s.assertUntouched(id)
}

func (s *PgxStoreTestSuite) TestApplyTransition_NotFound() {
	_, _, err := s.transition(newID("missing"), domain.OpSubmit, domain.StatusDraft, domain.StatusSubmitted, "u1", s.base)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PgxStoreTestSuite) TestAuditLogsAreAppendOnly() {
	id := newID("r")
	s.create(s.newRequest(id, "u1", "a1", s.base))

	_, err := s.pool.Exec(s.ctx, `UPDATE audit_logs SET performed_by = 'mallory' WHERE request_id = $1`, id)
	s.ErrorContains(err, "append-only")

	_, err = s.pool.Exec(s.ctx, `DELETE FROM audit_logs WHERE request_id = $1`, id)
	s.ErrorContains(err, "append-only")
}

func (s *PgxStoreTestSuite) TestListRequests_PaginatesNewestFirst() {
	creator := newID("u")
	names := make([]string, 6)
	for i := 0; i < 5; i++ {
		names[i] = fmt.Sprintf("%s-r%d", creator, i)
		s.create(s.newRequest(names[i], creator, "a1", s.base.Add(time.Duration(i)*time.Minute)))
	}
	// Same timestamp as r4, ordered by id as tie-breaker.
	names[5] = creator + "-r5"
	s.create(s.newRequest(names[5], creator, "a1", s.base.Add(4*time.Minute)))

	filter := domain.RequestFilter{CreatedBy: creator}
	page1, token, err := s.requests.ListRequests(s.ctx, filter, 4, nil)
	s.Require().NoError(err)
	s.Require().NotNil(token)
	s.Equal([]string{names[5], names[4], names[3], names[2]}, ids(page1))

	page2, token, err := s.requests.ListRequests(s.ctx, filter, 4, token)
	s.Require().NoError(err)
	s.Nil(token)
	s.Equal([]string{names[1], names[0]}, ids(page2))
}

func (s *PgxStoreTestSuite) TestListRequests_Filters() {
	approver := newID("a")
	r1, r2 := newID("r"), newID("r")
	s.create(s.newRequest(r1, "u1", approver, s.base))
	s.create(s.newRequest(r2, "u2", approver, s.base.Add(time.Minute)))
	_, _, err := s.transition(r2, domain.OpSubmit, domain.StatusDraft, domain.StatusSubmitted, "u2", s.base.Add(2*time.Minute))
	s.Require().NoError(err)

	submitted := domain.StatusSubmitted
	got, _, err := s.requests.ListRequests(s.ctx, domain.RequestFilter{AssignedApprover: approver, Status: &submitted}, 10, nil)
	s.Require().NoError(err)
	s.Equal([]string{r2}, ids(got))

	expense := domain.TypeExpense
	got, _, err = s.requests.ListRequests(s.ctx, domain.RequestFilter{AssignedApprover: approver, Type: &expense}, 10, nil)
	s.Require().NoError(err)
	s.Empty(got)

	counts, err := s.requests.CountRequestsByStatus(s.ctx, domain.RequestFilter{AssignedApprover: approver})
	s.Require().NoError(err)
	s.Equal(1, counts[domain.StatusDraft])
	s.Equal(1, counts[domain.StatusSubmitted])
	s.Equal(2, counts.Total())
}

func (s *PgxStoreTestSuite) TestListRequests_InvalidToken() {
	bad := "not-a-token!"
	_, _, err := s.requests.ListRequests(s.ctx, domain.RequestFilter{}, 10, &bad)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func ids(rs []domain.Request) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.RequestID
	}
	return out
}
