package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/flowgate/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name    string
		current domain.Status
		op      domain.Operation
		want    domain.Status
		wantOK  bool
	}{
		{name: "edit draft", current: domain.StatusDraft, op: domain.OpEdit, want: domain.StatusDraft, wantOK: true},
		{name: "submit draft", current: domain.StatusDraft, op: domain.OpSubmit, want: domain.StatusSubmitted, wantOK: true},
		{name: "approve submitted", current: domain.StatusSubmitted, op: domain.OpApprove, want: domain.StatusApproved, wantOK: true},
		{name: "reject submitted", current: domain.StatusSubmitted, op: domain.OpReject, want: domain.StatusRejected, wantOK: true},
		{name: "approve draft", current: domain.StatusDraft, op: domain.OpApprove},
		{name: "reject draft", current: domain.StatusDraft, op: domain.OpReject},
		{name: "edit submitted", current: domain.StatusSubmitted, op: domain.OpEdit},
		{name: "submit submitted", current: domain.StatusSubmitted, op: domain.OpSubmit},
		{name: "create is not a graph edge", current: domain.StatusDraft, op: domain.OpCreate},
		{name: "read is not a graph edge", current: domain.StatusDraft, op: domain.OpRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := domain.NextStatus(tt.current, tt.op)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	ops := []domain.Operation{domain.OpEdit, domain.OpSubmit, domain.OpApprove, domain.OpReject}
	for _, s := range []domain.Status{domain.StatusApproved, domain.StatusRejected} {
		assert.True(t, s.IsTerminal())
		for _, op := range ops {
			_, ok := domain.NextStatus(s, op)
			assert.False(t, ok, "%s from %s", op, s)
		}
	}
	assert.False(t, domain.StatusDraft.IsTerminal())
	assert.False(t, domain.StatusSubmitted.IsTerminal())
}

func TestStatusValid(t *testing.T) {
	assert.Len(t, domain.Statuses, 4)
	for _, s := range domain.Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, domain.Status("PENDING").Valid())
	assert.False(t, domain.Status("draft").Valid())
	assert.False(t, domain.Status("").Valid())
}

func TestAuditActionFor(t *testing.T) {
	expected := map[domain.Operation]domain.AuditAction{
		domain.OpCreate:  domain.ActionCreate,
		domain.OpEdit:    domain.ActionUpdate,
		domain.OpSubmit:  domain.ActionSubmit,
		domain.OpApprove: domain.ActionApprove,
		domain.OpReject:  domain.ActionReject,
	}
	for op, want := range expected {
		got, ok := domain.AuditActionFor(op)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := domain.AuditActionFor(domain.OpRead)
	assert.False(t, ok)
}

func TestRequestChangesApply(t *testing.T) {
	desc := "old"
	r := domain.Request{Title: "Leave", Type: domain.TypeLeave, Description: &desc, Status: domain.StatusDraft}

	newTitle := "Annual leave"
	got := domain.RequestChanges{Title: &newTitle}.Apply(r)
	assert.Equal(t, "Annual leave", got.Title)
	assert.Equal(t, domain.TypeLeave, got.Type)
	assert.Equal(t, "old", *got.Description)

	expense := domain.TypeExpense
	newDesc := "taxi"
	got = domain.RequestChanges{Type: &expense, Description: &newDesc}.Apply(r)
	assert.Equal(t, "Leave", got.Title)
	assert.Equal(t, domain.TypeExpense, got.Type)
	assert.Equal(t, "taxi", *got.Description)
	assert.Equal(t, "old", desc, "original description must not be aliased")

	assert.Equal(t, r, domain.RequestChanges{}.Apply(r))
}

func TestParseRole(t *testing.T) {
	r, ok := domain.ParseRole(" approver ")
	assert.True(t, ok)
	assert.Equal(t, domain.RoleApprover, r)

	_, ok = domain.ParseRole("SUPERUSER")
	assert.False(t, ok)
}

func TestComputeIntegrityChains(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	create := domain.AuditLogEntry{
		RequestID:   "r1",
		Action:      domain.ActionCreate,
		ToStatus:    domain.StatusDraft,
		PerformedBy: "u1",
		CreatedAt:   at,
	}
	h1 := domain.ComputeIntegrity("", create)
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, domain.ComputeIntegrity("", create), "hash must be deterministic")

	submit := domain.AuditLogEntry{
		RequestID:   "r1",
		Action:      domain.ActionSubmit,
		FromStatus:  domain.StatusPtr(domain.StatusDraft),
		ToStatus:    domain.StatusSubmitted,
		PerformedBy: "u1",
		CreatedAt:   at.Add(time.Minute),
	}
	h2 := domain.ComputeIntegrity(h1, submit)
	assert.NotEqual(t, h2, domain.ComputeIntegrity("", submit), "hash must depend on the previous entry")

	tampered := submit
	tampered.PerformedBy = "u2"
	assert.NotEqual(t, h2, domain.ComputeIntegrity(h1, tampered))
}

func TestTransitionApply(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	current := domain.Request{
		RequestID:        "r1",
		Title:            "Leave",
		Type:             domain.TypeLeave,
		Status:           domain.StatusDraft,
		AssignedApprover: "a1",
		AuditFields:      domain.AuditFields{CreatedAt: created, CreatedBy: "u1", LastUpdatedAt: created, LastUpdatedBy: "u1", Version: 1},
	}
	at := created.Add(time.Hour)
	tr := domain.Transition{
		RequestID: "r1",
		Operation: domain.OpSubmit,
		From:      domain.StatusDraft,
		To:        domain.StatusSubmitted,
		Actor:     domain.Actor{ID: "u1", Role: domain.RoleUser},
		At:        at,
	}

	next, entry, ok := tr.Apply(current)
	assert.True(t, ok)
	assert.Equal(t, domain.StatusSubmitted, next.Status)
	assert.Equal(t, int64(2), next.Version)
	assert.Equal(t, at, next.LastUpdatedAt)
	assert.Equal(t, "u1", next.CreatedBy)
	assert.Equal(t, "a1", next.AssignedApprover)

	assert.Equal(t, domain.ActionSubmit, entry.Action)
	if assert.NotNil(t, entry.FromStatus) {
		assert.Equal(t, domain.StatusDraft, *entry.FromStatus)
	}
	assert.Equal(t, next.Status, entry.ToStatus)
	assert.Equal(t, next.LastUpdatedAt, entry.CreatedAt)

	// Stale precondition.
	current.Status = domain.StatusSubmitted
	_, _, ok = tr.Apply(current)
	assert.False(t, ok)
}

func TestTransitionApplyKeepsUpdatedAtMonotonic(t *testing.T) {
	latest := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	current := domain.Request{RequestID: "r1", Status: domain.StatusDraft, AuditFields: domain.AuditFields{LastUpdatedAt: latest}}
	tr := domain.Transition{RequestID: "r1", Operation: domain.OpEdit, From: domain.StatusDraft, To: domain.StatusDraft, At: latest.Add(-time.Minute)}

	next, entry, ok := tr.Apply(current)
	assert.True(t, ok)
	assert.Equal(t, latest, next.LastUpdatedAt)
	assert.Equal(t, latest, entry.CreatedAt)
	assert.Equal(t, domain.ActionUpdate, entry.Action)
}

func TestCreationEntry(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	r := domain.Request{RequestID: "r1", Status: domain.InitialStatus, AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: "u1"}}

	e := domain.CreationEntry(r)
	assert.Equal(t, domain.ActionCreate, e.Action)
	assert.Nil(t, e.FromStatus)
	assert.Equal(t, domain.StatusDraft, e.ToStatus)
	assert.Equal(t, "u1", e.PerformedBy)
	assert.Equal(t, now, e.CreatedAt)
}
