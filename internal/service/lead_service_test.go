package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/oplog"
	"github.com/privatinsolvenz/lead-dashboard/internal/repository"
	"github.com/privatinsolvenz/lead-dashboard/internal/service"
	"github.com/privatinsolvenz/lead-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLeadService_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.leads.Create(ctx, &domain.CreateLeadRequest{
		TaskID:    "T1",
		LeadName:  "Jane Doe",
		Email:     "jane@example.test",
		TotalDebt: "12000",
	})
	require.NoError(t, err)
	assert.Equal(t, "T1", created.TaskID)
	assert.Equal(t, domain.PhaseInitialConsultation, created.Phase)
	assert.False(t, created.Qualified)
	assert.Equal(t, domain.DefaultExternalStatus, created.ExternalStatus.Status)
	assert.NotNil(t, created.Documents)

	got, err := f.leads.GetByTaskID(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	assert.Equal(t, []string{"T1"}, f.syncer.backgroundCalls())
	entries := f.entries(t)
	require.NotEmpty(t, entries)
	assert.Equal(t, "Lead created", entries[0].Message)
}

func TestLeadService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.leads.Create(ctx, &domain.CreateLeadRequest{LeadName: "No id"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = f.leads.Create(ctx, &domain.CreateLeadRequest{TaskID: "T1", Phase: "bogus"})
	assert.ErrorIs(t, err, service.ErrInvalidPhase)

	_, err = f.leads.Create(ctx, &domain.CreateLeadRequest{TaskID: "T1"})
	require.NoError(t, err)
	_, err = f.leads.Create(ctx, &domain.CreateLeadRequest{TaskID: "T1"})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestLeadService_CreateConflictsWithDeletedLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.leads.Create(ctx, &domain.CreateLeadRequest{TaskID: "T1"})
	require.NoError(t, err)
	require.NoError(t, f.leads.Delete(ctx, "T1"))

	_, err = f.leads.Create(ctx, &domain.CreateLeadRequest{TaskID: "T1"})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestLeadService_CreateQualifiedAdvances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	advanced, err := f.leads.Create(ctx, &domain.CreateLeadRequest{TaskID: "T1", Qualified: true})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseChecklist, advanced.Phase)

	explicit, err := f.leads.Create(ctx, &domain.CreateLeadRequest{
		TaskID: "T2", Qualified: true, Phase: domain.PhaseInitialConsultation,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseInitialConsultation, explicit.Phase)
}

func TestLeadService_UpdateAutoAdvance(t *testing.T) {
	tests := []struct {
		name      string
		start     domain.Phase
		req       domain.UpdateLeadRequest
		wantPhase domain.Phase
	}{
		{
			name:      "qualifying in initial consultation advances",
			start:     domain.PhaseInitialConsultation,
			req:       domain.UpdateLeadRequest{Qualified: boolPtr(true)},
			wantPhase: domain.PhaseChecklist,
		},
		{
			name:      "explicit phase wins",
			start:     domain.PhaseInitialConsultation,
			req:       domain.UpdateLeadRequest{Qualified: boolPtr(true), Phase: phasePtr(domain.PhaseInitialConsultation)},
			wantPhase: domain.PhaseInitialConsultation,
		},
		{
			name:      "later phases are not moved",
			start:     domain.PhaseDocuments,
			req:       domain.UpdateLeadRequest{Qualified: boolPtr(true)},
			wantPhase: domain.PhaseDocuments,
		},
		{
			name:      "unqualified stays",
			start:     domain.PhaseInitialConsultation,
			req:       domain.UpdateLeadRequest{LeadName: strPtr("Renamed")},
			wantPhase: domain.PhaseInitialConsultation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			lead := testutil.NewTestLead("T1", "Jane")
			lead.Phase = tt.start
			require.NoError(t, f.repo.Create(ctx, lead))

			updated, err := f.leads.Update(ctx, "T1", &tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPhase, updated.Phase)
			assert.Equal(t, []string{"T1"}, f.syncer.backgroundCalls())
		})
	}
}

func TestLeadService_UpdateKeepsUntouchedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead := testutil.NewTestLead("T1", "Jane")
	lead.Email = "jane@example.test"
	lead.Notes = "called twice"
	require.NoError(t, f.repo.Create(ctx, lead))

	updated, err := f.leads.Update(ctx, "T1", &domain.UpdateLeadRequest{City: strPtr("Berlin")})
	require.NoError(t, err)
	assert.Equal(t, "Berlin", updated.City)
	assert.Equal(t, "jane@example.test", updated.Email)
	assert.Equal(t, "called twice", updated.Notes)
	assert.Equal(t, "2026-02-03T14:30:00Z", updated.UpdatedAt)
}

func TestLeadService_UpdateMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.leads.Update(context.Background(), "nope", &domain.UpdateLeadRequest{LeadName: strPtr("x")})
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Empty(t, f.syncer.backgroundCalls())
}

// An invalid phase is rejected and the lead is unchanged
func TestLeadService_UpdatePhaseInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead("T1", "Jane")))
	before := f.mustGet(t, "T1")

	_, err := f.leads.UpdatePhase(ctx, "T1", domain.Phase("invalid-value"))
	assert.ErrorIs(t, err, service.ErrInvalidPhase)

	after := f.mustGet(t, "T1")
	assert.Equal(t, before, after)
	assert.Empty(t, f.syncer.backgroundCalls())
}

func TestLeadService_UpdatePhase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead("T1", "Jane")))

	updated, err := f.leads.UpdatePhase(ctx, "T1", domain.PhaseCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseCompleted, updated.Phase)
}

func TestLeadService_UpdateChecklist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead("T1", "Jane")))

	var checklist domain.Checklist
	checklist.Documents.IDCard = true
	checklist.Appointments.ClientInformed = true

	updated, err := f.leads.UpdateChecklist(ctx, "T1", checklist)
	require.NoError(t, err)
	assert.Equal(t, checklist, updated.Checklist)
	assert.Equal(t, checklist, f.mustGet(t, "T1").Checklist)
}

func TestLeadService_Documents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead("T1", "Jane")))

	_, err := f.leads.AddDocument(ctx, "T1", &domain.AddDocumentRequest{Name: "Ausweis"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	withDoc, err := f.leads.AddDocument(ctx, "T1", &domain.AddDocumentRequest{Name: "Ausweis", Type: "pdf"})
	require.NoError(t, err)
	require.Len(t, withDoc.Documents, 1)
	doc := withDoc.Documents[0]
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "2026-02-03", doc.UploadDate)
	assert.Equal(t, domain.DefaultDocumentSize, doc.Size)

	_, err = f.leads.AddDocument(ctx, "T1", &domain.AddDocumentRequest{Name: "Lohnzettel", Type: "pdf", Size: "120 KB"})
	require.NoError(t, err)

	_, err = f.leads.RemoveDocument(ctx, "T1", "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)

	removed, err := f.leads.RemoveDocument(ctx, "T1", doc.ID)
	require.NoError(t, err)
	require.Len(t, removed.Documents, 1)
	assert.Equal(t, "Lohnzettel", removed.Documents[0].Name)

	_, err = f.leads.AddDocument(ctx, "nope", &domain.AddDocumentRequest{Name: "a", Type: "b"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestLeadService_DeleteHidesLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead("T1", "Jane")))

	require.NoError(t, f.leads.Delete(ctx, "T1"))

	_, err := f.leads.GetByTaskID(ctx, "T1")
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, f.leads.Delete(ctx, "T1"), service.ErrNotFound)

	stored := f.mustGet(t, "T1")
	assert.True(t, stored.Deleted)
	require.NotNil(t, stored.DeletedAt)
}

func TestLeadService_ListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead(fmt.Sprintf("T%02d", i), fmt.Sprintf("Lead %02d", i))))
	}

	tests := []struct {
		name          string
		page          int
		pageSize      int
		wantLen       int
		wantPage      int
		wantPageSize  int
		wantTotalPage int
	}{
		{"first page", 1, 10, 10, 1, 10, 3},
		{"last partial page", 3, 10, 5, 3, 10, 3},
		{"beyond last page", 4, 10, 0, 4, 10, 3},
		{"defaults", 0, 0, 20, 1, service.DefaultPageSize, 2},
		{"clamped page size", 1, 1000, 25, 1, service.MaxPageSize, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.leads.List(ctx, tt.page, tt.pageSize, repository.LeadFilters{})
			require.NoError(t, err)

			data, ok := resp.Data.([]domain.LeadDTO)
			require.True(t, ok)
			assert.Len(t, data, tt.wantLen)
			assert.Equal(t, int64(25), resp.Total)
			assert.Equal(t, tt.wantPage, resp.Page)
			assert.Equal(t, tt.wantPageSize, resp.PageSize)
			assert.Equal(t, tt.wantTotalPage, resp.TotalPages)
		})
	}
}

func TestLeadService_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	qualified := testutil.NewTestLead("T1", "A")
	qualified.Qualified = true
	qualified.Phase = domain.PhaseChecklist
	require.NoError(t, f.repo.Create(ctx, qualified))
	require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead("T2", "B")))

	deleted := testutil.NewTestLead("T3", "C")
	deleted.Deleted = true
	require.NoError(t, f.repo.Create(ctx, deleted))

	stats, err := f.leads.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Qualified)
	assert.Equal(t, int64(1), stats.ByPhase[domain.PhaseChecklist])
	assert.Equal(t, int64(1), stats.ByPhase[domain.PhaseInitialConsultation])
	assert.Equal(t, int64(0), stats.ByPhase[domain.PhaseCompleted])
}

func TestLeadService_DatabaseUnavailable(t *testing.T) {
	repo := repository.NewUnavailableRepository(assert.AnError)
	leads := service.NewLeadService(repo, nil, &recordingSyncer{}, oplog.NewRingBuffer(10), zap.NewNop())
	ctx := context.Background()

	_, err := leads.GetByTaskID(ctx, "T1")
	assert.ErrorIs(t, err, service.ErrDatabaseUnavailable)
	_, err = leads.List(ctx, 1, 10, repository.LeadFilters{})
	assert.ErrorIs(t, err, service.ErrDatabaseUnavailable)
	assert.ErrorIs(t, leads.Ping(ctx), service.ErrDatabaseUnavailable)
}
