package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/http/handler"
	"github.com/privatinsolvenz/lead-dashboard/internal/repository"
	"github.com/privatinsolvenz/lead-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLeadHandler(env *testEnv) *handler.LeadHandler {
	return handler.NewLeadHandler(env.leads, zap.NewNop())
}

func TestLeadHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	h := newLeadHandler(env)

	t.Run("creates lead", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/leads", jsonBody(t, map[string]any{
			"taskId":   "T1",
			"leadName": "Jane Doe",
			"email":    "jane@example.test",
		}))
		rr := httptest.NewRecorder()
		h.Create(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "/api/v1/leads/T1", rr.Header().Get("Location"))

		lead := decodeResponse[domain.LeadDTO](t, rr)
		assert.Equal(t, "T1", lead.TaskID)
		assert.Equal(t, domain.PhaseInitialConsultation, lead.Phase)
		assert.Equal(t, "2026-02-03T14:30:00Z", lead.CreatedAt)
	})

	t.Run("missing task id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/leads", jsonBody(t, map[string]any{"leadName": "No Id"}))
		rr := httptest.NewRecorder()
		h.Create(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		apiErr := decodeResponse[domain.APIError](t, rr)
		assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
		assert.Contains(t, apiErr.Errors, "taskID")
	})

	t.Run("duplicate task id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/leads", jsonBody(t, map[string]any{"taskId": "T1"}))
		rr := httptest.NewRecorder()
		h.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader("{"))
		rr := httptest.NewRecorder()
		h.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLeadHandler_List(t *testing.T) {
	env := newTestEnv(t)
	h := newLeadHandler(env)
	ctx := context.Background()

	for _, id := range []string{"T1", "T2", "T3"} {
		lead := testutil.NewTestLead(id, "Lead "+id)
		lead.Qualified = id == "T2"
		require.NoError(t, env.repo.Create(ctx, lead))
	}

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantTotal int64
		wantSize  int
	}{
		{"all leads", "", http.StatusOK, 3, 20},
		{"limit alias", "?limit=2", http.StatusOK, 3, 2},
		{"pageSize wins over limit", "?pageSize=1&limit=2", http.StatusOK, 3, 1},
		{"qualified filter", "?qualified=true", http.StatusOK, 1, 20},
		{"search", "?search=lead%20t3", http.StatusOK, 1, 20},
		{"phase filter", "?phase=checklist", http.StatusOK, 0, 20},
		{"invalid phase", "?phase=archived", http.StatusBadRequest, 0, 0},
		{"invalid qualified", "?qualified=maybe", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/leads"+tt.query, nil)
			rr := httptest.NewRecorder()
			h.List(rr, req)

			require.Equal(t, tt.wantCode, rr.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			result := decodeResponse[domain.PaginatedResponse](t, rr)
			assert.Equal(t, tt.wantTotal, result.Total)
			assert.Equal(t, tt.wantSize, result.PageSize)
		})
	}
}

func TestLeadHandler_GetByTaskID(t *testing.T) {
	env := newTestEnv(t)
	h := newLeadHandler(env)
	require.NoError(t, env.repo.Create(context.Background(), testutil.NewTestLead("T1", "Jane")))

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/leads/T1", nil), map[string]string{"taskId": "T1"})
	rr := httptest.NewRecorder()
	h.GetByTaskID(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Jane", decodeResponse[domain.LeadDTO](t, rr).LeadName)

	req = withURLParams(httptest.NewRequest(http.MethodGet, "/leads/missing", nil), map[string]string{"taskId": "missing"})
	rr = httptest.NewRecorder()
	h.GetByTaskID(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, domain.ErrorTypeNotFound, decodeResponse[domain.APIError](t, rr).Type)
}

func TestLeadHandler_UpdateAutoAdvances(t *testing.T) {
	env := newTestEnv(t)
	h := newLeadHandler(env)
	require.NoError(t, env.repo.Create(context.Background(), testutil.NewTestLead("T1", "Jane")))

	req := httptest.NewRequest(http.MethodPut, "/leads/T1", jsonBody(t, map[string]any{
		"qualified": true,
		"taskId":    "ignored",
	}))
	rr := httptest.NewRecorder()
	h.Update(rr, withURLParams(req, map[string]string{"taskId": "T1"}))

	require.Equal(t, http.StatusOK, rr.Code)
	lead := decodeResponse[domain.LeadDTO](t, rr)
	assert.Equal(t, "T1", lead.TaskID)
	assert.True(t, lead.Qualified)
	assert.Equal(t, domain.PhaseChecklist, lead.Phase)
}

func TestLeadHandler_UpdatePhase(t *testing.T) {
	env := newTestEnv(t)
	h := newLeadHandler(env)
	require.NoError(t, env.repo.Create(context.Background(), testutil.NewTestLead("T1", "Jane")))

	tests := []struct {
		name      string
		body      map[string]any
		wantCode  int
		wantPhase domain.Phase
	}{
		{"invalid phase leaves lead unchanged", map[string]any{"phase": "archived"}, http.StatusBadRequest, domain.PhaseInitialConsultation},
		{"missing phase", map[string]any{}, http.StatusBadRequest, domain.PhaseInitialConsultation},
		{"valid phase", map[string]any{"phase": "documents"}, http.StatusOK, domain.PhaseDocuments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/leads/T1/phase", jsonBody(t, tt.body))
			rr := httptest.NewRecorder()
			h.UpdatePhase(rr, withURLParams(req, map[string]string{"taskId": "T1"}))

			assert.Equal(t, tt.wantCode, rr.Code)
			stored, err := env.repo.GetByTaskID(context.Background(), "T1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPhase, stored.Phase)
		})
	}
}

func TestLeadHandler_UpdateChecklist(t *testing.T) {
	env := newTestEnv(t)
	h := newLeadHandler(env)
	require.NoError(t, env.repo.Create(context.Background(), testutil.NewTestLead("T1", "Jane")))

	req := httptest.NewRequest(http.MethodPut, "/leads/T1/checklist", jsonBody(t, map[string]any{
		"documents":    map[string]any{"idCard": true},
		"appointments": map[string]any{"clientInformed": true},
	}))
	rr := httptest.NewRecorder()
	h.UpdateChecklist(rr, withURLParams(req, map[string]string{"taskId": "T1"}))

	require.Equal(t, http.StatusOK, rr.Code)
	lead := decodeResponse[domain.LeadDTO](t, rr)
	assert.True(t, lead.Checklist.Documents.IDCard)
	assert.True(t, lead.Checklist.Appointments.ClientInformed)
	assert.False(t, lead.Checklist.Consultation.BriefingDone)
}

func TestLeadHandler_Documents(t *testing.T) {
	env := newTestEnv(t)
	h := newLeadHandler(env)
	require.NoError(t, env.repo.Create(context.Background(), testutil.NewTestLead("T1", "Jane")))

	req := httptest.NewRequest(http.MethodPost, "/leads/T1/documents", jsonBody(t, map[string]any{"name": "id.pdf"}))
	rr := httptest.NewRecorder()
	h.AddDocument(rr, withURLParams(req, map[string]string{"taskId": "T1"}))
	require.Equal(t, http.StatusBadRequest, rr.Code, "type is required")

	req = httptest.NewRequest(http.MethodPost, "/leads/T1/documents", jsonBody(t, map[string]any{
		"name": "id.pdf",
		"type": "application/pdf",
	}))
	rr = httptest.NewRecorder()
	h.AddDocument(rr, withURLParams(req, map[string]string{"taskId": "T1"}))
	require.Equal(t, http.StatusOK, rr.Code)

	lead := decodeResponse[domain.LeadDTO](t, rr)
	require.Len(t, lead.Documents, 1)
	doc := lead.Documents[0]
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "2026-02-03", doc.UploadDate)
	assert.Equal(t, domain.DefaultDocumentSize, doc.Size)

	req = httptest.NewRequest(http.MethodDelete, "/leads/T1/documents/nope", nil)
	rr = httptest.NewRecorder()
	h.RemoveDocument(rr, withURLParams(req, map[string]string{"taskId": "T1", "documentId": "nope"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/leads/T1/documents/"+doc.ID, nil)
	rr = httptest.NewRecorder()
	h.RemoveDocument(rr, withURLParams(req, map[string]string{"taskId": "T1", "documentId": doc.ID}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeResponse[domain.LeadDTO](t, rr).Documents)
}

func TestLeadHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	h := newLeadHandler(env)
	require.NoError(t, env.repo.Create(context.Background(), testutil.NewTestLead("T1", "Jane")))

	req := withURLParams(httptest.NewRequest(http.MethodDelete, "/leads/T1", nil), map[string]string{"taskId": "T1"})
	rr := httptest.NewRecorder()
	h.Delete(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.GetByTaskID(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.Delete(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLeadHandler_Stats(t *testing.T) {
	env := newTestEnv(t)
	h := newLeadHandler(env)
	ctx := context.Background()

	qualified := testutil.NewTestLead("T1", "Jane")
	qualified.Qualified = true
	qualified.Phase = domain.PhaseChecklist
	require.NoError(t, env.repo.Create(ctx, qualified))
	require.NoError(t, env.repo.Create(ctx, testutil.NewTestLead("T2", "John")))

	rr := httptest.NewRecorder()
	h.Stats(rr, httptest.NewRequest(http.MethodGet, "/leads/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	stats := decodeResponse[domain.LeadStatsDTO](t, rr)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Qualified)
	assert.Equal(t, int64(1), stats.ByPhase[domain.PhaseChecklist])
	assert.Equal(t, int64(0), stats.ByPhase[domain.PhaseCompleted])
}

func TestLeadHandler_DatabaseUnavailable(t *testing.T) {
	unavailable := repository.NewUnavailableRepository(errors.New("connection refused"))
	env := newTestEnvWithRepo(unavailable, unavailable)
	h := newLeadHandler(env)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/leads", nil))

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, domain.ErrorTypeServiceUnavailable, decodeResponse[domain.APIError](t, rr).Type)
}
