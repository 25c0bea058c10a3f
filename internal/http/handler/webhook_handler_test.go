package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/http/handler"
	"github.com/privatinsolvenz/lead-dashboard/internal/service"
	"github.com/privatinsolvenz/lead-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWebhookHandler(env *testEnv) *handler.WebhookHandler {
	return handler.NewWebhookHandler(env.webhooks, zap.NewNop())
}

func TestWebhookHandler_Receive(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantCode    int
		wantSuccess bool
		wantResults *domain.WebhookResults
	}{
		{
			name:        "single task",
			body:        `{"id":"T1","name":"Jane Doe","status":"NEUE ANFRAGE"}`,
			wantCode:    http.StatusOK,
			wantSuccess: true,
			wantResults: &domain.WebhookResults{Created: 1, Processed: 1},
		},
		{
			name:        "wrapped task",
			body:        `{"task":{"id":"T1","name":"Jane Doe","status":{"status":"QUALIFIZIERT"}}}`,
			wantCode:    http.StatusOK,
			wantSuccess: true,
			wantResults: &domain.WebhookResults{Created: 1, Processed: 1},
		},
		{
			name:        "array with numeric id",
			body:        `[{"id":86987654321,"name":"A"},{"id":"T2","name":"B"}]`,
			wantCode:    http.StatusOK,
			wantSuccess: true,
			wantResults: &domain.WebhookResults{Created: 2, Processed: 2},
		},
		{
			name:        "empty array",
			body:        `[]`,
			wantCode:    http.StatusBadRequest,
			wantResults: &domain.WebhookResults{},
		},
		{
			name:        "unsupported payload still answers 200",
			body:        `"hello"`,
			wantCode:    http.StatusOK,
			wantResults: &domain.WebhookResults{Failed: 1, Processed: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := newWebhookHandler(env)

			rr := httptest.NewRecorder()
			h.Receive(rr, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			resp := decodeResponse[domain.WebhookResponse](t, rr)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, tt.wantResults, resp.Results)
		})
	}
}

func TestWebhookHandler_ReceiveKeepsLargeTaskIDs(t *testing.T) {
	env := newTestEnv(t)
	h := newWebhookHandler(env)

	rr := httptest.NewRecorder()
	h.Receive(rr, httptest.NewRequest(http.MethodPost, "/webhook",
		strings.NewReader(`{"id":86987654321,"name":"Jane"}`)))
	require.Equal(t, http.StatusOK, rr.Code)

	lead, err := env.repo.GetByTaskID(context.Background(), "86987654321")
	require.NoError(t, err)
	assert.Equal(t, "Jane", lead.LeadName)
}

func TestWebhookHandler_ReceiveInvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	h := newWebhookHandler(env)

	rr := httptest.NewRecorder()
	h.Receive(rr, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"id":`)))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeResponse[domain.WebhookResponse](t, rr)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestWebhookHandler_Dispatch(t *testing.T) {
	env := newTestEnv(t)
	h := newWebhookHandler(env)
	require.NoError(t, env.repo.Create(context.Background(), testutil.NewTestLead("T1", "Jane")))

	tests := []struct {
		name        string
		route       func(http.ResponseWriter, *http.Request)
		body        string
		wantCode    int
		wantSuccess bool
	}{
		{
			name:        "make createTask",
			route:       h.Make,
			body:        `{"operation":"createTask","task":{"id":"T2","name":"John"}}`,
			wantCode:    http.StatusOK,
			wantSuccess: true,
		},
		{
			name:        "n8n updateTask",
			route:       h.N8n,
			body:        `{"operation":"updateTask","taskId":"T1","updateData":{"city":"Berlin"}}`,
			wantCode:    http.StatusOK,
			wantSuccess: true,
		},
		{
			name:     "updateTask unknown lead",
			route:    h.Make,
			body:     `{"operation":"updateTask","taskId":"missing","updateData":{"city":"Berlin"}}`,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "unknown operation",
			route:    h.N8n,
			body:     `{"operation":"deleteEverything"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid json",
			route:    h.Make,
			body:     `operation=createTask`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.route(rr, httptest.NewRequest(http.MethodPost, "/webhook/x", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantSuccess, decodeResponse[domain.WebhookResponse](t, rr).Success)
		})
	}

	lead, err := env.repo.GetByTaskID(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", lead.City)
}

func TestWebhookHandler_ExternalForm(t *testing.T) {
	env := newTestEnv(t)
	h := newWebhookHandler(env)
	require.NoError(t, env.repo.Create(context.Background(), testutil.NewTestLead("T1", "Jane")))

	t.Run("updates matching lead", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ExternalForm(rr, httptest.NewRequest(http.MethodPost, "/external-form", jsonBody(t, map[string]any{
			"clickupTaskId": "T1",
			"syncToClickUp": false,
			"formData":      map[string]any{"email": "jane@example.test", "creditorCount": "7"},
		})))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decodeResponse[domain.WebhookResponse](t, rr)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Lead)
		assert.Equal(t, "jane@example.test", resp.Lead.Email)
		assert.Equal(t, "7", resp.Lead.CreditorCount)
	})

	t.Run("creates lead with temporary id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ExternalForm(rr, httptest.NewRequest(http.MethodPost, "/external-form", jsonBody(t, map[string]any{
			"formData": map[string]any{"phone": "0301234"},
		})))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decodeResponse[domain.WebhookResponse](t, rr)
		require.NotNil(t, resp.Lead)
		assert.True(t, service.IsTemporaryTaskID(resp.Lead.TaskID))
		assert.Equal(t, service.ExternalFormName, resp.Lead.LeadName)
	})

	t.Run("requires form data", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ExternalForm(rr, httptest.NewRequest(http.MethodPost, "/external-form", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
