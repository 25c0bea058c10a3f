package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/privatinsolvenz/lead-dashboard/internal/clickup"
	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/http/handler"
	"github.com/privatinsolvenz/lead-dashboard/internal/service"
	"github.com/privatinsolvenz/lead-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newClickUpServer answers task updates, rejecting the given task ids
func newClickUpServer(t *testing.T, rejected ...string) *httptest.Server {
	t.Helper()
	reject := make(map[string]bool, len(rejected))
	for _, id := range rejected {
		reject[id] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /list/{listID}/field", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"fields":[]}`))
	})
	mux.HandleFunc("PUT /task/{id}", func(w http.ResponseWriter, r *http.Request) {
		if reject[r.PathValue("id")] {
			http.Error(w, `{"err":"Task not found"}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newSyncHandler(env *testEnv, baseURL string) *handler.SyncHandler {
	client := clickup.NewClient(clickup.Config{BaseURL: baseURL}, clickup.StaticCredential("pk_test"))
	syncService := service.NewSyncService(env.repo, client, nil, "L1", 0, env.logs, zap.NewNop())
	return handler.NewSyncHandler(syncService, zap.NewNop())
}

func TestSyncHandler_SyncLead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.repo.Create(ctx, testutil.NewTestLead("T1", "Jane")))
	require.NoError(t, env.repo.Create(ctx, testutil.NewTestLead("T2", "John")))

	h := newSyncHandler(env, newClickUpServer(t, "T2").URL)

	tests := []struct {
		taskID   string
		wantCode int
	}{
		{"T1", http.StatusOK},
		{"T2", http.StatusBadGateway},
		{"missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.taskID, func(t *testing.T) {
			req := withURLParams(httptest.NewRequest(http.MethodPost, "/sync/"+tt.taskID, nil),
				map[string]string{"taskId": tt.taskID})
			rr := httptest.NewRecorder()
			h.SyncLead(rr, req)

			require.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode == http.StatusOK {
				result := decodeResponse[handler.SyncResult](t, rr)
				assert.True(t, result.Success)
				assert.Equal(t, tt.taskID, result.TaskID)
			}
		})
	}
}

func TestSyncHandler_SyncAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, id := range []string{"T1", "T2", "T3"} {
		require.NoError(t, env.repo.Create(ctx, testutil.NewTestLead(id, "Lead "+id)))
	}

	h := newSyncHandler(env, newClickUpServer(t, "T3").URL)

	rr := httptest.NewRecorder()
	h.SyncAll(rr, httptest.NewRequest(http.MethodPost, "/sync-all", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	summary := decodeResponse[domain.SyncSummary](t, rr)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "T3", summary.Errors[0].TaskID)
}

func TestSyncHandler_SyncAllOutlivesWriteTimeout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, id := range []string{"T1", "T2"} {
		require.NoError(t, env.repo.Create(ctx, testutil.NewTestLead(id, "Lead "+id)))
	}

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		_, _ = w.Write([]byte(`{"fields":[]}`))
	}))
	t.Cleanup(slow.Close)

	h := newSyncHandler(env, slow.URL)
	api := httptest.NewUnstartedServer(http.HandlerFunc(h.SyncAll))
	api.Config.WriteTimeout = 100 * time.Millisecond
	api.Start()
	t.Cleanup(api.Close)

	resp, err := http.Post(api.URL+"/sync-all", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary domain.SyncSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Successful)
}
