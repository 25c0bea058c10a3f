package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/privatinsolvenz/lead-dashboard/internal/automation"
	"github.com/privatinsolvenz/lead-dashboard/internal/clickup"
	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/oplog"
	"github.com/privatinsolvenz/lead-dashboard/internal/service"
	"github.com/privatinsolvenz/lead-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClickUp records the calls the sync makes
type fakeClickUp struct {
	mu          sync.Mutex
	updates     map[string]clickup.TaskUpdate
	fieldWrites map[string]map[string]any
	failTasks   map[string]bool
	auth        []string
}

func newFakeClickUp(t *testing.T) (*fakeClickUp, *httptest.Server) {
	t.Helper()
	fake := &fakeClickUp{
		updates:     map[string]clickup.TaskUpdate{},
		fieldWrites: map[string]map[string]any{},
		failTasks:   map[string]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /list/{listID}/field", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"fields": []map[string]string{
			{"id": "f-street", "name": "Straße", "type": "short_text"},
			{"id": "f-email", "name": "Email", "type": "email"},
			{"id": "f-debt", "name": "Gesamtschulden", "type": "short_text"},
		}})
	})
	mux.HandleFunc("PUT /task/{id}", func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		fake.auth = append(fake.auth, r.Header.Get("Authorization"))

		id := r.PathValue("id")
		if fake.failTasks[id] {
			http.Error(w, `{"err":"Task not found"}`, http.StatusNotFound)
			return
		}
		var update clickup.TaskUpdate
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&update))
		fake.updates[id] = update
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("POST /task/{id}/field/{fieldID}", func(w http.ResponseWriter, r *http.Request) {
		fake.mu.Lock()
		defer fake.mu.Unlock()

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		id := r.PathValue("id")
		if fake.fieldWrites[id] == nil {
			fake.fieldWrites[id] = map[string]any{}
		}
		fake.fieldWrites[id][r.PathValue("fieldID")] = body["value"]
		_, _ = w.Write([]byte(`{}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fake, srv
}

func newSyncService(f *fixture, baseURL string, credential clickup.CredentialSource, forwarder service.Forwarder) *service.SyncService {
	client := clickup.NewClient(clickup.Config{BaseURL: baseURL}, credential)
	return service.NewSyncService(f.repo, client, forwarder, "L1", 0, f.log, zap.NewNop())
}

func TestSyncService_SyncLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fake, srv := newFakeClickUp(t)
	syncer := newSyncService(f, srv.URL, clickup.StaticCredential("pk_test"), nil)

	lead := testutil.NewTestLead("T1", "Jane Doe")
	lead.Qualified = true
	lead.Phase = domain.PhaseDocuments
	lead.Street = "Hauptstraße"
	lead.Email = "jane@example.test"
	lead.Phone = "0301234"
	require.NoError(t, f.repo.Create(ctx, lead))

	require.NoError(t, syncer.SyncLead(ctx, "T1"))

	assert.Equal(t, clickup.TaskUpdate{Name: "Jane Doe", Status: clickup.StatusOfferSigned}, fake.updates["T1"])
	assert.Equal(t, map[string]any{
		"f-street": "Hauptstraße",
		"f-email":  "jane@example.test",
		"f-debt":   "0",
	}, fake.fieldWrites["T1"])
	assert.Equal(t, []string{"pk_test"}, fake.auth)

	entries := f.entries(t)
	require.NotEmpty(t, entries)
	assert.Equal(t, oplog.TypeSuccess, entries[0].Type)
	assert.Equal(t, "Lead synced to ClickUp", entries[0].Message)
}

func TestSyncService_SyncLeadErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fake, srv := newFakeClickUp(t)
	fake.failTasks["T1"] = true
	require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead("T1", "Jane")))

	syncer := newSyncService(f, srv.URL, clickup.StaticCredential("pk_test"), nil)

	assert.ErrorIs(t, syncer.SyncLead(ctx, "missing"), service.ErrNotFound)

	err := syncer.SyncLead(ctx, "T1")
	assert.ErrorIs(t, err, service.ErrExternalSync)
	entries := f.entries(t)
	require.NotEmpty(t, entries)
	assert.Equal(t, oplog.TypeError, entries[0].Type)

	noCredential := newSyncService(f, srv.URL, clickup.StaticCredential(""), nil)
	assert.ErrorIs(t, noCredential.SyncLead(ctx, "T1"), service.ErrExternalSync)
	entries = f.entries(t)
	assert.Equal(t, oplog.TypeWarning, entries[0].Type)
}

func TestSyncService_SyncAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fake, srv := newFakeClickUp(t)
	fake.failTasks["T2"] = true

	for _, id := range []string{"T1", "T2", "T3"} {
		require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead(id, "Lead "+id)))
	}
	deleted := testutil.NewTestLead("T4", "Deleted")
	deleted.Deleted = true
	require.NoError(t, f.repo.Create(ctx, deleted))

	summary, err := newSyncService(f, srv.URL, clickup.StaticCredential("pk_test"), nil).SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "T2", summary.Errors[0].TaskID)
	assert.NotContains(t, fake.updates, "T4")

	entries := f.entries(t)
	assert.Equal(t, oplog.TypeWarning, entries[0].Type)
	assert.True(t, strings.HasPrefix(entries[0].Message, "Bulk sync finished"))
}

func TestSyncService_SyncInBackgroundDoesNotBlockCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	syncer := newSyncService(f, srv.URL, clickup.StaticCredential("pk_test"), nil)
	leads := service.NewLeadService(f.repo, nil, syncer, f.log, zap.NewNop())
	require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead("T1", "Jane")))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := leads.Update(ctx, "T1", &domain.UpdateLeadRequest{City: strPtr("Berlin")})
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("update waited for the tracker")
	}
	assert.Equal(t, "Berlin", f.mustGet(t, "T1").City)

	close(release)
	syncer.Wait()

	entries := f.entries(t)
	require.NotEmpty(t, entries)
	assert.Equal(t, "Lead synced to ClickUp", entries[0].Message)
}

func TestSyncService_SyncAllBoundsEachLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/task/T1" {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return
		}
		_, _ = w.Write([]byte(`{"fields":[]}`))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	for _, id := range []string{"T1", "T2"} {
		require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead(id, "Lead "+id)))
	}

	client := clickup.NewClient(clickup.Config{BaseURL: srv.URL}, clickup.StaticCredential("pk_test"))
	syncer := service.NewSyncService(f.repo, client, nil, "L1", 100*time.Millisecond, f.log, zap.NewNop())

	start := time.Now()
	summary, err := syncer.SyncAll(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "T1", summary.Errors[0].TaskID)
}

func TestSyncService_ForwardsToAutomation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, srv := newFakeClickUp(t)

	received := make(chan automation.Payload, 1)
	makeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p automation.Payload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		received <- p
	}))
	defer makeServer.Close()

	lead := testutil.NewTestLead("T1", "Jane")
	lead.CreditorCount = "10"
	require.NoError(t, f.repo.Create(ctx, lead))

	forwarder := automation.NewForwarder(automation.Config{MakeWebhookURL: makeServer.URL}, zap.NewNop())
	require.NoError(t, newSyncService(f, srv.URL, clickup.StaticCredential("pk_test"), forwarder).SyncLead(ctx, "T1"))

	p := <-received
	assert.Equal(t, automation.OperationUpdateTask, p.Operation)
	assert.Equal(t, "T1", p.TaskID)
	assert.Equal(t, clickup.StatusNewRequest, p.ClickUpData.Status)
	assert.Equal(t, 10, p.Pricing.Creditors)
}

// When the tracker is unreachable, the update still succeeds and the
// failure only shows up in the operational log
func TestLeadService_UpdateSucceedsWhenTrackerUnreachable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.NotFoundHandler())
	unreachable := srv.URL
	srv.Close()

	syncer := newSyncService(f, unreachable, clickup.StaticCredential("pk_test"), nil)
	leads := service.NewLeadService(f.repo, nil, syncer, f.log, zap.NewNop())
	require.NoError(t, f.repo.Create(ctx, testutil.NewTestLead("T1", "Jane")))

	updated, err := leads.Update(ctx, "T1", &domain.UpdateLeadRequest{City: strPtr("Berlin")})
	require.NoError(t, err)
	assert.Equal(t, "Berlin", updated.City)
	assert.Equal(t, "Berlin", f.mustGet(t, "T1").City)

	syncer.Wait()

	entries := f.entries(t)
	require.NotEmpty(t, entries)
	assert.Equal(t, oplog.TypeError, entries[0].Type)
	assert.Equal(t, "ClickUp sync failed", entries[0].Message)
	assert.Equal(t, "T1", entries[0].Details["taskId"])
}
