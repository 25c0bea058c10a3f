package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/normalizer"
	"github.com/privatinsolvenz/lead-dashboard/internal/oplog"
	"github.com/privatinsolvenz/lead-dashboard/internal/repository"
	"github.com/privatinsolvenz/lead-dashboard/internal/service"
	"github.com/privatinsolvenz/lead-dashboard/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 2, 3, 14, 30, 0, 0, time.UTC)

// nopSyncer stands in for the ClickUp sync in handler tests
type nopSyncer struct{}

func (nopSyncer) SyncLead(context.Context, string) error { return nil }
func (nopSyncer) SyncInBackground(*domain.Lead)          {}

type testEnv struct {
	repo     repository.LeadRepository
	tokens   repository.TokenRepository
	logs     *oplog.Broadcaster
	leads    *service.LeadService
	webhooks *service.WebhookService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	return newTestEnvWithRepo(repository.NewGormLeadRepository(db), repository.NewGormTokenRepository(db))
}

func newTestEnvWithRepo(repo repository.LeadRepository, tokens repository.TokenRepository) *testEnv {
	logger := zap.NewNop()
	clock := testutil.FixedClock(testNow)

	env := &testEnv{
		repo:   repo,
		tokens: tokens,
		logs:   oplog.NewBroadcaster(oplog.NewRingBuffer(oplog.DefaultCapacity), logger),
	}
	env.leads = service.NewLeadService(repo, nil, nopSyncer{}, env.logs, logger).WithClock(clock)
	env.webhooks = service.NewWebhookService(
		repo,
		normalizer.New(normalizer.WithClock(clock)),
		env.leads,
		nopSyncer{},
		nil,
		env.logs,
		logger,
	).WithClock(clock)
	return env
}

// withURLParams attaches chi route parameters to a request
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func decodeResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}
