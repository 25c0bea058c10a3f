package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

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

// recordingSyncer stands in for the ClickUp sync
type recordingSyncer struct {
	mu         sync.Mutex
	synced     []string
	background []string
	err        error
}

func (r *recordingSyncer) SyncLead(_ context.Context, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced = append(r.synced, taskID)
	return r.err
}

func (r *recordingSyncer) SyncInBackground(lead *domain.Lead) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.background = append(r.background, lead.TaskID)
}

func (r *recordingSyncer) backgroundCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.background...)
}

type fixture struct {
	repo     repository.LeadRepository
	tokens   repository.TokenRepository
	syncer   *recordingSyncer
	log      *oplog.RingBuffer
	leads    *service.LeadService
	webhooks *service.WebhookService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	f := &fixture{
		repo:   repository.NewGormLeadRepository(db),
		tokens: repository.NewGormTokenRepository(db),
		syncer: &recordingSyncer{},
		log:    oplog.NewRingBuffer(oplog.DefaultCapacity),
	}
	clock := testutil.FixedClock(testNow)
	f.leads = service.NewLeadService(f.repo, domain.NewPhaseMachine(), f.syncer, f.log, zap.NewNop()).WithClock(clock)
	f.webhooks = service.NewWebhookService(
		f.repo,
		normalizer.New(normalizer.WithClock(clock)),
		f.leads,
		f.syncer,
		nil,
		f.log,
		zap.NewNop(),
	).WithClock(clock)
	return f
}

func (f *fixture) entries(t *testing.T) []oplog.Entry {
	t.Helper()
	entries, err := f.log.Recent(context.Background(), 0)
	require.NoError(t, err)
	return entries
}

func (f *fixture) mustGet(t *testing.T, taskID string) *domain.Lead {
	t.Helper()
	lead, err := f.repo.FindByTaskID(context.Background(), taskID)
	require.NoError(t, err)
	return lead
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func phasePtr(p domain.Phase) *domain.Phase { return &p }
