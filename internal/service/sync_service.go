package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/privatinsolvenz/lead-dashboard/internal/automation"
	"github.com/privatinsolvenz/lead-dashboard/internal/clickup"
	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/logger"
	"github.com/privatinsolvenz/lead-dashboard/internal/oplog"
	"github.com/privatinsolvenz/lead-dashboard/internal/repository"
	"go.uber.org/zap"
)

// DefaultSyncTimeout bounds a background sync of one lead
const DefaultSyncTimeout = 15 * time.Second

// MaxBackgroundSyncs caps concurrent background pushes to ClickUp
const MaxBackgroundSyncs = 4

const sourceSync = "clickup-sync"

// TrackerClient is the subset of the ClickUp client the sync uses
type TrackerClient interface {
	UpdateTask(ctx context.Context, taskID string, update clickup.TaskUpdate) error
	SetCustomField(ctx context.Context, taskID, fieldID string, value any) error
	FieldIDs(ctx context.Context, listID string) (map[string]string, error)
}

// Forwarder hands lead updates to the automation scenarios
type Forwarder interface {
	Configured() bool
	Forward(ctx context.Context, lead *domain.Lead, data automation.ClickUpData) error
}

// trackerFields maps lead attributes to ClickUp custom field names, in the
// order they are written
var trackerFields = []struct {
	name  string
	value func(*domain.Lead) string
}{
	{"Straße", func(l *domain.Lead) string { return l.Street }},
	{"Hausnummer", func(l *domain.Lead) string { return l.HouseNumber }},
	{"PLZ", func(l *domain.Lead) string { return l.PostalCode }},
	{"Ort", func(l *domain.Lead) string { return l.City }},
	{"Email", func(l *domain.Lead) string { return l.Email }},
	{"Telefonnummer", func(l *domain.Lead) string { return l.Phone }},
	{"Gesamtschulden", func(l *domain.Lead) string { return l.TotalDebt }},
	{"Gläubiger Anzahl", func(l *domain.Lead) string { return l.CreditorCount }},
}

type SyncService struct {
	leadRepo  repository.LeadRepository
	client    TrackerClient
	forwarder Forwarder
	listID    string
	timeout   time.Duration
	oplog     oplog.Sink
	logger    *zap.Logger

	slots chan struct{}
	wg    sync.WaitGroup
}

func NewSyncService(
	leadRepo repository.LeadRepository,
	client TrackerClient,
	forwarder Forwarder,
	listID string,
	timeout time.Duration,
	sink oplog.Sink,
	logger *zap.Logger,
) *SyncService {
	if timeout <= 0 {
		timeout = DefaultSyncTimeout
	}
	return &SyncService{
		leadRepo:  leadRepo,
		client:    client,
		forwarder: forwarder,
		listID:    listID,
		timeout:   timeout,
		oplog:     sink,
		logger:    logger,
		slots:     make(chan struct{}, MaxBackgroundSyncs),
	}
}

// SyncLead pushes the stored lead to ClickUp and returns any failure
func (s *SyncService) SyncLead(ctx context.Context, taskID string) error {
	lead, err := s.leadRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return translateRepoError(err, "failed to get lead")
	}
	return s.push(ctx, lead)
}

// SyncInBackground pushes a snapshot of the lead on a detached context and
// returns immediately. Failures are logged and recorded, never returned, so
// the caller's result stands.
func (s *SyncService) SyncInBackground(lead *domain.Lead) {
	snapshot := *lead

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.slots <- struct{}{}
		defer func() { <-s.slots }()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.push(ctx, &snapshot); err != nil {
			logger.WithLead(s.logger, snapshot.TaskID).Warn("background sync failed", zap.Error(err))
		}
	}()
}

// Wait blocks until every background sync has finished
func (s *SyncService) Wait() {
	s.wg.Wait()
}

// SyncAll pushes every non-deleted lead, one after another. Each push is
// bounded by the sync timeout so one slow lead cannot stall the run.
func (s *SyncService) SyncAll(ctx context.Context) (*domain.SyncSummary, error) {
	leads, err := s.leadRepo.ListActive(ctx)
	if err != nil {
		return nil, translateRepoError(err, "failed to list leads")
	}

	summary := &domain.SyncSummary{
		Total:  len(leads),
		Errors: []domain.SyncError{},
	}
	for i := range leads {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := s.pushWithTimeout(ctx, &leads[i]); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, domain.SyncError{
				TaskID: leads[i].TaskID,
				Error:  err.Error(),
			})
			continue
		}
		summary.Successful++
	}

	typ := oplog.TypeSuccess
	if summary.Failed > 0 {
		typ = oplog.TypeWarning
	}
	_ = oplog.Record(ctx, s.oplog, typ, sourceSync,
		fmt.Sprintf("Bulk sync finished: %d of %d leads synced", summary.Successful, summary.Total),
		map[string]any{"total": summary.Total, "successful": summary.Successful, "failed": summary.Failed})

	return summary, nil
}

func (s *SyncService) pushWithTimeout(ctx context.Context, lead *domain.Lead) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.push(ctx, lead)
}

func (s *SyncService) push(ctx context.Context, lead *domain.Lead) error {
	status := clickup.OutboundStatusFor(lead.Phase, lead.Qualified)
	fields := trackerFieldValues(lead)

	if s.forwarder != nil && s.forwarder.Configured() {
		data := automation.ClickUpData{Name: lead.LeadName, Status: status, CustomFields: fields}
		if err := s.forwarder.Forward(ctx, lead, data); err != nil {
			s.record(ctx, oplog.TypeWarning, "Automation webhook failed", lead.TaskID, err)
		}
	}

	if err := s.pushToTracker(ctx, lead, status, fields); err != nil {
		typ := oplog.TypeError
		if errors.Is(err, clickup.ErrNoCredential) {
			typ = oplog.TypeWarning
		}
		s.record(ctx, typ, "ClickUp sync failed", lead.TaskID, err)
		return fmt.Errorf("%w: %v", ErrExternalSync, err)
	}

	s.logger.Debug("lead synced", zap.String("task_id", lead.TaskID), zap.String("status", status))
	_ = oplog.Record(ctx, s.oplog, oplog.TypeSuccess, sourceSync, "Lead synced to ClickUp",
		map[string]any{"taskId": lead.TaskID, "status": status})
	return nil
}

func (s *SyncService) pushToTracker(ctx context.Context, lead *domain.Lead, status string, fields map[string]string) error {
	if err := s.client.UpdateTask(ctx, lead.TaskID, clickup.TaskUpdate{Name: lead.LeadName, Status: status}); err != nil {
		return err
	}
	if s.listID == "" || len(fields) == 0 {
		return nil
	}

	ids, err := s.client.FieldIDs(ctx, s.listID)
	if err != nil {
		return fmt.Errorf("failed to resolve custom fields: %w", err)
	}

	var errs []error
	for _, f := range trackerFields {
		value, ok := fields[f.name]
		if !ok {
			continue
		}
		id, ok := ids[f.name]
		if !ok {
			continue
		}
		if err := s.client.SetCustomField(ctx, lead.TaskID, id, value); err != nil {
			errs = append(errs, fmt.Errorf("field %s: %w", f.name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *SyncService) record(ctx context.Context, typ oplog.Type, message, taskID string, err error) {
	_ = oplog.Record(ctx, s.oplog, typ, sourceSync, message, map[string]any{
		"taskId": taskID,
		"error":  err.Error(),
	})
}

func trackerFieldValues(lead *domain.Lead) map[string]string {
	values := make(map[string]string, len(trackerFields))
	for _, f := range trackerFields {
		if v := f.value(lead); v != "" {
			values[f.name] = v
		}
	}
	return values
}
