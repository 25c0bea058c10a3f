package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/mapper"
	"github.com/privatinsolvenz/lead-dashboard/internal/normalizer"
	"github.com/privatinsolvenz/lead-dashboard/internal/oplog"
	"github.com/privatinsolvenz/lead-dashboard/internal/repository"
	"go.uber.org/zap"
)

// Webhook sources recorded in the operational log
const (
	SourceWebhook      = "webhook"
	SourceMake         = "make"
	SourceN8n          = "n8n"
	SourceExternalForm = "external-form"
)

// External form intake defaults
const (
	TempTaskIDPrefix = "temp-"
	ExternalFormName = "Neuer Mandant"
)

// TaskFetcher loads a raw task from the tracker
type TaskFetcher interface {
	GetTask(ctx context.Context, taskID string) (map[string]any, error)
}

type WebhookService struct {
	leadRepo   repository.LeadRepository
	normalizer *normalizer.Normalizer
	machine    *domain.PhaseMachine
	leads      *LeadService
	syncer     LeadSyncer
	fetcher    TaskFetcher
	oplog      oplog.Sink
	logger     *zap.Logger
	now        func() time.Time
}

func NewWebhookService(
	leadRepo repository.LeadRepository,
	norm *normalizer.Normalizer,
	leads *LeadService,
	syncer LeadSyncer,
	fetcher TaskFetcher,
	sink oplog.Sink,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		leadRepo:   leadRepo,
		normalizer: norm,
		machine:    leads.machine,
		leads:      leads,
		syncer:     syncer,
		fetcher:    fetcher,
		oplog:      sink,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the clock used for temporary task ids
func (s *WebhookService) WithClock(now func() time.Time) *WebhookService {
	s.now = now
	return s
}

// Ingest normalizes and upserts every task in a generic webhook payload. The
// response is always populated. An empty array fails with ErrInvalidInput;
// every other failure is reported inside the response.
func (s *WebhookService) Ingest(ctx context.Context, raw any, source string) (*domain.WebhookResponse, error) {
	payload := normalizer.Detect(raw)
	results := &domain.WebhookResults{}
	resp := &domain.WebhookResponse{Results: results}

	switch payload.Shape {
	case normalizer.ShapeArray:
		if len(payload.Items) == 0 {
			resp.Message = "Empty payload: no tasks to process"
			s.record(ctx, oplog.TypeWarning, source, resp.Message, map[string]any{"processed": 0})
			return resp, fmt.Errorf("empty task array: %w", ErrInvalidInput)
		}
		for i, item := range payload.Items {
			results.Processed++
			if !item.IsTask() {
				results.Failed++
				s.record(ctx, oplog.TypeError, source, "Skipped array item that is not a task",
					map[string]any{"index": i, "shape": item.Shape.String()})
				continue
			}
			s.ingestOne(ctx, item.Task, source, results)
		}
	case normalizer.ShapeDirect, normalizer.ShapeWrapped:
		results.Processed++
		resp.Lead = s.ingestOne(ctx, payload.Task, source, results)
	default:
		results.Processed++
		results.Failed++
		s.record(ctx, oplog.TypeError, source, "Unsupported payload", map[string]any{"shape": payload.Shape.String()})
	}

	resp.Success = results.Failed == 0
	resp.Message = fmt.Sprintf("Processed %d task(s): %d created, %d updated, %d failed",
		results.Processed, results.Created, results.Updated, results.Failed)

	typ := oplog.TypeSuccess
	if !resp.Success {
		typ = oplog.TypeWarning
	}
	s.record(ctx, typ, source, resp.Message, map[string]any{
		"created":   results.Created,
		"updated":   results.Updated,
		"failed":    results.Failed,
		"processed": results.Processed,
	})

	return resp, nil
}

func (s *WebhookService) ingestOne(ctx context.Context, task map[string]any, source string, results *domain.WebhookResults) *domain.LeadDTO {
	incoming := s.normalizer.ExtractTask(task)

	lead, created, err := s.upsert(ctx, incoming)
	if err != nil {
		results.Failed++
		s.logger.Error("failed to upsert lead", zap.String("task_id", incoming.Lead.TaskID), zap.Error(err))
		s.record(ctx, oplog.TypeError, source, "Failed to store lead", map[string]any{
			"taskId": incoming.Lead.TaskID,
			"error":  err.Error(),
		})
		return nil
	}

	message := "Lead updated"
	if created {
		results.Created++
		message = "Lead created"
	} else {
		results.Updated++
	}
	s.record(ctx, oplog.TypeSuccess, source, message, map[string]any{
		"taskId": lead.TaskID,
		"status": lead.ExternalStatus.Status,
		"phase":  string(lead.Phase),
	})

	dto := mapper.ToLeadDTO(lead)
	return &dto
}

// upsert stores a normalized lead. An existing record, including a
// soft-deleted one, is merged; otherwise the lead is inserted. When a
// concurrent delivery inserts the same task first, the insert falls back to
// the merge.
func (s *WebhookService) upsert(ctx context.Context, incoming normalizer.Result) (*domain.Lead, bool, error) {
	taskID := incoming.Lead.TaskID
	existing, err := s.leadRepo.FindByTaskID(ctx, taskID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, false, translateRepoError(err, "failed to look up lead")
	}

	if existing == nil {
		lead := incoming.Lead
		lead.Phase = s.machine.Next(domain.TransitionInput{Phase: lead.Phase, Qualified: lead.Qualified})
		err := s.leadRepo.Create(ctx, &lead)
		if err == nil {
			return &lead, true, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, false, translateRepoError(err, "failed to create lead")
		}

		s.logger.Debug("lead inserted concurrently, merging", zap.String("task_id", taskID))
		existing, err = s.leadRepo.FindByTaskID(ctx, taskID)
		if err != nil {
			return nil, false, translateRepoError(err, "failed to look up lead")
		}
	}

	mergeNormalized(existing, incoming)
	existing.Phase = s.machine.Next(domain.TransitionInput{Phase: existing.Phase, Qualified: existing.Qualified})
	if err := s.leadRepo.Save(ctx, existing); err != nil {
		return nil, false, translateRepoError(err, "failed to update lead")
	}
	return existing, false, nil
}

// mergeNormalized copies the tracker-owned fields of incoming onto lead. The
// checklist, documents, notes, creation time and deletion state are owned by
// the dashboard and kept. Contact and financial values overwrite whenever the
// payload carried them, including an explicit "0".
func mergeNormalized(lead *domain.Lead, incoming normalizer.Result) {
	in := &incoming.Lead
	lead.LeadName = in.LeadName
	lead.Phase = in.Phase
	lead.Qualified = in.Qualified
	lead.ExternalStatus = in.ExternalStatus
	lead.UpdatedAt = in.UpdatedAt

	for _, f := range []struct {
		field normalizer.Field
		dst   *string
		value string
	}{
		{normalizer.FieldStreet, &lead.Street, in.Street},
		{normalizer.FieldHouseNumber, &lead.HouseNumber, in.HouseNumber},
		{normalizer.FieldPostalCode, &lead.PostalCode, in.PostalCode},
		{normalizer.FieldCity, &lead.City, in.City},
		{normalizer.FieldEmail, &lead.Email, in.Email},
		{normalizer.FieldPhone, &lead.Phone, in.Phone},
		{normalizer.FieldTotalDebt, &lead.TotalDebt, in.TotalDebt},
		{normalizer.FieldCreditorCount, &lead.CreditorCount, in.CreditorCount},
	} {
		if incoming.Has(f.field) || *f.dst == "" {
			*f.dst = f.value
		}
	}
}

// mergeValue overwrites dst with a non-empty v
func mergeValue(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Dispatch executes an automation platform operation
func (s *WebhookService) Dispatch(ctx context.Context, req *domain.OperationRequest, source string) (*domain.WebhookResponse, error) {
	switch req.Operation {
	case domain.OperationCreateTask:
		if req.Task == nil {
			return failure("createTask requires a task"), fmt.Errorf("missing task: %w", ErrInvalidInput)
		}
		return s.Ingest(ctx, req.Task, source)

	case domain.OperationUpdateTask:
		return s.updateTask(ctx, req, source)

	case domain.OperationSyncForm:
		if req.TaskID == "" {
			return failure("syncForm requires a taskId"), fmt.Errorf("missing taskId: %w", ErrInvalidInput)
		}
		if err := s.syncer.SyncLead(ctx, req.TaskID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return failure("Lead not found"), err
			}
			return &domain.WebhookResponse{Success: false, Message: "Sync failed", Error: err.Error()}, nil
		}
		return &domain.WebhookResponse{Success: true, Message: "Lead synced to ClickUp"}, nil

	case domain.OperationSyncExternalForm:
		if req.FormData == nil {
			return failure("syncExternalForm requires formData"), fmt.Errorf("missing formData: %w", ErrInvalidInput)
		}
		return s.ExternalForm(ctx, &domain.ExternalFormRequest{
			FormData:      req.FormData,
			ClickUpTaskID: req.ClickUpTaskID,
			SyncToClickUp: req.SyncToClickUp,
		}, source)

	default:
		s.record(ctx, oplog.TypeWarning, source, "Unknown operation", map[string]any{"operation": req.Operation})
		return failure(fmt.Sprintf("Unknown operation %q", req.Operation)),
			fmt.Errorf("unknown operation %q: %w", req.Operation, ErrInvalidInput)
	}
}

// updateTask applies a tracker task or a partial update to an existing lead
func (s *WebhookService) updateTask(ctx context.Context, req *domain.OperationRequest, source string) (*domain.WebhookResponse, error) {
	taskID := req.TaskID
	if taskID == "" && req.Task != nil {
		taskID = s.normalizer.Normalize(req.Task).TaskID
	}
	if taskID == "" {
		return failure("updateTask requires a taskId"), fmt.Errorf("missing taskId: %w", ErrInvalidInput)
	}

	if _, err := s.leadRepo.GetByTaskID(ctx, taskID); err != nil {
		err = translateRepoError(err, "failed to get lead")
		if errors.Is(err, ErrNotFound) {
			return failure(fmt.Sprintf("Lead %s not found", taskID)), err
		}
		return &domain.WebhookResponse{Success: false, Message: "Update failed", Error: err.Error()}, nil
	}

	var lead *domain.Lead
	var err error
	switch {
	case req.UpdateData != nil:
		lead, err = s.leads.update(ctx, taskID, req.UpdateData, false)
	case req.Task != nil:
		lead, err = s.applyTask(ctx, taskID, req.Task)
	case s.fetcher != nil:
		var task map[string]any
		task, err = s.fetcher.GetTask(ctx, taskID)
		if err == nil {
			lead, err = s.applyTask(ctx, taskID, task)
		}
	default:
		return failure("updateTask requires task or updateData"), fmt.Errorf("nothing to update: %w", ErrInvalidInput)
	}
	if err != nil {
		if errors.Is(err, ErrInvalidPhase) || errors.Is(err, ErrInvalidInput) {
			return failure(err.Error()), err
		}
		s.record(ctx, oplog.TypeError, source, "Failed to update lead", map[string]any{"taskId": taskID, "error": err.Error()})
		return &domain.WebhookResponse{Success: false, Message: "Update failed", Error: err.Error()}, nil
	}

	s.record(ctx, oplog.TypeSuccess, source, "Lead updated", map[string]any{"taskId": taskID, "syncBack": req.SyncBack})
	if req.SyncBack {
		s.syncer.SyncInBackground(lead)
	}

	dto := mapper.ToLeadDTO(lead)
	return &domain.WebhookResponse{Success: true, Message: "Lead updated", Lead: &dto}, nil
}

func (s *WebhookService) applyTask(ctx context.Context, taskID string, task any) (*domain.Lead, error) {
	incoming := s.normalizer.Extract(task)
	incoming.Lead.TaskID = taskID
	lead, _, err := s.upsert(ctx, incoming)
	return lead, err
}

// ExternalForm stores data from the external intake form. The lead is found
// by the ClickUp task id or the form's task id; without a match a new lead
// with a temporary id is created.
func (s *WebhookService) ExternalForm(ctx context.Context, req *domain.ExternalFormRequest, source string) (*domain.WebhookResponse, error) {
	if req.FormData == nil {
		return failure("formData is required"), fmt.Errorf("missing formData: %w", ErrInvalidInput)
	}
	form := req.FormData

	taskID := req.ClickUpTaskID
	if taskID == "" {
		taskID = form.TaskID
	}

	var lead *domain.Lead
	if taskID != "" {
		existing, err := s.leadRepo.FindByTaskID(ctx, taskID)
		switch {
		case err == nil:
			lead = existing
		case !errors.Is(err, repository.ErrNotFound):
			err = translateRepoError(err, "failed to look up lead")
			return &domain.WebhookResponse{Success: false, Message: "Failed to store form data", Error: err.Error()}, nil
		}
	}

	now := s.now()
	created := lead == nil
	if created {
		if taskID == "" {
			taskID = fmt.Sprintf("%s%d", TempTaskIDPrefix, now.UnixMilli())
		}
		lead = &domain.Lead{
			TaskID:   taskID,
			LeadName: ExternalFormName,
			Phase:    domain.PhaseInitialConsultation,
			ExternalStatus: domain.ExternalStatus{
				Status:   normalizer.DefaultStatus,
				Color:    domain.DefaultExternalColor,
				Priority: domain.DefaultExternalPriority,
			},
			TotalDebt:     "0",
			CreditorCount: "0",
			Documents:     []domain.Document{},
			CreatedAt:     now,
		}
	}

	applyForm(lead, form)
	lead.UpdatedAt = now

	var err error
	if created {
		err = s.leadRepo.Create(ctx, lead)
	} else {
		err = s.leadRepo.Save(ctx, lead)
	}
	if err != nil {
		err = translateRepoError(err, "failed to store form data")
		s.record(ctx, oplog.TypeError, source, "Failed to store form data", map[string]any{"taskId": lead.TaskID, "error": err.Error()})
		return &domain.WebhookResponse{Success: false, Message: "Failed to store form data", Error: err.Error()}, nil
	}

	message := "Form data saved"
	if created {
		message = "Lead created from form data"
	}
	s.record(ctx, oplog.TypeSuccess, source, message, map[string]any{"taskId": lead.TaskID})

	switch {
	case req.SyncToClickUp != nil && !*req.SyncToClickUp:
	case IsTemporaryTaskID(lead.TaskID):
		s.logger.Info("skipping sync for lead without ClickUp task", zap.String("task_id", lead.TaskID))
	default:
		s.syncer.SyncInBackground(lead)
	}

	dto := mapper.ToLeadDTO(lead)
	return &domain.WebhookResponse{Success: true, Message: message, Lead: &dto}, nil
}

func applyForm(lead *domain.Lead, form *domain.ExternalFormData) {
	name := form.LeadName
	if name == "" {
		name = form.Name
	}
	mergeValue(&lead.LeadName, name)
	mergeValue(&lead.Email, form.Email)
	mergeValue(&lead.Phone, form.Phone)
	mergeValue(&lead.Street, form.Street)
	mergeValue(&lead.HouseNumber, form.HouseNumber)
	mergeValue(&lead.PostalCode, form.PostalCode)
	mergeValue(&lead.City, form.City)
	mergeValue(&lead.CreditorCount, form.CreditorCount)
	mergeValue(&lead.TotalDebt, form.TotalDebt)
}

// IsTemporaryTaskID reports whether the id was assigned locally because no
// ClickUp task exists yet
func IsTemporaryTaskID(taskID string) bool {
	return strings.HasPrefix(taskID, TempTaskIDPrefix) && len(taskID) > len(TempTaskIDPrefix)
}

func failure(message string) *domain.WebhookResponse {
	return &domain.WebhookResponse{Success: false, Message: message}
}

func (s *WebhookService) record(ctx context.Context, typ oplog.Type, source, message string, details map[string]any) {
	_ = oplog.Record(ctx, s.oplog, typ, source, message, details)
}
