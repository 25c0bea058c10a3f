package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/mapper"
	"github.com/privatinsolvenz/lead-dashboard/internal/oplog"
	"github.com/privatinsolvenz/lead-dashboard/internal/repository"
	"go.uber.org/zap"
)

// Listing defaults
const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

const sourceDashboard = "dashboard"

// LeadSyncer pushes leads to the external tracker
type LeadSyncer interface {
	// SyncLead pushes the stored lead and reports failures
	SyncLead(ctx context.Context, taskID string) error
	// SyncInBackground pushes the lead and only logs failures
	SyncInBackground(lead *domain.Lead)
}

type LeadService struct {
	leadRepo repository.LeadRepository
	machine  *domain.PhaseMachine
	syncer   LeadSyncer
	oplog    oplog.Sink
	logger   *zap.Logger
	now      func() time.Time
}

func NewLeadService(
	leadRepo repository.LeadRepository,
	machine *domain.PhaseMachine,
	syncer LeadSyncer,
	sink oplog.Sink,
	logger *zap.Logger,
) *LeadService {
	if machine == nil {
		machine = domain.NewPhaseMachine()
	}
	return &LeadService{
		leadRepo: leadRepo,
		machine:  machine,
		syncer:   syncer,
		oplog:    sink,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the clock used for timestamps and document dates
func (s *LeadService) WithClock(now func() time.Time) *LeadService {
	s.now = now
	return s
}

func (s *LeadService) List(ctx context.Context, page, pageSize int, filters repository.LeadFilters) (*domain.PaginatedResponse, error) {
	// Clamp page size
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	leads, total, err := s.leadRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, translateRepoError(err, "failed to list leads")
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &domain.PaginatedResponse{
		Data:       mapper.ToLeadDTOs(leads),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *LeadService) GetByTaskID(ctx context.Context, taskID string) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, translateRepoError(err, "failed to get lead")
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) Create(ctx context.Context, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	if req.TaskID == "" {
		return nil, fmt.Errorf("taskId is required: %w", ErrInvalidInput)
	}
	if req.Phase != "" && !req.Phase.IsValid() {
		return nil, fmt.Errorf("%q: %w", req.Phase, ErrInvalidPhase)
	}

	// Soft-deleted leads still own their task id
	if _, err := s.leadRepo.FindByTaskID(ctx, req.TaskID); err == nil {
		return nil, fmt.Errorf("lead %s already exists: %w", req.TaskID, ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, translateRepoError(err, "failed to check lead")
	}

	now := s.now()
	phase := req.Phase
	if phase == "" {
		phase = domain.PhaseInitialConsultation
	}

	lead := &domain.Lead{
		TaskID:    req.TaskID,
		LeadName:  req.LeadName,
		Phase:     phase,
		Qualified: req.Qualified,
		ExternalStatus: domain.ExternalStatus{
			Status:   domain.DefaultExternalStatus,
			Color:    domain.DefaultExternalColor,
			Priority: domain.DefaultExternalPriority,
		},
		Street:        req.Street,
		HouseNumber:   req.HouseNumber,
		PostalCode:    req.PostalCode,
		City:          req.City,
		Email:         req.Email,
		Phone:         req.Phone,
		TotalDebt:     req.TotalDebt,
		CreditorCount: req.CreditorCount,
		Notes:         req.Notes,
		Documents:     []domain.Document{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	lead.Phase = s.machine.Next(domain.TransitionInput{
		Phase:     lead.Phase,
		Qualified: lead.Qualified,
		Explicit:  req.Phase != "",
	})

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, translateRepoError(err, "failed to create lead")
	}

	s.logger.Info("lead created", zap.String("task_id", lead.TaskID))
	s.record(ctx, oplog.TypeSuccess, "Lead created", lead.TaskID, nil)
	s.syncer.SyncInBackground(lead)

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// Update applies a partial update. The task id is immutable. A lead that is
// qualified after the update and still in initial consultation advances to
// the checklist phase unless the request names a phase.
func (s *LeadService) Update(ctx context.Context, taskID string, req *domain.UpdateLeadRequest) (*domain.LeadDTO, error) {
	lead, err := s.update(ctx, taskID, req, true)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) update(ctx context.Context, taskID string, req *domain.UpdateLeadRequest, sync bool) (*domain.Lead, error) {
	if req.Phase != nil && !req.Phase.IsValid() {
		return nil, fmt.Errorf("%q: %w", *req.Phase, ErrInvalidPhase)
	}

	lead, err := s.leadRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, translateRepoError(err, "failed to get lead")
	}

	applyUpdate(lead, req)
	lead.Phase = s.machine.Next(domain.TransitionInput{
		Phase:     lead.Phase,
		Qualified: lead.Qualified,
		Explicit:  req.Phase != nil,
	})
	lead.UpdatedAt = s.now()

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, translateRepoError(err, "failed to update lead")
	}

	s.logger.Info("lead updated", zap.String("task_id", lead.TaskID), zap.String("phase", string(lead.Phase)))
	if sync {
		s.syncer.SyncInBackground(lead)
	}
	return lead, nil
}

func applyUpdate(lead *domain.Lead, req *domain.UpdateLeadRequest) {
	setString(&lead.LeadName, req.LeadName)
	setString(&lead.Street, req.Street)
	setString(&lead.HouseNumber, req.HouseNumber)
	setString(&lead.PostalCode, req.PostalCode)
	setString(&lead.City, req.City)
	setString(&lead.Email, req.Email)
	setString(&lead.Phone, req.Phone)
	setString(&lead.TotalDebt, req.TotalDebt)
	setString(&lead.CreditorCount, req.CreditorCount)
	setString(&lead.Notes, req.Notes)
	if req.Phase != nil {
		lead.Phase = *req.Phase
	}
	if req.Qualified != nil {
		lead.Qualified = *req.Qualified
	}
	if req.ExternalStatus != nil {
		lead.ExternalStatus = *req.ExternalStatus
	}
	if req.Checklist != nil {
		lead.Checklist = *req.Checklist
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// UpdatePhase moves a lead to the given phase. Invalid phases are rejected
// before the lead is loaded.
func (s *LeadService) UpdatePhase(ctx context.Context, taskID string, phase domain.Phase) (*domain.LeadDTO, error) {
	if !phase.IsValid() {
		return nil, fmt.Errorf("%q: %w", phase, ErrInvalidPhase)
	}
	return s.Update(ctx, taskID, &domain.UpdateLeadRequest{Phase: &phase})
}

// UpdateChecklist replaces the lead's checklist
func (s *LeadService) UpdateChecklist(ctx context.Context, taskID string, checklist domain.Checklist) (*domain.LeadDTO, error) {
	return s.Update(ctx, taskID, &domain.UpdateLeadRequest{Checklist: &checklist})
}

// AddDocument appends document metadata to the lead
func (s *LeadService) AddDocument(ctx context.Context, taskID string, req *domain.AddDocumentRequest) (*domain.LeadDTO, error) {
	if req.Name == "" || req.Type == "" {
		return nil, fmt.Errorf("document name and type are required: %w", ErrInvalidInput)
	}

	lead, err := s.leadRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, translateRepoError(err, "failed to get lead")
	}

	now := s.now()
	size := req.Size
	if size == "" {
		size = domain.DefaultDocumentSize
	}
	doc := domain.Document{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Type:       req.Type,
		UploadDate: now.Format(domain.DocumentDateLayout),
		Size:       size,
		Path:       req.Path,
	}
	lead.Documents = append(lead.Documents, doc)
	lead.UpdatedAt = now

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, translateRepoError(err, "failed to add document")
	}

	s.logger.Info("document added",
		zap.String("task_id", taskID),
		zap.String("document_id", doc.ID),
		zap.String("name", doc.Name))
	s.syncer.SyncInBackground(lead)

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// RemoveDocument removes a document by id
func (s *LeadService) RemoveDocument(ctx context.Context, taskID, documentID string) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, translateRepoError(err, "failed to get lead")
	}

	idx := -1
	for i, d := range lead.Documents {
		if d.ID == documentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("document %s: %w", documentID, ErrNotFound)
	}

	lead.Documents = append(lead.Documents[:idx], lead.Documents[idx+1:]...)
	lead.UpdatedAt = s.now()

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, translateRepoError(err, "failed to remove document")
	}

	s.logger.Info("document removed", zap.String("task_id", taskID), zap.String("document_id", documentID))
	s.syncer.SyncInBackground(lead)

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// Delete soft-deletes a lead. The record and its task id are kept.
func (s *LeadService) Delete(ctx context.Context, taskID string) error {
	lead, err := s.leadRepo.GetByTaskID(ctx, taskID)
	if err != nil {
		return translateRepoError(err, "failed to get lead")
	}

	now := s.now()
	lead.Deleted = true
	lead.DeletedAt = &now
	lead.UpdatedAt = now

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return translateRepoError(err, "failed to delete lead")
	}

	s.logger.Info("lead deleted", zap.String("task_id", taskID))
	s.record(ctx, oplog.TypeInfo, "Lead deleted", taskID, nil)
	return nil
}

func (s *LeadService) Stats(ctx context.Context) (*domain.LeadStatsDTO, error) {
	stats, err := s.leadRepo.Stats(ctx)
	if err != nil {
		return nil, translateRepoError(err, "failed to compute lead stats")
	}
	dto := mapper.ToLeadStatsDTO(stats)
	return &dto, nil
}

// Ping checks the record store
func (s *LeadService) Ping(ctx context.Context) error {
	return translateRepoError(s.leadRepo.Ping(ctx), "record store ping failed")
}

func (s *LeadService) record(ctx context.Context, typ oplog.Type, message, taskID string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	details["taskId"] = taskID
	_ = oplog.Record(ctx, s.oplog, typ, sourceDashboard, message, details)
}
