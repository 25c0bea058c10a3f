package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/repository"
	"github.com/privatinsolvenz/lead-dashboard/internal/service"
	"go.uber.org/zap"
)

type LeadHandler struct {
	leadService *service.LeadService
	logger      *zap.Logger
}

func NewLeadHandler(leadService *service.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// List godoc
// @Summary List leads
// @Description Get a paginated list of leads, most recently updated first
// @Tags Leads
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param limit query int false "Alias for pageSize"
// @Param qualified query bool false "Filter by qualification"
// @Param phase query string false "Filter by phase" Enums(initial-consultation, checklist, documents, completed)
// @Param search query string false "Case-insensitive match on the lead name"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.LeadDTO}
// @Failure 400 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize := parsePageSize(query)

	filters := repository.LeadFilters{
		Search: query.Get("search"),
	}

	if phase := query.Get("phase"); phase != "" {
		p, err := domain.ParsePhase(phase)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		filters.Phase = &p
	}

	if qualified := query.Get("qualified"); qualified != "" {
		q, err := strconv.ParseBool(qualified)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "qualified must be true or false")
			return
		}
		filters.Qualified = &q
	}

	result, err := h.leadService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list leads")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// parsePageSize reads pageSize, falling back to the limit alias
func parsePageSize(query url.Values) int {
	if v := query.Get("pageSize"); v != "" {
		n, _ := strconv.Atoi(v)
		return n
	}
	n, _ := strconv.Atoi(query.Get("limit"))
	return n
}

// GetByTaskID godoc
// @Summary Get lead
// @Tags Leads
// @Produce json
// @Param taskId path string true "ClickUp task ID"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /leads/{taskId} [get]
func (h *LeadHandler) GetByTaskID(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leadService.GetByTaskID(r.Context(), chi.URLParam(r, "taskId"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// Create godoc
// @Summary Create lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.CreateLeadRequest true "Lead data"
// @Success 201 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /leads [post]
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create lead")
		return
	}

	w.Header().Set("Location", "/api/v1/leads/"+url.PathEscape(lead.TaskID))
	respondJSON(w, http.StatusCreated, lead)
}

// Update godoc
// @Summary Update lead
// @Description Partial update. Fields left out of the body keep their value.
// @Tags Leads
// @Accept json
// @Produce json
// @Param taskId path string true "ClickUp task ID"
// @Param request body domain.UpdateLeadRequest true "Fields to change"
// @Success 200 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /leads/{taskId} [put]
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateLeadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Update(r.Context(), chi.URLParam(r, "taskId"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// UpdatePhase godoc
// @Summary Move lead to a phase
// @Tags Leads
// @Accept json
// @Produce json
// @Param taskId path string true "ClickUp task ID"
// @Param request body domain.UpdatePhaseRequest true "Target phase"
// @Success 200 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /leads/{taskId}/phase [put]
func (h *LeadHandler) UpdatePhase(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePhaseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.UpdatePhase(r.Context(), chi.URLParam(r, "taskId"), req.Phase)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update phase")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// UpdateChecklist godoc
// @Summary Replace lead checklist
// @Tags Leads
// @Accept json
// @Produce json
// @Param taskId path string true "ClickUp task ID"
// @Param request body domain.Checklist true "Checklist"
// @Success 200 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /leads/{taskId}/checklist [put]
func (h *LeadHandler) UpdateChecklist(w http.ResponseWriter, r *http.Request) {
	var checklist domain.Checklist
	if err := decodeJSON(r, &checklist); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lead, err := h.leadService.UpdateChecklist(r.Context(), chi.URLParam(r, "taskId"), checklist)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update checklist")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// AddDocument godoc
// @Summary Attach document metadata
// @Tags Leads
// @Accept json
// @Produce json
// @Param taskId path string true "ClickUp task ID"
// @Param request body domain.AddDocumentRequest true "Document"
// @Success 200 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /leads/{taskId}/documents [post]
func (h *LeadHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	var req domain.AddDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.AddDocument(r.Context(), chi.URLParam(r, "taskId"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add document")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// RemoveDocument godoc
// @Summary Remove document metadata
// @Tags Leads
// @Produce json
// @Param taskId path string true "ClickUp task ID"
// @Param documentId path string true "Document ID"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /leads/{taskId}/documents/{documentId} [delete]
func (h *LeadHandler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leadService.RemoveDocument(r.Context(), chi.URLParam(r, "taskId"), chi.URLParam(r, "documentId"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to remove document")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// Delete godoc
// @Summary Delete lead
// @Description Soft-deletes the lead. It disappears from the dashboard and webhooks no longer update it.
// @Tags Leads
// @Param taskId path string true "ClickUp task ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /leads/{taskId} [delete]
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.leadService.Delete(r.Context(), chi.URLParam(r, "taskId")); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete lead")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats godoc
// @Summary Lead pipeline statistics
// @Tags Leads
// @Produce json
// @Success 200 {object} domain.LeadStatsDTO
// @Failure 503 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /leads/stats [get]
func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.leadService.Stats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get lead statistics")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
