package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/privatinsolvenz/lead-dashboard/internal/service"
	"go.uber.org/zap"
)

type SyncHandler struct {
	syncService *service.SyncService
	logger      *zap.Logger
}

func NewSyncHandler(syncService *service.SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// SyncResult is the response of a single-lead sync
type SyncResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TaskID  string `json:"taskId"`
}

// SyncLead godoc
// @Summary Push one lead to ClickUp
// @Description Unlike the automatic sync after a change, failures are returned to the caller.
// @Tags Sync
// @Produce json
// @Param taskId path string true "ClickUp task ID"
// @Success 200 {object} SyncResult
// @Failure 404 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /sync/{taskId} [post]
func (h *SyncHandler) SyncLead(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskId")

	if err := h.syncService.SyncLead(r.Context(), taskID); err != nil {
		respondServiceError(w, h.logger, err, "Failed to sync lead")
		return
	}

	respondJSON(w, http.StatusOK, SyncResult{
		Success: true,
		Message: "Lead synced to ClickUp",
		TaskID:  taskID,
	})
}

// SyncAll godoc
// @Summary Push every lead to ClickUp
// @Description Runs until every lead was pushed, each bounded by the sync timeout; the server write timeout does not apply.
// @Tags Sync
// @Produce json
// @Success 200 {object} domain.SyncSummary
// @Failure 503 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /sync-all [post]
func (h *SyncHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn("failed to clear write deadline for bulk sync", zap.Error(err))
	}

	summary, err := h.syncService.SyncAll(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to sync leads")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
