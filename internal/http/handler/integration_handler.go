package handler

import (
	"net/http"

	"github.com/privatinsolvenz/lead-dashboard/internal/service"
	"go.uber.org/zap"
)

type IntegrationHandler struct {
	integrationService *service.IntegrationService
	logger             *zap.Logger
}

func NewIntegrationHandler(integrationService *service.IntegrationService, logger *zap.Logger) *IntegrationHandler {
	return &IntegrationHandler{
		integrationService: integrationService,
		logger:             logger,
	}
}

// Status godoc
// @Summary Integration configuration status
// @Description Reports which integrations are configured. Secret values are never returned.
// @Tags Integration
// @Produce json
// @Success 200 {object} domain.IntegrationStatusDTO
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /integration/status [get]
func (h *IntegrationHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.integrationService.Status(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get integration status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}
