package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/service"
	"go.uber.org/zap"
)

// maxWebhookBody caps webhook payloads; batch tasks from ClickUp can be large
const maxWebhookBody = 10 << 20

type WebhookHandler struct {
	webhookService *service.WebhookService
	logger         *zap.Logger
}

func NewWebhookHandler(webhookService *service.WebhookService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         logger,
	}
}

// Receive godoc
// @Summary Receive ClickUp tasks
// @Description Accepts a single task, an array of tasks or a {task: {...}} wrapper and upserts each task as a lead.
// @Description Answers 200 for every outcome except an empty array; failures are reported in the body.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param request body object true "ClickUp task payload"
// @Success 200 {object} domain.WebhookResponse
// @Failure 400 {object} domain.WebhookResponse
// @Router /webhook [post]
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var raw any
	if err := h.decode(w, r, &raw); err != nil {
		respondJSON(w, http.StatusBadRequest, &domain.WebhookResponse{
			Success: false,
			Message: "Invalid JSON payload",
			Error:   err.Error(),
		})
		return
	}

	resp, err := h.webhookService.Ingest(r.Context(), raw, service.SourceWebhook)
	h.respond(w, resp, err)
}

// Make godoc
// @Summary Make.com operation webhook
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param request body domain.OperationRequest true "Operation"
// @Success 200 {object} domain.WebhookResponse
// @Failure 400 {object} domain.WebhookResponse
// @Failure 404 {object} domain.WebhookResponse
// @Router /webhook/make [post]
func (h *WebhookHandler) Make(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, service.SourceMake)
}

// N8n godoc
// @Summary n8n operation webhook
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param request body domain.OperationRequest true "Operation"
// @Success 200 {object} domain.WebhookResponse
// @Failure 400 {object} domain.WebhookResponse
// @Failure 404 {object} domain.WebhookResponse
// @Router /webhook/n8n [post]
func (h *WebhookHandler) N8n(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, service.SourceN8n)
}

func (h *WebhookHandler) dispatch(w http.ResponseWriter, r *http.Request, source string) {
	var req domain.OperationRequest
	if err := h.decode(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, &domain.WebhookResponse{
			Success: false,
			Message: "Invalid JSON payload",
			Error:   err.Error(),
		})
		return
	}

	resp, err := h.webhookService.Dispatch(r.Context(), &req, source)
	h.respond(w, resp, err)
}

// ExternalForm godoc
// @Summary External intake form
// @Description Stores form data on the matching lead, or on a new lead with a temporary task ID.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param request body domain.ExternalFormRequest true "Form submission"
// @Success 200 {object} domain.WebhookResponse
// @Failure 400 {object} domain.WebhookResponse
// @Router /external-form [post]
func (h *WebhookHandler) ExternalForm(w http.ResponseWriter, r *http.Request) {
	var req domain.ExternalFormRequest
	if err := h.decode(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, &domain.WebhookResponse{
			Success: false,
			Message: "Invalid JSON payload",
			Error:   err.Error(),
		})
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.webhookService.ExternalForm(r.Context(), &req, service.SourceExternalForm)
	h.respond(w, resp, err)
}

// decode reads a size-limited JSON body, keeping numbers as json.Number so
// task ids and amounts are not rounded through float64
func (h *WebhookHandler) decode(w http.ResponseWriter, r *http.Request, target any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	dec.UseNumber()
	return dec.Decode(target)
}

// respond writes the webhook response. Only caller mistakes get a 4xx; every
// other failure answers 200 with the detail in the body.
func (h *WebhookHandler) respond(w http.ResponseWriter, resp *domain.WebhookResponse, err error) {
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidPhase):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	default:
		h.logger.Error("webhook processing failed", zap.Error(err))
	}

	if resp == nil {
		resp = &domain.WebhookResponse{Success: false, Message: "Webhook processing failed"}
		if err != nil {
			resp.Error = err.Error()
		}
	}

	respondJSON(w, status, resp)
}
