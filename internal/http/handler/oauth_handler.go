package handler

import (
	"net/http"

	"github.com/privatinsolvenz/lead-dashboard/internal/service"
	"go.uber.org/zap"
)

type OAuthHandler struct {
	oauthService *service.OAuthService
	logger       *zap.Logger
}

func NewOAuthHandler(oauthService *service.OAuthService, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
		logger:       logger,
	}
}

// Authorize godoc
// @Summary Start ClickUp OAuth
// @Description Redirects to the ClickUp consent page with a signed state parameter.
// @Tags OAuth
// @Success 302
// @Failure 503 {object} domain.APIError
// @Router /oauth/clickup [get]
func (h *OAuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	target, err := h.oauthService.AuthorizeURL(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to start ClickUp authorization")
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// Callback godoc
// @Summary ClickUp OAuth callback
// @Description Verifies the state, exchanges the code and stores the access token.
// @Tags OAuth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by /oauth/clickup"
// @Success 200 {object} domain.OAuthStatusDTO
// @Failure 400 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Router /oauth/clickup/callback [get]
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		respondWithError(w, http.StatusBadRequest, "ClickUp authorization was declined: "+errParam)
		return
	}

	status, err := h.oauthService.Callback(r.Context(), query.Get("code"), query.Get("state"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to complete ClickUp authorization")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// Status godoc
// @Summary ClickUp OAuth token status
// @Tags OAuth
// @Produce json
// @Success 200 {object} domain.OAuthStatusDTO
// @Failure 503 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /oauth/status [get]
func (h *OAuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.oauthService.Status(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get OAuth status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}
