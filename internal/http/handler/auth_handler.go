package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/privatinsolvenz/lead-dashboard/internal/auth"
	"go.uber.org/zap"
)

// DefaultSessionTTL applies when no session lifetime is configured
const DefaultSessionTTL = 12 * time.Hour

// SessionIssuer signs dashboard session tokens
type SessionIssuer interface {
	IssueSession(user *auth.UserContext, ttl time.Duration) (string, error)
}

type AuthHandler struct {
	tokens     SessionIssuer
	sessionTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewAuthHandler(tokens SessionIssuer, sessionTTL time.Duration, logger *zap.Logger) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthHandler{
		tokens:     tokens,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CurrentUser is the authenticated caller as seen by the dashboard
type CurrentUser struct {
	Subject     string `json:"subject"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	AuthType    string `json:"authType"`
}

// SessionResponse carries a freshly issued session token
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Me godoc
// @Summary Get current caller
// @Tags Auth
// @Produce json
// @Success 200 {object} CurrentUser
// @Failure 401 {object} domain.APIError
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, CurrentUser{
		Subject:     user.Subject,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		AuthType:    user.AuthType,
	})
}

// CreateSession godoc
// @Summary Exchange the admin API key for a session token
// @Description The dashboard calls this once with the API key and then uses the Bearer token.
// @Tags Auth
// @Produce json
// @Success 201 {object} SessionResponse
// @Failure 401 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /auth/session [post]
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	expiresAt := h.now().Add(h.sessionTTL)
	token, err := h.tokens.IssueSession(user, h.sessionTTL)
	if err != nil {
		if errors.Is(err, auth.ErrNoSecret) {
			respondWithError(w, http.StatusServiceUnavailable, "Session tokens are not configured")
			return
		}
		h.logger.Error("failed to issue session token", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to issue session token")
		return
	}

	h.logger.Info("session issued",
		zap.String("subject", user.Subject),
		zap.String("auth_type", user.AuthType))
	respondJSON(w, http.StatusCreated, SessionResponse{Token: token, ExpiresAt: expiresAt})
}
