package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/privatinsolvenz/lead-dashboard/internal/auth"
	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func withUser(r *http.Request, user *auth.UserContext) *http.Request {
	return r.WithContext(auth.WithUserContext(r.Context(), user))
}

func TestAuthHandler_Me(t *testing.T) {
	h := handler.NewAuthHandler(auth.NewTokenManager("secret"), 0, zap.NewNop())

	rr := httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil),
		&auth.UserContext{Subject: "system", DisplayName: "System", AuthType: auth.AuthTypeAPIKey})
	rr = httptest.NewRecorder()
	h.Me(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	me := decodeResponse[handler.CurrentUser](t, rr)
	assert.Equal(t, "system", me.Subject)
	assert.Equal(t, auth.AuthTypeAPIKey, me.AuthType)
}

func TestAuthHandler_CreateSession(t *testing.T) {
	user := &auth.UserContext{Subject: "system", AuthType: auth.AuthTypeAPIKey}

	t.Run("issues a token that validates", func(t *testing.T) {
		tokens := auth.NewTokenManager("secret")
		h := handler.NewAuthHandler(tokens, time.Hour, zap.NewNop())

		rr := httptest.NewRecorder()
		h.CreateSession(rr, withUser(httptest.NewRequest(http.MethodPost, "/api/v1/auth/session", nil), user))

		require.Equal(t, http.StatusCreated, rr.Code)
		session := decodeResponse[handler.SessionResponse](t, rr)
		assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

		got, err := tokens.ValidateSession(session.Token)
		require.NoError(t, err)
		assert.Equal(t, "system", got.Subject)
	})

	t.Run("no secret configured", func(t *testing.T) {
		h := handler.NewAuthHandler(auth.NewTokenManager(""), time.Hour, zap.NewNop())

		rr := httptest.NewRecorder()
		h.CreateSession(rr, withUser(httptest.NewRequest(http.MethodPost, "/api/v1/auth/session", nil), user))

		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		apiErr := decodeResponse[domain.APIError](t, rr)
		assert.Equal(t, domain.ErrorTypeServiceUnavailable, apiErr.Type)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		h := handler.NewAuthHandler(auth.NewTokenManager("secret"), time.Hour, zap.NewNop())

		rr := httptest.NewRecorder()
		h.CreateSession(rr, httptest.NewRequest(http.MethodPost, "/api/v1/auth/session", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
