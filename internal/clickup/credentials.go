package clickup

import (
	"context"
	"time"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"go.uber.org/zap"
)

// TokenStore loads stored OAuth tokens
type TokenStore interface {
	GetLatest(ctx context.Context, provider string) (*domain.OAuthToken, error)
}

// CredentialSource yields the value for the Authorization header
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
}

// CredentialResolver prefers a valid OAuth token and falls back to the static API key
type CredentialResolver struct {
	tokens TokenStore
	apiKey string
	now    func() time.Time
	logger *zap.Logger
}

func NewCredentialResolver(tokens TokenStore, apiKey string, logger *zap.Logger) *CredentialResolver {
	return &CredentialResolver{
		tokens: tokens,
		apiKey: apiKey,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock overrides the clock used for expiry checks
func (r *CredentialResolver) WithClock(now func() time.Time) *CredentialResolver {
	r.now = now
	return r
}

func (r *CredentialResolver) Credential(ctx context.Context) (string, error) {
	if r.tokens != nil {
		token, err := r.tokens.GetLatest(ctx, domain.OAuthProviderClickUp)
		switch {
		case err != nil:
			r.logger.Debug("no usable OAuth token, falling back to API key", zap.Error(err))
		case token.IsValidAt(r.now()):
			return token.AccessToken, nil
		default:
			r.logger.Debug("stored OAuth token expired", zap.Time("expires_at", token.ExpiresAt))
		}
	}
	if r.apiKey != "" {
		return r.apiKey, nil
	}
	return "", ErrNoCredential
}

// HasAPIKey reports whether a static API key is configured
func (r *CredentialResolver) HasAPIKey() bool {
	return r.apiKey != ""
}

// StaticCredential is a fixed credential, mainly for tests and scripts
type StaticCredential string

func (s StaticCredential) Credential(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoCredential
	}
	return string(s), nil
}
