package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/privatinsolvenz/lead-dashboard/internal/clickup"
	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/mapper"
	"github.com/privatinsolvenz/lead-dashboard/internal/oplog"
	"github.com/privatinsolvenz/lead-dashboard/internal/repository"
	"go.uber.org/zap"
)

// DefaultStateTTL bounds the time between redirect and callback
const DefaultStateTTL = 10 * time.Minute

const sourceOAuth = "oauth"

// OAuthClient is the subset of the ClickUp client the OAuth flow uses
type OAuthClient interface {
	OAuthConfigured() bool
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*clickup.Token, error)
}

// StateSigner issues and checks the OAuth state parameter
type StateSigner interface {
	IssueState(ttl time.Duration) (string, error)
	ValidateState(state string) error
}

type OAuthService struct {
	client   OAuthClient
	tokens   repository.TokenRepository
	signer   StateSigner
	stateTTL time.Duration
	oplog    oplog.Sink
	logger   *zap.Logger
	now      func() time.Time
}

func NewOAuthService(
	client OAuthClient,
	tokens repository.TokenRepository,
	signer StateSigner,
	stateTTL time.Duration,
	sink oplog.Sink,
	logger *zap.Logger,
) *OAuthService {
	if stateTTL <= 0 {
		stateTTL = DefaultStateTTL
	}
	return &OAuthService{
		client:   client,
		tokens:   tokens,
		signer:   signer,
		stateTTL: stateTTL,
		oplog:    sink,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the clock used for token timestamps and expiry checks
func (s *OAuthService) WithClock(now func() time.Time) *OAuthService {
	s.now = now
	return s
}

// AuthorizeURL returns the ClickUp consent URL carrying a signed state
func (s *OAuthService) AuthorizeURL(ctx context.Context) (string, error) {
	if !s.client.OAuthConfigured() {
		return "", fmt.Errorf("ClickUp OAuth client: %w", ErrNotConfigured)
	}
	state, err := s.signer.IssueState(s.stateTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue oauth state: %w: %v", ErrNotConfigured, err)
	}
	return s.client.AuthorizeURL(state), nil
}

// Callback verifies the state, exchanges the code and stores the token
func (s *OAuthService) Callback(ctx context.Context, code, state string) (*domain.OAuthStatusDTO, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code is required: %w", ErrInvalidInput)
	}
	if err := s.signer.ValidateState(state); err != nil {
		s.logger.Warn("oauth state rejected", zap.Error(err))
		return nil, fmt.Errorf("invalid oauth state: %w", ErrInvalidInput)
	}

	token, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		_ = oplog.Record(ctx, s.oplog, oplog.TypeError, sourceOAuth, "ClickUp authorization failed",
			map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrExternalSync, err)
	}

	now := s.now()
	stored := &domain.OAuthToken{
		Provider:     domain.OAuthProviderClickUp,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.tokens.Upsert(ctx, stored); err != nil {
		return nil, translateRepoError(err, "failed to store oauth token")
	}

	s.logger.Info("ClickUp OAuth token stored", zap.Time("expires_at", stored.ExpiresAt))
	_ = oplog.Record(ctx, s.oplog, oplog.TypeSuccess, sourceOAuth, "ClickUp authorization completed",
		map[string]any{"expiresAt": stored.ExpiresAt.Format(time.RFC3339)})

	dto := mapper.ToOAuthStatusDTO(stored, now)
	return &dto, nil
}

// Status reports whether a usable token is stored
func (s *OAuthService) Status(ctx context.Context) (*domain.OAuthStatusDTO, error) {
	token, err := s.tokens.GetLatest(ctx, domain.OAuthProviderClickUp)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, translateRepoError(err, "failed to load oauth token")
	}
	if err != nil {
		token = nil
	}
	dto := mapper.ToOAuthStatusDTO(token, s.now())
	return &dto, nil
}
