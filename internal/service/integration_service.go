package service

import (
	"context"
	"errors"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
)

// IntegrationSettings describes what the process was configured with
type IntegrationSettings struct {
	ClickUpAPIKey  bool
	ClickUpListID  bool
	MakeWebhookURL bool
	N8nWebhookURL  bool
	OplogDriver    string
	DatabaseDriver string
}

// IntegrationService reports which integrations are usable. It never returns
// secret values.
type IntegrationService struct {
	settings IntegrationSettings
	oauth    *OAuthService
}

func NewIntegrationService(settings IntegrationSettings, oauth *OAuthService) *IntegrationService {
	return &IntegrationService{settings: settings, oauth: oauth}
}

func (s *IntegrationService) Status(ctx context.Context) (*domain.IntegrationStatusDTO, error) {
	dto := &domain.IntegrationStatusDTO{
		ClickUpAPIKeyConfigured: s.settings.ClickUpAPIKey,
		ClickUpListConfigured:   s.settings.ClickUpListID,
		MakeWebhookConfigured:   s.settings.MakeWebhookURL,
		N8nWebhookConfigured:    s.settings.N8nWebhookURL,
		OplogDriver:             s.settings.OplogDriver,
		DatabaseDriver:          s.settings.DatabaseDriver,
	}

	if s.oauth != nil {
		status, err := s.oauth.Status(ctx)
		// An unreachable token store reports as not connected
		if err != nil && !errors.Is(err, ErrDatabaseUnavailable) {
			return nil, err
		}
		if status != nil {
			dto.ClickUpOAuthConnected = status.Authenticated
		}
	}
	return dto, nil
}

