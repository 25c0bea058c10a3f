package mapper

import (
	"time"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/privatinsolvenz/lead-dashboard/internal/repository"
)

// TimestampLayout is the wire format of DTO timestamps
const TimestampLayout = "2006-01-02T15:04:05Z"

// ToLeadDTO converts Lead to LeadDTO
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	documents := lead.Documents
	if documents == nil {
		documents = []domain.Document{}
	}
	return domain.LeadDTO{
		TaskID:         lead.TaskID,
		LeadName:       lead.LeadName,
		Phase:          lead.Phase,
		Qualified:      lead.Qualified,
		Street:         lead.Street,
		HouseNumber:    lead.HouseNumber,
		PostalCode:     lead.PostalCode,
		City:           lead.City,
		Email:          lead.Email,
		Phone:          lead.Phone,
		TotalDebt:      lead.TotalDebt,
		CreditorCount:  lead.CreditorCount,
		ExternalStatus: lead.ExternalStatus,
		Checklist:      lead.Checklist,
		Documents:      documents,
		Notes:          lead.Notes,
		CreatedAt:      formatTime(lead.CreatedAt),
		UpdatedAt:      formatTime(lead.UpdatedAt),
	}
}

// ToLeadDTOs converts a slice of leads
func ToLeadDTOs(leads []domain.Lead) []domain.LeadDTO {
	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = ToLeadDTO(&leads[i])
	}
	return dtos
}

// ToLeadStatsDTO converts repository stats
func ToLeadStatsDTO(stats *repository.LeadStats) domain.LeadStatsDTO {
	return domain.LeadStatsDTO{
		Total:     stats.Total,
		Qualified: stats.Qualified,
		ByPhase:   stats.ByPhase,
	}
}

// ToOAuthStatusDTO describes a stored token as of now. A nil token reports
// that no token exists.
func ToOAuthStatusDTO(token *domain.OAuthToken, now time.Time) domain.OAuthStatusDTO {
	dto := domain.OAuthStatusDTO{Provider: domain.OAuthProviderClickUp}
	if token == nil {
		return dto
	}
	expires := formatTime(token.ExpiresAt)
	dto.Provider = token.Provider
	dto.TokenExists = true
	dto.Expired = !token.ExpiresAt.After(now)
	dto.Authenticated = token.IsValidAt(now)
	dto.Expires = &expires
	return dto
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
