package repository

import (
	"context"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
)

// LeadFilters narrows a lead listing
type LeadFilters struct {
	// Search is a case-insensitive substring match on the lead name
	Search    string
	Phase     *domain.Phase
	Qualified *bool
}

// LeadRepository persists leads keyed by task id. Implementations never
// physically delete a lead; Get/List/Count hide soft-deleted records while
// FindByTaskID returns them so upserts do not resurrect or duplicate them.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	Save(ctx context.Context, lead *domain.Lead) error
	GetByTaskID(ctx context.Context, taskID string) (*domain.Lead, error)
	FindByTaskID(ctx context.Context, taskID string) (*domain.Lead, error)
	List(ctx context.Context, page, pageSize int, filters LeadFilters) ([]domain.Lead, int64, error)
	ListActive(ctx context.Context) ([]domain.Lead, error)
	Stats(ctx context.Context) (*LeadStats, error)
	Ping(ctx context.Context) error
}

// LeadStats are aggregate counts over non-deleted leads
type LeadStats struct {
	Total     int64
	Qualified int64
	ByPhase   map[domain.Phase]int64
}

// TokenRepository stores one OAuth token per provider
type TokenRepository interface {
	Upsert(ctx context.Context, token *domain.OAuthToken) error
	GetLatest(ctx context.Context, provider string) (*domain.OAuthToken, error)
}

func newLeadStats() *LeadStats {
	stats := &LeadStats{ByPhase: make(map[domain.Phase]int64, len(domain.Phases))}
	for _, p := range domain.Phases {
		stats.ByPhase[p] = 0
	}
	return stats
}

func offsetFor(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
