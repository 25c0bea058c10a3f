package repository

import (
	"context"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
)

// UnavailableRepository stands in for a SQL store that could not be reached
// at startup. Every call fails with ErrUnavailable.
type UnavailableRepository struct {
	cause error
}

func NewUnavailableRepository(cause error) *UnavailableRepository {
	return &UnavailableRepository{cause: cause}
}

func (r *UnavailableRepository) err() error {
	if r.cause == nil {
		return ErrUnavailable
	}
	return &unavailableError{cause: r.cause}
}

type unavailableError struct {
	cause error
}

func (e *unavailableError) Error() string {
	return ErrUnavailable.Error() + ": " + e.cause.Error()
}

func (e *unavailableError) Is(target error) bool { return target == ErrUnavailable }

func (e *unavailableError) Unwrap() error { return e.cause }

func (r *UnavailableRepository) Create(context.Context, *domain.Lead) error { return r.err() }

func (r *UnavailableRepository) Save(context.Context, *domain.Lead) error { return r.err() }

func (r *UnavailableRepository) GetByTaskID(context.Context, string) (*domain.Lead, error) {
	return nil, r.err()
}

func (r *UnavailableRepository) FindByTaskID(context.Context, string) (*domain.Lead, error) {
	return nil, r.err()
}

func (r *UnavailableRepository) List(context.Context, int, int, LeadFilters) ([]domain.Lead, int64, error) {
	return nil, 0, r.err()
}

func (r *UnavailableRepository) ListActive(context.Context) ([]domain.Lead, error) {
	return nil, r.err()
}

func (r *UnavailableRepository) Stats(context.Context) (*LeadStats, error) { return nil, r.err() }

func (r *UnavailableRepository) Ping(context.Context) error { return r.err() }

func (r *UnavailableRepository) Upsert(context.Context, *domain.OAuthToken) error { return r.err() }

func (r *UnavailableRepository) GetLatest(context.Context, string) (*domain.OAuthToken, error) {
	return nil, r.err()
}

var (
	_ LeadRepository  = (*UnavailableRepository)(nil)
	_ TokenRepository = (*UnavailableRepository)(nil)
	_ LeadRepository  = (*GormLeadRepository)(nil)
	_ TokenRepository = (*GormTokenRepository)(nil)
	_ LeadRepository  = (*MongoLeadRepository)(nil)
	_ TokenRepository = (*MongoTokenRepository)(nil)
)
