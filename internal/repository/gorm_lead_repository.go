package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeEscaper makes LIKE wildcards in user input match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// GormLeadRepository stores leads in a SQL database
type GormLeadRepository struct {
	db *gorm.DB
}

func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

func (r *GormLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	err := r.db.WithContext(ctx).Create(lead).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("lead %s: %w", lead.TaskID, ErrDuplicate)
	}
	return err
}

// Save writes every column of the lead, inserting it when the task id is new
func (r *GormLeadRepository) Save(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}},
			UpdateAll: true,
		}).
		Create(lead).Error
}

func (r *GormLeadRepository) GetByTaskID(ctx context.Context, taskID string) (*domain.Lead, error) {
	return r.first(r.db.WithContext(ctx).Where("task_id = ? AND deleted = ?", taskID, false))
}

func (r *GormLeadRepository) FindByTaskID(ctx context.Context, taskID string) (*domain.Lead, error) {
	return r.first(r.db.WithContext(ctx).Where("task_id = ?", taskID))
}

func (r *GormLeadRepository) first(query *gorm.DB) (*domain.Lead, error) {
	var lead domain.Lead
	if err := query.First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

func (r *GormLeadRepository) List(ctx context.Context, page, pageSize int, filters LeadFilters) ([]domain.Lead, int64, error) {
	var leads []domain.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Lead{}).Where("deleted = ?", false)

	if filters.Search != "" {
		searchPattern := "%" + likeEscaper.Replace(strings.ToLower(filters.Search)) + "%"
		query = query.Where(`LOWER(lead_name) LIKE ? ESCAPE '\'`, searchPattern)
	}
	if filters.Phase != nil {
		query = query.Where("phase = ?", *filters.Phase)
	}
	if filters.Qualified != nil {
		query = query.Where("qualified = ?", *filters.Qualified)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("updated_at DESC").
		Order("task_id ASC").
		Offset(offsetFor(page, pageSize)).
		Limit(pageSize).
		Find(&leads).Error

	return leads, total, err
}

func (r *GormLeadRepository) ListActive(ctx context.Context) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Where("deleted = ?", false).
		Order("created_at ASC").
		Find(&leads).Error
	return leads, err
}

func (r *GormLeadRepository) Stats(ctx context.Context) (*LeadStats, error) {
	stats := newLeadStats()
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Lead{}).Where("deleted = ?", false)
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("qualified = ?", true).Count(&stats.Qualified).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Phase domain.Phase
		Count int64
	}
	if err := base().Select("phase, COUNT(*) AS count").Group("phase").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByPhase[row.Phase] = row.Count
	}

	return stats, nil
}

func (r *GormLeadRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// GormTokenRepository stores OAuth tokens in a SQL database
type GormTokenRepository struct {
	db *gorm.DB
}

func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

func (r *GormTokenRepository) Upsert(ctx context.Context, token *domain.OAuthToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "updated_at"}),
		}).
		Create(token).Error
}

func (r *GormTokenRepository) GetLatest(ctx context.Context, provider string) (*domain.OAuthToken, error) {
	var token domain.OAuthToken
	err := r.db.WithContext(ctx).
		Where("provider = ?", provider).
		Order("updated_at DESC").
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}
