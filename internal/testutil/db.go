// Package testutil provides fixtures shared by package tests
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an isolated in-memory SQLite database with the lead
// schema migrated. Each call gets its own database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open test database")

	require.NoError(t, db.AutoMigrate(&domain.Lead{}, &domain.OAuthToken{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// FixedClock returns a clock that always reports t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// NewTestLead builds a lead with sensible defaults
func NewTestLead(taskID, name string) *domain.Lead {
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	return &domain.Lead{
		TaskID:   taskID,
		LeadName: name,
		Phase:    domain.PhaseInitialConsultation,
		ExternalStatus: domain.ExternalStatus{
			Status:   "NEUE ANFRAGE",
			Color:    domain.DefaultExternalColor,
			Priority: domain.DefaultExternalPriority,
		},
		TotalDebt:     "0",
		CreditorCount: "0",
		Documents:     []domain.Document{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CreateTestLead inserts a lead directly through GORM
func CreateTestLead(t *testing.T, db *gorm.DB, lead *domain.Lead) *domain.Lead {
	t.Helper()
	require.NoError(t, db.WithContext(context.Background()).Create(lead).Error)
	return lead
}
