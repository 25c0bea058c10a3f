package automation_test

import (
	"testing"

	"github.com/privatinsolvenz/lead-dashboard/internal/automation"
	"github.com/stretchr/testify/assert"
)

func TestQuoteFor(t *testing.T) {
	tests := []struct {
		name      string
		creditors string
		months    int
		wantCount int
		wantTotal float64
		wantMonth int
		wantRate  float64
	}{
		{"no creditors uses default plan", "0", 0, 0, 799, 2, 399.5},
		{"plain count", "10", 0, 10, 1189, 2, 594.5},
		{"count with suffix", "5 Gläubiger", 5, 5, 994, 5, 198.8},
		{"garbage counts as zero", "viele", 1, 0, 799, 1, 799},
		{"months clamped to twelve", "1", 24, 1, 838, 12, 838.0 / 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := automation.QuoteFor(tt.creditors, tt.months)
			assert.Equal(t, tt.wantCount, q.Creditors)
			assert.InDelta(t, tt.wantTotal, q.Total, 0.001)
			assert.Equal(t, tt.wantMonth, q.Installments.Months)
			assert.InDelta(t, tt.wantRate, q.Installments.MonthlyRate, 0.001)
		})
	}
}
