package automation

import (
	"strconv"
	"strings"
	"unicode"
)

// Fee schedule for a debt settlement mandate, in euros
const (
	StartFee            = 799.0
	FeePerCreditor      = 39.0
	DefaultInstallments = 2
	MaxInstallments     = 12
)

// Quote is the fee calculation sent along with a lead
type Quote struct {
	StartFee       float64      `json:"startFee"`
	FeePerCreditor float64      `json:"feePerCreditor"`
	Creditors      int          `json:"creditors"`
	Total          float64      `json:"total"`
	Installments   Installments `json:"installments"`
}

// Installments splits the total into equal monthly rates
type Installments struct {
	Months      int     `json:"months"`
	MonthlyRate float64 `json:"monthlyRate"`
}

// QuoteFor prices a mandate from the lead's free-form creditor count. A
// months value of zero or less uses the default plan; anything else is
// clamped to 1..12.
func QuoteFor(creditorCount string, months int) Quote {
	creditors := parseCount(creditorCount)
	total := StartFee + float64(creditors)*FeePerCreditor

	switch {
	case months <= 0:
		months = DefaultInstallments
	case months > MaxInstallments:
		months = MaxInstallments
	}

	return Quote{
		StartFee:       StartFee,
		FeePerCreditor: FeePerCreditor,
		Creditors:      creditors,
		Total:          total,
		Installments: Installments{
			Months:      months,
			MonthlyRate: total / float64(months),
		},
	}
}

// parseCount reads the leading integer of s, so "12 Gläubiger" is 12.
// Anything unparsable counts as zero.
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end >= 0 {
		s = s[:end]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
