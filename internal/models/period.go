package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType distinguishes monthly from quarterly filing cadences.
type PeriodType string

// CreditSource records how previous_credit was obtained.
type CreditSource string

// VATPeriodResult mirrors one row of the vat_period_results table.
// (client_id, period_type, year, period) is unique.
type VATPeriodResult struct {
	PeriodResultID string     `json:"periodResultID"` // Primary Key (UUID)
	ClientID       string     `json:"clientID"`
	PeriodType     PeriodType `json:"periodType"`
	Year           int        `json:"year"`
	Period         int        `json:"period"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`

	VATOutput      decimal.Decimal `json:"vatOutput"`
	VATInput       decimal.Decimal `json:"vatInput"`
	PreviousCredit decimal.Decimal `json:"previousCredit"`
	CreditSource   CreditSource    `json:"creditSource"`

	VATDifference decimal.Decimal `json:"vatDifference"`
	FinalResult   decimal.Decimal `json:"finalResult"`
	IsPayable     bool            `json:"isPayable"`
	IsCredit      bool            `json:"isCredit"`
	CreditToNext  decimal.Decimal `json:"creditToNext"`

	IsLocked         bool       `json:"isLocked"`
	LockedAt         *time.Time `json:"lockedAt"` // Nullable
	LastCalculatedAt time.Time  `json:"lastCalculatedAt"`

	AuditFields
}
