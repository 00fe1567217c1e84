package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taxdesk/vat_recon_app/internal/apperrors"
)

// PeriodType distinguishes monthly from quarterly VAT filing cadences.
type PeriodType string

const (
	PeriodTypeMonthly   PeriodType = "MONTHLY"
	PeriodTypeQuarterly PeriodType = "QUARTERLY"
)

// MaxPeriod returns the highest valid period number for the type.
func (t PeriodType) MaxPeriod() int {
	if t == PeriodTypeQuarterly {
		return 4
	}
	return 12
}

// CreditSource records how a period's previous_credit was obtained.
// AUTO credits are re-derived from the latest locked prior period on every
// calculation; MANUAL credits stick until explicitly changed.
type CreditSource string

const (
	CreditSourceAuto   CreditSource = "AUTO"
	CreditSourceManual CreditSource = "MANUAL"
)

// PeriodKey identifies one reconciliation unit: a client's VAT position for a
// single fiscal period. It is a value type; two keys are equal iff all four
// components are equal.
type PeriodKey struct {
	ClientID   string     `json:"clientID"`
	PeriodType PeriodType `json:"periodType"`
	Year       int        `json:"year"`
	Period     int        `json:"period"`
}

// Validate checks the key's components against the calendar.
func (k PeriodKey) Validate() error {
	if k.ClientID == "" {
		return fmt.Errorf("%w: client ID is required", apperrors.ErrValidation)
	}
	if k.PeriodType != PeriodTypeMonthly && k.PeriodType != PeriodTypeQuarterly {
		return fmt.Errorf("%w: unknown period type %q", apperrors.ErrValidation, k.PeriodType)
	}
	if k.Year < 2000 || k.Year > 2100 {
		return fmt.Errorf("%w: year %d out of range", apperrors.ErrValidation, k.Year)
	}
	if k.Period < 1 || k.Period > k.PeriodType.MaxPeriod() {
		return fmt.Errorf("%w: period %d out of range for %s %d", apperrors.ErrValidation, k.Period, k.PeriodType, k.Year)
	}
	return nil
}

// StartDate returns the first calendar day covered by the period.
// Carry-forward ordering across a monthly/quarterly cadence switch relies on
// comparing start dates, not period numbers.
func (k PeriodKey) StartDate() time.Time {
	month := k.Period
	if k.PeriodType == PeriodTypeQuarterly {
		month = (k.Period-1)*3 + 1
	}
	return time.Date(k.Year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// EndDate returns the last calendar day covered by the period.
func (k PeriodKey) EndDate() time.Time {
	months := 1
	if k.PeriodType == PeriodTypeQuarterly {
		months = 3
	}
	return k.StartDate().AddDate(0, months, -1)
}

// String renders the key for logs, e.g. "c-42/QUARTERLY/2025-3".
func (k PeriodKey) String() string {
	return fmt.Sprintf("%s/%s/%d-%d", k.ClientID, k.PeriodType, k.Year, k.Period)
}

// VATPeriodResult is the ledger's primary entity: one row per PeriodKey
// holding the aggregated totals, the carried-forward credit and the derived
// reconciliation outcome.
type VATPeriodResult struct {
	PeriodResultID string `json:"periodResultID"` // Primary Key (UUID)
	PeriodKey

	// Persisted alongside the key so the carry-forward lookup is a single
	// indexed comparison on start_date.
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	VATOutput      decimal.Decimal `json:"vatOutput"`
	VATInput       decimal.Decimal `json:"vatInput"`
	PreviousCredit decimal.Decimal `json:"previousCredit"`
	CreditSource   CreditSource    `json:"creditSource"`

	// Derived fields, recomputed together by Reconcile and never stored
	// independently of the calculation that produced them.
	VATDifference decimal.Decimal `json:"vatDifference"`
	FinalResult   decimal.Decimal `json:"finalResult"`
	IsPayable     bool            `json:"isPayable"`
	IsCredit      bool            `json:"isCredit"`
	CreditToNext  decimal.Decimal `json:"creditToNext"`

	IsLocked         bool       `json:"isLocked"`
	LockedAt         *time.Time `json:"lockedAt"`
	LastCalculatedAt time.Time  `json:"lastCalculatedAt"`

	// Created is set when the record was created by the current call.
	// Transient, communicated to the caller only; never persisted.
	Created bool `json:"-"`

	AuditFields
}

// ApplyReconciliation copies the calculator's output onto the record.
func (r *VATPeriodResult) ApplyReconciliation(rec Reconciliation) {
	r.VATDifference = rec.VATDifference
	r.FinalResult = rec.FinalResult
	r.IsPayable = rec.IsPayable
	r.IsCredit = rec.IsCredit
	r.CreditToNext = rec.CreditToNext
}
