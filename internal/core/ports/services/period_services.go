package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/taxdesk/vat_recon_app/internal/core/domain"
)

// PeriodSvcFacade is the period ledger: it owns the VATPeriodResult records,
// the carry-forward lookup and the lock state machine.
type PeriodSvcFacade interface {
	// Calculate loads or creates the record for the key, optionally refreshes
	// the totals from the VAT aggregator, recomputes the derived fields and
	// persists the result. The returned record's Created flag reports whether
	// this call created it.
	Calculate(ctx context.Context, key domain.PeriodKey, recalculate bool, userID string) (*domain.VATPeriodResult, error)

	// GetPeriodResult returns a single record by ID.
	GetPeriodResult(ctx context.Context, periodResultID string) (*domain.VATPeriodResult, error)

	// ListPeriodResults returns a client's records ordered by start date,
	// optionally restricted to a year.
	ListPeriodResults(ctx context.Context, clientID string, year *int) ([]domain.VATPeriodResult, error)

	// SetCredit manually overrides the carried-forward credit. Unless force
	// is set, the override is refused once a prior locked period exists for
	// the client.
	SetCredit(ctx context.Context, periodResultID string, amount decimal.Decimal, force bool, userID string) (*domain.VATPeriodResult, error)

	// Lock freezes the record against further mutation.
	Lock(ctx context.Context, periodResultID string, userID string) (*domain.VATPeriodResult, error)

	// Unlock thaws the record. Refused while a later locked period exists for
	// the same client.
	Unlock(ctx context.Context, periodResultID string, userID string) (*domain.VATPeriodResult, error)
}
