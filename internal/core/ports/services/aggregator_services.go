package services

import (
	"context"
	"time"

	"github.com/taxdesk/vat_recon_app/internal/core/domain"
)

// VATAggregatorSvcFacade is the external collaborator that supplies the
// aggregated output/input VAT totals for a period's date range. Failures of
// the transient kind surface as apperrors.ErrAggregatorUnavailable; the
// engine performs no retries of its own.
type VATAggregatorSvcFacade interface {
	GetTotals(ctx context.Context, clientID string, from, to time.Time) (*domain.VATTotals, error)
}
