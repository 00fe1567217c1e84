package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxdesk/vat_recon_app/internal/apperrors"
	"github.com/taxdesk/vat_recon_app/internal/core/domain"
	portsrepo "github.com/taxdesk/vat_recon_app/internal/core/ports/repositories"
	portssvc "github.com/taxdesk/vat_recon_app/internal/core/ports/services"
	"github.com/taxdesk/vat_recon_app/internal/middleware"
)

var (
	ErrNegativeCredit   = errors.New("previous credit must not be negative")
	ErrManualCreditHeld = errors.New("manual credit override refused: a prior locked period exists")
	ErrNegativeTotals   = errors.New("aggregator returned a negative total")
)

// periodService is the period ledger. It owns VATPeriodResult records,
// performs the carry-forward lookup and enforces the lock state machine.
type periodService struct {
	periodRepo portsrepo.PeriodRepositoryFacade
	clientSvc  portssvc.ClientSvcFacade
	aggregator portssvc.VATAggregatorSvcFacade
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(periodRepo portsrepo.PeriodRepositoryFacade, clientSvc portssvc.ClientSvcFacade, aggregator portssvc.VATAggregatorSvcFacade) portssvc.PeriodSvcFacade {
	return &periodService{
		periodRepo: periodRepo,
		clientSvc:  clientSvc,
		aggregator: aggregator,
	}
}

// Ensure periodService implements the portssvc.PeriodSvcFacade interface
var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// Calculate implements portssvc.PeriodSvcFacade.
//
// Every aggregator call happens before any write: a feed outage during the
// first calculation leaves no row behind, and one during a recalculation
// leaves the stored record untouched, so a retry of the whole call is
// always safe.
func (s *periodService) Calculate(ctx context.Context, key domain.PeriodKey, recalculate bool, userID string) (*domain.VATPeriodResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := key.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.clientSvc.GetClientByID(ctx, key.ClientID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to resolve client for calculation", slog.String("client_id", key.ClientID), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to resolve client %s: %w", key.ClientID, err)
	}

	now := time.Now().UTC()

	result, err := s.periodRepo.FindPeriodResultByKey(ctx, key)
	if errors.Is(err, apperrors.ErrNotFound) {
		result, err = s.createFromFeed(ctx, key, now, userID)
		if err != nil {
			return nil, err
		}
		if result.Created {
			logger.Info("Period calculated",
				slog.String("period_result_id", result.PeriodResultID),
				slog.String("period_key", key.String()),
				slog.Bool("created", true),
				slog.String("final_result", result.FinalResult.String()),
				slog.Bool("is_payable", result.IsPayable),
			)
			return result, nil
		}
		// Lost the create race; continue with the winner's record.
	} else if err != nil {
		return nil, fmt.Errorf("failed to load period result for %s: %w", key, err)
	}

	if result.IsLocked {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrLocked, key)
	}

	if recalculate {
		totals, err := s.fetchTotals(ctx, key)
		if err != nil {
			return nil, err
		}
		result.VATOutput = totals.OutputVAT.Truncate(2)
		result.VATInput = totals.InputVAT.Truncate(2)
	}

	// A manually overridden credit sticks; auto credits follow the latest
	// locked prior period on every recalculation.
	if result.CreditSource == domain.CreditSourceAuto {
		carried, err := s.carryForward(ctx, key)
		if err != nil {
			return nil, err
		}
		result.PreviousCredit = carried
	}

	result.ApplyReconciliation(domain.Reconcile(result.VATOutput, result.VATInput, result.PreviousCredit))
	result.LastCalculatedAt = now
	result.LastUpdatedAt = now
	result.LastUpdatedBy = userID

	if err := s.periodRepo.UpdateCalculation(ctx, *result); err != nil {
		if !errors.Is(err, apperrors.ErrLocked) {
			logger.Error("Failed to persist calculation", slog.String("period_key", key.String()), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to persist calculation for %s: %w", key, err)
	}

	logger.Info("Period calculated",
		slog.String("period_result_id", result.PeriodResultID),
		slog.String("period_key", key.String()),
		slog.Bool("created", false),
		slog.String("final_result", result.FinalResult.String()),
		slog.Bool("is_payable", result.IsPayable),
	)

	result.Created = false
	return result, nil
}

// fetchTotals pulls the period's VAT totals from the aggregator and rejects
// negative figures before they reach a stored record.
func (s *periodService) fetchTotals(ctx context.Context, key domain.PeriodKey) (*domain.VATTotals, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	totals, err := s.aggregator.GetTotals(ctx, key.ClientID, key.StartDate(), key.EndDate())
	if err != nil {
		logger.Warn("VAT aggregator call failed", slog.String("period_key", key.String()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch totals for %s: %w", key, err)
	}
	if totals.OutputVAT.IsNegative() || totals.InputVAT.IsNegative() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNegativeTotals)
	}
	return totals, nil
}

// createFromFeed builds the first record for the key. The aggregator is
// consulted before the insert: if the feed is down nothing is written, so the
// next calculate call starts from a clean slate instead of finding a
// zero-totals row. On a create race the winner's record is returned with
// Created unset.
func (s *periodService) createFromFeed(ctx context.Context, key domain.PeriodKey, now time.Time, userID string) (*domain.VATPeriodResult, error) {
	totals, err := s.fetchTotals(ctx, key)
	if err != nil {
		return nil, err
	}

	carried, err := s.carryForward(ctx, key)
	if err != nil {
		return nil, err
	}

	fresh := domain.VATPeriodResult{
		PeriodResultID: uuid.NewString(),
		PeriodKey:      key,
		StartDate:      key.StartDate(),
		EndDate:        key.EndDate(),
		VATOutput:      totals.OutputVAT.Truncate(2),
		VATInput:       totals.InputVAT.Truncate(2),
		PreviousCredit: carried,
		CreditSource:   domain.CreditSourceAuto,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	fresh.ApplyReconciliation(domain.Reconcile(fresh.VATOutput, fresh.VATInput, fresh.PreviousCredit))
	fresh.LastCalculatedAt = now

	if err := s.periodRepo.CreatePeriodResult(ctx, fresh); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Another request created the record concurrently; read theirs.
			existing, retryErr := s.periodRepo.FindPeriodResultByKey(ctx, key)
			if retryErr != nil {
				return nil, fmt.Errorf("failed to load period result after create race for %s: %w", key, retryErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create period result for %s: %w", key, err)
	}
	fresh.Created = true
	return &fresh, nil
}

// carryForward returns the credit_to_next of the most recently locked period
// for the client that starts strictly before this one, or zero if none
// exists. Once a prior period is locked its credit is authoritative; it is
// read here, never recomputed.
func (s *periodService) carryForward(ctx context.Context, key domain.PeriodKey) (decimal.Decimal, error) {
	prior, err := s.periodRepo.FindLatestLockedBefore(ctx, key.ClientID, key.StartDate())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("carry-forward lookup failed for %s: %w", key, err)
	}
	return prior.CreditToNext, nil
}

// GetPeriodResult implements portssvc.PeriodSvcFacade.
func (s *periodService) GetPeriodResult(ctx context.Context, periodResultID string) (*domain.VATPeriodResult, error) {
	result, err := s.periodRepo.FindPeriodResultByID(ctx, periodResultID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period result %s: %w", periodResultID, err)
	}
	return result, nil
}

// ListPeriodResults implements portssvc.PeriodSvcFacade. Client existence is
// the caller's concern; the handler resolves the client before listing.
func (s *periodService) ListPeriodResults(ctx context.Context, clientID string, year *int) ([]domain.VATPeriodResult, error) {
	results, err := s.periodRepo.ListPeriodResultsByClient(ctx, clientID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list period results for client %s: %w", clientID, err)
	}
	return results, nil
}

// SetCredit implements portssvc.PeriodSvcFacade.
//
// Manual overrides are meant for a client's first tracked period; once a
// prior locked period exists the override is refused unless force is set,
// so an auto-carried credit cannot be clobbered by accident.
func (s *periodService) SetCredit(ctx context.Context, periodResultID string, amount decimal.Decimal, force bool, userID string) (*domain.VATPeriodResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNegativeCredit)
	}

	result, err := s.periodRepo.FindPeriodResultByID(ctx, periodResultID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period result %s: %w", periodResultID, err)
	}

	if result.IsLocked {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrLocked, result.PeriodKey)
	}

	if !force {
		hasPrior, err := s.periodRepo.HasLockedPeriodBefore(ctx, result.ClientID, result.StartDate)
		if err != nil {
			return nil, fmt.Errorf("failed to check prior locked periods for %s: %w", result.PeriodKey, err)
		}
		if hasPrior {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrManualCreditHeld)
		}
	}

	now := time.Now().UTC()
	result.PreviousCredit = amount.Truncate(2)
	result.CreditSource = domain.CreditSourceManual
	result.ApplyReconciliation(domain.Reconcile(result.VATOutput, result.VATInput, result.PreviousCredit))
	result.LastCalculatedAt = now
	result.LastUpdatedAt = now
	result.LastUpdatedBy = userID

	if err := s.periodRepo.UpdateCalculation(ctx, *result); err != nil {
		return nil, fmt.Errorf("failed to persist credit override for %s: %w", result.PeriodKey, err)
	}

	logger.Info("Manual credit override applied",
		slog.String("period_result_id", result.PeriodResultID),
		slog.String("previous_credit", result.PreviousCredit.String()),
		slog.Bool("force", force),
	)
	return result, nil
}

// Lock implements portssvc.PeriodSvcFacade. Locking an already locked record
// fails with ErrAlreadyLocked rather than succeeding silently, so a double
// filing shows up in the console instead of being swallowed.
func (s *periodService) Lock(ctx context.Context, periodResultID string, userID string) (*domain.VATPeriodResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	result, err := s.periodRepo.LockPeriodResult(ctx, periodResultID, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to lock period result %s: %w", periodResultID, err)
	}

	logger.Info("Period locked",
		slog.String("period_result_id", result.PeriodResultID),
		slog.String("period_key", result.PeriodKey.String()),
		slog.String("credit_to_next", result.CreditToNext.String()),
	)
	return result, nil
}

// Unlock implements portssvc.PeriodSvcFacade. Unlocking is refused while a
// later locked period exists for the client: that period already consumed
// this one's credit_to_next, and rewinding underneath it would leave a stale
// carry-forward chain.
func (s *periodService) Unlock(ctx context.Context, periodResultID string, userID string) (*domain.VATPeriodResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	result, err := s.periodRepo.UnlockPeriodResult(ctx, periodResultID, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to unlock period result %s: %w", periodResultID, err)
	}

	logger.Info("Period unlocked",
		slog.String("period_result_id", result.PeriodResultID),
		slog.String("period_key", result.PeriodKey.String()),
	)
	return result, nil
}
