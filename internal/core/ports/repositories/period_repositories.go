package repositories

import (
	"context"
	"time"

	"github.com/taxdesk/vat_recon_app/internal/core/domain"
)

// PeriodReaderRepository provides read access to period results.
type PeriodReaderRepository interface {
	// FindPeriodResultByID loads a record by its primary key.
	// Returns apperrors.ErrNotFound if absent.
	FindPeriodResultByID(ctx context.Context, periodResultID string) (*domain.VATPeriodResult, error)

	// FindPeriodResultByKey loads the unique record for a period key.
	// Returns apperrors.ErrNotFound if absent.
	FindPeriodResultByKey(ctx context.Context, key domain.PeriodKey) (*domain.VATPeriodResult, error)

	// ListPeriodResultsByClient returns all records for a client ordered by
	// start date, optionally restricted to a year.
	ListPeriodResultsByClient(ctx context.Context, clientID string, year *int) ([]domain.VATPeriodResult, error)
}

// PeriodCarryForwardRepository answers the carry-forward lookups.
type PeriodCarryForwardRepository interface {
	// FindLatestLockedBefore returns the most recently locked record for the
	// client whose period starts strictly before the given date, or
	// apperrors.ErrNotFound if none exists.
	FindLatestLockedBefore(ctx context.Context, clientID string, before time.Time) (*domain.VATPeriodResult, error)

	// HasLockedPeriodBefore reports whether any locked record for the client
	// starts strictly before the given date.
	HasLockedPeriodBefore(ctx context.Context, clientID string, before time.Time) (bool, error)
}

// PeriodWriterRepository mutates period results. Every method runs inside a
// single database transaction holding a row-level lock on the target record,
// so concurrent operations on the same period key serialize.
type PeriodWriterRepository interface {
	// CreatePeriodResult inserts a new record.
	// Returns apperrors.ErrDuplicate when the period key is already taken.
	CreatePeriodResult(ctx context.Context, result domain.VATPeriodResult) error

	// UpdateCalculation persists totals, credit and derived fields together
	// with last_calculated_at. Refuses with apperrors.ErrLocked when the
	// stored record is locked; the record is then left unchanged.
	UpdateCalculation(ctx context.Context, result domain.VATPeriodResult) error

	// LockPeriodResult freezes the record and returns the updated row.
	// Returns apperrors.ErrNotFound if absent, apperrors.ErrAlreadyLocked if
	// the record is already frozen.
	LockPeriodResult(ctx context.Context, periodResultID string, lockedBy string, lockedAt time.Time) (*domain.VATPeriodResult, error)

	// UnlockPeriodResult thaws the record and returns the updated row. A
	// no-op (still returning the row) when already unlocked. Returns
	// apperrors.ErrNotFound if absent and apperrors.ErrLaterPeriodLocked when
	// a later locked period exists for the same client.
	UnlockPeriodResult(ctx context.Context, periodResultID string, unlockedBy string, unlockedAt time.Time) (*domain.VATPeriodResult, error)
}

// PeriodRepositoryFacade is the full repository contract consumed by the
// period service.
type PeriodRepositoryFacade interface {
	PeriodReaderRepository
	PeriodCarryForwardRepository
	PeriodWriterRepository
}
