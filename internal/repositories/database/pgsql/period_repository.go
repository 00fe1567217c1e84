package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taxdesk/vat_recon_app/internal/apperrors"
	"github.com/taxdesk/vat_recon_app/internal/core/domain"
	portsrepo "github.com/taxdesk/vat_recon_app/internal/core/ports/repositories"
	"github.com/taxdesk/vat_recon_app/internal/models"
	"github.com/taxdesk/vat_recon_app/internal/utils/mapping"
)

const pgUniqueViolation = "23505"

// periodResultColumns is the canonical column list used by every SELECT so
// scans stay in one place.
const periodResultColumns = `
	period_result_id, client_id, period_type, year, period, start_date, end_date,
	vat_output, vat_input, previous_credit, credit_source,
	vat_difference, final_result, is_payable, is_credit, credit_to_next,
	is_locked, locked_at, last_calculated_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxPeriodRepository struct {
	BaseRepository
}

// NewPgxPeriodRepository creates a new repository for VAT period results.
func NewPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPeriodRepository implements portsrepo.PeriodRepositoryFacade
var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPeriodResult(row rowScanner) (*models.VATPeriodResult, error) {
	var m models.VATPeriodResult
	err := row.Scan(
		&m.PeriodResultID, &m.ClientID, &m.PeriodType, &m.Year, &m.Period, &m.StartDate, &m.EndDate,
		&m.VATOutput, &m.VATInput, &m.PreviousCredit, &m.CreditSource,
		&m.VATDifference, &m.FinalResult, &m.IsPayable, &m.IsCredit, &m.CreditToNext,
		&m.IsLocked, &m.LockedAt, &m.LastCalculatedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindPeriodResultByID loads a record by primary key.
func (r *PgxPeriodRepository) FindPeriodResultByID(ctx context.Context, periodResultID string) (*domain.VATPeriodResult, error) {
	query := `SELECT` + periodResultColumns + ` FROM vat_period_results WHERE period_result_id = $1`
	m, err := scanPeriodResult(r.Pool.QueryRow(ctx, query, periodResultID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query period result by id: %w", err)
	}
	result := mapping.ToDomainPeriodResult(*m)
	return &result, nil
}

// FindPeriodResultByKey loads the unique record for a period key.
func (r *PgxPeriodRepository) FindPeriodResultByKey(ctx context.Context, key domain.PeriodKey) (*domain.VATPeriodResult, error) {
	query := `SELECT` + periodResultColumns + `
		FROM vat_period_results
		WHERE client_id = $1 AND period_type = $2 AND year = $3 AND period = $4`
	m, err := scanPeriodResult(r.Pool.QueryRow(ctx, query, key.ClientID, string(key.PeriodType), key.Year, key.Period))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query period result by key: %w", err)
	}
	result := mapping.ToDomainPeriodResult(*m)
	return &result, nil
}

// ListPeriodResultsByClient returns a client's records ordered by start date.
func (r *PgxPeriodRepository) ListPeriodResultsByClient(ctx context.Context, clientID string, year *int) ([]domain.VATPeriodResult, error) {
	query := `SELECT` + periodResultColumns + ` FROM vat_period_results WHERE client_id = $1`
	args := []any{clientID}
	if year != nil {
		query += ` AND year = $2`
		args = append(args, *year)
	}
	query += ` ORDER BY start_date ASC, period_type ASC`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list period results: %w", err)
	}
	defer rows.Close()

	var results []domain.VATPeriodResult
	for rows.Next() {
		m, err := scanPeriodResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period result row: %w", err)
		}
		results = append(results, mapping.ToDomainPeriodResult(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading period result rows: %w", err)
	}
	return results, nil
}

// FindLatestLockedBefore returns the most recently locked record for the
// client whose period starts strictly before the given date. Comparing start
// dates keeps the lookup correct across a monthly/quarterly cadence switch.
func (r *PgxPeriodRepository) FindLatestLockedBefore(ctx context.Context, clientID string, before time.Time) (*domain.VATPeriodResult, error) {
	query := `SELECT` + periodResultColumns + `
		FROM vat_period_results
		WHERE client_id = $1 AND is_locked = TRUE AND start_date < $2
		ORDER BY start_date DESC
		LIMIT 1`
	m, err := scanPeriodResult(r.Pool.QueryRow(ctx, query, clientID, before))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query latest locked period: %w", err)
	}
	result := mapping.ToDomainPeriodResult(*m)
	return &result, nil
}

// HasLockedPeriodBefore reports whether any locked record for the client
// starts strictly before the given date.
func (r *PgxPeriodRepository) HasLockedPeriodBefore(ctx context.Context, clientID string, before time.Time) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM vat_period_results WHERE client_id = $1 AND is_locked = TRUE AND start_date < $2)`,
		clientID, before,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check prior locked periods: %w", err)
	}
	return exists, nil
}

// CreatePeriodResult inserts a new record. The unique index on the period
// key turns a concurrent double-create into ErrDuplicate, which the service
// resolves by re-reading.
func (r *PgxPeriodRepository) CreatePeriodResult(ctx context.Context, result domain.VATPeriodResult) error {
	m := mapping.ToModelPeriodResult(result)
	query := `
		INSERT INTO vat_period_results (
			period_result_id, client_id, period_type, year, period, start_date, end_date,
			vat_output, vat_input, previous_credit, credit_source,
			vat_difference, final_result, is_payable, is_credit, credit_to_next,
			is_locked, locked_at, last_calculated_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.Pool.Exec(ctx, query,
		m.PeriodResultID, m.ClientID, m.PeriodType, m.Year, m.Period, m.StartDate, m.EndDate,
		m.VATOutput, m.VATInput, m.PreviousCredit, m.CreditSource,
		m.VATDifference, m.FinalResult, m.IsPayable, m.IsCredit, m.CreditToNext,
		m.IsLocked, m.LockedAt, m.LastCalculatedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: period result for %s", apperrors.ErrDuplicate, result.PeriodKey)
		}
		return fmt.Errorf("failed to insert period result: %w", err)
	}
	return nil
}

// lockRowForUpdate reads the target row under FOR UPDATE inside tx, so the
// caller's read-modify-write serializes with concurrent operations on the
// same period key.
func lockRowForUpdate(ctx context.Context, tx pgx.Tx, periodResultID string) (*models.VATPeriodResult, error) {
	query := `SELECT` + periodResultColumns + ` FROM vat_period_results WHERE period_result_id = $1 FOR UPDATE`
	m, err := scanPeriodResult(tx.QueryRow(ctx, query, periodResultID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock period result row: %w", err)
	}
	return m, nil
}

// UpdateCalculation persists totals, credit and derived fields atomically.
// The stored lock state is re-checked under the row lock: a record locked
// after the service read it stays untouched.
func (r *PgxPeriodRepository) UpdateCalculation(ctx context.Context, result domain.VATPeriodResult) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	current, err := lockRowForUpdate(ctx, tx, result.PeriodResultID)
	if err != nil {
		return err
	}
	if current.IsLocked {
		return fmt.Errorf("%w: %s", apperrors.ErrLocked, result.PeriodKey)
	}

	m := mapping.ToModelPeriodResult(result)
	query := `
		UPDATE vat_period_results SET
			vat_output = $2, vat_input = $3, previous_credit = $4, credit_source = $5,
			vat_difference = $6, final_result = $7, is_payable = $8, is_credit = $9, credit_to_next = $10,
			last_calculated_at = $11, last_updated_at = $12, last_updated_by = $13
		WHERE period_result_id = $1`
	_, err = tx.Exec(ctx, query,
		m.PeriodResultID,
		m.VATOutput, m.VATInput, m.PreviousCredit, m.CreditSource,
		m.VATDifference, m.FinalResult, m.IsPayable, m.IsCredit, m.CreditToNext,
		m.LastCalculatedAt, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update period result calculation: %w", err)
	}

	return r.Commit(ctx, tx)
}

// LockPeriodResult freezes the record.
func (r *PgxPeriodRepository) LockPeriodResult(ctx context.Context, periodResultID string, lockedBy string, lockedAt time.Time) (*domain.VATPeriodResult, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	current, err := lockRowForUpdate(ctx, tx, periodResultID)
	if err != nil {
		return nil, err
	}
	if current.IsLocked {
		return nil, fmt.Errorf("%w: period result %s", apperrors.ErrAlreadyLocked, periodResultID)
	}

	_, err = tx.Exec(ctx,
		`UPDATE vat_period_results SET is_locked = TRUE, locked_at = $2, last_updated_at = $3, last_updated_by = $4 WHERE period_result_id = $1`,
		periodResultID, lockedAt, lockedAt, lockedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to lock period result: %w", err)
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	current.IsLocked = true
	current.LockedAt = &lockedAt
	current.LastUpdatedAt = lockedAt
	current.LastUpdatedBy = lockedBy
	result := mapping.ToDomainPeriodResult(*current)
	return &result, nil
}

// UnlockPeriodResult thaws the record. Refused while a later locked period
// exists for the same client, since that period already carried this one's
// credit_to_next forward. Unlocking an unlocked record is a no-op.
func (r *PgxPeriodRepository) UnlockPeriodResult(ctx context.Context, periodResultID string, unlockedBy string, unlockedAt time.Time) (*domain.VATPeriodResult, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	current, err := lockRowForUpdate(ctx, tx, periodResultID)
	if err != nil {
		return nil, err
	}

	if !current.IsLocked {
		if err := r.Commit(ctx, tx); err != nil {
			return nil, err
		}
		result := mapping.ToDomainPeriodResult(*current)
		return &result, nil
	}

	var laterLocked bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM vat_period_results WHERE client_id = $1 AND is_locked = TRUE AND start_date > $2)`,
		current.ClientID, current.StartDate,
	).Scan(&laterLocked)
	if err != nil {
		return nil, fmt.Errorf("failed to check later locked periods: %w", err)
	}
	if laterLocked {
		return nil, fmt.Errorf("%w: client %s", apperrors.ErrLaterPeriodLocked, current.ClientID)
	}

	_, err = tx.Exec(ctx,
		`UPDATE vat_period_results SET is_locked = FALSE, locked_at = NULL, last_updated_at = $2, last_updated_by = $3 WHERE period_result_id = $1`,
		periodResultID, unlockedAt, unlockedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock period result: %w", err)
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	current.IsLocked = false
	current.LockedAt = nil
	current.LastUpdatedAt = unlockedAt
	current.LastUpdatedBy = unlockedBy
	result := mapping.ToDomainPeriodResult(*current)
	return &result, nil
}
