package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/taxdesk/vat_recon_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the pgx-backed repositories over a shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		PeriodRepo: NewPgxPeriodRepository(pool),
		ClientRepo: NewPgxClientRepository(pool),
	}
}
