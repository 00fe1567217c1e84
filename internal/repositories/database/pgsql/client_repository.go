package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taxdesk/vat_recon_app/internal/apperrors"
	"github.com/taxdesk/vat_recon_app/internal/core/domain"
	portsrepo "github.com/taxdesk/vat_recon_app/internal/core/ports/repositories"
	"github.com/taxdesk/vat_recon_app/internal/models"
	"github.com/taxdesk/vat_recon_app/internal/utils/mapping"
)

type PgxClientRepository struct {
	BaseRepository
}

// NewPgxClientRepository creates a new read-only repository over the clients
// table maintained by the console backend.
func NewPgxClientRepository(pool *pgxpool.Pool) portsrepo.ClientRepositoryFacade {
	return &PgxClientRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ClientRepositoryFacade = (*PgxClientRepository)(nil)

const clientColumns = `client_id, display_name, tax_id, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanClient(row rowScanner) (*models.Client, error) {
	var m models.Client
	err := row.Scan(
		&m.ClientID, &m.DisplayName, &m.TaxID, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindClientByID returns a client by primary key.
func (r *PgxClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = $1`
	m, err := scanClient(r.Pool.QueryRow(ctx, query, clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query client: %w", err)
	}
	client := mapping.ToDomainClient(*m)
	return &client, nil
}

// ListClients returns active clients ordered by display name.
func (r *PgxClientRepository) ListClients(ctx context.Context, limit int, offset int) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE is_active = TRUE ORDER BY display_name ASC LIMIT $1 OFFSET $2`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		m, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}
		clients = append(clients, mapping.ToDomainClient(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading client rows: %w", err)
	}
	return clients, nil
}
