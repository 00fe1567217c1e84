package repositories

import (
	"context"

	"github.com/taxdesk/vat_recon_app/internal/core/domain"
)

// ClientRepositoryFacade provides read access to the client registry slice
// this engine keeps for response enrichment.
type ClientRepositoryFacade interface {
	// FindClientByID returns a client or apperrors.ErrNotFound.
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// ListClients returns all active clients ordered by display name.
	ListClients(ctx context.Context, limit int, offset int) ([]domain.Client, error)
}
