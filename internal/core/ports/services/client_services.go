package services

import (
	"context"

	"github.com/taxdesk/vat_recon_app/internal/core/domain"
)

// ClientSvcFacade exposes the client registry for response enrichment and
// existence checks. Client CRUD lives in the console backend, not here.
type ClientSvcFacade interface {
	// GetClientByID returns a client or apperrors.ErrNotFound.
	GetClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// ListClients returns active clients.
	ListClients(ctx context.Context, limit int, offset int) ([]domain.Client, error)
}
