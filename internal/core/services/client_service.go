package services

import (
	"context"
	"fmt"

	portsrepo "github.com/taxdesk/vat_recon_app/internal/core/ports/repositories"
	portssvc "github.com/taxdesk/vat_recon_app/internal/core/ports/services"

	"github.com/taxdesk/vat_recon_app/internal/core/domain"
)

// clientService reads the client registry slice kept for enrichment.
type clientService struct {
	clientRepo portsrepo.ClientRepositoryFacade
}

// NewClientService creates a new ClientService.
func NewClientService(clientRepo portsrepo.ClientRepositoryFacade) portssvc.ClientSvcFacade {
	return &clientService{clientRepo: clientRepo}
}

var _ portssvc.ClientSvcFacade = (*clientService)(nil)

// GetClientByID implements portssvc.ClientSvcFacade.
func (s *clientService) GetClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to find client %s: %w", clientID, err)
	}
	return client, nil
}

// ListClients implements portssvc.ClientSvcFacade.
func (s *clientService) ListClients(ctx context.Context, limit int, offset int) ([]domain.Client, error) {
	if limit <= 0 {
		limit = 20
	}
	clients, err := s.clientRepo.ListClients(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}
