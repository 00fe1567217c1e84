package services

import (
	portsrepo "github.com/taxdesk/vat_recon_app/internal/core/ports/repositories"
	portssvc "github.com/taxdesk/vat_recon_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies. The aggregator adapter is constructed by the
// caller (it needs config) and injected here.
func NewServiceContainer(repos portsrepo.RepositoryProvider, aggregator portssvc.VATAggregatorSvcFacade) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Client service first since the period ledger depends on it.
	container.Client = NewClientService(repos.ClientRepo)
	container.Aggregator = aggregator
	container.Period = NewPeriodService(repos.PeriodRepo, container.Client, aggregator)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.PeriodSvcFacade = (*periodService)(nil)
	_ portssvc.ClientSvcFacade = (*clientService)(nil)
)
