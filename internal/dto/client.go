package dto

import (
	"time"

	"github.com/taxdesk/vat_recon_app/internal/core/domain"
)

// ClientResponse defines the data returned for a registry client.
type ClientResponse struct {
	ClientID    string    `json:"clientID"`
	DisplayName string    `json:"displayName"`
	TaxID       string    `json:"taxID"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListClientsParams defines query parameters for listing clients.
type ListClientsParams struct {
	Limit  int `form:"limit" binding:"omitempty,gte=1,lte=100"`
	Offset int `form:"offset" binding:"omitempty,gte=0"`
}

// ListClientsResponse wraps the registry listing.
type ListClientsResponse struct {
	Clients []ClientResponse `json:"clients"`
}

// ToClientResponse converts a domain.Client to its response DTO.
func ToClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ClientID:    c.ClientID,
		DisplayName: c.DisplayName,
		TaxID:       c.TaxID,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
	}
}

// ToListClientsResponse converts a slice of domain clients.
func ToListClientsResponse(clients []domain.Client) ListClientsResponse {
	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i])
	}
	return ListClientsResponse{Clients: responses}
}
