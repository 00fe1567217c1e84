package mapping

import (
	"github.com/taxdesk/vat_recon_app/internal/core/domain"
	"github.com/taxdesk/vat_recon_app/internal/models"
)

// ToDomainClient converts a model Client to a domain Client
func ToDomainClient(m models.Client) domain.Client {
	return domain.Client{
		ClientID:    m.ClientID,
		DisplayName: m.DisplayName,
		TaxID:       m.TaxID,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
