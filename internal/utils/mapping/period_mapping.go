package mapping

import (
	"github.com/taxdesk/vat_recon_app/internal/core/domain"
	"github.com/taxdesk/vat_recon_app/internal/models"
)

// ToModelPeriodResult converts a domain VATPeriodResult to a model VATPeriodResult
func ToModelPeriodResult(d domain.VATPeriodResult) models.VATPeriodResult {
	return models.VATPeriodResult{
		PeriodResultID:   d.PeriodResultID,
		ClientID:         d.ClientID,
		PeriodType:       models.PeriodType(d.PeriodType),
		Year:             d.Year,
		Period:           d.Period,
		StartDate:        d.StartDate,
		EndDate:          d.EndDate,
		VATOutput:        d.VATOutput,
		VATInput:         d.VATInput,
		PreviousCredit:   d.PreviousCredit,
		CreditSource:     models.CreditSource(d.CreditSource),
		VATDifference:    d.VATDifference,
		FinalResult:      d.FinalResult,
		IsPayable:        d.IsPayable,
		IsCredit:         d.IsCredit,
		CreditToNext:     d.CreditToNext,
		IsLocked:         d.IsLocked,
		LockedAt:         d.LockedAt,
		LastCalculatedAt: d.LastCalculatedAt,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPeriodResult converts a model VATPeriodResult to a domain VATPeriodResult
func ToDomainPeriodResult(m models.VATPeriodResult) domain.VATPeriodResult {
	return domain.VATPeriodResult{
		PeriodResultID: m.PeriodResultID,
		PeriodKey: domain.PeriodKey{
			ClientID:   m.ClientID,
			PeriodType: domain.PeriodType(m.PeriodType),
			Year:       m.Year,
			Period:     m.Period,
		},
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		VATOutput:        m.VATOutput,
		VATInput:         m.VATInput,
		PreviousCredit:   m.PreviousCredit,
		CreditSource:     domain.CreditSource(m.CreditSource),
		VATDifference:    m.VATDifference,
		FinalResult:      m.FinalResult,
		IsPayable:        m.IsPayable,
		IsCredit:         m.IsCredit,
		CreditToNext:     m.CreditToNext,
		IsLocked:         m.IsLocked,
		LockedAt:         m.LockedAt,
		LastCalculatedAt: m.LastCalculatedAt,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}
