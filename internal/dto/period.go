package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/taxdesk/vat_recon_app/internal/core/domain"
)

// CalculatePeriodRequest defines the payload for a period calculation.
// Recalculate asks the engine to refresh the totals from the VAT aggregator;
// when false an existing record is recomputed from its stored totals.
type CalculatePeriodRequest struct {
	PeriodType  string `json:"periodType" binding:"required,oneof=MONTHLY QUARTERLY"`
	Year        int    `json:"year" binding:"required,gte=2000,lte=2100"`
	Period      int    `json:"period" binding:"required,gte=1,lte=12"`
	Recalculate bool   `json:"recalculate"`
}

// SetCreditRequest defines the payload for a manual credit override.
// Force bypasses the prior-locked-period guard; the sign check stays.
type SetCreditRequest struct {
	PreviousCredit decimal.Decimal `json:"previousCredit" binding:"required"`
	Force          bool            `json:"force"`
}

// ListPeriodResultsParams defines query parameters for listing a client's
// period results.
type ListPeriodResultsParams struct {
	Year *int `form:"year" binding:"omitempty,gte=2000,lte=2100"`
}

// ClientSummary is the registry slice attached to period responses.
type ClientSummary struct {
	ClientID    string `json:"clientID"`
	DisplayName string `json:"displayName"`
	TaxID       string `json:"taxID"`
}

// PeriodResultResponse defines the data returned for a VAT period result.
type PeriodResultResponse struct {
	PeriodResultID string `json:"periodResultID"`
	ClientID       string `json:"clientID"`
	PeriodType     string `json:"periodType"`
	Year           int    `json:"year"`
	Period         int    `json:"period"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`

	VATOutput      decimal.Decimal `json:"vatOutput"`
	VATInput       decimal.Decimal `json:"vatInput"`
	PreviousCredit decimal.Decimal `json:"previousCredit"`
	CreditSource   string          `json:"creditSource"`

	VATDifference decimal.Decimal `json:"vatDifference"`
	FinalResult   decimal.Decimal `json:"finalResult"`
	IsPayable     bool            `json:"isPayable"`
	IsCredit      bool            `json:"isCredit"`
	CreditToNext  decimal.Decimal `json:"creditToNext"`

	IsLocked         bool       `json:"isLocked"`
	LockedAt         *time.Time `json:"lockedAt,omitempty"`
	LastCalculatedAt time.Time  `json:"lastCalculatedAt"`

	// Created reports whether this call created the record.
	Created bool `json:"created"`

	Client *ClientSummary `json:"client,omitempty"`
}

// ListPeriodResultsResponse wraps a client's period results.
type ListPeriodResultsResponse struct {
	PeriodResults []PeriodResultResponse `json:"periodResults"`
}

const dateLayout = "2006-01-02"

// ToPeriodResultResponse converts a domain.VATPeriodResult to its response
// DTO, optionally enriched with registry data.
func ToPeriodResultResponse(r *domain.VATPeriodResult, client *domain.Client) PeriodResultResponse {
	resp := PeriodResultResponse{
		PeriodResultID:   r.PeriodResultID,
		ClientID:         r.ClientID,
		PeriodType:       string(r.PeriodType),
		Year:             r.Year,
		Period:           r.Period,
		StartDate:        r.StartDate.Format(dateLayout),
		EndDate:          r.EndDate.Format(dateLayout),
		VATOutput:        r.VATOutput,
		VATInput:         r.VATInput,
		PreviousCredit:   r.PreviousCredit,
		CreditSource:     string(r.CreditSource),
		VATDifference:    r.VATDifference,
		FinalResult:      r.FinalResult,
		IsPayable:        r.IsPayable,
		IsCredit:         r.IsCredit,
		CreditToNext:     r.CreditToNext,
		IsLocked:         r.IsLocked,
		LockedAt:         r.LockedAt,
		LastCalculatedAt: r.LastCalculatedAt,
		Created:          r.Created,
	}
	if client != nil {
		resp.Client = &ClientSummary{
			ClientID:    client.ClientID,
			DisplayName: client.DisplayName,
			TaxID:       client.TaxID,
		}
	}
	return resp
}

// ToListPeriodResultsResponse converts a slice of domain results.
func ToListPeriodResultsResponse(results []domain.VATPeriodResult, client *domain.Client) ListPeriodResultsResponse {
	responses := make([]PeriodResultResponse, len(results))
	for i := range results {
		responses[i] = ToPeriodResultResponse(&results[i], client)
	}
	return ListPeriodResultsResponse{PeriodResults: responses}
}
