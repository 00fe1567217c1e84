package domain

import "github.com/shopspring/decimal"

// Reconciliation holds the derived fields of one VAT period calculation.
type Reconciliation struct {
	VATDifference decimal.Decimal `json:"vatDifference"`
	FinalResult   decimal.Decimal `json:"finalResult"`
	IsPayable     bool            `json:"isPayable"`
	IsCredit      bool            `json:"isCredit"`
	CreditToNext  decimal.Decimal `json:"creditToNext"`
}

// Reconcile computes the net VAT position for a period.
//
//	vatDifference = vatOutput - vatInput
//	finalResult   = vatDifference - previousCredit
//	creditToNext  = max(0, -finalResult)
//
// A finalResult of exactly zero counts as credit (no liability), not payable.
// All inputs must be non-negative; the caller rejects invalid amounts before
// invoking this function. Results are truncated to two fractional digits
// once, here, so repeated calculations over the same inputs are bit-identical.
func Reconcile(vatOutput, vatInput, previousCredit decimal.Decimal) Reconciliation {
	difference := vatOutput.Sub(vatInput).Truncate(2)
	finalResult := difference.Sub(previousCredit).Truncate(2)

	isPayable := finalResult.IsPositive()

	creditToNext := decimal.Zero.Truncate(2)
	if !isPayable {
		creditToNext = finalResult.Neg().Truncate(2)
	}

	return Reconciliation{
		VATDifference: difference,
		FinalResult:   finalResult,
		IsPayable:     isPayable,
		IsCredit:      !isPayable,
		CreditToNext:  creditToNext,
	}
}

// VATTotals is the pair of aggregate amounts supplied by the external VAT
// aggregator for one period's date range.
type VATTotals struct {
	OutputVAT decimal.Decimal `json:"outputVat"`
	InputVAT  decimal.Decimal `json:"inputVat"`
}
