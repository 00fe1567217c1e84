package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxdesk/vat_recon_app/internal/core/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name           string
		vatOutput      string
		vatInput       string
		previousCredit string
		wantDifference string
		wantFinal      string
		wantPayable    bool
		wantCreditNext string
	}{
		{
			name:           "payable period without carried credit",
			vatOutput:      "1000.00",
			vatInput:       "400.00",
			previousCredit: "0",
			wantDifference: "600.00",
			wantFinal:      "600.00",
			wantPayable:    true,
			wantCreditNext: "0.00",
		},
		{
			name:           "credit period with carried credit",
			vatOutput:      "200.00",
			vatInput:       "500.00",
			previousCredit: "50.00",
			wantDifference: "-300.00",
			wantFinal:      "-350.00",
			wantPayable:    false,
			wantCreditNext: "350.00",
		},
		{
			name:           "carried credit flips a payable period into credit",
			vatOutput:      "500.00",
			vatInput:       "100.00",
			previousCredit: "700.00",
			wantDifference: "400.00",
			wantFinal:      "-300.00",
			wantPayable:    false,
			wantCreditNext: "300.00",
		},
		{
			name:           "exact zero counts as credit, not payable",
			vatOutput:      "300.00",
			vatInput:       "100.00",
			previousCredit: "200.00",
			wantDifference: "200.00",
			wantFinal:      "0.00",
			wantPayable:    false,
			wantCreditNext: "0.00",
		},
		{
			name:           "all zero",
			vatOutput:      "0",
			vatInput:       "0",
			previousCredit: "0",
			wantDifference: "0.00",
			wantFinal:      "0.00",
			wantPayable:    false,
			wantCreditNext: "0.00",
		},
		{
			name:           "sub-cent precision is truncated once at output",
			vatOutput:      "10.005",
			vatInput:       "0.001",
			previousCredit: "0",
			wantDifference: "10.00",
			wantFinal:      "10.00",
			wantPayable:    true,
			wantCreditNext: "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := domain.Reconcile(dec(tt.vatOutput), dec(tt.vatInput), dec(tt.previousCredit))

			assert.True(t, dec(tt.wantDifference).Equal(rec.VATDifference), "vatDifference = %s", rec.VATDifference)
			assert.True(t, dec(tt.wantFinal).Equal(rec.FinalResult), "finalResult = %s", rec.FinalResult)
			assert.Equal(t, tt.wantPayable, rec.IsPayable)
			assert.Equal(t, !tt.wantPayable, rec.IsCredit)
			assert.True(t, dec(tt.wantCreditNext).Equal(rec.CreditToNext), "creditToNext = %s", rec.CreditToNext)
		})
	}
}

func TestReconcile_AdditiveProperty(t *testing.T) {
	// finalResult must always equal vatOutput - vatInput - previousCredit for
	// two-decimal inputs, with payable/credit derived from its sign alone.
	amounts := []string{"0", "0.01", "1.00", "99.99", "120.00", "350.00", "1000.00"}
	for _, out := range amounts {
		for _, in := range amounts {
			for _, credit := range amounts {
				rec := domain.Reconcile(dec(out), dec(in), dec(credit))

				expected := dec(out).Sub(dec(in)).Sub(dec(credit))
				require.True(t, expected.Equal(rec.FinalResult),
					"out=%s in=%s credit=%s: finalResult = %s", out, in, credit, rec.FinalResult)
				require.Equal(t, expected.IsPositive(), rec.IsPayable)
				require.NotEqual(t, rec.IsPayable, rec.IsCredit)
				if rec.IsPayable {
					require.True(t, rec.CreditToNext.IsZero())
				} else {
					require.True(t, expected.Neg().Equal(rec.CreditToNext))
				}
			}
		}
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	first := domain.Reconcile(dec("812.37"), dec("204.18"), dec("120.00"))
	second := domain.Reconcile(dec("812.37"), dec("204.18"), dec("120.00"))

	assert.Equal(t, first, second)
}
