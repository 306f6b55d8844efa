package returns

import (
	"math"

	"deal_underwriting/pkg/core/calc"
	"deal_underwriting/pkg/core/deal"
	"deal_underwriting/pkg/core/financing"
)

// BidResult is the ability-to-pay answer for one deal at one target IRR.
type BidResult struct {
	TargetIRR        float64 `json:"target_irr"`
	MaxPurchasePrice float64 `json:"max_purchase_price"`
	EquityCheck      float64 `json:"equity_check"`
	DebtRaised       float64 `json:"debt_raised"`
	ExitEquityValue  float64 `json:"exit_equity_value"`
	// Headroom is MaxPurchasePrice minus the asking price. Negative means the deal
	// misses the target at the asking price.
	Headroom float64 `json:"headroom"`
}

// MaxPurchasePrice solves backwards for the highest price at which the equity still
// earns targetIRR.
//
// FORMULA: Equity = Σ [ CF_t / (1 + IRR)^t ], t = 1..n
//
//	MaxPrice = Equity + Loan
//
// CF_t are the yearly net cash flows, with exit value less the remaining loan balance
// added in the final year. None of them depend on the price, so the solve is closed form.
func MaxPurchasePrice(in deal.Inputs, series []deal.YearlyCashFlow, terms deal.FinancingTerms, exitValue, targetIRR float64) (BidResult, error) {
	if math.IsNaN(targetIRR) || math.IsInf(targetIRR, 0) || targetIRR <= -1 {
		return BidResult{}, &deal.ValidationError{Field: "target_irr", Constraint: "a finite number > -1", Value: targetIRR}
	}
	if len(series) == 0 {
		return BidResult{}, &deal.ArithmeticError{Op: "max_purchase_price", Detail: "empty cash flow series"}
	}

	flows := EquityCashFlows(in, series, terms, exitValue)[1:]
	equity := calc.PresentValueOfCashFlows(flows, targetIRR)
	maxPrice := equity + terms.LoanAmount

	return BidResult{
		TargetIRR:        targetIRR,
		MaxPurchasePrice: maxPrice,
		EquityCheck:      equity,
		DebtRaised:       terms.LoanAmount,
		ExitEquityValue:  exitValue - financing.RemainingBalance(terms, len(series)),
		Headroom:         maxPrice - in.PurchasePrice,
	}, nil
}
