// Package returns derives profitability and investor metrics from a financed projection
// and its exit value. Every metric is a direct formula; nothing here iterates except
// the optional IRR solve.
package returns

import (
	"errors"

	"deal_underwriting/pkg/core/calc"
	"deal_underwriting/pkg/core/deal"
	"deal_underwriting/pkg/core/financing"
)

// ComputeReturns assembles the ReturnMetrics of one deal.
//
//	cap_rate            = NOI_final / purchase_price
//	total_debt_payments = payment × loan_term (0 unlevered)
//	total_profit        = exit_value − purchase_price − total_debt_payments
//	roi                 = total_profit / purchase_price × 100
//	cash_on_cash        = total_profit / loan_amount × 100 (financed only)
//	coc_annualized      = cash_on_cash / lease_term
//	approximate_irr     = coc_annualized × policy.IRRProxyFactor
//
// series must already carry debt service (see projection.ApplyDebtService).
func ComputeReturns(in deal.Inputs, series []deal.YearlyCashFlow, terms deal.FinancingTerms, exitValue float64, policy WaterfallPolicy) (*deal.ReturnMetrics, error) {
	if len(series) == 0 {
		return nil, &deal.ArithmeticError{Op: "returns", Detail: "empty cash flow series"}
	}
	if len(series) != in.LeaseTerm {
		return nil, &deal.ArithmeticError{Op: "returns", Detail: "cash flow series length differs from lease_term"}
	}
	if err := deal.RequirePositive("purchase_price", in.PurchasePrice); err != nil {
		return nil, err
	}

	finalNOI := series[len(series)-1].NOI
	totalDebt := financing.TotalPayments(terms)
	totalProfit := exitValue - in.PurchasePrice - totalDebt

	cashOnCash := 0.0
	if in.Financed() {
		cashOnCash = totalProfit / in.LoanAmount * 100
	}
	cocAnnualized := cashOnCash / float64(in.LeaseTerm)

	m := &deal.ReturnMetrics{
		FinalYearNOI:      finalNOI,
		CapRate:           finalNOI / in.PurchasePrice,
		ExitValue:         exitValue,
		TotalDebtPayments: totalDebt,
		TotalProfit:       totalProfit,
		ROI:               totalProfit / in.PurchasePrice * 100,
		CashOnCashReturn:  cashOnCash,
		CoCAnnualized:     cocAnnualized,

		EquityNeeded:   in.PurchasePrice * policy.EquityShare,
		LPPref:         totalProfit * policy.PreferredShare,
		LPSplit:        totalProfit * policy.SplitShare,
		TotalLPReturns: totalProfit * policy.TotalLPShare(),

		ApproximateIRR:           cocAnnualized * policy.IRRProxyFactor,
		EstimatedTimeframeMonths: in.LeaseTerm * 12,

		Financing: terms,
		CashFlows: append([]deal.YearlyCashFlow(nil), series...),
	}

	irr, err := SolvedIRR(in, series, terms, exitValue)
	switch {
	case err == nil:
		pct := irr * 100
		m.SolvedIRR = &pct
	case errors.Is(err, calc.ErrIRRUndefined):
		// Left nil: e.g. fully financed deals have no equity outlay to return.
	default:
		return nil, err
	}

	return m, nil
}

// EquityCashFlows is the investor's view of the deal: the equity check at time zero,
// each year's net cash flow, and the sale proceeds net of the outstanding loan in the
// final year.
func EquityCashFlows(in deal.Inputs, series []deal.YearlyCashFlow, terms deal.FinancingTerms, exitValue float64) []float64 {
	flows := make([]float64, 0, len(series)+1)
	flows = append(flows, -(in.PurchasePrice - terms.LoanAmount))
	for _, row := range series {
		flows = append(flows, row.NetCashFlow)
	}
	last := len(flows) - 1
	flows[last] += exitValue - financing.RemainingBalance(terms, len(series))
	return flows
}

// SolvedIRR returns the annual rate (fraction) that zeroes the NPV of EquityCashFlows.
func SolvedIRR(in deal.Inputs, series []deal.YearlyCashFlow, terms deal.FinancingTerms, exitValue float64) (float64, error) {
	if in.PurchasePrice-terms.LoanAmount <= 0 {
		return 0, calc.ErrIRRUndefined
	}
	return calc.IRR(EquityCashFlows(in, series, terms, exitValue))
}
