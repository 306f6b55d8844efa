package underwriting

import (
	"fmt"
	"math"

	"deal_underwriting/pkg/core/deal"
)

// reconcileTolerance is one cent.
const reconcileTolerance = 0.01

// Reconciliation holds the status of the metric integrity checks.
type Reconciliation struct {
	IsBalanced bool     `json:"is_balanced"`
	MaxGap     float64  `json:"max_gap"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Reconcile re-derives the accounting identities a finished evaluation must satisfy:
//
//	NOI_t              = Rent_t − Expenses_t
//	NetCashFlow_t      = NOI_t − DebtService_t
//	FinalYearNOI       = NOI_n
//	TotalProfit        = ExitValue − PurchasePrice − TotalDebtPayments
//	TotalLPReturns     = LPPref + LPSplit
func Reconcile(in deal.Inputs, m *deal.ReturnMetrics) Reconciliation {
	r := Reconciliation{IsBalanced: true}
	check := func(label string, got, want float64) {
		gap := got - want
		if math.Abs(gap) > math.Abs(r.MaxGap) {
			r.MaxGap = gap
		}
		if math.Abs(gap) >= reconcileTolerance || math.IsNaN(gap) {
			r.IsBalanced = false
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s out of balance by %.2f", label, gap))
		}
	}

	for _, row := range m.CashFlows {
		check(fmt.Sprintf("year %d NOI", row.Year), row.NOI, row.Rent-row.Expenses)
		check(fmt.Sprintf("year %d net cash flow", row.Year), row.NetCashFlow, row.NOI-row.DebtService)
	}
	if n := len(m.CashFlows); n > 0 {
		check("final-year NOI", m.FinalYearNOI, m.CashFlows[n-1].NOI)
	} else {
		r.IsBalanced = false
		r.Warnings = append(r.Warnings, "no cash flow rows")
	}
	check("total profit", m.TotalProfit, m.ExitValue-in.PurchasePrice-m.TotalDebtPayments)
	check("LP returns", m.TotalLPReturns, m.LPPref+m.LPSplit)

	return r
}
