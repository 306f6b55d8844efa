// Package projection builds the holding-period series of escalated rent, expenses and
// Net Operating Income, and layers debt service on top of it.
package projection

import (
	"deal_underwriting/pkg/core/deal"
)

// Project produces one YearlyCashFlow per lease year.
//
// Each year applies growth first and records second:
//
//	rent_t     = rent_{t-1} × (1 + rent growth)
//	expenses_t = expenses_{t-1} × (1 + expense growth)
//	NOI_t      = rent_t − expenses_t
//
// so year 1 already carries one escalation step past the stated base rent. Exit value
// and cap rate are keyed off the final row, so this ordering must not change.
//
// The returned rows carry no debt service; see ApplyDebtService.
func Project(in deal.Inputs) ([]deal.YearlyCashFlow, error) {
	if err := deal.ValidateLeaseTerm(in.LeaseTerm); err != nil {
		return nil, err
	}

	rent := in.BaseRent()
	expenses := in.AnnualExpenses
	series := make([]deal.YearlyCashFlow, 0, in.LeaseTerm)

	for year := 1; year <= in.LeaseTerm; year++ {
		rent = Escalate(rent, in.AnnualRentGrowth)
		expenses = Escalate(expenses, in.ExpenseGrowthRate)
		noi := rent - expenses

		series = append(series, deal.YearlyCashFlow{
			Year:        year,
			Rent:        rent,
			Expenses:    expenses,
			NOI:         noi,
			NetCashFlow: noi,
		})
	}

	return series, nil
}

// Escalate applies one year of compound growth.
//
// FORMULA: Amount_t = Amount_{t-1} × (1 + Growth)
func Escalate(amount, growthRate float64) float64 {
	return amount * (1 + growthRate)
}

// ApplyDebtService returns a copy of series with the constant annual payment deducted
// from every year. A zero payment leaves NetCashFlow equal to NOI.
func ApplyDebtService(series []deal.YearlyCashFlow, payment float64) []deal.YearlyCashFlow {
	out := make([]deal.YearlyCashFlow, len(series))
	for i, row := range series {
		row.DebtService = payment
		row.NetCashFlow = row.NOI - payment
		out[i] = row
	}
	return out
}

// FinalYear returns the last row of a projection.
func FinalYear(series []deal.YearlyCashFlow) (deal.YearlyCashFlow, error) {
	if len(series) == 0 {
		return deal.YearlyCashFlow{}, &deal.ArithmeticError{
			Op:     "final_year",
			Detail: "empty cash flow series",
		}
	}
	return series[len(series)-1], nil
}
