package valuation

import (
	"math"

	"deal_underwriting/pkg/core/deal"
	"deal_underwriting/pkg/core/projection"
)

// ComputeExitValue capitalizes terminal-year NOI into a sale price.
//
// FORMULA: Exit Value = NOI_final / Exit Cap Rate
//
// A negative NOI yields a negative exit value; that is a valid (bad) outcome.
func ComputeExitValue(finalYearNOI, exitCapRate float64) (float64, error) {
	if err := deal.RequirePositive("exit_cap_rate", exitCapRate); err != nil {
		return 0, err
	}

	value := finalYearNOI / exitCapRate
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &deal.ArithmeticError{Op: "exit_value", Detail: "capitalized NOI is not finite"}
	}
	return value, nil
}

// ExitFromSeries capitalizes the last row of a projection.
func ExitFromSeries(series []deal.YearlyCashFlow, exitCapRate float64) (float64, error) {
	final, err := projection.FinalYear(series)
	if err != nil {
		return 0, err
	}
	return ComputeExitValue(final.NOI, exitCapRate)
}

// CapRate is the going-in yield of an asset.
//
// FORMULA: Cap Rate = NOI / Price
func CapRate(noi, price float64) (float64, error) {
	if err := deal.RequirePositive("purchase_price", price); err != nil {
		return 0, err
	}
	return noi / price, nil
}
