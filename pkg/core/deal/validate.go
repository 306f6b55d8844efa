package deal

import (
	"math"
)

// Validate checks every precondition of an evaluation and returns the first violation
// as a *ValidationError. Financing fields are only inspected when LoanAmount > 0.
func Validate(in Inputs) error {
	positives := []struct {
		field string
		value float64
	}{
		{"purchase_price", in.PurchasePrice},
		{"rent_per_sf", in.RentPerSF},
		{"property_size", in.PropertySize},
		{"annual_expenses", in.AnnualExpenses},
	}
	for _, p := range positives {
		if err := RequirePositive(p.field, p.value); err != nil {
			return err
		}
	}

	// Growth rates may be zero or negative, they only have to be real numbers.
	if err := RequireFinite("expense_growth_rate", in.ExpenseGrowthRate); err != nil {
		return err
	}
	if err := RequireFinite("annual_rent_growth", in.AnnualRentGrowth); err != nil {
		return err
	}

	if err := ValidateLeaseTerm(in.LeaseTerm); err != nil {
		return err
	}
	if err := RequirePositive("exit_cap_rate", in.ExitCapRate); err != nil {
		return err
	}

	if err := RequireFinite("loan_amount", in.LoanAmount); err != nil {
		return err
	}
	if in.LoanAmount < 0 {
		return invalid("loan_amount", ">= 0", in.LoanAmount)
	}
	if !in.Financed() {
		return nil
	}
	return ValidateLoan(in.LoanAmount, in.InterestRate, in.LoanTerm)
}

// ValidateLeaseTerm rejects holding periods that leave the final year undefined.
func ValidateLeaseTerm(leaseTerm int) error {
	if leaseTerm < 1 {
		return invalid("lease_term", ">= 1", leaseTerm)
	}
	if leaseTerm > MaxLeaseTerm {
		return invalid("lease_term", "<= 100", leaseTerm)
	}
	return nil
}

// ValidateLoan checks the terms of a financed deal.
func ValidateLoan(loanAmount, interestRate float64, loanTerm int) error {
	if err := RequirePositive("loan_amount", loanAmount); err != nil {
		return err
	}
	if err := RequireFinite("interest_rate", interestRate); err != nil {
		return err
	}
	if interestRate < 0 {
		return invalid("interest_rate", ">= 0", interestRate)
	}
	if loanTerm <= 0 {
		return invalid("loan_term", "> 0 when loan_amount > 0", loanTerm)
	}
	return nil
}

// RequirePositive fails unless v is a finite number strictly above zero.
func RequirePositive(field string, v float64) error {
	if err := RequireFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return invalid(field, "> 0", v)
	}
	return nil
}

// RequireFinite fails on NaN and infinities.
func RequireFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "a finite number", v)
	}
	return nil
}
