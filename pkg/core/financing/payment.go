// Package financing computes the level annual debt service of a fixed-rate amortizing
// loan. The payment is computed once per evaluation and reused for every projection year.
package financing

import (
	"math"

	"deal_underwriting/pkg/core/deal"
)

// ComputePayment returns the level annual payment.
//
// FORMULA: Payment = L × r / (1 − (1 + r)^(−n))
//
// Where:
//   - L = loan amount
//   - r = annual interest rate
//   - n = loan term in years
//
// A zero loan returns 0 without touching the formula. A zero rate falls back to
// straight-line repayment L / n. A financed loan with n <= 0 is a validation error.
func ComputePayment(loanAmount, interestRate float64, loanTerm int) (float64, error) {
	terms, err := NewTerms(loanAmount, interestRate, loanTerm)
	if err != nil {
		return 0, err
	}
	return terms.AnnualPayment, nil
}

// NewTerms derives the financing terms of a deal.
func NewTerms(loanAmount, interestRate float64, loanTerm int) (deal.FinancingTerms, error) {
	if loanAmount == 0 {
		return deal.FinancingTerms{Method: deal.PaymentNone}, nil
	}
	if err := deal.ValidateLoan(loanAmount, interestRate, loanTerm); err != nil {
		return deal.FinancingTerms{}, err
	}

	terms := deal.FinancingTerms{
		LoanAmount:   loanAmount,
		InterestRate: interestRate,
		LoanTerm:     loanTerm,
	}

	if interestRate == 0 {
		terms.AnnualPayment = loanAmount / float64(loanTerm)
		terms.Method = deal.PaymentStraightLine
		return terms, nil
	}

	denom := 1 - math.Pow(1+interestRate, -float64(loanTerm))
	if denom == 0 || math.IsNaN(denom) {
		// Only reachable when r is so small that (1+r)^-n rounds to 1.
		return deal.FinancingTerms{}, &deal.ArithmeticError{
			Op:     "annual_payment",
			Detail: "annuity denominator rounds to zero",
		}
	}
	terms.AnnualPayment = loanAmount * interestRate / denom
	terms.Method = deal.PaymentAnnuity
	return terms, nil
}

// ForInputs derives the financing terms from a deal's inputs.
func ForInputs(in deal.Inputs) (deal.FinancingTerms, error) {
	if !in.Financed() {
		return deal.FinancingTerms{Method: deal.PaymentNone}, nil
	}
	return NewTerms(in.LoanAmount, in.InterestRate, in.LoanTerm)
}

// TotalPayments is the sum of every scheduled payment over the full loan term.
func TotalPayments(terms deal.FinancingTerms) float64 {
	if terms.Method == deal.PaymentNone {
		return 0
	}
	return terms.AnnualPayment * float64(terms.LoanTerm)
}

// RemainingBalance returns the principal still owed after paymentsMade level payments.
//
// FORMULA: B_k = L × (1 + r)^k − P × ((1 + r)^k − 1) / r
//
// Straight-line loans reduce by L / n each year. The balance never drops below zero.
func RemainingBalance(terms deal.FinancingTerms, paymentsMade int) float64 {
	if terms.Method == deal.PaymentNone || paymentsMade >= terms.LoanTerm {
		return 0
	}
	if paymentsMade <= 0 {
		return terms.LoanAmount
	}

	var balance float64
	switch terms.Method {
	case deal.PaymentStraightLine:
		balance = terms.LoanAmount - terms.AnnualPayment*float64(paymentsMade)
	default:
		growth := math.Pow(1+terms.InterestRate, float64(paymentsMade))
		balance = terms.LoanAmount*growth - terms.AnnualPayment*(growth-1)/terms.InterestRate
	}

	if balance < 0 {
		return 0
	}
	return balance
}
