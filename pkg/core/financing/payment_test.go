package financing

import (
	"errors"
	"math"
	"testing"

	"deal_underwriting/pkg/core/deal"
)

func TestComputePayment_Annuity(t *testing.T) {
	payment, err := ComputePayment(1_000_000, 0.05, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Standard 20-year annual annuity at 5%: 80,242.59
	if math.Abs(payment-80242.59) > 0.01 {
		t.Errorf("expected payment ~80242.59, got %.4f", payment)
	}
}

func TestComputePayment_ZeroLoanSkipsFormula(t *testing.T) {
	// Interest and term are deliberately nonsense; the formula must not run.
	payment, err := ComputePayment(0, math.NaN(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment != 0 {
		t.Errorf("expected 0 payment, got %f", payment)
	}
}

func TestComputePayment_ZeroRateStraightLine(t *testing.T) {
	terms, err := NewTerms(500_000, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if terms.Method != deal.PaymentStraightLine {
		t.Errorf("expected straight_line method, got %s", terms.Method)
	}
	if terms.AnnualPayment != 50_000 {
		t.Errorf("expected 50000, got %f", terms.AnnualPayment)
	}
}

func TestComputePayment_ZeroTermRejected(t *testing.T) {
	_, err := ComputePayment(100_000, 0.05, 0)
	var verr *deal.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "loan_term" {
		t.Errorf("expected loan_term field, got %s", verr.Field)
	}
}

func TestTotalPayments(t *testing.T) {
	terms, _ := NewTerms(1_000_000, 0.05, 20)
	total := TotalPayments(terms)
	if math.Abs(total-terms.AnnualPayment*20) > 1e-9 {
		t.Errorf("expected payment x 20, got %f", total)
	}

	if TotalPayments(deal.FinancingTerms{Method: deal.PaymentNone}) != 0 {
		t.Error("unlevered total payments should be 0")
	}
}

func TestRemainingBalance(t *testing.T) {
	terms, _ := NewTerms(1_000_000, 0.05, 20)

	if got := RemainingBalance(terms, 0); got != 1_000_000 {
		t.Errorf("balance before any payment should equal principal, got %f", got)
	}
	if got := RemainingBalance(terms, 20); got != 0 {
		t.Errorf("balance at maturity should be 0, got %f", got)
	}

	// After 10 of 20 payments the balance equals the PV of the 10 remaining payments.
	want := terms.AnnualPayment * (1 - math.Pow(1.05, -10)) / 0.05
	got := RemainingBalance(terms, 10)
	if math.Abs(got-want) > 0.01 {
		t.Errorf("expected balance %.2f, got %.2f", want, got)
	}

	straight, _ := NewTerms(100_000, 0, 4)
	if got := RemainingBalance(straight, 1); got != 75_000 {
		t.Errorf("straight-line balance after 1 payment: expected 75000, got %f", got)
	}
}
