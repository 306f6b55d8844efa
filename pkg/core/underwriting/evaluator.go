// Package underwriting orchestrates a deal evaluation: validate, project, finance,
// capitalize the exit and derive returns. An Evaluator holds only immutable policy and
// is safe for concurrent use.
package underwriting

import (
	"fmt"
	"math"

	"deal_underwriting/pkg/core/deal"
	"deal_underwriting/pkg/core/financing"
	"deal_underwriting/pkg/core/projection"
	"deal_underwriting/pkg/core/returns"
	"deal_underwriting/pkg/core/valuation"
)

// Evaluator runs the evaluation pipeline under one waterfall policy.
type Evaluator struct {
	policy returns.WaterfallPolicy
}

// NewEvaluator creates an evaluator. The policy is validated once here.
func NewEvaluator(policy returns.WaterfallPolicy) (*Evaluator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{policy: policy}, nil
}

// Default uses the house waterfall terms.
func Default() *Evaluator {
	return &Evaluator{policy: returns.DefaultPolicy()}
}

// Policy returns the waterfall terms in effect.
func (e *Evaluator) Policy() returns.WaterfallPolicy {
	return e.policy
}

// Evaluate runs one deal end to end. Either every metric is produced or an error is
// returned: *deal.ValidationError for bad inputs, *deal.ArithmeticError when an
// intermediate is undefined despite validation.
func (e *Evaluator) Evaluate(in deal.Inputs) (*deal.ReturnMetrics, error) {
	p, err := e.prepare(in)
	if err != nil {
		return nil, err
	}

	// 4. Returns
	metrics, err := returns.ComputeReturns(in, p.series, p.terms, p.exitValue, e.policy)
	if err != nil {
		return nil, fmt.Errorf("returns: %w", err)
	}

	if err := checkFinite(metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// MaxPurchasePrice reports the highest price at which the deal still earns targetIRR
// (a fraction). The asking price only feeds the headroom figure.
func (e *Evaluator) MaxPurchasePrice(in deal.Inputs, targetIRR float64) (returns.BidResult, error) {
	p, err := e.prepare(in)
	if err != nil {
		return returns.BidResult{}, err
	}
	bid, err := returns.MaxPurchasePrice(in, p.series, p.terms, p.exitValue, targetIRR)
	if err != nil {
		return returns.BidResult{}, fmt.Errorf("max purchase price: %w", err)
	}
	if math.IsNaN(bid.MaxPurchasePrice) || math.IsInf(bid.MaxPurchasePrice, 0) {
		return returns.BidResult{}, &deal.ArithmeticError{Op: "max_purchase_price", Detail: fmt.Sprintf("result is %v", bid.MaxPurchasePrice)}
	}
	return bid, nil
}

// prepared holds everything upstream of the returns layer.
type prepared struct {
	series    []deal.YearlyCashFlow
	terms     deal.FinancingTerms
	exitValue float64
}

func (e *Evaluator) prepare(in deal.Inputs) (prepared, error) {
	if err := deal.Validate(in); err != nil {
		return prepared{}, err
	}

	// 1. Rent / expense / NOI series
	series, err := projection.Project(in)
	if err != nil {
		return prepared{}, fmt.Errorf("projection: %w", err)
	}

	// 2. Debt service (skipped entirely when unlevered)
	terms, err := financing.ForInputs(in)
	if err != nil {
		return prepared{}, fmt.Errorf("financing: %w", err)
	}
	series = projection.ApplyDebtService(series, terms.AnnualPayment)

	// 3. Exit
	exitValue, err := valuation.ExitFromSeries(series, in.ExitCapRate)
	if err != nil {
		return prepared{}, fmt.Errorf("exit valuation: %w", err)
	}

	return prepared{series: series, terms: terms, exitValue: exitValue}, nil
}

// Evaluate runs one deal under the house policy.
func Evaluate(in deal.Inputs) (*deal.ReturnMetrics, error) {
	return Default().Evaluate(in)
}

func checkFinite(m *deal.ReturnMetrics) error {
	scalars := []struct {
		name  string
		value float64
	}{
		{"cap_rate", m.CapRate},
		{"exit_value", m.ExitValue},
		{"total_debt_payments", m.TotalDebtPayments},
		{"total_profit", m.TotalProfit},
		{"roi", m.ROI},
		{"cash_on_cash_return", m.CashOnCashReturn},
		{"coc_annualized", m.CoCAnnualized},
		{"equity_needed", m.EquityNeeded},
		{"total_lp_returns", m.TotalLPReturns},
		{"approximate_irr", m.ApproximateIRR},
	}
	for _, s := range scalars {
		if math.IsNaN(s.value) || math.IsInf(s.value, 0) {
			return &deal.ArithmeticError{Op: s.name, Detail: fmt.Sprintf("result is %v", s.value)}
		}
	}
	for _, row := range m.CashFlows {
		if math.IsNaN(row.NetCashFlow) || math.IsInf(row.NetCashFlow, 0) {
			return &deal.ArithmeticError{Op: "net_cash_flow", Detail: fmt.Sprintf("year %d is %v", row.Year, row.NetCashFlow)}
		}
	}
	return nil
}
