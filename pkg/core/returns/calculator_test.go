package returns

import (
	"errors"
	"math"
	"testing"

	"deal_underwriting/pkg/core/calc"
	"deal_underwriting/pkg/core/deal"
	"deal_underwriting/pkg/core/financing"
	"deal_underwriting/pkg/core/projection"
)

const eps = 1e-6

func approx(a, b float64) bool {
	return math.Abs(a-b) <= eps*math.Max(1, math.Abs(b))
}

func financedDeal() deal.Inputs {
	return deal.Inputs{
		PurchasePrice:     2_000_000,
		RentPerSF:         20,
		PropertySize:      15_000,
		AnnualExpenses:    50_000,
		ExpenseGrowthRate: 0.03,
		LeaseTerm:         10,
		ExitCapRate:       0.06,
		AnnualRentGrowth:  0.02,
		LoanAmount:        1_000_000,
		InterestRate:      0.05,
		LoanTerm:          20,
	}
}

func build(t *testing.T, in deal.Inputs, policy WaterfallPolicy) *deal.ReturnMetrics {
	t.Helper()
	series, err := projection.Project(in)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	terms, err := financing.ForInputs(in)
	if err != nil {
		t.Fatalf("financing: %v", err)
	}
	series = projection.ApplyDebtService(series, terms.AnnualPayment)
	exit := series[len(series)-1].NOI / in.ExitCapRate

	m, err := ComputeReturns(in, series, terms, exit, policy)
	if err != nil {
		t.Fatalf("compute returns: %v", err)
	}
	return m
}

func TestComputeReturns_Financed(t *testing.T) {
	in := financedDeal()
	m := build(t, in, DefaultPolicy())

	finalNOI := m.CashFlows[len(m.CashFlows)-1].NOI
	if !approx(m.CapRate, finalNOI/in.PurchasePrice) {
		t.Errorf("cap rate: expected %f, got %f", finalNOI/in.PurchasePrice, m.CapRate)
	}
	if !approx(m.TotalDebtPayments, m.Financing.AnnualPayment*20) {
		t.Errorf("total debt payments should be payment x loan_term, got %f", m.TotalDebtPayments)
	}

	wantProfit := m.ExitValue - in.PurchasePrice - m.TotalDebtPayments
	if !approx(m.TotalProfit, wantProfit) {
		t.Errorf("total profit: expected %f, got %f", wantProfit, m.TotalProfit)
	}
	if !approx(m.ROI, wantProfit/in.PurchasePrice*100) {
		t.Errorf("roi mismatch: %f", m.ROI)
	}
	if !approx(m.CashOnCashReturn, wantProfit/in.LoanAmount*100) {
		t.Errorf("cash on cash mismatch: %f", m.CashOnCashReturn)
	}
	if !approx(m.CoCAnnualized, m.CashOnCashReturn/10) {
		t.Errorf("annualized coc mismatch: %f", m.CoCAnnualized)
	}
	if !approx(m.ApproximateIRR, m.CoCAnnualized*0.80) {
		t.Errorf("approximate irr should be 0.8 x annualized coc, got %f", m.ApproximateIRR)
	}
	if m.EstimatedTimeframeMonths != 120 {
		t.Errorf("expected 120 months, got %d", m.EstimatedTimeframeMonths)
	}
	if !approx(m.EquityNeeded, 600_000) {
		t.Errorf("expected equity needed 600000, got %f", m.EquityNeeded)
	}
}

func TestComputeReturns_WaterfallRatios(t *testing.T) {
	m := build(t, financedDeal(), DefaultPolicy())
	if m.TotalProfit == 0 {
		t.Skip("ratios undefined for zero profit")
	}

	ratios := map[string]struct{ got, want float64 }{
		"lp_pref":          {m.LPPref / m.TotalProfit, 0.20},
		"lp_split":         {m.LPSplit / m.TotalProfit, 0.50},
		"total_lp_returns": {m.TotalLPReturns / m.TotalProfit, 0.70},
	}
	for name, r := range ratios {
		if !approx(r.got, r.want) {
			t.Errorf("%s ratio: expected %.2f, got %.6f", name, r.want, r.got)
		}
	}
	if !approx(m.LPPref+m.LPSplit, m.TotalLPReturns) {
		t.Errorf("pref + split should equal total LP returns")
	}
}

func TestComputeReturns_CustomPolicy(t *testing.T) {
	policy := WaterfallPolicy{EquityShare: 0.25, PreferredShare: 0.08, SplitShare: 0.60, IRRProxyFactor: 1}
	m := build(t, financedDeal(), policy)

	if !approx(m.EquityNeeded, 500_000) {
		t.Errorf("expected equity 500000, got %f", m.EquityNeeded)
	}
	if !approx(m.TotalLPReturns, m.TotalProfit*0.68) {
		t.Errorf("expected LP total at 68%% of profit, got %f", m.TotalLPReturns)
	}
	if !approx(m.ApproximateIRR, m.CoCAnnualized) {
		t.Errorf("proxy factor 1 should pass annualized coc through")
	}
}

func TestComputeReturns_Unlevered(t *testing.T) {
	in := financedDeal()
	in.LoanAmount = 0
	in.InterestRate = 0.07
	in.LoanTerm = 30
	m := build(t, in, DefaultPolicy())

	if m.TotalDebtPayments != 0 {
		t.Errorf("expected zero debt payments, got %f", m.TotalDebtPayments)
	}
	if m.CashOnCashReturn != 0 || m.CoCAnnualized != 0 || m.ApproximateIRR != 0 {
		t.Errorf("cash-on-cash metrics should be 0 when unlevered")
	}
	for _, row := range m.CashFlows {
		if row.NetCashFlow != row.NOI {
			t.Errorf("year %d: net cash flow should equal NOI", row.Year)
		}
	}
	if m.Financing.Method != deal.PaymentNone {
		t.Errorf("expected no financing, got %s", m.Financing.Method)
	}
}

func TestComputeReturns_SolvedIRR(t *testing.T) {
	in := financedDeal()
	m := build(t, in, DefaultPolicy())
	if m.SolvedIRR == nil {
		t.Fatal("expected a solved IRR for the worked example")
	}

	flows := EquityCashFlows(in, m.CashFlows, m.Financing, m.ExitValue)
	if len(flows) != in.LeaseTerm+1 {
		t.Fatalf("expected %d equity flows, got %d", in.LeaseTerm+1, len(flows))
	}
	if flows[0] != -1_000_000 {
		t.Errorf("equity outlay should be price minus loan, got %f", flows[0])
	}
	if npv := calc.NetPresentValue(flows, *m.SolvedIRR/100); math.Abs(npv) > 1e-3 {
		t.Errorf("NPV at solved IRR should be ~0, got %f", npv)
	}
}

func TestComputeReturns_FullyFinancedHasNoIRR(t *testing.T) {
	in := financedDeal()
	in.LoanAmount = in.PurchasePrice
	m := build(t, in, DefaultPolicy())
	if m.SolvedIRR != nil {
		t.Errorf("fully financed deal has no equity outlay, expected nil IRR, got %f", *m.SolvedIRR)
	}
}

func TestComputeReturns_LengthMismatch(t *testing.T) {
	in := financedDeal()
	series := []deal.YearlyCashFlow{{Year: 1, NOI: 10}}
	_, err := ComputeReturns(in, series, deal.FinancingTerms{Method: deal.PaymentNone}, 100, DefaultPolicy())
	if !errors.Is(err, deal.ErrArithmetic) {
		t.Errorf("expected arithmetic error, got %v", err)
	}
}

func TestWaterfallPolicy_Validate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	bad := DefaultPolicy()
	bad.SplitShare = 0.9
	if err := bad.Validate(); err == nil {
		t.Error("pref + split above 1 should be rejected")
	}
	bad = DefaultPolicy()
	bad.EquityShare = -0.1
	if err := bad.Validate(); err == nil {
		t.Error("negative share should be rejected")
	}
}
