package underwriting

import "deal_underwriting/pkg/core/deal"

// The views below are projections of one ReturnMetrics for different audiences. They
// never recompute anything.

// UnderwritingView is the classic underwriting summary: terminal NOI, cap rate, exit
// value and both annual series.
type UnderwritingView struct {
	FinalYearNOI    float64   `json:"noi_final_year"`
	CapRate         float64   `json:"cap_rate"`
	ExitValue       float64   `json:"exit_value"`
	AnnualCashFlows []float64 `json:"annual_cash_flows"`
	NetCashFlows    []float64 `json:"net_cash_flow_after_debt"`
}

// ProfitabilityView is the sponsor's headline return picture.
type ProfitabilityView struct {
	TotalDebtPayments        float64  `json:"total_debt_payments"`
	TotalProfit              float64  `json:"total_profit"`
	ROI                      float64  `json:"roi"`
	CashOnCashReturn         float64  `json:"cash_on_cash_return"`
	CoCAnnualized            float64  `json:"coc_annualized"`
	ApproximateIRR           float64  `json:"approximate_irr"`
	SolvedIRR                *float64 `json:"solved_irr"`
	EstimatedTimeframeMonths int      `json:"estimated_timeframe_months"`
}

// InvestorView is what an LP sees of the equity waterfall.
type InvestorView struct {
	EquityNeeded   float64 `json:"equity_needed"`
	LPPref         float64 `json:"lp_pref"`
	LPSplit        float64 `json:"lp_split"`
	TotalLPReturns float64 `json:"total_lp_returns"`
	SponsorProfit  float64 `json:"sponsor_profit"`
}

func NewUnderwritingView(m *deal.ReturnMetrics) UnderwritingView {
	return UnderwritingView{
		FinalYearNOI:    m.FinalYearNOI,
		CapRate:         m.CapRate,
		ExitValue:       m.ExitValue,
		AnnualCashFlows: m.NOISeries(),
		NetCashFlows:    m.NetCashFlowSeries(),
	}
}

func NewProfitabilityView(m *deal.ReturnMetrics) ProfitabilityView {
	return ProfitabilityView{
		TotalDebtPayments:        m.TotalDebtPayments,
		TotalProfit:              m.TotalProfit,
		ROI:                      m.ROI,
		CashOnCashReturn:         m.CashOnCashReturn,
		CoCAnnualized:            m.CoCAnnualized,
		ApproximateIRR:           m.ApproximateIRR,
		SolvedIRR:                m.SolvedIRR,
		EstimatedTimeframeMonths: m.EstimatedTimeframeMonths,
	}
}

// NewInvestorView splits total profit into the LP take and the sponsor remainder.
func NewInvestorView(m *deal.ReturnMetrics) InvestorView {
	return InvestorView{
		EquityNeeded:   m.EquityNeeded,
		LPPref:         m.LPPref,
		LPSplit:        m.LPSplit,
		TotalLPReturns: m.TotalLPReturns,
		SponsorProfit:  m.TotalProfit - m.TotalLPReturns,
	}
}
