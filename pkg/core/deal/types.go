// Package deal defines the value objects shared by every stage of a deal evaluation:
// the validated input record, the per-year cash flow rows, the financing terms and
// the final return metrics.
package deal

// MaxLeaseTerm bounds the holding period so a single evaluation stays cheap.
const MaxLeaseTerm = 100

// Inputs holds every assumption for one acquisition. It is passed by value and never
// mutated by the engine.
type Inputs struct {
	PurchasePrice     float64 `json:"purchase_price" yaml:"purchase_price"`           // Currency, > 0
	RentPerSF         float64 `json:"rent_per_sf" yaml:"rent_per_sf"`                 // Currency per square foot, > 0
	PropertySize      float64 `json:"property_size" yaml:"property_size"`             // Square feet, > 0
	AnnualExpenses    float64 `json:"annual_expenses" yaml:"annual_expenses"`         // Currency, > 0
	ExpenseGrowthRate float64 `json:"expense_growth_rate" yaml:"expense_growth_rate"` // e.g. 0.03
	LeaseTerm         int     `json:"lease_term" yaml:"lease_term"`                   // Holding period in years, >= 1
	ExitCapRate       float64 `json:"exit_cap_rate" yaml:"exit_cap_rate"`             // e.g. 0.06, > 0
	AnnualRentGrowth  float64 `json:"annual_rent_growth" yaml:"annual_rent_growth"`   // e.g. 0.02

	// Financing (all zero means unlevered)
	LoanAmount   float64 `json:"loan_amount" yaml:"loan_amount"`     // Currency, >= 0
	InterestRate float64 `json:"interest_rate" yaml:"interest_rate"` // Annual, >= 0
	LoanTerm     int     `json:"loan_term" yaml:"loan_term"`         // Years, > 0 when financed
}

// Financed reports whether the deal carries debt.
func (in Inputs) Financed() bool {
	return in.LoanAmount > 0
}

// BaseRent is the stated gross annual rent before any escalation.
func (in Inputs) BaseRent() float64 {
	return in.RentPerSF * in.PropertySize
}

// Scenario names one set of inputs so several deals can be compared side by side.
type Scenario struct {
	Name   string `json:"name" yaml:"name"`
	Inputs `yaml:",inline"`
}

// YearlyCashFlow is one row of the holding-period projection.
type YearlyCashFlow struct {
	Year        int     `json:"year"` // 1..LeaseTerm
	Rent        float64 `json:"rent"`
	Expenses    float64 `json:"expenses"`
	NOI         float64 `json:"noi"`
	DebtService float64 `json:"debt_service"`
	NetCashFlow float64 `json:"net_cash_flow"`
}

// PaymentMethod records which repayment formula produced the annual payment.
type PaymentMethod string

const (
	PaymentNone         PaymentMethod = "none"          // Unlevered
	PaymentAnnuity      PaymentMethod = "annuity"       // Level payment
	PaymentStraightLine PaymentMethod = "straight_line" // Zero interest: L / n
)

// FinancingTerms is derived once per evaluation and reused unchanged for every year.
type FinancingTerms struct {
	LoanAmount    float64       `json:"loan_amount"`
	InterestRate  float64       `json:"interest_rate"`
	LoanTerm      int           `json:"loan_term"`
	AnnualPayment float64       `json:"annual_payment"`
	Method        PaymentMethod `json:"method"`
}

// ReturnMetrics is the aggregate result of an evaluation.
type ReturnMetrics struct {
	FinalYearNOI      float64 `json:"final_year_noi"`
	CapRate           float64 `json:"cap_rate"`
	ExitValue         float64 `json:"exit_value"`
	TotalDebtPayments float64 `json:"total_debt_payments"`
	TotalProfit       float64 `json:"total_profit"`
	ROI               float64 `json:"roi"`                 // %
	CashOnCashReturn  float64 `json:"cash_on_cash_return"` // %, financed deals only
	CoCAnnualized     float64 `json:"coc_annualized"`      // %

	// Equity waterfall
	EquityNeeded   float64 `json:"equity_needed"`
	LPPref         float64 `json:"lp_pref"`
	LPSplit        float64 `json:"lp_split"`
	TotalLPReturns float64 `json:"total_lp_returns"`

	// ApproximateIRR is a scalar proxy (annualized cash-on-cash times a factor), not a
	// discounted rate. SolvedIRR is the rate that zeroes the NPV of the equity cash flows,
	// nil when no such rate exists. Both are percentages.
	ApproximateIRR float64  `json:"approximate_irr"`
	SolvedIRR      *float64 `json:"solved_irr"`

	EstimatedTimeframeMonths int `json:"estimated_timeframe_months"`

	Financing FinancingTerms   `json:"financing"`
	CashFlows []YearlyCashFlow `json:"cash_flows"`
}

// NOISeries returns the NOI column of the projection.
func (m *ReturnMetrics) NOISeries() []float64 {
	out := make([]float64, len(m.CashFlows))
	for i, cf := range m.CashFlows {
		out[i] = cf.NOI
	}
	return out
}

// NetCashFlowSeries returns the after-debt-service column of the projection.
func (m *ReturnMetrics) NetCashFlowSeries() []float64 {
	out := make([]float64, len(m.CashFlows))
	for i, cf := range m.CashFlows {
		out[i] = cf.NetCashFlow
	}
	return out
}
