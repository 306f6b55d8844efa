package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"deal_underwriting/pkg/core/deal"
	"deal_underwriting/pkg/core/dealfile"
	"deal_underwriting/pkg/core/logging"
	"deal_underwriting/pkg/core/returns"
	core "deal_underwriting/pkg/core/underwriting"

	"github.com/spf13/cobra"
)

// ErrInvalidDeals is returned by check, compare and sensitivity when at least one deal failed.
var ErrInvalidDeals = errors.New("one or more deals failed")

// CheckResult is one file's validation verdict.
type CheckResult struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// NewCheckCmd validates deal files without evaluating them.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <deal-file>...",
		Short: "Validate deal files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			results := make([]CheckResult, 0, len(args))
			failed := 0
			for _, path := range args {
				res := CheckResult{Path: path}
				sc, err := dealfile.Load(path)
				if err == nil {
					res.Name = sc.Name
					err = deal.Validate(sc.Inputs)
				}
				if err != nil {
					res.Error = err.Error()
					failed++
				} else {
					res.Valid = true
				}
				results = append(results, res)
			}
			cliCtx.Logger.Debug("check finished", logging.Int("files", len(args)), logging.Int("failed", failed))

			if cliCtx.OutputFormat == "json" {
				if err := printJSON(cmd, results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					if r.Valid {
						fmt.Fprintf(cmd.OutOrStdout(), "OK    %s (%s)\n", r.Name, r.Path)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %s\n", r.Path, r.Error)
					}
				}
			}
			if failed > 0 {
				return ErrInvalidDeals
			}
			return nil
		},
	}
}

// EvaluationReport is the evaluate command's JSON output.
type EvaluationReport struct {
	Name           string                 `json:"name"`
	Metrics        *deal.ReturnMetrics    `json:"metrics"`
	Underwriting   core.UnderwritingView  `json:"underwriting"`
	Profitability  core.ProfitabilityView `json:"profitability"`
	Investor       core.InvestorView      `json:"investor"`
	Reconciliation core.Reconciliation    `json:"reconciliation"`
	Bid            *returns.BidResult     `json:"bid,omitempty"`
}

// NewEvaluateCmd evaluates one deal file.
func NewEvaluateCmd() *cobra.Command {
	var targetIRR float64

	cmd := &cobra.Command{
		Use:   "evaluate <deal-file>",
		Short: "Evaluate one deal and print its return metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			sc, err := dealfile.Load(args[0])
			if err != nil {
				return err
			}

			m, err := cliCtx.Evaluator.Evaluate(sc.Inputs)
			if err != nil {
				cliCtx.Logger.Warn("evaluation rejected", logging.String("deal", sc.Name), logging.Err(err))
				return err
			}
			cliCtx.Logger.Info("evaluation complete", logging.String("deal", sc.Name))

			report := EvaluationReport{
				Name:           sc.Name,
				Metrics:        m,
				Underwriting:   core.NewUnderwritingView(m),
				Profitability:  core.NewProfitabilityView(m),
				Investor:       core.NewInvestorView(m),
				Reconciliation: core.Reconcile(sc.Inputs, m),
			}
			for _, w := range report.Reconciliation.Warnings {
				cliCtx.Logger.Warn("reconciliation", logging.String("deal", sc.Name), logging.String("warning", w))
			}
			if cmd.Flags().Changed("target-irr") {
				bid, err := cliCtx.Evaluator.MaxPurchasePrice(sc.Inputs, targetIRR)
				if err != nil {
					return err
				}
				report.Bid = &bid
			}

			if cliCtx.OutputFormat == "json" {
				return printJSON(cmd, report)
			}
			return writeReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().Float64Var(&targetIRR, "target-irr", 0, "also solve the max purchase price that earns this IRR (fraction, e.g. 0.12)")
	return cmd
}

type reportLine struct {
	label string
	value string
}

func writeReport(out io.Writer, report EvaluationReport) error {
	name, m := report.Name, report.Metrics
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(out, "Deal: %s\n\n", name)

	fmt.Fprintln(tw, "Year\tRent\tExpenses\tNOI\tDebt Service\tNet Cash Flow\t")
	for _, row := range m.CashFlows {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			row.Year, row.Rent, row.Expenses, row.NOI, row.DebtService, row.NetCashFlow)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	irr := "n/a"
	if m.SolvedIRR != nil {
		irr = fmt.Sprintf("%.2f%%", *m.SolvedIRR)
	}
	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	lines := []reportLine{
		{"Final-year NOI", fmt.Sprintf("%.2f", m.FinalYearNOI)},
		{"Cap rate", fmt.Sprintf("%.4f", m.CapRate)},
		{"Exit value", fmt.Sprintf("%.2f", m.ExitValue)},
		{"Debt payments", fmt.Sprintf("%.2f (%s)", m.TotalDebtPayments, m.Financing.Method)},
		{"Total profit", fmt.Sprintf("%.2f", m.TotalProfit)},
		{"ROI", fmt.Sprintf("%.2f%%", m.ROI)},
		{"Cash-on-cash", fmt.Sprintf("%.2f%% (%.2f%% annualized)", m.CashOnCashReturn, m.CoCAnnualized)},
		{"Equity needed", fmt.Sprintf("%.2f", m.EquityNeeded)},
		{"LP returns", fmt.Sprintf("%.2f (pref %.2f, split %.2f)", m.TotalLPReturns, m.LPPref, m.LPSplit)},
		{"IRR (approx)", fmt.Sprintf("%.2f%%", m.ApproximateIRR)},
		{"IRR (solved)", irr},
		{"Timeframe", fmt.Sprintf("%d months", m.EstimatedTimeframeMonths)},
	}
	if bid := report.Bid; bid != nil {
		lines = append(lines, reportLine{"Max bid",
			fmt.Sprintf("%.2f at %.2f%% IRR (headroom %.2f)", bid.MaxPurchasePrice, bid.TargetIRR*100, bid.Headroom)})
	}
	if !report.Reconciliation.IsBalanced {
		lines = append(lines, reportLine{"Reconciliation",
			fmt.Sprintf("FAILED (max gap %.2f)", report.Reconciliation.MaxGap)})
	}
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\n", l.label, l.value)
	}
	return tw.Flush()
}

// ComparisonRow is one scenario's line in compare output.
type ComparisonRow struct {
	Name        string   `json:"name"`
	ExitValue   float64  `json:"exit_value"`
	TotalProfit float64  `json:"total_profit"`
	ROI         float64  `json:"roi"`
	SolvedIRR   *float64 `json:"solved_irr,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// NewCompareCmd evaluates several deal files side by side.
func NewCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <deal-file>...",
		Short: "Evaluate several deals concurrently and compare them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if limit := cliCtx.Config.Compare.MaxScenarios; len(args) > limit {
				return fmt.Errorf("too many scenarios: %d > %d", len(args), limit)
			}
			scenarios, err := dealfile.LoadAll(args)
			if err != nil {
				return err
			}

			outcomes := cliCtx.Evaluator.EvaluateAll(cmd.Context(), scenarios, cliCtx.Workers)
			rows := make([]ComparisonRow, len(outcomes))
			failed := 0
			for i, o := range outcomes {
				rows[i].Name = o.Scenario.Name
				if o.Err != nil {
					rows[i].Error = o.Err.Error()
					failed++
					continue
				}
				rows[i].ExitValue = o.Metrics.ExitValue
				rows[i].TotalProfit = o.Metrics.TotalProfit
				rows[i].ROI = o.Metrics.ROI
				rows[i].SolvedIRR = o.Metrics.SolvedIRR
			}
			cliCtx.Logger.Info("comparison complete", logging.Int("scenarios", len(rows)), logging.Int("failed", failed))

			if cliCtx.OutputFormat == "json" {
				if err := printJSON(cmd, rows); err != nil {
					return err
				}
			} else if err := writeComparison(cmd.OutOrStdout(), rows); err != nil {
				return err
			}
			if failed > 0 {
				return ErrInvalidDeals
			}
			return nil
		},
	}
}

func writeComparison(out io.Writer, rows []ComparisonRow) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Deal\tExit Value\tTotal Profit\tROI\tIRR\t")
	for _, r := range rows {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\n", r.Name, r.Error)
			continue
		}
		irr := "n/a"
		if r.SolvedIRR != nil {
			irr = fmt.Sprintf("%.2f%%", *r.SolvedIRR)
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f%%\t%s\t\n", r.Name, r.ExitValue, r.TotalProfit, r.ROI, irr)
	}
	return tw.Flush()
}

// NewSensitivityCmd sweeps exit cap rate against rent growth for one deal.
func NewSensitivityCmd() *cobra.Command {
	var capRates, rentGrowths []float64

	cmd := &cobra.Command{
		Use:   "sensitivity <deal-file>",
		Short: "Sweep exit cap rate x rent growth for one deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if n := len(capRates) * len(rentGrowths); n == 0 || n > cliCtx.Config.Compare.MaxScenarios {
				return fmt.Errorf("grid must have between 1 and %d cells, got %d", cliCtx.Config.Compare.MaxScenarios, n)
			}
			sc, err := dealfile.Load(args[0])
			if err != nil {
				return err
			}

			grid := cliCtx.Evaluator.Sensitivity(cmd.Context(), sc.Inputs, capRates, rentGrowths, cliCtx.Workers)
			failed := 0
			for _, row := range grid {
				for _, cell := range row {
					if cell.Error != "" {
						failed++
					}
				}
			}
			if failed > 0 {
				cliCtx.Logger.Warn("sensitivity cells failed", logging.String("deal", sc.Name), logging.Int("failed", failed))
			}

			if cliCtx.OutputFormat == "json" {
				err = printJSON(cmd, grid)
			} else {
				err = writeSensitivity(cmd.OutOrStdout(), grid, rentGrowths)
			}
			if err != nil {
				return err
			}
			if failed > 0 {
				return ErrInvalidDeals
			}
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&capRates, "cap-rates", []float64{0.05, 0.055, 0.06, 0.065, 0.07}, "exit cap rates (rows)")
	cmd.Flags().Float64SliceVar(&rentGrowths, "rent-growths", []float64{0, 0.01, 0.02, 0.03}, "annual rent growth rates (columns)")
	return cmd
}

// writeSensitivity prints total profit per cell.
func writeSensitivity(out io.Writer, grid [][]core.SensitivityCell, rentGrowths []float64) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "cap \\ growth\t")
	for _, g := range rentGrowths {
		fmt.Fprintf(tw, "%.2f%%\t", g*100)
	}
	fmt.Fprintln(tw)
	for _, row := range grid {
		if len(row) == 0 {
			continue
		}
		fmt.Fprintf(tw, "%.2f%%\t", row[0].ExitCapRate*100)
		for _, cell := range row {
			if cell.Error != "" {
				fmt.Fprint(tw, "ERR\t")
				continue
			}
			fmt.Fprintf(tw, "%.0f\t", cell.TotalProfit)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
