package underwriting

import (
	"context"
	"runtime"

	"deal_underwriting/pkg/core/deal"

	"golang.org/x/sync/errgroup"
)

// Outcome pairs a scenario with its metrics or its failure.
type Outcome struct {
	Scenario deal.Scenario
	Metrics  *deal.ReturnMetrics
	Err      error
}

// workerLimit resolves a configured worker count. Zero or negative means GOMAXPROCS.
func workerLimit(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}

// EvaluateAll evaluates every scenario concurrently, at most workers at a time
// (workers <= 0 means GOMAXPROCS). Outcomes come back in input order. A failing scenario
// does not stop the others; only context cancellation does, in which case the
// unfinished scenarios carry ctx.Err().
func (e *Evaluator) EvaluateAll(ctx context.Context, scenarios []deal.Scenario, workers int) []Outcome {
	outcomes := make([]Outcome, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(workers))

	for i, sc := range scenarios {
		i, sc := i, sc
		outcomes[i].Scenario = sc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Metrics, outcomes[i].Err = e.Evaluate(sc.Inputs)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// SensitivityCell is one point of a sensitivity grid.
type SensitivityCell struct {
	ExitCapRate      float64  `json:"exit_cap_rate"`
	AnnualRentGrowth float64  `json:"annual_rent_growth"`
	ExitValue        float64  `json:"exit_value"`
	TotalProfit      float64  `json:"total_profit"`
	ROI              float64  `json:"roi"`
	SolvedIRR        *float64 `json:"solved_irr"`
	Error            string   `json:"error,omitempty"`
}

// Sensitivity re-evaluates base across every exit cap rate × rent growth pair. Rows
// follow exitCapRates, columns follow rentGrowths.
func (e *Evaluator) Sensitivity(ctx context.Context, base deal.Inputs, exitCapRates, rentGrowths []float64, workers int) [][]SensitivityCell {
	scenarios := make([]deal.Scenario, 0, len(exitCapRates)*len(rentGrowths))
	for _, capRate := range exitCapRates {
		for _, g := range rentGrowths {
			in := base
			in.ExitCapRate = capRate
			in.AnnualRentGrowth = g
			scenarios = append(scenarios, deal.Scenario{Inputs: in})
		}
	}

	outcomes := e.EvaluateAll(ctx, scenarios, workers)

	grid := make([][]SensitivityCell, len(exitCapRates))
	for r := range exitCapRates {
		grid[r] = make([]SensitivityCell, len(rentGrowths))
		for c := range rentGrowths {
			o := outcomes[r*len(rentGrowths)+c]
			cell := SensitivityCell{
				ExitCapRate:      o.Scenario.ExitCapRate,
				AnnualRentGrowth: o.Scenario.AnnualRentGrowth,
			}
			if o.Err != nil {
				cell.Error = o.Err.Error()
			} else {
				cell.ExitValue = o.Metrics.ExitValue
				cell.TotalProfit = o.Metrics.TotalProfit
				cell.ROI = o.Metrics.ROI
				cell.SolvedIRR = o.Metrics.SolvedIRR
			}
			grid[r][c] = cell
		}
	}
	return grid
}
