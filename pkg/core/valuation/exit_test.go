package valuation

import (
	"errors"
	"math"
	"testing"

	"deal_underwriting/pkg/core/deal"
)

func TestComputeExitValue(t *testing.T) {
	value, err := ComputeExitValue(300_000, 0.06)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(value-5_000_000) > 1e-6 {
		t.Errorf("expected 5,000,000, got %.2f", value)
	}
}

func TestComputeExitValue_NegativeNOI(t *testing.T) {
	value, err := ComputeExitValue(-60_000, 0.06)
	if err != nil {
		t.Fatalf("negative NOI is a valid outcome, got %v", err)
	}
	if value >= 0 {
		t.Errorf("expected negative exit value, got %.2f", value)
	}
}

func TestComputeExitValue_RejectsBadCapRate(t *testing.T) {
	for _, rate := range []float64{0, -0.05, math.NaN()} {
		_, err := ComputeExitValue(100_000, rate)
		var verr *deal.ValidationError
		if !errors.As(err, &verr) || verr.Field != "exit_cap_rate" {
			t.Errorf("cap rate %v: expected exit_cap_rate validation error, got %v", rate, err)
		}
	}
}

func TestExitFromSeries(t *testing.T) {
	series := []deal.YearlyCashFlow{{Year: 1, NOI: 100}, {Year: 2, NOI: 120}}
	value, err := ExitFromSeries(series, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(value-2400) > 1e-9 {
		t.Errorf("expected 2400 from final-year NOI, got %f", value)
	}

	if _, err := ExitFromSeries(nil, 0.05); !errors.Is(err, deal.ErrArithmetic) {
		t.Errorf("empty series should be an arithmetic error, got %v", err)
	}
}

func TestCapRate(t *testing.T) {
	rate, err := CapRate(120_000, 2_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(rate-0.06) > 1e-12 {
		t.Errorf("expected 0.06, got %f", rate)
	}
}
