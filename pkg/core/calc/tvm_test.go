package calc

import (
	"errors"
	"math"
	"testing"
)

func TestPresentValue(t *testing.T) {
	pv := PresentValue(110, 0.10, 1)
	if math.Abs(pv-100) > 1e-9 {
		t.Errorf("expected 100, got %f", pv)
	}
	if PresentValue(100, 0.1, -1) != 0 {
		t.Error("negative periods should return 0")
	}
}

func TestNetPresentValue(t *testing.T) {
	flows := []float64{-100, 60, 60}
	npv := NetPresentValue(flows, 0)
	if math.Abs(npv-20) > 1e-9 {
		t.Errorf("expected NPV 20 at 0%%, got %f", npv)
	}
	if NetPresentValue(nil, 0.1) != 0 {
		t.Error("empty flows should have zero NPV")
	}
}

func TestIRR_KnownRates(t *testing.T) {
	cases := []struct {
		name  string
		flows []float64
		want  float64
	}{
		{"single period 10%", []float64{-100, 110}, 0.10},
		{"two period 0%", []float64{-100, 50, 50}, 0},
		{"bullet 5 years", []float64{-1000, 0, 0, 0, 0, 1000 * math.Pow(1.08, 5)}, 0.08},
		{"level annuity", []float64{-1000, 263.797481, 263.797481, 263.797481, 263.797481, 263.797481}, 0.10},
		{"loss", []float64{-100, 50}, -0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := IRR(tc.flows)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-6 {
				t.Errorf("expected %.8f, got %.8f", tc.want, got)
			}
			if npv := NetPresentValue(tc.flows, got); math.Abs(npv) > 1e-4 {
				t.Errorf("NPV at solved rate should be ~0, got %f", npv)
			}
		})
	}
}

func TestIRR_NoSignChange(t *testing.T) {
	for _, flows := range [][]float64{
		{100, 10, 10},
		{-100, -10, -10},
		{0, 0},
		nil,
	} {
		if _, err := IRR(flows); !errors.Is(err, ErrIRRUndefined) {
			t.Errorf("flows %v: expected ErrIRRUndefined, got %v", flows, err)
		}
	}
}
