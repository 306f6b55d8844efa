package projection_test

import (
	"errors"
	"math"
	"testing"

	"deal_underwriting/pkg/core/deal"
	"deal_underwriting/pkg/core/projection"
)

func baseInputs() deal.Inputs {
	return deal.Inputs{
		PurchasePrice:     2_000_000,
		RentPerSF:         20,
		PropertySize:      15_000,
		AnnualExpenses:    50_000,
		ExpenseGrowthRate: 0.03,
		LeaseTerm:         10,
		ExitCapRate:       0.06,
		AnnualRentGrowth:  0.02,
	}
}

func TestProject_Length(t *testing.T) {
	for _, term := range []int{1, 2, 10, 30} {
		in := baseInputs()
		in.LeaseTerm = term

		series, err := projection.Project(in)
		if err != nil {
			t.Fatalf("term %d: unexpected error: %v", term, err)
		}
		if len(series) != term {
			t.Errorf("term %d: expected %d rows, got %d", term, term, len(series))
		}
		for i, row := range series {
			if row.Year != i+1 {
				t.Errorf("term %d: row %d has year %d", term, i, row.Year)
			}
		}
	}
}

// Year 1 is escalated before it is recorded. This is the established model and is
// asserted here so nobody "fixes" it by accident.
func TestProject_Year1AlreadyEscalated(t *testing.T) {
	series, err := projection.Project(baseInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	y1 := series[0]
	wantRent := 300_000 * 1.02
	wantExp := 50_000 * 1.03
	if math.Abs(y1.Rent-wantRent) > 1e-6 {
		t.Errorf("year 1 rent: expected %.2f, got %.2f", wantRent, y1.Rent)
	}
	if math.Abs(y1.Expenses-wantExp) > 1e-6 {
		t.Errorf("year 1 expenses: expected %.2f, got %.2f", wantExp, y1.Expenses)
	}
	if math.Abs(y1.NOI-(wantRent-wantExp)) > 1e-6 {
		t.Errorf("year 1 NOI: expected %.2f, got %.2f", wantRent-wantExp, y1.NOI)
	}
	if y1.NOI == 300_000-50_000 {
		t.Error("year 1 NOI must not equal the unescalated base NOI")
	}
}

func TestProject_FinalYearCompounds(t *testing.T) {
	series, _ := projection.Project(baseInputs())
	last := series[len(series)-1]

	wantRent := 300_000 * math.Pow(1.02, 10)
	wantExp := 50_000 * math.Pow(1.03, 10)
	if math.Abs(last.NOI-(wantRent-wantExp)) > 1e-6 {
		t.Errorf("year 10 NOI: expected %.4f, got %.4f", wantRent-wantExp, last.NOI)
	}
}

func TestProject_NOIMonotonicUnderPositiveSpread(t *testing.T) {
	in := baseInputs()
	in.AnnualRentGrowth = 0.04
	in.ExpenseGrowthRate = 0.01
	in.AnnualExpenses = 20_000 // NOI positive from the start

	series, _ := projection.Project(in)
	for i := 1; i < len(series); i++ {
		if series[i].NOI < series[i-1].NOI {
			t.Errorf("NOI decreased between year %d and %d: %.2f -> %.2f",
				i, i+1, series[i-1].NOI, series[i].NOI)
		}
	}
}

func TestProject_NegativeNOIIsValid(t *testing.T) {
	in := baseInputs()
	in.AnnualRentGrowth = -1 // rent collapses to zero
	series, err := projection.Project(in)
	if err != nil {
		t.Fatalf("declining rent is a valid outcome, got %v", err)
	}
	if series[0].NOI >= 0 {
		t.Errorf("expected negative NOI, got %.2f", series[0].NOI)
	}
}

func TestProject_RejectsZeroLeaseTerm(t *testing.T) {
	in := baseInputs()
	in.LeaseTerm = 0
	_, err := projection.Project(in)
	if !errors.Is(err, deal.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyDebtService(t *testing.T) {
	series, _ := projection.Project(baseInputs())
	financed := projection.ApplyDebtService(series, 80_000)

	for i := range financed {
		if financed[i].DebtService != 80_000 {
			t.Errorf("year %d: expected debt service 80000, got %f", i+1, financed[i].DebtService)
		}
		if financed[i].NetCashFlow != series[i].NOI-80_000 {
			t.Errorf("year %d: net cash flow mismatch", i+1)
		}
	}
	// Input series is untouched.
	if series[0].DebtService != 0 {
		t.Error("ApplyDebtService must not mutate its input")
	}

	unlevered := projection.ApplyDebtService(series, 0)
	for i := range unlevered {
		if unlevered[i].NetCashFlow != unlevered[i].NOI {
			t.Errorf("year %d: unlevered net cash flow should equal NOI", i+1)
		}
	}
}

func TestFinalYear_Empty(t *testing.T) {
	_, err := projection.FinalYear(nil)
	if !errors.Is(err, deal.ErrArithmetic) {
		t.Fatalf("expected arithmetic error, got %v", err)
	}
}
