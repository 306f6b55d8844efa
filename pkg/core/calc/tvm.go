// Package calc provides deterministic time-value-of-money calculations used by the
// returns layer: present values, net present value and internal rate of return.
package calc

import (
	"errors"
	"math"
)

// ErrIRRUndefined is returned when no discount rate zeroes the NPV of a cash flow
// sequence inside the search bracket.
var ErrIRRUndefined = errors.New("IRR_UNDEFINED: no rate zeroes the net present value")

const (
	irrLowerBound = -0.9999
	irrUpperBound = 10.0
	irrTolerance  = 1e-10
	irrMaxIter    = 200
)

// PresentValue calculates PV of a single cash flow.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(cashFlow, discountRate float64, periods int) float64 {
	if periods < 0 {
		return 0
	}
	return cashFlow / math.Pow(1+discountRate, float64(periods))
}

// PresentValueOfCashFlows calculates PV of a series of end-of-period cash flows.
//
// FORMULA: PV = Σ [ CF_t / (1 + r)^t ], t = 1..n
func PresentValueOfCashFlows(cashFlows []float64, discountRate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += cf / math.Pow(1+discountRate, float64(t+1))
	}
	return pv
}

// NetPresentValue discounts a sequence whose first element is the time-zero flow.
//
// FORMULA: NPV = Σ [ CF_t / (1 + r)^t ], t = 0..n
func NetPresentValue(cashFlows []float64, discountRate float64) float64 {
	if len(cashFlows) == 0 {
		return 0
	}
	return cashFlows[0] + PresentValueOfCashFlows(cashFlows[1:], discountRate)
}

// npvDerivative is d(NPV)/dr.
func npvDerivative(cashFlows []float64, rate float64) float64 {
	var d float64
	for t := 1; t < len(cashFlows); t++ {
		d -= float64(t) * cashFlows[t] / math.Pow(1+rate, float64(t+1))
	}
	return d
}

// IRR solves NPV(r) = 0 for r (as a fraction).
//
// The root is bracketed on a grid over (-99.99%, 1000%], narrowed by bisection and then
// polished with Newton steps that are only accepted while they stay inside the bracket.
// Sequences without a sign change have no IRR and return ErrIRRUndefined.
func IRR(cashFlows []float64) (float64, error) {
	if !hasSignChange(cashFlows) {
		return 0, ErrIRRUndefined
	}

	lo, hi, ok := bracketRoot(cashFlows)
	if !ok {
		return 0, ErrIRRUndefined
	}

	if lo == hi {
		return lo, nil
	}

	fLo := NetPresentValue(cashFlows, lo)
	for i := 0; i < irrMaxIter && hi-lo > irrTolerance; i++ {
		mid := (lo + hi) / 2
		fMid := NetPresentValue(cashFlows, mid)
		if fMid == 0 {
			return mid, nil
		}
		if (fMid < 0) == (fLo < 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}

	rate := (lo + hi) / 2
	for i := 0; i < 5; i++ {
		d := npvDerivative(cashFlows, rate)
		if d == 0 {
			break
		}
		next := rate - NetPresentValue(cashFlows, rate)/d
		if next < lo || next > hi || math.IsNaN(next) {
			break
		}
		rate = next
	}
	return rate, nil
}

func hasSignChange(cashFlows []float64) bool {
	var pos, neg bool
	for _, cf := range cashFlows {
		switch {
		case cf > 0:
			pos = true
		case cf < 0:
			neg = true
		}
	}
	return pos && neg
}

// bracketRoot walks a coarse rate grid and returns the first interval whose endpoints
// have NPVs of opposite sign. Grid points where the NPV overflows are skipped.
func bracketRoot(cashFlows []float64) (float64, float64, bool) {
	grid := []float64{irrLowerBound, -0.99, -0.9, -0.75, -0.5, -0.25, -0.1, 0, 0.05, 0.1, 0.2, 0.35, 0.5, 0.75, 1, 2, 3.5, 5, 7.5, irrUpperBound}

	havePrev := false
	var prev, fPrev float64
	for _, r := range grid {
		f := NetPresentValue(cashFlows, r)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if f == 0 {
			return r, r, true
		}
		if havePrev && (f < 0) != (fPrev < 0) {
			return prev, r, true
		}
		prev, fPrev, havePrev = r, f, true
	}
	return 0, 0, false
}
