package finance

import (
	"errors"
	"math"
)

var ErrInvalidInput = errors.New("amount and term must be positive")

const (
	irrInitialGuess = 0.10
	irrTolerance    = 1e-4
	irrMaxIter      = 100
)

// EffectiveAnnualCost approximates the effective annual cost rate (CET) of a
// financing as a percentage: total simple interest over the term, expressed
// as a compounded annual rate.
//
// This is a round-trip approximation that ignores fee stacking; it is not a
// regulatory-grade CET.
func EffectiveAnnualCost(amount, nominalAnnualRatePct float64, termMonths int) (float64, error) {
	if amount <= 0 || termMonths <= 0 {
		return 0, ErrInvalidInput
	}
	monthly := monthlyRate(nominalAnnualRatePct)
	totalInterest := amount * monthly * float64(termMonths)
	total := amount + totalInterest
	return (math.Pow(total/amount, monthsPerYear/float64(termMonths)) - 1.0) * 100.0, nil
}

// NPV discounts a constant annual cash flow over the horizon and subtracts
// the initial investment. rate is a fraction (0.10 = 10%).
func NPV(investment, annualCashFlow, rate float64, years int) float64 {
	npv := -investment
	for t := 1; t <= years; t++ {
		npv += annualCashFlow / math.Pow(1.0+rate, float64(t))
	}
	return npv
}

// IRR solves NPV(r) = 0 for a constant annual cash flow via Newton–Raphson.
// If the iteration budget runs out the last iterate is returned; callers must
// treat the result as best-effort for pathological inputs.
func IRR(investment, annualCashFlow float64, years int) float64 {
	r := irrInitialGuess
	for iter := 0; iter < irrMaxIter; iter++ {
		npv := NPV(investment, annualCashFlow, r, years)
		if math.Abs(npv) < irrTolerance {
			return r
		}
		var derivative float64
		for t := 1; t <= years; t++ {
			derivative -= float64(t) * annualCashFlow / math.Pow(1.0+r, float64(t+1))
		}
		if derivative == 0 || math.IsNaN(derivative) || math.IsInf(derivative, 0) {
			return r
		}
		r -= npv / derivative
	}
	return r
}
