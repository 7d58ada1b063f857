// Package finance holds the pure loan and return calculations: the two
// amortization conventions offered on financing proposals plus the
// effective-cost and cash-flow metrics derived from them.
package finance

import (
	"math"

	"solarfin-backend/pkg/mathutil"
)

const monthsPerYear = 12.0

// Installment is one row of an amortization schedule.
type Installment struct {
	Number           int     `json:"number"`
	PrincipalPortion float64 `json:"principal_portion"`
	InterestPortion  float64 `json:"interest_portion"`
	TotalPayment     float64 `json:"total_payment"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// Summary aggregates a schedule into the figures shown on a proposal.
type Summary struct {
	TotalPaid      float64 `json:"total_paid"`
	TotalInterest  float64 `json:"total_interest"`
	FirstPayment   float64 `json:"first_payment"`
	LastPayment    float64 `json:"last_payment"`
	AveragePayment float64 `json:"average_payment"`
}

type Schedule struct {
	Installments []Installment `json:"installments"`
	Summary      Summary       `json:"summary"`
}

// monthlyRate converts a nominal annual percentage rate to a per-period rate.
func monthlyRate(annualRatePct float64) float64 {
	return annualRatePct / 100.0 / monthsPerYear
}

// SimulateSAC produces a constant-amortization schedule: the principal
// portion is fixed at principal/periods and interest accrues on the balance
// entering each period, so the total payment strictly decreases.
//
// Degenerate inputs (periods < 1) collapse to a single period; validity
// checks belong to the calling layer.
func SimulateSAC(principal, annualRatePct float64, periods int) Schedule {
	if periods < 1 {
		periods = 1
	}
	i := monthlyRate(annualRatePct)
	amortization := principal / float64(periods)

	installments := make([]Installment, 0, periods)
	balance := principal
	for k := 1; k <= periods; k++ {
		interest := balance * i
		remaining := balance - amortization
		if k == periods {
			// absorb rounding in the final period
			remaining = 0
		}
		installments = append(installments, Installment{
			Number:           k,
			PrincipalPortion: amortization,
			InterestPortion:  interest,
			TotalPayment:     amortization + interest,
			RemainingBalance: remaining,
		})
		balance = remaining
	}
	return Schedule{Installments: installments, Summary: summarize(installments)}
}

// SimulatePrice produces a constant-installment (annuity) schedule: the total
// payment is fixed via PMT = P·i(1+i)^n / ((1+i)^n − 1) and the
// interest/principal mix shifts toward principal over time.
//
// A zero or near-zero rate uses the limiting case PMT = P/n so the annuity
// denominator never degenerates.
func SimulatePrice(principal, annualRatePct float64, periods int) Schedule {
	if periods < 1 {
		periods = 1
	}
	i := monthlyRate(annualRatePct)

	var payment float64
	if i < 1e-9 {
		payment = principal / float64(periods)
	} else {
		power := math.Pow(1.0+i, float64(periods))
		payment = principal * i * power / (power - 1.0)
	}

	installments := make([]Installment, 0, periods)
	balance := principal
	for k := 1; k <= periods; k++ {
		interest := balance * i
		principalPortion := payment - interest
		remaining := balance - principalPortion
		if k == periods {
			// the closing balance is zero by construction; pin it so
			// floating-point residue never leaks into the last row
			principalPortion = balance
			remaining = 0
		}
		installments = append(installments, Installment{
			Number:           k,
			PrincipalPortion: principalPortion,
			InterestPortion:  interest,
			TotalPayment:     principalPortion + interest,
			RemainingBalance: remaining,
		})
		balance = remaining
	}
	return Schedule{Installments: installments, Summary: summarize(installments)}
}

func summarize(installments []Installment) Summary {
	var s Summary
	if len(installments) == 0 {
		return s
	}
	for _, inst := range installments {
		s.TotalPaid += inst.TotalPayment
		s.TotalInterest += inst.InterestPortion
	}
	s.FirstPayment = installments[0].TotalPayment
	s.LastPayment = installments[len(installments)-1].TotalPayment
	s.AveragePayment = s.TotalPaid / float64(len(installments))
	return s
}

// RoundedCopy returns the schedule with every monetary figure rounded to
// cents, for persistence and API output.
func (s Schedule) RoundedCopy() Schedule {
	out := Schedule{
		Installments: make([]Installment, len(s.Installments)),
		Summary: Summary{
			TotalPaid:      mathutil.Round(s.Summary.TotalPaid),
			TotalInterest:  mathutil.Round(s.Summary.TotalInterest),
			FirstPayment:   mathutil.Round(s.Summary.FirstPayment),
			LastPayment:    mathutil.Round(s.Summary.LastPayment),
			AveragePayment: mathutil.Round(s.Summary.AveragePayment),
		},
	}
	for idx, inst := range s.Installments {
		out.Installments[idx] = Installment{
			Number:           inst.Number,
			PrincipalPortion: mathutil.Round(inst.PrincipalPortion),
			InterestPortion:  mathutil.Round(inst.InterestPortion),
			TotalPayment:     mathutil.Round(inst.TotalPayment),
			RemainingBalance: mathutil.Round(inst.RemainingBalance),
		}
	}
	return out
}
