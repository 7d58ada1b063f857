// Package viability assembles the consolidated feasibility report for a
// proposed solar installation: energy yield, financing simulation, return
// metrics, and the equipment/tariff context they depend on.
package viability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"solarfin-backend/internal/energy"
	"solarfin-backend/internal/finance"
	"solarfin-backend/pkg/mathutil"

	"go.uber.org/zap"
)

// Tariff is the external tariff provider's result, passed through unmodified.
type Tariff struct {
	Region       string  `json:"region"`
	Distributor  string  `json:"distributor"`
	EnergyRate   float64 `json:"energy_rate_kwh"`
	TariffFlag   string  `json:"tariff_flag"`
	ReferenceDay string  `json:"reference_date"`
}

// Equipment is the external compatibility check's result, passed through
// unmodified.
type Equipment struct {
	Compatible bool     `json:"compatible"`
	Issues     []string `json:"issues,omitempty"`
	InverterOK bool     `json:"inverter_ok"`
	ModuleOK   bool     `json:"module_ok"`
}

type TariffProvider interface {
	Tariff(ctx context.Context, region string) (Tariff, error)
}

type EquipmentChecker interface {
	Check(ctx context.Context, system energy.System) (Equipment, error)
}

// RateProvider supplies the benchmark-plus-spread financing rate when the
// caller does not fix one. Satisfied by *rates.Service.
type RateProvider interface {
	SolarFinancingRate(ctx context.Context, spread float64) float64
}

type Input struct {
	Location energy.Location `json:"location"`
	System   energy.System   `json:"system"`
	Losses   energy.Losses   `json:"losses"`

	// Total installed cost and financing terms.
	Investment  float64 `json:"investment"`
	DownPayment float64 `json:"down_payment"`
	TermMonths  int     `json:"term_months"`
	// AnnualRatePct of zero means "price off the policy benchmark".
	AnnualRatePct float64 `json:"annual_rate_pct"`
	RateSpread    float64 `json:"rate_spread"`
	// Convention is "sac" or "price" (default).
	Convention string `json:"convention"`
	// HorizonYears for IRR/NPV (default 25, a panel's warranted life).
	HorizonYears int `json:"horizon_years"`
}

type EnergyReport struct {
	energy.Estimate
	AnnualSavings float64 `json:"annual_savings"`
}

type FinancialReport struct {
	AppliedRatePct      float64          `json:"applied_rate_pct"`
	EffectiveAnnualCost float64          `json:"effective_annual_cost"`
	FinancedAmount      float64          `json:"financed_amount"`
	Financing           *finance.Summary `json:"financing,omitempty"`
	IRRPct              float64          `json:"irr_pct"`
	NPV                 float64          `json:"npv"`
	SimplePaybackYears  float64          `json:"simple_payback_years"`
}

type Report struct {
	Success     bool             `json:"success"`
	Energy      *EnergyReport    `json:"energy,omitempty"`
	Financial   *FinancialReport `json:"financial,omitempty"`
	Equipment   *Equipment       `json:"equipment,omitempty"`
	Tariff      *Tariff          `json:"tariff,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
	Errors      []string         `json:"errors,omitempty"`
	ElapsedMS   int64            `json:"elapsed_ms"`
	GeneratedAt string           `json:"generated_at"`
}

const defaultHorizonYears = 25

type Orchestrator struct {
	estimator *energy.Estimator
	rateSvc   RateProvider
	tariffs   TariffProvider
	equipment EquipmentChecker
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrchestrator(
	estimator *energy.Estimator,
	rateSvc RateProvider,
	tariffs TariffProvider,
	equipment EquipmentChecker,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		estimator: estimator,
		rateSvc:   rateSvc,
		tariffs:   tariffs,
		equipment: equipment,
		logger:    logger,
		now:       time.Now,
	}
}

// Evaluate produces a best-effort report: estimator and benchmark failures
// downgrade quality with a warning, but a missing tariff or equipment lookup
// fails the report closed since nothing meaningful can be computed without
// them.
func (o *Orchestrator) Evaluate(ctx context.Context, in Input) Report {
	start := o.now()
	report := Report{Success: true}

	tariff, err := o.tariffs.Tariff(ctx, in.Location.Region)
	if err != nil {
		report.Success = false
		report.Errors = append(report.Errors, fmt.Sprintf("tariff lookup failed: %v", err))
	} else {
		report.Tariff = &tariff
	}

	equip, err := o.equipment.Check(ctx, in.System)
	if err != nil {
		report.Success = false
		report.Errors = append(report.Errors, fmt.Sprintf("equipment check failed: %v", err))
	} else {
		report.Equipment = &equip
		if !equip.Compatible {
			report.Warnings = append(report.Warnings, "equipment reported as incompatible")
		}
	}

	if report.Success {
		est := o.estimator.Estimate(ctx, energy.Request{
			Location: in.Location,
			System:   in.System,
			Losses:   in.Losses,
		})
		if est.Source != "simulator" {
			report.Warnings = append(report.Warnings, "energy estimate from regional model, not simulator")
		}
		energyReport := EnergyReport{
			Estimate:      est,
			AnnualSavings: mathutil.Round(est.AnnualGenerationKWh * tariff.EnergyRate),
		}
		report.Energy = &energyReport
		report.Financial = o.financial(ctx, in, energyReport.AnnualSavings, &report)
	}

	report.ElapsedMS = o.now().Sub(start).Milliseconds()
	report.GeneratedAt = o.now().UTC().Format(time.RFC3339)
	return report
}

func (o *Orchestrator) financial(ctx context.Context, in Input, annualSavings float64, report *Report) *FinancialReport {
	rate := in.AnnualRatePct
	if rate <= 0 {
		rate = o.rateSvc.SolarFinancingRate(ctx, in.RateSpread)
	}

	horizon := in.HorizonYears
	if horizon <= 0 {
		horizon = defaultHorizonYears
	}

	fin := &FinancialReport{
		AppliedRatePct: rate,
		FinancedAmount: in.Investment - in.DownPayment,
		IRRPct:         finance.IRR(in.Investment, annualSavings, horizon) * 100.0,
		NPV:            mathutil.Round(finance.NPV(in.Investment, annualSavings, rate/100.0, horizon)),
	}
	if annualSavings > 0 {
		fin.SimplePaybackYears = in.Investment / annualSavings
	}

	if fin.FinancedAmount <= 0 || in.TermMonths <= 0 {
		report.Warnings = append(report.Warnings, "financing simulation skipped: non-positive financed amount or term")
		return fin
	}

	var sched finance.Schedule
	if strings.EqualFold(in.Convention, "sac") {
		sched = finance.SimulateSAC(fin.FinancedAmount, rate, in.TermMonths)
	} else {
		sched = finance.SimulatePrice(fin.FinancedAmount, rate, in.TermMonths)
	}
	summary := sched.RoundedCopy().Summary
	fin.Financing = &summary

	if cet, err := finance.EffectiveAnnualCost(fin.FinancedAmount, rate, in.TermMonths); err == nil {
		fin.EffectiveAnnualCost = cet
	}
	return fin
}
