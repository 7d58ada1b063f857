package proposal

import (
	"time"

	"solarfin-backend/internal/domain/proposal"
)

type CreateProposalInput struct {
	CustomerID          string  `json:"customer_id"`
	AccountID           string  `json:"account_id"`
	RequestedAmount     float64 `json:"requested_amount"`
	RequestedTermMonths int     `json:"requested_term_months"`
	DownPayment         float64 `json:"down_payment"`
	Modality            string  `json:"modality"`
}

type ApproveProposalInput struct {
	ProposalID         string
	ApprovedAmount     float64
	ApprovedTermMonths int
	NominalAnnualRate  float64
	Conditions         string
	// Convention selects the amortization model for the payment schedule:
	// "sac" or "price" (default).
	Convention string
}

type ProposalDTO struct {
	ProposalID          string     `json:"proposal_id"`
	CustomerID          string     `json:"customer_id"`
	RequestedAmount     float64    `json:"requested_amount"`
	RequestedTermMonths int        `json:"requested_term_months"`
	DownPayment         float64    `json:"down_payment"`
	Modality            string     `json:"modality"`
	Status              string     `json:"status"`
	ApprovedAmount      float64    `json:"approved_amount,omitempty"`
	ApprovedTermMonths  int        `json:"approved_term_months,omitempty"`
	NominalAnnualRate   float64    `json:"nominal_annual_rate,omitempty"`
	EffectiveAnnualCost float64    `json:"effective_annual_cost,omitempty"`
	FinancedAmount      float64    `json:"financed_amount,omitempty"`
	Conditions          string     `json:"conditions,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func toDTO(p *proposal.Proposal) *ProposalDTO {
	return &ProposalDTO{
		ProposalID:          p.ProposalID,
		CustomerID:          p.CustomerID,
		RequestedAmount:     p.RequestedAmount,
		RequestedTermMonths: p.RequestedTermMonths,
		DownPayment:         p.DownPayment,
		Modality:            string(p.Modality),
		Status:              string(p.Status),
		ApprovedAmount:      p.ApprovedAmount,
		ApprovedTermMonths:  p.ApprovedTermMonths,
		NominalAnnualRate:   p.NominalAnnualRate,
		EffectiveAnnualCost: p.EffectiveAnnualCost,
		FinancedAmount:      p.FinancedAmount,
		Conditions:          p.Conditions,
		ApprovedAt:          p.ApprovedAt,
		ExpiresAt:           p.ExpiresAt,
		CreatedAt:           p.CreatedAt,
	}
}
