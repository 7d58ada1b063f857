package proposal

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusContracted Status = "contracted"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusContracted || s == StatusCancelled
}

type Modality string

const (
	ModalityCDCSolar Modality = "cdc_solar"
	ModalityLeasing  Modality = "leasing"
	ModalityEaaS     Modality = "eaas"
)

var (
	ErrNotFound = errors.New("proposal not found")
	// ErrExpired is returned when contracting is attempted past the offer window.
	ErrExpired = errors.New("proposal approval has expired")
)

// StateConflictError names the status that blocked a transition.
type StateConflictError struct {
	Op      string
	Current Status
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s proposal in status %q", e.Op, e.Current)
}

type Proposal struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	ProposalID string `gorm:"size:32;uniqueIndex:ux_proposals_proposal_id_active" json:"proposal_id"`
	CustomerID string `gorm:"size:32;index:idx_proposals_customer_active" json:"customer_id"`

	RequestedAmount     float64  `gorm:"type:decimal(18,2)" json:"requested_amount"`
	RequestedTermMonths int      `json:"requested_term_months"`
	DownPayment         float64  `gorm:"type:decimal(18,2)" json:"down_payment"`
	Modality            Modality `gorm:"type:enum('cdc_solar','leasing','eaas');default:'cdc_solar'" json:"modality"`

	// Approval terms; zero until the proposal is approved.
	ApprovedAmount      float64    `gorm:"type:decimal(18,2)" json:"approved_amount"`
	ApprovedTermMonths  int        `json:"approved_term_months"`
	NominalAnnualRate   float64    `gorm:"type:decimal(8,4)" json:"nominal_annual_rate"`
	EffectiveAnnualCost float64    `gorm:"type:decimal(8,4)" json:"effective_annual_cost"`
	FinancedAmount      float64    `gorm:"type:decimal(18,2)" json:"financed_amount"`
	Conditions          string     `gorm:"type:text" json:"conditions"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	ContractedAt        *time.Time `json:"contracted_at,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`

	Status          Status         `gorm:"type:enum('pending','approved','contracted','cancelled');default:'pending'" json:"status"`
	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Proposal) TableName() string { return "financing_proposals" }
