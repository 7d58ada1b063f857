package schedule

import (
	"time"

	"gorm.io/gorm"
)

// Entry is one installment of an approved proposal's payment schedule,
// materialized from an amortization run at approval time.
type Entry struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// FK to financing_proposals.id (numeric)
	ProposalID       uint64         `gorm:"column:proposal_id;not null;index;uniqueIndex:ux_schedule_proposal_installment" json:"-"`
	InstallmentNo    int            `gorm:"column:installment_no;not null;uniqueIndex:ux_schedule_proposal_installment" json:"installment_no"`
	PrincipalPortion float64        `gorm:"column:principal_portion;type:decimal(18,2);not null" json:"principal_portion"`
	InterestPortion  float64        `gorm:"column:interest_portion;type:decimal(18,2);not null" json:"interest_portion"`
	TotalPayment     float64        `gorm:"column:total_payment;type:decimal(18,2);not null" json:"total_payment"`
	RemainingBalance float64        `gorm:"column:remaining_balance;type:decimal(18,2);not null" json:"remaining_balance"`
	DueDate          time.Time      `gorm:"column:due_date;type:date;not null" json:"due_date"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"-"`
	DeletedAt        gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Entry) TableName() string { return "payment_schedules" }
