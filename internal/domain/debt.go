package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DebtStatusActive  = "active"
	DebtStatusPartial = "partial"
	DebtStatusOverdue = "overdue"
	DebtStatusPaid    = "paid"
)

// Debt represents one contribution-period obligation for a member.
// The reminder engine only reads debts, except for the one-time
// transition to overdue status.
type Debt struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	MemberID    uuid.UUID       `json:"member_id" db:"member_id"`
	PeriodMonth int             `json:"period_month" db:"period_month"`
	PeriodYear  int             `json:"period_year" db:"period_year"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	Status      string          `json:"status" db:"status"`
	LateFee     decimal.Decimal `json:"late_fee" db:"late_fee"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// TotalOwed returns the contribution amount plus any late fee.
func (d *Debt) TotalOwed() decimal.Decimal {
	return d.Amount.Add(d.LateFee)
}
