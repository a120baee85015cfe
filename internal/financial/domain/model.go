package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

type Transaction struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID      snowflake.ID    `gorm:"not null;index" json:"company_id"`
	CustomerID     *snowflake.ID   `json:"customer_id,omitempty"`
	OrderID        *snowflake.ID   `json:"order_id,omitempty"`
	ServiceOrderID *snowflake.ID   `json:"service_order_id,omitempty"`
	Kind           Kind            `gorm:"not null" json:"kind"`
	Status         Status          `gorm:"not null;default:pending" json:"status"`
	Description    string          `gorm:"not null" json:"description"`
	Category       string          `json:"category,omitempty"`
	Amount         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	DueDate        time.Time       `gorm:"type:date;not null" json:"due_date"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Transaction) TableName() string { return "financial_transactions" }

// Overdue reports whether a pending transaction is past its due date.
func (t Transaction) Overdue(now time.Time) bool {
	return t.Status == StatusPending && t.DueDate.Before(now.Truncate(24*time.Hour))
}
