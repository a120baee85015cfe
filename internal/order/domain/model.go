package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the value is a known order status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo encodes the order state machine. Pending orders can
// be approved or cancelled, approved orders completed or cancelled.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next || s.Terminal() {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusCancelled
	case StatusApproved:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// HoldsStock reports whether orders in this status keep product stock
// reserved. Cancelling such an order must return the stock.
func (s Status) HoldsStock() bool {
	return s == StatusPending || s == StatusApproved || s == StatusCompleted
}

type Order struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID  snowflake.ID    `gorm:"not null;index" json:"company_id"`
	CustomerID snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	CarrierID  *snowflake.ID   `json:"carrier_id,omitempty"`
	Number     string          `gorm:"not null" json:"number"`
	Status     Status          `gorm:"not null;default:pending" json:"status"`
	Discount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"discount"`
	Freight    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"freight"`
	Total      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items        []Item `gorm:"-" json:"items,omitempty"`
	CustomerName string `gorm:"-" json:"customer_name,omitempty"`
}

type Item struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID    `gorm:"not null;index" json:"order_id"`
	ProductID snowflake.ID    `gorm:"not null" json:"product_id"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	Discount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"discount"`
	Total     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`

	ProductName string `gorm:"-" json:"product_name,omitempty"`
}

func (Item) TableName() string { return "order_items" }
