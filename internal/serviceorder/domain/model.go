package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending         Status = "pending"
	StatusInProgress      Status = "in_progress"
	StatusWaitingParts    Status = "waiting_parts"
	StatusWaitingApproval Status = "waiting_approval"
	StatusApproved        Status = "approved"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusWaitingParts, StatusWaitingApproval,
		StatusApproved, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo encodes the workshop flow. Any non-terminal status
// can be cancelled; completion requires the work to have started.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next || s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusWaitingParts || next == StatusWaitingApproval || next == StatusCompleted
	case StatusWaitingParts:
		return next == StatusInProgress
	case StatusWaitingApproval:
		return next == StatusApproved
	case StatusApproved:
		return next == StatusInProgress || next == StatusCompleted
	default:
		return false
	}
}

type ServiceOrder struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID     snowflake.ID    `gorm:"not null;index" json:"company_id"`
	CustomerID    snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	Number        string          `gorm:"not null" json:"number"`
	Status        Status          `gorm:"not null;default:pending" json:"status"`
	Priority      Priority        `gorm:"not null;default:normal" json:"priority"`
	EmployeeID    *snowflake.ID   `gorm:"index" json:"employee_id,omitempty"`
	Equipment     string          `json:"equipment,omitempty"`
	ReportedIssue string          `json:"reported_issue,omitempty"`
	Diagnosis     string          `json:"diagnosis,omitempty"`
	LaborCost     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"labor_cost"`
	Discount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"discount"`
	Total         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	Notes         string          `json:"notes,omitempty"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items        []Item  `gorm:"-" json:"items,omitempty"`
	Events       []Event `gorm:"-" json:"events,omitempty"`
	CustomerName string  `gorm:"-" json:"customer_name,omitempty"`
	EmployeeName string  `gorm:"-" json:"employee_name,omitempty"`
}

func (ServiceOrder) TableName() string { return "service_orders" }

// Item is either a part drawn from stock (ProductID set) or a
// free-form line such as labor or an outsourced service.
type Item struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	ServiceOrderID snowflake.ID    `gorm:"not null;index" json:"service_order_id"`
	ProductID      *snowflake.ID   `json:"product_id,omitempty"`
	Description    string          `json:"description,omitempty"`
	Quantity       int64           `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	Total          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`

	ProductName string `gorm:"-" json:"product_name,omitempty"`
}

func (Item) TableName() string { return "service_order_items" }

// Event records each status transition for the order's audit trail.
type Event struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	ServiceOrderID snowflake.ID  `gorm:"not null;index" json:"service_order_id"`
	UserID         *snowflake.ID `json:"user_id,omitempty"`
	FromStatus     Status        `json:"from_status,omitempty"`
	ToStatus       Status        `gorm:"not null" json:"to_status"`
	Note           string        `json:"note,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Event) TableName() string { return "service_order_events" }
