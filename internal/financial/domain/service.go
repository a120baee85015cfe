package domain

import (
	"context"
	"errors"
	"time"

	"github.com/gestorhub/gestor/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateTransactionRequest struct {
	Kind           Kind            `json:"kind" binding:"required"`
	Description    string          `json:"description" binding:"required"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	DueDate        time.Time       `json:"due_date" binding:"required" time_format:"2006-01-02"`
	CustomerID     string          `json:"customer_id"`
	OrderID        string          `json:"order_id"`
	ServiceOrderID string          `json:"service_order_id"`
	Notes          string          `json:"notes"`
}

type UpdateTransactionRequest struct {
	ID          string           `json:"-"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     *time.Time       `json:"due_date" time_format:"2006-01-02"`
	Notes       *string          `json:"notes"`
}

type PayTransactionRequest struct {
	ID     string     `json:"-"`
	PaidAt *time.Time `json:"paid_at" time_format:"2006-01-02"`
	Method string     `json:"method"`
}

type CancelTransactionRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

type ListTransactionRequest struct {
	pagination.Params
	Kind     string     `form:"kind"`
	Status   string     `form:"status"`
	Category string     `form:"category"`
	DueFrom  *time.Time `form:"due_from" time_format:"2006-01-02"`
	DueTo    *time.Time `form:"due_to" time_format:"2006-01-02"`
	Overdue  bool       `form:"overdue"`
}

type ListTransactionFilter struct {
	Kind     Kind
	Status   Status
	Category string
	DueFrom  *time.Time
	DueTo    *time.Time
	Overdue  bool
}

type ListTransactionResponse struct {
	Transactions []Transaction   `json:"data"`
	Totals       []DueTotal      `json:"totals,omitempty"`
	Meta         pagination.Meta `json:"meta"`
}

// DueTotal is the open amount grouped by due date, used by the
// receivables and payables views.
type DueTotal struct {
	DueDate time.Time       `gorm:"type:date" json:"due_date"`
	Total   decimal.Decimal `json:"total"`
}

// CashflowReport summarizes paid movement against what is still open
// inside a period.
type CashflowReport struct {
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	Income         decimal.Decimal `json:"income"`
	Expense        decimal.Decimal `json:"expense"`
	Net            decimal.Decimal `json:"net"`
	PendingIncome  decimal.Decimal `json:"pending_income"`
	PendingExpense decimal.Decimal `json:"pending_expense"`
}

type CashflowRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

type Service interface {
	Create(context.Context, CreateTransactionRequest) (Transaction, error)
	Update(context.Context, UpdateTransactionRequest) (Transaction, error)
	Pay(context.Context, PayTransactionRequest) (Transaction, error)
	Cancel(context.Context, CancelTransactionRequest) (Transaction, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Transaction, error)
	List(context.Context, ListTransactionRequest) (ListTransactionResponse, error)
	Receivables(context.Context, ListTransactionRequest) (ListTransactionResponse, error)
	Payables(context.Context, ListTransactionRequest) (ListTransactionResponse, error)
	Cashflow(context.Context, CashflowRequest) (CashflowReport, error)
}

var (
	ErrInvalidCompany     = errors.New("invalid_company")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidKind        = errors.New("invalid_kind")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidDueDate     = errors.New("invalid_due_date")
	ErrNotPending         = errors.New("transaction_not_pending")
	ErrNotFound           = errors.New("not_found")
)
