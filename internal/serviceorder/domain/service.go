package domain

import (
	"context"
	"errors"
	"time"

	"github.com/gestorhub/gestor/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type ItemRequest struct {
	ProductID   string           `json:"product_id"`
	Description string           `json:"description"`
	Quantity    int64            `json:"quantity" binding:"required"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

type CreateServiceOrderRequest struct {
	CustomerID    string          `json:"customer_id" binding:"required"`
	EmployeeID    string          `json:"employee_id"`
	Priority      string          `json:"priority"`
	Equipment     string          `json:"equipment"`
	ReportedIssue string          `json:"reported_issue"`
	Diagnosis     string          `json:"diagnosis"`
	LaborCost     decimal.Decimal `json:"labor_cost"`
	Discount      decimal.Decimal `json:"discount"`
	Items         []ItemRequest   `json:"items"`
	Notes         string          `json:"notes"`
}

type UpdateServiceOrderRequest struct {
	ID            string           `json:"-"`
	EmployeeID    *string          `json:"employee_id"`
	Priority      *string          `json:"priority"`
	Equipment     *string          `json:"equipment"`
	ReportedIssue *string          `json:"reported_issue"`
	Diagnosis     *string          `json:"diagnosis"`
	LaborCost     *decimal.Decimal `json:"labor_cost"`
	Discount      *decimal.Decimal `json:"discount"`
	Items         []ItemRequest    `json:"items"`
	Notes         *string          `json:"notes"`
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status Status `json:"status" binding:"required"`
	Note   string `json:"note"`
}

type ListServiceOrderRequest struct {
	pagination.Params
	Status      string     `form:"status"`
	Priority    string     `form:"priority"`
	CustomerID  string     `form:"customer_id"`
	EmployeeID  string     `form:"employee_id"`
	Number      string     `form:"number"`
	CreatedFrom *time.Time `form:"created_from" time_format:"2006-01-02"`
	CreatedTo   *time.Time `form:"created_to" time_format:"2006-01-02"`
}

type ListServiceOrderFilter struct {
	Status      Status
	Priority    Priority
	CustomerID  string
	EmployeeID  string
	Number      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListServiceOrderResponse struct {
	ServiceOrders []ServiceOrder  `json:"data"`
	Meta          pagination.Meta `json:"meta"`
}

type Service interface {
	Create(context.Context, CreateServiceOrderRequest) (ServiceOrder, error)
	Update(context.Context, UpdateServiceOrderRequest) (ServiceOrder, error)
	UpdateStatus(context.Context, UpdateStatusRequest) (ServiceOrder, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (ServiceOrder, error)
	List(context.Context, ListServiceOrderRequest) (ListServiceOrderResponse, error)
}

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrInvalidEmployee   = errors.New("invalid_employee")
	ErrInvalidPriority   = errors.New("invalid_priority")
	ErrInvalidItems      = errors.New("invalid_items")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrNotEditable       = errors.New("service_order_not_editable")
	ErrProductInactive   = errors.New("product_inactive")
	ErrNotFound          = errors.New("not_found")
)
