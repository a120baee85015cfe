package domain

import (
	"context"
	"errors"
	"time"

	"github.com/gestorhub/gestor/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// ItemRequest is one order line. Discount is a flat amount subtracted
// from quantity*unit_price, never a percentage, and may not exceed the
// line total.
type ItemRequest struct {
	ProductID string           `json:"product_id" binding:"required"`
	Quantity  int64            `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal  `json:"discount"`
}

// CreateOrderRequest carries flat order-level Discount and Freight
// amounts applied after the line totals.
type CreateOrderRequest struct {
	CustomerID string          `json:"customer_id" binding:"required"`
	CarrierID  string          `json:"carrier_id"`
	Items      []ItemRequest   `json:"items" binding:"required"`
	Discount   decimal.Decimal `json:"discount"`
	Freight    decimal.Decimal `json:"freight"`
	Notes      string          `json:"notes"`
}

type UpdateOrderRequest struct {
	ID         string           `json:"-"`
	CustomerID *string          `json:"customer_id"`
	CarrierID  *string          `json:"carrier_id"`
	Items      []ItemRequest    `json:"items"`
	Discount   *decimal.Decimal `json:"discount"`
	Freight    *decimal.Decimal `json:"freight"`
	Notes      *string          `json:"notes"`
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status Status `json:"status" binding:"required"`
}

type ListOrderRequest struct {
	pagination.Params
	Status      string     `form:"status"`
	CustomerID  string     `form:"customer_id"`
	Number      string     `form:"number"`
	CreatedFrom *time.Time `form:"created_from" time_format:"2006-01-02"`
	CreatedTo   *time.Time `form:"created_to" time_format:"2006-01-02"`
}

type ListOrderFilter struct {
	Status      Status
	CustomerID  string
	Number      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListOrderResponse struct {
	Orders []Order         `json:"data"`
	Meta   pagination.Meta `json:"meta"`
}

type Service interface {
	Create(context.Context, CreateOrderRequest) (Order, error)
	Update(context.Context, UpdateOrderRequest) (Order, error)
	UpdateStatus(context.Context, UpdateStatusRequest) (Order, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Order, error)
	List(context.Context, ListOrderRequest) (ListOrderResponse, error)
}

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrInvalidCarrier    = errors.New("invalid_carrier")
	ErrInvalidItems      = errors.New("invalid_items")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidDiscount   = errors.New("invalid_discount")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrNotPending        = errors.New("order_not_pending")
	ErrProductInactive   = errors.New("product_inactive")
	ErrNotFound          = errors.New("not_found")
)
