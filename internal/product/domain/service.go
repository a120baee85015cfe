package domain

import (
	"context"
	"errors"

	"github.com/gestorhub/gestor/internal/stock"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Code        string          `json:"code"`
	Barcode     string          `json:"barcode"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       int64           `json:"stock"`
	MinStock    int64           `json:"min_stock"`
}

type UpdateProductRequest struct {
	ID          string           `json:"-"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Code        *string          `json:"code"`
	Barcode     *string          `json:"barcode"`
	Unit        *string          `json:"unit"`
	Price       *decimal.Decimal `json:"price"`
	Cost        *decimal.Decimal `json:"cost"`
	MinStock    *int64           `json:"min_stock"`
	Active      *bool            `json:"active"`
}

type AdjustStockRequest struct {
	ID       string `json:"-"`
	Quantity int64  `json:"quantity" binding:"required"`
	Notes    string `json:"notes"`
}

type ListProductRequest struct {
	pagination.Params
	Search     string `form:"search"`
	Active     *bool  `form:"active"`
	BelowStock bool   `form:"below_min_stock"`
}

type ListProductFilter struct {
	Search     string
	Active     *bool
	BelowStock bool
}

type ListProductResponse struct {
	Products []Product       `json:"data"`
	Meta     pagination.Meta `json:"meta"`
}

type ListMovementsResponse struct {
	Movements []stock.Movement `json:"data"`
	Meta      pagination.Meta  `json:"meta"`
}

type Service interface {
	Create(context.Context, CreateProductRequest) (Product, error)
	Update(context.Context, UpdateProductRequest) (Product, error)
	AdjustStock(context.Context, AdjustStockRequest) (Product, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Product, error)
	List(context.Context, ListProductRequest) (ListProductResponse, error)
	ListMovements(ctx context.Context, id string, page pagination.Params) (ListMovementsResponse, error)
}

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidStock    = errors.New("invalid_stock")
	ErrInvalidID       = errors.New("invalid_id")
	ErrCodeTaken       = errors.New("code_taken")
	ErrNotFound        = errors.New("not_found")
	ErrHasActiveOrders = errors.New("product_has_active_orders")
)
