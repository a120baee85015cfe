package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleProduct is the slice of a product an order needs to price a line.
type SaleProduct struct {
	ID     snowflake.ID
	Name   string
	Price  decimal.Decimal
	Active bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	InsertItems(ctx context.Context, db *gorm.DB, items []Item) error
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	UpdateStatus(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, status Status) error
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
	DeleteItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Order, error)
	FindItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]Item, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListOrderFilter, page pagination.Params) ([]Order, int64, error)
	CustomerExists(ctx context.Context, db *gorm.DB, companyID, customerID snowflake.ID) (bool, error)
	CarrierExists(ctx context.Context, db *gorm.DB, companyID, carrierID snowflake.ID) (bool, error)
	FindSaleProduct(ctx context.Context, db *gorm.DB, companyID, productID snowflake.ID) (*SaleProduct, error)
}
