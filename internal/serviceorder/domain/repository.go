package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PartProduct struct {
	ID     snowflake.ID
	Name   string
	Price  decimal.Decimal
	Active bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *ServiceOrder) error
	InsertItems(ctx context.Context, db *gorm.DB, items []Item) error
	InsertEvent(ctx context.Context, db *gorm.DB, event *Event) error
	Update(ctx context.Context, db *gorm.DB, order *ServiceOrder) error
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
	DeleteItems(ctx context.Context, db *gorm.DB, serviceOrderID snowflake.ID) error
	DeleteEvents(ctx context.Context, db *gorm.DB, serviceOrderID snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*ServiceOrder, error)
	FindItems(ctx context.Context, db *gorm.DB, serviceOrderID snowflake.ID) ([]Item, error)
	FindEvents(ctx context.Context, db *gorm.DB, serviceOrderID snowflake.ID) ([]Event, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListServiceOrderFilter, page pagination.Params) ([]ServiceOrder, int64, error)
	CustomerExists(ctx context.Context, db *gorm.DB, companyID, customerID snowflake.ID) (bool, error)
	EmployeeExists(ctx context.Context, db *gorm.DB, companyID, employeeID snowflake.ID) (bool, error)
	FindPartProduct(ctx context.Context, db *gorm.DB, companyID, productID snowflake.ID) (*PartProduct, error)
}
