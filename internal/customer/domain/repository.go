package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListCustomerFilter, page pagination.Params) ([]Customer, int64, error)
	CountOpenOrders(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
}
