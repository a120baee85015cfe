package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/stock"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListProductFilter, page pagination.Params) ([]Product, int64, error)
	CountActiveOrderItems(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
	ListMovements(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, page pagination.Params) ([]stock.Movement, int64, error)
}
