package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, role *Role) error
	Update(ctx context.Context, db *gorm.DB, role *Role) error
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Role, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, page pagination.Params) ([]Role, int64, error)
	CountEmployees(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error)
}
