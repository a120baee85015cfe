package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, employee *Employee) error
	Update(ctx context.Context, db *gorm.DB, employee *Employee) error
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Employee, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListEmployeeFilter, page pagination.Params) ([]Employee, int64, error)
	RoleExists(ctx context.Context, db *gorm.DB, companyID, roleID snowflake.ID) (bool, error)
	CountOpenServiceOrders(ctx context.Context, db *gorm.DB, companyID, employeeID snowflake.ID) (int64, error)
}
