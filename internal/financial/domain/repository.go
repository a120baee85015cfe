package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, transaction *Transaction) error
	Update(ctx context.Context, db *gorm.DB, transaction *Transaction) error
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Transaction, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListTransactionFilter, page pagination.Params) ([]Transaction, int64, error)
	SumByKind(ctx context.Context, db *gorm.DB, companyID snowflake.ID, kind Kind, status Status, from, to time.Time) (string, error)
	TotalsByDueDate(ctx context.Context, db *gorm.DB, companyID snowflake.ID, kind Kind, filter ListTransactionFilter) ([]DueTotal, error)
}
