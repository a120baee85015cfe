package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, carrier *Carrier) error
	Update(ctx context.Context, db *gorm.DB, carrier *Carrier) error
	Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Carrier, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListCarrierFilter, page pagination.Params) ([]Carrier, int64, error)
}
