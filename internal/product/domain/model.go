package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID   snowflake.ID    `gorm:"not null;index" json:"company_id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description,omitempty"`
	Code        string          `json:"code,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	Unit        string          `gorm:"not null;default:un" json:"unit"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Cost        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"cost"`
	Stock       int64           `gorm:"not null;default:0" json:"stock"`
	MinStock    int64           `gorm:"not null;default:0" json:"min_stock"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BelowMinStock reports whether the product needs restocking.
func (p Product) BelowMinStock() bool {
	return p.MinStock > 0 && p.Stock < p.MinStock
}
