package stock

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Movement records every stock change so the current quantity can be
// audited against its history.
type Movement struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID `gorm:"not null;index" json:"company_id"`
	ProductID snowflake.ID `gorm:"not null;index" json:"product_id"`
	Quantity  int64        `gorm:"not null" json:"quantity"`
	Reason    string       `gorm:"not null" json:"reason"`
	Reference string       `json:"reference,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Movement) TableName() string { return "stock_movements" }

const (
	ReasonSale                 = "sale"
	ReasonSaleReversal         = "sale_reversal"
	ReasonServiceOrder         = "service_order"
	ReasonServiceOrderReversal = "service_order_reversal"
	ReasonAdjustment           = "adjustment"
)

var (
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrProductNotFound   = errors.New("product_not_found")
)

// Apply changes a product's stock by delta and records the movement.
// Negative deltas are conditional so stock can never go below zero,
// even under concurrent writers. Must run inside the caller's
// transaction so a failed order leaves stock untouched.
func Apply(ctx context.Context, tx *gorm.DB, genID *snowflake.Node, companyID, productID snowflake.ID, delta int64, reason, reference string) error {
	if delta == 0 {
		return nil
	}

	var stmt *gorm.DB
	if delta < 0 {
		stmt = tx.WithContext(ctx).Exec(
			`UPDATE products SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
			 WHERE company_id = ? AND id = ? AND stock >= ?`,
			delta, companyID, productID, -delta,
		)
	} else {
		stmt = tx.WithContext(ctx).Exec(
			`UPDATE products SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
			 WHERE company_id = ? AND id = ?`,
			delta, companyID, productID,
		)
	}
	if stmt.Error != nil {
		return stmt.Error
	}
	if stmt.RowsAffected == 0 {
		if delta < 0 {
			if exists, err := productExists(ctx, tx, companyID, productID); err != nil {
				return err
			} else if exists {
				return ErrInsufficientStock
			}
		}
		return ErrProductNotFound
	}

	movement := Movement{
		ID:        genID.Generate(),
		CompanyID: companyID,
		ProductID: productID,
		Quantity:  delta,
		Reason:    reason,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Exec(
		`INSERT INTO stock_movements (id, company_id, product_id, quantity, reason, reference, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		movement.ID,
		movement.CompanyID,
		movement.ProductID,
		movement.Quantity,
		movement.Reason,
		movement.Reference,
		movement.CreatedAt,
	).Error
}

func productExists(ctx context.Context, tx *gorm.DB, companyID, productID snowflake.ID) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM products WHERE company_id = ? AND id = ?`,
		companyID, productID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
