package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/product/domain"
	"github.com/gestorhub/gestor/internal/stock"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, company_id, name, description, code, barcode, unit, price, cost, stock, min_stock, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.CompanyID,
		product.Name,
		product.Description,
		product.Code,
		product.Barcode,
		product.Unit,
		product.Price,
		product.Cost,
		product.Stock,
		product.MinStock,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, description = ?, code = ?, barcode = ?, unit = ?, price = ?, cost = ?, min_stock = ?, active = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		product.Name,
		product.Description,
		product.Code,
		product.Barcode,
		product.Unit,
		product.Price,
		product.Cost,
		product.MinStock,
		product.Active,
		product.UpdatedAt,
		product.CompanyID,
		product.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM products WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, name, description, code, barcode, unit, price, cost, stock, min_stock, active, created_at, updated_at
		 FROM products WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListProductFilter, page pagination.Params) ([]domain.Product, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("company_id = ?", companyID)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where("(name LIKE ? OR code LIKE ? OR barcode LIKE ?)", like, like, like)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	if filter.BelowStock {
		stmt = stmt.Where("min_stock > 0 AND stock < min_stock")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []domain.Product
	err := page.Apply(stmt).
		Order("name asc, id asc").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *repo) CountActiveOrderItems(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM order_items
		 JOIN orders ON orders.id = order_items.order_id
		 WHERE orders.company_id = ? AND order_items.product_id = ? AND orders.status IN ('pending', 'approved')`,
		companyID, id,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ListMovements(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, page pagination.Params) ([]stock.Movement, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&stock.Movement{}).
		Where("company_id = ? AND product_id = ?", companyID, id)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []stock.Movement
	err := page.Apply(stmt).
		Order("created_at desc, id desc").
		Find(&movements).Error
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}
