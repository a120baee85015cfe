package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/order/domain"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (id, company_id, customer_id, carrier_id, number, status, discount, freight, total, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.CompanyID,
		order.CustomerID,
		order.CarrierID,
		order.Number,
		order.Status,
		order.Discount,
		order.Freight,
		order.Total,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.Item) error {
	for i := range items {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, discount, total)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			items[i].ID,
			items[i].OrderID,
			items[i].ProductID,
			items[i].Quantity,
			items[i].UnitPrice,
			items[i].Discount,
			items[i].Total,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET customer_id = ?, carrier_id = ?, discount = ?, freight = ?, total = ?, notes = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		order.CustomerID,
		order.CarrierID,
		order.Discount,
		order.Freight,
		order.Total,
		order.Notes,
		order.UpdatedAt,
		order.CompanyID,
		order.ID,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, status domain.Status) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE company_id = ? AND id = ?`,
		status, companyID, id,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM orders WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Error
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM order_items WHERE order_id = ?`,
		orderID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT orders.id, orders.company_id, orders.customer_id, orders.carrier_id, orders.number, orders.status,
		        orders.discount, orders.freight, orders.total, orders.notes, orders.created_at, orders.updated_at,
		        customers.name AS customer_name
		 FROM orders
		 JOIN customers ON customers.id = orders.customer_id
		 WHERE orders.company_id = ? AND orders.id = ?`,
		companyID, id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}

	items, err := r.FindItems(ctx, db, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.Item, error) {
	var items []domain.Item
	err := db.WithContext(ctx).Raw(
		`SELECT order_items.id, order_items.order_id, order_items.product_id, order_items.quantity,
		        order_items.unit_price, order_items.discount, order_items.total,
		        products.name AS product_name
		 FROM order_items
		 JOIN products ON products.id = order_items.product_id
		 WHERE order_items.order_id = ?
		 ORDER BY order_items.id`,
		orderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListOrderFilter, page pagination.Params) ([]domain.Order, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("orders.company_id = ?", companyID)
	if filter.Status != "" {
		stmt = stmt.Where("orders.status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		stmt = stmt.Where("orders.customer_id = ?", filter.CustomerID)
	}
	if filter.Number != "" {
		stmt = stmt.Where("orders.number = ?", filter.Number)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("orders.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("orders.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []domain.Order
	err := page.Apply(stmt).
		Select("orders.*, customers.name AS customer_name").
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Order("orders.created_at desc, orders.id desc").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repo) CustomerExists(ctx context.Context, db *gorm.DB, companyID, customerID snowflake.ID) (bool, error) {
	return exists(ctx, db, `SELECT COUNT(1) FROM customers WHERE company_id = ? AND id = ?`, companyID, customerID)
}

func (r *repo) CarrierExists(ctx context.Context, db *gorm.DB, companyID, carrierID snowflake.ID) (bool, error) {
	return exists(ctx, db, `SELECT COUNT(1) FROM carriers WHERE company_id = ? AND id = ?`, companyID, carrierID)
}

func (r *repo) FindSaleProduct(ctx context.Context, db *gorm.DB, companyID, productID snowflake.ID) (*domain.SaleProduct, error) {
	var product domain.SaleProduct
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, price, active FROM products WHERE company_id = ? AND id = ?`,
		companyID, productID,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func exists(ctx context.Context, db *gorm.DB, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
