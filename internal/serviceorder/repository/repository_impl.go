package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/serviceorder/domain"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.ServiceOrder) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO service_orders (id, company_id, customer_id, employee_id, number, status, priority, equipment, reported_issue, diagnosis, labor_cost, discount, total, notes, started_at, completed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.CompanyID,
		order.CustomerID,
		order.EmployeeID,
		order.Number,
		order.Status,
		order.Priority,
		order.Equipment,
		order.ReportedIssue,
		order.Diagnosis,
		order.LaborCost,
		order.Discount,
		order.Total,
		order.Notes,
		order.StartedAt,
		order.CompletedAt,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.Item) error {
	for i := range items {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO service_order_items (id, service_order_id, product_id, description, quantity, unit_price, total)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			items[i].ID,
			items[i].ServiceOrderID,
			items[i].ProductID,
			items[i].Description,
			items[i].Quantity,
			items[i].UnitPrice,
			items[i].Total,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO service_order_events (id, service_order_id, user_id, from_status, to_status, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.ServiceOrderID,
		event.UserID,
		event.FromStatus,
		event.ToStatus,
		event.Note,
		event.CreatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.ServiceOrder) error {
	return db.WithContext(ctx).Exec(
		`UPDATE service_orders
		 SET customer_id = ?, employee_id = ?, status = ?, priority = ?, equipment = ?, reported_issue = ?, diagnosis = ?, labor_cost = ?, discount = ?, total = ?, notes = ?, started_at = ?, completed_at = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		order.CustomerID,
		order.EmployeeID,
		order.Status,
		order.Priority,
		order.Equipment,
		order.ReportedIssue,
		order.Diagnosis,
		order.LaborCost,
		order.Discount,
		order.Total,
		order.Notes,
		order.StartedAt,
		order.CompletedAt,
		order.UpdatedAt,
		order.CompanyID,
		order.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM service_orders WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Error
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, serviceOrderID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM service_order_items WHERE service_order_id = ?`,
		serviceOrderID,
	).Error
}

func (r *repo) DeleteEvents(ctx context.Context, db *gorm.DB, serviceOrderID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM service_order_events WHERE service_order_id = ?`,
		serviceOrderID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.ServiceOrder, error) {
	var order domain.ServiceOrder
	err := db.WithContext(ctx).Raw(
		`SELECT service_orders.id, service_orders.company_id, service_orders.customer_id, service_orders.employee_id,
		        service_orders.number, service_orders.status, service_orders.priority, service_orders.equipment,
		        service_orders.reported_issue, service_orders.diagnosis, service_orders.labor_cost, service_orders.discount,
		        service_orders.total, service_orders.notes, service_orders.started_at, service_orders.completed_at,
		        service_orders.created_at, service_orders.updated_at,
		        customers.name AS customer_name, employees.name AS employee_name
		 FROM service_orders
		 JOIN customers ON customers.id = service_orders.customer_id
		 LEFT JOIN employees ON employees.id = service_orders.employee_id
		 WHERE service_orders.company_id = ? AND service_orders.id = ?`,
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

	events, err := r.FindEvents(ctx, db, order.ID)
	if err != nil {
		return nil, err
	}
	order.Events = events

	return &order, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, serviceOrderID snowflake.ID) ([]domain.Item, error) {
	var items []domain.Item
	err := db.WithContext(ctx).Raw(
		`SELECT service_order_items.id, service_order_items.service_order_id, service_order_items.product_id,
		        service_order_items.description, service_order_items.quantity, service_order_items.unit_price,
		        service_order_items.total, products.name AS product_name
		 FROM service_order_items
		 LEFT JOIN products ON products.id = service_order_items.product_id
		 WHERE service_order_items.service_order_id = ?
		 ORDER BY service_order_items.id`,
		serviceOrderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindEvents(ctx context.Context, db *gorm.DB, serviceOrderID snowflake.ID) ([]domain.Event, error) {
	var events []domain.Event
	err := db.WithContext(ctx).Raw(
		`SELECT id, service_order_id, user_id, from_status, to_status, note, created_at
		 FROM service_order_events
		 WHERE service_order_id = ?
		 ORDER BY created_at, id`,
		serviceOrderID,
	).Scan(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListServiceOrderFilter, page pagination.Params) ([]domain.ServiceOrder, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.ServiceOrder{}).
		Where("service_orders.company_id = ?", companyID)
	if filter.Status != "" {
		stmt = stmt.Where("service_orders.status = ?", filter.Status)
	}
	if filter.Priority != "" {
		stmt = stmt.Where("service_orders.priority = ?", filter.Priority)
	}
	if filter.CustomerID != "" {
		stmt = stmt.Where("service_orders.customer_id = ?", filter.CustomerID)
	}
	if filter.EmployeeID != "" {
		stmt = stmt.Where("service_orders.employee_id = ?", filter.EmployeeID)
	}
	if filter.Number != "" {
		stmt = stmt.Where("service_orders.number = ?", filter.Number)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("service_orders.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("service_orders.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []domain.ServiceOrder
	err := page.Apply(stmt).
		Select("service_orders.*, customers.name AS customer_name, employees.name AS employee_name").
		Joins("JOIN customers ON customers.id = service_orders.customer_id").
		Joins("LEFT JOIN employees ON employees.id = service_orders.employee_id").
		Order("service_orders.created_at desc, service_orders.id desc").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repo) CustomerExists(ctx context.Context, db *gorm.DB, companyID, customerID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM customers WHERE company_id = ? AND id = ?`,
		companyID, customerID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) EmployeeExists(ctx context.Context, db *gorm.DB, companyID, employeeID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM employees WHERE company_id = ? AND id = ? AND active = ?`,
		companyID, employeeID, true,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) FindPartProduct(ctx context.Context, db *gorm.DB, companyID, productID snowflake.ID) (*domain.PartProduct, error) {
	var product domain.PartProduct
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
