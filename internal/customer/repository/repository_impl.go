package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/customer/domain"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customers (id, company_id, name, kind, document, email, phone, address, city, state, zip_code, notes, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID,
		customer.CompanyID,
		customer.Name,
		customer.Kind,
		customer.Document,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.City,
		customer.State,
		customer.ZipCode,
		customer.Notes,
		customer.Active,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers
		 SET name = ?, kind = ?, document = ?, email = ?, phone = ?, address = ?, city = ?, state = ?, zip_code = ?, notes = ?, active = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		customer.Name,
		customer.Kind,
		customer.Document,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.City,
		customer.State,
		customer.ZipCode,
		customer.Notes,
		customer.Active,
		customer.UpdatedAt,
		customer.CompanyID,
		customer.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM customers WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, name, kind, document, email, phone, address, city, state, zip_code, notes, active, created_at, updated_at
		 FROM customers WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListCustomerFilter, page pagination.Params) ([]domain.Customer, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("company_id = ?", companyID)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where("(name LIKE ? OR email LIKE ? OR document LIKE ?)", like, like, like)
	}
	if filter.Kind != "" {
		stmt = stmt.Where("kind = ?", filter.Kind)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []domain.Customer
	err := page.Apply(stmt).
		Order("name asc, id asc").
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *repo) CountOpenOrders(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM orders
		 WHERE company_id = ? AND customer_id = ? AND status IN ('pending', 'approved')`,
		companyID, id,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
