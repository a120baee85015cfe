package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/financial/domain"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, transaction *domain.Transaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO financial_transactions (id, company_id, customer_id, order_id, service_order_id, kind, status, description, category, amount, due_date, paid_at, payment_method, cancel_reason, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transaction.ID,
		transaction.CompanyID,
		transaction.CustomerID,
		transaction.OrderID,
		transaction.ServiceOrderID,
		transaction.Kind,
		transaction.Status,
		transaction.Description,
		transaction.Category,
		transaction.Amount,
		transaction.DueDate,
		transaction.PaidAt,
		transaction.PaymentMethod,
		transaction.CancelReason,
		transaction.Notes,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, transaction *domain.Transaction) error {
	return db.WithContext(ctx).Exec(
		`UPDATE financial_transactions
		 SET status = ?, description = ?, category = ?, amount = ?, due_date = ?, paid_at = ?, payment_method = ?, cancel_reason = ?, notes = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		transaction.Status,
		transaction.Description,
		transaction.Category,
		transaction.Amount,
		transaction.DueDate,
		transaction.PaidAt,
		transaction.PaymentMethod,
		transaction.CancelReason,
		transaction.Notes,
		transaction.UpdatedAt,
		transaction.CompanyID,
		transaction.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM financial_transactions WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Transaction, error) {
	var transaction domain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, customer_id, order_id, service_order_id, kind, status, description, category, amount, due_date, paid_at, payment_method, cancel_reason, notes, created_at, updated_at
		 FROM financial_transactions WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Scan(&transaction).Error
	if err != nil {
		return nil, err
	}
	if transaction.ID == 0 {
		return nil, nil
	}
	return &transaction, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListTransactionFilter, page pagination.Params) ([]domain.Transaction, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("company_id = ?", companyID)
	if filter.Kind != "" {
		stmt = stmt.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.DueFrom != nil {
		stmt = stmt.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		stmt = stmt.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Overdue {
		stmt = stmt.Where("status = ? AND due_date < ?", domain.StatusPending, time.Now().UTC())
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []domain.Transaction
	err := page.Apply(stmt).
		Order("due_date asc, id asc").
		Find(&transactions).Error
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *repo) TotalsByDueDate(ctx context.Context, db *gorm.DB, companyID snowflake.ID, kind domain.Kind, filter domain.ListTransactionFilter) ([]domain.DueTotal, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Select("due_date, COALESCE(SUM(amount), 0) AS total").
		Where("company_id = ? AND kind = ? AND status = ?", companyID, kind, domain.StatusPending)
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.DueFrom != nil {
		stmt = stmt.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		stmt = stmt.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Overdue {
		stmt = stmt.Where("due_date < ?", time.Now().UTC())
	}

	var totals []domain.DueTotal
	err := stmt.Group("due_date").
		Order("due_date asc").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *repo) SumByKind(ctx context.Context, db *gorm.DB, companyID snowflake.ID, kind domain.Kind, status domain.Status, from, to time.Time) (string, error) {
	var sum string
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM financial_transactions
		 WHERE company_id = ? AND kind = ? AND status = ? AND due_date >= ? AND due_date <= ?`,
		companyID, kind, status, from, to,
	).Scan(&sum).Error
	if err != nil {
		return "", err
	}
	return sum, nil
}
