package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/carrier/domain"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, carrier *domain.Carrier) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO carriers (id, company_id, name, document, email, phone, address, city, state, zip_code, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		carrier.ID,
		carrier.CompanyID,
		carrier.Name,
		carrier.Document,
		carrier.Email,
		carrier.Phone,
		carrier.Address,
		carrier.City,
		carrier.State,
		carrier.ZipCode,
		carrier.Active,
		carrier.CreatedAt,
		carrier.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, carrier *domain.Carrier) error {
	return db.WithContext(ctx).Exec(
		`UPDATE carriers
		 SET name = ?, document = ?, email = ?, phone = ?, address = ?, city = ?, state = ?, zip_code = ?, active = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		carrier.Name,
		carrier.Document,
		carrier.Email,
		carrier.Phone,
		carrier.Address,
		carrier.City,
		carrier.State,
		carrier.ZipCode,
		carrier.Active,
		carrier.UpdatedAt,
		carrier.CompanyID,
		carrier.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM carriers WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Carrier, error) {
	var carrier domain.Carrier
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, name, document, email, phone, address, city, state, zip_code, active, created_at, updated_at
		 FROM carriers WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Scan(&carrier).Error
	if err != nil {
		return nil, err
	}
	if carrier.ID == 0 {
		return nil, nil
	}
	return &carrier, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListCarrierFilter, page pagination.Params) ([]domain.Carrier, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Carrier{}).
		Where("company_id = ?", companyID)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where("(name LIKE ? OR document LIKE ?)", like, like)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var carriers []domain.Carrier
	err := page.Apply(stmt).
		Order("name asc, id asc").
		Find(&carriers).Error
	if err != nil {
		return nil, 0, err
	}
	return carriers, total, nil
}
