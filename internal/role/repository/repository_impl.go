package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/role/domain"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, role *domain.Role) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO roles (id, company_id, name, description, permissions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		role.ID,
		role.CompanyID,
		role.Name,
		role.Description,
		role.Permissions,
		role.CreatedAt,
		role.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, role *domain.Role) error {
	return db.WithContext(ctx).Exec(
		`UPDATE roles SET name = ?, description = ?, permissions = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		role.Name,
		role.Description,
		role.Permissions,
		role.UpdatedAt,
		role.CompanyID,
		role.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM roles WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Role, error) {
	var role domain.Role
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, name, description, permissions, created_at, updated_at
		 FROM roles WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Scan(&role).Error
	if err != nil {
		return nil, err
	}
	if role.ID == 0 {
		return nil, nil
	}
	return &role, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, page pagination.Params) ([]domain.Role, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Role{}).
		Where("company_id = ?", companyID)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var roles []domain.Role
	err := page.Apply(stmt).
		Order("name asc, id asc").
		Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

func (r *repo) CountEmployees(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM employees WHERE company_id = ? AND role_id = ?`,
		companyID, id,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
