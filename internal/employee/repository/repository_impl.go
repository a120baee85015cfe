package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhub/gestor/internal/employee/domain"
	"github.com/gestorhub/gestor/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO employees (id, company_id, role_id, name, email, phone, document, position, salary, hired_at, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		employee.ID,
		employee.CompanyID,
		employee.RoleID,
		employee.Name,
		employee.Email,
		employee.Phone,
		employee.Document,
		employee.Position,
		employee.Salary,
		employee.HiredAt,
		employee.Active,
		employee.CreatedAt,
		employee.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	return db.WithContext(ctx).Exec(
		`UPDATE employees
		 SET role_id = ?, name = ?, email = ?, phone = ?, document = ?, position = ?, salary = ?, hired_at = ?, active = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		employee.RoleID,
		employee.Name,
		employee.Email,
		employee.Phone,
		employee.Document,
		employee.Position,
		employee.Salary,
		employee.HiredAt,
		employee.Active,
		employee.UpdatedAt,
		employee.CompanyID,
		employee.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM employees WHERE company_id = ? AND id = ?`,
		companyID, id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Employee, error) {
	var employee domain.Employee
	err := db.WithContext(ctx).Raw(
		`SELECT employees.id, employees.company_id, employees.role_id, employees.name, employees.email,
		        employees.phone, employees.document, employees.position, employees.salary, employees.hired_at,
		        employees.active, employees.created_at, employees.updated_at,
		        roles.name AS role_name
		 FROM employees
		 LEFT JOIN roles ON roles.id = employees.role_id
		 WHERE employees.company_id = ? AND employees.id = ?`,
		companyID, id,
	).Scan(&employee).Error
	if err != nil {
		return nil, err
	}
	if employee.ID == 0 {
		return nil, nil
	}
	return &employee, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListEmployeeFilter, page pagination.Params) ([]domain.Employee, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("employees.company_id = ?", companyID)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where("(employees.name LIKE ? OR employees.email LIKE ?)", like, like)
	}
	if filter.RoleID != "" {
		stmt = stmt.Where("employees.role_id = ?", filter.RoleID)
	}
	if filter.Active != nil {
		stmt = stmt.Where("employees.active = ?", *filter.Active)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var employees []domain.Employee
	err := page.Apply(stmt).
		Select("employees.*, roles.name AS role_name").
		Joins("LEFT JOIN roles ON roles.id = employees.role_id").
		Order("employees.name asc, employees.id asc").
		Find(&employees).Error
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (r *repo) RoleExists(ctx context.Context, db *gorm.DB, companyID, roleID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM roles WHERE company_id = ? AND id = ?`,
		companyID, roleID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) CountOpenServiceOrders(ctx context.Context, db *gorm.DB, companyID, employeeID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM service_orders
		 WHERE company_id = ? AND employee_id = ? AND status NOT IN ('completed', 'cancelled')`,
		companyID, employeeID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
