package domain

import (
	"context"
	"errors"
	"time"

	"github.com/gestorhub/gestor/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	Name     string          `json:"name" binding:"required"`
	RoleID   string          `json:"role_id"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Document string          `json:"document"`
	Position string          `json:"position"`
	Salary   decimal.Decimal `json:"salary"`
	HiredAt  *time.Time      `json:"hired_at" time_format:"2006-01-02"`
}

type UpdateEmployeeRequest struct {
	ID       string           `json:"-"`
	Name     *string          `json:"name"`
	RoleID   *string          `json:"role_id"`
	Email    *string          `json:"email"`
	Phone    *string          `json:"phone"`
	Document *string          `json:"document"`
	Position *string          `json:"position"`
	Salary   *decimal.Decimal `json:"salary"`
	HiredAt  *time.Time       `json:"hired_at" time_format:"2006-01-02"`
	Active   *bool            `json:"active"`
}

type ListEmployeeRequest struct {
	pagination.Params
	Search string `form:"search"`
	RoleID string `form:"role_id"`
	Active *bool  `form:"active"`
}

type ListEmployeeFilter struct {
	Search string
	RoleID string
	Active *bool
}

type ListEmployeeResponse struct {
	Employees []Employee      `json:"data"`
	Meta      pagination.Meta `json:"meta"`
}

type Service interface {
	Create(context.Context, CreateEmployeeRequest) (Employee, error)
	Update(context.Context, UpdateEmployeeRequest) (Employee, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Employee, error)
	List(context.Context, ListEmployeeRequest) (ListEmployeeResponse, error)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidRole    = errors.New("invalid_role")
	ErrInvalidSalary  = errors.New("invalid_salary")
	ErrInvalidID      = errors.New("invalid_id")
	ErrDocumentTaken  = errors.New("document_taken")
	ErrHasOpenWork    = errors.New("employee_has_open_service_orders")
	ErrNotFound       = errors.New("not_found")
)
