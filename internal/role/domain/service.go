package domain

import (
	"context"
	"errors"

	"github.com/gestorhub/gestor/pkg/db/pagination"
)

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	ID          string    `json:"-"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
}

type ListRoleResponse struct {
	Roles []Role          `json:"data"`
	Meta  pagination.Meta `json:"meta"`
}

type Service interface {
	Create(context.Context, CreateRoleRequest) (Role, error)
	Update(context.Context, UpdateRoleRequest) (Role, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Role, error)
	List(ctx context.Context, page pagination.Params) (ListRoleResponse, error)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNameTaken      = errors.New("name_taken")
	ErrNotFound       = errors.New("not_found")
	ErrRoleInUse      = errors.New("role_in_use")
)
